// Package notify emits lifecycle and ledger events to the notification
// collaborator. Emission is fire-and-forget: callers never wait on delivery.
package notify

import (
	"context"
	"sync"
	"time"

	"auction-engine/utils"

	"github.com/shopspring/decimal"
)

// EventType names an emitted event
type EventType string

const (
	EventAuctionWon       EventType = "auction.won"
	EventAuctionNoSale    EventType = "auction.no_sale"
	EventAuctionCancelled EventType = "auction.cancelled"
	EventPayoutPaid       EventType = "payout.paid"
)

// Event is a notification payload
type Event struct {
	Type       EventType
	AuctionID  string
	SellerID   string
	BidderID   string
	Amount     decimal.Decimal
	Bidders    []string
	OccurredAt time.Time
}

// Notifier accepts events for delivery
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// LogNotifier writes events to the structured log
type LogNotifier struct{}

// Notify logs the event
func (LogNotifier) Notify(_ context.Context, event Event) {
	utils.Info("notification emitted", map[string]any{
		"event":       string(event.Type),
		"auction_id":  event.AuctionID,
		"seller_id":   event.SellerID,
		"bidder_id":   event.BidderID,
		"amount":      event.Amount.String(),
		"bidders":     len(event.Bidders),
		"occurred_at": event.OccurredAt.Format(time.RFC3339),
	})
}

// Async hands events to a downstream Notifier from a background goroutine.
// When the buffer is full the event is dropped and a warning logged.
type Async struct {
	next   Notifier
	events chan Event
	wg     sync.WaitGroup
	once   sync.Once
}

// NewAsync starts delivery to next with a buffer of size events
func NewAsync(next Notifier, size int) *Async {
	if size <= 0 {
		size = 1
	}
	a := &Async{
		next:   next,
		events: make(chan Event, size),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

func (a *Async) run() {
	defer a.wg.Done()
	for ev := range a.events {
		a.next.Notify(context.Background(), ev)
	}
}

// Notify enqueues the event without blocking
func (a *Async) Notify(_ context.Context, event Event) {
	select {
	case a.events <- event:
	default:
		utils.Warn("notification dropped: buffer full", map[string]any{
			"event":      string(event.Type),
			"auction_id": event.AuctionID,
		})
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
// Notify must not be called after Close.
func (a *Async) Close() {
	a.once.Do(func() {
		close(a.events)
	})
	a.wg.Wait()
}

// Recorder keeps events in memory. Tests use it to assert what was emitted.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Notify records the event
func (r *Recorder) Notify(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events of type t were recorded
func (r *Recorder) Count(t EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}
