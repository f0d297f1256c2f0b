// Package lifecycle owns the auction state machine. Every transition runs in
// the auction's critical section, the same one the bid ledger uses, and is
// persisted with a version compare-and-set.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/catalog"
	"auction-engine/internal/locker"
	model "auction-engine/internal/models"
	"auction-engine/internal/notify"
	"auction-engine/internal/repository"
	"auction-engine/utils"

	"github.com/shopspring/decimal"
)

// CreateAuctionParams are the seller supplied parameters of a new auction
type CreateAuctionParams struct {
	AuctionItemID string
	SellerID      string
	StartPrice    decimal.Decimal
	ReservePrice  decimal.Decimal
	MinIncrement  decimal.Decimal
	StartAt       time.Time
	EndAt         time.Time
}

// Deps are the collaborators of a Manager
type Deps struct {
	Repo     repository.AuctionDB
	Locks    *locker.Keyed
	Catalog  catalog.ItemCatalog
	Sellers  catalog.SellerDirectory
	Notifier notify.Notifier
	Clock    utils.Clock
}

// Manager is the auction lifecycle manager
type Manager struct {
	repo     repository.AuctionDB
	locks    *locker.Keyed
	catalog  catalog.ItemCatalog
	sellers  catalog.SellerDirectory
	notifier notify.Notifier
	now      utils.Clock
}

// NewManager creates a Manager. Missing Notifier and Clock fall back to logging and the system clock.
func NewManager(deps Deps) *Manager {
	m := &Manager{
		repo:     deps.Repo,
		locks:    deps.Locks,
		catalog:  deps.Catalog,
		sellers:  deps.Sellers,
		notifier: deps.Notifier,
		now:      deps.Clock,
	}
	if m.locks == nil {
		m.locks = locker.New()
	}
	if m.notifier == nil {
		m.notifier = notify.LogNotifier{}
	}
	if m.now == nil {
		m.now = utils.SystemClock
	}
	return m
}

// CreateAuction validates the parameters and stores a scheduled auction
func (m *Manager) CreateAuction(ctx context.Context, p CreateAuctionParams) (model.Auction, error) {
	if err := m.validateParams(ctx, &p); err != nil {
		return model.Auction{}, err
	}

	now := m.now()
	auction := model.Auction{
		AuctionID:     utils.GenerateID(),
		AuctionItemID: p.AuctionItemID,
		SellerID:      p.SellerID,
		StartPrice:    p.StartPrice,
		ReservePrice:  p.ReservePrice,
		MinIncrement:  p.MinIncrement,
		StartAt:       p.StartAt.UTC(),
		EndAt:         p.EndAt.UTC(),
		Status:        model.StatusScheduled,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := m.repo.CreateAuction(ctx, auction); err != nil {
		return model.Auction{}, fmt.Errorf("lifecycle: failed to create auction for item %s: %w", p.AuctionItemID, err)
	}

	utils.Info("auction created", map[string]any{
		"auction_id": auction.AuctionID,
		"item_id":    auction.AuctionItemID,
		"seller_id":  auction.SellerID,
		"start_at":   auction.StartAt.Format(time.RFC3339),
		"end_at":     auction.EndAt.Format(time.RFC3339),
	})
	return auction, nil
}

// validateParams checks price and time parameters, then asks the collaborators about the item and seller
func (m *Manager) validateParams(ctx context.Context, p *CreateAuctionParams) error {
	switch {
	case p.AuctionItemID == "" || p.SellerID == "":
		return fmt.Errorf("lifecycle: %w - missing item or seller id", biddingerrors.ErrInvalidAuction)
	case !p.StartPrice.IsPositive():
		return fmt.Errorf("lifecycle: %w - start price must be positive", biddingerrors.ErrInvalidAuction)
	case p.MinIncrement.IsNegative():
		return fmt.Errorf("lifecycle: %w - minimum increment must not be negative", biddingerrors.ErrInvalidAuction)
	case p.StartAt.IsZero() || p.EndAt.IsZero():
		return fmt.Errorf("lifecycle: %w - start and end time are required", biddingerrors.ErrInvalidAuction)
	case !p.EndAt.After(p.StartAt):
		return fmt.Errorf("lifecycle: %w - end must be after start", biddingerrors.ErrInvalidAuction)
	case !p.EndAt.After(m.now()):
		return fmt.Errorf("lifecycle: %w - end is in the past", biddingerrors.ErrInvalidAuction)
	}

	if p.ReservePrice.IsZero() {
		p.ReservePrice = p.StartPrice
	}
	if p.ReservePrice.LessThan(p.StartPrice) {
		return fmt.Errorf("lifecycle: %w - reserve price %s below start price %s",
			biddingerrors.ErrInvalidAuction, p.ReservePrice, p.StartPrice)
	}

	if m.sellers != nil {
		ok, err := m.sellers.SellerExists(ctx, p.SellerID)
		if err != nil {
			return fmt.Errorf("lifecycle: failed to check seller %s: %w", p.SellerID, err)
		}
		if !ok {
			return fmt.Errorf("lifecycle: seller %s: %w", p.SellerID, biddingerrors.ErrSellerNotFound)
		}
	}
	if m.catalog != nil {
		item, err := m.catalog.GetItem(ctx, p.AuctionItemID)
		if err != nil {
			return fmt.Errorf("lifecycle: failed to look up item %s: %w", p.AuctionItemID, err)
		}
		if item.SellerID != p.SellerID {
			return fmt.Errorf("lifecycle: item %s: %w", p.AuctionItemID, biddingerrors.ErrItemNotOwned)
		}
	}
	return nil
}

// GetAuction returns an auction including its participant count
func (m *Manager) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	a, err := m.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("lifecycle: failed to get auction %s: %w", auctionID, err)
	}
	return a, nil
}

// ListAuctions returns auctions in the given status
func (m *Manager) ListAuctions(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error) {
	auctions, err := m.repo.ListAuctionsByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: failed to list %s auctions: %w", status, err)
	}
	return auctions, nil
}

// ActivateNow starts a scheduled auction ahead of its start time
func (m *Manager) ActivateNow(ctx context.Context, auctionID string, expectedVersion *int64) (model.Auction, error) {
	return m.operatorTransition(ctx, auctionID, ActionActivate, expectedVersion)
}

// Pause stops an active auction from taking bids. End time is not moved.
func (m *Manager) Pause(ctx context.Context, auctionID string, expectedVersion *int64) (model.Auction, error) {
	return m.operatorTransition(ctx, auctionID, ActionPause, expectedVersion)
}

// Resume reopens a paused auction with its high bid intact
func (m *Manager) Resume(ctx context.Context, auctionID string, expectedVersion *int64) (model.Auction, error) {
	return m.operatorTransition(ctx, auctionID, ActionResume, expectedVersion)
}

// Cancel terminates an auction that has not ended. No settlement runs for it.
func (m *Manager) Cancel(ctx context.Context, auctionID string, expectedVersion *int64) (model.Auction, error) {
	a, err := m.operatorTransition(ctx, auctionID, ActionCancel, expectedVersion)
	if err != nil {
		return model.Auction{}, err
	}

	var bidders []string
	if participants, perr := m.repo.GetParticipants(ctx, auctionID); perr == nil {
		for _, p := range participants {
			bidders = append(bidders, p.BidderID)
		}
	} else {
		utils.Warn("lifecycle: failed to load participants for cancellation notice", map[string]any{
			"auction_id": auctionID,
			"error":      perr.Error(),
		})
	}
	m.notifier.Notify(ctx, notify.Event{
		Type:       notify.EventAuctionCancelled,
		AuctionID:  a.AuctionID,
		SellerID:   a.SellerID,
		Bidders:    bidders,
		OccurredAt: a.UpdatedAt,
	})
	return a, nil
}

func (m *Manager) operatorTransition(ctx context.Context, auctionID string, act Action, expectedVersion *int64) (model.Auction, error) {
	unlock := m.locks.Lock(auctionID)
	defer unlock()

	a, err := m.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("lifecycle: failed to %s auction %s: %w", act, auctionID, err)
	}
	if expectedVersion != nil && *expectedVersion != a.Version {
		return model.Auction{}, fmt.Errorf("lifecycle: %s auction %s expected version %d, current %d: %w",
			act, auctionID, *expectedVersion, a.Version, biddingerrors.ErrStaleVersion)
	}

	next, err := m.applyLocked(ctx, a, act, nil)
	if err != nil {
		return model.Auction{}, err
	}

	utils.Info("auction transitioned", map[string]any{
		"auction_id": auctionID,
		"action":     string(act),
		"from":       string(a.Status),
		"to":         string(next.Status),
		"version":    next.Version,
	})
	return next, nil
}

// applyLocked moves a to the status reached by act and persists it. The caller holds the auction lock.
func (m *Manager) applyLocked(ctx context.Context, a model.Auction, act Action, mutate func(*model.Auction)) (model.Auction, error) {
	to, ok := NextStatus(a.Status, act)
	if !ok {
		return model.Auction{}, fmt.Errorf("lifecycle: %w", &biddingerrors.StateError{
			AuctionID: a.AuctionID,
			From:      a.Status,
			Action:    string(act),
		})
	}

	next := a
	next.Status = to
	next.Version = a.Version + 1
	next.UpdatedAt = m.now()
	if mutate != nil {
		mutate(&next)
	}

	if err := m.repo.UpdateAuction(ctx, next, a.Version); err != nil {
		return model.Auction{}, fmt.Errorf("lifecycle: failed to persist %s of auction %s: %w", act, a.AuctionID, err)
	}
	return next, nil
}

// ActivateDue moves a scheduled auction to active once now reaches its start.
// It reports false without error when there is nothing to do.
func (m *Manager) ActivateDue(ctx context.Context, auctionID string, now time.Time) (bool, error) {
	return m.timedTransition(ctx, auctionID, ActionActivate, func(a model.Auction) bool {
		return a.Status == model.StatusScheduled && !now.Before(a.StartAt)
	})
}

// EndDue moves an active or paused auction to ended once now reaches its end.
// Pausing never extends EndAt. It reports false without error when there is
// nothing to do.
func (m *Manager) EndDue(ctx context.Context, auctionID string, now time.Time) (bool, error) {
	return m.timedTransition(ctx, auctionID, ActionEnd, func(a model.Auction) bool {
		running := a.Status == model.StatusActive || a.Status == model.StatusPaused
		return running && !now.Before(a.EndAt)
	})
}

func (m *Manager) timedTransition(ctx context.Context, auctionID string, act Action, due func(model.Auction) bool) (bool, error) {
	unlock := m.locks.Lock(auctionID)
	defer unlock()

	a, err := m.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return false, fmt.Errorf("lifecycle: failed to load auction %s for %s: %w", auctionID, act, err)
	}
	if !due(a) {
		return false, nil
	}
	next, err := m.applyLocked(ctx, a, act, nil)
	if err != nil {
		return false, err
	}

	utils.Info("auction transitioned by schedule", map[string]any{
		"auction_id": auctionID,
		"action":     string(act),
		"to":         string(next.Status),
	})
	return true, nil
}

// SettleFunc computes the settlement of an ended auction and performs its side effects.
// An error aborts the transition.
type SettleFunc func(ctx context.Context, auction model.Auction) (model.SettlementRecord, error)

// Settle runs fn for an ended auction and moves it to settled, all inside the
// auction's critical section. A settled auction fails with ErrAlreadySettled
// without calling fn.
func (m *Manager) Settle(ctx context.Context, auctionID string, fn SettleFunc) (model.Auction, error) {
	unlock := m.locks.Lock(auctionID)
	defer unlock()

	a, err := m.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("lifecycle: failed to load auction %s for settlement: %w", auctionID, err)
	}
	switch a.Status {
	case model.StatusSettled:
		return model.Auction{}, fmt.Errorf("lifecycle: auction %s: %w", auctionID, biddingerrors.ErrAlreadySettled)
	case model.StatusEnded:
	default:
		return model.Auction{}, fmt.Errorf("lifecycle: auction %s in status %s: %w", auctionID, a.Status, biddingerrors.ErrNotEnded)
	}

	record, err := fn(ctx, a)
	if err != nil {
		return model.Auction{}, err
	}

	next, err := m.applyLocked(ctx, a, ActionSettle, func(n *model.Auction) {
		n.Settlement = &record
	})
	if err != nil {
		if errors.Is(err, biddingerrors.ErrStaleVersion) {
			return model.Auction{}, fmt.Errorf("lifecycle: auction %s settled concurrently: %w", auctionID, err)
		}
		return model.Auction{}, err
	}
	return next, nil
}
