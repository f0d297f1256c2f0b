// Package scheduler runs the periodic sweep that drives time-based auction
// transitions, settlement of ended auctions and release of due escrow.
package scheduler

//go:generate mockgen -source=scheduler.go -destination=mock_scheduler.go -package=scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/settlement"
	"auction-engine/utils"
)

// Lifecycle is the part of the lifecycle manager the sweep drives
type Lifecycle interface {
	ListAuctions(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error)
	ActivateDue(ctx context.Context, auctionID string, now time.Time) (bool, error)
	EndDue(ctx context.Context, auctionID string, now time.Time) (bool, error)
}

// Settler settles an ended auction
type Settler interface {
	Settle(ctx context.Context, auctionID string) (settlement.Result, error)
}

// HoldReleaser releases escrow holds whose hold period has passed
type HoldReleaser interface {
	ReleaseDueHolds(ctx context.Context, now time.Time) (int, error)
}

// SweepReport counts what one sweep did
type SweepReport struct {
	Skipped   bool
	Activated int
	Ended     int
	Settled   int
	Released  int
	Failures  int
}

// Scheduler sweeps on a fixed interval. Only one sweep runs at a time.
type Scheduler struct {
	lifecycle Lifecycle
	settler   Settler
	escrow    HoldReleaser
	interval  time.Duration
	now       utils.Clock
	running   sync.Mutex
}

// New creates a Scheduler. escrow may be nil when holds are released manually.
func New(lifecycle Lifecycle, settler Settler, escrow HoldReleaser, interval time.Duration, clock utils.Clock) *Scheduler {
	if clock == nil {
		clock = utils.SystemClock
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{
		lifecycle: lifecycle,
		settler:   settler,
		escrow:    escrow,
		interval:  interval,
		now:       clock,
	}
}

// Run sweeps every interval until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	utils.Info("scheduler started", map[string]any{"interval": s.interval.String()})
	for {
		select {
		case <-ctx.Done():
			utils.Info("scheduler stopped", nil)
			return
		case <-ticker.C:
			report := s.Sweep(ctx, s.now())
			if report.Activated+report.Ended+report.Settled+report.Released+report.Failures > 0 {
				utils.Info("sweep completed", map[string]any{
					"activated": report.Activated,
					"ended":     report.Ended,
					"settled":   report.Settled,
					"released":  report.Released,
					"failures":  report.Failures,
				})
			}
		}
	}
}

// Sweep evaluates every auction once against now. Re-evaluating an auction
// already in its target state is a no-op, and a failure on one auction is
// logged and counted without stopping the rest. A sweep that finds another
// one running returns a Skipped report.
func (s *Scheduler) Sweep(ctx context.Context, now time.Time) SweepReport {
	if !s.running.TryLock() {
		return SweepReport{Skipped: true}
	}
	defer s.running.Unlock()

	var r SweepReport
	s.activateDue(ctx, now, &r)
	s.endDue(ctx, now, &r)
	s.settleEnded(ctx, &r)
	s.releaseHolds(ctx, now, &r)
	return r
}

func (s *Scheduler) activateDue(ctx context.Context, now time.Time, r *SweepReport) {
	scheduled, err := s.lifecycle.ListAuctions(ctx, model.StatusScheduled)
	if err != nil {
		s.fail(r, "list scheduled auctions", "", err)
		return
	}
	for _, a := range scheduled {
		if now.Before(a.StartAt) {
			continue
		}
		changed, err := s.lifecycle.ActivateDue(ctx, a.AuctionID, now)
		if err != nil {
			s.fail(r, "activate auction", a.AuctionID, err)
			continue
		}
		if changed {
			r.Activated++
		}
	}
}

// endDue ends active and paused auctions whose EndAt has passed, then settles them
func (s *Scheduler) endDue(ctx context.Context, now time.Time, r *SweepReport) {
	for _, status := range []model.AuctionStatus{model.StatusActive, model.StatusPaused} {
		running, err := s.lifecycle.ListAuctions(ctx, status)
		if err != nil {
			s.fail(r, "list "+string(status)+" auctions", "", err)
			continue
		}
		s.endEach(ctx, running, now, r)
	}
}

func (s *Scheduler) endEach(ctx context.Context, running []model.Auction, now time.Time, r *SweepReport) {
	for _, a := range running {
		if now.Before(a.EndAt) {
			continue
		}
		changed, err := s.lifecycle.EndDue(ctx, a.AuctionID, now)
		if err != nil {
			s.fail(r, "end auction", a.AuctionID, err)
			continue
		}
		if !changed {
			continue
		}
		r.Ended++
		s.settle(ctx, a.AuctionID, r)
	}
}

// settleEnded retries auctions that ended but whose settlement failed on an earlier pass
func (s *Scheduler) settleEnded(ctx context.Context, r *SweepReport) {
	ended, err := s.lifecycle.ListAuctions(ctx, model.StatusEnded)
	if err != nil {
		s.fail(r, "list ended auctions", "", err)
		return
	}
	for _, a := range ended {
		s.settle(ctx, a.AuctionID, r)
	}
}

func (s *Scheduler) settle(ctx context.Context, auctionID string, r *SweepReport) {
	_, err := s.settler.Settle(ctx, auctionID)
	switch {
	case err == nil:
		r.Settled++
	case errors.Is(err, biddingerrors.ErrAlreadySettled):
	default:
		s.fail(r, "settle auction", auctionID, err)
	}
}

func (s *Scheduler) releaseHolds(ctx context.Context, now time.Time, r *SweepReport) {
	if s.escrow == nil {
		return
	}
	n, err := s.escrow.ReleaseDueHolds(ctx, now)
	r.Released += n
	if err != nil {
		s.fail(r, "release due holds", "", err)
	}
}

func (s *Scheduler) fail(r *SweepReport, op, auctionID string, err error) {
	r.Failures++
	fields := map[string]any{
		"op":    op,
		"error": err.Error(),
	}
	if auctionID != "" {
		fields["auction_id"] = auctionID
	}
	utils.Error("sweep step failed", fields)
}
