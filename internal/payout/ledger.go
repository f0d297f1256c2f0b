// Package payout is the seller money ledger: escrow credits from settlement,
// release of escrow to the withdrawable balance, withdrawals and the payout
// methods they are sent to.
package payout

import (
	"context"
	"errors"
	"fmt"
	"sort"
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

// Config holds the ledger's money rules
type Config struct {
	MinimumPayout decimal.Decimal
	HoldPeriod    time.Duration
	PayoutFeeRate decimal.Decimal
}

// Deps are the collaborators of a Ledger
type Deps struct {
	Store     repository.LedgerDB
	Locks     *locker.Keyed
	Disburser Disburser
	Notifier  notify.Notifier
	Sellers   catalog.SellerDirectory
	Clock     utils.Clock
}

// Ledger serializes every balance change of a seller in that seller's
// critical section and persists it with a version compare-and-set.
type Ledger struct {
	store     repository.LedgerDB
	locks     *locker.Keyed
	disburser Disburser
	notifier  notify.Notifier
	sellers   catalog.SellerDirectory
	now       utils.Clock
	cfg       Config
}

// NewLedger creates a Ledger
func NewLedger(deps Deps, cfg Config) *Ledger {
	l := &Ledger{
		store:     deps.Store,
		locks:     deps.Locks,
		disburser: deps.Disburser,
		notifier:  deps.Notifier,
		sellers:   deps.Sellers,
		now:       deps.Clock,
		cfg:       cfg,
	}
	if l.locks == nil {
		l.locks = locker.New()
	}
	if l.disburser == nil {
		l.disburser = LogDisburser{}
	}
	if l.notifier == nil {
		l.notifier = notify.LogNotifier{}
	}
	if l.now == nil {
		l.now = utils.SystemClock
	}
	return l
}

// MinimumPayout returns the configured withdrawal threshold
func (l *Ledger) MinimumPayout() decimal.Decimal {
	return l.cfg.MinimumPayout
}

// CreditPending escrows amount for the seller from a settled auction. A
// second credit for the same auction fails with ErrDuplicateHold.
func (l *Ledger) CreditPending(ctx context.Context, sellerID, auctionID string, amount decimal.Decimal) (model.EscrowHold, error) {
	if sellerID == "" || auctionID == "" {
		return model.EscrowHold{}, fmt.Errorf("payout: %w - missing seller or auction id", biddingerrors.ErrInvalidAmount)
	}
	if !amount.IsPositive() {
		return model.EscrowHold{}, fmt.Errorf("payout: %w - credit must be positive, got %s", biddingerrors.ErrInvalidAmount, amount)
	}

	unlock := l.locks.Lock(sellerID)
	defer unlock()

	bal, err := l.store.GetBalance(ctx, sellerID)
	if err != nil {
		return model.EscrowHold{}, fmt.Errorf("payout: failed to load balance of seller %s: %w", sellerID, err)
	}

	now := l.now()
	hold := model.EscrowHold{
		HoldID:    utils.DeriveID("hold", auctionID),
		SellerID:  sellerID,
		AuctionID: auctionID,
		Amount:    amount,
		Remaining: amount,
		HeldAt:    now,
		ReleaseAt: now.Add(l.cfg.HoldPeriod),
	}

	expected := bal.Version
	bal.Pending = bal.Pending.Add(amount)
	bal.UpdatedAt = now
	if _, err := l.store.CommitBalance(ctx, repository.BalanceCommit{
		Balance:         bal,
		ExpectedVersion: expected,
		NewHold:         &hold,
	}); err != nil {
		return model.EscrowHold{}, fmt.Errorf("payout: failed to credit seller %s for auction %s: %w", sellerID, auctionID, err)
	}

	utils.Info("escrow credited", map[string]any{
		"seller_id":  sellerID,
		"auction_id": auctionID,
		"amount":     amount.String(),
		"release_at": hold.ReleaseAt.Format(time.RFC3339),
	})
	return hold, nil
}

// ReleaseToAvailable moves amount from pending to available, consuming the
// oldest open holds first.
func (l *Ledger) ReleaseToAvailable(ctx context.Context, sellerID string, amount decimal.Decimal) (model.SellerBalance, error) {
	if sellerID == "" {
		return model.SellerBalance{}, fmt.Errorf("payout: %w - missing seller id", biddingerrors.ErrInvalidAmount)
	}
	if !amount.IsPositive() {
		return model.SellerBalance{}, fmt.Errorf("payout: %w - release must be positive, got %s", biddingerrors.ErrInvalidAmount, amount)
	}

	unlock := l.locks.Lock(sellerID)
	defer unlock()

	bal, err := l.store.GetBalance(ctx, sellerID)
	if err != nil {
		return model.SellerBalance{}, fmt.Errorf("payout: failed to load balance of seller %s: %w", sellerID, err)
	}
	if amount.GreaterThan(bal.Pending) {
		return model.SellerBalance{}, fmt.Errorf("payout: seller %s release %s exceeds pending %s: %w",
			sellerID, amount, bal.Pending, biddingerrors.ErrInsufficientPending)
	}

	holds, err := l.store.ListOpenHolds(ctx, sellerID)
	if err != nil {
		return model.SellerBalance{}, fmt.Errorf("payout: failed to load holds of seller %s: %w", sellerID, err)
	}
	return l.releaseLocked(ctx, bal, amount, holds)
}

// releaseLocked consumes amount from holds in order and commits the balance. The caller holds the seller lock.
func (l *Ledger) releaseLocked(ctx context.Context, bal model.SellerBalance, amount decimal.Decimal, holds []model.EscrowHold) (model.SellerBalance, error) {
	now := l.now()
	left := amount
	var touched []model.EscrowHold
	for _, h := range holds {
		if !left.IsPositive() {
			break
		}
		take := decimal.Min(left, h.Remaining)
		h.Remaining = h.Remaining.Sub(take)
		if h.Remaining.IsZero() {
			released := now
			h.ReleasedAt = &released
		}
		left = left.Sub(take)
		touched = append(touched, h)
	}

	expected := bal.Version
	bal.Pending = bal.Pending.Sub(amount)
	bal.Available = bal.Available.Add(amount)
	bal.UpdatedAt = now
	next, err := l.store.CommitBalance(ctx, repository.BalanceCommit{
		Balance:         bal,
		ExpectedVersion: expected,
		UpdatedHolds:    touched,
	})
	if err != nil {
		return model.SellerBalance{}, fmt.Errorf("payout: failed to release %s for seller %s: %w", amount, bal.SellerID, err)
	}

	utils.Info("escrow released", map[string]any{
		"seller_id": bal.SellerID,
		"amount":    amount.String(),
		"holds":     len(touched),
		"available": next.Available.String(),
	})
	return next, nil
}

// ReleaseDueHolds releases every hold whose hold period has passed and
// returns how many sellers were credited. A failure for one seller does not
// stop the others; all failures are returned joined.
func (l *Ledger) ReleaseDueHolds(ctx context.Context, now time.Time) (int, error) {
	due, err := l.store.ListDueHolds(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("payout: failed to list due holds: %w", err)
	}

	sellers := make(map[string]struct{})
	for _, h := range due {
		sellers[h.SellerID] = struct{}{}
	}
	ids := make([]string, 0, len(sellers))
	for id := range sellers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	released := 0
	var errs []error
	for _, sellerID := range ids {
		ok, err := l.releaseDueForSeller(ctx, sellerID, now)
		if err != nil {
			utils.Error("payout: failed to release due holds", map[string]any{
				"seller_id": sellerID,
				"error":     err.Error(),
			})
			errs = append(errs, err)
			continue
		}
		if ok {
			released++
		}
	}
	return released, errors.Join(errs...)
}

func (l *Ledger) releaseDueForSeller(ctx context.Context, sellerID string, now time.Time) (bool, error) {
	unlock := l.locks.Lock(sellerID)
	defer unlock()

	bal, err := l.store.GetBalance(ctx, sellerID)
	if err != nil {
		return false, fmt.Errorf("payout: failed to load balance of seller %s: %w", sellerID, err)
	}
	open, err := l.store.ListOpenHolds(ctx, sellerID)
	if err != nil {
		return false, fmt.Errorf("payout: failed to load holds of seller %s: %w", sellerID, err)
	}

	// re-read under the lock; a manual release may have consumed some holds already
	var due []model.EscrowHold
	amount := decimal.Zero
	for _, h := range open {
		if !h.ReleaseAt.After(now) {
			due = append(due, h)
			amount = amount.Add(h.Remaining)
		}
	}
	amount = decimal.Min(amount, bal.Pending)
	if !amount.IsPositive() {
		return false, nil
	}

	if _, err := l.releaseLocked(ctx, bal, amount, due); err != nil {
		return false, err
	}
	return true, nil
}

// Withdraw pays out the seller's entire available balance to the default
// payout method. The disbursement runs before anything is written, so a
// failed transfer leaves the balance unchanged and creates no payout.
func (l *Ledger) Withdraw(ctx context.Context, sellerID string) (model.Payout, error) {
	if sellerID == "" {
		return model.Payout{}, fmt.Errorf("payout: %w - missing seller id", biddingerrors.ErrInvalidAmount)
	}

	unlock := l.locks.Lock(sellerID)
	defer unlock()

	bal, err := l.store.GetBalance(ctx, sellerID)
	if err != nil {
		return model.Payout{}, fmt.Errorf("payout: failed to load balance of seller %s: %w", sellerID, err)
	}
	if !bal.Available.IsPositive() || bal.Available.LessThan(l.cfg.MinimumPayout) {
		return model.Payout{}, fmt.Errorf("payout: seller %s available %s, minimum %s: %w",
			sellerID, bal.Available, l.cfg.MinimumPayout, biddingerrors.ErrBelowMinimum)
	}

	method, err := l.store.GetDefaultPayoutMethod(ctx, sellerID)
	if errors.Is(err, biddingerrors.ErrPayoutMethodNotFound) {
		return model.Payout{}, fmt.Errorf("payout: seller %s: %w", sellerID, biddingerrors.ErrNoPaymentMethod)
	}
	if err != nil {
		return model.Payout{}, fmt.Errorf("payout: failed to load default method of seller %s: %w", sellerID, err)
	}

	amount := bal.Available
	fee := amount.Mul(l.cfg.PayoutFeeRate).Round(model.MoneyPlaces)
	p := model.Payout{
		PayoutID:  utils.GenerateID(),
		SellerID:  sellerID,
		Amount:    amount,
		Fee:       fee,
		NetAmount: amount.Sub(fee),
		Method:    method,
		CreatedAt: l.now(),
	}

	ref, err := l.disburser.Disburse(ctx, Disbursement{
		PayoutID:  p.PayoutID,
		SellerID:  sellerID,
		Amount:    p.Amount,
		NetAmount: p.NetAmount,
		Method:    method,
	})
	if err != nil {
		return model.Payout{}, fmt.Errorf("payout: seller %s: %w: %w", sellerID, biddingerrors.ErrDisbursementFailed, err)
	}
	p.Reference = ref
	p.Status = model.PayoutPaid

	if err := l.recordPayout(ctx, bal, p); err != nil {
		return model.Payout{}, err
	}

	utils.Info("payout paid", map[string]any{
		"seller_id":  sellerID,
		"payout_id":  p.PayoutID,
		"amount":     p.Amount.String(),
		"net_amount": p.NetAmount.String(),
		"reference":  ref,
	})
	l.notifier.Notify(ctx, notify.Event{
		Type:       notify.EventPayoutPaid,
		SellerID:   sellerID,
		Amount:     p.NetAmount,
		OccurredAt: p.CreatedAt,
	})
	return p, nil
}

// recordAttempts bounds how often a disbursed payout is written before giving up
const recordAttempts = 3

// recordPayout debits a payout that has already been disbursed. A failed write
// is retried against a fresh balance; the transfer itself is never repeated.
// If every attempt fails the payout id and gateway reference are logged for
// reconciliation, and the disburser treats PayoutID as its idempotency key.
func (l *Ledger) recordPayout(ctx context.Context, bal model.SellerBalance, p model.Payout) error {
	var err error
	for attempt := 1; attempt <= recordAttempts; attempt++ {
		if attempt > 1 {
			bal, err = l.store.GetBalance(ctx, p.SellerID)
			if err != nil {
				continue
			}
		}

		expected := bal.Version
		bal.Available = decimal.Max(bal.Available.Sub(p.Amount), decimal.Zero)
		bal.TotalPaidOut = bal.TotalPaidOut.Add(p.Amount)
		bal.UpdatedAt = p.CreatedAt
		_, err = l.store.CommitBalance(ctx, repository.BalanceCommit{
			Balance:         bal,
			ExpectedVersion: expected,
			Payout:          &p,
		})
		if err == nil {
			return nil
		}
		utils.Warn("payout: failed to record disbursed payout", map[string]any{
			"seller_id": p.SellerID,
			"payout_id": p.PayoutID,
			"attempt":   attempt,
			"error":     err.Error(),
		})
	}

	utils.Error("payout: disbursed but not recorded, needs reconciliation", map[string]any{
		"seller_id":  p.SellerID,
		"payout_id":  p.PayoutID,
		"reference":  p.Reference,
		"amount":     p.Amount.String(),
		"net_amount": p.NetAmount.String(),
		"error":      err.Error(),
	})
	return fmt.Errorf("payout: failed to record payout %s for seller %s: %w", p.PayoutID, p.SellerID, err)
}

// GetBalance returns the seller's balance with the derived withdrawal flag
func (l *Ledger) GetBalance(ctx context.Context, sellerID string) (model.BalanceView, error) {
	bal, err := l.store.GetBalance(ctx, sellerID)
	if err != nil {
		return model.BalanceView{}, fmt.Errorf("payout: failed to load balance of seller %s: %w", sellerID, err)
	}

	hasDefault := true
	if _, err := l.store.GetDefaultPayoutMethod(ctx, sellerID); err != nil {
		if !errors.Is(err, biddingerrors.ErrPayoutMethodNotFound) {
			return model.BalanceView{}, fmt.Errorf("payout: failed to load default method of seller %s: %w", sellerID, err)
		}
		hasDefault = false
	}

	return model.BalanceView{
		SellerID:      sellerID,
		Available:     bal.Available,
		Pending:       bal.Pending,
		TotalPaidOut:  bal.TotalPaidOut,
		CanWithdraw:   hasDefault && bal.Available.IsPositive() && bal.Available.GreaterThanOrEqual(l.cfg.MinimumPayout),
		MinimumPayout: l.cfg.MinimumPayout,
	}, nil
}

// ListPayouts returns the seller's payouts, oldest first
func (l *Ledger) ListPayouts(ctx context.Context, sellerID string) ([]model.Payout, error) {
	payouts, err := l.store.ListPayouts(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("payout: failed to list payouts of seller %s: %w", sellerID, err)
	}
	return payouts, nil
}
