package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"

	"github.com/shopspring/decimal"
)

// BalanceCommit is one atomic change to a seller's ledger. The balance is
// written only if the stored version equals ExpectedVersion; the store sets
// Balance.Version to ExpectedVersion+1.
type BalanceCommit struct {
	Balance         model.SellerBalance
	ExpectedVersion int64
	NewHold         *model.EscrowHold
	UpdatedHolds    []model.EscrowHold
	Payout          *model.Payout
}

// LedgerDB defines the seller balance, escrow and payout storage interface
type LedgerDB interface {
	// GetBalance returns the seller's balance, or a zero balance at version 0
	GetBalance(ctx context.Context, sellerID string) (model.SellerBalance, error)
	CommitBalance(ctx context.Context, commit BalanceCommit) (model.SellerBalance, error)
	// ListOpenHolds returns the seller's unreleased holds, oldest first
	ListOpenHolds(ctx context.Context, sellerID string) ([]model.EscrowHold, error)
	// ListDueHolds returns unreleased holds of all sellers with ReleaseAt at or before now
	ListDueHolds(ctx context.Context, now time.Time) ([]model.EscrowHold, error)
	ListPayouts(ctx context.Context, sellerID string) ([]model.Payout, error)

	// AddPayoutMethod stores a method; if it is default, other defaults of the seller are cleared
	AddPayoutMethod(ctx context.Context, method model.PayoutMethod) error
	GetPayoutMethod(ctx context.Context, methodID string) (model.PayoutMethod, error)
	ListPayoutMethods(ctx context.Context, sellerID string) ([]model.PayoutMethod, error)
	GetDefaultPayoutMethod(ctx context.Context, sellerID string) (model.PayoutMethod, error)
	SetDefaultPayoutMethod(ctx context.Context, methodID string) (model.PayoutMethod, error)
	// DeletePayoutMethod removes a method. If it was the default the oldest
	// remaining method is promoted and returned.
	DeletePayoutMethod(ctx context.Context, methodID string) (deleted model.PayoutMethod, promoted *model.PayoutMethod, err error)
}

// MemoryLedger is a concurrency-safe in-memory implementation of LedgerDB
type MemoryLedger struct {
	mu       sync.RWMutex
	balances map[string]model.SellerBalance
	holds    map[string]model.EscrowHold // key: holdID
	payouts  map[string][]model.Payout   // key: sellerID
	methods  map[string]model.PayoutMethod
}

// NewMemoryLedger creates an empty ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[string]model.SellerBalance),
		holds:    make(map[string]model.EscrowHold),
		payouts:  make(map[string][]model.Payout),
		methods:  make(map[string]model.PayoutMethod),
	}
}

func zeroBalance(sellerID string) model.SellerBalance {
	return model.SellerBalance{
		SellerID:     sellerID,
		Pending:      decimal.Zero,
		Available:    decimal.Zero,
		TotalPaidOut: decimal.Zero,
	}
}

// GetBalance returns the stored balance for a seller
func (l *MemoryLedger) GetBalance(_ context.Context, sellerID string) (model.SellerBalance, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if b, ok := l.balances[sellerID]; ok {
		return b, nil
	}
	return zeroBalance(sellerID), nil
}

// CommitBalance applies a balance change with its hold and payout records in one step
func (l *MemoryLedger) CommitBalance(_ context.Context, commit BalanceCommit) (model.SellerBalance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sellerID := commit.Balance.SellerID
	current, ok := l.balances[sellerID]
	if !ok {
		current = zeroBalance(sellerID)
	}
	if current.Version != commit.ExpectedVersion {
		return model.SellerBalance{}, fmt.Errorf("commit balance for seller %s at version %d (stored %d): %w",
			sellerID, commit.ExpectedVersion, current.Version, biddingerrors.ErrStaleVersion)
	}
	if commit.NewHold != nil {
		if _, exists := l.holds[commit.NewHold.HoldID]; exists {
			return model.SellerBalance{}, fmt.Errorf("commit hold for auction %s: %w", commit.NewHold.AuctionID, biddingerrors.ErrDuplicateHold)
		}
	}
	for _, h := range commit.UpdatedHolds {
		if _, exists := l.holds[h.HoldID]; !exists {
			return model.SellerBalance{}, fmt.Errorf("commit unknown hold %s: %w", h.HoldID, biddingerrors.ErrNotFound)
		}
	}

	next := commit.Balance
	next.Version = commit.ExpectedVersion + 1
	l.balances[sellerID] = next

	if commit.NewHold != nil {
		l.holds[commit.NewHold.HoldID] = *commit.NewHold
	}
	for _, h := range commit.UpdatedHolds {
		l.holds[h.HoldID] = h
	}
	if commit.Payout != nil {
		l.payouts[sellerID] = append(l.payouts[sellerID], *commit.Payout)
	}
	return next, nil
}

func sortHolds(holds []model.EscrowHold) {
	sort.Slice(holds, func(i, j int) bool {
		if holds[i].HeldAt.Equal(holds[j].HeldAt) {
			return holds[i].HoldID < holds[j].HoldID
		}
		return holds[i].HeldAt.Before(holds[j].HeldAt)
	})
}

// ListOpenHolds returns the seller's holds that still escrow funds
func (l *MemoryLedger) ListOpenHolds(_ context.Context, sellerID string) ([]model.EscrowHold, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.EscrowHold, 0)
	for _, h := range l.holds {
		if h.SellerID == sellerID && h.Open() {
			out = append(out, h)
		}
	}
	sortHolds(out)
	return out, nil
}

// ListDueHolds returns open holds whose release time has passed
func (l *MemoryLedger) ListDueHolds(_ context.Context, now time.Time) ([]model.EscrowHold, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.EscrowHold, 0)
	for _, h := range l.holds {
		if h.Open() && !h.ReleaseAt.After(now) {
			out = append(out, h)
		}
	}
	sortHolds(out)
	return out, nil
}

// ListPayouts returns a seller's payouts in creation order
func (l *MemoryLedger) ListPayouts(_ context.Context, sellerID string) ([]model.Payout, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.Payout{}, l.payouts[sellerID]...), nil
}

// AddPayoutMethod stores a new payout method
func (l *MemoryLedger) AddPayoutMethod(_ context.Context, method model.PayoutMethod) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.methods[method.MethodID]; exists {
		return fmt.Errorf("add payout method %s: %w", method.MethodID, biddingerrors.ErrDuplicatePayoutMethod)
	}
	if method.IsDefault {
		l.clearDefaultLocked(method.SellerID)
	}
	l.methods[method.MethodID] = method
	return nil
}

func (l *MemoryLedger) clearDefaultLocked(sellerID string) {
	for id, m := range l.methods {
		if m.SellerID == sellerID && m.IsDefault {
			m.IsDefault = false
			l.methods[id] = m
		}
	}
}

// GetPayoutMethod returns a method by id
func (l *MemoryLedger) GetPayoutMethod(_ context.Context, methodID string) (model.PayoutMethod, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	m, ok := l.methods[methodID]
	if !ok {
		return model.PayoutMethod{}, fmt.Errorf("get payout method %s: %w", methodID, biddingerrors.ErrPayoutMethodNotFound)
	}
	return m, nil
}

func (l *MemoryLedger) sellerMethodsLocked(sellerID string) []model.PayoutMethod {
	out := make([]model.PayoutMethod, 0)
	for _, m := range l.methods {
		if m.SellerID == sellerID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].MethodID < out[j].MethodID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ListPayoutMethods returns a seller's methods, oldest first
func (l *MemoryLedger) ListPayoutMethods(_ context.Context, sellerID string) ([]model.PayoutMethod, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sellerMethodsLocked(sellerID), nil
}

// GetDefaultPayoutMethod returns the seller's default method
func (l *MemoryLedger) GetDefaultPayoutMethod(_ context.Context, sellerID string) (model.PayoutMethod, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, m := range l.sellerMethodsLocked(sellerID) {
		if m.IsDefault {
			return m, nil
		}
	}
	return model.PayoutMethod{}, fmt.Errorf("default payout method for seller %s: %w", sellerID, biddingerrors.ErrPayoutMethodNotFound)
}

// SetDefaultPayoutMethod makes methodID the only default method of its seller
func (l *MemoryLedger) SetDefaultPayoutMethod(_ context.Context, methodID string) (model.PayoutMethod, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.methods[methodID]
	if !ok {
		return model.PayoutMethod{}, fmt.Errorf("set default payout method %s: %w", methodID, biddingerrors.ErrPayoutMethodNotFound)
	}
	l.clearDefaultLocked(m.SellerID)
	m.IsDefault = true
	l.methods[methodID] = m
	return m, nil
}

// DeletePayoutMethod removes a method, promoting another one if it was the default
func (l *MemoryLedger) DeletePayoutMethod(_ context.Context, methodID string) (model.PayoutMethod, *model.PayoutMethod, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.methods[methodID]
	if !ok {
		return model.PayoutMethod{}, nil, fmt.Errorf("delete payout method %s: %w", methodID, biddingerrors.ErrPayoutMethodNotFound)
	}
	delete(l.methods, methodID)

	if !m.IsDefault {
		return m, nil, nil
	}
	remaining := l.sellerMethodsLocked(m.SellerID)
	if len(remaining) == 0 {
		return m, nil, nil
	}
	promoted := remaining[0]
	promoted.IsDefault = true
	l.methods[promoted.MethodID] = promoted
	return m, &promoted, nil
}
