package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerStore is the PostgreSQL implementation of repository.LedgerDB
type LedgerStore struct {
	pool *pgxpool.Pool
}

var _ repository.LedgerDB = (*LedgerStore)(nil)

// NewLedgerStore creates a LedgerStore on pool
func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// GetBalance returns the stored balance or a zero balance at version 0
func (s *LedgerStore) GetBalance(ctx context.Context, sellerID string) (model.SellerBalance, error) {
	b := model.SellerBalance{SellerID: sellerID}
	err := s.pool.QueryRow(ctx, `SELECT pending, available, total_paid_out, version, updated_at
		FROM seller_balances WHERE seller_id = $1`, sellerID).
		Scan(&b.Pending, &b.Available, &b.TotalPaidOut, &b.Version, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SellerBalance{
			SellerID:     sellerID,
			Pending:      decimal.Zero,
			Available:    decimal.Zero,
			TotalPaidOut: decimal.Zero,
		}, nil
	}
	if err != nil {
		return model.SellerBalance{}, fmt.Errorf("get balance of seller %s: %w", sellerID, err)
	}
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

// CommitBalance writes the balance and its hold and payout rows in one transaction
func (s *LedgerStore) CommitBalance(ctx context.Context, c repository.BalanceCommit) (model.SellerBalance, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.SellerBalance{}, fmt.Errorf("commit balance: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	next := c.Balance
	next.Version = c.ExpectedVersion + 1
	sellerID := next.SellerID

	var tag pgconn.CommandTag
	if c.ExpectedVersion == 0 {
		tag, err = tx.Exec(ctx, `INSERT INTO seller_balances (seller_id, pending, available, total_paid_out, version, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (seller_id) DO NOTHING`,
			sellerID, next.Pending, next.Available, next.TotalPaidOut, next.Version, next.UpdatedAt)
	} else {
		tag, err = tx.Exec(ctx, `UPDATE seller_balances SET pending = $2, available = $3, total_paid_out = $4,
			version = $5, updated_at = $6 WHERE seller_id = $1 AND version = $7`,
			sellerID, next.Pending, next.Available, next.TotalPaidOut, next.Version, next.UpdatedAt, c.ExpectedVersion)
	}
	if err != nil {
		return model.SellerBalance{}, fmt.Errorf("commit balance for seller %s: %w", sellerID, err)
	}
	if tag.RowsAffected() != 1 {
		return model.SellerBalance{}, fmt.Errorf("commit balance for seller %s at version %d: %w",
			sellerID, c.ExpectedVersion, biddingerrors.ErrStaleVersion)
	}

	if h := c.NewHold; h != nil {
		_, err := tx.Exec(ctx, `INSERT INTO escrow_holds (hold_id, seller_id, auction_id, amount, remaining, held_at, release_at, released_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			h.HoldID, h.SellerID, h.AuctionID, h.Amount, h.Remaining, h.HeldAt, h.ReleaseAt, h.ReleasedAt)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.SellerBalance{}, fmt.Errorf("commit hold for auction %s: %w", h.AuctionID, biddingerrors.ErrDuplicateHold)
		}
		if err != nil {
			return model.SellerBalance{}, fmt.Errorf("commit hold for auction %s: %w", h.AuctionID, err)
		}
	}

	for _, h := range c.UpdatedHolds {
		tag, err := tx.Exec(ctx, `UPDATE escrow_holds SET remaining = $2, released_at = $3 WHERE hold_id = $1`,
			h.HoldID, h.Remaining, h.ReleasedAt)
		if err != nil {
			return model.SellerBalance{}, fmt.Errorf("commit hold %s: %w", h.HoldID, err)
		}
		if tag.RowsAffected() != 1 {
			return model.SellerBalance{}, fmt.Errorf("commit unknown hold %s: %w", h.HoldID, biddingerrors.ErrNotFound)
		}
	}

	if p := c.Payout; p != nil {
		method, err := json.Marshal(p.Method)
		if err != nil {
			return model.SellerBalance{}, fmt.Errorf("encode payout method: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO payouts (payout_id, seller_id, amount, fee, net_amount, status, method, reference, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.PayoutID, p.SellerID, p.Amount, p.Fee, p.NetAmount, string(p.Status), method, p.Reference, p.CreatedAt); err != nil {
			return model.SellerBalance{}, fmt.Errorf("commit payout %s: %w", p.PayoutID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.SellerBalance{}, fmt.Errorf("commit balance for seller %s: %w", sellerID, err)
	}
	return next, nil
}

const holdColumns = `hold_id, seller_id, auction_id, amount, remaining, held_at, release_at, released_at`

func (s *LedgerStore) queryHolds(ctx context.Context, query string, args ...any) ([]model.EscrowHold, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query holds: %w", err)
	}
	defer rows.Close()

	out := make([]model.EscrowHold, 0)
	for rows.Next() {
		var h model.EscrowHold
		if err := rows.Scan(&h.HoldID, &h.SellerID, &h.AuctionID, &h.Amount, &h.Remaining,
			&h.HeldAt, &h.ReleaseAt, &h.ReleasedAt); err != nil {
			return nil, fmt.Errorf("scan hold: %w", err)
		}
		h.HeldAt, h.ReleaseAt = h.HeldAt.UTC(), h.ReleaseAt.UTC()
		out = append(out, h)
	}
	return out, rows.Err()
}

// ListOpenHolds returns the seller's unreleased holds, oldest first
func (s *LedgerStore) ListOpenHolds(ctx context.Context, sellerID string) ([]model.EscrowHold, error) {
	return s.queryHolds(ctx, `SELECT `+holdColumns+` FROM escrow_holds
		WHERE seller_id = $1 AND released_at IS NULL AND remaining > 0 ORDER BY held_at, hold_id`, sellerID)
}

// ListDueHolds returns unreleased holds whose release time has passed
func (s *LedgerStore) ListDueHolds(ctx context.Context, now time.Time) ([]model.EscrowHold, error) {
	return s.queryHolds(ctx, `SELECT `+holdColumns+` FROM escrow_holds
		WHERE released_at IS NULL AND remaining > 0 AND release_at <= $1 ORDER BY held_at, hold_id`, now)
}

// ListPayouts returns a seller's payouts in creation order
func (s *LedgerStore) ListPayouts(ctx context.Context, sellerID string) ([]model.Payout, error) {
	rows, err := s.pool.Query(ctx, `SELECT payout_id, seller_id, amount, fee, net_amount, status, method, reference, created_at
		FROM payouts WHERE seller_id = $1 ORDER BY created_at, payout_id`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list payouts of seller %s: %w", sellerID, err)
	}
	defer rows.Close()

	out := make([]model.Payout, 0)
	for rows.Next() {
		var (
			p      model.Payout
			status string
			method []byte
		)
		if err := rows.Scan(&p.PayoutID, &p.SellerID, &p.Amount, &p.Fee, &p.NetAmount, &status, &method,
			&p.Reference, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payout: %w", err)
		}
		p.Status = model.PayoutStatus(status)
		if err := json.Unmarshal(method, &p.Method); err != nil {
			return nil, fmt.Errorf("decode method of payout %s: %w", p.PayoutID, err)
		}
		p.CreatedAt = p.CreatedAt.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

const methodColumns = `method_id, seller_id, method, account_name, mobile_number, bank_name, account_number, is_default, created_at`

func scanMethod(row pgx.Row) (model.PayoutMethod, error) {
	var (
		m    model.PayoutMethod
		kind string
	)
	if err := row.Scan(&m.MethodID, &m.SellerID, &kind, &m.AccountName, &m.MobileNumber,
		&m.BankName, &m.AccountNumber, &m.IsDefault, &m.CreatedAt); err != nil {
		return model.PayoutMethod{}, err
	}
	m.Method = model.PayoutMethodType(kind)
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}

func (s *LedgerStore) queryMethods(ctx context.Context, q pgxQuerier, query string, args ...any) ([]model.PayoutMethod, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query payout methods: %w", err)
	}
	defer rows.Close()

	out := make([]model.PayoutMethod, 0)
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payout method: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// AddPayoutMethod inserts a method, clearing the seller's other defaults first if it is default
func (s *LedgerStore) AddPayoutMethod(ctx context.Context, m model.PayoutMethod) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("add payout method: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if m.IsDefault {
		if _, err := tx.Exec(ctx, `UPDATE payout_methods SET is_default = FALSE WHERE seller_id = $1 AND is_default`, m.SellerID); err != nil {
			return fmt.Errorf("add payout method: clear default: %w", err)
		}
	}
	_, err = tx.Exec(ctx, `INSERT INTO payout_methods (`+methodColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.MethodID, m.SellerID, string(m.Method), m.AccountName, m.MobileNumber, m.BankName, m.AccountNumber, m.IsDefault, m.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("add payout method %s: %w", m.MethodID, biddingerrors.ErrDuplicatePayoutMethod)
	}
	if err != nil {
		return fmt.Errorf("add payout method %s: %w", m.MethodID, err)
	}
	return tx.Commit(ctx)
}

// GetPayoutMethod returns a method by id
func (s *LedgerStore) GetPayoutMethod(ctx context.Context, methodID string) (model.PayoutMethod, error) {
	m, err := scanMethod(s.pool.QueryRow(ctx, `SELECT `+methodColumns+` FROM payout_methods WHERE method_id = $1`, methodID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.PayoutMethod{}, fmt.Errorf("get payout method %s: %w", methodID, biddingerrors.ErrPayoutMethodNotFound)
	}
	if err != nil {
		return model.PayoutMethod{}, fmt.Errorf("get payout method %s: %w", methodID, err)
	}
	return m, nil
}

// ListPayoutMethods returns a seller's methods, oldest first
func (s *LedgerStore) ListPayoutMethods(ctx context.Context, sellerID string) ([]model.PayoutMethod, error) {
	return s.queryMethods(ctx, s.pool, `SELECT `+methodColumns+` FROM payout_methods
		WHERE seller_id = $1 ORDER BY created_at, method_id`, sellerID)
}

// GetDefaultPayoutMethod returns the seller's default method
func (s *LedgerStore) GetDefaultPayoutMethod(ctx context.Context, sellerID string) (model.PayoutMethod, error) {
	m, err := scanMethod(s.pool.QueryRow(ctx, `SELECT `+methodColumns+` FROM payout_methods
		WHERE seller_id = $1 AND is_default`, sellerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.PayoutMethod{}, fmt.Errorf("default payout method for seller %s: %w", sellerID, biddingerrors.ErrPayoutMethodNotFound)
	}
	if err != nil {
		return model.PayoutMethod{}, fmt.Errorf("default payout method for seller %s: %w", sellerID, err)
	}
	return m, nil
}

// SetDefaultPayoutMethod clears the seller's default and sets methodID in one transaction
func (s *LedgerStore) SetDefaultPayoutMethod(ctx context.Context, methodID string) (model.PayoutMethod, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.PayoutMethod{}, fmt.Errorf("set default payout method: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	m, err := scanMethod(tx.QueryRow(ctx, `SELECT `+methodColumns+` FROM payout_methods WHERE method_id = $1 FOR UPDATE`, methodID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.PayoutMethod{}, fmt.Errorf("set default payout method %s: %w", methodID, biddingerrors.ErrPayoutMethodNotFound)
	}
	if err != nil {
		return model.PayoutMethod{}, fmt.Errorf("set default payout method %s: %w", methodID, err)
	}

	if _, err := tx.Exec(ctx, `UPDATE payout_methods SET is_default = FALSE WHERE seller_id = $1 AND is_default`, m.SellerID); err != nil {
		return model.PayoutMethod{}, fmt.Errorf("set default payout method: clear default: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE payout_methods SET is_default = TRUE WHERE method_id = $1`, methodID); err != nil {
		return model.PayoutMethod{}, fmt.Errorf("set default payout method %s: %w", methodID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return model.PayoutMethod{}, fmt.Errorf("set default payout method %s: commit: %w", methodID, err)
	}
	m.IsDefault = true
	return m, nil
}

// DeletePayoutMethod removes a method and promotes the oldest remaining one if it was the default
func (s *LedgerStore) DeletePayoutMethod(ctx context.Context, methodID string) (model.PayoutMethod, *model.PayoutMethod, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.PayoutMethod{}, nil, fmt.Errorf("delete payout method: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	m, err := scanMethod(tx.QueryRow(ctx, `DELETE FROM payout_methods WHERE method_id = $1 RETURNING `+methodColumns, methodID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.PayoutMethod{}, nil, fmt.Errorf("delete payout method %s: %w", methodID, biddingerrors.ErrPayoutMethodNotFound)
	}
	if err != nil {
		return model.PayoutMethod{}, nil, fmt.Errorf("delete payout method %s: %w", methodID, err)
	}

	var promoted *model.PayoutMethod
	if m.IsDefault {
		remaining, err := s.queryMethods(ctx, tx, `SELECT `+methodColumns+` FROM payout_methods
			WHERE seller_id = $1 ORDER BY created_at, method_id LIMIT 1`, m.SellerID)
		if err != nil {
			return model.PayoutMethod{}, nil, err
		}
		if len(remaining) == 1 {
			p := remaining[0]
			if _, err := tx.Exec(ctx, `UPDATE payout_methods SET is_default = TRUE WHERE method_id = $1`, p.MethodID); err != nil {
				return model.PayoutMethod{}, nil, fmt.Errorf("promote payout method %s: %w", p.MethodID, err)
			}
			p.IsDefault = true
			promoted = &p
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.PayoutMethod{}, nil, fmt.Errorf("delete payout method %s: commit: %w", methodID, err)
	}
	return m, promoted, nil
}
