// Package postgres implements the auction and ledger stores on PostgreSQL
// with pgx. Version checks are part of the UPDATE predicates, and multi-row
// changes run in one transaction.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// Migrate creates the tables and indexes if they do not exist
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: failed to apply schema: %w", err)
	}
	return nil
}

// AuctionStore is the PostgreSQL implementation of repository.AuctionDB
type AuctionStore struct {
	pool *pgxpool.Pool
}

var _ repository.AuctionDB = (*AuctionStore)(nil)

// NewAuctionStore creates an AuctionStore on pool
func NewAuctionStore(pool *pgxpool.Pool) *AuctionStore {
	return &AuctionStore{pool: pool}
}

const auctionColumns = `a.auction_id, a.auction_item_id, a.seller_id, a.start_price, a.reserve_price,
	a.min_increment, a.start_at, a.end_at, a.status, a.current_high_bid, a.current_high_bidder,
	a.version, a.settlement, a.created_at, a.updated_at,
	(SELECT COUNT(*) FROM participants p WHERE p.auction_id = a.auction_id)`

func scanAuction(row pgx.Row) (model.Auction, error) {
	var (
		a          model.Auction
		status     string
		high       decimal.NullDecimal
		bidder     *string
		settlement []byte
		count      int64
	)
	err := row.Scan(&a.AuctionID, &a.AuctionItemID, &a.SellerID, &a.StartPrice, &a.ReservePrice,
		&a.MinIncrement, &a.StartAt, &a.EndAt, &status, &high, &bidder,
		&a.Version, &settlement, &a.CreatedAt, &a.UpdatedAt, &count)
	if err != nil {
		return model.Auction{}, err
	}

	if a.Status, err = model.ParseAuctionStatus(status); err != nil {
		return model.Auction{}, err
	}
	if high.Valid {
		v := high.Decimal
		a.CurrentHighBid = &v
	}
	a.CurrentHighBidder = bidder
	if len(settlement) > 0 {
		var rec model.SettlementRecord
		if err := json.Unmarshal(settlement, &rec); err != nil {
			return model.Auction{}, fmt.Errorf("decode settlement of auction %s: %w", a.AuctionID, err)
		}
		a.Settlement = &rec
	}
	a.ParticipantsCount = int(count)
	a.StartAt, a.EndAt = a.StartAt.UTC(), a.EndAt.UTC()
	a.CreatedAt, a.UpdatedAt = a.CreatedAt.UTC(), a.UpdatedAt.UTC()
	return a, nil
}

// mutableArgs are the columns written by UpdateAuction and RecordBid, in $2.. order
func mutableArgs(a model.Auction) ([]any, error) {
	var settlement []byte
	if a.Settlement != nil {
		var err error
		if settlement, err = json.Marshal(a.Settlement); err != nil {
			return nil, fmt.Errorf("encode settlement of auction %s: %w", a.AuctionID, err)
		}
	}
	var high any
	if a.CurrentHighBid != nil {
		high = *a.CurrentHighBid
	}
	return []any{string(a.Status), high, a.CurrentHighBidder, a.Version, settlement, a.UpdatedAt}, nil
}

const updateAuction = `UPDATE auctions SET status = $2, current_high_bid = $3, current_high_bidder = $4,
	version = $5, settlement = $6, updated_at = $7
	WHERE auction_id = $1 AND version = $8`

// CreateAuction inserts a new auction
func (s *AuctionStore) CreateAuction(ctx context.Context, a model.Auction) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO auctions (auction_id, auction_item_id, seller_id, start_price,
		reserve_price, min_increment, start_at, end_at, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.AuctionID, a.AuctionItemID, a.SellerID, a.StartPrice, a.ReservePrice, a.MinIncrement,
		a.StartAt, a.EndAt, string(a.Status), a.Version, a.CreatedAt, a.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if pgErr.ConstraintName == "auctions_one_unsettled_per_item" {
			return fmt.Errorf("create auction for item %s: %w", a.AuctionItemID, biddingerrors.ErrItemHasOpenAuction)
		}
		return fmt.Errorf("create auction %s: %w", a.AuctionID, biddingerrors.ErrDuplicateAuction)
	}
	if err != nil {
		return fmt.Errorf("create auction %s: %w", a.AuctionID, err)
	}
	return nil
}

// GetAuction returns an auction with its participant count
func (s *AuctionStore) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	a, err := scanAuction(s.pool.QueryRow(ctx, `SELECT `+auctionColumns+` FROM auctions a WHERE a.auction_id = $1`, auctionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, err)
	}
	return a, nil
}

// UpdateAuction writes the mutable columns if the stored version matches
func (s *AuctionStore) UpdateAuction(ctx context.Context, a model.Auction, expectedVersion int64) error {
	args, err := mutableArgs(a)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, updateAuction, append(append([]any{a.AuctionID}, args...), expectedVersion)...)
	if err != nil {
		return fmt.Errorf("update auction %s: %w", a.AuctionID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	if _, err := s.GetAuction(ctx, a.AuctionID); err != nil {
		return fmt.Errorf("update auction: %w", err)
	}
	return fmt.Errorf("update auction %s at version %d: %w", a.AuctionID, expectedVersion, biddingerrors.ErrStaleVersion)
}

// ListAuctionsByStatus returns the auctions in status ordered by start time
func (s *AuctionStore) ListAuctionsByStatus(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+auctionColumns+` FROM auctions a
		WHERE a.status = $1 ORDER BY a.start_at, a.auction_id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list %s auctions: %w", status, err)
	}
	return collectAuctions(rows)
}

func collectAuctions(rows pgx.Rows) ([]model.Auction, error) {
	defer rows.Close()
	out := make([]model.Auction, 0)
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// RecordBid appends a bid under a row lock on its auction. For accepted bids
// the auction row and participant are written in the same transaction.
func (s *AuctionStore) RecordBid(ctx context.Context, bid model.Bid, updated *model.Auction, expectedVersion int64) (model.Bid, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Bid{}, fmt.Errorf("record bid: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var version int64
	err = tx.QueryRow(ctx, `SELECT version FROM auctions WHERE auction_id = $1 FOR UPDATE`, bid.AuctionID).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Bid{}, fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, biddingerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, err)
	}

	if updated != nil {
		if version != expectedVersion {
			return model.Bid{}, fmt.Errorf("record bid for auction %s at version %d (stored %d): %w",
				bid.AuctionID, expectedVersion, version, biddingerrors.ErrStaleVersion)
		}
		args, err := mutableArgs(*updated)
		if err != nil {
			return model.Bid{}, err
		}
		if _, err := tx.Exec(ctx, updateAuction, append(append([]any{bid.AuctionID}, args...), expectedVersion)...); err != nil {
			return model.Bid{}, fmt.Errorf("record bid: update auction %s: %w", bid.AuctionID, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO participants (auction_id, bidder_id, first_bid_at)
			VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, bid.AuctionID, bid.BidderID, bid.PlacedAt); err != nil {
			return model.Bid{}, fmt.Errorf("record bid: add participant: %w", err)
		}
	}

	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(sequence), 0) + 1 FROM bids WHERE auction_id = $1`,
		bid.AuctionID).Scan(&bid.Sequence); err != nil {
		return model.Bid{}, fmt.Errorf("record bid: next sequence: %w", err)
	}

	var reason *string
	if bid.RejectionReason != nil {
		r := string(*bid.RejectionReason)
		reason = &r
	}
	if _, err := tx.Exec(ctx, `INSERT INTO bids (auction_id, sequence, bid_id, bidder_id, amount, placed_at, accepted, rejection_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		bid.AuctionID, bid.Sequence, bid.BidID, bid.BidderID, bid.Amount, bid.PlacedAt, bid.Accepted, reason); err != nil {
		return model.Bid{}, fmt.Errorf("record bid %s: %w", bid.BidID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Bid{}, fmt.Errorf("record bid %s: commit: %w", bid.BidID, err)
	}
	return bid, nil
}

// GetBidsByAuction returns every bid attempt in sequence order
func (s *AuctionStore) GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	if _, err := s.GetAuction(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("get bids: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT bid_id, auction_id, bidder_id, amount, placed_at, accepted,
		rejection_reason, sequence FROM bids WHERE auction_id = $1 ORDER BY sequence`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}
	defer rows.Close()

	out := make([]model.Bid, 0)
	for rows.Next() {
		var (
			b      model.Bid
			reason *string
		)
		if err := rows.Scan(&b.BidID, &b.AuctionID, &b.BidderID, &b.Amount, &b.PlacedAt, &b.Accepted,
			&reason, &b.Sequence); err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		if reason != nil {
			r, err := model.ParseBidRejectionReason(*reason)
			if err != nil {
				return nil, err
			}
			b.RejectionReason = &r
		}
		b.PlacedAt = b.PlacedAt.UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetParticipants returns distinct accepted bidders in first-bid order
func (s *AuctionStore) GetParticipants(ctx context.Context, auctionID string) ([]model.Participant, error) {
	if _, err := s.GetAuction(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("get participants: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT auction_id, bidder_id, first_bid_at FROM participants
		WHERE auction_id = $1 ORDER BY first_bid_at, bidder_id`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("get participants for auction %s: %w", auctionID, err)
	}
	defer rows.Close()

	out := make([]model.Participant, 0)
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.AuctionID, &p.BidderID, &p.FirstBidAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		p.FirstBidAt = p.FirstBidAt.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetAuctionsByBidder returns all auctions a bidder has bid on, in first bid order
func (s *AuctionStore) GetAuctionsByBidder(ctx context.Context, bidderID string) ([]model.Auction, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+auctionColumns+` FROM auctions a
		JOIN (SELECT auction_id, MIN(placed_at) AS first_at FROM bids WHERE bidder_id = $1 GROUP BY auction_id) b
		ON b.auction_id = a.auction_id ORDER BY b.first_at, a.auction_id`, bidderID)
	if err != nil {
		return nil, fmt.Errorf("get auctions for bidder %s: %w", bidderID, err)
	}
	return collectAuctions(rows)
}
