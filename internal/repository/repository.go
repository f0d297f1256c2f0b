package repository

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository
//go:generate mockgen -source=ledger.go -destination=mock_ledger.go -package=repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
)

// AuctionDB defines the auction and bid storage interface
type AuctionDB interface {
	// CreateAuction stores a new auction. It fails with ErrItemHasOpenAuction
	// if another auction for the same item is still open.
	CreateAuction(ctx context.Context, auction model.Auction) error
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	// UpdateAuction replaces the auction if its stored version equals expectedVersion
	UpdateAuction(ctx context.Context, auction model.Auction, expectedVersion int64) error
	ListAuctionsByStatus(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error)
	// RecordBid appends bid and assigns its sequence. For an accepted bid, updated
	// is written in the same step under the expectedVersion check and the
	// bidder is added to the participants.
	RecordBid(ctx context.Context, bid model.Bid, updated *model.Auction, expectedVersion int64) (model.Bid, error)
	GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error)
	GetParticipants(ctx context.Context, auctionID string) ([]model.Participant, error)
	GetAuctionsByBidder(ctx context.Context, bidderID string) ([]model.Auction, error)
}

type auctionRecord struct {
	mu           sync.RWMutex
	auction      model.Auction
	bids         []model.Bid
	participants []model.Participant
	bidders      map[string]struct{}
}

func (r *auctionRecord) snapshot() model.Auction {
	a := r.auction
	a.ParticipantsCount = len(r.participants)
	return a
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB.
// Each auction has its own lock; the repo-wide lock only guards the indexes.
type MemoryRepo struct {
	mu         sync.RWMutex
	auctions   map[string]*auctionRecord // key: auctionID
	openByItem map[string]string         // key: itemID -> auctionID of the latest auction

	bidderMu       sync.RWMutex
	bidderAuctions map[string][]string // key: bidderID -> auctionIDs bid on, first bid order
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions:       make(map[string]*auctionRecord),
		openByItem:     make(map[string]string),
		bidderAuctions: make(map[string][]string),
	}
}

func (r *MemoryRepo) record(auctionID string) (*auctionRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.auctions[auctionID]
	return rec, ok
}

// CreateAuction stores a new auction
func (r *MemoryRepo) CreateAuction(_ context.Context, auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.auctions[auction.AuctionID]; exists {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, biddingerrors.ErrDuplicateAuction)
	}

	if prevID, ok := r.openByItem[auction.AuctionItemID]; ok {
		prev := r.auctions[prevID]
		prev.mu.RLock()
		open := prev.auction.Status.Open()
		prev.mu.RUnlock()
		if open {
			return fmt.Errorf("create auction for item %s: %w", auction.AuctionItemID, biddingerrors.ErrItemHasOpenAuction)
		}
	}

	auction.ParticipantsCount = 0
	r.auctions[auction.AuctionID] = &auctionRecord{
		auction: auction,
		bidders: make(map[string]struct{}),
	}
	r.openByItem[auction.AuctionItemID] = auction.AuctionID
	return nil
}

// GetAuction returns the auction with its participant count
func (r *MemoryRepo) GetAuction(_ context.Context, auctionID string) (model.Auction, error) {
	rec, ok := r.record(auctionID)
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	rec.mu.RLock()
	defer rec.mu.RUnlock()
	return rec.snapshot(), nil
}

// UpdateAuction replaces the stored auction if the version still matches
func (r *MemoryRepo) UpdateAuction(_ context.Context, auction model.Auction, expectedVersion int64) error {
	rec, ok := r.record(auction.AuctionID)
	if !ok {
		return fmt.Errorf("update auction %s: %w", auction.AuctionID, biddingerrors.ErrAuctionNotFound)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.auction.Version != expectedVersion {
		return fmt.Errorf("update auction %s at version %d (stored %d): %w",
			auction.AuctionID, expectedVersion, rec.auction.Version, biddingerrors.ErrStaleVersion)
	}
	rec.auction = auction
	return nil
}

// ListAuctionsByStatus returns all auctions in status, ordered by start time
func (r *MemoryRepo) ListAuctionsByStatus(_ context.Context, status model.AuctionStatus) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Auction, 0)
	for _, rec := range r.auctions {
		rec.mu.RLock()
		if rec.auction.Status == status {
			out = append(out, rec.snapshot())
		}
		rec.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].AuctionID < out[j].AuctionID
		}
		return out[i].StartAt.Before(out[j].StartAt)
	})
	return out, nil
}

// RecordBid appends a bid, and for accepted bids moves the auction forward
func (r *MemoryRepo) RecordBid(_ context.Context, bid model.Bid, updated *model.Auction, expectedVersion int64) (model.Bid, error) {
	rec, ok := r.record(bid.AuctionID)
	if !ok {
		return model.Bid{}, fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, biddingerrors.ErrAuctionNotFound)
	}

	rec.mu.Lock()
	if updated != nil {
		if rec.auction.Version != expectedVersion {
			rec.mu.Unlock()
			return model.Bid{}, fmt.Errorf("record bid for auction %s at version %d (stored %d): %w",
				bid.AuctionID, expectedVersion, rec.auction.Version, biddingerrors.ErrStaleVersion)
		}
		rec.auction = *updated
		if _, seen := rec.bidders[bid.BidderID]; !seen {
			rec.bidders[bid.BidderID] = struct{}{}
			rec.participants = append(rec.participants, model.Participant{
				AuctionID:  bid.AuctionID,
				BidderID:   bid.BidderID,
				FirstBidAt: bid.PlacedAt,
			})
		}
	}
	bid.Sequence = int64(len(rec.bids)) + 1
	rec.bids = append(rec.bids, bid)
	rec.mu.Unlock()

	r.indexBidder(bid.BidderID, bid.AuctionID)
	return bid, nil
}

func (r *MemoryRepo) indexBidder(bidderID, auctionID string) {
	r.bidderMu.Lock()
	defer r.bidderMu.Unlock()

	for _, id := range r.bidderAuctions[bidderID] {
		if id == auctionID {
			return
		}
	}
	r.bidderAuctions[bidderID] = append(r.bidderAuctions[bidderID], auctionID)
}

// GetBidsByAuction returns every bid attempt in sequence order
func (r *MemoryRepo) GetBidsByAuction(_ context.Context, auctionID string) ([]model.Bid, error) {
	rec, ok := r.record(auctionID)
	if !ok {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	rec.mu.RLock()
	defer rec.mu.RUnlock()
	return append([]model.Bid{}, rec.bids...), nil
}

// GetParticipants returns distinct accepted bidders in first-bid order
func (r *MemoryRepo) GetParticipants(_ context.Context, auctionID string) ([]model.Participant, error) {
	rec, ok := r.record(auctionID)
	if !ok {
		return nil, fmt.Errorf("get participants for auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	rec.mu.RLock()
	defer rec.mu.RUnlock()
	return append([]model.Participant{}, rec.participants...), nil
}

// GetAuctionsByBidder returns all auctions a bidder has bid on
func (r *MemoryRepo) GetAuctionsByBidder(ctx context.Context, bidderID string) ([]model.Auction, error) {
	r.bidderMu.RLock()
	ids := append([]string(nil), r.bidderAuctions[bidderID]...)
	r.bidderMu.RUnlock()

	auctions := make([]model.Auction, 0, len(ids))
	for _, id := range ids {
		a, err := r.GetAuction(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get auctions for bidder %s: %w", bidderID, err)
		}
		auctions = append(auctions, a)
	}
	return auctions, nil
}
