package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// Helper to create a new Auction
func newAuction(auctionID, itemID string, status model.AuctionStatus) model.Auction {
	return model.Auction{
		AuctionID:     auctionID,
		AuctionItemID: itemID,
		SellerID:      "seller1",
		StartPrice:    decimal.NewFromInt(100),
		ReservePrice:  decimal.NewFromInt(100),
		MinIncrement:  decimal.NewFromInt(10),
		StartAt:       baseTime,
		EndAt:         baseTime.Add(time.Hour),
		Status:        status,
		Version:       1,
	}
}

// Helper to create a new Bid
func newBid(bidID, auctionID, bidderID string, amount int64, accepted bool) model.Bid {
	return model.Bid{
		BidID:     bidID,
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    decimal.NewFromInt(amount),
		PlacedAt:  baseTime,
		Accepted:  accepted,
	}
}

// accept returns the auction after applying an accepted bid
func accept(a model.Auction, bid model.Bid) model.Auction {
	amount := bid.Amount
	bidder := bid.BidderID
	a.CurrentHighBid = &amount
	a.CurrentHighBidder = &bidder
	a.Version++
	return a
}

// Test CreateAuction
func TestMemoryRepo_CreateAuction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := NewMemoryRepo()
	require.NoError(t, repo.CreateAuction(ctx, newAuction("a1", "item1", model.StatusScheduled)))

	tests := []struct {
		name    string
		auction model.Auction
		wantErr error
	}{
		{name: "duplicate_id", auction: newAuction("a1", "item9", model.StatusScheduled), wantErr: biddingerrors.ErrDuplicateAuction},
		{name: "item_has_open_auction", auction: newAuction("a2", "item1", model.StatusScheduled), wantErr: biddingerrors.ErrItemHasOpenAuction},
		{name: "other_item", auction: newAuction("a3", "item2", model.StatusScheduled)},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := repo.CreateAuction(ctx, tc.auction)
			if tc.wantErr != nil {
				require.True(t, errors.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
				return
			}
			require.NoError(t, err)
		})
	}

	t.Run("item_relisted_after_cancel", func(t *testing.T) {
		a, err := repo.GetAuction(ctx, "a1")
		require.NoError(t, err)
		cancelled := a
		cancelled.Status = model.StatusCancelled
		cancelled.Version++
		require.NoError(t, repo.UpdateAuction(ctx, cancelled, a.Version))

		require.NoError(t, repo.CreateAuction(ctx, newAuction("a4", "item1", model.StatusScheduled)))
	})

	t.Run("ended_auction_keeps_item_until_settled", func(t *testing.T) {
		require.NoError(t, repo.CreateAuction(ctx, newAuction("e1", "item5", model.StatusScheduled)))
		a, err := repo.GetAuction(ctx, "e1")
		require.NoError(t, err)

		ended := a
		ended.Status = model.StatusEnded
		ended.Version++
		require.NoError(t, repo.UpdateAuction(ctx, ended, a.Version))

		err = repo.CreateAuction(ctx, newAuction("e2", "item5", model.StatusScheduled))
		require.True(t, errors.Is(err, biddingerrors.ErrItemHasOpenAuction))

		settled := ended
		settled.Status = model.StatusSettled
		settled.Version++
		require.NoError(t, repo.UpdateAuction(ctx, settled, ended.Version))

		require.NoError(t, repo.CreateAuction(ctx, newAuction("e2", "item5", model.StatusScheduled)))
	})
}

// Test UpdateAuction
func TestMemoryRepo_UpdateAuction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := NewMemoryRepo()
	require.NoError(t, repo.CreateAuction(ctx, newAuction("a1", "item1", model.StatusScheduled)))

	active := newAuction("a1", "item1", model.StatusActive)
	active.Version = 2

	require.NoError(t, repo.UpdateAuction(ctx, active, 1))

	err := repo.UpdateAuction(ctx, active, 1)
	require.True(t, errors.Is(err, biddingerrors.ErrStaleVersion))

	err = repo.UpdateAuction(ctx, newAuction("missing", "item1", model.StatusActive), 1)
	require.True(t, errors.Is(err, biddingerrors.ErrAuctionNotFound))

	got, err := repo.GetAuction(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, got.Status)
	require.Equal(t, int64(2), got.Version)
}

// Test RecordBid
func TestMemoryRepo_RecordBid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := NewMemoryRepo()
	auction := newAuction("a1", "item1", model.StatusActive)
	require.NoError(t, repo.CreateAuction(ctx, auction))

	first := newBid("b1", "a1", "user1", 100, true)
	updated := accept(auction, first)
	stored, err := repo.RecordBid(ctx, first, &updated, auction.Version)
	require.NoError(t, err)
	require.Equal(t, int64(1), stored.Sequence)

	reason := model.ReasonBelowMinIncrement
	rejected := newBid("b2", "a1", "user2", 105, false)
	rejected.RejectionReason = &reason
	stored, err = repo.RecordBid(ctx, rejected, nil, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), stored.Sequence)

	t.Run("stale_version_rejected", func(t *testing.T) {
		late := newBid("b3", "a1", "user3", 200, true)
		stale := accept(auction, late)
		_, err := repo.RecordBid(ctx, late, &stale, auction.Version)
		require.True(t, errors.Is(err, biddingerrors.ErrStaleVersion))
	})

	t.Run("unknown_auction", func(t *testing.T) {
		_, err := repo.RecordBid(ctx, newBid("bx", "nope", "user1", 100, false), nil, 0)
		require.True(t, errors.Is(err, biddingerrors.ErrAuctionNotFound))
	})

	t.Run("self_outbid_keeps_one_participant", func(t *testing.T) {
		current, err := repo.GetAuction(ctx, "a1")
		require.NoError(t, err)
		again := newBid("b4", "a1", "user1", 120, true)
		next := accept(current, again)
		_, err = repo.RecordBid(ctx, again, &next, current.Version)
		require.NoError(t, err)

		participants, err := repo.GetParticipants(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, participants, 1)
		require.Equal(t, "user1", participants[0].BidderID)
	})

	bids, err := repo.GetBidsByAuction(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, bids, 3)
	for i, b := range bids {
		require.Equal(t, int64(i+1), b.Sequence)
	}

	got, err := repo.GetAuction(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, 1, got.ParticipantsCount)
	require.True(t, decimal.NewFromInt(120).Equal(*got.CurrentHighBid))

	// rejected bidders still show up in their bid history
	history, err := repo.GetAuctionsByBidder(ctx, "user2")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "a1", history[0].AuctionID)
}

// Test GetBidsByAuction
func TestMemoryRepo_GetBidsByAuction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := NewMemoryRepo()
	require.NoError(t, repo.CreateAuction(ctx, newAuction("a1", "item1", model.StatusActive)))

	bids, err := repo.GetBidsByAuction(ctx, "a1")
	require.NoError(t, err)
	require.Empty(t, bids)

	_, err = repo.GetBidsByAuction(ctx, "missing")
	require.True(t, errors.Is(err, biddingerrors.ErrAuctionNotFound))
}

// Test ListAuctionsByStatus
func TestMemoryRepo_ListAuctionsByStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := NewMemoryRepo()
	later := newAuction("a1", "item1", model.StatusScheduled)
	later.StartAt = baseTime.Add(time.Hour)
	later.EndAt = baseTime.Add(2 * time.Hour)
	require.NoError(t, repo.CreateAuction(ctx, later))
	require.NoError(t, repo.CreateAuction(ctx, newAuction("a2", "item2", model.StatusScheduled)))
	require.NoError(t, repo.CreateAuction(ctx, newAuction("a3", "item3", model.StatusActive)))

	scheduled, err := repo.ListAuctionsByStatus(ctx, model.StatusScheduled)
	require.NoError(t, err)
	require.Len(t, scheduled, 2)
	require.Equal(t, "a2", scheduled[0].AuctionID)
	require.Equal(t, "a1", scheduled[1].AuctionID)

	settled, err := repo.ListAuctionsByStatus(ctx, model.StatusSettled)
	require.NoError(t, err)
	require.Empty(t, settled)
}

// concurrency test: only one writer per version wins
func TestMemoryRepo_ConcurrentRecordBid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := NewMemoryRepo()
	auction := newAuction("a1", "item1", model.StatusActive)
	require.NoError(t, repo.CreateAuction(ctx, auction))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	concurrentCount := 50

	for i := 0; i < concurrentCount; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			b := newBid(fmt.Sprintf("bid-%d", i), "a1", fmt.Sprintf("user-%d", i), int64(100+i), true)
			next := accept(auction, b)
			if _, err := repo.RecordBid(ctx, b, &next, auction.Version); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else {
				require.True(t, errors.Is(err, biddingerrors.ErrStaleVersion))
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
	bids, err := repo.GetBidsByAuction(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, bids, 1)
}
