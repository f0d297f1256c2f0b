package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/database"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/utils"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// connect returns a migrated pool, or skips when TEST_DATABASE_URL is not set
func connect(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := database.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func testAuction() model.Auction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return model.Auction{
		AuctionID:     utils.GenerateID(),
		AuctionItemID: utils.GenerateID(),
		SellerID:      "seller-" + utils.GenerateID(),
		StartPrice:    decimal.NewFromInt(1000),
		ReservePrice:  decimal.NewFromInt(1000),
		MinIncrement:  decimal.NewFromInt(100),
		StartAt:       now,
		EndAt:         now.Add(time.Hour),
		Status:        model.StatusActive,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestAuctionStore(t *testing.T) {
	pool := connect(t)
	ctx := context.Background()
	store := NewAuctionStore(pool)

	a := testAuction()
	require.NoError(t, store.CreateAuction(ctx, a))

	dup := testAuction()
	dup.AuctionItemID = a.AuctionItemID
	err := store.CreateAuction(ctx, dup)
	require.True(t, errors.Is(err, biddingerrors.ErrItemHasOpenAuction))

	err = store.CreateAuction(ctx, a)
	require.True(t, errors.Is(err, biddingerrors.ErrDuplicateAuction))

	bid := model.Bid{BidID: utils.GenerateID(), AuctionID: a.AuctionID, BidderID: "bidder-a", Amount: decimal.NewFromInt(1000), PlacedAt: a.StartAt, Accepted: true}
	updated := a
	high := bid.Amount
	updated.CurrentHighBid = &high
	updated.CurrentHighBidder = &bid.BidderID
	updated.Version = 2

	stored, err := store.RecordBid(ctx, bid, &updated, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), stored.Sequence)

	_, err = store.RecordBid(ctx, bid, &updated, 1)
	require.True(t, errors.Is(err, biddingerrors.ErrStaleVersion))

	reason := model.ReasonBelowMinIncrement
	rejected := model.Bid{BidID: utils.GenerateID(), AuctionID: a.AuctionID, BidderID: "bidder-b", Amount: decimal.NewFromInt(1050), PlacedAt: a.StartAt, RejectionReason: &reason}
	stored, err = store.RecordBid(ctx, rejected, nil, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), stored.Sequence)

	got, err := store.GetAuction(ctx, a.AuctionID)
	require.NoError(t, err)
	require.Equal(t, 1, got.ParticipantsCount)
	require.True(t, decimal.NewFromInt(1000).Equal(*got.CurrentHighBid))

	bids, err := store.GetBidsByAuction(ctx, a.AuctionID)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.Equal(t, model.ReasonBelowMinIncrement, *bids[1].RejectionReason)

	history, err := store.GetAuctionsByBidder(ctx, "bidder-b")
	require.NoError(t, err)
	require.NotEmpty(t, history)

	ended := got
	ended.Status = model.StatusEnded
	ended.Version = 3
	require.NoError(t, store.UpdateAuction(ctx, ended, 2))

	// an ended auction keeps its item until it settles
	relist := testAuction()
	relist.AuctionItemID = a.AuctionItemID
	err = store.CreateAuction(ctx, relist)
	require.True(t, errors.Is(err, biddingerrors.ErrItemHasOpenAuction))

	settled := ended
	settled.Status = model.StatusSettled
	settled.Version = 4
	settled.Settlement = &model.SettlementRecord{Outcome: model.OutcomeWon, WinnerID: "bidder-a", WinningAmount: high, PlatformFee: decimal.NewFromInt(50), NetAmount: decimal.NewFromInt(950), SettledAt: a.EndAt}
	require.NoError(t, store.UpdateAuction(ctx, settled, 3))
	require.True(t, errors.Is(store.UpdateAuction(ctx, settled, 3), biddingerrors.ErrStaleVersion))

	got, err = store.GetAuction(ctx, a.AuctionID)
	require.NoError(t, err)
	require.Equal(t, model.OutcomeWon, got.Settlement.Outcome)
	require.NoError(t, store.CreateAuction(ctx, relist))

	_, err = store.GetAuction(ctx, "missing")
	require.True(t, errors.Is(err, biddingerrors.ErrAuctionNotFound))
}

func TestLedgerStore(t *testing.T) {
	pool := connect(t)
	ctx := context.Background()
	store := NewLedgerStore(pool)
	sellerID := "seller-" + utils.GenerateID()
	now := time.Now().UTC().Truncate(time.Microsecond)

	bal, err := store.GetBalance(ctx, sellerID)
	require.NoError(t, err)
	require.Equal(t, int64(0), bal.Version)

	hold := model.EscrowHold{
		HoldID: utils.DeriveID("hold", sellerID), SellerID: sellerID, AuctionID: "a1",
		Amount: decimal.NewFromInt(950), Remaining: decimal.NewFromInt(950), HeldAt: now, ReleaseAt: now,
	}
	bal.Pending = hold.Amount
	bal.UpdatedAt = now
	next, err := store.CommitBalance(ctx, repository.BalanceCommit{Balance: bal, NewHold: &hold})
	require.NoError(t, err)
	require.Equal(t, int64(1), next.Version)

	_, err = store.CommitBalance(ctx, repository.BalanceCommit{Balance: next, ExpectedVersion: 1, NewHold: &hold})
	require.True(t, errors.Is(err, biddingerrors.ErrDuplicateHold))

	_, err = store.CommitBalance(ctx, repository.BalanceCommit{Balance: bal, ExpectedVersion: 0})
	require.True(t, errors.Is(err, biddingerrors.ErrStaleVersion))

	due, err := store.ListDueHolds(ctx, now)
	require.NoError(t, err)
	require.NotEmpty(t, due)

	m1 := model.PayoutMethod{MethodID: utils.GenerateID(), SellerID: sellerID, Method: model.MethodGCash, AccountName: "Ana", MobileNumber: "09171234567", IsDefault: true, CreatedAt: now}
	m2 := model.PayoutMethod{MethodID: utils.GenerateID(), SellerID: sellerID, Method: model.MethodBank, AccountName: "Ana", BankName: "BPI", AccountNumber: "123456789", CreatedAt: now.Add(time.Second)}
	require.NoError(t, store.AddPayoutMethod(ctx, m1))
	require.NoError(t, store.AddPayoutMethod(ctx, m2))

	_, err = store.SetDefaultPayoutMethod(ctx, m2.MethodID)
	require.NoError(t, err)
	def, err := store.GetDefaultPayoutMethod(ctx, sellerID)
	require.NoError(t, err)
	require.Equal(t, m2.MethodID, def.MethodID)

	_, promoted, err := store.DeletePayoutMethod(ctx, m2.MethodID)
	require.NoError(t, err)
	require.NotNil(t, promoted)
	require.Equal(t, m1.MethodID, promoted.MethodID)

	payout := model.Payout{PayoutID: utils.GenerateID(), SellerID: sellerID, Amount: decimal.NewFromInt(950), Fee: decimal.Zero, NetAmount: decimal.NewFromInt(950), Status: model.PayoutPaid, Method: *promoted, Reference: "REF", CreatedAt: now}
	next.Available = decimal.Zero
	next.Pending = decimal.Zero
	next.TotalPaidOut = decimal.NewFromInt(950)
	_, err = store.CommitBalance(ctx, repository.BalanceCommit{Balance: next, ExpectedVersion: 1, Payout: &payout})
	require.NoError(t, err)

	payouts, err := store.ListPayouts(ctx, sellerID)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	require.Equal(t, m1.MethodID, payouts[0].Method.MethodID)
}
