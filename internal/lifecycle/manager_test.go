package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/catalog"
	"auction-engine/internal/locker"
	model "auction-engine/internal/models"
	"auction-engine/internal/notify"
	"auction-engine/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	manager  *Manager
	repo     *repository.MemoryRepo
	registry *catalog.Registry
	events   *notify.Recorder
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     repository.NewMemoryRepo(),
		registry: catalog.NewRegistry(),
		events:   &notify.Recorder{},
		now:      start,
	}
	f.registry.AddItem(model.AuctionItem{ItemID: "item1", SellerID: "seller1", Title: "Vintage camera"})
	f.registry.AddItem(model.AuctionItem{ItemID: "item2", SellerID: "seller1", Title: "Film reel"})
	f.registry.AddSeller("seller2")
	f.manager = NewManager(Deps{
		Repo:     f.repo,
		Locks:    locker.New(),
		Catalog:  f.registry,
		Sellers:  f.registry,
		Notifier: f.events,
		Clock:    func() time.Time { return f.now },
	})
	return f
}

func params(itemID, sellerID string) CreateAuctionParams {
	return CreateAuctionParams{
		AuctionItemID: itemID,
		SellerID:      sellerID,
		StartPrice:    decimal.NewFromInt(100),
		MinIncrement:  decimal.NewFromInt(10),
		StartAt:       start.Add(time.Hour),
		EndAt:         start.Add(2 * time.Hour),
	}
}

func version(v int64) *int64 {
	return &v
}

func TestNextStatus(t *testing.T) {
	t.Parallel()

	allowed := map[model.AuctionStatus]map[Action]model.AuctionStatus{
		model.StatusScheduled: {ActionActivate: model.StatusActive, ActionCancel: model.StatusCancelled},
		model.StatusActive:    {ActionPause: model.StatusPaused, ActionEnd: model.StatusEnded, ActionCancel: model.StatusCancelled},
		model.StatusPaused:    {ActionResume: model.StatusActive, ActionEnd: model.StatusEnded, ActionCancel: model.StatusCancelled},
		model.StatusEnded:     {ActionSettle: model.StatusSettled},
	}
	actions := []Action{ActionActivate, ActionPause, ActionResume, ActionEnd, ActionCancel, ActionSettle}

	for _, from := range model.AllStatuses {
		for _, act := range actions {
			to, ok := NextStatus(from, act)
			want, wantOK := allowed[from][act]
			require.Equal(t, wantOK, ok, "%s from %s", act, from)
			if wantOK {
				require.Equal(t, want, to)
			} else {
				require.Equal(t, from, to)
			}
		}
	}
}

func TestManager_CreateAuction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(p *CreateAuctionParams)
		wantErr error
	}{
		{name: "missing_item", mutate: func(p *CreateAuctionParams) { p.AuctionItemID = "" }, wantErr: biddingerrors.ErrInvalidAuction},
		{name: "zero_start_price", mutate: func(p *CreateAuctionParams) { p.StartPrice = decimal.Zero }, wantErr: biddingerrors.ErrInvalidAuction},
		{name: "negative_increment", mutate: func(p *CreateAuctionParams) { p.MinIncrement = decimal.NewFromInt(-1) }, wantErr: biddingerrors.ErrInvalidAuction},
		{name: "end_before_start", mutate: func(p *CreateAuctionParams) { p.EndAt = p.StartAt }, wantErr: biddingerrors.ErrInvalidAuction},
		{name: "end_in_past", mutate: func(p *CreateAuctionParams) {
			p.StartAt = start.Add(-2 * time.Hour)
			p.EndAt = start.Add(-time.Hour)
		}, wantErr: biddingerrors.ErrInvalidAuction},
		{name: "reserve_below_start", mutate: func(p *CreateAuctionParams) { p.ReservePrice = decimal.NewFromInt(50) }, wantErr: biddingerrors.ErrInvalidAuction},
		{name: "unknown_seller", mutate: func(p *CreateAuctionParams) { p.SellerID = "ghost" }, wantErr: biddingerrors.ErrSellerNotFound},
		{name: "unknown_item", mutate: func(p *CreateAuctionParams) { p.AuctionItemID = "item9" }, wantErr: biddingerrors.ErrItemNotFound},
		{name: "item_of_other_seller", mutate: func(p *CreateAuctionParams) { p.SellerID = "seller2" }, wantErr: biddingerrors.ErrItemNotOwned},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			p := params("item1", "seller1")
			tc.mutate(&p)

			_, err := f.manager.CreateAuction(ctx, p)
			require.True(t, errors.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
		})
	}

	t.Run("defaults_reserve_to_start", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		a, err := f.manager.CreateAuction(ctx, params("item1", "seller1"))
		require.NoError(t, err)
		require.Equal(t, model.StatusScheduled, a.Status)
		require.Equal(t, int64(1), a.Version)
		require.True(t, a.ReservePrice.Equal(a.StartPrice))
		require.NotEmpty(t, a.AuctionID)
	})

	t.Run("one_open_auction_per_item", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		first, err := f.manager.CreateAuction(ctx, params("item1", "seller1"))
		require.NoError(t, err)
		_, err = f.manager.CreateAuction(ctx, params("item1", "seller1"))
		require.True(t, errors.Is(err, biddingerrors.ErrItemHasOpenAuction))

		_, err = f.manager.Cancel(ctx, first.AuctionID, nil)
		require.NoError(t, err)
		_, err = f.manager.CreateAuction(ctx, params("item1", "seller1"))
		require.NoError(t, err)
	})
}

func TestManager_OperatorTransitions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.manager.CreateAuction(ctx, params("item1", "seller1"))
	require.NoError(t, err)

	_, err = f.manager.Pause(ctx, a.AuctionID, nil)
	var stateErr *biddingerrors.StateError
	require.True(t, errors.As(err, &stateErr))
	require.Equal(t, model.StatusScheduled, stateErr.From)
	require.Equal(t, "pause", stateErr.Action)

	_, err = f.manager.ActivateNow(ctx, a.AuctionID, version(7))
	require.True(t, errors.Is(err, biddingerrors.ErrStaleVersion))

	active, err := f.manager.ActivateNow(ctx, a.AuctionID, version(1))
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, active.Status)
	require.Equal(t, int64(2), active.Version)

	// a bid lands while active
	high := decimal.NewFromInt(150)
	bidder := "user1"
	withBid := active
	withBid.CurrentHighBid = &high
	withBid.CurrentHighBidder = &bidder
	withBid.Version = 3
	_, err = f.repo.RecordBid(ctx, model.Bid{BidID: "b1", AuctionID: a.AuctionID, BidderID: bidder, Amount: high, Accepted: true}, &withBid, 2)
	require.NoError(t, err)

	paused, err := f.manager.Pause(ctx, a.AuctionID, nil)
	require.NoError(t, err)
	require.Equal(t, model.StatusPaused, paused.Status)
	require.Equal(t, a.EndAt, paused.EndAt)

	resumed, err := f.manager.Resume(ctx, a.AuctionID, nil)
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, resumed.Status)
	require.True(t, high.Equal(*resumed.CurrentHighBid))
	require.Equal(t, "user1", *resumed.CurrentHighBidder)

	cancelled, err := f.manager.Cancel(ctx, a.AuctionID, nil)
	require.NoError(t, err)
	require.Equal(t, model.StatusCancelled, cancelled.Status)

	events := f.events.Events()
	require.Len(t, events, 1)
	require.Equal(t, notify.EventAuctionCancelled, events[0].Type)
	require.Equal(t, []string{"user1"}, events[0].Bidders)

	_, err = f.manager.Resume(ctx, a.AuctionID, nil)
	require.True(t, errors.Is(err, biddingerrors.ErrInvalidTransition))

	_, err = f.manager.Cancel(ctx, "missing", nil)
	require.True(t, errors.Is(err, biddingerrors.ErrAuctionNotFound))
}

func TestManager_TimedTransitions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.manager.CreateAuction(ctx, params("item1", "seller1"))
	require.NoError(t, err)

	changed, err := f.manager.ActivateDue(ctx, a.AuctionID, a.StartAt.Add(-time.Second))
	require.NoError(t, err)
	require.False(t, changed)

	changed, err = f.manager.ActivateDue(ctx, a.AuctionID, a.StartAt)
	require.NoError(t, err)
	require.True(t, changed)

	// second run is a no-op
	changed, err = f.manager.ActivateDue(ctx, a.AuctionID, a.StartAt)
	require.NoError(t, err)
	require.False(t, changed)

	changed, err = f.manager.EndDue(ctx, a.AuctionID, a.EndAt.Add(-time.Second))
	require.NoError(t, err)
	require.False(t, changed)

	changed, err = f.manager.EndDue(ctx, a.AuctionID, a.EndAt)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = f.manager.EndDue(ctx, a.AuctionID, a.EndAt)
	require.NoError(t, err)
	require.False(t, changed)

	ended, err := f.manager.GetAuction(ctx, a.AuctionID)
	require.NoError(t, err)
	require.Equal(t, model.StatusEnded, ended.Status)
	require.Equal(t, int64(3), ended.Version)

	_, err = f.manager.Cancel(ctx, a.AuctionID, nil)
	require.True(t, errors.Is(err, biddingerrors.ErrInvalidTransition))
}

func TestManager_PausedAuctionEndsOnTime(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.manager.CreateAuction(ctx, params("item1", "seller1"))
	require.NoError(t, err)
	_, err = f.manager.ActivateDue(ctx, a.AuctionID, a.StartAt)
	require.NoError(t, err)
	_, err = f.manager.Pause(ctx, a.AuctionID, nil)
	require.NoError(t, err)

	changed, err := f.manager.EndDue(ctx, a.AuctionID, a.EndAt.Add(-time.Second))
	require.NoError(t, err)
	require.False(t, changed)

	changed, err = f.manager.EndDue(ctx, a.AuctionID, a.EndAt)
	require.NoError(t, err)
	require.True(t, changed)

	ended, err := f.manager.GetAuction(ctx, a.AuctionID)
	require.NoError(t, err)
	require.Equal(t, model.StatusEnded, ended.Status)

	_, err = f.manager.Resume(ctx, a.AuctionID, nil)
	require.True(t, errors.Is(err, biddingerrors.ErrInvalidTransition))
}

// An ended auction keeps its item until settlement moves it to settled
func TestManager_ItemHeldUntilSettled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.manager.CreateAuction(ctx, params("item1", "seller1"))
	require.NoError(t, err)
	_, err = f.manager.ActivateDue(ctx, a.AuctionID, a.StartAt)
	require.NoError(t, err)
	changed, err := f.manager.EndDue(ctx, a.AuctionID, a.EndAt)
	require.NoError(t, err)
	require.True(t, changed)

	_, err = f.manager.CreateAuction(ctx, params("item1", "seller1"))
	require.True(t, errors.Is(err, biddingerrors.ErrItemHasOpenAuction), "got %v", err)

	_, err = f.manager.Settle(ctx, a.AuctionID, func(context.Context, model.Auction) (model.SettlementRecord, error) {
		return model.SettlementRecord{Outcome: model.OutcomeNoSale, SettledAt: a.EndAt}, nil
	})
	require.NoError(t, err)

	relisted, err := f.manager.CreateAuction(ctx, params("item1", "seller1"))
	require.NoError(t, err)
	require.NotEqual(t, a.AuctionID, relisted.AuctionID)
}

func TestManager_ConcurrentTimedTransitions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.manager.CreateAuction(ctx, params("item1", "seller1"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	activated := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			changed, err := f.manager.ActivateDue(ctx, a.AuctionID, a.StartAt)
			require.NoError(t, err)
			if changed {
				mu.Lock()
				activated++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, activated)
}

func TestManager_Settle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.manager.CreateAuction(ctx, params("item1", "seller1"))
	require.NoError(t, err)

	calls := 0
	fn := func(_ context.Context, got model.Auction) (model.SettlementRecord, error) {
		calls++
		return model.SettlementRecord{Outcome: model.OutcomeNoSale, SettledAt: start}, nil
	}

	_, err = f.manager.Settle(ctx, a.AuctionID, fn)
	require.True(t, errors.Is(err, biddingerrors.ErrNotEnded))

	_, err = f.manager.ActivateDue(ctx, a.AuctionID, a.StartAt)
	require.NoError(t, err)
	_, err = f.manager.EndDue(ctx, a.AuctionID, a.EndAt)
	require.NoError(t, err)

	t.Run("failing_fn_keeps_ended", func(t *testing.T) {
		_, err := f.manager.Settle(ctx, a.AuctionID, func(context.Context, model.Auction) (model.SettlementRecord, error) {
			return model.SettlementRecord{}, errors.New("ledger down")
		})
		require.Error(t, err)

		got, err := f.manager.GetAuction(ctx, a.AuctionID)
		require.NoError(t, err)
		require.Equal(t, model.StatusEnded, got.Status)
	})

	settled, err := f.manager.Settle(ctx, a.AuctionID, fn)
	require.NoError(t, err)
	require.Equal(t, model.StatusSettled, settled.Status)
	require.NotNil(t, settled.Settlement)
	require.Equal(t, model.OutcomeNoSale, settled.Settlement.Outcome)

	_, err = f.manager.Settle(ctx, a.AuctionID, fn)
	require.True(t, errors.Is(err, biddingerrors.ErrAlreadySettled))
	require.Equal(t, 1, calls)
}

// Repository failures surface wrapped
func TestManager_RepoErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	manager := NewManager(Deps{Repo: mockRepo, Clock: func() time.Time { return start }})

	repoErr := errors.New("db unavailable")
	mockRepo.EXPECT().CreateAuction(gomock.Any(), gomock.Any()).Return(repoErr)
	_, err := manager.CreateAuction(ctx, params("item1", "seller1"))
	require.ErrorIs(t, err, repoErr)

	scheduled := model.Auction{AuctionID: "a1", Status: model.StatusScheduled, Version: 1}
	mockRepo.EXPECT().GetAuction(gomock.Any(), "a1").Return(scheduled, nil)
	mockRepo.EXPECT().UpdateAuction(gomock.Any(), gomock.Any(), int64(1)).Return(biddingerrors.ErrStaleVersion)
	_, err = manager.ActivateNow(ctx, "a1", nil)
	require.ErrorIs(t, err, biddingerrors.ErrStaleVersion)

	mockRepo.EXPECT().ListAuctionsByStatus(gomock.Any(), model.StatusActive).Return(nil, repoErr)
	_, err = manager.ListAuctions(ctx, model.StatusActive)
	require.ErrorIs(t, err, repoErr)
}
