package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newHold(holdID, sellerID string, amount int64, heldAt time.Time) model.EscrowHold {
	return model.EscrowHold{
		HoldID:    holdID,
		SellerID:  sellerID,
		AuctionID: "auction-" + holdID,
		Amount:    decimal.NewFromInt(amount),
		Remaining: decimal.NewFromInt(amount),
		HeldAt:    heldAt,
		ReleaseAt: heldAt.Add(24 * time.Hour),
	}
}

func newMethod(methodID, sellerID string, createdAt time.Time, isDefault bool) model.PayoutMethod {
	return model.PayoutMethod{
		MethodID:     methodID,
		SellerID:     sellerID,
		Method:       model.MethodGCash,
		AccountName:  "Juan Dela Cruz",
		MobileNumber: "09171234567",
		IsDefault:    isDefault,
		CreatedAt:    createdAt,
	}
}

func TestMemoryLedger_CommitBalance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ledger := NewMemoryLedger()

	bal, err := ledger.GetBalance(ctx, "seller1")
	require.NoError(t, err)
	require.Equal(t, int64(0), bal.Version)
	require.True(t, bal.Pending.IsZero())

	hold := newHold("h1", "seller1", 950, baseTime)
	bal.Pending = bal.Pending.Add(hold.Amount)
	next, err := ledger.CommitBalance(ctx, BalanceCommit{Balance: bal, ExpectedVersion: 0, NewHold: &hold})
	require.NoError(t, err)
	require.Equal(t, int64(1), next.Version)

	t.Run("stale_version", func(t *testing.T) {
		_, err := ledger.CommitBalance(ctx, BalanceCommit{Balance: bal, ExpectedVersion: 0})
		require.True(t, errors.Is(err, biddingerrors.ErrStaleVersion))
	})

	t.Run("duplicate_hold_leaves_balance", func(t *testing.T) {
		dup := hold
		again := next
		again.Pending = again.Pending.Add(dup.Amount)
		_, err := ledger.CommitBalance(ctx, BalanceCommit{Balance: again, ExpectedVersion: next.Version, NewHold: &dup})
		require.True(t, errors.Is(err, biddingerrors.ErrDuplicateHold))

		stored, err := ledger.GetBalance(ctx, "seller1")
		require.NoError(t, err)
		require.True(t, decimal.NewFromInt(950).Equal(stored.Pending))
	})

	t.Run("unknown_updated_hold", func(t *testing.T) {
		_, err := ledger.CommitBalance(ctx, BalanceCommit{
			Balance:         next,
			ExpectedVersion: next.Version,
			UpdatedHolds:    []model.EscrowHold{newHold("ghost", "seller1", 1, baseTime)},
		})
		require.True(t, errors.Is(err, biddingerrors.ErrNotFound))
	})

	open, err := ledger.ListOpenHolds(ctx, "seller1")
	require.NoError(t, err)
	require.Len(t, open, 1)

	due, err := ledger.ListDueHolds(ctx, baseTime.Add(23*time.Hour))
	require.NoError(t, err)
	require.Empty(t, due)

	due, err = ledger.ListDueHolds(ctx, baseTime.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
}

func TestMemoryLedger_PayoutRecorded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ledger := NewMemoryLedger()
	bal, _ := ledger.GetBalance(ctx, "seller1")
	bal.TotalPaidOut = decimal.NewFromInt(150)
	payout := model.Payout{PayoutID: "p1", SellerID: "seller1", Amount: decimal.NewFromInt(150), Status: model.PayoutPaid}

	_, err := ledger.CommitBalance(ctx, BalanceCommit{Balance: bal, Payout: &payout})
	require.NoError(t, err)

	payouts, err := ledger.ListPayouts(ctx, "seller1")
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	require.Equal(t, "p1", payouts[0].PayoutID)

	none, err := ledger.ListPayouts(ctx, "seller2")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestMemoryLedger_PayoutMethods(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ledger := NewMemoryLedger()
	require.NoError(t, ledger.AddPayoutMethod(ctx, newMethod("m1", "seller1", baseTime, true)))
	require.NoError(t, ledger.AddPayoutMethod(ctx, newMethod("m2", "seller1", baseTime.Add(time.Minute), false)))
	require.NoError(t, ledger.AddPayoutMethod(ctx, newMethod("m3", "seller1", baseTime.Add(2*time.Minute), false)))
	require.NoError(t, ledger.AddPayoutMethod(ctx, newMethod("other", "seller2", baseTime, true)))

	err := ledger.AddPayoutMethod(ctx, newMethod("m1", "seller1", baseTime, false))
	require.True(t, errors.Is(err, biddingerrors.ErrDuplicatePayoutMethod))

	countDefaults := func() int {
		methods, err := ledger.ListPayoutMethods(ctx, "seller1")
		require.NoError(t, err)
		n := 0
		for _, m := range methods {
			if m.IsDefault {
				n++
			}
		}
		return n
	}

	// adding a new default clears the old one
	require.NoError(t, ledger.AddPayoutMethod(ctx, newMethod("m4", "seller1", baseTime.Add(3*time.Minute), true)))
	require.Equal(t, 1, countDefaults())
	def, err := ledger.GetDefaultPayoutMethod(ctx, "seller1")
	require.NoError(t, err)
	require.Equal(t, "m4", def.MethodID)

	_, err = ledger.SetDefaultPayoutMethod(ctx, "m2")
	require.NoError(t, err)
	require.Equal(t, 1, countDefaults())

	// seller2 untouched
	def, err = ledger.GetDefaultPayoutMethod(ctx, "seller2")
	require.NoError(t, err)
	require.Equal(t, "other", def.MethodID)

	// deleting the default promotes the oldest remaining method
	deleted, promoted, err := ledger.DeletePayoutMethod(ctx, "m2")
	require.NoError(t, err)
	require.Equal(t, "m2", deleted.MethodID)
	require.NotNil(t, promoted)
	require.Equal(t, "m1", promoted.MethodID)
	require.Equal(t, 1, countDefaults())

	// deleting a non-default promotes nothing
	_, promoted, err = ledger.DeletePayoutMethod(ctx, "m3")
	require.NoError(t, err)
	require.Nil(t, promoted)

	_, _, err = ledger.DeletePayoutMethod(ctx, "m4")
	require.NoError(t, err)
	_, promoted, err = ledger.DeletePayoutMethod(ctx, "m1")
	require.NoError(t, err)
	require.Nil(t, promoted)

	_, err = ledger.GetDefaultPayoutMethod(ctx, "seller1")
	require.True(t, errors.Is(err, biddingerrors.ErrPayoutMethodNotFound))

	_, _, err = ledger.DeletePayoutMethod(ctx, "m1")
	require.True(t, errors.Is(err, biddingerrors.ErrPayoutMethodNotFound))
}
