// Package settlement closes ended auctions: it picks the outcome, takes the
// platform fee and escrows the seller's net proceeds exactly once.
package settlement

import (
	"context"
	"errors"
	"fmt"

	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/lifecycle"
	model "auction-engine/internal/models"
	"auction-engine/internal/notify"
	"auction-engine/internal/repository"
	"auction-engine/utils"

	"github.com/shopspring/decimal"
)

// AuctionSettler runs a settlement function inside the auction's critical section
type AuctionSettler interface {
	Settle(ctx context.Context, auctionID string, fn lifecycle.SettleFunc) (model.Auction, error)
}

// EscrowCrediter posts settled proceeds to the seller's pending balance
type EscrowCrediter interface {
	CreditPending(ctx context.Context, sellerID, auctionID string, amount decimal.Decimal) (model.EscrowHold, error)
}

// Result is the outcome of one settlement
type Result struct {
	AuctionID string                 `json:"auction_id"`
	SellerID  string                 `json:"seller_id"`
	Record    model.SettlementRecord `json:"settlement"`
	Status    model.AuctionStatus    `json:"status"`
}

// Engine settles ended auctions
type Engine struct {
	auctions AuctionSettler
	escrow   EscrowCrediter
	bids     repository.AuctionDB
	notifier notify.Notifier
	feeRate  decimal.Decimal
	now      utils.Clock
}

// NewEngine creates an Engine. feeRate is the platform's share of the winning amount.
func NewEngine(auctions AuctionSettler, escrow EscrowCrediter, bids repository.AuctionDB, notifier notify.Notifier, feeRate decimal.Decimal, clock utils.Clock) *Engine {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	if clock == nil {
		clock = utils.SystemClock
	}
	return &Engine{
		auctions: auctions,
		escrow:   escrow,
		bids:     bids,
		notifier: notifier,
		feeRate:  feeRate,
		now:      clock,
	}
}

// Settle closes an ended auction. Without bids, or with a high bid below the
// reserve, the outcome is no sale and nothing is escrowed. Otherwise the high
// bidder wins and amount minus the platform fee is credited to the seller as
// pending. A settled auction fails with ErrAlreadySettled.
func (e *Engine) Settle(ctx context.Context, auctionID string) (Result, error) {
	settled, err := e.auctions.Settle(ctx, auctionID, e.settle)
	if err != nil {
		return Result{}, fmt.Errorf("settlement: auction %s: %w", auctionID, err)
	}

	record := *settled.Settlement
	utils.Info("auction settled", map[string]any{
		"auction_id": settled.AuctionID,
		"outcome":    string(record.Outcome),
		"winner_id":  record.WinnerID,
		"amount":     record.WinningAmount.String(),
		"fee":        record.PlatformFee.String(),
		"net_amount": record.NetAmount.String(),
	})
	e.emit(ctx, settled, record)

	return Result{
		AuctionID: settled.AuctionID,
		SellerID:  settled.SellerID,
		Record:    record,
		Status:    settled.Status,
	}, nil
}

// settle runs inside the auction lock, after the lifecycle has confirmed the auction is ended
func (e *Engine) settle(ctx context.Context, a model.Auction) (model.SettlementRecord, error) {
	now := e.now()
	if !a.ReserveMet() {
		record := model.SettlementRecord{
			Outcome:       model.OutcomeNoSale,
			WinningAmount: decimal.Zero,
			PlatformFee:   decimal.Zero,
			NetAmount:     decimal.Zero,
			SettledAt:     now,
		}
		if a.HasBids() {
			record.WinningAmount = *a.CurrentHighBid
		}
		return record, nil
	}

	amount := *a.CurrentHighBid
	fee := amount.Mul(e.feeRate).Round(model.MoneyPlaces)
	net := amount.Sub(fee)

	if net.IsPositive() {
		_, err := e.escrow.CreditPending(ctx, a.SellerID, a.AuctionID, net)
		switch {
		case errors.Is(err, biddingerrors.ErrDuplicateHold):
			// credited by an earlier attempt that failed before the auction was marked settled
			utils.Warn("settlement: escrow already credited, completing settlement", map[string]any{
				"auction_id": a.AuctionID,
				"seller_id":  a.SellerID,
			})
		case err != nil:
			return model.SettlementRecord{}, fmt.Errorf("failed to credit escrow: %w", err)
		}
	}

	return model.SettlementRecord{
		Outcome:       model.OutcomeWon,
		WinnerID:      *a.CurrentHighBidder,
		WinningAmount: amount,
		PlatformFee:   fee,
		NetAmount:     net,
		SettledAt:     now,
	}, nil
}

func (e *Engine) emit(ctx context.Context, a model.Auction, record model.SettlementRecord) {
	var bidders []string
	if e.bids != nil {
		participants, err := e.bids.GetParticipants(ctx, a.AuctionID)
		if err != nil {
			utils.Warn("settlement: failed to load participants for notice", map[string]any{
				"auction_id": a.AuctionID,
				"error":      err.Error(),
			})
		}
		for _, p := range participants {
			bidders = append(bidders, p.BidderID)
		}
	}

	ev := notify.Event{
		Type:       notify.EventAuctionNoSale,
		AuctionID:  a.AuctionID,
		SellerID:   a.SellerID,
		Bidders:    bidders,
		OccurredAt: record.SettledAt,
	}
	if record.Outcome == model.OutcomeWon {
		ev.Type = notify.EventAuctionWon
		ev.BidderID = record.WinnerID
		ev.Amount = record.WinningAmount
	}
	e.notifier.Notify(ctx, ev)
}
