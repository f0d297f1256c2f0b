package helpers

import (
	"time"

	model "auction-engine/internal/models"

	"github.com/shopspring/decimal"
)

// Request/Response DTOs. Money is decoded into decimal.Decimal, which accepts
// both JSON numbers and strings, so amounts never pass through float64.

type CreateAuctionRequest struct {
	AuctionItemID string          `json:"auction_item_id" binding:"required"`
	SellerID      string          `json:"seller_id" binding:"required"`
	StartPrice    decimal.Decimal `json:"start_price"`
	ReservePrice  decimal.Decimal `json:"reserve_price"`
	MinIncrement  decimal.Decimal `json:"min_increment"`
	StartAt       time.Time       `json:"start_at"`
	EndAt         time.Time       `json:"end_at"`
}

type PlaceBidRequest struct {
	BidderID string          `json:"bidder_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

// TransitionRequest is the optional body of operator transitions
type TransitionRequest struct {
	Version *int64 `json:"version"`
}

type ReleaseRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type LinkMethodRequest struct {
	Method        string `json:"method" binding:"required"`
	AccountName   string `json:"account_name" binding:"required"`
	MobileNumber  string `json:"mobile_number"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	MakeDefault   bool   `json:"make_default"`
}

type BidResponse struct {
	BidID          string           `json:"bid_id"`
	AuctionID      string           `json:"auction_id"`
	BidderID       string           `json:"bidder_id"`
	Amount         decimal.Decimal  `json:"amount"`
	PlacedAt       string           `json:"placed_at"`
	Accepted       bool             `json:"accepted"`
	Reason         string           `json:"reason,omitempty"`
	Sequence       int64            `json:"sequence"`
	CurrentHighBid *decimal.Decimal `json:"current_high_bid"`
	MinimumNextBid decimal.Decimal  `json:"minimum_next_bid"`
	Version        int64            `json:"version"`
}

// NewBidResponse flattens a bid result for the wire
func NewBidResponse(r model.BidResult) BidResponse {
	return BidResponse{
		BidID:          r.Bid.BidID,
		AuctionID:      r.Bid.AuctionID,
		BidderID:       r.Bid.BidderID,
		Amount:         r.Bid.Amount,
		PlacedAt:       r.Bid.PlacedAt.UTC().Format(time.RFC3339),
		Accepted:       r.Accepted,
		Reason:         string(r.Reason),
		Sequence:       r.Bid.Sequence,
		CurrentHighBid: r.CurrentHighBid,
		MinimumNextBid: r.MinimumNextBid,
		Version:        r.Version,
	}
}

type DeleteMethodResponse struct {
	Deleted  model.PayoutMethod  `json:"deleted"`
	Promoted *model.PayoutMethod `json:"promoted,omitempty"`
}
