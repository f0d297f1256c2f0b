package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places amounts are rounded to when fees are applied
const MoneyPlaces int32 = 2

// AuctionItem is the catalog's view of a listed item. The engine only reads it.
type AuctionItem struct {
	ItemID        string          `json:"item_id"`
	SellerID      string          `json:"seller_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	StartingPrice decimal.Decimal `json:"starting_price"`
}

// Auction is a single listing of an item running through the lifecycle
type Auction struct {
	AuctionID         string            `json:"auction_id"`
	AuctionItemID     string            `json:"auction_item_id"`
	SellerID          string            `json:"seller_id"`
	StartPrice        decimal.Decimal   `json:"start_price"`
	ReservePrice      decimal.Decimal   `json:"reserve_price"`
	MinIncrement      decimal.Decimal   `json:"min_increment"`
	StartAt           time.Time         `json:"start_at"`
	EndAt             time.Time         `json:"end_at"`
	Status            AuctionStatus     `json:"status"`
	CurrentHighBid    *decimal.Decimal  `json:"current_high_bid"`
	CurrentHighBidder *string           `json:"current_high_bidder"`
	Version           int64             `json:"version"`
	ParticipantsCount int               `json:"participants_count"`
	Settlement        *SettlementRecord `json:"settlement,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// HasBids reports whether any bid has been accepted
func (a Auction) HasBids() bool {
	return a.CurrentHighBid != nil
}

// ReserveMet reports whether the running high bid reaches the reserve price
func (a Auction) ReserveMet() bool {
	return a.CurrentHighBid != nil && a.CurrentHighBid.GreaterThanOrEqual(a.ReservePrice)
}

// SettlementOutcome is the result of closing an auction
type SettlementOutcome string

const (
	OutcomeWon    SettlementOutcome = "won"
	OutcomeNoSale SettlementOutcome = "no_sale"
)

// SettlementRecord is kept on the auction once settlement has run
type SettlementRecord struct {
	Outcome       SettlementOutcome `json:"outcome"`
	WinnerID      string            `json:"winner_id,omitempty"`
	WinningAmount decimal.Decimal   `json:"winning_amount"`
	PlatformFee   decimal.Decimal   `json:"platform_fee"`
	NetAmount     decimal.Decimal   `json:"net_amount"`
	SettledAt     time.Time         `json:"settled_at"`
}

// Bid is an append-only record of a bid attempt, accepted or not
type Bid struct {
	BidID           string              `json:"bid_id"`
	AuctionID       string              `json:"auction_id"`
	BidderID        string              `json:"bidder_id"`
	Amount          decimal.Decimal     `json:"amount"`
	PlacedAt        time.Time           `json:"placed_at"`
	Accepted        bool                `json:"accepted"`
	RejectionReason *BidRejectionReason `json:"rejection_reason,omitempty"`
	Sequence        int64               `json:"sequence"`
}

// BidResult is returned to the caller of PlaceBid
type BidResult struct {
	Bid            Bid                `json:"bid"`
	Accepted       bool               `json:"accepted"`
	Reason         BidRejectionReason `json:"reason,omitempty"`
	CurrentHighBid *decimal.Decimal   `json:"current_high_bid"`
	MinimumNextBid decimal.Decimal    `json:"minimum_next_bid"`
	Version        int64              `json:"version"`
}

// Participant is a distinct bidder on an auction
type Participant struct {
	AuctionID  string    `json:"auction_id"`
	BidderID   string    `json:"bidder_id"`
	FirstBidAt time.Time `json:"first_bid_at"`
}

// SellerBalance holds a seller's escrowed and withdrawable funds
type SellerBalance struct {
	SellerID     string          `json:"seller_id"`
	Pending      decimal.Decimal `json:"pending"`
	Available    decimal.Decimal `json:"available"`
	TotalPaidOut decimal.Decimal `json:"total_paid_out"`
	Version      int64           `json:"version"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// EscrowHold tracks funds credited from one settled auction until they are released
type EscrowHold struct {
	HoldID     string          `json:"hold_id"`
	SellerID   string          `json:"seller_id"`
	AuctionID  string          `json:"auction_id"`
	Amount     decimal.Decimal `json:"amount"`
	Remaining  decimal.Decimal `json:"remaining"`
	HeldAt     time.Time       `json:"held_at"`
	ReleaseAt  time.Time       `json:"release_at"`
	ReleasedAt *time.Time      `json:"released_at,omitempty"`
}

// Open reports whether part of the hold is still escrowed
func (h EscrowHold) Open() bool {
	return h.ReleasedAt == nil && h.Remaining.IsPositive()
}

// BalanceView is the read model returned by getBalance
type BalanceView struct {
	SellerID      string          `json:"seller_id"`
	Available     decimal.Decimal `json:"available"`
	Pending       decimal.Decimal `json:"pending"`
	TotalPaidOut  decimal.Decimal `json:"total_paid_out"`
	CanWithdraw   bool            `json:"can_withdraw"`
	MinimumPayout decimal.Decimal `json:"minimum_payout"`
}

// PayoutMethodType is the disbursement channel of a payout method
type PayoutMethodType string

const (
	MethodGCash PayoutMethodType = "gcash"
	MethodMaya  PayoutMethodType = "maya"
	MethodBank  PayoutMethodType = "bank"
)

// Valid reports whether t is a known method type
func (t PayoutMethodType) Valid() bool {
	switch t {
	case MethodGCash, MethodMaya, MethodBank:
		return true
	default:
		return false
	}
}

// PayoutMethod is a seller's linked disbursement destination
type PayoutMethod struct {
	MethodID      string           `json:"seller_payout_method_id"`
	SellerID      string           `json:"seller_id"`
	Method        PayoutMethodType `json:"method"`
	AccountName   string           `json:"account_name"`
	MobileNumber  string           `json:"mobile_number,omitempty"`
	BankName      string           `json:"bank_name,omitempty"`
	AccountNumber string           `json:"account_number,omitempty"`
	IsDefault     bool             `json:"is_default"`
	CreatedAt     time.Time        `json:"created_at"`
}

// PayoutStatus is the state of a payout record
type PayoutStatus string

const (
	PayoutPending PayoutStatus = "pending"
	PayoutPaid    PayoutStatus = "paid"
)

// Payout is an immutable withdrawal record
type Payout struct {
	PayoutID  string          `json:"payout_id"`
	SellerID  string          `json:"seller_id"`
	Amount    decimal.Decimal `json:"amount"`
	Fee       decimal.Decimal `json:"fee"`
	NetAmount decimal.Decimal `json:"net_amount"`
	Status    PayoutStatus    `json:"status"`
	Method    PayoutMethod    `json:"payout_method"`
	Reference string          `json:"reference"`
	CreatedAt time.Time       `json:"created_at"`
}
