package biddingerrors

import (
	"errors"
	"fmt"

	"auction-engine/internal/models"
)

// Error classes. Every specific error below wraps exactly one of these.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrState       = errors.New("state error")
	ErrBidRejected = errors.New("bid rejected")
	ErrConcurrency = errors.New("concurrency error")
	ErrSettlement  = errors.New("settlement error")
	ErrPayout      = errors.New("payout error")
)

// Repository-level errors
var (
	ErrAuctionNotFound       = fmt.Errorf("%w: auction", ErrNotFound)
	ErrItemNotFound          = fmt.Errorf("%w: item", ErrNotFound)
	ErrSellerNotFound        = fmt.Errorf("%w: seller", ErrNotFound)
	ErrPayoutMethodNotFound  = fmt.Errorf("%w: payout method", ErrNotFound)
	ErrNoBids                = fmt.Errorf("%w: no accepted bids for auction", ErrNotFound)
	ErrItemHasOpenAuction    = fmt.Errorf("%w: item already has an open auction", ErrState)
	ErrDuplicateAuction      = fmt.Errorf("%w: auction id already exists", ErrConcurrency)
	ErrDuplicateHold         = fmt.Errorf("%w: escrow already credited for auction", ErrSettlement)
	ErrStaleVersion          = fmt.Errorf("%w: stale version", ErrConcurrency)
	ErrDuplicatePayoutMethod = fmt.Errorf("%w: payout method id already exists", ErrConcurrency)
)

// business logic errors
var (
	ErrInvalidAuction      = fmt.Errorf("%w: invalid auction parameters", ErrValidation)
	ErrInvalidBid          = fmt.Errorf("%w: invalid bid", ErrValidation)
	ErrInvalidPayoutMethod = fmt.Errorf("%w: invalid payout method", ErrValidation)
	ErrInvalidAmount       = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrItemNotOwned        = fmt.Errorf("%w: item does not belong to seller", ErrValidation)

	ErrInvalidTransition = fmt.Errorf("%w: invalid transition", ErrState)
	ErrNotEnded          = fmt.Errorf("%w: auction has not ended", ErrState)

	ErrAuctionNotActive  = fmt.Errorf("%w: auction is not active", ErrBidRejected)
	ErrBelowStartPrice   = fmt.Errorf("%w: below start price", ErrBidRejected)
	ErrBelowMinIncrement = fmt.Errorf("%w: below minimum increment", ErrBidRejected)
	ErrSuperseded        = fmt.Errorf("%w: superseded by a higher bid", ErrBidRejected)

	ErrAlreadySettled = fmt.Errorf("%w: already settled", ErrSettlement)

	ErrBelowMinimum        = fmt.Errorf("%w: available balance below minimum payout", ErrPayout)
	ErrNoPaymentMethod     = fmt.Errorf("%w: no default payout method", ErrPayout)
	ErrInsufficientPending = fmt.Errorf("%w: insufficient pending balance", ErrPayout)
	ErrDisbursementFailed  = fmt.Errorf("%w: disbursement failed", ErrPayout)
)

// ReasonError returns the sentinel for a rejection reason
func ReasonError(reason models.BidRejectionReason) error {
	switch reason {
	case models.ReasonAuctionNotActive:
		return ErrAuctionNotActive
	case models.ReasonBelowStartPrice:
		return ErrBelowStartPrice
	case models.ReasonBelowMinIncrement:
		return ErrBelowMinIncrement
	case models.ReasonSuperseded:
		return ErrSuperseded
	default:
		return ErrBidRejected
	}
}

// BidRejectedError is returned by PlaceBid when a bid was recorded but not accepted
type BidRejectedError struct {
	AuctionID string
	BidID     string
	Reason    models.BidRejectionReason
}

func (e *BidRejectedError) Error() string {
	return fmt.Sprintf("bid %s on auction %s rejected: %s", e.BidID, e.AuctionID, e.Reason)
}

func (e *BidRejectedError) Unwrap() error {
	return ReasonError(e.Reason)
}

// StateError is returned when a lifecycle action is not allowed from the current status
type StateError struct {
	AuctionID string
	From      models.AuctionStatus
	Action    string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("auction %s: cannot %s from status %s", e.AuctionID, e.Action, e.From)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidTransition
}

// RejectionReason extracts the rejection reason from err, if any
func RejectionReason(err error) (models.BidRejectionReason, bool) {
	var rej *BidRejectedError
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}
