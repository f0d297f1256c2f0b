package models

import "fmt"

// AuctionStatus is the lifecycle state of an auction
type AuctionStatus string

const (
	StatusScheduled AuctionStatus = "scheduled"
	StatusActive    AuctionStatus = "active"
	StatusPaused    AuctionStatus = "paused"
	StatusEnded     AuctionStatus = "ended"
	StatusSettled   AuctionStatus = "settled"
	StatusCancelled AuctionStatus = "cancelled"
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []AuctionStatus{
	StatusScheduled,
	StatusActive,
	StatusPaused,
	StatusEnded,
	StatusSettled,
	StatusCancelled,
}

// ParseAuctionStatus converts a stored or user supplied string into a status.
// Matching is exact.
func ParseAuctionStatus(s string) (AuctionStatus, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown auction status %q", s)
}

// Open reports whether the auction still occupies its item. An ended auction
// holds it until settlement completes.
func (s AuctionStatus) Open() bool {
	switch s {
	case StatusScheduled, StatusActive, StatusPaused, StatusEnded:
		return true
	case StatusSettled, StatusCancelled:
		return false
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler
func (s AuctionStatus) MarshalText() ([]byte, error) {
	if _, err := ParseAuctionStatus(string(s)); err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *AuctionStatus) UnmarshalText(b []byte) error {
	st, err := ParseAuctionStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// BidRejectionReason explains why a bid was not accepted
type BidRejectionReason string

const (
	ReasonAuctionNotActive  BidRejectionReason = "auction_not_active"
	ReasonBelowStartPrice   BidRejectionReason = "below_start_price"
	ReasonBelowMinIncrement BidRejectionReason = "below_min_increment"
	ReasonSuperseded        BidRejectionReason = "superseded"
)

// ParseBidRejectionReason converts a stored string into a reason
func ParseBidRejectionReason(s string) (BidRejectionReason, error) {
	switch r := BidRejectionReason(s); r {
	case ReasonAuctionNotActive, ReasonBelowStartPrice, ReasonBelowMinIncrement, ReasonSuperseded:
		return r, nil
	default:
		return "", fmt.Errorf("unknown bid rejection reason %q", s)
	}
}
