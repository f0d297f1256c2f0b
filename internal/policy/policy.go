// Package policy decides whether a proposed bid may become the new high bid.
//
// Reserve price is deliberately absent from Evaluate: bids below the reserve
// are accepted and the reserve is only consulted when the auction settles.
package policy

import (
	"auction-engine/internal/models"

	"github.com/shopspring/decimal"
)

// Decision is the outcome of evaluating a bid against an auction
type Decision struct {
	Accepted bool
	Reason   models.BidRejectionReason
}

func accept() Decision {
	return Decision{Accepted: true}
}

// smallestStep applies when an auction has a zero increment, so accepted bids still strictly increase
var smallestStep = decimal.New(1, -models.MoneyPlaces)

func reject(reason models.BidRejectionReason) Decision {
	return Decision{Reason: reason}
}

// Evaluate checks amount against the auction's status, start price and minimum increment
func Evaluate(auction models.Auction, amount decimal.Decimal) Decision {
	if auction.Status != models.StatusActive {
		return reject(models.ReasonAuctionNotActive)
	}

	if auction.CurrentHighBid == nil {
		if amount.LessThan(auction.StartPrice) {
			return reject(models.ReasonBelowStartPrice)
		}
		return accept()
	}

	if amount.LessThan(MinimumNextBid(auction)) {
		return reject(models.ReasonBelowMinIncrement)
	}
	return accept()
}

// MinimumNextBid is the smallest amount Evaluate would accept on an active auction
func MinimumNextBid(auction models.Auction) decimal.Decimal {
	if auction.CurrentHighBid == nil {
		return auction.StartPrice
	}
	step := auction.MinIncrement
	if !step.IsPositive() {
		step = smallestStep
	}
	return auction.CurrentHighBid.Add(step)
}
