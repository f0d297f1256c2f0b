package bidding

import (
	"context"
	"fmt"
	"time"

	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/locker"
	"auction-engine/internal/models"
	"auction-engine/internal/policy"
	"auction-engine/internal/repository"
	"auction-engine/utils"

	"github.com/shopspring/decimal"
)

// BiddingService is the bid ledger. Bids on one auction are evaluated and
// recorded one at a time inside the auction's critical section.
type BiddingService struct {
	repo  repository.AuctionDB
	locks *locker.Keyed
	now   utils.Clock
}

// NewBiddingService creates a new BiddingService instance. locks must be the
// same locker the lifecycle manager uses.
func NewBiddingService(repo repository.AuctionDB, locks *locker.Keyed, clock utils.Clock) *BiddingService {
	if locks == nil {
		locks = locker.New()
	}
	if clock == nil {
		clock = utils.SystemClock
	}
	return &BiddingService{
		repo:  repo,
		locks: locks,
		now:   clock,
	}
}

// PlaceBid validates, evaluates and records a bid. A rejected bid is still
// recorded and returned in the result together with a *BidRejectedError.
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (models.BidResult, error) {
	if err := validateBid(auctionID, bidderID, amount); err != nil {
		return models.BidResult{}, err
	}

	// what the caller could have seen when the bid arrived
	observed, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.BidResult{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}
	if observed.SellerID == bidderID {
		return models.BidResult{}, fmt.Errorf("service: %w - seller cannot bid on own auction", biddingerrors.ErrInvalidBid)
	}

	unlock := s.locks.Lock(auctionID)
	defer unlock()

	current, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.BidResult{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}

	now := s.now()
	decision := evaluateAt(current, amount, now)
	if !decision.Accepted && current.Version != observed.Version && outbid(decision.Reason) &&
		evaluateAt(observed, amount, now).Accepted {
		decision.Reason = models.ReasonSuperseded
	}

	bid := models.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		PlacedAt:  now,
		Accepted:  decision.Accepted,
	}

	if decision.Accepted {
		return s.recordAccepted(ctx, current, bid)
	}
	return s.recordRejected(ctx, current, bid, decision.Reason)
}

func (s *BiddingService) recordAccepted(ctx context.Context, current models.Auction, bid models.Bid) (models.BidResult, error) {
	amount := bid.Amount
	bidder := bid.BidderID
	updated := current
	updated.CurrentHighBid = &amount
	updated.CurrentHighBidder = &bidder
	updated.Version = current.Version + 1
	updated.UpdatedAt = bid.PlacedAt

	stored, err := s.repo.RecordBid(ctx, bid, &updated, current.Version)
	if err != nil {
		return models.BidResult{}, fmt.Errorf("service: failed to record bid on auction %s by %s: %w", bid.AuctionID, bid.BidderID, err)
	}

	utils.Debug("bid accepted", map[string]any{
		"auction_id": stored.AuctionID,
		"bid_id":     stored.BidID,
		"bidder_id":  stored.BidderID,
		"amount":     stored.Amount.String(),
		"sequence":   stored.Sequence,
	})
	return models.BidResult{
		Bid:            stored,
		Accepted:       true,
		CurrentHighBid: updated.CurrentHighBid,
		MinimumNextBid: policy.MinimumNextBid(updated),
		Version:        updated.Version,
	}, nil
}

func (s *BiddingService) recordRejected(ctx context.Context, current models.Auction, bid models.Bid, reason models.BidRejectionReason) (models.BidResult, error) {
	r := reason
	bid.RejectionReason = &r

	stored, err := s.repo.RecordBid(ctx, bid, nil, current.Version)
	if err != nil {
		return models.BidResult{}, fmt.Errorf("service: failed to record rejected bid on auction %s by %s: %w", bid.AuctionID, bid.BidderID, err)
	}

	utils.Debug("bid rejected", map[string]any{
		"auction_id": stored.AuctionID,
		"bid_id":     stored.BidID,
		"bidder_id":  stored.BidderID,
		"amount":     stored.Amount.String(),
		"reason":     string(reason),
	})
	result := models.BidResult{
		Bid:            stored,
		Reason:         reason,
		CurrentHighBid: current.CurrentHighBid,
		MinimumNextBid: policy.MinimumNextBid(current),
		Version:        current.Version,
	}
	return result, fmt.Errorf("service: %w", &biddingerrors.BidRejectedError{
		AuctionID: stored.AuctionID,
		BidID:     stored.BidID,
		Reason:    reason,
	})
}

// evaluateAt applies the policy and closes bidding at EndAt even before the scheduler has ended the auction
func evaluateAt(a models.Auction, amount decimal.Decimal, now time.Time) policy.Decision {
	if a.Status == models.StatusActive && !now.Before(a.EndAt) {
		return policy.Decision{Reason: models.ReasonAuctionNotActive}
	}
	return policy.Evaluate(a, amount)
}

func outbid(reason models.BidRejectionReason) bool {
	return reason == models.ReasonBelowMinIncrement || reason == models.ReasonBelowStartPrice
}

// validateBid checks input validity
func validateBid(auctionID, bidderID string, amount decimal.Decimal) error {
	if auctionID == "" || bidderID == "" {
		return fmt.Errorf("service: %w - missing auctionID or bidderID", biddingerrors.ErrInvalidBid)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("service: %w - non-positive bid amount", biddingerrors.ErrInvalidBid)
	}
	if !amount.Equal(amount.Round(models.MoneyPlaces)) {
		return fmt.Errorf("service: %w - amount has more than %d decimal places", biddingerrors.ErrInvalidBid, models.MoneyPlaces)
	}
	return nil
}

// ListBids returns every bid attempt on an auction in acceptance order
func (s *BiddingService) ListBids(ctx context.Context, auctionID string) ([]models.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}

	return bids, nil
}

// GetHighBid returns the last accepted bid of an auction
func (s *BiddingService) GetHighBid(ctx context.Context, auctionID string) (models.Bid, error) {
	bids, err := s.ListBids(ctx, auctionID)
	if err != nil {
		return models.Bid{}, err
	}

	for i := len(bids) - 1; i >= 0; i-- {
		if bids[i].Accepted {
			return bids[i], nil
		}
	}
	return models.Bid{}, fmt.Errorf("service: auction %s: %w", auctionID, biddingerrors.ErrNoBids)
}

// GetParticipants returns the distinct bidders of an auction
func (s *BiddingService) GetParticipants(ctx context.Context, auctionID string) ([]models.Participant, error) {
	participants, err := s.repo.GetParticipants(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get participants for auction %s: %w", auctionID, err)
	}
	return participants, nil
}

// GetAuctionsByBidder returns all auctions a bidder has placed bids on
func (s *BiddingService) GetAuctionsByBidder(ctx context.Context, bidderID string) ([]models.Auction, error) {
	if bidderID == "" {
		return nil, fmt.Errorf("service: %w - empty bidder ID", biddingerrors.ErrInvalidBid)
	}

	auctions, err := s.repo.GetAuctionsByBidder(ctx, bidderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get auctions for bidder %s: %w", bidderID, err)
	}

	return auctions, nil
}
