package handler

//go:generate mockgen -source=bidding_handler.go -destination=mock_bidding_handler.go -package=handler

import (
	"context"
	"errors"
	"net/http"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"auction-engine/services/bidding/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (model.BidResult, error)
	ListBids(ctx context.Context, auctionID string) ([]model.Bid, error)
	GetHighBid(ctx context.Context, auctionID string) (model.Bid, error)
	GetAuctionsByBidder(ctx context.Context, bidderID string) ([]model.Auction, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// PlaceBidHandler handles POST /auctions/:auction_id/bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	result, err := h.service.PlaceBid(c.Request.Context(), auctionID, req.BidderID, req.Amount)
	if err != nil {
		// a rejected bid is recorded; hand the caller the reason and the new floor
		if reason, ok := biddingerrors.RejectionReason(err); ok {
			status, message := helpers.MapErrorToHTTP(err)
			utils.JSONErrorWithData(c, status, err, message, helpers.NewBidResponse(result))
			utils.Info("PlaceBidHandler: bid rejected", map[string]any{
				"auction_id": auctionID,
				"bidder_id":  req.BidderID,
				"amount":     req.Amount.String(),
				"reason":     string(reason),
			})
			return
		}
		helpers.HandleServiceError(c, "PlaceBidHandler", err, map[string]any{
			"auction_id": auctionID,
			"bidder_id":  req.BidderID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(result), "bid accepted")
	helpers.LogSuccess("PlaceBidHandler", "bid accepted", map[string]any{
		"bid_id":     result.Bid.BidID,
		"auction_id": auctionID,
		"bidder_id":  req.BidderID,
		"amount":     req.Amount.String(),
		"version":    result.Version,
	})
}

// ListBidsHandler handles GET /auctions/:auction_id/bids
func (h *BiddingHandler) ListBidsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bids, err := h.service.ListBids(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "ListBidsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	if bids == nil {
		bids = []model.Bid{}
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
	helpers.LogSuccess("ListBidsHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(bids),
	})
}

// GetWinningBidHandler handles GET /auctions/:auction_id/winning
func (h *BiddingHandler) GetWinningBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bid, err := h.service.GetHighBid(c.Request.Context(), auctionID)
	if err != nil {
		if errors.Is(err, biddingerrors.ErrNoBids) {
			utils.JSONResponse(c, http.StatusOK, nil, "no bids found for auction")
			utils.Warn("GetWinningBidHandler: no bids found", map[string]any{"auction_id": auctionID})
			return
		}
		helpers.HandleServiceError(c, "GetWinningBidHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, bid, "winning bid retrieved successfully")
	helpers.LogSuccess("GetWinningBidHandler", "winning bid retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"bid_id":     bid.BidID,
		"amount":     bid.Amount.String(),
	})
}

// GetAuctionsByBidderHandler handles GET /bidders/:bidder_id/auctions
func (h *BiddingHandler) GetAuctionsByBidderHandler(c *gin.Context) {
	bidderID := c.Param("bidder_id")
	auctions, err := h.service.GetAuctionsByBidder(c.Request.Context(), bidderID)
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionsByBidderHandler", err, map[string]any{"bidder_id": bidderID})
		return
	}

	if auctions == nil {
		auctions = []model.Auction{}
	}

	utils.JSONResponse(c, http.StatusOK, auctions, "auctions retrieved successfully")
	helpers.LogSuccess("GetAuctionsByBidderHandler", "auctions retrieved successfully", map[string]any{
		"bidder_id": bidderID,
		"count":     len(auctions),
	})
}
