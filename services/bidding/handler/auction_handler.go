package handler

//go:generate mockgen -source=auction_handler.go -destination=mock_auction_handler.go -package=handler

import (
	"context"
	"fmt"
	"net/http"

	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/lifecycle"
	model "auction-engine/internal/models"
	"auction-engine/services/bidding/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

type AuctionServiceInterface interface {
	CreateAuction(ctx context.Context, p lifecycle.CreateAuctionParams) (model.Auction, error)
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	ListAuctions(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error)
	ActivateNow(ctx context.Context, auctionID string, expectedVersion *int64) (model.Auction, error)
	Pause(ctx context.Context, auctionID string, expectedVersion *int64) (model.Auction, error)
	Resume(ctx context.Context, auctionID string, expectedVersion *int64) (model.Auction, error)
	Cancel(ctx context.Context, auctionID string, expectedVersion *int64) (model.Auction, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// CreateAuctionHandler handles POST /auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	auction, err := h.service.CreateAuction(c.Request.Context(), lifecycle.CreateAuctionParams{
		AuctionItemID: req.AuctionItemID,
		SellerID:      req.SellerID,
		StartPrice:    req.StartPrice,
		ReservePrice:  req.ReservePrice,
		MinIncrement:  req.MinIncrement,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
	})
	if err != nil {
		helpers.HandleServiceError(c, "CreateAuctionHandler", err, map[string]any{
			"item_id":   req.AuctionItemID,
			"seller_id": req.SellerID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, auction, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": auction.AuctionID,
		"item_id":    auction.AuctionItemID,
		"seller_id":  auction.SellerID,
	})
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	auction, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, auction, "auction retrieved successfully")
}

// ListAuctionsHandler handles GET /auctions?status=active
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	raw := c.DefaultQuery("status", string(model.StatusActive))
	status, err := model.ParseAuctionStatus(raw)
	if err != nil {
		helpers.HandleServiceError(c, "ListAuctionsHandler", fmt.Errorf("%w: %w", biddingerrors.ErrValidation, err), nil)
		return
	}

	auctions, err := h.service.ListAuctions(c.Request.Context(), status)
	if err != nil {
		helpers.HandleServiceError(c, "ListAuctionsHandler", err, map[string]any{"status": raw})
		return
	}
	if auctions == nil {
		auctions = []model.Auction{}
	}

	utils.JSONResponse(c, http.StatusOK, auctions, "auctions retrieved successfully")
	helpers.LogSuccess("ListAuctionsHandler", "auctions retrieved successfully", map[string]any{
		"status": raw,
		"count":  len(auctions),
	})
}

type transitionFunc func(ctx context.Context, auctionID string, expectedVersion *int64) (model.Auction, error)

// transition binds the optional version body and runs an operator transition
func (h *AuctionHandler) transition(c *gin.Context, handlerName, message string, fn transitionFunc) {
	auctionID := c.Param("auction_id")

	var req helpers.TransitionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			helpers.HandleBindError(c, handlerName, err)
			return
		}
	}

	auction, err := fn(c.Request.Context(), auctionID, req.Version)
	if err != nil {
		helpers.HandleServiceError(c, handlerName, err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, auction, message)
	helpers.LogSuccess(handlerName, message, map[string]any{
		"auction_id": auctionID,
		"status":     string(auction.Status),
		"version":    auction.Version,
	})
}

// ActivateHandler handles POST /auctions/:auction_id/activate
func (h *AuctionHandler) ActivateHandler(c *gin.Context) {
	h.transition(c, "ActivateHandler", "auction activated", h.service.ActivateNow)
}

// PauseHandler handles POST /auctions/:auction_id/pause
func (h *AuctionHandler) PauseHandler(c *gin.Context) {
	h.transition(c, "PauseHandler", "auction paused", h.service.Pause)
}

// ResumeHandler handles POST /auctions/:auction_id/resume
func (h *AuctionHandler) ResumeHandler(c *gin.Context) {
	h.transition(c, "ResumeHandler", "auction resumed", h.service.Resume)
}

// CancelHandler handles POST /auctions/:auction_id/cancel
func (h *AuctionHandler) CancelHandler(c *gin.Context) {
	h.transition(c, "CancelHandler", "auction cancelled", h.service.Cancel)
}
