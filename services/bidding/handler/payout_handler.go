package handler

//go:generate mockgen -source=payout_handler.go -destination=mock_payout_handler.go -package=handler

import (
	"context"
	"net/http"

	model "auction-engine/internal/models"
	"auction-engine/internal/payout"
	"auction-engine/services/bidding/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PayoutServiceInterface interface {
	GetBalance(ctx context.Context, sellerID string) (model.BalanceView, error)
	ReleaseToAvailable(ctx context.Context, sellerID string, amount decimal.Decimal) (model.SellerBalance, error)
	Withdraw(ctx context.Context, sellerID string) (model.Payout, error)
	ListPayouts(ctx context.Context, sellerID string) ([]model.Payout, error)
	LinkPayoutMethod(ctx context.Context, p payout.LinkMethodParams) (model.PayoutMethod, error)
	ListMethods(ctx context.Context, sellerID string) ([]model.PayoutMethod, error)
	SetDefault(ctx context.Context, methodID string) (model.PayoutMethod, error)
	DeleteMethod(ctx context.Context, methodID string) (model.PayoutMethod, *model.PayoutMethod, error)
}

type PayoutHandler struct {
	service PayoutServiceInterface
}

func NewPayoutHandler(service PayoutServiceInterface) *PayoutHandler {
	return &PayoutHandler{service: service}
}

// GetBalanceHandler handles GET /sellers/:seller_id/balance
func (h *PayoutHandler) GetBalanceHandler(c *gin.Context) {
	sellerID := c.Param("seller_id")
	view, err := h.service.GetBalance(c.Request.Context(), sellerID)
	if err != nil {
		helpers.HandleServiceError(c, "GetBalanceHandler", err, map[string]any{"seller_id": sellerID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, view, "balance retrieved successfully")
}

// ReleaseHandler handles POST /sellers/:seller_id/releases
func (h *PayoutHandler) ReleaseHandler(c *gin.Context) {
	sellerID := c.Param("seller_id")

	var req helpers.ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ReleaseHandler", err)
		return
	}

	bal, err := h.service.ReleaseToAvailable(c.Request.Context(), sellerID, req.Amount)
	if err != nil {
		helpers.HandleServiceError(c, "ReleaseHandler", err, map[string]any{
			"seller_id": sellerID,
			"amount":    req.Amount.String(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, bal, "funds released")
	helpers.LogSuccess("ReleaseHandler", "funds released", map[string]any{
		"seller_id": sellerID,
		"amount":    req.Amount.String(),
		"available": bal.Available.String(),
	})
}

// WithdrawHandler handles POST /sellers/:seller_id/withdrawals
func (h *PayoutHandler) WithdrawHandler(c *gin.Context) {
	sellerID := c.Param("seller_id")
	p, err := h.service.Withdraw(c.Request.Context(), sellerID)
	if err != nil {
		helpers.HandleServiceError(c, "WithdrawHandler", err, map[string]any{"seller_id": sellerID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, p, "payout completed")
	helpers.LogSuccess("WithdrawHandler", "payout completed", map[string]any{
		"seller_id": sellerID,
		"payout_id": p.PayoutID,
		"amount":    p.Amount.String(),
		"reference": p.Reference,
	})
}

// ListPayoutsHandler handles GET /sellers/:seller_id/payouts
func (h *PayoutHandler) ListPayoutsHandler(c *gin.Context) {
	sellerID := c.Param("seller_id")
	payouts, err := h.service.ListPayouts(c.Request.Context(), sellerID)
	if err != nil {
		helpers.HandleServiceError(c, "ListPayoutsHandler", err, map[string]any{"seller_id": sellerID})
		return
	}
	if payouts == nil {
		payouts = []model.Payout{}
	}
	utils.JSONResponse(c, http.StatusOK, payouts, "payouts retrieved successfully")
}

// LinkMethodHandler handles POST /sellers/:seller_id/payout-methods
func (h *PayoutHandler) LinkMethodHandler(c *gin.Context) {
	sellerID := c.Param("seller_id")

	var req helpers.LinkMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LinkMethodHandler", err)
		return
	}

	method, err := h.service.LinkPayoutMethod(c.Request.Context(), payout.LinkMethodParams{
		SellerID:      sellerID,
		Method:        model.PayoutMethodType(req.Method),
		AccountName:   req.AccountName,
		MobileNumber:  req.MobileNumber,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		MakeDefault:   req.MakeDefault,
	})
	if err != nil {
		helpers.HandleServiceError(c, "LinkMethodHandler", err, map[string]any{
			"seller_id": sellerID,
			"method":    req.Method,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, method, "payout method linked")
	helpers.LogSuccess("LinkMethodHandler", "payout method linked", map[string]any{
		"seller_id":  sellerID,
		"method_id":  method.MethodID,
		"is_default": method.IsDefault,
	})
}

// ListMethodsHandler handles GET /sellers/:seller_id/payout-methods
func (h *PayoutHandler) ListMethodsHandler(c *gin.Context) {
	sellerID := c.Param("seller_id")
	methods, err := h.service.ListMethods(c.Request.Context(), sellerID)
	if err != nil {
		helpers.HandleServiceError(c, "ListMethodsHandler", err, map[string]any{"seller_id": sellerID})
		return
	}
	if methods == nil {
		methods = []model.PayoutMethod{}
	}
	utils.JSONResponse(c, http.StatusOK, methods, "payout methods retrieved successfully")
}

// SetDefaultHandler handles PUT /payout-methods/:method_id/default
func (h *PayoutHandler) SetDefaultHandler(c *gin.Context) {
	methodID := c.Param("method_id")
	method, err := h.service.SetDefault(c.Request.Context(), methodID)
	if err != nil {
		helpers.HandleServiceError(c, "SetDefaultHandler", err, map[string]any{"method_id": methodID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, method, "default payout method updated")
	helpers.LogSuccess("SetDefaultHandler", "default payout method updated", map[string]any{
		"method_id": methodID,
		"seller_id": method.SellerID,
	})
}

// DeleteMethodHandler handles DELETE /payout-methods/:method_id
func (h *PayoutHandler) DeleteMethodHandler(c *gin.Context) {
	methodID := c.Param("method_id")
	deleted, promoted, err := h.service.DeleteMethod(c.Request.Context(), methodID)
	if err != nil {
		helpers.HandleServiceError(c, "DeleteMethodHandler", err, map[string]any{"method_id": methodID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.DeleteMethodResponse{Deleted: deleted, Promoted: promoted}, "payout method deleted")
	fields := map[string]any{"method_id": methodID, "seller_id": deleted.SellerID}
	if promoted != nil {
		fields["promoted"] = promoted.MethodID
	}
	helpers.LogSuccess("DeleteMethodHandler", "payout method deleted", fields)
}
