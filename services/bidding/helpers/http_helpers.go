package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-engine/internal/biddingerrors"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// HandleServiceError maps err, writes the error envelope and logs it. Server
// side failures are logged as errors, client mistakes as warnings.
func HandleServiceError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	logFields := map[string]any{"handler": handlerName, "status": status, "error": err.Error()}
	for k, v := range fields {
		logFields[k] = v
	}
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", logFields)
		return
	}
	utils.Warn(handlerName+": request rejected", logFields)
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	// bid rejections first: they are the hot path
	case errors.Is(err, biddingerrors.ErrBidRejected):
		return http.StatusConflict, "bid rejected"

	case errors.Is(err, biddingerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, biddingerrors.ErrItemNotFound):
		return http.StatusNotFound, "item not found"
	case errors.Is(err, biddingerrors.ErrSellerNotFound):
		return http.StatusNotFound, "seller not found"
	case errors.Is(err, biddingerrors.ErrPayoutMethodNotFound):
		return http.StatusNotFound, "payout method not found"
	case errors.Is(err, biddingerrors.ErrNoBids):
		return http.StatusNotFound, "no accepted bids for auction"
	case errors.Is(err, biddingerrors.ErrNotFound):
		return http.StatusNotFound, "resource not found"

	case errors.Is(err, biddingerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, biddingerrors.ErrInvalidAuction):
		return http.StatusBadRequest, "invalid auction details"
	case errors.Is(err, biddingerrors.ErrItemNotOwned):
		return http.StatusBadRequest, "item does not belong to seller"
	case errors.Is(err, biddingerrors.ErrInvalidPayoutMethod):
		return http.StatusBadRequest, "invalid payout method"
	case errors.Is(err, biddingerrors.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid amount"
	case errors.Is(err, biddingerrors.ErrValidation):
		return http.StatusBadRequest, "invalid request"

	case errors.Is(err, biddingerrors.ErrItemHasOpenAuction):
		return http.StatusConflict, "item already has an open auction"
	case errors.Is(err, biddingerrors.ErrNotEnded):
		return http.StatusConflict, "auction has not ended"
	case errors.Is(err, biddingerrors.ErrState):
		return http.StatusConflict, "invalid state transition"

	case errors.Is(err, biddingerrors.ErrStaleVersion):
		return http.StatusConflict, "version conflict, reload and retry"
	case errors.Is(err, biddingerrors.ErrConcurrency):
		return http.StatusConflict, "concurrent modification"

	case errors.Is(err, biddingerrors.ErrAlreadySettled):
		return http.StatusConflict, "auction already settled"
	case errors.Is(err, biddingerrors.ErrSettlement):
		return http.StatusConflict, "settlement error"

	case errors.Is(err, biddingerrors.ErrBelowMinimum):
		return http.StatusUnprocessableEntity, "available balance below minimum payout"
	case errors.Is(err, biddingerrors.ErrNoPaymentMethod):
		return http.StatusUnprocessableEntity, "no default payout method"
	case errors.Is(err, biddingerrors.ErrInsufficientPending):
		return http.StatusUnprocessableEntity, "insufficient pending balance"
	case errors.Is(err, biddingerrors.ErrDisbursementFailed):
		return http.StatusBadGateway, "disbursement failed"
	case errors.Is(err, biddingerrors.ErrPayout):
		return http.StatusUnprocessableEntity, "payout error"

	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
