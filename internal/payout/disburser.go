package payout

//go:generate mockgen -source=disburser.go -destination=mock_disburser.go -package=payout

import (
	"context"

	model "auction-engine/internal/models"
	"auction-engine/utils"

	"github.com/shopspring/decimal"
)

// Disbursement is one transfer request to the payment gateway. PayoutID is
// unique per withdrawal and is the key gateways deduplicate on.
type Disbursement struct {
	PayoutID  string
	SellerID  string
	Amount    decimal.Decimal
	NetAmount decimal.Decimal
	Method    model.PayoutMethod
}

// Disburser sends money to a seller's payout method. It is called
// synchronously and returns the gateway reference of the transfer.
type Disburser interface {
	Disburse(ctx context.Context, d Disbursement) (string, error)
}

// LogDisburser logs the transfer and reports it as sent
type LogDisburser struct{}

// Disburse logs d and returns a fresh reference
func (LogDisburser) Disburse(_ context.Context, d Disbursement) (string, error) {
	ref := "DSB-" + utils.GenerateID()
	utils.Info("disbursement sent", map[string]any{
		"payout_id":  d.PayoutID,
		"seller_id":  d.SellerID,
		"net_amount": d.NetAmount.String(),
		"method":     string(d.Method.Method),
		"reference":  ref,
	})
	return ref, nil
}
