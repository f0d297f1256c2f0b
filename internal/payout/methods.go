package payout

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"auction-engine/utils"
)

var (
	phMobile      = regexp.MustCompile(`^(09\d{9}|\+639\d{9})$`)
	accountNumber = regexp.MustCompile(`^\d{6,20}$`)
)

// LinkMethodParams describe a payout method to link
type LinkMethodParams struct {
	SellerID      string
	Method        model.PayoutMethodType
	AccountName   string
	MobileNumber  string
	BankName      string
	AccountNumber string
	MakeDefault   bool
}

func (p *LinkMethodParams) normalize() {
	p.SellerID = strings.TrimSpace(p.SellerID)
	p.AccountName = strings.TrimSpace(p.AccountName)
	p.MobileNumber = strings.ReplaceAll(strings.TrimSpace(p.MobileNumber), " ", "")
	p.BankName = strings.TrimSpace(p.BankName)
	p.AccountNumber = strings.ReplaceAll(strings.TrimSpace(p.AccountNumber), " ", "")
}

func (p LinkMethodParams) validate() error {
	if p.SellerID == "" {
		return fmt.Errorf("payout: %w - missing seller id", biddingerrors.ErrInvalidPayoutMethod)
	}
	if !p.Method.Valid() {
		return fmt.Errorf("payout: %w - unknown method %q", biddingerrors.ErrInvalidPayoutMethod, p.Method)
	}
	if p.AccountName == "" {
		return fmt.Errorf("payout: %w - account name is required", biddingerrors.ErrInvalidPayoutMethod)
	}

	switch p.Method {
	case model.MethodGCash, model.MethodMaya:
		if !phMobile.MatchString(p.MobileNumber) {
			return fmt.Errorf("payout: %w - %s needs a mobile number like 09XXXXXXXXX", biddingerrors.ErrInvalidPayoutMethod, p.Method)
		}
	case model.MethodBank:
		if p.BankName == "" {
			return fmt.Errorf("payout: %w - bank name is required", biddingerrors.ErrInvalidPayoutMethod)
		}
		if !accountNumber.MatchString(p.AccountNumber) {
			return fmt.Errorf("payout: %w - account number must be 6 to 20 digits", biddingerrors.ErrInvalidPayoutMethod)
		}
	}
	return nil
}

// LinkPayoutMethod validates and stores a payout method. The seller's first
// method becomes the default, as does any method linked with MakeDefault.
func (l *Ledger) LinkPayoutMethod(ctx context.Context, p LinkMethodParams) (model.PayoutMethod, error) {
	p.normalize()
	if err := p.validate(); err != nil {
		return model.PayoutMethod{}, err
	}
	if l.sellers != nil {
		ok, err := l.sellers.SellerExists(ctx, p.SellerID)
		if err != nil {
			return model.PayoutMethod{}, fmt.Errorf("payout: failed to check seller %s: %w", p.SellerID, err)
		}
		if !ok {
			return model.PayoutMethod{}, fmt.Errorf("payout: seller %s: %w", p.SellerID, biddingerrors.ErrSellerNotFound)
		}
	}

	unlock := l.locks.Lock(p.SellerID)
	defer unlock()

	existing, err := l.store.ListPayoutMethods(ctx, p.SellerID)
	if err != nil {
		return model.PayoutMethod{}, fmt.Errorf("payout: failed to list methods of seller %s: %w", p.SellerID, err)
	}

	method := model.PayoutMethod{
		MethodID:    utils.GenerateID(),
		SellerID:    p.SellerID,
		Method:      p.Method,
		AccountName: p.AccountName,
		IsDefault:   p.MakeDefault || len(existing) == 0,
		CreatedAt:   l.now(),
	}
	if p.Method == model.MethodBank {
		method.BankName = p.BankName
		method.AccountNumber = p.AccountNumber
	} else {
		method.MobileNumber = p.MobileNumber
	}

	if err := l.store.AddPayoutMethod(ctx, method); err != nil {
		return model.PayoutMethod{}, fmt.Errorf("payout: failed to link method for seller %s: %w", p.SellerID, err)
	}

	utils.Info("payout method linked", map[string]any{
		"seller_id":  method.SellerID,
		"method_id":  method.MethodID,
		"method":     string(method.Method),
		"is_default": method.IsDefault,
	})
	return method, nil
}

// SetDefault makes the method its seller's only default
func (l *Ledger) SetDefault(ctx context.Context, methodID string) (model.PayoutMethod, error) {
	m, err := l.store.GetPayoutMethod(ctx, methodID)
	if err != nil {
		return model.PayoutMethod{}, fmt.Errorf("payout: failed to get method %s: %w", methodID, err)
	}

	unlock := l.locks.Lock(m.SellerID)
	defer unlock()

	updated, err := l.store.SetDefaultPayoutMethod(ctx, methodID)
	if err != nil {
		return model.PayoutMethod{}, fmt.Errorf("payout: failed to set default method %s: %w", methodID, err)
	}
	return updated, nil
}

// DeleteMethod removes a method. Deleting the default promotes the seller's
// oldest remaining method, which is returned; with none left the seller has
// no default and cannot withdraw.
func (l *Ledger) DeleteMethod(ctx context.Context, methodID string) (model.PayoutMethod, *model.PayoutMethod, error) {
	m, err := l.store.GetPayoutMethod(ctx, methodID)
	if err != nil {
		return model.PayoutMethod{}, nil, fmt.Errorf("payout: failed to get method %s: %w", methodID, err)
	}

	unlock := l.locks.Lock(m.SellerID)
	defer unlock()

	deleted, promoted, err := l.store.DeletePayoutMethod(ctx, methodID)
	if err != nil {
		return model.PayoutMethod{}, nil, fmt.Errorf("payout: failed to delete method %s: %w", methodID, err)
	}

	fields := map[string]any{
		"seller_id": deleted.SellerID,
		"method_id": deleted.MethodID,
	}
	if promoted != nil {
		fields["promoted_method_id"] = promoted.MethodID
	}
	utils.Info("payout method deleted", fields)
	return deleted, promoted, nil
}

// ListMethods returns the seller's payout methods, oldest first
func (l *Ledger) ListMethods(ctx context.Context, sellerID string) ([]model.PayoutMethod, error) {
	methods, err := l.store.ListPayoutMethods(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("payout: failed to list methods of seller %s: %w", sellerID, err)
	}
	return methods, nil
}
