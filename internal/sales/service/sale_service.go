package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	ledgerdomain "github.com/morganoide1/constructora-sub000/internal/ledger/domain"
	ledgerservice "github.com/morganoide1/constructora-sub000/internal/ledger/service"
	"github.com/morganoide1/constructora-sub000/internal/platform/database"
	"github.com/morganoide1/constructora-sub000/internal/sales/domain"
)

// SaleService finances property sales over time: it builds the installment
// schedule, applies payments against it, and optionally books payments into
// a cash account through the ledger.
type SaleService struct {
	tx     database.TxManager
	sales  domain.SaleRepository
	ledger *ledgerservice.LedgerService
	log    *zap.Logger
}

func NewSaleService(tx database.TxManager, sales domain.SaleRepository, ledger *ledgerservice.LedgerService, log *zap.Logger) *SaleService {
	return &SaleService{
		tx:     tx,
		sales:  sales,
		ledger: ledger,
		log:    log,
	}
}

// CreateSaleInput carries the terms of a new sale. An InstallmentCount of
// zero means the remainder is not financed in installments.
type CreateSaleInput struct {
	PropertyID       int64
	ClientID         int64
	Date             time.Time
	Price            decimal.Decimal
	Currency         ledgerdomain.Currency
	DownPayment      decimal.Decimal
	InstallmentCount int
}

// CreateSale validates the terms and, when financed, splits the remainder
// evenly across the installments with due dates one calendar month apart.
// Amounts are truncated to 2 decimals and the last installment absorbs the
// rounding remainder, so the schedule re-sums exactly to price minus down
// payment.
func (s *SaleService) CreateSale(ctx context.Context, in CreateSaleInput) (*domain.Sale, error) {
	if in.Price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	if !in.Currency.IsValid() {
		return nil, fmt.Errorf("%w: unknown currency %q", domain.ErrValidation, in.Currency)
	}
	if in.DownPayment.IsNegative() || in.DownPayment.GreaterThan(in.Price) {
		return nil, fmt.Errorf("%w: down payment must be between 0 and price", domain.ErrValidation)
	}
	if in.InstallmentCount < 0 {
		return nil, fmt.Errorf("%w: installment count must not be negative", domain.ErrValidation)
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	sale := &domain.Sale{
		PropertyID:  in.PropertyID,
		ClientID:    in.ClientID,
		Date:        in.Date,
		Price:       in.Price,
		Currency:    in.Currency,
		DownPayment: in.DownPayment,
		FreePaid:    decimal.Zero,
		Status:      domain.StatusReserved,
	}

	if in.InstallmentCount > 0 {
		financed := in.Price.Sub(in.DownPayment)
		n := int64(in.InstallmentCount)
		each := financed.Div(decimal.NewFromInt(n)).Truncate(2)
		last := financed.Sub(each.Mul(decimal.NewFromInt(n - 1)))

		for i := 0; i < in.InstallmentCount; i++ {
			amount := each
			if i == in.InstallmentCount-1 {
				amount = last
			}
			sale.Installments = append(sale.Installments, domain.Installment{
				Number:     i + 1,
				Amount:     amount,
				Currency:   in.Currency,
				DueDate:    in.Date.AddDate(0, i+1, 0),
				Status:     domain.InstallmentPending,
				AmountPaid: decimal.Zero,
			})
		}
	}

	sale.Recompute()
	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, err
	}

	s.log.Info("sale created",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("property_id", sale.PropertyID),
		zap.String("price", sale.Price.String()),
		zap.Int("installments", len(sale.Installments)),
	)
	return sale, nil
}

func (s *SaleService) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	return s.sales.FindByID(ctx, id)
}

// ApplyPaymentInput targets the down payment, a specific installment (by
// number), or, when neither is set, a free payment applied to the sale as a
// whole. A non-nil AccountID books the payment as a credit entry on that
// account.
type ApplyPaymentInput struct {
	SaleID            int64
	InstallmentNumber *int
	DownPayment       bool
	Amount            decimal.Decimal
	AccountID         *int64
	ReceiptNumber     string
	UserID            string
	Notes             string
}

// ApplyPayment registers a payment, recomputes the sale totals and, when an
// account was supplied, books the credit entry in the same unit of work.
func (s *SaleService) ApplyPayment(ctx context.Context, in ApplyPaymentInput) (*domain.Sale, error) {
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}

	sale, err := s.sales.FindByID(ctx, in.SaleID)
	if err != nil {
		return nil, err
	}

	switch {
	case in.DownPayment && in.InstallmentNumber != nil:
		return nil, fmt.Errorf("%w: target either the down payment or an installment, not both", domain.ErrValidation)
	case in.DownPayment:
		if sale.DownPaymentPaid {
			return nil, domain.ErrDownPaymentPaid
		}
		if !in.Amount.Equal(sale.DownPayment) {
			return nil, fmt.Errorf("%w: down payment amount is %s", domain.ErrValidation, sale.DownPayment)
		}
		sale.DownPaymentPaid = true
	case in.InstallmentNumber != nil:
		var target *domain.Installment
		for i := range sale.Installments {
			if sale.Installments[i].Number == *in.InstallmentNumber {
				target = &sale.Installments[i]
				break
			}
		}
		if target == nil || target.Status == domain.InstallmentPaid {
			return nil, domain.ErrInvalidInstallment
		}

		target.AmountPaid = target.AmountPaid.Add(in.Amount)
		if in.ReceiptNumber != "" {
			target.ReceiptNumber = in.ReceiptNumber
		}
		if in.Notes != "" {
			target.Notes = in.Notes
		}
		if target.AmountPaid.GreaterThanOrEqual(target.Amount) {
			now := time.Now()
			target.Status = domain.InstallmentPaid
			target.PaidDate = &now
		} else {
			target.Status = domain.InstallmentPartial
		}
	default:
		sale.FreePaid = sale.FreePaid.Add(in.Amount)
	}

	sale.Recompute()

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.sales.Save(ctx, sale); err != nil {
			return err
		}
		if in.AccountID != nil {
			concept := fmt.Sprintf("sale %d payment", sale.ID)
			switch {
			case in.DownPayment:
				concept = fmt.Sprintf("sale %d down payment", sale.ID)
			case in.InstallmentNumber != nil:
				concept = fmt.Sprintf("sale %d installment %d payment", sale.ID, *in.InstallmentNumber)
			}
			_, err := s.ledger.ApplyEntry(ctx, ledgerservice.ApplyEntryInput{
				AccountID: *in.AccountID,
				Kind:      ledgerdomain.KindCredit,
				Amount:    in.Amount,
				Concept:   concept,
				SaleID:    &sale.ID,
				UserID:    in.UserID,
				Notes:     in.Notes,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment applied",
		zap.Int64("sale_id", sale.ID),
		zap.String("amount", in.Amount.String()),
		zap.String("outstanding", sale.OutstandingBalance.String()),
	)
	return sale, nil
}

// UpdateSaleInput edits the sale terms; nil fields are left untouched.
type UpdateSaleInput struct {
	SaleID      int64
	Price       *decimal.Decimal
	DownPayment *decimal.Decimal
}

// UpdateSale edits price and down payment. Allowed only before deed; the
// installment schedule is not resized, but the new price may not drop below
// the amount already paid.
func (s *SaleService) UpdateSale(ctx context.Context, in UpdateSaleInput) (*domain.Sale, error) {
	sale, err := s.sales.FindByID(ctx, in.SaleID)
	if err != nil {
		return nil, err
	}
	if sale.Status == domain.StatusDeed || sale.Status == domain.StatusCancelled {
		return nil, domain.ErrInvalidTransition
	}

	if in.Price != nil {
		if in.Price.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: price must be positive", domain.ErrValidation)
		}
		if in.Price.LessThan(sale.TotalPaid) {
			return nil, fmt.Errorf("%w: price below amount already paid", domain.ErrValidation)
		}
		sale.Price = *in.Price
	}
	if in.DownPayment != nil {
		if in.DownPayment.IsNegative() || in.DownPayment.GreaterThan(sale.Price) {
			return nil, fmt.Errorf("%w: down payment must be between 0 and price", domain.ErrValidation)
		}
		sale.DownPayment = *in.DownPayment
	}

	sale.Recompute()
	if err := s.sales.Save(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// saleTransitions are the administrative moves staff can make. Payment
// completeness never changes the status by itself.
var saleTransitions = map[domain.SaleStatus][]domain.SaleStatus{
	domain.StatusReserved: {domain.StatusContract, domain.StatusCancelled},
	domain.StatusContract: {domain.StatusDeed, domain.StatusCancelled},
}

// ChangeStatus moves the sale along reserved -> contract -> deed, or to
// cancelled at any point before deed.
func (s *SaleService) ChangeStatus(ctx context.Context, saleID int64, to domain.SaleStatus) (*domain.Sale, error) {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range saleTransitions[sale.Status] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, sale.Status, to)
	}

	sale.Status = to
	if err := s.sales.Save(ctx, sale); err != nil {
		return nil, err
	}
	s.log.Info("sale status changed", zap.Int64("sale_id", sale.ID), zap.String("status", string(to)))
	return sale, nil
}

// MarkOverdue flags pending installments whose due date has passed. Invoked
// explicitly by staff; there is no background scheduler.
func (s *SaleService) MarkOverdue(ctx context.Context, saleID int64, asOf time.Time) (*domain.Sale, error) {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	changed := false
	for i := range sale.Installments {
		inst := &sale.Installments[i]
		if inst.Status == domain.InstallmentPending && inst.DueDate.Before(asOf) {
			inst.Status = domain.InstallmentOverdue
			changed = true
		}
	}
	if changed {
		if err := s.sales.Save(ctx, sale); err != nil {
			return nil, err
		}
	}
	return sale, nil
}
