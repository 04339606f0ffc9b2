package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/morganoide1/constructora-sub000/internal/ledger/domain"
)

// TransferInput describes a funds movement between two accounts. For
// cross-currency moves Rate is mandatory and is quoted as ARS per USD (see
// domain.Convert for the direction convention).
type TransferInput struct {
	FromAccountID int64
	ToAccountID   int64
	Amount        decimal.Decimal
	Rate          *decimal.Decimal
	Concept       string
	UserID        string
	Notes         string
}

// TransferResult holds the two legs of a completed transfer.
type TransferResult struct {
	Debited  *domain.LedgerEntry
	Credited *domain.LedgerEntry
}

// Transfer debits the source and credits the destination in one atomic unit
// of work. A failure after the debit rolls the debit back; a half-applied
// transfer is never observable.
func (s *LedgerService) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if in.FromAccountID == in.ToAccountID {
		return nil, domain.ErrInvalidTransfer
	}
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}

	from, err := s.accounts.FindByID(ctx, in.FromAccountID)
	if err != nil {
		return nil, err
	}
	to, err := s.accounts.FindByID(ctx, in.ToAccountID)
	if err != nil {
		return nil, err
	}

	destAmount := in.Amount
	var rate *decimal.Decimal
	if from.Currency != to.Currency {
		if in.Rate == nil || in.Rate.LessThanOrEqual(decimal.Zero) {
			return nil, domain.ErrMissingExchangeRate
		}
		rate = in.Rate
		destAmount = domain.Convert(in.Amount, from.Currency, to.Currency, *in.Rate)
	}

	outID := uuid.New().String()
	inID := uuid.New().String()

	var result TransferResult
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		debited, err := s.ApplyEntry(ctx, ApplyEntryInput{
			AccountID:            from.ID,
			Kind:                 domain.KindTransferOut,
			Amount:               in.Amount,
			Concept:              in.Concept,
			CounterpartAccountID: &to.ID,
			CounterpartEntryID:   &inID,
			ExchangeRate:         rate,
			UserID:               in.UserID,
			Notes:                in.Notes,
			EntryID:              outID,
		})
		if err != nil {
			return err
		}

		credited, err := s.ApplyEntry(ctx, ApplyEntryInput{
			AccountID:            to.ID,
			Kind:                 domain.KindTransferIn,
			Amount:               destAmount,
			Concept:              in.Concept,
			CounterpartAccountID: &from.ID,
			CounterpartEntryID:   &outID,
			ExchangeRate:         rate,
			UserID:               in.UserID,
			Notes:                in.Notes,
			EntryID:              inID,
		})
		if err != nil {
			return err
		}

		result.Debited = debited
		result.Credited = credited
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transfer completed",
		zap.Int64("from_account", from.ID),
		zap.Int64("to_account", to.ID),
		zap.String("amount", in.Amount.String()),
		zap.String("credited_amount", destAmount.String()),
	)
	return &result, nil
}
