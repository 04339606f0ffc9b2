package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/morganoide1/constructora-sub000/internal/ledger/domain"
	"github.com/morganoide1/constructora-sub000/internal/platform/database"
)

// balance updates retry a few times on optimistic-lock conflicts before
// giving up; each retry re-reads the account so the funds check is repeated
// against the fresh balance.
const maxBalanceRetries = 3

// LedgerService owns account balances and the append-only entry log.
// Balance mutation and entry append always commit together inside one unit
// of work; a partial write is not a possible state.
type LedgerService struct {
	tx       database.TxManager
	accounts domain.AccountRepository
	entries  domain.EntryRepository
	log      *zap.Logger
}

func NewLedgerService(tx database.TxManager, accounts domain.AccountRepository, entries domain.EntryRepository, log *zap.Logger) *LedgerService {
	return &LedgerService{
		tx:       tx,
		accounts: accounts,
		entries:  entries,
		log:      log,
	}
}

// CreateAccountInput carries the fields to open a new cash box.
type CreateAccountInput struct {
	Name        string
	Currency    domain.Currency
	Category    domain.AccountCategory
	Description string
}

func (s *LedgerService) CreateAccount(ctx context.Context, in CreateAccountInput) (*domain.Account, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !in.Currency.IsValid() {
		return nil, fmt.Errorf("%w: unknown currency %q", domain.ErrValidation, in.Currency)
	}
	if in.Category == "" {
		in.Category = domain.CategoryPrimary
	}
	if !in.Category.IsValid() {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, in.Category)
	}

	account := &domain.Account{
		Name:        in.Name,
		Currency:    in.Currency,
		Category:    in.Category,
		Balance:     decimal.Zero,
		Description: in.Description,
		Version:     1,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *LedgerService) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, id)
}

func (s *LedgerService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.accounts.List(ctx)
}

// ApplyEntryInput carries everything needed to post one entry.
type ApplyEntryInput struct {
	AccountID            int64
	Kind                 domain.EntryKind
	Amount               decimal.Decimal
	Concept              string
	SaleID               *int64
	CertificateID        *int64
	BuildingID           *int64
	CounterpartAccountID *int64
	CounterpartEntryID   *string
	ExchangeRate         *decimal.Decimal
	UserID               string
	Notes                string
	// EntryID lets the transfer engine pre-assign ids so the two legs can
	// reference each other. Left empty everywhere else.
	EntryID string
}

// ApplyEntry validates the input, checks funds for outflows, and commits the
// balance delta together with the new entry. A concurrent balance change is
// detected by the version check and retried with a fresh read, so two racing
// debits can never both pass the funds check against the same balance.
func (s *LedgerService) ApplyEntry(ctx context.Context, in ApplyEntryInput) (*domain.LedgerEntry, error) {
	if !in.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown entry kind %q", domain.ErrValidation, in.Kind)
	}
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Concept) == "" {
		return nil, fmt.Errorf("%w: concept is required", domain.ErrValidation)
	}

	var entry *domain.LedgerEntry
	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		account, err := s.accounts.FindByID(ctx, in.AccountID)
		if err != nil {
			return nil, err
		}
		if in.Kind.IsOutflow() && account.Balance.LessThan(in.Amount) {
			return nil, domain.ErrInsufficientFunds
		}

		id := in.EntryID
		if id == "" {
			id = uuid.New().String()
		}
		entry = &domain.LedgerEntry{
			ID:                   id,
			AccountID:            account.ID,
			Kind:                 in.Kind,
			Amount:               in.Amount,
			Concept:              in.Concept,
			SaleID:               in.SaleID,
			CertificateID:        in.CertificateID,
			BuildingID:           in.BuildingID,
			CounterpartAccountID: in.CounterpartAccountID,
			CounterpartEntryID:   in.CounterpartEntryID,
			ExchangeRate:         in.ExchangeRate,
			UserID:               in.UserID,
			Notes:                in.Notes,
			CreatedAt:            time.Now(),
		}

		// The balance delta goes first: a version conflict then leaves
		// nothing written, so the retry is safe even when this call has
		// joined an enclosing unit of work that will not roll back here.
		err = s.tx.Do(ctx, func(ctx context.Context) error {
			if err := s.accounts.ApplyBalanceDelta(ctx, account.ID, in.Kind.Signed(in.Amount), account.Version); err != nil {
				return err
			}
			return s.entries.Create(ctx, entry)
		})
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.log.Info("ledger entry applied",
			zap.String("entry_id", entry.ID),
			zap.Int64("account_id", account.ID),
			zap.String("kind", string(in.Kind)),
			zap.String("amount", in.Amount.String()),
		)
		return entry, nil
	}
	return nil, domain.ErrVersionConflict
}

// History returns the account's entries, most recent first.
func (s *LedgerService) History(ctx context.Context, accountID int64, filter domain.HistoryFilter) ([]domain.LedgerEntry, error) {
	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.entries.FindByAccount(ctx, accountID, filter)
}
