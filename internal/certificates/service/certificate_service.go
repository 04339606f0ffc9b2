package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/morganoide1/constructora-sub000/internal/certificates/domain"
	ledgerdomain "github.com/morganoide1/constructora-sub000/internal/ledger/domain"
	ledgerservice "github.com/morganoide1/constructora-sub000/internal/ledger/service"
	"github.com/morganoide1/constructora-sub000/internal/platform/database"
)

// number allocation retries a handful of times when a concurrent insert
// takes the same sequence value; the unique index arbitrates.
const maxNumberRetries = 5

// CertificateService runs the contractor invoice workflow: creation with
// sequential numbering, approval, rejection, and payment through the ledger.
type CertificateService struct {
	tx     database.TxManager
	certs  domain.CertificateRepository
	ledger *ledgerservice.LedgerService
	log    *zap.Logger
}

func NewCertificateService(tx database.TxManager, certs domain.CertificateRepository, ledger *ledgerservice.LedgerService, log *zap.Logger) *CertificateService {
	return &CertificateService{
		tx:     tx,
		certs:  certs,
		ledger: ledger,
		log:    log,
	}
}

// ItemInput is one line of the claim.
type ItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// CreateInput carries a new certificate. The total is computed from the
// items, never taken from the caller.
type CreateInput struct {
	ProjectID       int64
	ContractorName  string
	ContractorTaxID string
	Currency        ledgerdomain.Currency
	Items           []ItemInput
}

// Create validates the line items and inserts the certificate with the next
// sequential number. Allocation is max+1 guarded by the unique index on
// number: a concurrent insert taking the same value fails the index and the
// loop retries with a fresh max, so numbers never collide or skip silently.
func (s *CertificateService) Create(ctx context.Context, in CreateInput) (*domain.Certificate, error) {
	if strings.TrimSpace(in.ContractorName) == "" {
		return nil, fmt.Errorf("%w: contractor name is required", domain.ErrValidation)
	}
	if !in.Currency.IsValid() {
		return nil, fmt.Errorf("%w: unknown currency %q", domain.ErrValidation, in.Currency)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", domain.ErrValidation)
	}

	total := decimal.Zero
	items := make([]domain.CertificateItem, 0, len(in.Items))
	for i, item := range in.Items {
		if strings.TrimSpace(item.Description) == "" {
			return nil, fmt.Errorf("%w: item %d description is required", domain.ErrValidation, i+1)
		}
		if item.Quantity.LessThanOrEqual(decimal.Zero) || item.UnitPrice.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: item %d quantity and unit price must be positive", domain.ErrValidation, i+1)
		}
		subtotal := item.Quantity.Mul(item.UnitPrice).Round(2)
		total = total.Add(subtotal)
		items = append(items, domain.CertificateItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    subtotal,
		})
	}

	var cert *domain.Certificate
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		max, err := s.certs.MaxNumber(ctx)
		if err != nil {
			return nil, err
		}
		cert = &domain.Certificate{
			Number:          max + 1,
			ProjectID:       in.ProjectID,
			ContractorName:  in.ContractorName,
			ContractorTaxID: in.ContractorTaxID,
			Total:           total,
			Currency:        in.Currency,
			Status:          domain.StatusPending,
			Items:           items,
		}
		err = s.certs.Create(ctx, cert)
		if errors.Is(err, domain.ErrDuplicateNumber) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.log.Info("certificate created",
			zap.Int64("certificate_id", cert.ID),
			zap.Int64("number", cert.Number),
			zap.String("total", cert.Total.String()),
		)
		return cert, nil
	}
	return nil, domain.ErrDuplicateNumber
}

func (s *CertificateService) Get(ctx context.Context, id int64) (*domain.Certificate, error) {
	return s.certs.FindByID(ctx, id)
}

// Approve moves pending -> approved.
func (s *CertificateService) Approve(ctx context.Context, id int64, actor string) (*domain.Certificate, error) {
	cert, err := s.certs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cert.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: cannot approve a %s certificate", domain.ErrInvalidTransition, cert.Status)
	}

	now := time.Now()
	cert.Status = domain.StatusApproved
	cert.ApprovedAt = &now
	cert.ApprovedBy = actor
	if err := s.certs.Update(ctx, cert); err != nil {
		return nil, err
	}
	s.log.Info("certificate approved", zap.Int64("certificate_id", cert.ID), zap.String("actor", actor))
	return cert, nil
}

// Reject moves pending or approved -> rejected. A paid certificate is
// immutable.
func (s *CertificateService) Reject(ctx context.Context, id int64, reason string) (*domain.Certificate, error) {
	cert, err := s.certs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cert.Status != domain.StatusPending && cert.Status != domain.StatusApproved {
		return nil, fmt.Errorf("%w: cannot reject a %s certificate", domain.ErrInvalidTransition, cert.Status)
	}

	cert.Status = domain.StatusRejected
	cert.RejectionReason = reason
	if err := s.certs.Update(ctx, cert); err != nil {
		return nil, err
	}
	s.log.Info("certificate rejected", zap.Int64("certificate_id", cert.ID), zap.String("reason", reason))
	return cert, nil
}

// Pay settles an approved certificate from the given account. The ledger
// debit, the entry link, and the paid transition commit in one unit of work;
// an insufficient balance leaves the certificate approved and the account
// untouched. paid is terminal.
func (s *CertificateService) Pay(ctx context.Context, id int64, accountID int64, actor string) (*domain.Certificate, error) {
	cert, err := s.certs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cert.Status != domain.StatusApproved {
		return nil, fmt.Errorf("%w: cannot pay a %s certificate", domain.ErrInvalidTransition, cert.Status)
	}

	account, err := s.ledger.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Currency != cert.Currency {
		return nil, domain.ErrCurrencyMismatch
	}

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		entry, err := s.ledger.ApplyEntry(ctx, ledgerservice.ApplyEntryInput{
			AccountID:     account.ID,
			Kind:          ledgerdomain.KindDebit,
			Amount:        cert.Total,
			Concept:       fmt.Sprintf("certificate #%d %s", cert.Number, cert.ContractorName),
			CertificateID: &cert.ID,
			UserID:        actor,
		})
		if err != nil {
			return err
		}

		now := time.Now()
		cert.Status = domain.StatusPaid
		cert.PaidAt = &now
		cert.LedgerEntryID = &entry.ID
		return s.certs.Update(ctx, cert)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("certificate paid",
		zap.Int64("certificate_id", cert.ID),
		zap.Int64("account_id", accountID),
		zap.String("total", cert.Total.String()),
	)
	return cert, nil
}
