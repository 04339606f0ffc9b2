package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/morganoide1/constructora-sub000/internal/certificates/adapter/repo"
	"github.com/morganoide1/constructora-sub000/internal/certificates/domain"
	ledgerrepo "github.com/morganoide1/constructora-sub000/internal/ledger/adapter/repo"
	ledgerdomain "github.com/morganoide1/constructora-sub000/internal/ledger/domain"
	ledgerservice "github.com/morganoide1/constructora-sub000/internal/ledger/service"
	"github.com/morganoide1/constructora-sub000/internal/platform/database"
)

func newTestServices(t *testing.T) (*CertificateService, *ledgerservice.LedgerService) {
	t.Helper()
	tx := database.NewMemoryTxManager()
	ledgerSvc := ledgerservice.NewLedgerService(tx, ledgerrepo.NewMemoryAccountRepo(), ledgerrepo.NewMemoryEntryRepo(), zap.NewNop())
	certSvc := NewCertificateService(tx, repo.NewMemoryCertificateRepo(), ledgerSvc, zap.NewNop())
	return certSvc, ledgerSvc
}

func newTestCertificate(t *testing.T, svc *CertificateService, currency ledgerdomain.Currency, total string) *domain.Certificate {
	t.Helper()
	cert, err := svc.Create(context.Background(), CreateInput{
		ProjectID:      1,
		ContractorName: "Constructora del Sur",
		Currency:       currency,
		Items: []ItemInput{
			{Description: "mamposteria", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString(total)},
		},
	})
	require.NoError(t, err)
	return cert
}

func fundedAccount(t *testing.T, ledgerSvc *ledgerservice.LedgerService, currency ledgerdomain.Currency, balance string) *ledgerdomain.Account {
	t.Helper()
	account, err := ledgerSvc.CreateAccount(context.Background(), ledgerservice.CreateAccountInput{
		Name:     "Caja " + string(currency),
		Currency: currency,
	})
	require.NoError(t, err)
	if balance != "0" {
		_, err = ledgerSvc.ApplyEntry(context.Background(), ledgerservice.ApplyEntryInput{
			AccountID: account.ID,
			Kind:      ledgerdomain.KindCredit,
			Amount:    decimal.RequireFromString(balance),
			Concept:   "opening balance",
		})
		require.NoError(t, err)
	}
	return account
}

func TestCreateComputesTotalAndSequentialNumbers(t *testing.T) {
	svc, _ := newTestServices(t)

	cert, err := svc.Create(context.Background(), CreateInput{
		ProjectID:      7,
		ContractorName: "Hormigones SA",
		Currency:       ledgerdomain.ARS,
		Items: []ItemInput{
			{Description: "encofrado", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("150.50")},
			{Description: "acero", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(200)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), cert.Number)
	assert.True(t, cert.Total.Equal(decimal.RequireFromString("2105")), "got %s", cert.Total)
	assert.Equal(t, domain.StatusPending, cert.Status)
	require.Len(t, cert.Items, 2)
	assert.True(t, cert.Items[0].Subtotal.Equal(decimal.RequireFromString("1505")))

	second := newTestCertificate(t, svc, ledgerdomain.ARS, "100")
	assert.Equal(t, int64(2), second.Number)
	third := newTestCertificate(t, svc, ledgerdomain.ARS, "100")
	assert.Equal(t, int64(3), third.Number)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestServices(t)

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"no items", CreateInput{ProjectID: 1, ContractorName: "X", Currency: ledgerdomain.ARS}},
		{"empty contractor", CreateInput{ProjectID: 1, ContractorName: " ", Currency: ledgerdomain.ARS, Items: []ItemInput{{Description: "a", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)}}}},
		{"zero quantity", CreateInput{ProjectID: 1, ContractorName: "X", Currency: ledgerdomain.ARS, Items: []ItemInput{{Description: "a", Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(1)}}}},
		{"unknown currency", CreateInput{ProjectID: 1, ContractorName: "X", Currency: "EUR", Items: []ItemInput{{Description: "a", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestApproveOnlyFromPending(t *testing.T) {
	svc, _ := newTestServices(t)
	cert := newTestCertificate(t, svc, ledgerdomain.ARS, "500")

	approved, err := svc.Approve(context.Background(), cert.ID, "admin-001")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, "admin-001", approved.ApprovedBy)

	_, err = svc.Approve(context.Background(), cert.ID, "admin-001")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRejectTransitions(t *testing.T) {
	svc, ledgerSvc := newTestServices(t)

	t.Run("from pending", func(t *testing.T) {
		cert := newTestCertificate(t, svc, ledgerdomain.ARS, "500")
		rejected, err := svc.Reject(context.Background(), cert.ID, "incomplete work")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRejected, rejected.Status)
		assert.Equal(t, "incomplete work", rejected.RejectionReason)
	})

	t.Run("from approved", func(t *testing.T) {
		cert := newTestCertificate(t, svc, ledgerdomain.ARS, "500")
		_, err := svc.Approve(context.Background(), cert.ID, "admin-001")
		require.NoError(t, err)
		_, err = svc.Reject(context.Background(), cert.ID, "audit finding")
		require.NoError(t, err)
	})

	t.Run("paid is immutable", func(t *testing.T) {
		cert := newTestCertificate(t, svc, ledgerdomain.ARS, "500")
		_, err := svc.Approve(context.Background(), cert.ID, "admin-001")
		require.NoError(t, err)
		account := fundedAccount(t, ledgerSvc, ledgerdomain.ARS, "1000")
		_, err = svc.Pay(context.Background(), cert.ID, account.ID, "admin-001")
		require.NoError(t, err)

		_, err = svc.Reject(context.Background(), cert.ID, "too late")
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestPayDebitsAccountAndLinksEntry(t *testing.T) {
	svc, ledgerSvc := newTestServices(t)
	cert := newTestCertificate(t, svc, ledgerdomain.USD, "500")
	_, err := svc.Approve(context.Background(), cert.ID, "admin-001")
	require.NoError(t, err)

	account := fundedAccount(t, ledgerSvc, ledgerdomain.USD, "800")

	paid, err := svc.Pay(context.Background(), cert.ID, account.ID, "admin-001")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	require.NotNil(t, paid.LedgerEntryID)

	account, err = ledgerSvc.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(300)))

	entries, err := ledgerSvc.History(context.Background(), account.ID, ledgerdomain.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ledgerdomain.KindDebit, entries[0].Kind)
	require.NotNil(t, entries[0].CertificateID)
	assert.Equal(t, cert.ID, *entries[0].CertificateID)
	assert.Equal(t, *paid.LedgerEntryID, entries[0].ID)

	// paid is terminal
	_, err = svc.Pay(context.Background(), cert.ID, account.ID, "admin-001")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPayRequiresApproval(t *testing.T) {
	svc, ledgerSvc := newTestServices(t)
	cert := newTestCertificate(t, svc, ledgerdomain.USD, "500")
	account := fundedAccount(t, ledgerSvc, ledgerdomain.USD, "1000")

	_, err := svc.Pay(context.Background(), cert.ID, account.ID, "admin-001")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPayCurrencyMismatch(t *testing.T) {
	svc, ledgerSvc := newTestServices(t)
	cert := newTestCertificate(t, svc, ledgerdomain.USD, "500")
	_, err := svc.Approve(context.Background(), cert.ID, "admin-001")
	require.NoError(t, err)

	account := fundedAccount(t, ledgerSvc, ledgerdomain.ARS, "1000000")
	_, err = svc.Pay(context.Background(), cert.ID, account.ID, "admin-001")
	require.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}

// flakyCertificateRepo fails the next Update when armed, simulating a storage
// error after the ledger debit has been applied.
type flakyCertificateRepo struct {
	domain.CertificateRepository
	failNextUpdate bool
}

func (r *flakyCertificateRepo) Update(ctx context.Context, cert *domain.Certificate) error {
	if r.failNextUpdate {
		r.failNextUpdate = false
		return errors.New("storage unavailable")
	}
	return r.CertificateRepository.Update(ctx, cert)
}

func TestPayRollsBackDebitWhenUpdateFails(t *testing.T) {
	tx := database.NewMemoryTxManager()
	ledgerSvc := ledgerservice.NewLedgerService(tx, ledgerrepo.NewMemoryAccountRepo(), ledgerrepo.NewMemoryEntryRepo(), zap.NewNop())
	certs := &flakyCertificateRepo{CertificateRepository: repo.NewMemoryCertificateRepo()}
	svc := NewCertificateService(tx, certs, ledgerSvc, zap.NewNop())

	cert := newTestCertificate(t, svc, ledgerdomain.USD, "500")
	_, err := svc.Approve(context.Background(), cert.ID, "admin-001")
	require.NoError(t, err)
	account := fundedAccount(t, ledgerSvc, ledgerdomain.USD, "800")

	certs.failNextUpdate = true
	_, err = svc.Pay(context.Background(), cert.ID, account.ID, "admin-001")
	require.Error(t, err)

	// the debit applied before the failing update was unwound
	account, err = ledgerSvc.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(800)), "got %s", account.Balance)

	entries, err := ledgerSvc.History(context.Background(), account.ID, ledgerdomain.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	cert, err = svc.Get(context.Background(), cert.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, cert.Status)
	assert.Nil(t, cert.LedgerEntryID)
}

func TestPayInsufficientFundsLeavesCertificateApproved(t *testing.T) {
	svc, ledgerSvc := newTestServices(t)
	cert := newTestCertificate(t, svc, ledgerdomain.USD, "500")
	_, err := svc.Approve(context.Background(), cert.ID, "admin-001")
	require.NoError(t, err)

	account := fundedAccount(t, ledgerSvc, ledgerdomain.USD, "300")

	_, err = svc.Pay(context.Background(), cert.ID, account.ID, "admin-001")
	require.ErrorIs(t, err, ledgerdomain.ErrInsufficientFunds)

	// certificate still approved, balance untouched
	cert, err = svc.Get(context.Background(), cert.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, cert.Status)
	assert.Nil(t, cert.PaidAt)
	assert.Nil(t, cert.LedgerEntryID)

	account, err = ledgerSvc.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(300)))
}
