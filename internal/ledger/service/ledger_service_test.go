package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/morganoide1/constructora-sub000/internal/ledger/adapter/repo"
	"github.com/morganoide1/constructora-sub000/internal/ledger/domain"
	"github.com/morganoide1/constructora-sub000/internal/platform/database"
)

func newTestService(t *testing.T) (*LedgerService, *repo.MemoryEntryRepo) {
	t.Helper()
	entries := repo.NewMemoryEntryRepo()
	svc := NewLedgerService(database.NewMemoryTxManager(), repo.NewMemoryAccountRepo(), entries, zap.NewNop())
	return svc, entries
}

func newTestAccount(t *testing.T, svc *LedgerService, name string, currency domain.Currency, opening string) *domain.Account {
	t.Helper()
	account, err := svc.CreateAccount(context.Background(), CreateAccountInput{
		Name:     name,
		Currency: currency,
	})
	require.NoError(t, err)

	if opening != "0" {
		_, err = svc.ApplyEntry(context.Background(), ApplyEntryInput{
			AccountID: account.ID,
			Kind:      domain.KindCredit,
			Amount:    decimal.RequireFromString(opening),
			Concept:   "opening balance",
		})
		require.NoError(t, err)
	}

	account, err = svc.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	return account
}

// requireBalanceMatchesEntries asserts the ledger invariant: the balance
// equals the sum of the signed amounts of every entry on the account.
func requireBalanceMatchesEntries(t *testing.T, svc *LedgerService, accountID int64) {
	t.Helper()
	account, err := svc.GetAccount(context.Background(), accountID)
	require.NoError(t, err)

	entries, err := svc.History(context.Background(), accountID, domain.HistoryFilter{})
	require.NoError(t, err)

	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Kind.Signed(e.Amount))
	}
	assert.True(t, account.Balance.Equal(sum),
		"balance %s != entry sum %s", account.Balance, sum)
}

func TestCreateAccountValidation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name  string
		input CreateAccountInput
	}{
		{"empty name", CreateAccountInput{Name: " ", Currency: domain.USD}},
		{"unknown currency", CreateAccountInput{Name: "Caja", Currency: "EUR"}},
		{"unknown category", CreateAccountInput{Name: "Caja", Currency: domain.ARS, Category: "weird"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAccount(context.Background(), tt.input)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestApplyEntryCreditAndDebit(t *testing.T) {
	svc, _ := newTestService(t)
	account := newTestAccount(t, svc, "Caja USD", domain.USD, "1000")

	entry, err := svc.ApplyEntry(context.Background(), ApplyEntryInput{
		AccountID: account.ID,
		Kind:      domain.KindDebit,
		Amount:    decimal.RequireFromString("250.50"),
		Concept:   "materials purchase",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)

	account, err = svc.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("749.50")))

	requireBalanceMatchesEntries(t, svc, account.ID)
}

func TestApplyEntryInsufficientFunds(t *testing.T) {
	svc, _ := newTestService(t)
	account := newTestAccount(t, svc, "Caja USD", domain.USD, "100")

	_, err := svc.ApplyEntry(context.Background(), ApplyEntryInput{
		AccountID: account.ID,
		Kind:      domain.KindDebit,
		Amount:    decimal.RequireFromString("100.01"),
		Concept:   "too much",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// balance untouched after the failed debit
	account, err = svc.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(100)))
	requireBalanceMatchesEntries(t, svc, account.ID)
}

func TestApplyEntryValidation(t *testing.T) {
	svc, _ := newTestService(t)
	account := newTestAccount(t, svc, "Caja", domain.ARS, "0")

	tests := []struct {
		name  string
		input ApplyEntryInput
	}{
		{"zero amount", ApplyEntryInput{AccountID: account.ID, Kind: domain.KindCredit, Amount: decimal.Zero, Concept: "x"}},
		{"negative amount", ApplyEntryInput{AccountID: account.ID, Kind: domain.KindCredit, Amount: decimal.NewFromInt(-5), Concept: "x"}},
		{"unknown kind", ApplyEntryInput{AccountID: account.ID, Kind: "withdrawal", Amount: decimal.NewFromInt(5), Concept: "x"}},
		{"empty concept", ApplyEntryInput{AccountID: account.ID, Kind: domain.KindCredit, Amount: decimal.NewFromInt(5), Concept: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ApplyEntry(context.Background(), tt.input)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestApplyEntryUnknownAccount(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ApplyEntry(context.Background(), ApplyEntryInput{
		AccountID: 999,
		Kind:      domain.KindCredit,
		Amount:    decimal.NewFromInt(10),
		Concept:   "ghost",
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryOrderAndLimit(t *testing.T) {
	svc, _ := newTestService(t)
	account := newTestAccount(t, svc, "Caja", domain.ARS, "0")

	for i := 1; i <= 5; i++ {
		_, err := svc.ApplyEntry(context.Background(), ApplyEntryInput{
			AccountID: account.ID,
			Kind:      domain.KindCredit,
			Amount:    decimal.NewFromInt(int64(i)),
			Concept:   "deposit",
		})
		require.NoError(t, err)
		time.Sleep(time.Millisecond) // distinct timestamps
	}

	entries, err := svc.History(context.Background(), account.ID, domain.HistoryFilter{Limit: 3})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// most recent first
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(5)))
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].CreatedAt.After(entries[i-1].CreatedAt))
	}
}

func TestBalanceInvariantAfterMixedOperations(t *testing.T) {
	svc, _ := newTestService(t)
	a := newTestAccount(t, svc, "A", domain.USD, "500")
	b := newTestAccount(t, svc, "B", domain.USD, "500")

	_, err := svc.ApplyEntry(context.Background(), ApplyEntryInput{
		AccountID: a.ID, Kind: domain.KindDebit,
		Amount: decimal.NewFromInt(120), Concept: "expense",
	})
	require.NoError(t, err)

	_, err = svc.Transfer(context.Background(), TransferInput{
		FromAccountID: a.ID, ToAccountID: b.ID,
		Amount: decimal.NewFromInt(200), Concept: "move",
	})
	require.NoError(t, err)

	_, err = svc.ApplyEntry(context.Background(), ApplyEntryInput{
		AccountID: b.ID, Kind: domain.KindCredit,
		Amount: decimal.NewFromInt(75), Concept: "income",
	})
	require.NoError(t, err)

	requireBalanceMatchesEntries(t, svc, a.ID)
	requireBalanceMatchesEntries(t, svc, b.ID)
}
