package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/morganoide1/constructora-sub000/internal/expenses/adapter/repo"
	"github.com/morganoide1/constructora-sub000/internal/expenses/domain"
	ledgerrepo "github.com/morganoide1/constructora-sub000/internal/ledger/adapter/repo"
	ledgerdomain "github.com/morganoide1/constructora-sub000/internal/ledger/domain"
	ledgerservice "github.com/morganoide1/constructora-sub000/internal/ledger/service"
	"github.com/morganoide1/constructora-sub000/internal/platform/database"
)

type testEngine struct {
	svc        *LiquidationService
	properties *repo.MemoryPropertyRepo
	charges    *repo.MemoryChargeRepo
	ledger     *ledgerservice.LedgerService
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()
	tx := database.NewMemoryTxManager()
	properties := repo.NewMemoryPropertyRepo()
	charges := repo.NewMemoryChargeRepo(properties)
	ledgerSvc := ledgerservice.NewLedgerService(tx, ledgerrepo.NewMemoryAccountRepo(), ledgerrepo.NewMemoryEntryRepo(), zap.NewNop())
	svc := NewLiquidationService(tx, repo.NewMemoryLiquidationRepo(), properties, charges, ledgerSvc, zap.NewNop())
	return &testEngine{svc: svc, properties: properties, charges: charges, ledger: ledgerSvc}
}

func (e *testEngine) addProperty(t *testing.T, buildingID int64, label, coefficient string) *domain.Property {
	t.Helper()
	property := &domain.Property{
		BuildingID:  buildingID,
		Label:       label,
		Coefficient: decimal.RequireFromString(coefficient),
	}
	require.NoError(t, e.properties.Create(context.Background(), property))
	return property
}

func (e *testEngine) saveDraft(t *testing.T, buildingID int64, month, year int, amounts ...string) *domain.BuildingLiquidation {
	t.Helper()
	items := make([]ItemInput, 0, len(amounts))
	for _, amount := range amounts {
		items = append(items, ItemInput{Description: "shared cost", Amount: decimal.RequireFromString(amount)})
	}
	liq, err := e.svc.SaveDraft(context.Background(), SaveDraftInput{
		BuildingID: buildingID,
		Month:      month,
		Year:       year,
		Items:      items,
		Currency:   ledgerdomain.ARS,
	})
	require.NoError(t, err)
	return liq
}

func TestSettleDistributesByCoefficient(t *testing.T) {
	e := newTestEngine(t)
	unitA := e.addProperty(t, 1, "1A", "60")
	unitB := e.addProperty(t, 1, "1B", "40")
	liq := e.saveDraft(t, 1, 3, 2025, "70000", "30000")

	result, err := e.svc.Settle(context.Background(), liq.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.GeneratedCount)
	assert.Equal(t, 0, result.SkippedCount)
	assert.True(t, result.TotalAmount.Equal(decimal.NewFromInt(100000)))
	assert.True(t, result.CoefficientSum.Equal(decimal.NewFromInt(100)))

	charges, err := e.svc.ListCharges(context.Background(), 1, 3, 2025)
	require.NoError(t, err)
	require.Len(t, charges, 2)

	byProperty := map[int64]domain.UnitCharge{}
	for _, charge := range charges {
		byProperty[charge.PropertyID] = charge
	}
	assert.True(t, byProperty[unitA.ID].Amount.Equal(decimal.NewFromInt(60000)), "got %s", byProperty[unitA.ID].Amount)
	assert.True(t, byProperty[unitB.ID].Amount.Equal(decimal.NewFromInt(40000)), "got %s", byProperty[unitB.ID].Amount)
	assert.Equal(t, domain.ChargePending, byProperty[unitA.ID].Status)

	// settled liquidations cannot be settled again or edited
	_, err = e.svc.Settle(context.Background(), liq.ID)
	require.ErrorIs(t, err, domain.ErrAlreadySettled)

	_, err = e.svc.SaveDraft(context.Background(), SaveDraftInput{
		BuildingID: 1, Month: 3, Year: 2025,
		Items:    []ItemInput{{Description: "late edit", Amount: decimal.NewFromInt(1)}},
		Currency: ledgerdomain.ARS,
	})
	require.ErrorIs(t, err, domain.ErrAlreadySettled)
}

func TestSettleSkipsExistingCharges(t *testing.T) {
	e := newTestEngine(t)
	unitA := e.addProperty(t, 1, "1A", "50")
	unitB := e.addProperty(t, 1, "1B", "50")
	liq := e.saveDraft(t, 1, 4, 2025, "1000")

	// a charge already present for the period, as after a partial failure
	require.NoError(t, e.charges.Create(context.Background(), &domain.UnitCharge{
		ID:         uuid.New().String(),
		PropertyID: unitA.ID,
		Month:      4,
		Year:       2025,
		Amount:     decimal.NewFromInt(500),
		Currency:   ledgerdomain.ARS,
		Status:     domain.ChargePending,
	}))

	result, err := e.svc.Settle(context.Background(), liq.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.GeneratedCount)
	assert.Equal(t, 1, result.SkippedCount)

	charges, err := e.svc.ListCharges(context.Background(), 1, 4, 2025)
	require.NoError(t, err)
	require.Len(t, charges, 2)
	for _, charge := range charges {
		assert.Contains(t, []int64{unitA.ID, unitB.ID}, charge.PropertyID)
	}
}

func TestSettleRequiresCoefficientsAndItems(t *testing.T) {
	e := newTestEngine(t)

	t.Run("no positive coefficients", func(t *testing.T) {
		e.addProperty(t, 2, "2A", "0")
		liq := e.saveDraft(t, 2, 5, 2025, "1000")
		_, err := e.svc.Settle(context.Background(), liq.ID)
		require.ErrorIs(t, err, domain.ErrNoCoefficients)
	})

	t.Run("no items", func(t *testing.T) {
		e.addProperty(t, 3, "3A", "100")
		liq := e.saveDraft(t, 3, 5, 2025)
		_, err := e.svc.Settle(context.Background(), liq.ID)
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestSettleRoundingStaysWithinOneCentPerUnit(t *testing.T) {
	e := newTestEngine(t)
	e.addProperty(t, 1, "1A", "33.33")
	e.addProperty(t, 1, "1B", "33.33")
	e.addProperty(t, 1, "1C", "33.34")
	liq := e.saveDraft(t, 1, 6, 2025, "100")

	result, err := e.svc.Settle(context.Background(), liq.ID)
	require.NoError(t, err)
	require.Equal(t, 3, result.GeneratedCount)

	charges, err := e.svc.ListCharges(context.Background(), 1, 6, 2025)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, charge := range charges {
		sum = sum.Add(charge.Amount)
	}
	drift := sum.Sub(result.TotalAmount).Abs()
	bound := decimal.RequireFromString("0.01").Mul(decimal.NewFromInt(int64(len(charges))))
	assert.True(t, drift.LessThanOrEqual(bound), "drift %s exceeds %s", drift, bound)
}

func TestGetOrSuggestCarriesRecurringItemsForward(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.svc.SaveDraft(context.Background(), SaveDraftInput{
		BuildingID: 1, Month: 1, Year: 2025,
		Items: []ItemInput{
			{Description: "cleaning", Amount: decimal.NewFromInt(20000), Recurring: true},
			{Description: "elevator repair", Amount: decimal.NewFromInt(80000)},
		},
		Currency: ledgerdomain.ARS,
	})
	require.NoError(t, err)

	draft, err := e.svc.GetOrSuggest(context.Background(), 1, 2, 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(0), draft.ID)
	assert.Equal(t, domain.LiquidationDraft, draft.Status)
	require.Len(t, draft.Items, 1)
	assert.Equal(t, "cleaning", draft.Items[0].Description)
	assert.True(t, draft.Items[0].Amount.Equal(decimal.NewFromInt(20000)))
	assert.True(t, draft.Items[0].Recurring)
}

func TestGetOrSuggestReturnsStoredLiquidation(t *testing.T) {
	e := newTestEngine(t)
	saved := e.saveDraft(t, 1, 7, 2025, "5000")

	got, err := e.svc.GetOrSuggest(context.Background(), 1, 7, 2025)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	require.Len(t, got.Items, 1)
}

func TestSaveDraftValidation(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name  string
		input SaveDraftInput
	}{
		{"bad month", SaveDraftInput{BuildingID: 1, Month: 13, Year: 2025, Currency: ledgerdomain.ARS}},
		{"bad currency", SaveDraftInput{BuildingID: 1, Month: 1, Year: 2025, Currency: "EUR"}},
		{"empty description", SaveDraftInput{BuildingID: 1, Month: 1, Year: 2025, Currency: ledgerdomain.ARS,
			Items: []ItemInput{{Description: " ", Amount: decimal.NewFromInt(1)}}}},
		{"non-positive amount", SaveDraftInput{BuildingID: 1, Month: 1, Year: 2025, Currency: ledgerdomain.ARS,
			Items: []ItemInput{{Description: "x", Amount: decimal.Zero}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.SaveDraft(context.Background(), tt.input)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestSaveDraftReplacesItems(t *testing.T) {
	e := newTestEngine(t)
	e.saveDraft(t, 1, 8, 2025, "100", "200")

	liq := e.saveDraft(t, 1, 8, 2025, "999")
	require.Len(t, liq.Items, 1)
	assert.True(t, liq.Total().Equal(decimal.NewFromInt(999)))

	stored, err := e.svc.GetOrSuggest(context.Background(), 1, 8, 2025)
	require.NoError(t, err)
	assert.Equal(t, liq.ID, stored.ID)
	require.Len(t, stored.Items, 1)
}

func TestSetCoefficientBounds(t *testing.T) {
	e := newTestEngine(t)
	unit := e.addProperty(t, 1, "1A", "0")

	require.ErrorIs(t, e.svc.SetCoefficient(context.Background(), unit.ID, decimal.NewFromInt(-1)), domain.ErrValidation)
	require.ErrorIs(t, e.svc.SetCoefficient(context.Background(), unit.ID, decimal.RequireFromString("100.01")), domain.ErrValidation)

	require.NoError(t, e.svc.SetCoefficient(context.Background(), unit.ID, decimal.RequireFromString("42.5")))
	stored, err := e.properties.FindByID(context.Background(), unit.ID)
	require.NoError(t, err)
	assert.True(t, stored.Coefficient.Equal(decimal.RequireFromString("42.5")))
}

func TestPayChargeBooksLedgerCredit(t *testing.T) {
	e := newTestEngine(t)
	unit := e.addProperty(t, 1, "PB A", "100")
	liq := e.saveDraft(t, 1, 9, 2025, "45000")
	_, err := e.svc.Settle(context.Background(), liq.ID)
	require.NoError(t, err)

	charges, err := e.svc.ListCharges(context.Background(), 1, 9, 2025)
	require.NoError(t, err)
	require.Len(t, charges, 1)

	account, err := e.ledger.CreateAccount(context.Background(), ledgerservice.CreateAccountInput{
		Name:     "Caja expensas",
		Currency: ledgerdomain.ARS,
	})
	require.NoError(t, err)

	paid, err := e.svc.PayCharge(context.Background(), PayChargeInput{
		ChargeID:  charges[0].ID,
		AccountID: &account.ID,
		UserID:    "admin-001",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ChargePaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	account, err = e.ledger.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(45000)))

	entries, err := e.ledger.History(context.Background(), account.ID, ledgerdomain.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ledgerdomain.KindCredit, entries[0].Kind)
	require.NotNil(t, entries[0].BuildingID)
	assert.Equal(t, unit.BuildingID, *entries[0].BuildingID)

	// a paid charge cannot be paid again
	_, err = e.svc.PayCharge(context.Background(), PayChargeInput{ChargeID: charges[0].ID})
	require.ErrorIs(t, err, domain.ErrChargeAlreadyPaid)
}

func TestPayChargeWithoutAccountSkipsLedger(t *testing.T) {
	e := newTestEngine(t)
	e.addProperty(t, 1, "1A", "100")
	liq := e.saveDraft(t, 1, 10, 2025, "12000")
	_, err := e.svc.Settle(context.Background(), liq.ID)
	require.NoError(t, err)

	charges, err := e.svc.ListCharges(context.Background(), 1, 10, 2025)
	require.NoError(t, err)
	require.Len(t, charges, 1)

	paid, err := e.svc.PayCharge(context.Background(), PayChargeInput{
		ChargeID: charges[0].ID,
		Notes:    "paid in cash at the office",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ChargePaid, paid.Status)
	assert.Equal(t, "paid in cash at the office", paid.Notes)
}
