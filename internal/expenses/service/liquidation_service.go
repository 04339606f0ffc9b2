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

	"github.com/morganoide1/constructora-sub000/internal/expenses/domain"
	ledgerdomain "github.com/morganoide1/constructora-sub000/internal/ledger/domain"
	ledgerservice "github.com/morganoide1/constructora-sub000/internal/ledger/service"
	"github.com/morganoide1/constructora-sub000/internal/platform/database"
)

// LiquidationService aggregates a building's shared expenses for a period
// and fans them out into per-unit charges using ownership coefficients.
type LiquidationService struct {
	tx           database.TxManager
	liquidations domain.LiquidationRepository
	properties   domain.PropertyRepository
	charges      domain.ChargeRepository
	ledger       *ledgerservice.LedgerService
	log          *zap.Logger
}

func NewLiquidationService(
	tx database.TxManager,
	liquidations domain.LiquidationRepository,
	properties domain.PropertyRepository,
	charges domain.ChargeRepository,
	ledger *ledgerservice.LedgerService,
	log *zap.Logger,
) *LiquidationService {
	return &LiquidationService{
		tx:           tx,
		liquidations: liquidations,
		properties:   properties,
		charges:      charges,
		ledger:       ledger,
		log:          log,
	}
}

func validPeriod(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month must be 1-12", domain.ErrValidation)
	}
	if year < 2000 || year > 2200 {
		return fmt.Errorf("%w: year out of range", domain.ErrValidation)
	}
	return nil
}

// GetOrSuggest returns the stored liquidation for the period, or an unsaved
// draft pre-populated with the prior period's recurring items carried
// forward.
func (s *LiquidationService) GetOrSuggest(ctx context.Context, buildingID int64, month, year int) (*domain.BuildingLiquidation, error) {
	if err := validPeriod(month, year); err != nil {
		return nil, err
	}

	liq, err := s.liquidations.FindByPeriod(ctx, buildingID, month, year)
	if err == nil {
		return liq, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	draft := &domain.BuildingLiquidation{
		BuildingID: buildingID,
		Month:      month,
		Year:       year,
		Currency:   ledgerdomain.ARS,
		Status:     domain.LiquidationDraft,
	}

	prior, err := s.liquidations.FindLatestBefore(ctx, buildingID, month, year)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return draft, nil
		}
		return nil, err
	}

	draft.Currency = prior.Currency
	position := 1
	for _, item := range prior.Items {
		if !item.Recurring {
			continue
		}
		draft.Items = append(draft.Items, domain.ExpenseItem{
			Position:    position,
			Description: item.Description,
			Amount:      item.Amount,
			Recurring:   true,
		})
		position++
	}
	return draft, nil
}

// ItemInput is one shared cost line of a draft.
type ItemInput struct {
	Description string
	Amount      decimal.Decimal
	Recurring   bool
}

// SaveDraftInput upserts the liquidation for (building, period).
type SaveDraftInput struct {
	BuildingID int64
	Month      int
	Year       int
	Items      []ItemInput
	Currency   ledgerdomain.Currency
	DueDate    *time.Time
	Notes      string
}

// SaveDraft creates or replaces the draft for the period. A settled
// liquidation is immutable and rejects the save.
func (s *LiquidationService) SaveDraft(ctx context.Context, in SaveDraftInput) (*domain.BuildingLiquidation, error) {
	if err := validPeriod(in.Month, in.Year); err != nil {
		return nil, err
	}
	if !in.Currency.IsValid() {
		return nil, fmt.Errorf("%w: unknown currency %q", domain.ErrValidation, in.Currency)
	}

	items := make([]domain.ExpenseItem, 0, len(in.Items))
	for i, item := range in.Items {
		if strings.TrimSpace(item.Description) == "" {
			return nil, fmt.Errorf("%w: item %d description is required", domain.ErrValidation, i+1)
		}
		if item.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: item %d amount must be positive", domain.ErrValidation, i+1)
		}
		items = append(items, domain.ExpenseItem{
			Position:    i + 1,
			Description: item.Description,
			Amount:      item.Amount,
			Recurring:   item.Recurring,
		})
	}

	liq, err := s.liquidations.FindByPeriod(ctx, in.BuildingID, in.Month, in.Year)
	switch {
	case err == nil:
		if liq.Status == domain.LiquidationSettled {
			return nil, domain.ErrAlreadySettled
		}
	case errors.Is(err, domain.ErrNotFound):
		liq = &domain.BuildingLiquidation{
			BuildingID: in.BuildingID,
			Month:      in.Month,
			Year:       in.Year,
			Status:     domain.LiquidationDraft,
		}
	default:
		return nil, err
	}

	liq.Items = items
	liq.Currency = in.Currency
	liq.DueDate = in.DueDate
	liq.Notes = in.Notes
	if err := s.liquidations.Save(ctx, liq); err != nil {
		return nil, err
	}
	return liq, nil
}

// SettleResult summarizes a settlement. CoefficientSum is surfaced so the
// operator can see drift from 100; it is not enforced.
type SettleResult struct {
	GeneratedCount int             `json:"generated_count"`
	SkippedCount   int             `json:"skipped_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	CoefficientSum decimal.Decimal `json:"coefficient_sum"`
}

// Settle distributes the liquidation total across the building's properties:
// unit amount = round(total x coefficient / 100). One charge per
// (property, period); properties that already have one are skipped, which
// makes re-running settle after a partial failure idempotent. Charge
// generation and the settled flag commit in one unit of work.
func (s *LiquidationService) Settle(ctx context.Context, liquidationID int64) (*SettleResult, error) {
	liq, err := s.liquidations.FindByID(ctx, liquidationID)
	if err != nil {
		return nil, err
	}
	if liq.Status == domain.LiquidationSettled {
		return nil, domain.ErrAlreadySettled
	}
	if len(liq.Items) == 0 {
		return nil, fmt.Errorf("%w: liquidation has no expense items", domain.ErrValidation)
	}

	properties, err := s.properties.FindByBuilding(ctx, liq.BuildingID)
	if err != nil {
		return nil, err
	}

	var withShare []domain.Property
	coefficientSum := decimal.Zero
	for _, property := range properties {
		if property.Coefficient.GreaterThan(decimal.Zero) {
			withShare = append(withShare, property)
			coefficientSum = coefficientSum.Add(property.Coefficient)
		}
	}
	if len(withShare) == 0 {
		return nil, domain.ErrNoCoefficients
	}

	total := liq.Total()
	hundred := decimal.NewFromInt(100)
	result := &SettleResult{TotalAmount: total, CoefficientSum: coefficientSum}

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		for _, property := range withShare {
			exists, err := s.charges.ExistsForPeriod(ctx, property.ID, liq.Month, liq.Year)
			if err != nil {
				return err
			}
			if exists {
				result.SkippedCount++
				continue
			}

			charge := &domain.UnitCharge{
				ID:         uuid.New().String(),
				PropertyID: property.ID,
				Month:      liq.Month,
				Year:       liq.Year,
				Amount:     total.Mul(property.Coefficient).Div(hundred).Round(2),
				Currency:   liq.Currency,
				Status:     domain.ChargePending,
				CreatedAt:  time.Now(),
			}
			if err := s.charges.Create(ctx, charge); err != nil {
				return err
			}
			result.GeneratedCount++
		}

		liq.Status = domain.LiquidationSettled
		return s.liquidations.Save(ctx, liq)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("liquidation settled",
		zap.Int64("liquidation_id", liq.ID),
		zap.Int64("building_id", liq.BuildingID),
		zap.Int("generated", result.GeneratedCount),
		zap.Int("skipped", result.SkippedCount),
		zap.String("total", total.String()),
		zap.String("coefficient_sum", coefficientSum.String()),
	)
	return result, nil
}

// SetCoefficient assigns the percentage of building costs attributable to a
// property.
func (s *LiquidationService) SetCoefficient(ctx context.Context, propertyID int64, value decimal.Decimal) error {
	if value.IsNegative() || value.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: coefficient must be between 0 and 100", domain.ErrValidation)
	}
	return s.properties.UpdateCoefficient(ctx, propertyID, value)
}

// ListCharges returns the charges generated for a building and period.
func (s *LiquidationService) ListCharges(ctx context.Context, buildingID int64, month, year int) ([]domain.UnitCharge, error) {
	if err := validPeriod(month, year); err != nil {
		return nil, err
	}
	return s.charges.ListByBuildingPeriod(ctx, buildingID, month, year)
}

// PayChargeInput marks a charge as collected; a non-nil AccountID books the
// amount as a credit into that cash account.
type PayChargeInput struct {
	ChargeID  string
	AccountID *int64
	UserID    string
	Notes     string
}

// PayCharge transitions a pending charge to paid, optionally booking the
// credit through the ledger in the same unit of work.
func (s *LiquidationService) PayCharge(ctx context.Context, in PayChargeInput) (*domain.UnitCharge, error) {
	charge, err := s.charges.FindByID(ctx, in.ChargeID)
	if err != nil {
		return nil, err
	}
	if charge.Status == domain.ChargePaid {
		return nil, domain.ErrChargeAlreadyPaid
	}

	property, err := s.properties.FindByID(ctx, charge.PropertyID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	charge.Status = domain.ChargePaid
	charge.PaidAt = &now
	if in.Notes != "" {
		charge.Notes = in.Notes
	}

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.charges.Update(ctx, charge); err != nil {
			return err
		}
		if in.AccountID != nil {
			_, err := s.ledger.ApplyEntry(ctx, ledgerservice.ApplyEntryInput{
				AccountID:  *in.AccountID,
				Kind:       ledgerdomain.KindCredit,
				Amount:     charge.Amount,
				Concept:    fmt.Sprintf("unit charge %s %02d/%d", property.Label, charge.Month, charge.Year),
				BuildingID: &property.BuildingID,
				UserID:     in.UserID,
				Notes:      in.Notes,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return charge, nil
}
