package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// LiquidationRepository is the port for building liquidations.
type LiquidationRepository interface {
	Create(ctx context.Context, liq *BuildingLiquidation) error
	FindByID(ctx context.Context, id int64) (*BuildingLiquidation, error)
	// FindByPeriod returns ErrNotFound when no record exists for the key.
	FindByPeriod(ctx context.Context, buildingID int64, month, year int) (*BuildingLiquidation, error)
	// FindLatestBefore returns the most recent liquidation for the building
	// strictly before the given period, or ErrNotFound.
	FindLatestBefore(ctx context.Context, buildingID int64, month, year int) (*BuildingLiquidation, error)
	// Save persists the liquidation and replaces its items.
	Save(ctx context.Context, liq *BuildingLiquidation) error
}

// PropertyRepository is the port for buildings' units and their
// coefficients.
type PropertyRepository interface {
	Create(ctx context.Context, property *Property) error
	FindByID(ctx context.Context, id int64) (*Property, error)
	FindByBuilding(ctx context.Context, buildingID int64) ([]Property, error)
	UpdateCoefficient(ctx context.Context, id int64, coefficient decimal.Decimal) error
}

// ChargeRepository is the port for unit charges.
type ChargeRepository interface {
	Create(ctx context.Context, charge *UnitCharge) error
	FindByID(ctx context.Context, id string) (*UnitCharge, error)
	ExistsForPeriod(ctx context.Context, propertyID int64, month, year int) (bool, error)
	ListByBuildingPeriod(ctx context.Context, buildingID int64, month, year int) ([]UnitCharge, error)
	Update(ctx context.Context, charge *UnitCharge) error
}
