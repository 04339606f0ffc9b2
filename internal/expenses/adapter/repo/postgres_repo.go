package repo

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/morganoide1/constructora-sub000/internal/expenses/domain"
	"github.com/morganoide1/constructora-sub000/internal/platform/database"
)

type PostgresLiquidationRepo struct {
	db *gorm.DB
}

func NewLiquidationRepo(db *gorm.DB) *PostgresLiquidationRepo {
	return &PostgresLiquidationRepo{db: db}
}

func (r *PostgresLiquidationRepo) Create(ctx context.Context, liq *domain.BuildingLiquidation) error {
	db := database.FromContext(ctx, r.db)
	return db.WithContext(ctx).Create(liq).Error
}

func (r *PostgresLiquidationRepo) FindByID(ctx context.Context, id int64) (*domain.BuildingLiquidation, error) {
	db := database.FromContext(ctx, r.db)
	var liq domain.BuildingLiquidation
	err := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&liq, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &liq, nil
}

func (r *PostgresLiquidationRepo) FindByPeriod(ctx context.Context, buildingID int64, month, year int) (*domain.BuildingLiquidation, error) {
	db := database.FromContext(ctx, r.db)
	var liq domain.BuildingLiquidation
	err := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("building_id = ? AND month = ? AND year = ?", buildingID, month, year).
		First(&liq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &liq, nil
}

func (r *PostgresLiquidationRepo) FindLatestBefore(ctx context.Context, buildingID int64, month, year int) (*domain.BuildingLiquidation, error) {
	db := database.FromContext(ctx, r.db)
	var liq domain.BuildingLiquidation
	err := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("building_id = ? AND (year < ? OR (year = ? AND month < ?))", buildingID, year, year, month).
		Order("year DESC, month DESC").
		First(&liq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &liq, nil
}

func (r *PostgresLiquidationRepo) Save(ctx context.Context, liq *domain.BuildingLiquidation) error {
	db := database.FromContext(ctx, r.db)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// replace the item list wholesale; drafts are small
		if liq.ID != 0 {
			if err := tx.Where("liquidation_id = ?", liq.ID).Delete(&domain.ExpenseItem{}).Error; err != nil {
				return err
			}
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(liq).Error
	})
}

// ---------------------------------------------------------

type PostgresPropertyRepo struct {
	db *gorm.DB
}

func NewPropertyRepo(db *gorm.DB) *PostgresPropertyRepo {
	return &PostgresPropertyRepo{db: db}
}

func (r *PostgresPropertyRepo) Create(ctx context.Context, property *domain.Property) error {
	db := database.FromContext(ctx, r.db)
	return db.WithContext(ctx).Create(property).Error
}

func (r *PostgresPropertyRepo) FindByID(ctx context.Context, id int64) (*domain.Property, error) {
	db := database.FromContext(ctx, r.db)
	var property domain.Property
	if err := db.WithContext(ctx).First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &property, nil
}

func (r *PostgresPropertyRepo) FindByBuilding(ctx context.Context, buildingID int64) ([]domain.Property, error) {
	db := database.FromContext(ctx, r.db)
	var properties []domain.Property
	err := db.WithContext(ctx).
		Where("building_id = ?", buildingID).
		Order("label").
		Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *PostgresPropertyRepo) UpdateCoefficient(ctx context.Context, id int64, coefficient decimal.Decimal) error {
	db := database.FromContext(ctx, r.db)
	result := db.WithContext(ctx).Model(&domain.Property{}).
		Where("id = ?", id).
		Update("coefficient", coefficient)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------

type PostgresChargeRepo struct {
	db *gorm.DB
}

func NewChargeRepo(db *gorm.DB) *PostgresChargeRepo {
	return &PostgresChargeRepo{db: db}
}

func (r *PostgresChargeRepo) Create(ctx context.Context, charge *domain.UnitCharge) error {
	db := database.FromContext(ctx, r.db)
	return db.WithContext(ctx).Create(charge).Error
}

func (r *PostgresChargeRepo) FindByID(ctx context.Context, id string) (*domain.UnitCharge, error) {
	db := database.FromContext(ctx, r.db)
	var charge domain.UnitCharge
	if err := db.WithContext(ctx).Where("id = ?", id).First(&charge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &charge, nil
}

func (r *PostgresChargeRepo) ExistsForPeriod(ctx context.Context, propertyID int64, month, year int) (bool, error) {
	db := database.FromContext(ctx, r.db)
	var count int64
	err := db.WithContext(ctx).Model(&domain.UnitCharge{}).
		Where("property_id = ? AND month = ? AND year = ?", propertyID, month, year).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresChargeRepo) ListByBuildingPeriod(ctx context.Context, buildingID int64, month, year int) ([]domain.UnitCharge, error) {
	db := database.FromContext(ctx, r.db)
	var charges []domain.UnitCharge
	err := db.WithContext(ctx).
		Joins("JOIN properties ON properties.id = unit_charges.property_id").
		Where("properties.building_id = ? AND unit_charges.month = ? AND unit_charges.year = ?", buildingID, month, year).
		Find(&charges).Error
	if err != nil {
		return nil, err
	}
	return charges, nil
}

func (r *PostgresChargeRepo) Update(ctx context.Context, charge *domain.UnitCharge) error {
	db := database.FromContext(ctx, r.db)
	return db.WithContext(ctx).Save(charge).Error
}

var (
	_ domain.LiquidationRepository = (*PostgresLiquidationRepo)(nil)
	_ domain.PropertyRepository    = (*PostgresPropertyRepo)(nil)
	_ domain.ChargeRepository      = (*PostgresChargeRepo)(nil)
)
