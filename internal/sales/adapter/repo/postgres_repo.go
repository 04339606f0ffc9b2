package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/morganoide1/constructora-sub000/internal/platform/database"
	"github.com/morganoide1/constructora-sub000/internal/sales/domain"
)

type PostgresSaleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) *PostgresSaleRepo {
	return &PostgresSaleRepo{db: db}
}

func (r *PostgresSaleRepo) Create(ctx context.Context, sale *domain.Sale) error {
	db := database.FromContext(ctx, r.db)
	// gorm cascades the installment inserts with the sale.
	return db.WithContext(ctx).Create(sale).Error
}

func (r *PostgresSaleRepo) FindByID(ctx context.Context, id int64) (*domain.Sale, error) {
	db := database.FromContext(ctx, r.db)
	var sale domain.Sale
	err := db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("number")
		}).
		First(&sale, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

func (r *PostgresSaleRepo) Save(ctx context.Context, sale *domain.Sale) error {
	db := database.FromContext(ctx, r.db)
	return db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(sale).Error
}

var _ domain.SaleRepository = (*PostgresSaleRepo)(nil)
