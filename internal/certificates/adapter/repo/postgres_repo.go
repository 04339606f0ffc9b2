package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/morganoide1/constructora-sub000/internal/certificates/domain"
	"github.com/morganoide1/constructora-sub000/internal/platform/database"
)

type PostgresCertificateRepo struct {
	db *gorm.DB
}

func NewCertificateRepo(db *gorm.DB) *PostgresCertificateRepo {
	return &PostgresCertificateRepo{db: db}
}

func (r *PostgresCertificateRepo) Create(ctx context.Context, cert *domain.Certificate) error {
	db := database.FromContext(ctx, r.db)
	err := db.WithContext(ctx).Create(cert).Error
	// the unique index on number turns a lost allocation race into a
	// retryable error instead of a silent collision
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateNumber
	}
	return err
}

func (r *PostgresCertificateRepo) FindByID(ctx context.Context, id int64) (*domain.Certificate, error) {
	db := database.FromContext(ctx, r.db)
	var cert domain.Certificate
	if err := db.WithContext(ctx).Preload("Items").First(&cert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &cert, nil
}

func (r *PostgresCertificateRepo) MaxNumber(ctx context.Context) (int64, error) {
	db := database.FromContext(ctx, r.db)
	var max int64
	err := db.WithContext(ctx).Model(&domain.Certificate{}).
		Select("COALESCE(MAX(number), 0)").Scan(&max).Error
	return max, err
}

func (r *PostgresCertificateRepo) Update(ctx context.Context, cert *domain.Certificate) error {
	db := database.FromContext(ctx, r.db)
	return db.WithContext(ctx).Save(cert).Error
}

var _ domain.CertificateRepository = (*PostgresCertificateRepo)(nil)
