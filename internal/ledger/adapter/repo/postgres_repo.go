package repo

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/morganoide1/constructora-sub000/internal/ledger/domain"
	"github.com/morganoide1/constructora-sub000/internal/platform/database"
)

type PostgresAccountRepo struct {
	db *gorm.DB
}

func NewAccountRepo(db *gorm.DB) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

func (r *PostgresAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	db := database.FromContext(ctx, r.db)
	return db.WithContext(ctx).Create(account).Error
}

func (r *PostgresAccountRepo) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	db := database.FromContext(ctx, r.db)
	var account domain.Account
	if err := db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *PostgresAccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	db := database.FromContext(ctx, r.db)
	var accounts []domain.Account
	if err := db.WithContext(ctx).Order("name").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// ApplyBalanceDelta performs the optimistic-lock balance update:
// UPDATE accounts SET balance = balance + ?, version = version + 1
// WHERE id = ? AND version = ?. Zero rows affected means the version moved
// under us and the caller must re-read and retry.
func (r *PostgresAccountRepo) ApplyBalanceDelta(ctx context.Context, id int64, delta decimal.Decimal, version int64) error {
	db := database.FromContext(ctx, r.db)
	result := db.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"balance": gorm.Expr("balance + ?", delta),
			"version": gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}

// ---------------------------------------------------------

type PostgresEntryRepo struct {
	db *gorm.DB
}

func NewEntryRepo(db *gorm.DB) *PostgresEntryRepo {
	return &PostgresEntryRepo{db: db}
}

func (r *PostgresEntryRepo) Create(ctx context.Context, entry *domain.LedgerEntry) error {
	db := database.FromContext(ctx, r.db)
	return db.WithContext(ctx).Create(entry).Error
}

func (r *PostgresEntryRepo) FindByAccount(ctx context.Context, accountID int64, filter domain.HistoryFilter) ([]domain.LedgerEntry, error) {
	db := database.FromContext(ctx, r.db)
	q := db.WithContext(ctx).Where("account_id = ?", accountID)
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var entries []domain.LedgerEntry
	if err := q.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

var (
	_ domain.AccountRepository = (*PostgresAccountRepo)(nil)
	_ domain.EntryRepository   = (*PostgresEntryRepo)(nil)
)
