package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a named balance bucket in one currency (a cash box).
// The balance always equals the sum of the signed amounts of every ledger
// entry ever applied to it; the Version column backs the optimistic lock
// that keeps concurrent balance updates from racing.
type Account struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"type:varchar(100);not null"`
	Currency    Currency        `gorm:"type:char(3);not null"`
	Category    AccountCategory `gorm:"type:varchar(16);not null;default:'primary'"`
	Balance     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	Description string          `gorm:"type:text"`
	Version     int64           `gorm:"not null;default:1"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Account) TableName() string {
	return "accounts"
}

// LedgerEntry records a single balance-affecting event. Entries are
// write-once: corrections are new entries referencing the original, never
// edits or deletes.
type LedgerEntry struct {
	ID                   string           `gorm:"primaryKey;type:varchar(36)"`
	AccountID            int64            `gorm:"not null;index"`
	Kind                 EntryKind        `gorm:"type:varchar(16);not null"`
	Amount               decimal.Decimal  `gorm:"type:decimal(20,2);not null"` // always > 0, sign comes from Kind
	Concept              string           `gorm:"type:varchar(255);not null"`
	SaleID               *int64           `gorm:"index"`
	CertificateID        *int64           `gorm:"index"`
	BuildingID           *int64           `gorm:"index"`
	CounterpartAccountID *int64           // other leg of a transfer
	CounterpartEntryID   *string          `gorm:"type:varchar(36)"`
	ExchangeRate         *decimal.Decimal `gorm:"type:decimal(12,4)"`
	UserID               string           `gorm:"type:varchar(64)"`
	Notes                string           `gorm:"type:text"`
	CreatedAt            time.Time        `gorm:"not null;index"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
