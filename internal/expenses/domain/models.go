package domain

import (
	"time"

	"github.com/shopspring/decimal"

	ledger "github.com/morganoide1/constructora-sub000/internal/ledger/domain"
)

// Building groups the properties that share common expenses.
type Building struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"type:varchar(100);not null"`
	Address   string `gorm:"type:varchar(255)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Building) TableName() string {
	return "buildings"
}

// Property is one unit in a building. Coefficient is the percentage (0-100)
// of building costs attributable to the unit; the set for a building is
// expected, not enforced, to sum to 100.
type Property struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	BuildingID  int64           `gorm:"not null;index"`
	Label       string          `gorm:"type:varchar(64);not null"`
	Coefficient decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Property) TableName() string {
	return "properties"
}

// LiquidationStatus: a draft can be edited and re-saved; a settled
// liquidation is immutable.
type LiquidationStatus string

const (
	LiquidationDraft   LiquidationStatus = "draft"
	LiquidationSettled LiquidationStatus = "settled"
)

// BuildingLiquidation is the set of shared costs for one building in one
// period, before distribution. Unique per (building, month, year).
type BuildingLiquidation struct {
	ID         int64             `gorm:"primaryKey;autoIncrement"`
	BuildingID int64             `gorm:"not null;uniqueIndex:idx_liquidation_period"`
	Month      int               `gorm:"not null;uniqueIndex:idx_liquidation_period"`
	Year       int               `gorm:"not null;uniqueIndex:idx_liquidation_period"`
	Currency   ledger.Currency   `gorm:"type:char(3);not null"`
	DueDate    *time.Time        ``
	Status     LiquidationStatus `gorm:"type:varchar(16);not null;default:'draft'"`
	Notes      string            `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Items []ExpenseItem `gorm:"foreignKey:LiquidationID"`
}

func (BuildingLiquidation) TableName() string {
	return "building_liquidations"
}

// Total sums the item amounts.
func (l *BuildingLiquidation) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range l.Items {
		total = total.Add(item.Amount)
	}
	return total
}

// ExpenseItem is one shared cost line. Recurring items are carried forward
// into the next period's suggested draft.
type ExpenseItem struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	LiquidationID int64           `gorm:"not null;index"`
	Position      int             `gorm:"not null"`
	Description   string          `gorm:"type:varchar(255);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Recurring     bool            `gorm:"not null;default:false"`
}

func (ExpenseItem) TableName() string {
	return "expense_items"
}

// ChargeStatus tracks whether the unit's share has been collected.
type ChargeStatus string

const (
	ChargePending ChargeStatus = "pending"
	ChargePaid    ChargeStatus = "paid"
)

// UnitCharge (expensa) is one property's share of a settled liquidation.
// Unique per (property, month, year); settlement skips existing charges
// rather than overwriting them.
type UnitCharge struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)"`
	PropertyID    int64           `gorm:"not null;uniqueIndex:idx_charge_period"`
	Month         int             `gorm:"not null;uniqueIndex:idx_charge_period"`
	Year          int             `gorm:"not null;uniqueIndex:idx_charge_period"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Currency      ledger.Currency `gorm:"type:char(3);not null"`
	Status        ChargeStatus    `gorm:"type:varchar(16);not null;default:'pending'"`
	PaidAt        *time.Time      ``
	Notes         string          `gorm:"type:text"`
	AttachmentRef string          `gorm:"type:varchar(255)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (UnitCharge) TableName() string {
	return "unit_charges"
}
