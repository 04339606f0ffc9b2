package domain

import (
	"time"

	"github.com/shopspring/decimal"

	ledger "github.com/morganoide1/constructora-sub000/internal/ledger/domain"
)

// SaleStatus follows the administrative lifecycle of a property sale.
// Transitions are driven by staff, not derived from payment completeness.
type SaleStatus string

const (
	StatusReserved  SaleStatus = "reserved"
	StatusContract  SaleStatus = "contract"
	StatusDeed      SaleStatus = "deed"
	StatusCancelled SaleStatus = "cancelled"
)

// Sale is a financed property sale. TotalPaid and OutstandingBalance are
// derived and recomputed on every mutation: outstanding = price - total paid,
// total paid = paid down payment + installment payments + free payments.
type Sale struct {
	ID              int64           `gorm:"primaryKey;autoIncrement"`
	PropertyID      int64           `gorm:"not null;index"`
	ClientID        int64           `gorm:"not null;index"`
	Date            time.Time       `gorm:"not null"`
	Price           decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Currency        ledger.Currency `gorm:"type:char(3);not null"`
	DownPayment     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	DownPaymentPaid bool            `gorm:"not null;default:false"`
	// FreePaid accumulates payments not tied to any installment.
	FreePaid           decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	TotalPaid          decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	OutstandingBalance decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	Status             SaleStatus      `gorm:"type:varchar(16);not null;default:'reserved'"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Installments []Installment `gorm:"foreignKey:SaleID"`
}

func (Sale) TableName() string {
	return "sales"
}

// Recompute refreshes the derived totals after any mutation.
func (s *Sale) Recompute() {
	total := s.FreePaid
	if s.DownPaymentPaid {
		total = total.Add(s.DownPayment)
	}
	for _, inst := range s.Installments {
		total = total.Add(inst.AmountPaid)
	}
	s.TotalPaid = total
	s.OutstandingBalance = s.Price.Sub(total)
}

// InstallmentStatus tracks how much of a scheduled payment has arrived.
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPartial InstallmentStatus = "partial"
	InstallmentPaid    InstallmentStatus = "paid"
	InstallmentOverdue InstallmentStatus = "overdue"
)

// Installment is one scheduled partial payment of a financed sale.
type Installment struct {
	ID            int64             `gorm:"primaryKey;autoIncrement"`
	SaleID        int64             `gorm:"not null;index"`
	Number        int               `gorm:"not null"`
	Amount        decimal.Decimal   `gorm:"type:decimal(20,2);not null"`
	Currency      ledger.Currency   `gorm:"type:char(3);not null"`
	DueDate       time.Time         `gorm:"not null"`
	PaidDate      *time.Time        ``
	Status        InstallmentStatus `gorm:"type:varchar(16);not null;default:'pending'"`
	AmountPaid    decimal.Decimal   `gorm:"type:decimal(20,2);not null;default:0"`
	ReceiptNumber string            `gorm:"type:varchar(64)"`
	Notes         string            `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Installment) TableName() string {
	return "installments"
}
