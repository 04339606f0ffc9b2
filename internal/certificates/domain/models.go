package domain

import (
	"time"

	"github.com/shopspring/decimal"

	ledger "github.com/morganoide1/constructora-sub000/internal/ledger/domain"
)

// CertificateStatus is the contractor invoice state machine:
// pending -> approved -> paid, with rejected reachable from pending and
// approved. paid is terminal.
type CertificateStatus string

const (
	StatusPending  CertificateStatus = "pending"
	StatusApproved CertificateStatus = "approved"
	StatusPaid     CertificateStatus = "paid"
	StatusRejected CertificateStatus = "rejected"
)

// Certificate is a contractor's billable claim (certificado de obra).
// Number is the sequential human-readable identifier, allocated atomically
// at creation.
type Certificate struct {
	ID              int64             `gorm:"primaryKey;autoIncrement"`
	Number          int64             `gorm:"uniqueIndex;not null"`
	ProjectID       int64             `gorm:"not null;index"`
	ContractorName  string            `gorm:"type:varchar(150);not null"`
	ContractorTaxID string            `gorm:"type:varchar(32)"`
	Total           decimal.Decimal   `gorm:"type:decimal(20,2);not null"`
	Currency        ledger.Currency   `gorm:"type:char(3);not null"`
	Status          CertificateStatus `gorm:"type:varchar(16);not null;default:'pending'"`
	ApprovedAt      *time.Time        ``
	ApprovedBy      string            `gorm:"type:varchar(64)"`
	PaidAt          *time.Time        ``
	LedgerEntryID   *string           `gorm:"type:varchar(36)"`
	RejectionReason string            `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items []CertificateItem `gorm:"foreignKey:CertificateID"`
}

func (Certificate) TableName() string {
	return "certificates"
}

// CertificateItem is one line of the claim: quantity x unit price.
type CertificateItem struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	CertificateID int64           `gorm:"not null;index"`
	Description   string          `gorm:"type:varchar(255);not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(20,2);not null"`
}

func (CertificateItem) TableName() string {
	return "certificate_items"
}
