package database

import (
	"log"

	"gorm.io/gorm"

	certdomain "github.com/morganoide1/constructora-sub000/internal/certificates/domain"
	expdomain "github.com/morganoide1/constructora-sub000/internal/expenses/domain"
	ledgerdomain "github.com/morganoide1/constructora-sub000/internal/ledger/domain"
	salesdomain "github.com/morganoide1/constructora-sub000/internal/sales/domain"
)

// Migrate creates or updates the schema for every persisted aggregate.
func Migrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&ledgerdomain.Account{},
		&ledgerdomain.LedgerEntry{},
		&salesdomain.Sale{},
		&salesdomain.Installment{},
		&certdomain.Certificate{},
		&certdomain.CertificateItem{},
		&expdomain.Building{},
		&expdomain.Property{},
		&expdomain.BuildingLiquidation{},
		&expdomain.ExpenseItem{},
		&expdomain.UnitCharge{},
	)
	if err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}
}
