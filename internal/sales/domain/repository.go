package domain

import "context"

// SaleRepository is the port for sale persistence. FindByID loads the
// installment schedule; Save persists the sale together with its
// installments.
type SaleRepository interface {
	Create(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, id int64) (*Sale, error)
	Save(ctx context.Context, sale *Sale) error
}
