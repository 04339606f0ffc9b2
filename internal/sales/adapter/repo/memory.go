package repo

import (
	"context"
	"sync"

	"github.com/morganoide1/constructora-sub000/internal/platform/database"
	"github.com/morganoide1/constructora-sub000/internal/sales/domain"
)

// MemorySaleRepo is the in-memory implementation of the sale port, used by
// the engine tests.
type MemorySaleRepo struct {
	mu     sync.Mutex
	nextID int64
	sales  map[int64]*domain.Sale
}

func NewMemorySaleRepo() *MemorySaleRepo {
	return &MemorySaleRepo{nextID: 1, sales: make(map[int64]*domain.Sale)}
}

func cloneSale(s *domain.Sale) *domain.Sale {
	clone := *s
	clone.Installments = make([]domain.Installment, len(s.Installments))
	copy(clone.Installments, s.Installments)
	return &clone
}

func (m *MemorySaleRepo) Create(ctx context.Context, sale *domain.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sale.ID = m.nextID
	m.nextID++
	for i := range sale.Installments {
		sale.Installments[i].ID = int64(i + 1)
		sale.Installments[i].SaleID = sale.ID
	}
	m.sales[sale.ID] = cloneSale(sale)
	return nil
}

func (m *MemorySaleRepo) FindByID(ctx context.Context, id int64) (*domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sale, ok := m.sales[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (m *MemorySaleRepo) Save(ctx context.Context, sale *domain.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.sales[sale.ID]
	if !ok {
		return domain.ErrNotFound
	}
	m.sales[sale.ID] = cloneSale(sale)
	database.RecordUndo(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.sales[sale.ID] = prev
	})
	return nil
}

var _ domain.SaleRepository = (*MemorySaleRepo)(nil)
