package repo

import (
	"context"
	"sync"

	"github.com/morganoide1/constructora-sub000/internal/certificates/domain"
	"github.com/morganoide1/constructora-sub000/internal/platform/database"
)

// MemoryCertificateRepo is the in-memory implementation of the certificate
// port, used by the workflow tests. It enforces number uniqueness the same
// way the unique index does in postgres.
type MemoryCertificateRepo struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*domain.Certificate
	numbers map[int64]bool
}

func NewMemoryCertificateRepo() *MemoryCertificateRepo {
	return &MemoryCertificateRepo{
		nextID:  1,
		byID:    make(map[int64]*domain.Certificate),
		numbers: make(map[int64]bool),
	}
}

func cloneCert(c *domain.Certificate) *domain.Certificate {
	clone := *c
	clone.Items = make([]domain.CertificateItem, len(c.Items))
	copy(clone.Items, c.Items)
	return &clone
}

func (m *MemoryCertificateRepo) Create(ctx context.Context, cert *domain.Certificate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.numbers[cert.Number] {
		return domain.ErrDuplicateNumber
	}
	cert.ID = m.nextID
	m.nextID++
	for i := range cert.Items {
		cert.Items[i].ID = int64(i + 1)
		cert.Items[i].CertificateID = cert.ID
	}
	m.byID[cert.ID] = cloneCert(cert)
	m.numbers[cert.Number] = true
	return nil
}

func (m *MemoryCertificateRepo) FindByID(ctx context.Context, id int64) (*domain.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cert, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneCert(cert), nil
}

func (m *MemoryCertificateRepo) MaxNumber(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var max int64
	for n := range m.numbers {
		if n > max {
			max = n
		}
	}
	return max, nil
}

func (m *MemoryCertificateRepo) Update(ctx context.Context, cert *domain.Certificate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.byID[cert.ID]
	if !ok {
		return domain.ErrNotFound
	}
	m.byID[cert.ID] = cloneCert(cert)
	database.RecordUndo(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.byID[cert.ID] = prev
	})
	return nil
}

var _ domain.CertificateRepository = (*MemoryCertificateRepo)(nil)
