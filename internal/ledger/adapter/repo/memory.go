package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/morganoide1/constructora-sub000/internal/ledger/domain"
	"github.com/morganoide1/constructora-sub000/internal/platform/database"
)

// MemoryAccountRepo and MemoryEntryRepo are in-memory implementations of the
// ledger ports. They back the service tests and honor the same optimistic
// version semantics as the postgres repos.
type MemoryAccountRepo struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*domain.Account
}

func NewMemoryAccountRepo() *MemoryAccountRepo {
	return &MemoryAccountRepo{nextID: 1, accounts: make(map[int64]*domain.Account)}
}

func (m *MemoryAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account.ID = m.nextID
	m.nextID++
	if account.Version == 0 {
		account.Version = 1
	}
	clone := *account
	m.accounts[account.ID] = &clone
	return nil
}

func (m *MemoryAccountRepo) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *acc
	return &clone, nil
}

func (m *MemoryAccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		out = append(out, *acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryAccountRepo) ApplyBalanceDelta(ctx context.Context, id int64, delta decimal.Decimal, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	if acc.Version != version {
		return domain.ErrVersionConflict
	}
	acc.Balance = acc.Balance.Add(delta)
	acc.Version++
	database.RecordUndo(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		acc.Balance = acc.Balance.Sub(delta)
		acc.Version--
	})
	return nil
}

type MemoryEntryRepo struct {
	mu      sync.Mutex
	entries []domain.LedgerEntry
}

func NewMemoryEntryRepo() *MemoryEntryRepo {
	return &MemoryEntryRepo{}
}

func (m *MemoryEntryRepo) Create(ctx context.Context, entry *domain.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, *entry)
	id := entry.ID
	database.RecordUndo(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i := range m.entries {
			if m.entries[i].ID == id {
				m.entries = append(m.entries[:i], m.entries[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (m *MemoryEntryRepo) FindByAccount(ctx context.Context, accountID int64, filter domain.HistoryFilter) ([]domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.LedgerEntry
	for _, e := range m.entries {
		if e.AccountID != accountID {
			continue
		}
		if filter.From != nil && e.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.CreatedAt.After(*filter.To) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

var (
	_ domain.AccountRepository = (*MemoryAccountRepo)(nil)
	_ domain.EntryRepository   = (*MemoryEntryRepo)(nil)
)
