package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// HistoryFilter narrows an account history query.
type HistoryFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// AccountRepository is the port for account persistence. Implementations run
// inside the ambient unit of work when the context carries one.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id int64) (*Account, error)
	List(ctx context.Context) ([]Account, error)

	// ApplyBalanceDelta adds delta to the account balance guarded by an
	// optimistic version check. Returns ErrVersionConflict when the row was
	// modified since version was read.
	ApplyBalanceDelta(ctx context.Context, id int64, delta decimal.Decimal, version int64) error
}

// EntryRepository is the port for the append-only entry log.
type EntryRepository interface {
	Create(ctx context.Context, entry *LedgerEntry) error
	FindByAccount(ctx context.Context, accountID int64, filter HistoryFilter) ([]LedgerEntry, error)
}
