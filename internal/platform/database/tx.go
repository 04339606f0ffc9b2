package database

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// TxManager runs a function as a single atomic unit of work. Every engine
// operation that touches more than one aggregate (balance update + entry
// append, debit + credit pair, settle + charge fan-out) goes through Do so
// either all writes commit or none do.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

// GormTxManager wraps gorm's transaction support. The open transaction is
// carried in the context so repositories pick it up transparently.
type GormTxManager struct {
	db *gorm.DB
}

func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// Do starts a database transaction unless the context already carries one,
// in which case fn joins the ongoing unit of work. Joining keeps composed
// operations (e.g. a certificate payment wrapping a ledger debit) atomic as
// a whole instead of committing piecewise.
func (m *GormTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// FromContext returns the transaction carried by ctx, or fallback when the
// call is not running inside a unit of work.
func FromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}

type memTxKey struct{}

// memJournal collects compensating actions recorded by the memory
// repositories so a failed unit of work can be unwound.
type memJournal struct {
	mu    sync.Mutex
	undos []func()
}

func (j *memJournal) record(undo func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undos = append(j.undos, undo)
}

func (j *memJournal) rollback() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := len(j.undos) - 1; i >= 0; i-- {
		j.undos[i]()
	}
	j.undos = nil
}

// RecordUndo registers the inverse of a write with the unit of work carried by
// ctx, if any. The memory repositories call it on every mutation; outside a
// unit of work it is a no-op.
func RecordUndo(ctx context.Context, undo func()) {
	if j, ok := ctx.Value(memTxKey{}).(*memJournal); ok {
		j.record(undo)
	}
}

// MemoryTxManager serializes units of work with a single mutex and unwinds
// the journal of recorded writes when fn fails, mirroring the all-or-nothing
// guarantee of the database manager. It backs the in-memory repositories used
// by tests.
type MemoryTxManager struct {
	mu sync.Mutex
}

func NewMemoryTxManager() *MemoryTxManager {
	return &MemoryTxManager{}
}

func (m *MemoryTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memTxKey{}).(*memJournal); ok {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	journal := &memJournal{}
	err := fn(context.WithValue(ctx, memTxKey{}, journal))
	if err != nil {
		journal.rollback()
	}
	return err
}
