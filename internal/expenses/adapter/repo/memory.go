package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/morganoide1/constructora-sub000/internal/expenses/domain"
	"github.com/morganoide1/constructora-sub000/internal/platform/database"
)

// In-memory implementations of the expense ports, used by the engine tests.

type MemoryLiquidationRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.BuildingLiquidation
}

func NewMemoryLiquidationRepo() *MemoryLiquidationRepo {
	return &MemoryLiquidationRepo{nextID: 1, byID: make(map[int64]*domain.BuildingLiquidation)}
}

func cloneLiquidation(l *domain.BuildingLiquidation) *domain.BuildingLiquidation {
	clone := *l
	clone.Items = make([]domain.ExpenseItem, len(l.Items))
	copy(clone.Items, l.Items)
	return &clone
}

func (m *MemoryLiquidationRepo) Create(ctx context.Context, liq *domain.BuildingLiquidation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	liq.ID = m.nextID
	m.nextID++
	for i := range liq.Items {
		liq.Items[i].ID = int64(i + 1)
		liq.Items[i].LiquidationID = liq.ID
	}
	m.byID[liq.ID] = cloneLiquidation(liq)
	return nil
}

func (m *MemoryLiquidationRepo) FindByID(ctx context.Context, id int64) (*domain.BuildingLiquidation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	liq, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneLiquidation(liq), nil
}

func (m *MemoryLiquidationRepo) FindByPeriod(ctx context.Context, buildingID int64, month, year int) (*domain.BuildingLiquidation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, liq := range m.byID {
		if liq.BuildingID == buildingID && liq.Month == month && liq.Year == year {
			return cloneLiquidation(liq), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MemoryLiquidationRepo) FindLatestBefore(ctx context.Context, buildingID int64, month, year int) (*domain.BuildingLiquidation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var candidates []*domain.BuildingLiquidation
	for _, liq := range m.byID {
		if liq.BuildingID != buildingID {
			continue
		}
		if liq.Year < year || (liq.Year == year && liq.Month < month) {
			candidates = append(candidates, liq)
		}
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Year != candidates[j].Year {
			return candidates[i].Year > candidates[j].Year
		}
		return candidates[i].Month > candidates[j].Month
	})
	return cloneLiquidation(candidates[0]), nil
}

func (m *MemoryLiquidationRepo) Save(ctx context.Context, liq *domain.BuildingLiquidation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if liq.ID == 0 {
		liq.ID = m.nextID
		m.nextID++
	}
	for i := range liq.Items {
		liq.Items[i].LiquidationID = liq.ID
	}
	prev := m.byID[liq.ID]
	m.byID[liq.ID] = cloneLiquidation(liq)
	id := liq.ID
	database.RecordUndo(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if prev == nil {
			delete(m.byID, id)
			return
		}
		m.byID[id] = prev
	})
	return nil
}

// ---------------------------------------------------------

type MemoryPropertyRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.Property
}

func NewMemoryPropertyRepo() *MemoryPropertyRepo {
	return &MemoryPropertyRepo{nextID: 1, byID: make(map[int64]*domain.Property)}
}

func (m *MemoryPropertyRepo) Create(ctx context.Context, property *domain.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	property.ID = m.nextID
	m.nextID++
	clone := *property
	m.byID[property.ID] = &clone
	return nil
}

func (m *MemoryPropertyRepo) FindByID(ctx context.Context, id int64) (*domain.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	property, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *property
	return &clone, nil
}

func (m *MemoryPropertyRepo) FindByBuilding(ctx context.Context, buildingID int64) ([]domain.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Property
	for _, property := range m.byID {
		if property.BuildingID == buildingID {
			out = append(out, *property)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (m *MemoryPropertyRepo) UpdateCoefficient(ctx context.Context, id int64, coefficient decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	property, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	property.Coefficient = coefficient
	return nil
}

// ---------------------------------------------------------

type MemoryChargeRepo struct {
	mu         sync.Mutex
	byID       map[string]*domain.UnitCharge
	properties *MemoryPropertyRepo
}

// NewMemoryChargeRepo takes the property repo so ListByBuildingPeriod can
// resolve the building of each charge, mirroring the join in postgres.
func NewMemoryChargeRepo(properties *MemoryPropertyRepo) *MemoryChargeRepo {
	return &MemoryChargeRepo{byID: make(map[string]*domain.UnitCharge), properties: properties}
}

func (m *MemoryChargeRepo) Create(ctx context.Context, charge *domain.UnitCharge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *charge
	m.byID[charge.ID] = &clone
	id := charge.ID
	database.RecordUndo(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.byID, id)
	})
	return nil
}

func (m *MemoryChargeRepo) FindByID(ctx context.Context, id string) (*domain.UnitCharge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	charge, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *charge
	return &clone, nil
}

func (m *MemoryChargeRepo) ExistsForPeriod(ctx context.Context, propertyID int64, month, year int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, charge := range m.byID {
		if charge.PropertyID == propertyID && charge.Month == month && charge.Year == year {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryChargeRepo) ListByBuildingPeriod(ctx context.Context, buildingID int64, month, year int) ([]domain.UnitCharge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.UnitCharge
	for _, charge := range m.byID {
		if charge.Month != month || charge.Year != year {
			continue
		}
		property, err := m.properties.FindByID(ctx, charge.PropertyID)
		if err != nil {
			continue
		}
		if property.BuildingID == buildingID {
			out = append(out, *charge)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PropertyID < out[j].PropertyID })
	return out, nil
}

func (m *MemoryChargeRepo) Update(ctx context.Context, charge *domain.UnitCharge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.byID[charge.ID]
	if !ok {
		return domain.ErrNotFound
	}
	clone := *charge
	m.byID[charge.ID] = &clone
	database.RecordUndo(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.byID[charge.ID] = prev
	})
	return nil
}

var (
	_ domain.LiquidationRepository = (*MemoryLiquidationRepo)(nil)
	_ domain.PropertyRepository    = (*MemoryPropertyRepo)(nil)
	_ domain.ChargeRepository      = (*MemoryChargeRepo)(nil)
)
