package record

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

var ErrStoreClosed = errors.New("record store is closed")

// Store is the record boundary. SaveReservations overwrites the whole collection;
// concurrent load-modify-save cycles from different callers are last-writer-wins.
type Store interface {
	LoadRestaurants(ctx context.Context) ([]Restaurant, error)
	LoadReservations(ctx context.Context) ([]Reservation, error)
	SaveReservations(ctx context.Context, reservations []Reservation) error
	LoadConstraints(ctx context.Context) (Constraints, error)
}

// Seeder is implemented by stores that can be populated with reference data.
type Seeder interface {
	SeedRestaurants(ctx context.Context, restaurants []Restaurant) error
	SeedConstraints(ctx context.Context, constraints Constraints) error
}

// SeedFrom copies reference data from src into dst when dst has no restaurants yet.
func SeedFrom(ctx context.Context, src Store, dst Seeder) error {
	if reader, ok := dst.(Store); ok {
		existing, err := reader.LoadRestaurants(ctx)
		if err != nil {
			return fmt.Errorf("load target restaurants: %w", err)
		}
		if len(existing) > 0 {
			return nil
		}
	}

	restaurants, err := src.LoadRestaurants(ctx)
	if err != nil {
		return fmt.Errorf("load seed restaurants: %w", err)
	}
	if err := dst.SeedRestaurants(ctx, restaurants); err != nil {
		return fmt.Errorf("seed restaurants: %w", err)
	}

	constraints, err := src.LoadConstraints(ctx)
	if err != nil {
		return fmt.Errorf("load seed constraints: %w", err)
	}
	if err := dst.SeedConstraints(ctx, constraints); err != nil {
		return fmt.Errorf("seed constraints: %w", err)
	}

	log.Info().Int("restaurants", len(restaurants)).Msg("record store seeded")
	return nil
}

// MemoryStore keeps every collection in process memory.
type MemoryStore struct {
	mu           sync.RWMutex
	restaurants  []Restaurant
	reservations []Reservation
	constraints  Constraints
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Seeder = (*MemoryStore)(nil)
)

func NewMemoryStore(restaurants []Restaurant, reservations []Reservation) *MemoryStore {
	return &MemoryStore{
		restaurants:  cloneRestaurants(restaurants),
		reservations: cloneReservations(reservations),
		constraints:  Constraints{},
	}
}

func (m *MemoryStore) LoadRestaurants(context.Context) ([]Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneRestaurants(m.restaurants), nil
}

func (m *MemoryStore) LoadReservations(context.Context) ([]Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneReservations(m.reservations), nil
}

func (m *MemoryStore) SaveReservations(_ context.Context, reservations []Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations = cloneReservations(reservations)
	return nil
}

func (m *MemoryStore) LoadConstraints(context.Context) (Constraints, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(Constraints, len(m.constraints))
	for k, v := range m.constraints {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryStore) SeedRestaurants(_ context.Context, restaurants []Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restaurants = cloneRestaurants(restaurants)
	return nil
}

func (m *MemoryStore) SeedConstraints(_ context.Context, constraints Constraints) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraints = make(Constraints, len(constraints))
	for k, v := range constraints {
		m.constraints[k] = v
	}
	return nil
}
