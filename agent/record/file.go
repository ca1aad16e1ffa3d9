package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	RestaurantsFile  = "restaurants.json"
	ReservationsFile = "reservations.json"
	ConstraintsFile  = "booking_constraints.json"
)

// FileStore keeps each collection as one JSON document under dir.
// A missing document reads as an empty collection.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

var (
	_ Store  = (*FileStore)(nil)
	_ Seeder = (*FileStore)(nil)
)

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) LoadRestaurants(context.Context) ([]Restaurant, error) {
	var out []Restaurant
	if err := f.read(RestaurantsFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FileStore) LoadReservations(context.Context) ([]Reservation, error) {
	var out []Reservation
	if err := f.read(ReservationsFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FileStore) SaveReservations(_ context.Context, reservations []Reservation) error {
	if reservations == nil {
		reservations = []Reservation{}
	}
	return f.write(ReservationsFile, reservations)
}

func (f *FileStore) LoadConstraints(context.Context) (Constraints, error) {
	out := Constraints{}
	if err := f.read(ConstraintsFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FileStore) SeedRestaurants(_ context.Context, restaurants []Restaurant) error {
	if restaurants == nil {
		restaurants = []Restaurant{}
	}
	return f.write(RestaurantsFile, restaurants)
}

func (f *FileStore) SeedConstraints(_ context.Context, constraints Constraints) error {
	if constraints == nil {
		constraints = Constraints{}
	}
	return f.write(ConstraintsFile, constraints)
}

func (f *FileStore) read(name string, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// write replaces the document through a temp file so readers never see a partial file.
func (f *FileStore) write(name string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(f.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(f.dir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
