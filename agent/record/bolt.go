package record

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketRestaurants  = []byte("restaurants")
	bucketReservations = []byte("reservations")
	bucketConstraints  = []byte("booking_constraints")
)

// BoltStore keeps each collection in its own bucket of a single BoltDB file.
// Restaurants are keyed by id, reservations by confirmation id.
type BoltStore struct {
	db *bolt.DB
}

var (
	_ Store  = (*BoltStore)(nil)
	_ Seeder = (*BoltStore)(nil)
)

func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt store: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (b *BoltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *BoltStore) LoadRestaurants(context.Context) ([]Restaurant, error) {
	if b.db == nil {
		return nil, ErrStoreClosed
	}
	var out []Restaurant
	err := b.db.View(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucketRestaurants)
		if bk == nil {
			return nil
		}
		return bk.ForEach(func(_, v []byte) error {
			var r Restaurant
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decode restaurant: %w", err)
			}
			out = append(out, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *BoltStore) LoadReservations(context.Context) ([]Reservation, error) {
	if b.db == nil {
		return nil, ErrStoreClosed
	}
	var out []Reservation
	err := b.db.View(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucketReservations)
		if bk == nil {
			return nil
		}
		return bk.ForEach(func(_, v []byte) error {
			var r Reservation
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decode reservation: %w", err)
			}
			out = append(out, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveReservations recreates the reservations bucket so it mirrors the given snapshot.
func (b *BoltStore) SaveReservations(_ context.Context, reservations []Reservation) error {
	if b.db == nil {
		return ErrStoreClosed
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bk, err := recreateBucket(tx, bucketReservations)
		if err != nil {
			return err
		}
		for _, r := range reservations {
			enc, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if err := bk.Put([]byte(r.ConfirmationID), enc); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BoltStore) LoadConstraints(context.Context) (Constraints, error) {
	if b.db == nil {
		return nil, ErrStoreClosed
	}
	out := Constraints{}
	err := b.db.View(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucketConstraints)
		if bk == nil {
			return nil
		}
		return bk.ForEach(func(k, v []byte) error {
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				// skip malformed entries instead of failing the whole load
				return nil
			}
			out[string(k)] = val
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *BoltStore) SeedRestaurants(_ context.Context, restaurants []Restaurant) error {
	if b.db == nil {
		return ErrStoreClosed
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bk, err := recreateBucket(tx, bucketRestaurants)
		if err != nil {
			return err
		}
		for _, r := range restaurants {
			enc, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if err := bk.Put([]byte(r.ID), enc); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BoltStore) SeedConstraints(_ context.Context, constraints Constraints) error {
	if b.db == nil {
		return ErrStoreClosed
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bk, err := recreateBucket(tx, bucketConstraints)
		if err != nil {
			return err
		}
		for k, v := range constraints {
			enc, err := json.Marshal(v)
			if err != nil {
				return err
			}
			if err := bk.Put([]byte(k), enc); err != nil {
				return err
			}
		}
		return nil
	})
}

func recreateBucket(tx *bolt.Tx, name []byte) (*bolt.Bucket, error) {
	if tx.Bucket(name) != nil {
		if err := tx.DeleteBucket(name); err != nil {
			return nil, err
		}
	}
	return tx.CreateBucket(name)
}
