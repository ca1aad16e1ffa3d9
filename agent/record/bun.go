package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type restaurantRow struct {
	bun.BaseModel `bun:"table:restaurants,alias:r"`

	ID              string   `bun:"restaurant_id,pk"`
	Name            string   `bun:"name,notnull"`
	City            string   `bun:"city,notnull"`
	Location        string   `bun:"location,notnull"`
	Address         string   `bun:"address"`
	Cuisine         string   `bun:"cuisine"`
	SeatingCapacity int      `bun:"seating_capacity,notnull"`
	Features        []string `bun:"features,array"`
}

type reservationRow struct {
	bun.BaseModel `bun:"table:reservations,alias:rv"`

	ConfirmationID  string    `bun:"confirmation_id,pk"`
	RestaurantID    string    `bun:"restaurant_id,notnull"`
	RestaurantName  string    `bun:"restaurant_name,notnull"`
	CustomerName    string    `bun:"customer_name,notnull"`
	Phone           string    `bun:"phone,notnull"`
	Date            string    `bun:"date,notnull"`
	Time            string    `bun:"time,notnull"`
	PartySize       int       `bun:"party_size,notnull"`
	SpecialRequests string    `bun:"special_requests"`
	Status          string    `bun:"status,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
}

type constraintRow struct {
	bun.BaseModel `bun:"table:booking_constraints,alias:bc"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,type:jsonb,notnull"`
}

// BunStore persists records in Postgres. Reservations are keyed by confirmation id,
// so a whole-collection save becomes a batch of upserts inside one transaction.
type BunStore struct {
	db *bun.DB
}

var (
	_ Store  = (*BunStore)(nil)
	_ Seeder = (*BunStore)(nil)
)

func OpenBunStore(ctx context.Context, dsn string) (*BunStore, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &BunStore{db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BunStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate creates the tables when they do not exist yet.
func (s *BunStore) Migrate(ctx context.Context) error {
	models := []any{(*restaurantRow)(nil), (*reservationRow)(nil), (*constraintRow)(nil)}
	for _, m := range models {
		if _, err := s.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

func (s *BunStore) LoadRestaurants(ctx context.Context) ([]Restaurant, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}
	var rows []restaurantRow
	if err := s.db.NewSelect().Model(&rows).Order("restaurant_id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select restaurants: %w", err)
	}
	out := make([]Restaurant, 0, len(rows))
	for _, row := range rows {
		out = append(out, Restaurant{
			ID:              row.ID,
			Name:            row.Name,
			City:            row.City,
			Location:        row.Location,
			Address:         row.Address,
			Cuisine:         row.Cuisine,
			SeatingCapacity: row.SeatingCapacity,
			Features:        row.Features,
		})
	}
	return out, nil
}

func (s *BunStore) LoadReservations(ctx context.Context) ([]Reservation, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}
	var rows []reservationRow
	if err := s.db.NewSelect().Model(&rows).Order("created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select reservations: %w", err)
	}
	out := make([]Reservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, Reservation{
			ConfirmationID:  row.ConfirmationID,
			RestaurantID:    row.RestaurantID,
			RestaurantName:  row.RestaurantName,
			CustomerName:    row.CustomerName,
			Phone:           row.Phone,
			Date:            row.Date,
			Time:            row.Time,
			PartySize:       row.PartySize,
			SpecialRequests: row.SpecialRequests,
			Status:          Status(row.Status),
			CreatedAt:       row.CreatedAt,
		})
	}
	return out, nil
}

// SaveReservations upserts every record by confirmation id. Records are never
// deleted, so rows missing from the snapshot are left alone.
func (s *BunStore) SaveReservations(ctx context.Context, reservations []Reservation) error {
	if s.db == nil {
		return ErrStoreClosed
	}
	if len(reservations) == 0 {
		return nil
	}
	rows := make([]reservationRow, 0, len(reservations))
	for _, r := range reservations {
		rows = append(rows, reservationRow{
			ConfirmationID:  r.ConfirmationID,
			RestaurantID:    r.RestaurantID,
			RestaurantName:  r.RestaurantName,
			CustomerName:    r.CustomerName,
			Phone:           r.Phone,
			Date:            r.Date,
			Time:            r.Time,
			PartySize:       r.PartySize,
			SpecialRequests: r.SpecialRequests,
			Status:          string(r.Status),
			CreatedAt:       r.CreatedAt.UTC(),
		})
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&rows).
			On("CONFLICT (confirmation_id) DO UPDATE").
			Set("date = EXCLUDED.date").
			Set("time = EXCLUDED.time").
			Set("party_size = EXCLUDED.party_size").
			Set("special_requests = EXCLUDED.special_requests").
			Set("status = EXCLUDED.status").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("upsert reservations: %w", err)
		}
		return nil
	})
}

func (s *BunStore) LoadConstraints(ctx context.Context) (Constraints, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}
	var rows []constraintRow
	if err := s.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select constraints: %w", err)
	}
	out := make(Constraints, len(rows))
	for _, row := range rows {
		var v any
		if err := json.Unmarshal([]byte(row.Value), &v); err != nil {
			log.Warn().Err(err).Str("key", row.Key).Msg("skip malformed booking constraint")
			continue
		}
		out[row.Key] = v
	}
	return out, nil
}

func (s *BunStore) SeedRestaurants(ctx context.Context, restaurants []Restaurant) error {
	if s.db == nil {
		return ErrStoreClosed
	}
	if len(restaurants) == 0 {
		return nil
	}
	rows := make([]restaurantRow, 0, len(restaurants))
	for _, r := range restaurants {
		rows = append(rows, restaurantRow{
			ID:              r.ID,
			Name:            r.Name,
			City:            r.City,
			Location:        r.Location,
			Address:         r.Address,
			Cuisine:         r.Cuisine,
			SeatingCapacity: r.SeatingCapacity,
			Features:        r.Features,
		})
	}
	_, err := s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (restaurant_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert restaurants: %w", err)
	}
	return nil
}

func (s *BunStore) SeedConstraints(ctx context.Context, constraints Constraints) error {
	if s.db == nil {
		return ErrStoreClosed
	}
	if len(constraints) == 0 {
		return nil
	}
	rows := make([]constraintRow, 0, len(constraints))
	for k, v := range constraints {
		enc, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode constraint %s: %w", k, err)
		}
		rows = append(rows, constraintRow{Key: k, Value: string(enc)})
	}
	_, err := s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert constraints: %w", err)
	}
	return nil
}
