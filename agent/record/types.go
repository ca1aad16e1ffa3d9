package record

import (
	"time"

	"github.com/spf13/cast"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Restaurant is read-only reference data.
type Restaurant struct {
	ID              string   `json:"restaurant_id"`
	Name            string   `json:"name"`
	City            string   `json:"city"`
	Location        string   `json:"location"`
	Address         string   `json:"address,omitempty"`
	Cuisine         string   `json:"cuisine,omitempty"`
	SeatingCapacity int      `json:"seating_capacity"`
	Features        []string `json:"features,omitempty"`
}

// RestaurantSummary is a search hit annotated with candidate slots.
type RestaurantSummary struct {
	Restaurant
	AvailableTimes []string `json:"available_times,omitempty"`
}

type Reservation struct {
	ConfirmationID  string    `json:"confirmation_id"`
	RestaurantID    string    `json:"restaurant_id"`
	RestaurantName  string    `json:"restaurant_name"`
	CustomerName    string    `json:"customer_name"`
	Phone           string    `json:"phone"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	PartySize       int       `json:"party_size"`
	SpecialRequests string    `json:"special_requests"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// Constraints is the free-form booking constraints document.
type Constraints map[string]any

func (c Constraints) Int(key string, fallback int) int {
	v, ok := c[key]
	if !ok {
		return fallback
	}
	n, err := cast.ToIntE(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func cloneReservations(in []Reservation) []Reservation {
	if in == nil {
		return nil
	}
	out := make([]Reservation, len(in))
	copy(out, in)
	return out
}

func cloneRestaurants(in []Restaurant) []Restaurant {
	if in == nil {
		return nil
	}
	out := make([]Restaurant, len(in))
	for i, r := range in {
		r.Features = append([]string(nil), r.Features...)
		out[i] = r
	}
	return out
}
