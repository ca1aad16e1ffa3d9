package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Reservation-Dialogue/agent/extract"
	recordx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/record"
)

const (
	msgNameNotGrounded  = "I don't see a customer name in our conversation. Could you please provide your name?"
	msgPhoneNotGrounded = "I don't see a phone number in our conversation. Could you please provide your 10-digit phone number?"
	msgNoOptions        = "No restaurants available. Please search for restaurants first."
	msgUnknownVenue     = "Restaurant not found"
)

type BookingOutput struct {
	ConfirmationID string              `json:"confirmation_id"`
	Status         recordx.Status      `json:"status"`
	Reservation    recordx.Reservation `json:"booking_details"`
}

// Grounded reports whether value appears, case-insensitively, in some user turn.
func Grounded(value string, userTurns []string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return false
	}
	for _, turn := range userTurns {
		if strings.Contains(strings.ToLower(turn), v) {
			return true
		}
	}
	return false
}

// Book selects an option from the last search and persists a reservation for it.
// Name and phone must both be traceable to text the user typed.
func (t *Toolbox) Book(ctx context.Context, a contractx.BookAction, bc BookingContext) (contractx.ToolResult, error) {
	if !Grounded(a.CustomerName, bc.UserTurns) {
		log.Warn().
			Err(contractx.ErrUngrounded).
			Str("field", "customer_name").
			Str("value", a.CustomerName).
			Msg("suspicious booking rejected")
		return failed(contractx.ActionBook, msgNameNotGrounded), nil
	}
	if !Grounded(a.Phone, bc.UserTurns) {
		log.Warn().
			Err(contractx.ErrUngrounded).
			Str("field", "phone").
			Str("value", a.Phone).
			Msg("suspicious booking rejected")
		return failed(contractx.ActionBook, msgPhoneNotGrounded), nil
	}
	if !extract.IsPhone(a.Phone) {
		return failed(contractx.ActionBook, fmt.Sprintf("Invalid phone number '%s'. Please provide a 10-digit phone number.", a.Phone)), nil
	}
	if len(bc.Options) == 0 {
		return failed(contractx.ActionBook, msgNoOptions), nil
	}
	if a.RestaurantIndex < 0 || a.RestaurantIndex >= len(bc.Options) {
		return failed(contractx.ActionBook, fmt.Sprintf("Invalid restaurant selection. Please choose from the available options (1-%d).", len(bc.Options))), nil
	}

	selected := bc.Options[a.RestaurantIndex]
	restaurants, err := t.store.LoadRestaurants(ctx)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("load restaurants: %w", err)
	}
	var venue *recordx.Restaurant
	for i := range restaurants {
		if restaurants[i].ID == selected.ID {
			venue = &restaurants[i]
			break
		}
	}
	if venue == nil {
		return failed(contractx.ActionBook, msgUnknownVenue), nil
	}

	reservation := recordx.Reservation{
		ConfirmationID:  ConfirmationID(venue.City, bc.Date, t.suffix()),
		RestaurantID:    venue.ID,
		RestaurantName:  venue.Name,
		CustomerName:    strings.TrimSpace(a.CustomerName),
		Phone:           a.Phone,
		Date:            bc.Date,
		Time:            bc.Time,
		PartySize:       bc.PartySize,
		SpecialRequests: strings.TrimSpace(a.SpecialRequests),
		Status:          recordx.StatusConfirmed,
		CreatedAt:       t.now().UTC(),
	}

	err = t.mutate(ctx, func(all []recordx.Reservation) ([]recordx.Reservation, bool) {
		return append(all, reservation), true
	})
	if err != nil {
		return contractx.ToolResult{}, err
	}

	log.Debug().
		Str("confirmation_id", reservation.ConfirmationID).
		Str("restaurant_id", venue.ID).
		Msg("reservation created")
	return succeeded(contractx.ActionBook, BookingOutput{
		ConfirmationID: reservation.ConfirmationID,
		Status:         reservation.Status,
		Reservation:    reservation,
	}), nil
}
