package tool

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Reservation-Dialogue/agent/extract"
	recordx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/record"
)

const msgReservationNotFound = "Reservation not found"

var (
	fillerPattern = regexp.MustCompile(`(?i)user('|")?s|number|phone number|confirmation id|confirmation|phone-or-id|phone_or_id|provided`)
	idToken       = regexp.MustCompile(`^[A-Za-z0-9-]{4,}$`)
)

// ValidLookupValue accepts a 10-digit phone, or a token of at least four
// [A-Za-z0-9-] characters that is not a label such as "phone number".
func ValidLookupValue(v string) bool {
	s := strings.TrimSpace(v)
	if s == "" {
		return false
	}
	if extract.IsPhone(s) {
		return true
	}
	if fillerPattern.MatchString(s) {
		return false
	}
	return idToken.MatchString(s)
}

type FindOutput struct {
	Found       bool                 `json:"found"`
	Reservation *recordx.Reservation `json:"reservation,omitempty"`
}

type UpdateOutput struct {
	ConfirmationID string              `json:"confirmation_id"`
	Reservation    recordx.Reservation `json:"updated_details"`
}

type CancelOutput struct {
	ConfirmationID string              `json:"confirmation_id"`
	Status         recordx.Status      `json:"status"`
	Reservation    recordx.Reservation `json:"reservation"`
}

// locate resolves key as a confirmation id first, then as a phone. Among several
// bookings for one phone the latest confirmed one wins, else the latest.
func locate(all []recordx.Reservation, key string) int {
	key = strings.TrimSpace(key)
	if key == "" {
		return -1
	}
	for i := range all {
		if strings.EqualFold(all[i].ConfirmationID, key) {
			return i
		}
	}
	best := -1
	for i := range all {
		if all[i].Phone != key {
			continue
		}
		if best < 0 || all[i].Status == recordx.StatusConfirmed || all[best].Status != recordx.StatusConfirmed {
			best = i
		}
	}
	return best
}

func (t *Toolbox) Find(ctx context.Context, a contractx.FindAction) (contractx.ToolResult, error) {
	all, err := t.store.LoadReservations(ctx)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("load reservations: %w", err)
	}
	idx := locate(all, a.PhoneOrID)
	if idx < 0 {
		log.Debug().Err(contractx.ErrNotFound).Msg("find_reservation")
		return succeeded(contractx.ActionFind, FindOutput{Found: false}), nil
	}
	found := all[idx]
	return succeeded(contractx.ActionFind, FindOutput{Found: true, Reservation: &found}), nil
}

func (t *Toolbox) Update(ctx context.Context, a contractx.UpdateAction) (contractx.ToolResult, error) {
	if a.NewDate != "" {
		if _, err := time.Parse(time.DateOnly, a.NewDate); err != nil {
			return failed(contractx.ActionUpdate, fmt.Sprintf("Invalid date '%s'. Please use YYYY-MM-DD.", a.NewDate)), nil
		}
	}
	if a.NewTime != "" {
		if _, _, ok := parseClock(a.NewTime); !ok {
			return failed(contractx.ActionUpdate, fmt.Sprintf("Invalid time '%s'. Please use HH:MM.", a.NewTime)), nil
		}
	}
	if a.NewPartySize < 0 {
		return failed(contractx.ActionUpdate, "Party size must be a positive number."), nil
	}
	if a.NewPartySize > 0 {
		constraints, err := t.store.LoadConstraints(ctx)
		if err != nil {
			return contractx.ToolResult{}, fmt.Errorf("load constraints: %w", err)
		}
		if maxParty := constraints.Int(constraintMaxPartyKW, defaultMaxPartySize); a.NewPartySize > maxParty {
			return failed(contractx.ActionUpdate, fmt.Sprintf("Party size must be between 1 and %d people.", maxParty)), nil
		}
	}

	var (
		updated recordx.Reservation
		found   bool
	)
	err := t.mutate(ctx, func(all []recordx.Reservation) ([]recordx.Reservation, bool) {
		for i := range all {
			if a.ReservationID == "" || !strings.EqualFold(all[i].ConfirmationID, a.ReservationID) {
				continue
			}
			if a.NewDate != "" {
				all[i].Date = a.NewDate
			}
			if a.NewTime != "" {
				all[i].Time = a.NewTime
			}
			if a.NewPartySize > 0 {
				all[i].PartySize = a.NewPartySize
			}
			updated, found = all[i], true
			return all, true
		}
		return all, false
	})
	if err != nil {
		return contractx.ToolResult{}, err
	}
	if !found {
		return failed(contractx.ActionUpdate, msgReservationNotFound), nil
	}
	return succeeded(contractx.ActionUpdate, UpdateOutput{
		ConfirmationID: updated.ConfirmationID,
		Reservation:    updated,
	}), nil
}

// Cancel sets the status to cancelled. Cancelling twice returns the same record.
func (t *Toolbox) Cancel(ctx context.Context, a contractx.CancelAction) (contractx.ToolResult, error) {
	ids := a.Identifiers()
	if len(ids) == 0 {
		return failed(contractx.ActionCancel, "No reservation_id or phone provided"), nil
	}
	target := ids[0]

	var (
		cancelled recordx.Reservation
		found     bool
	)
	err := t.mutate(ctx, func(all []recordx.Reservation) ([]recordx.Reservation, bool) {
		idx := locate(all, target)
		if idx < 0 {
			return all, false
		}
		all[idx].Status = recordx.StatusCancelled
		cancelled, found = all[idx], true
		return all, true
	})
	if err != nil {
		return contractx.ToolResult{}, err
	}
	if !found {
		return failed(contractx.ActionCancel, msgReservationNotFound), nil
	}

	log.Debug().Str("confirmation_id", cancelled.ConfirmationID).Msg("reservation cancelled")
	return succeeded(contractx.ActionCancel, CancelOutput{
		ConfirmationID: cancelled.ConfirmationID,
		Status:         recordx.StatusCancelled,
		Reservation:    cancelled,
	}), nil
}
