package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	recordx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/record"
)

type SearchOutput struct {
	Restaurants []recordx.RestaurantSummary `json:"restaurants"`
}

func (t *Toolbox) Search(ctx context.Context, a contractx.SearchAction) (contractx.ToolResult, error) {
	empty := SearchOutput{Restaurants: []recordx.RestaurantSummary{}}
	fail := func(msg string) (contractx.ToolResult, error) {
		res := failed(contractx.ActionSearch, msg)
		res.Result = empty
		return res, nil
	}

	location := strings.TrimSpace(a.Location)
	if location == "" {
		return fail("Please tell me which city or area you'd like to dine in.")
	}
	if _, err := time.Parse(time.DateOnly, strings.TrimSpace(a.Date)); err != nil {
		return fail(fmt.Sprintf("Invalid date '%s'. Please use YYYY-MM-DD.", a.Date))
	}

	constraints, err := t.store.LoadConstraints(ctx)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("load constraints: %w", err)
	}
	maxParty := constraints.Int(constraintMaxPartyKW, defaultMaxPartySize)
	if a.PartySize <= 0 || a.PartySize > maxParty {
		return fail(fmt.Sprintf("Party size must be between 1 and %d people.", maxParty))
	}

	restaurants, err := t.store.LoadRestaurants(ctx)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("load restaurants: %w", err)
	}

	needle := strings.ToLower(location)
	var matches []recordx.Restaurant
	for _, r := range restaurants {
		if strings.Contains(strings.ToLower(r.Location), needle) || strings.Contains(strings.ToLower(r.City), needle) {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		return fail(fmt.Sprintf("No restaurants found in %s. We have locations in: %s", location, strings.Join(knownCities(restaurants), ", ")))
	}

	fitting := matches[:0]
	for _, r := range matches {
		if r.SeatingCapacity >= a.PartySize {
			fitting = append(fitting, r)
		}
	}
	if len(fitting) == 0 {
		return fail(fmt.Sprintf("No restaurants in %s can accommodate %d people.", location, a.PartySize))
	}

	sort.SliceStable(fitting, func(i, j int) bool {
		return fitting[i].SeatingCapacity > fitting[j].SeatingCapacity
	})
	if len(fitting) > maxSearchResults {
		fitting = fitting[:maxSearchResults]
	}

	out := SearchOutput{Restaurants: make([]recordx.RestaurantSummary, 0, len(fitting))}
	for _, r := range fitting {
		out.Restaurants = append(out.Restaurants, recordx.RestaurantSummary{
			Restaurant:     r,
			AvailableTimes: Slots(a.Time),
		})
	}

	log.Debug().
		Str("location", location).
		Int("party_size", a.PartySize).
		Int("results", len(out.Restaurants)).
		Msg("search_restaurants executed")
	return succeeded(contractx.ActionSearch, out), nil
}

func knownCities(restaurants []recordx.Restaurant) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range restaurants {
		if r.City == "" {
			continue
		}
		if _, ok := seen[r.City]; ok {
			continue
		}
		seen[r.City] = struct{}{}
		out = append(out, r.City)
	}
	sort.Strings(out)
	return out
}
