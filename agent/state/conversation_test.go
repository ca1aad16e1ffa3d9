package state

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	recordx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/record"
)

func options(names ...string) []recordx.RestaurantSummary {
	out := make([]recordx.RestaurantSummary, len(names))
	for i, n := range names {
		out[i] = recordx.RestaurantSummary{Restaurant: recordx.Restaurant{ID: n, Name: n}}
	}
	return out
}

func TestDialogueContextPhase(t *testing.T) {
	t.Parallel()

	var c DialogueContext
	if got := c.Phase(); got != PhaseIdle {
		t.Fatalf("Phase() = %q, want idle", got)
	}

	c.ApplySearch("Bandra", "2025-11-25", "20:00", 2, options("A", "B"))
	if got := c.Phase(); got != PhaseOptionsPresented {
		t.Fatalf("Phase() = %q, want options_presented", got)
	}

	if !c.Select(1) {
		t.Fatal("Select(1) = false")
	}
	if got := c.Phase(); got != PhaseSelectionPendingDetails {
		t.Fatalf("Phase() = %q, want selection_pending_details", got)
	}

	c.CompleteBooking("MUM-251125-AB12")
	if got := c.Phase(); got != PhaseBooked {
		t.Fatalf("Phase() = %q, want booked", got)
	}
	if !c.HasOptions() {
		t.Fatal("options should survive a booking")
	}
}

func TestDialogueContextApplySearchClearsStaleValues(t *testing.T) {
	t.Parallel()

	var c DialogueContext
	c.ApplySearch("Bandra", "2025-11-25", "20:00", 2, options("A", "B", "C"))
	c.Select(2)
	c.ExtractedPhone = "9876543210"
	c.ExtractedCustomerName = "Rohit"

	c.ApplySearch("Juhu", "2025-11-26", "19:00", 4, options("D"))
	if c.SelectedRestaurantIndex != nil {
		t.Fatal("selection survived a new search")
	}
	if c.ExtractedPhone != "" || c.ExtractedCustomerName != "" {
		t.Fatal("extracted values survived a new search")
	}
}

func TestDialogueContextSelectedIndexBounds(t *testing.T) {
	t.Parallel()

	c := DialogueContext{AvailableOptions: options("A")}
	if c.Select(3) {
		t.Fatal("Select(3) accepted out-of-range index")
	}
	stale := 4
	c.SelectedRestaurantIndex = &stale
	if _, ok := c.SelectedIndex(); ok {
		t.Fatal("SelectedIndex() returned a stale index")
	}
}

func TestDialogueContextSameSearch(t *testing.T) {
	t.Parallel()

	base := DialogueContext{Location: "Bandra", Date: "2025-11-25", Time: "20:00", PartySize: 2}
	tests := []struct {
		name     string
		loc      string
		date     string
		hhmm     string
		party    int
		wantSame bool
	}{
		{name: "identical", loc: "Bandra", date: "2025-11-25", hhmm: "20:00", party: 2, wantSame: true},
		{name: "case and space", loc: "  bandra ", date: "2025-11-25", hhmm: "20:00", party: 2, wantSame: true},
		{name: "other party", loc: "Bandra", date: "2025-11-25", hhmm: "20:00", party: 4},
		{name: "other time", loc: "Bandra", date: "2025-11-25", hhmm: "19:00", party: 2},
		{name: "other place", loc: "Juhu", date: "2025-11-25", hhmm: "20:00", party: 2},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := base
			if got := c.SameSearch(tt.loc, tt.date, tt.hhmm, tt.party); got != tt.wantSame {
				t.Fatalf("SameSearch() = %v, want %v", got, tt.wantSame)
			}
		})
	}
}

func TestDialogueContextSameSearchPadsClock(t *testing.T) {
	t.Parallel()

	c := DialogueContext{Location: "Bandra", Date: "2025-11-25", Time: "8:05", PartySize: 2}
	if !c.SameSearch("Bandra", "2025-11-25", "08:05", 2) {
		t.Fatal("SameSearch() should treat 8:05 and 08:05 as equal")
	}
	if c.SameSearch("Bandra", "2025-11-25", "20:05", 2) {
		t.Fatal("SameSearch() matched 8:05 against 20:05")
	}
}

func TestDialogueContextLookup(t *testing.T) {
	t.Parallel()

	var c DialogueContext
	c.ExpectLookup(LookupCancel)
	if !c.AwaitingLookupPhone || c.PendingLookup != LookupCancel {
		t.Fatalf("ExpectLookup() = %+v", c)
	}
	c.ClearLookup()
	if c.AwaitingLookupPhone || c.PendingLookup != LookupNone {
		t.Fatalf("ClearLookup() = %+v", c)
	}
	c.ExpectLookup(LookupNone)
	if c.PendingLookup != LookupFind {
		t.Fatalf("ExpectLookup(none) intent = %q, want find", c.PendingLookup)
	}
}

func TestDialogueContextHasValidPhone(t *testing.T) {
	t.Parallel()

	for phone, want := range map[string]bool{
		"9876543210":  true,
		"987654321":   false,
		"98765432100": false,
		"98765x3210":  false,
		"":            false,
	} {
		c := DialogueContext{ExtractedPhone: phone}
		if got := c.HasValidPhone(); got != want {
			t.Fatalf("HasValidPhone(%q) = %v, want %v", phone, got, want)
		}
	}
}

func TestDialogueContextSummary(t *testing.T) {
	t.Parallel()

	var c DialogueContext
	if c.Summary() != "" {
		t.Fatal("Summary() should be empty without options")
	}
	c.ApplySearch("Bandra", "2025-11-25", "20:00", 2, options("Sea Breeze", "Spice Route", "Olive", "Fourth"))
	got := c.Summary()
	for _, want := range []string{"4 restaurants", "1. Sea Breeze", "3. Olive", "Party size: 2", "Time: 20:00"} {
		if !strings.Contains(got, want) {
			t.Fatalf("Summary() missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Fourth") {
		t.Fatalf("Summary() should preview at most three options:\n%s", got)
	}
}

func TestTranscriptWindowAndUserTurns(t *testing.T) {
	t.Parallel()

	conv := NewConversation("s", time.Now())
	for i := 0; i < 6; i++ {
		conv.Append(RoleUser, "u", time.Now())
		conv.AppendTool("search_restaurants", "{}", time.Now())
	}
	conv.Append(RoleUser, "latest", time.Now())

	if got := len(conv.Transcript.Window(10)); got != 10 {
		t.Fatalf("Window(10) len = %d", got)
	}
	if got := len(conv.Transcript.UserContents()); got != 7 {
		t.Fatalf("UserContents() len = %d", got)
	}
	latest, ok := conv.Transcript.LatestUser()
	if !ok || latest != "latest" {
		t.Fatalf("LatestUser() = %q, %v", latest, ok)
	}
}

func TestConversationValidate(t *testing.T) {
	t.Parallel()

	if err := (*Conversation)(nil).Validate(); !errors.Is(err, ErrNilConversation) {
		t.Fatalf("Validate(nil) = %v", err)
	}
	conv := NewConversation(" ", time.Now())
	if err := conv.Validate(); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Validate() = %v, want ErrInvalidSession", err)
	}
	conv.SessionID = "s"
	idx := 1
	conv.Context.SelectedRestaurantIndex = &idx
	if err := conv.Validate(); !errors.Is(err, ErrStaleSelection) {
		t.Fatalf("Validate() = %v, want ErrStaleSelection", err)
	}
}

func TestConversationReset(t *testing.T) {
	t.Parallel()

	conv := NewConversation("s", time.Now())
	conv.Append(RoleUser, "hi", time.Now())
	conv.Context.ExpectLookup(LookupFind)
	conv.Reset(time.Now())
	if len(conv.Transcript) != 0 || conv.Context.AwaitingLookupPhone {
		t.Fatalf("Reset() left state behind: %+v", conv)
	}
	if conv.SessionID != "s" {
		t.Fatal("Reset() dropped the session id")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemoryStore()
	if _, err := store.Load(ctx, "s"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() error = %v, want ErrStateNotFound", err)
	}

	conv := NewConversation("s", time.Now())
	conv.Context.ApplySearch("Bandra", "2025-11-25", "20:00", 2, options("A"))
	if err := store.Save(ctx, conv); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	conv.Context.AvailableOptions[0].Name = "mutated"

	got, err := store.Load(ctx, "s")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Context.AvailableOptions[0].Name != "A" {
		t.Fatal("store shares memory with the caller")
	}

	if err := store.Delete(ctx, "s"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, "s"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() after Delete error = %v", err)
	}
}
