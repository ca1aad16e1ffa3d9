package tool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	recordx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/record"
	statex "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/state"
)

const (
	maxSearchResults     = 5
	defaultMaxPartySize  = 20
	constraintMaxPartyKW = "max_party_size"
)

// Toolbox executes the reservation actions against a record store. Load-modify-save
// cycles are serialized per toolbox.
type Toolbox struct {
	store  recordx.Store
	now    func() time.Time
	suffix func() string
	mu     sync.Mutex
}

type Option func(*Toolbox)

func WithClock(now func() time.Time) Option {
	return func(t *Toolbox) {
		if now != nil {
			t.now = now
		}
	}
}

// WithSuffix replaces the random confirmation suffix source.
func WithSuffix(suffix func() string) Option {
	return func(t *Toolbox) {
		if suffix != nil {
			t.suffix = suffix
		}
	}
}

func New(store recordx.Store, opts ...Option) *Toolbox {
	t := &Toolbox{
		store:  store,
		now:    time.Now,
		suffix: randomSuffix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// BookingContext is the slice of conversation state the booking executor may read.
type BookingContext struct {
	Options   []recordx.RestaurantSummary
	Date      string
	Time      string
	PartySize int
	UserTurns []string
}

func BookingContextFrom(conv *statex.Conversation) BookingContext {
	if conv == nil {
		return BookingContext{}
	}
	return BookingContext{
		Options:   conv.Context.AvailableOptions,
		Date:      conv.Context.Date,
		Time:      conv.Context.Time,
		PartySize: conv.Context.PartySize,
		UserTurns: conv.Transcript.UserContents(),
	}
}

// Execute dispatches one validated action. Domain rejections come back as
// ToolResult.Error; the Go error is reserved for store failures.
func (t *Toolbox) Execute(ctx context.Context, action contractx.Action, bc BookingContext) (contractx.ToolResult, error) {
	switch a := action.(type) {
	case contractx.SearchAction:
		return t.Search(ctx, a)
	case contractx.BookAction:
		return t.Book(ctx, a, bc)
	case contractx.FindAction:
		return t.Find(ctx, a)
	case contractx.UpdateAction:
		return t.Update(ctx, a)
	case contractx.CancelAction:
		return t.Cancel(ctx, a)
	case nil:
		return contractx.ToolResult{}, fmt.Errorf("%w: nil action", contractx.ErrUnknownAction)
	default:
		return contractx.ToolResult{Tool: string(action.Name())}, fmt.Errorf("%w: %T", contractx.ErrUnknownAction, action)
	}
}

func failed(name contractx.ActionName, msg string) contractx.ToolResult {
	return contractx.ToolResult{Tool: string(name), Error: msg}
}

func succeeded(name contractx.ActionName, result any) contractx.ToolResult {
	return contractx.ToolResult{Tool: string(name), Result: result}
}

// mutate runs fn over the current reservation set and saves it when fn reports a change.
func (t *Toolbox) mutate(ctx context.Context, fn func([]recordx.Reservation) ([]recordx.Reservation, bool)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	reservations, err := t.store.LoadReservations(ctx)
	if err != nil {
		return fmt.Errorf("load reservations: %w", err)
	}
	next, changed := fn(reservations)
	if !changed {
		return nil
	}
	if err := t.store.SaveReservations(ctx, next); err != nil {
		return fmt.Errorf("save reservations: %w", err)
	}
	log.Debug().Int("reservations", len(next)).Msg("reservations saved")
	return nil
}
