// Package notify delivers reservation lifecycle events outside the dialogue.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	qstashx "github.com/tanpawarit/Chative-Reservation-Dialogue/pkg/qstash"
)

type Config struct {
	Destination string `split_words:"true"`
	Retries     int    `split_words:"true" default:"3"`
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Destination) != ""
}

// Publisher is the part of the QStash client the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, destination string, body any, opts ...qstashx.PublishOption) (string, error)
}

var (
	_ contractx.Notifier = (*QStash)(nil)
	_ contractx.Notifier = Noop{}
)

type QStash struct {
	client      Publisher
	destination string
	retries     int
}

func NewQStash(client Publisher, cfg Config) (*QStash, error) {
	if client == nil {
		return nil, errors.New("qstash client is required")
	}
	dest := strings.TrimSpace(cfg.Destination)
	if dest == "" {
		return nil, errors.New("notify destination is required")
	}
	return &QStash{client: client, destination: dest, retries: cfg.Retries}, nil
}

func (q *QStash) Notify(ctx context.Context, ev contractx.ReservationEvent) error {
	id, err := q.client.Publish(ctx, q.destination, ev,
		qstashx.WithDeduplicationID(dedupID(ev)),
		qstashx.WithRetries(q.retries),
	)
	if err != nil {
		return fmt.Errorf("notify %s: %w", ev.Kind, err)
	}
	log.Debug().
		Str("message_id", id).
		Str("kind", string(ev.Kind)).
		Str("confirmation_id", ev.Reservation.ConfirmationID).
		Msg("reservation event published")
	return nil
}

// dedupID is stable per reservation, kind and record state, so retried turns do not
// double-notify.
func dedupID(ev contractx.ReservationEvent) string {
	r := ev.Reservation
	return strings.Join([]string{r.ConfirmationID, string(ev.Kind), r.Date, r.Time, fmt.Sprint(r.PartySize)}, ":")
}

// Noop drops every event.
type Noop struct{}

func (Noop) Notify(context.Context, contractx.ReservationEvent) error { return nil }
