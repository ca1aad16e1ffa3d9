package arbiternode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/state"
)

func SaveConversation(ctx context.Context, in *TurnState, store statex.Store) (*TurnState, error) {
	if in == nil || in.Conversation == nil {
		return nil, fmt.Errorf("%w: conversation is nil", contractx.ErrValidation)
	}

	in.Conversation.Touch(in.Now)
	if err := in.Conversation.Validate(); err != nil {
		return nil, fmt.Errorf("conversation validation failed: %w", err)
	}
	if in.Detached {
		return in, nil
	}
	if err := store.Save(ctx, in.Conversation); err != nil {
		return nil, err
	}
	return in, nil
}

// PublishEvents hands queued events to the notifier. Delivery failures are logged
// and never change the reply.
func PublishEvents(ctx context.Context, in *TurnState, notifier contractx.Notifier) (*TurnState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}
	if notifier == nil {
		return in, nil
	}
	for _, ev := range in.Events {
		if err := notifier.Notify(ctx, ev); err != nil {
			log.Warn().Err(err).
				Str("session_id", in.SessionID).
				Str("kind", string(ev.Kind)).
				Str("confirmation_id", ev.Reservation.ConfirmationID).
				Msg("arbiter: notify failed")
		}
	}
	return in, nil
}
