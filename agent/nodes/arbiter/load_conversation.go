package arbiternode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/state"
)

func LoadConversation(ctx context.Context, in *TurnState, store statex.Store) (*TurnState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}
	if in.Detached {
		return in, nil
	}

	conv, err := store.Load(ctx, in.SessionID)
	switch {
	case err == nil:
		in.Conversation = conv
	case errors.Is(err, statex.ErrStateNotFound):
		in.Conversation = statex.NewConversation(in.SessionID, in.Now)
	default:
		return nil, err
	}
	return in, nil
}
