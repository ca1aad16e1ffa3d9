package arbiternode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	toolx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/tool"
)

func ProposeAction(ctx context.Context, in *TurnState, completer contractx.Completer, window int) (*TurnState, error) {
	if in == nil || in.Conversation == nil {
		return nil, fmt.Errorf("%w: conversation is nil", contractx.ErrValidation)
	}
	conv := in.Conversation

	p, err := completer.Complete(ctx, contractx.CompletionRequest{
		Transcript: conv.Transcript.Window(window),
		Context:    &conv.Context,
		Tools:      toolx.Catalog(&conv.Context),
		Now:        in.Now,
	})
	if err != nil {
		// The apology is not recorded; the user turn is the only change this turn.
		log.Error().Err(err).Str("session_id", in.SessionID).Msg("arbiter: completion failed")
		in.Reply = MsgUpstreamFailure
		return in, nil
	}

	in.Proposal = p
	return in, nil
}
