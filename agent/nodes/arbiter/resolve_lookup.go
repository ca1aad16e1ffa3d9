package arbiternode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/state"
	toolx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/tool"
)

// ResolveLookup answers a pending lookup without consulting the completion service.
// A found reservation is cancelled when the pending intent was cancel, or for any
// lookup when autoCancel is set, in which case the lookup key itself is the cancel key.
func ResolveLookup(ctx context.Context, in *TurnState, exec Executor, autoCancel bool) (*TurnState, error) {
	if in == nil || in.Conversation == nil {
		return nil, fmt.Errorf("%w: conversation is nil", contractx.ErrValidation)
	}

	found, ok := run(ctx, in, exec, contractx.FindAction{PhoneOrID: in.LookupKey})
	if !ok {
		return in, nil
	}
	out, _ := found.Result.(toolx.FindOutput)

	var cancel *contractx.CancelAction
	switch {
	case found.Failed() || !out.Found || out.Reservation == nil:
	case in.LookupIntent == statex.LookupCancel:
		cancel = &contractx.CancelAction{ReservationID: out.Reservation.ConfirmationID}
	case autoCancel:
		cancel = &contractx.CancelAction{ReservationID: in.LookupKey}
	}

	if cancel == nil {
		in.reply(Format(found))
		return in, nil
	}

	log.Debug().
		Str("session_id", in.SessionID).
		Str("intent", string(in.LookupIntent)).
		Bool("auto_cancel", autoCancel).
		Msg("arbiter: cancelling looked-up reservation")

	cancelled, ok := run(ctx, in, exec, *cancel)
	if !ok {
		return in, nil
	}
	collectEvent(in, cancelled)
	in.reply(Format(cancelled))
	return in, nil
}

// run executes one action and records its raw result as a tool turn. A store failure
// answers the turn with the apology, appended after the call summary, and reports false.
func run(ctx context.Context, in *TurnState, exec Executor, action contractx.Action) (contractx.ToolResult, bool) {
	res, err := exec.Execute(ctx, action, toolx.BookingContextFrom(in.Conversation))
	if err != nil {
		log.Error().Err(err).
			Str("session_id", in.SessionID).
			Str("action", string(action.Name())).
			Msg("arbiter: action failed")
		in.reply(MsgUpstreamFailure)
		return contractx.ToolResult{}, false
	}
	in.Conversation.AppendTool(string(action.Name()), encodeResult(res), in.Now)
	return res, true
}
