package arbiternode

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/state"
	toolx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/tool"
)

func ExecuteAction(ctx context.Context, in *TurnState, exec Executor) (*TurnState, error) {
	if in == nil || in.Conversation == nil {
		return nil, fmt.Errorf("%w: conversation is nil", contractx.ErrValidation)
	}
	if in.Action == nil {
		return nil, fmt.Errorf("%w: no action to execute", contractx.ErrUnknownAction)
	}
	conv := in.Conversation
	dc := &conv.Context

	note := in.Note
	if note == "" {
		note = contractx.Describe(in.Action)
	}
	conv.Append(statex.RoleAssistant, note, in.Now)

	res, ok := run(ctx, in, exec, in.Action)
	if !ok {
		return in, nil
	}

	switch a := in.Action.(type) {
	case contractx.SearchAction:
		out, _ := res.Result.(toolx.SearchOutput)
		dc.ApplySearch(a.Location, a.Date, a.Time, a.PartySize, out.Restaurants)
	case contractx.BookAction:
		if out, ok := res.Result.(toolx.BookingOutput); ok && !res.Failed() {
			dc.CompleteBooking(out.ConfirmationID)
		}
	}
	collectEvent(in, res)

	log.Info().
		Str("session_id", in.SessionID).
		Str("action", string(in.Action.Name())).
		Bool("failed", res.Failed()).
		Str("phase", string(dc.Phase())).
		Msg("arbiter: action executed")

	in.reply(Format(res))
	return in, nil
}

// collectEvent queues a lifecycle event for successful mutations.
func collectEvent(in *TurnState, res contractx.ToolResult) {
	if res.Failed() {
		return
	}
	ev := contractx.ReservationEvent{SessionID: in.SessionID, At: in.Now}
	switch out := res.Result.(type) {
	case toolx.BookingOutput:
		ev.Kind, ev.Reservation = contractx.EventConfirmed, out.Reservation
	case toolx.UpdateOutput:
		ev.Kind, ev.Reservation = contractx.EventUpdated, out.Reservation
	case toolx.CancelOutput:
		ev.Kind, ev.Reservation = contractx.EventCancelled, out.Reservation
	default:
		return
	}
	in.Events = append(in.Events, ev)
}

func encodeResult(res contractx.ToolResult) string {
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Sprintf("%+v", res)
	}
	return string(b)
}
