package arbiternode

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Reservation-Dialogue/agent/extract"
	statex "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/state"
	toolx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/tool"
)

// GateAction decides whether the proposal may run. Text proposals and rejected calls
// are answered here; an accepted call is left in TurnState.Action.
func GateAction(in *TurnState, lookback int) (*TurnState, error) {
	if in == nil || in.Conversation == nil {
		return nil, fmt.Errorf("%w: conversation is nil", contractx.ErrValidation)
	}
	if in.Answered() {
		return in, nil
	}
	dc := &in.Conversation.Context

	p := in.Proposal
	if !p.HasCall() {
		text := p.Text
		if text == "" {
			text = MsgDefaultGreeting
		}
		in.reply(text)
		return in, nil
	}

	action, err := contractx.ParseAction(*p.Call)
	if err != nil {
		log.Warn().Err(err).
			Str("session_id", in.SessionID).
			Str("tool", p.Call.Tool).
			Msg("arbiter: proposed call rejected")
		if errors.Is(err, contractx.ErrSchemaViolation) && dc.HasOptions() {
			in.reply(MsgWhichOption)
			return in, nil
		}
		in.reply(clarification(dc))
		return in, nil
	}

	switch a := action.(type) {
	case contractx.FindAction:
		if !toolx.ValidLookupValue(a.PhoneOrID) {
			dc.ExpectLookup(statex.LookupFind)
			in.reply(MsgAskLookup)
			return in, nil
		}
	case contractx.SearchAction:
		if dc.HasOptions() && dc.SameSearch(a.Location, a.Date, a.Time, a.PartySize) {
			return gateRepeatedSearch(in, lookback)
		}
	case contractx.CancelAction:
		a = validCancelKeys(a)
		if len(a.Identifiers()) == 0 {
			if !dc.HasValidPhone() {
				dc.ExpectLookup(statex.LookupCancel)
				in.reply(MsgAskCancelLookup)
				return in, nil
			}
			a.PhoneOrID = dc.ExtractedPhone
		}
		action = a
	}

	in.Action = action
	return in, nil
}

// gateRepeatedSearch treats a search that repeats the one on screen as the user
// picking an option, and books once name and phone are known.
func gateRepeatedSearch(in *TurnState, lookback int) (*TurnState, error) {
	conv := in.Conversation
	dc := &conv.Context

	latest, _ := conv.Transcript.LatestUser()
	names := dc.OptionNames()
	recent := extract.Aggregate(conv.Transcript.UserContents(), names, lookback)
	sel := extract.Infer(latest, names).Merge(recent)
	if !sel.HasIndex() {
		if idx, ok := dc.SelectedIndex(); ok {
			sel.Index = &idx
		}
	}
	if !sel.HasIndex() || !dc.Select(*sel.Index) {
		in.reply(MsgWhichOption)
		return in, nil
	}

	phoneOK := extract.IsPhone(sel.Phone)
	nameOK := extract.PlausibleName(sel.CustomerName)
	switch {
	case phoneOK && nameOK:
		idx := *sel.Index
		in.Action = contractx.BookAction{
			RestaurantIndex: idx,
			CustomerName:    sel.CustomerName,
			Phone:           sel.Phone,
			SpecialRequests: sel.SpecialRequests,
		}
		in.Note = fmt.Sprintf("Interpreting your reply and proceeding to book: index=%d", idx)
	case !phoneOK && !nameOK:
		in.reply(MsgAskNameAndPhone)
	case !phoneOK:
		in.reply(MsgAskPhone)
	default:
		in.reply(MsgAskName)
	}

	log.Debug().
		Str("session_id", in.SessionID).
		Int("index", *sel.Index).
		Bool("phone", phoneOK).
		Bool("name", nameOK).
		Bool("earlier_option_ref", recent.Index != nil).
		Msg("arbiter: repeated search read as selection")
	return in, nil
}

// validCancelKeys drops identifiers that are labels rather than values.
func validCancelKeys(a contractx.CancelAction) contractx.CancelAction {
	keep := func(v string) string {
		if toolx.ValidLookupValue(v) {
			return v
		}
		return ""
	}
	return contractx.CancelAction{
		ReservationID: keep(a.ReservationID),
		PhoneOrID:     keep(a.PhoneOrID),
		Phone:         keep(a.Phone),
	}
}

func clarification(dc *statex.DialogueContext) string {
	if dc.HasOptions() {
		return fmt.Sprintf(msgClarifyWithOption, dc.AvailableOptions[0].Name)
	}
	return msgClarify
}

// Pending reports whether GateAction accepted a call for execution.
func (s *TurnState) Pending() bool {
	return s.Action != nil && !s.Answered()
}
