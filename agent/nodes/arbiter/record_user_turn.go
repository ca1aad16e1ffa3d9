package arbiternode

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Reservation-Dialogue/agent/extract"
	statex "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/state"
)

// RecordUserTurn appends the user text, refreshes the extracted contact details and
// consumes a pending lookup. The pending flag never survives past this turn.
func RecordUserTurn(in *TurnState, lookback int) (*TurnState, error) {
	if in == nil || in.Conversation == nil {
		return nil, fmt.Errorf("%w: conversation is nil", contractx.ErrValidation)
	}
	conv := in.Conversation
	dc := &conv.Context

	conv.Append(statex.RoleUser, in.Text, in.Now)

	contact := extract.Aggregate(conv.Transcript.UserContents(), nil, lookback)
	if contact.Phone != "" {
		dc.ExtractedPhone = contact.Phone
	}
	if contact.CustomerName != "" {
		dc.ExtractedCustomerName = contact.CustomerName
	}

	if dc.AwaitingLookupPhone {
		key := extract.ConfirmationID(in.Text)
		if key == "" {
			key = extract.Phone(in.Text)
		}
		in.LookupKey = key
		in.LookupIntent = dc.PendingLookup
		dc.ClearLookup()
	}
	return in, nil
}

// HasLookup reports whether this turn answers an earlier request for a lookup key.
func (s *TurnState) HasLookup() bool {
	return s.LookupKey != ""
}
