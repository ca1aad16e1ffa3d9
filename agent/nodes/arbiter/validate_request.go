package arbiternode

import (
	"context"
	"errors"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/state"
	toolx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/tool"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = statex.ErrInvalidSession
)

// Executor runs one validated action against the record store.
type Executor interface {
	Execute(ctx context.Context, action contractx.Action, bc toolx.BookingContext) (contractx.ToolResult, error)
}

type GraphInput struct {
	SessionID string
	Text      string

	// Conversation, when set, is used in place of the session store and is not saved.
	Conversation *statex.Conversation
}

type GraphOutput struct {
	Reply string
	Phase statex.Phase
}

type TurnState struct {
	SessionID string
	Text      string
	Now       time.Time
	Detached  bool

	Conversation *statex.Conversation

	LookupKey    string
	LookupIntent statex.LookupIntent

	Proposal contractx.Proposal
	Action   contractx.Action
	Note     string

	Reply  string
	Events []contractx.ReservationEvent
}

// Answered reports whether an earlier node already produced the reply.
func (s *TurnState) Answered() bool {
	return s.Reply != ""
}

func (s *TurnState) reply(text string) {
	s.Reply = text
	s.Conversation.Append(statex.RoleAssistant, text, s.Now)
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*TurnState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if in.Conversation != nil && sessionID == "" {
		sessionID = strings.TrimSpace(in.Conversation.SessionID)
	}
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &TurnState{
		SessionID:    sessionID,
		Text:         text,
		Now:          nowFn().UTC(),
		Detached:     in.Conversation != nil,
		Conversation: in.Conversation,
	}, nil
}
