package contract

import (
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	recordx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/record"
	statex "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/state"
)

type AgentType string

const (
	AgentTypeArbiter AgentType = "arbiter"
)

type CompletionRequest struct {
	Transcript []statex.Turn           `json:"transcript"`
	Context    *statex.DialogueContext `json:"context"`
	Tools      []*schema.ToolInfo      `json:"-"`
	Now        time.Time               `json:"now"`
}

// Proposal is what the completion service hands back for one turn.
// Call is nil when the model answered in plain text.
type Proposal struct {
	Text string       `json:"text,omitempty"`
	Call *ToolRequest `json:"call,omitempty"`
}

func (p Proposal) HasCall() bool {
	return p.Call != nil
}

func TextProposal(text string) Proposal {
	return Proposal{Text: strings.TrimSpace(text)}
}

type ToolRequest struct {
	ID   string         `json:"id,omitempty"`
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (r ToolResult) Failed() bool {
	return r.Error != ""
}

type EventKind string

const (
	EventConfirmed EventKind = "reservation.confirmed"
	EventUpdated   EventKind = "reservation.updated"
	EventCancelled EventKind = "reservation.cancelled"
)

type ReservationEvent struct {
	Kind        EventKind           `json:"kind"`
	SessionID   string              `json:"session_id,omitempty"`
	Reservation recordx.Reservation `json:"reservation"`
	At          time.Time           `json:"at"`
}
