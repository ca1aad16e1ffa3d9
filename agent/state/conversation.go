package state

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	recordx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/record"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Turn is one transcript entry. Assistant turns that stand for a proposed call hold
// only the human-readable summary, never the raw call.
type Turn struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	Name    string    `json:"name,omitempty"` // tool name for tool turns
	At      time.Time `json:"at"`
}

// Transcript is append-only.
type Transcript []Turn

func (t Transcript) Window(n int) []Turn {
	if n <= 0 || len(t) <= n {
		return append([]Turn(nil), t...)
	}
	return append([]Turn(nil), t[len(t)-n:]...)
}

// UserContents returns every user turn's text, oldest first.
func (t Transcript) UserContents() []string {
	out := make([]string, 0, len(t))
	for _, turn := range t {
		if turn.Role == RoleUser {
			out = append(out, turn.Content)
		}
	}
	return out
}

func (t Transcript) LatestUser() (string, bool) {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Role == RoleUser && strings.TrimSpace(t[i].Content) != "" {
			return t[i].Content, true
		}
	}
	return "", false
}

type LookupIntent string

const (
	LookupNone   LookupIntent = ""
	LookupFind   LookupIntent = "find"
	LookupCancel LookupIntent = "cancel"
)

type Phase string

const (
	PhaseIdle                    Phase = "idle"
	PhaseOptionsPresented        Phase = "options_presented"
	PhaseSelectionPendingDetails Phase = "selection_pending_details"
	PhaseBooked                  Phase = "booked"
)

var tenDigits = regexp.MustCompile(`^\d{10}$`)

// DialogueContext is the per-conversation working memory the arbiter carries between turns.
type DialogueContext struct {
	PartySize int    `json:"party_size,omitempty"`
	Location  string `json:"location,omitempty"`
	Date      string `json:"date,omitempty"`
	Time      string `json:"time,omitempty"`

	AvailableOptions        []recordx.RestaurantSummary `json:"available_options,omitempty"`
	SelectedRestaurantIndex *int                        `json:"selected_restaurant_index,omitempty"`

	ExtractedPhone        string `json:"extracted_phone,omitempty"`
	ExtractedCustomerName string `json:"extracted_customer_name,omitempty"`

	AwaitingLookupPhone bool         `json:"awaiting_lookup_phone,omitempty"`
	PendingLookup       LookupIntent `json:"pending_lookup,omitempty"`

	LastConfirmationID string `json:"last_confirmation_id,omitempty"`
}

func (c *DialogueContext) HasOptions() bool {
	return c != nil && len(c.AvailableOptions) > 0
}

// SelectedIndex returns the tentative selection only while it still addresses an option.
func (c *DialogueContext) SelectedIndex() (int, bool) {
	if c == nil || c.SelectedRestaurantIndex == nil {
		return 0, false
	}
	idx := *c.SelectedRestaurantIndex
	if idx < 0 || idx >= len(c.AvailableOptions) {
		return 0, false
	}
	return idx, true
}

func (c *DialogueContext) Select(idx int) bool {
	if idx < 0 || idx >= len(c.AvailableOptions) {
		return false
	}
	c.SelectedRestaurantIndex = &idx
	return true
}

// ApplySearch records the criteria of a search attempt and replaces the option set.
// Anything tied to the previous options is dropped.
func (c *DialogueContext) ApplySearch(location, date, hhmm string, partySize int, options []recordx.RestaurantSummary) {
	c.Location = location
	c.Date = date
	c.Time = hhmm
	c.PartySize = partySize
	c.AvailableOptions = options
	c.SelectedRestaurantIndex = nil
	c.ExtractedPhone = ""
	c.ExtractedCustomerName = ""
	c.LastConfirmationID = ""
}

// SameSearch reports whether the criteria match the last search, ignoring case and
// surrounding whitespace.
func (c *DialogueContext) SameSearch(location, date, hhmm string, partySize int) bool {
	if c == nil {
		return false
	}
	return normalize(location) == normalize(c.Location) &&
		normalize(date) == normalize(c.Date) &&
		normalizeClock(hhmm) == normalizeClock(c.Time) &&
		partySize == c.PartySize
}

func (c *DialogueContext) HasValidPhone() bool {
	return c != nil && tenDigits.MatchString(c.ExtractedPhone)
}

// ExpectLookup enters Lookup-Pending for the given intent.
func (c *DialogueContext) ExpectLookup(intent LookupIntent) {
	if intent == LookupNone {
		intent = LookupFind
	}
	c.AwaitingLookupPhone = true
	c.PendingLookup = intent
}

func (c *DialogueContext) ClearLookup() {
	c.AwaitingLookupPhone = false
	c.PendingLookup = LookupNone
}

func (c *DialogueContext) CompleteBooking(confirmationID string) {
	c.LastConfirmationID = confirmationID
	c.SelectedRestaurantIndex = nil
}

func (c *DialogueContext) OptionNames() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.AvailableOptions))
	for i, o := range c.AvailableOptions {
		out[i] = o.Name
	}
	return out
}

func (c *DialogueContext) Phase() Phase {
	switch {
	case c == nil:
		return PhaseIdle
	case c.LastConfirmationID != "":
		return PhaseBooked
	case !c.HasOptions():
		return PhaseIdle
	}
	if _, ok := c.SelectedIndex(); ok {
		return PhaseSelectionPendingDetails
	}
	return PhaseOptionsPresented
}

// Summary renders the situational block given to the completion service. It is empty
// when no options are on the table.
func (c *DialogueContext) Summary() string {
	if !c.HasOptions() {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "There are currently %d restaurants available from a previous search:\n", len(c.AvailableOptions))
	for i, o := range c.AvailableOptions {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "  %d. %s\n", i+1, o.Name)
	}
	b.WriteString("\nIf the user is selecting one of these restaurants (e.g., says '1', 'first one', or the restaurant name), DO NOT call search_restaurants again.\n")
	b.WriteString("\nBOOKING INFORMATION STATUS:\n")
	fmt.Fprintf(&b, "- Party size: %s\n", orNotSet(c.PartySize))
	fmt.Fprintf(&b, "- Date: %s\n", orNotSet(c.Date))
	fmt.Fprintf(&b, "- Time: %s\n", orNotSet(c.Time))
	b.WriteString("\nTo complete a booking, you MUST extract customer name and phone from the conversation.")
	return b.String()
}

func orNotSet(v any) string {
	switch x := v.(type) {
	case string:
		if x == "" {
			return "NOT SET"
		}
		return x
	case int:
		if x <= 0 {
			return "NOT SET"
		}
		return fmt.Sprintf("%d", x)
	}
	return "NOT SET"
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// normalizeClock maps "8:00" and "08:00" onto the same value.
func normalizeClock(s string) string {
	s = normalize(s)
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04")
	}
	return s
}

var (
	ErrNilConversation = errors.New("conversation is nil")
	ErrInvalidSession  = errors.New("session id is empty")
	ErrStaleSelection  = errors.New("selected restaurant index out of range")
)

// Conversation is the unit persisted per session: dialogue context plus transcript.
type Conversation struct {
	SessionID  string          `json:"session_id"`
	Context    DialogueContext `json:"context"`
	Transcript Transcript      `json:"transcript,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func NewConversation(sessionID string, now time.Time) *Conversation {
	return &Conversation{
		SessionID: sessionID,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (c *Conversation) Touch(now time.Time) {
	c.UpdatedAt = now.UTC()
}

func (c *Conversation) Append(role Role, content string, now time.Time) {
	c.Transcript = append(c.Transcript, Turn{Role: role, Content: content, At: now.UTC()})
}

func (c *Conversation) AppendTool(name, content string, now time.Time) {
	c.Transcript = append(c.Transcript, Turn{Role: RoleTool, Name: name, Content: content, At: now.UTC()})
}

// Reset drops context and transcript but keeps the session identity.
func (c *Conversation) Reset(now time.Time) {
	c.Context = DialogueContext{}
	c.Transcript = nil
	c.Touch(now)
}

func (c *Conversation) Validate() error {
	if c == nil {
		return ErrNilConversation
	}
	if strings.TrimSpace(c.SessionID) == "" {
		return ErrInvalidSession
	}
	if idx := c.Context.SelectedRestaurantIndex; idx != nil {
		if *idx < 0 || *idx >= len(c.Context.AvailableOptions) {
			return fmt.Errorf("%w: %d of %d", ErrStaleSelection, *idx, len(c.Context.AvailableOptions))
		}
	}
	return nil
}
