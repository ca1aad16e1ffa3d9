package contract

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

type ActionName string

const (
	ActionSearch = ActionName("search_restaurants")
	ActionBook   = ActionName("select_restaurant")
	ActionFind   = ActionName("find_reservation")
	ActionUpdate = ActionName("update_reservation")
	ActionCancel = ActionName("cancel_reservation")

	// legacy name some prompts still produce for ActionBook
	actionBookAlias = ActionName("select_restaurant_and_book")
)

// Action is the closed set of operations the arbiter may execute.
// Only the variants in this file implement it.
type Action interface {
	Name() ActionName
	isAction()
}

type SearchAction struct {
	Location  string `mapstructure:"location" json:"location"`
	Date      string `mapstructure:"date" json:"date"`
	Time      string `mapstructure:"time" json:"time"`
	PartySize int    `mapstructure:"party_size" json:"party_size"`
}

type BookAction struct {
	RestaurantIndex int    `mapstructure:"restaurant_index" json:"restaurant_index"`
	CustomerName    string `mapstructure:"customer_name" json:"customer_name"`
	Phone           string `mapstructure:"phone" json:"phone"`
	SpecialRequests string `mapstructure:"special_requests" json:"special_requests,omitempty"`
}

type FindAction struct {
	PhoneOrID string `mapstructure:"phone_or_id" json:"phone_or_id"`
}

type UpdateAction struct {
	ReservationID string `mapstructure:"reservation_id" json:"reservation_id"`
	NewDate       string `mapstructure:"new_date" json:"new_date,omitempty"`
	NewTime       string `mapstructure:"new_time" json:"new_time,omitempty"`
	NewPartySize  int    `mapstructure:"new_party_size" json:"new_party_size,omitempty"`
}

type CancelAction struct {
	ReservationID string `mapstructure:"reservation_id" json:"reservation_id,omitempty"`
	PhoneOrID     string `mapstructure:"phone_or_id" json:"phone_or_id,omitempty"`
	Phone         string `mapstructure:"phone" json:"phone,omitempty"`
}

func (SearchAction) Name() ActionName { return ActionSearch }
func (BookAction) Name() ActionName   { return ActionBook }
func (FindAction) Name() ActionName   { return ActionFind }
func (UpdateAction) Name() ActionName { return ActionUpdate }
func (CancelAction) Name() ActionName { return ActionCancel }

func (SearchAction) isAction() {}
func (BookAction) isAction()   {}
func (FindAction) isAction()   {}
func (UpdateAction) isAction() {}
func (CancelAction) isAction() {}

// Identifiers returns the cancel keys in resolution order.
func (c CancelAction) Identifiers() []string {
	out := make([]string, 0, 3)
	for _, v := range []string{c.ReservationID, c.PhoneOrID, c.Phone} {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ParseAction maps a raw model call onto one of the closed action variants.
func ParseAction(req ToolRequest) (Action, error) {
	name := ActionName(strings.TrimSpace(req.Tool))
	args := req.Args
	if args == nil {
		args = map[string]any{}
	}

	switch name {
	case ActionSearch:
		var a SearchAction
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		a.Location = strings.TrimSpace(a.Location)
		a.Date = strings.TrimSpace(a.Date)
		a.Time = strings.TrimSpace(a.Time)
		return a, nil
	case ActionBook, actionBookAlias:
		if _, ok := args["restaurant_index"]; !ok {
			return nil, fmt.Errorf("%w: restaurant_index is required", ErrSchemaViolation)
		}
		var a BookAction
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		a.CustomerName = strings.TrimSpace(a.CustomerName)
		a.Phone = strings.TrimSpace(a.Phone)
		a.SpecialRequests = strings.TrimSpace(a.SpecialRequests)
		return a, nil
	case ActionFind:
		return FindAction{
			PhoneOrID: firstString(args, "phone_or_id", "phone", "confirmation_id", "id"),
		}, nil
	case ActionUpdate:
		var a UpdateAction
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		a.ReservationID = firstString(args, "reservation_id", "confirmation_id", "reservationId")
		a.NewDate = strings.TrimSpace(a.NewDate)
		a.NewTime = strings.TrimSpace(a.NewTime)
		return a, nil
	case ActionCancel:
		return CancelAction{
			ReservationID: firstString(args, "reservation_id", "reservationId", "confirmation_id"),
			PhoneOrID:     firstString(args, "phone_or_id"),
			Phone:         firstString(args, "phone"),
		}, nil
	case "":
		return nil, fmt.Errorf("%w: empty action name", ErrUnknownAction)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
}

// Describe renders the human-readable summary kept in the transcript instead of the
// raw structured call.
func Describe(a Action) string {
	var parts []string
	add := func(k string, v any) {
		s := strings.TrimSpace(cast.ToString(v))
		if s == "" || s == "0" {
			return
		}
		parts = append(parts, k+"="+s)
	}

	switch v := a.(type) {
	case SearchAction:
		add("location", v.Location)
		add("date", v.Date)
		add("time", v.Time)
		add("party_size", v.PartySize)
	case BookAction:
		parts = append(parts, fmt.Sprintf("restaurant_index=%d", v.RestaurantIndex))
		add("customer_name", v.CustomerName)
		add("phone", v.Phone)
		add("special_requests", v.SpecialRequests)
	case FindAction:
		add("phone_or_id", v.PhoneOrID)
	case UpdateAction:
		add("reservation_id", v.ReservationID)
		add("new_date", v.NewDate)
		add("new_time", v.NewTime)
		add("new_party_size", v.NewPartySize)
	case CancelAction:
		add("reservation_id", v.ReservationID)
		add("phone_or_id", v.PhoneOrID)
		add("phone", v.Phone)
	}

	if len(parts) == 0 {
		return fmt.Sprintf("Calling %s", a.Name())
	}
	return fmt.Sprintf("Calling %s with %s", a.Name(), strings.Join(parts, ", "))
}

func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("%w: build args decoder: %v", ErrSchemaViolation, err)
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("%w: decode args: %v", ErrSchemaViolation, err)
	}
	return nil
}

func firstString(args map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := args[k]
		if !ok || v == nil {
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}
