package tool

import (
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/state"
)

// Infos returns every action schema the arbiter understands.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: string(contractx.ActionSearch),
			Desc: "Find available restaurants matching customer criteria. Extract all parameters from natural language.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"location":   {Type: schema.String, Desc: "City or area name (e.g., 'Bandra', 'Mumbai', 'Bangalore')", Required: true},
				"date":       {Type: schema.String, Desc: "Booking date in YYYY-MM-DD format. Convert 'tomorrow' or 'next Friday' to an actual date.", Required: true},
				"time":       {Type: schema.String, Desc: "Preferred time in HH:MM 24-hour format. Convert '8pm' to '20:00'.", Required: true},
				"party_size": {Type: schema.Integer, Desc: "Number of people.", Required: true},
			}),
		},
		{
			Name: string(contractx.ActionBook),
			Desc: "Select a restaurant from search results and book it. Call only when the user selected a restaurant AND gave their name and 10-digit phone number.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"restaurant_index": {Type: schema.Integer, Desc: "Zero-based index into the presented options.", Required: true},
				"customer_name":    {Type: schema.String, Desc: "Customer name exactly as the user wrote it.", Required: true},
				"phone":            {Type: schema.String, Desc: "10-digit phone number exactly as the user wrote it.", Required: true},
				"special_requests": {Type: schema.String, Desc: "Optional special requests."},
			}),
		},
		{
			Name: string(contractx.ActionFind),
			Desc: "Look up an existing reservation by phone number or confirmation ID.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"phone_or_id": {Type: schema.String, Desc: "10-digit phone number or confirmation ID provided by the user.", Required: true},
			}),
		},
		{
			Name: string(contractx.ActionUpdate),
			Desc: "Change the date, time or party size of an existing reservation.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"reservation_id": {Type: schema.String, Desc: "Confirmation ID of the reservation.", Required: true},
				"new_date":       {Type: schema.String, Desc: "New date in YYYY-MM-DD format."},
				"new_time":       {Type: schema.String, Desc: "New time in HH:MM 24-hour format."},
				"new_party_size": {Type: schema.Integer, Desc: "New number of people."},
			}),
		},
		{
			Name: string(contractx.ActionCancel),
			Desc: "Cancel an existing reservation by confirmation ID or phone number.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"reservation_id": {Type: schema.String, Desc: "Confirmation ID of the reservation."},
				"phone_or_id":    {Type: schema.String, Desc: "Phone number or confirmation ID."},
				"phone":          {Type: schema.String, Desc: "10-digit phone number."},
			}),
		},
	}
}

// Catalog is the per-turn catalogue. Lookup and cancellation stay hidden until a
// valid phone is on record.
func Catalog(dc *statex.DialogueContext) []*schema.ToolInfo {
	all := Infos()
	if dc.HasValidPhone() {
		return all
	}
	out := make([]*schema.ToolInfo, 0, len(all))
	for _, info := range all {
		switch contractx.ActionName(info.Name) {
		case contractx.ActionFind, contractx.ActionCancel:
			continue
		}
		out = append(out, info)
	}
	return out
}
