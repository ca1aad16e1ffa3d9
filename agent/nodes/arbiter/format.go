package arbiternode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	recordx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/record"
	toolx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/tool"
)

const (
	MsgUpstreamFailure = "I'm having trouble connecting right now. Please try again in a moment."
	MsgDefaultGreeting = "I'm here to help with your reservation!"
	MsgAskLookup       = "Sure, could you provide your 10-digit phone number or your confirmation ID so I can look up your reservation?"
	MsgAskCancelLookup = "Sure, could you provide your 10-digit phone number or your confirmation ID so I can find the reservation to cancel?"
	MsgWhichOption     = "I already have a few options. Which one would you like (1, 2, or the restaurant name)? Also please provide your name and 10-digit phone number to complete the booking."
	MsgAskNameAndPhone = "Great, could you please provide your name and 10-digit phone number so I can complete the booking?"
	MsgAskPhone        = "Great, please provide your 10-digit phone number to complete the booking."
	MsgAskName         = "Great, please provide your name to complete the booking."

	msgClarify           = "I'd be happy to help you with your reservation! Could you please provide your name and phone number?"
	msgClarifyWithOption = "I'd be happy to help you book at %s! To complete your reservation, could you please provide your name and phone number?"
	msgNoAvailability    = "I couldn't find any availability for that time. Would you like to try a different time or location?"
	msgReservationAbsent = "I couldn't find a reservation with that information. Could you provide your confirmation ID or phone number?"
)

// Format renders an executor result for the user. Rejections are already phrased as
// a question and pass through unchanged.
func Format(res contractx.ToolResult) string {
	if res.Failed() {
		return res.Error
	}
	switch out := res.Result.(type) {
	case toolx.SearchOutput:
		return formatSearch(out.Restaurants)
	case toolx.BookingOutput:
		return formatBooking(out)
	case toolx.FindOutput:
		if !out.Found || out.Reservation == nil {
			return msgReservationAbsent
		}
		return formatReservation(*out.Reservation)
	case toolx.UpdateOutput:
		return formatUpdate(out)
	case toolx.CancelOutput:
		return formatCancel(out)
	}
	return "✅ Done!"
}

func formatSearch(options []recordx.RestaurantSummary) string {
	if len(options) == 0 {
		return msgNoAvailability
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found **%d great option(s)**:\n\n", len(options))
	for i, r := range options {
		if i == 5 {
			break
		}
		times := "Check availability"
		if len(r.AvailableTimes) > 0 {
			times = strings.Join(r.AvailableTimes[:min(3, len(r.AvailableTimes))], ", ")
		}
		fmt.Fprintf(&b, "**%d. %s** 📍\n", i+1, r.Name)
		fmt.Fprintf(&b, "   • Location: %s\n", orNA(r.Address))
		fmt.Fprintf(&b, "   • Available: %s\n", times)
		fmt.Fprintf(&b, "   • Capacity: %d seats\n", r.SeatingCapacity)
		if len(r.Features) > 0 {
			fmt.Fprintf(&b, "   • Features: %s\n", strings.Join(r.Features[:min(2, len(r.Features))], ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("Which one would you like? Please also provide your name and phone number so I can complete the booking!")
	return b.String()
}

func formatBooking(out toolx.BookingOutput) string {
	r := out.Reservation
	var b strings.Builder
	b.WriteString("✅ **Booking Confirmed!**\n\n")
	fmt.Fprintf(&b, "🎫 **Confirmation ID:** `%s`\n\n", out.ConfirmationID)
	fmt.Fprintf(&b, "📍 **Restaurant:** %s\n", r.RestaurantName)
	fmt.Fprintf(&b, "📅 **Date:** %s\n", r.Date)
	fmt.Fprintf(&b, "🕐 **Time:** %s\n", r.Time)
	fmt.Fprintf(&b, "👥 **Party Size:** %d people", r.PartySize)
	if r.SpecialRequests != "" {
		fmt.Fprintf(&b, "\n\n📝 **Special Requests:** %s", r.SpecialRequests)
	}
	b.WriteString("\n\nSee you soon! 🎉\n\n*(You'll receive SMS confirmation shortly)*")
	return b.String()
}

func formatReservation(r recordx.Reservation) string {
	status := r.Status
	if status == "" {
		status = recordx.StatusConfirmed
	}

	var b strings.Builder
	b.WriteString("**Your Reservation** 📋\n\n")
	fmt.Fprintf(&b, "🎫 **Confirmation ID:** `%s`\n", r.ConfirmationID)
	fmt.Fprintf(&b, "📍 **Restaurant:** %s\n", r.RestaurantName)
	fmt.Fprintf(&b, "📅 **Date:** %s\n", r.Date)
	fmt.Fprintf(&b, "🕐 **Time:** %s\n", r.Time)
	fmt.Fprintf(&b, "👥 **Party Size:** %d people\n", r.PartySize)
	fmt.Fprintf(&b, "📱 **Phone:** %s\n", r.Phone)
	fmt.Fprintf(&b, "📌 **Status:** %s", strings.ToUpper(string(status)))
	if r.SpecialRequests != "" {
		fmt.Fprintf(&b, "\n\n📝 **Special Requests:** %s", r.SpecialRequests)
	}
	b.WriteString("\n\nNeed to modify or cancel? Just let me know!")
	return b.String()
}

func formatUpdate(out toolx.UpdateOutput) string {
	r := out.Reservation
	var b strings.Builder
	b.WriteString("✅ **Reservation Updated!**\n\n")
	fmt.Fprintf(&b, "🎫 **Confirmation ID:** `%s`\n\n", out.ConfirmationID)
	b.WriteString("**New Details:**\n")
	fmt.Fprintf(&b, "📅 **Date:** %s\n", r.Date)
	fmt.Fprintf(&b, "🕐 **Time:** %s\n", r.Time)
	fmt.Fprintf(&b, "👥 **Party Size:** %d people\n\n", r.PartySize)
	b.WriteString("All set! See you then! 🎉")
	return b.String()
}

func formatCancel(out toolx.CancelOutput) string {
	var b strings.Builder
	b.WriteString("✅ **Reservation Cancelled**\n\n")
	fmt.Fprintf(&b, "🎫 **Confirmation ID:** `%s`\n\n", out.ConfirmationID)
	b.WriteString("Your reservation has been cancelled. We're sorry we'll miss you!\n\n")
	b.WriteString("Would you like to make a new booking for a different date? I'm here to help! 😊")
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
