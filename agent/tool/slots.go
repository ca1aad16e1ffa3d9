package tool

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	serviceOpenHour  = 11
	serviceCloseHour = 23
)

var (
	slotOffsets  = []int{-30, -15, 0, 15, 30}
	defaultSlots = []string{"19:00", "19:30", "20:00", "20:30", "21:00"}
)

// Slots returns candidate times around requested inside [11:00, 23:00).
// An unparseable request yields the default evening slots.
func Slots(requested string) []string {
	hour, minute, ok := parseClock(requested)
	if !ok {
		return append([]string(nil), defaultSlots...)
	}

	seen := make(map[string]struct{}, len(slotOffsets))
	out := make([]string, 0, len(slotOffsets))
	for _, offset := range slotOffsets {
		total := hour*60 + minute + offset
		h, m := floorDiv(total, 60), total-floorDiv(total, 60)*60
		if h < serviceOpenHour || h >= serviceCloseHour {
			continue
		}
		slot := fmt.Sprintf("%02d:%02d", h, m)
		if _, dup := seen[slot]; dup {
			continue
		}
		seen[slot] = struct{}{}
		out = append(out, slot)
	}
	sort.Strings(out)
	return out
}

func parseClock(s string) (int, int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return h, m, true
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
