// Package extract recovers phone numbers, names, option selections and special
// requests from raw user text. Every function is best-effort: finding nothing is
// the zero value, never an error.
package extract

import (
	"regexp"
	"strings"
)

var (
	phonePattern   = regexp.MustCompile(`\b(\d{10})\b`)
	namePattern    = regexp.MustCompile(`(?i)\b(?:i\s*['’]?m|i\s+am|my\s+name\s+is)\s+([A-Za-z][A-Za-z'\-]*(?:\s+[A-Za-z][A-Za-z'\-]*)?)`)
	nameCut        = regexp.MustCompile(`(?i)\band\b|\bmy\b|,|\d`)
	nameToken      = regexp.MustCompile(`^[A-Za-z'\-]+$`)
	confirmationID = regexp.MustCompile(`(?i)\b[A-Z]{3}-\d{6}-[A-Z0-9]{4}\b`)
)

// words that follow "I'm" without being a name
var nonNames = map[string]struct{}{
	"looking": {}, "interested": {}, "trying": {}, "going": {}, "planning": {},
	"here": {}, "not": {}, "a": {}, "an": {}, "the": {}, "hungry": {}, "fine": {},
	"good": {}, "ok": {}, "okay": {}, "sorry": {}, "just": {}, "also": {},
	"booking": {}, "calling": {}, "available": {}, "free": {}, "back": {},
	"in": {}, "at": {}, "with": {}, "from": {}, "so": {}, "very": {}, "still": {},
}

var ordinals = []struct {
	pattern *regexp.Regexp
	index   int
}{
	{regexp.MustCompile(`\bfirst\b|\b1st\b|\b1\b`), 0},
	{regexp.MustCompile(`\bsecond\b|\b2nd\b|\b2\b`), 1},
	{regexp.MustCompile(`\bthird\b|\b3rd\b|\b3\b`), 2},
	// bare 4 and 5 are too often party sizes
	{regexp.MustCompile(`\bfourth\b|\b4th\b`), 3},
	{regexp.MustCompile(`\bfifth\b|\b5th\b`), 4},
}

// Phone returns the first standalone run of exactly ten digits.
func Phone(text string) string {
	m := phonePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// IsPhone reports whether s is exactly ten digits.
func IsPhone(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ConfirmationID returns the first token shaped like a confirmation id, uppercased.
func ConfirmationID(text string) string {
	return strings.ToUpper(confirmationID.FindString(text))
}

// Name returns at most two alphabetic tokens following a self-introduction.
func Name(text string) string {
	for _, m := range namePattern.FindAllStringSubmatch(text, -1) {
		candidate := strings.TrimSpace(nameCut.Split(m[1], 2)[0])
		var tokens []string
		for _, tok := range strings.Fields(candidate) {
			if nameToken.MatchString(tok) {
				tokens = append(tokens, tok)
			}
		}
		if len(tokens) == 0 {
			continue
		}
		if _, skip := nonNames[strings.ToLower(tokens[0])]; skip {
			continue
		}
		if len(tokens) > 1 {
			if _, skip := nonNames[strings.ToLower(tokens[1])]; skip {
				tokens = tokens[:1]
			}
		}
		if len(tokens) > 2 {
			tokens = tokens[:2]
		}
		return strings.Join(tokens, " ")
	}
	return ""
}

// PlausibleName rejects empty names and names that join two people.
func PlausibleName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && !strings.Contains(strings.ToLower(name), " and ")
}

// SelectionIndex maps an ordinal word or digit, or else an option name mentioned in
// the text, onto a zero-based option index.
func SelectionIndex(text string, optionNames []string) (int, bool) {
	low := strings.ToLower(text)
	// the phone number is not an ordinal
	low = phonePattern.ReplaceAllString(low, " ")
	for _, o := range ordinals {
		if o.pattern.MatchString(low) {
			return o.index, true
		}
	}
	for i, name := range optionNames {
		n := strings.ToLower(strings.TrimSpace(name))
		if n != "" && strings.Contains(low, n) {
			return i, true
		}
	}
	return 0, false
}

// SpecialRequests tags birthday, dietary and seating mentions.
func SpecialRequests(text string) string {
	low := strings.ToLower(text)
	var tags []string
	if strings.Contains(low, "birthday") {
		tags = append(tags, "birthday")
	}
	if strings.Contains(low, "vegan") || strings.Contains(low, "vegetarian") {
		tags = append(tags, "dietary: vegetarian/vegan")
	}
	if strings.Contains(low, "window") || strings.Contains(low, "outdoor") {
		tags = append(tags, "seating preference")
	}
	return strings.Join(tags, ", ")
}
