package tool

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ConfirmationID builds CITY-YYMMDD-XXXX from the restaurant city, booking date and
// a four character suffix.
func ConfirmationID(city, date, suffix string) string {
	var code []rune
	for _, r := range strings.ToUpper(city) {
		if r >= 'A' && r <= 'Z' {
			code = append(code, r)
		}
		if len(code) == 3 {
			break
		}
	}
	for len(code) < 3 {
		code = append(code, 'X')
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, date)
	if len(digits) > 2 {
		digits = digits[2:]
	}

	return string(code) + "-" + digits + "-" + strings.ToUpper(suffix)
}

// randomSuffix draws four uppercase hex characters from a random UUID.
func randomSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
}
