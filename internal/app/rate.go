package app

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/jsamuelsen/clinic-site/internal/domain"
)

// ParseRate coerces admin input to an integer percentage the way a browser's
// parseInt does: leading whitespace and one sign are skipped, a 0x prefix
// switches to hex, and parsing stops at the first character that is not a
// digit. "87.9" is 87 and "120" is 120; nothing is clamped.
//
// Input without any leading digit is rejected rather than stored as NaN.
func ParseRate(input string) (int, error) {
	s := strings.TrimLeftFunc(input, unicode.IsSpace)

	neg := false

	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	base := 10

	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	end := 0
	for end < len(s) && isDigit(s[end], base) {
		end++
	}

	if end == 0 {
		return 0, domain.NewValidationErrorWithValue("rate", "must start with a number", input)
	}

	n, err := strconv.ParseInt(s[:end], base, strconv.IntSize)
	if err != nil {
		return 0, domain.NewValidationErrorWithValue("rate", "number is out of range", input)
	}

	if neg {
		n = -n
	}

	return int(n), nil
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && c >= 'a' && c <= 'f':
		return true
	case base == 16 && c >= 'A' && c <= 'F':
		return true
	default:
		return false
	}
}
