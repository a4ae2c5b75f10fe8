// internal/patient/rules.go
//
// Field rules shared by the form validators and the server-side payload
// check.  Keeping the patterns and ranges here means the client and the
// persistence service can never disagree on what "valid" means.

package patient

import (
	"regexp"
	"strings"
	"unicode"
)

// Accepted ranges and lengths.
const (
	MinAge             = 1
	MaxAge             = 150
	MinIssuedYear      = 1930
	MaxIssuedYear      = 2025
	MinNameLength      = 2
	MinSymptomsLength  = 10
	ContactPhoneDigits = 10
)

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-+()]+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// PhoneOK reports whether s consists only of digits, whitespace, and the
// punctuation - + ( ).  The digit count is not checked.
func PhoneOK(s string) bool { return phonePattern.MatchString(s) }

// EmailOK reports whether s has the local@domain.tld shape.
func EmailOK(s string) bool { return emailPattern.MatchString(s) }

// DigitsOnly strips every non-digit rune from s.
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// ParseInt reads a leading base-10 integer the lenient way browsers do:
// leading whitespace and one sign are skipped, then the longest run of
// digits is consumed and anything after it ignored.  "42abc" gives 42;
// "abc" and "" report false.  Values too large for int saturate.
func ParseInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	const limit = int(^uint(0) >> 1)
	n, digits := 0, 0
	for ; digits < len(s) && s[digits] >= '0' && s[digits] <= '9'; digits++ {
		d := int(s[digits] - '0')
		if n > (limit-d)/10 {
			n = limit
			continue
		}
		n = n*10 + d
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// IssuedYearOK reports whether s parses to a year inside the accepted range.
func IssuedYearOK(s string) bool {
	y, ok := ParseInt(s)
	return ok && y >= MinIssuedYear && y <= MaxIssuedYear
}
