package validate

import (
	"regexp"
	"strings"
)

const australiaPrefix = "+61"

var (
	nonDigitRegex = regexp.MustCompile(`\D`)
	auPhoneRegex  = regexp.MustCompile(`^\+61[0-9]{9}$`)
)

// NormalizeAustralianPhone converts an Australian number in international,
// national (0XXXXXXXXX) or local (XXXXXXXXX) form to +61XXXXXXXXX.
func NormalizeAustralianPhone(phone string) string {
	digits := nonDigitRegex.ReplaceAllString(phone, "")

	switch {
	case strings.HasPrefix(digits, "61") && len(digits) == 11:
		return "+" + digits
	case strings.HasPrefix(digits, "0") && len(digits) == 10:
		return australiaPrefix + digits[1:]
	case len(digits) == 9:
		return australiaPrefix + digits
	case strings.HasPrefix(strings.TrimSpace(phone), australiaPrefix) && len(digits) >= 2:
		return australiaPrefix + digits[2:]
	}
	return australiaPrefix + digits
}

// IsValidAustralianPhone reports whether phone normalizes to +61 followed by nine
// digits, starting with a mobile (4) or landline (2, 3, 7, 8) prefix.
func IsValidAustralianPhone(phone string) bool {
	normalized := NormalizeAustralianPhone(phone)
	if !auPhoneRegex.MatchString(normalized) {
		return false
	}
	switch normalized[3] {
	case '2', '3', '4', '7', '8':
		return true
	}
	return false
}

// FormatAustralianPhoneDisplay renders a number as "XXX XXX XXX" without the country code.
func FormatAustralianPhoneDisplay(phone string) string {
	local := strings.TrimPrefix(NormalizeAustralianPhone(phone), australiaPrefix)
	if len(local) != 9 {
		return local
	}
	return local[:3] + " " + local[3:6] + " " + local[6:]
}
