package validate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/LipeSan/worklog-web-app/internal/apperrors"
	"github.com/LipeSan/worklog-web-app/internal/models"
)

const (
	// MinPasswordLength applies to both registration and reset passwords.
	MinPasswordLength = 8
	// MinFullNameLength is the shortest accepted full name.
	MinFullNameLength = 2
)

var (
	emailRegex        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	passwordCharRegex = regexp.MustCompile(`^[A-Za-z\d@$!%*#?&]+$`)
)

// Email reports whether s looks like an e-mail address.
func Email(s string) bool {
	return emailRegex.MatchString(s)
}

// RegistrationPassword reports whether a password is at least eight characters from
// the allowed set with at least one letter and one digit.
func RegistrationPassword(pw string) bool {
	if len(pw) < MinPasswordLength || !passwordCharRegex.MatchString(pw) {
		return false
	}
	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// ResetPasswordStrength returns the first unmet strength rule for a new password set
// through the reset flow, or "" when it is strong enough.
func ResetPasswordStrength(pw string) string {
	if utf8.RuneCountInString(pw) < MinPasswordLength {
		return "password must be at least 8 characters"
	}
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !lower:
		return "password must contain at least one lower-case letter"
	case !upper:
		return "password must contain at least one upper-case letter"
	case !digit:
		return "password must contain at least one number"
	}
	return ""
}

// Registration validates a sign-up request, reporting every problem at once.
func Registration(req models.RegisterRequest) error {
	if req.FullName == "" || req.Phone == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("incomplete data", "fullName, phone, email and password are required")
	}

	var errs []string
	if utf8.RuneCountInString(strings.TrimSpace(req.FullName)) < MinFullNameLength {
		errs = append(errs, "full name must be at least 2 characters")
	}
	if !Email(strings.TrimSpace(req.Email)) {
		errs = append(errs, "invalid email")
	}
	if !IsValidAustralianPhone(req.Phone) {
		errs = append(errs, "invalid phone number, use the format +61XXXXXXXXX for Australian phones")
	}
	if !RegistrationPassword(req.Password) {
		errs = append(errs, "password must be at least 8 characters, including letters and numbers")
	}
	if len(errs) > 0 {
		return apperrors.NewValidationError("invalid data", errs...)
	}
	return nil
}

// Rate validates an hourly rate.
func Rate(rate *float64) error {
	if rate == nil {
		return apperrors.NewValidationError("invalid data", "rate is required")
	}
	if *rate < 0 {
		return apperrors.NewValidationError("invalid data", "rate must be a non-negative number")
	}
	return nil
}

// Profile validates a profile update.
func Profile(req models.UpdateProfileRequest) error {
	var errs []string
	if utf8.RuneCountInString(strings.TrimSpace(req.FullName)) < MinFullNameLength {
		errs = append(errs, "full name must be at least 2 characters")
	}
	if !IsValidAustralianPhone(req.Phone) {
		errs = append(errs, "invalid phone number, use a valid Australian phone format")
	}
	if req.Rate == nil {
		errs = append(errs, "rate is required")
	} else if *req.Rate < 0 {
		errs = append(errs, "rate must be a non-negative number")
	}
	if len(errs) > 0 {
		return apperrors.NewValidationError("invalid data", errs...)
	}
	return nil
}
