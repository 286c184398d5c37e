package service

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/travel-desk/itinerary-service/pkg/util/errorutil"
)

const (
	DateLayout = "2006-01-02"

	msgRequired   = "This field is required."
	msgBlank      = "This field may not be blank."
	msgDateFormat = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgEmail      = "Enter a valid email address."
	msgUsername   = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."

	maxCityLength     = 100
	maxPurposeLength  = 255
	maxUsernameLength = 150
	maxNameLength     = 150
	minPasswordLength = 8
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// fieldErrors collects per-field validation messages, keeping the first per field.
type fieldErrors map[string]any

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewValidationError("Validation failed", map[string]any(f))
}

// requireString trims the value and checks presence, blankness and length.
func (f fieldErrors) requireString(field string, value *string, maxLen int) string {
	if value == nil {
		f.add(field, msgRequired)
		return ""
	}
	return f.checkString(field, *value, maxLen)
}

func (f fieldErrors) checkString(field, value string, maxLen int) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		f.add(field, msgBlank)
		return ""
	}
	if maxLen > 0 && utf8.RuneCountInString(trimmed) > maxLen {
		f.add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", maxLen))
	}
	return trimmed
}

func (f fieldErrors) requireDate(field string, value *string) time.Time {
	if value == nil {
		f.add(field, msgRequired)
		return time.Time{}
	}
	return f.checkDate(field, *value)
}

func (f fieldErrors) checkDate(field, value string) time.Time {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		f.add(field, msgDateFormat)
		return time.Time{}
	}
	return parsed
}

func (f fieldErrors) checkChoice(field, value string, choices []string) string {
	for _, choice := range choices {
		if value == choice {
			return value
		}
	}
	f.add(field, fmt.Sprintf("%q is not a valid choice.", value))
	return ""
}

func (f fieldErrors) checkEmail(field, value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		f.add(field, msgEmail)
		return ""
	}
	return trimmed
}

func (f fieldErrors) checkOptional(field, value string, maxLen int) string {
	trimmed := strings.TrimSpace(value)
	if utf8.RuneCountInString(trimmed) > maxLen {
		f.add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", maxLen))
	}
	return trimmed
}

func (f fieldErrors) checkUsername(field string, value *string) string {
	username := f.requireString(field, value, maxUsernameLength)
	if username != "" && !usernamePattern.MatchString(username) {
		f.add(field, msgUsername)
	}
	return username
}
