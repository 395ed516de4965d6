package domain

import "regexp"

var (
	emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// IsValidEmail reports whether value has the shape local@domain.tld:
// at least one non-@ character before the @, and a domain containing a
// literal dot with non-@ characters on both sides. Intentionally loose;
// full RFC address validation is not a goal here.
func IsValidEmail(value string) bool {
	if value == "" {
		return false
	}
	return emailPattern.MatchString(value)
}

// IsValidPhone reports whether value is an optional leading + followed
// by 7 to 15 decimal digits and nothing else.
func IsValidPhone(value string) bool {
	if value == "" {
		return false
	}
	return phonePattern.MatchString(value)
}

// DetermineRegion maps a location to a sales region. Total and
// deterministic for any input. The current policy is a placeholder that
// files every location under the default region.
func DetermineRegion(location string) string {
	return "default-region"
}
