package validation

import (
	"net/mail"
	"strings"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func Email(field, value string, v Violations) {
	if _, err := mail.ParseAddress(strings.TrimSpace(value)); err != nil {
		v[field] = "invalid_email"
	}
}

func MinLen(field, value string, minLen int, v Violations) {
	if len(value) < minLen {
		v[field] = "too_short"
	}
}

func MaxLen(field, value string, maxLen int, v Violations) {
	if len(value) > maxLen {
		v[field] = "too_long"
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_be_non_negative"
	}
}

func RangeInt(field string, val, minVal, maxVal int, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// OneOf flags the field unless value is one of the allowed literals.
func OneOf(field, value string, v Violations, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "invalid_value"
}
