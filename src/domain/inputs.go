package domain

import (
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Regras compartilhadas pelas funções Parse*. Cada entidade tem exatamente uma
// função de parse para criação e uma para patch.

func requireLength(v *ValidationError, field, value string, min, max int, message string) string {
	value = strings.TrimSpace(value)
	n := utf8.RuneCountInString(value)
	if n < min {
		v.add(field, message)
	}
	if max > 0 && n > max {
		v.add(field, "cannot exceed "+strconv.Itoa(max)+" characters")
	}
	return value
}

func optionalLength(v *ValidationError, field string, value *string, min, max int, message string) *string {
	if value == nil {
		return nil
	}
	trimmed := requireLength(v, field, *value, min, max, message)
	return &trimmed
}

func parseEmail(v *ValidationError, field, value string) string {
	value = strings.TrimSpace(value)
	address, err := mail.ParseAddress(value)
	if err != nil || address.Address != value {
		v.add(field, "invalid email address")
		return value
	}
	return strings.ToLower(value)
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
