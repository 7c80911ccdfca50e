package application

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "firstName" -> "first name")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"firstName":      "first name",
		"lastName":       "last name",
		"email":          "email",
		"phone":          "phone",
		"position":       "position",
		"department":     "department",
		"location":       "location",
		"employmentType": "employment type",
		"managerId":      "manager ID",
		"hireDate":       "hire date",
		"employeeId":     "employee ID",
		"salary":         "salary",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}

	return fieldName
}

// ValidateEmail checks that value parses as a bare address
func ValidateEmail(fieldName, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("invalid %s: %s", formatFieldName(fieldName), value),
		}
	}
	return nil
}

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-]{6,20}$`)

// ValidatePhone accepts digits, spaces, dashes, parentheses and a leading +
func ValidatePhone(fieldName, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if !phonePattern.MatchString(value) {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("invalid %s: %s", formatFieldName(fieldName), value),
		}
	}
	return nil
}

// ValidateDate checks a YYYY-MM-DD date
func ValidateDate(fieldName, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, value); err != nil {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be YYYY-MM-DD, got: %s", formatFieldName(fieldName), value),
		}
	}
	return nil
}

// ValidateOneOf checks value against the allowed set
func ValidateOneOf(fieldName, value string, allowed ...string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	return &ValidationError{
		Field:   fieldName,
		Message: fmt.Sprintf("%s must be one of %s", formatFieldName(fieldName), strings.Join(allowed, ", ")),
	}
}

// ValidateAmount checks a non-negative decimal amount
func ValidateAmount(fieldName, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || n < 0 {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be a non-negative number, got: %s", formatFieldName(fieldName), value),
		}
	}
	return nil
}
