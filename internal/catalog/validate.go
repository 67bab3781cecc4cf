package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidNumber indicates a field that must be numeric is not.
	ErrInvalidNumber = errors.New("catalog: invalid number")
	// ErrInvalidRange indicates a min/max pair that is not strictly ordered.
	ErrInvalidRange = errors.New("catalog: invalid range")
)

// MissingFieldError reports a required field that is absent or blank.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("catalog: missing required field %q", e.Field)
}

// Validate checks collected data against the descriptor's required fields and
// rules. It is pure and runs once, right before the terminal save; values are
// accepted as-is during collection. Unrecognized extra fields are ignored.
func Validate(desc Descriptor, data map[string]string) error {
	for _, field := range desc.Required {
		if strings.TrimSpace(data[field]) == "" {
			return &MissingFieldError{Field: field}
		}
	}
	for _, rule := range desc.Rules {
		if err := rule(data); err != nil {
			return err
		}
	}
	return nil
}

// NumericRange returns a rule requiring both fields to parse as numbers with
// minField strictly less than maxField.
func NumericRange(minField, maxField string) Rule {
	return func(data map[string]string) error {
		minVal, err := strconv.ParseFloat(strings.TrimSpace(data[minField]), 64)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidNumber, minField)
		}
		maxVal, err := strconv.ParseFloat(strings.TrimSpace(data[maxField]), 64)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidNumber, maxField)
		}
		if minVal >= maxVal {
			return fmt.Errorf("%w: %s must be less than %s", ErrInvalidRange, minField, maxField)
		}
		return nil
	}
}
