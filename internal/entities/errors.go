package entities

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/real-comp/mvr-common/internal/validators"
)

// ErrInvalidFormat is matched by every FormatError.
var ErrInvalidFormat = errors.New("invalid format")

// FormatError reports a field value that does not satisfy its declared format.
type FormatError struct {
	Field  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidFormat
}

var validate = validators.NewValidator()

// validateStruct runs the struct tags and turns field failures into FormatErrors, ordered by field name.
func validateStruct(entity string, v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return fmt.Errorf("validating %s: %w", entity, err)
	}

	fieldErrors := validators.ParseValidationError(vErrs)
	fields := make([]string, 0, len(fieldErrors))
	for field := range fieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	errs := make([]error, 0, len(fields))
	for _, field := range fields {
		errs = append(errs, &FormatError{Field: field, Reason: fmt.Sprint(fieldErrors[field])})
	}
	return fmt.Errorf("validating %s: %w", entity, errors.Join(errs...))
}

func checkDate(field, value string) error {
	if value != "" && !validators.IsDate(value) {
		return &FormatError{Field: field, Reason: fmt.Sprintf("Invalid date %q. Expected YYYYMMDD", value)}
	}
	return nil
}

func checkMonth(field, value string) error {
	if value != "" && !validators.IsMonth(value) {
		return &FormatError{Field: field, Reason: fmt.Sprintf("Invalid month %q. Expected MM", value)}
	}
	return nil
}

func checkYear(field, value string) error {
	if value != "" && !validators.IsYear(value) {
		return &FormatError{Field: field, Reason: fmt.Sprintf("Invalid year %q. Expected YYYY", value)}
	}
	return nil
}
