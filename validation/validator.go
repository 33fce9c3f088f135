package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/kbukum/foldkit/errors"
)

// Validator collects argument validation errors.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an INVALID_ARGUMENT AppError if there are validation
// errors, nil otherwise.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}

	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}

	return errors.New(errors.ErrCodeInvalidArgument, "invalid argument "+strings.Join(messages, "; ")).
		WithDetail("fields", v.errors)
}

// Min checks if a number meets minimum value.
func (v *Validator) Min(field string, value, minVal int) *Validator {
	if value < minVal {
		v.AddError(field, fmt.Sprintf("must be at least %d (got %d)", minVal, value))
	}
	return v
}

// NotNil checks that value is neither nil nor a nil func, pointer, map,
// slice, channel, or interface.
func (v *Validator) NotNil(field string, value any) *Validator {
	if isNil(value) {
		v.AddError(field, "is required")
	}
	return v
}

// Positive validates a single concurrency-style limit and returns an error
// if it is below 1.
func Positive(field string, value int) error {
	if appErr := New().Min(field, value, 1).Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Required returns an INVALID_ARGUMENT error if value is nil, including a
// typed nil callback.
func Required(field string, value any) error {
	if appErr := New().NotNil(field, value).Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
