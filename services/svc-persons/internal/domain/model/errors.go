package model

import (
	"errors"
	"fmt"
)

var (
	ErrPersonNotFound     = errors.New("person not found")
	ErrInvalidPersonID    = errors.New("invalid person ID")
	ErrDuplicatePerson    = errors.New("person already exists")
	ErrDatabaseConnection = errors.New("database connection error")
	ErrDatabaseQuery      = errors.New("database query error")
	ErrInvalidCriteria    = errors.New("invalid criteria")
	ErrUnknownField       = errors.New("unknown person field")
)

// BindingError reports a request parameter that cannot populate a criteria
// slot, either because the value does not parse or the operator is not valid
// for the field.
type BindingError struct {
	Parameter string
	Value     string
	Reason    string
}

func (e *BindingError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid parameter %s: %s", e.Parameter, e.Reason)
	}

	return fmt.Sprintf("invalid parameter %s=%q: %s", e.Parameter, e.Value, e.Reason)
}

func (e *BindingError) Unwrap() error { return ErrInvalidCriteria }

type ValidationError struct {
	Field   string
	Message string
	Code    string
}

type ValidationErrors struct {
	Errors []ValidationError
}

func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}

	return v.Errors[0].Message
}

func (v *ValidationErrors) Add(field, message, code string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
		Code:    code,
	})
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]ValidationError, 0),
	}
}
