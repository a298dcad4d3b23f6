package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
)

var (
	cpfPattern   = regexp.MustCompile(`^[0-9]{3}\.?[0-9]{3}\.?[0-9]{3}-?[0-9]{2}$`)
	emailPattern = regexp.MustCompile(`^[\w.-]+@([\w-]+\.)+[\w-]{2,4}$`)
)

// bodyValidator checks request payloads and reports failures under their
// JSON field names.
type bodyValidator struct {
	validate *validator.Validate
}

func newBodyValidator() bodyValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	_ = validate.RegisterValidation("cpf", matches(cpfPattern))
	_ = validate.RegisterValidation("person_email", matches(emailPattern))

	return bodyValidator{validate: validate}
}

func matches(pattern *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	}
}

// check returns nil or a *model.ValidationErrors.
func (v bodyValidator) check(body any) error {
	err := v.validate.Struct(body)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := model.NewValidationErrors()
	for _, fieldErr := range fieldErrs {
		errs.Add(fieldErr.Field(), describe(fieldErr), strings.ToUpper(fieldErr.Tag()))
	}

	return errs
}

func describe(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fieldErr.Field() + " is required"
	case "required_with":
		return fieldErr.Field() + " is required when foto is set"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fieldErr.Field(), fieldErr.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fieldErr.Field(), fieldErr.Param())
	case "datetime":
		return fieldErr.Field() + " must be a date formatted as YYYY-MM-DD"
	case "cpf":
		return fieldErr.Field() + " must be a CPF such as 123.456.789-09"
	case "person_email":
		return fieldErr.Field() + " must be a valid email address"
	}

	return fmt.Sprintf("%s failed %s validation", fieldErr.Field(), fieldErr.Tag())
}
