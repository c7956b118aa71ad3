package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/syntheses-api/internal/dto"
	appErrors "github.com/noah-isme/syntheses-api/pkg/errors"
)

// NewValidator returns a validator reporting fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if o, ok := field.Interface().(dto.OptionalInt); ok {
			return o.Value
		}
		return nil
	}, dto.OptionalInt{})
	return v
}

// validationError turns validator output into a 400 naming the first bad field.
func validationError(err error, fallback string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fallback)
	}
	fe := fieldErrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", fe.Field())
	case "min", "max":
		msg = boundMessage(fe)
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		msg = fmt.Sprintf("%s is invalid", fe.Field())
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msg)
}

func boundMessage(fe validator.FieldError) string {
	bound := "at least"
	if fe.Tag() == "max" {
		bound = "at most"
	}
	switch fe.Kind() {
	case reflect.String, reflect.Slice, reflect.Map:
		return fmt.Sprintf("%s must be %s %s characters", fe.Field(), bound, fe.Param())
	default:
		return fmt.Sprintf("%s must be %s %s", fe.Field(), bound, fe.Param())
	}
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
