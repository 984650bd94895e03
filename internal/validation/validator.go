// Package validation is the pre-condition layer for request payloads. It checks
// `validate` struct tags and reports every violation as a FieldError, before any
// payload reaches the services.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// FieldError represents a single field's validation error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

// messages maps "<json field>.<tag>" to the message reported for that violation.
var messages = map[string]string{
	"name.notblank":        "Event name is mandatory",
	"name.max":             "Event name must not exceed 100 characters",
	"description.notblank": "Event description is mandatory",
	"description.max":      "Event description must not exceed 500 characters",
	"date.required":        "Event date is mandatory",
	"location.notblank":    "Event location is mandatory",
	"location.max":         "Event location must not exceed 200 characters",
	"time.required":        "Event time is mandatory",
	"user_id.required":     "User ID is mandatory",
	"email.required":       "Email is mandatory",
	"email.email":          "Email should be valid",
	"name.required":        "Name is mandatory",
	"name.min":             "Name should have at least 2 characters",
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Validate checks s (a struct or pointer to struct) against its `validate` tags.
// It returns nil when s is valid.
func Validate(s any) []FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if fe.Param() != "" {
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	}
	return "failed " + fe.Tag()
}

// Messages flattens errs into plain strings of the form "field: message".
func Messages(errs []FieldError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}
