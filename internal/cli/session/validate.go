package session

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Profile is the signup form.
type Profile struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Mobile          string `json:"mobile" validate:"required,numeric"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

var fieldLabels = map[string]string{
	"email":           "Email",
	"password":        "Password",
	"firstName":       "First name",
	"lastName":        "Last name",
	"mobile":          "Mobile number",
	"confirmPassword": "Confirm password",
}

func newValidator() *validator.Validate {
	validate := validator.New()

	// Report fields by their JSON names so errors line up with the form.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// validateForm returns nil or a *ValidationError keyed by JSON field name.
func validateForm(validate *validator.Validate, form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate form: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "email":
		return "Email must be a valid email address"
	case "numeric":
		return fmt.Sprintf("%s must contain digits only", label)
	case "eqfield":
		return "Passwords do not match"
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
