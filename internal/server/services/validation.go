package services

import (
	"errors"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type signupInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"min=8"`
	Role     string `validate:"omitempty,oneof=USER ADMIN"`
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

var fieldMessages = map[string]common.FieldError{
	"Name":     {Field: "name", Message: "Name is required"},
	"Email":    {Field: "email", Message: "Valid email is required"},
	"Role":     {Field: "role", Message: "Role must be USER or ADMIN"},
	"Password": {Field: "password", Message: "Password is required"},
}

const (
	passwordTooShort = "Password must be at least 8 characters"
	passwordTooLong  = "Password must be at most 72 bytes"
)

// validateSignup checks every field and reports all failures at once.
func validateSignup(in signupInput) error {
	ve := toValidationError(validate.Struct(in), passwordTooShort)
	if len(in.Password) > auth.MaxPasswordBytes {
		if ve == nil {
			ve = &common.ValidationError{}
		}
		ve.Fields = append(ve.Fields, common.FieldError{Field: "password", Message: passwordTooLong})
	}
	if ve == nil {
		return nil
	}
	return ve
}

func validateLogin(in loginInput) error {
	ve := toValidationError(validate.Struct(in), "")
	if ve == nil {
		return nil
	}
	return ve
}

func toValidationError(err error, passwordMessage string) *common.ValidationError {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &common.ValidationError{Fields: []common.FieldError{{Field: "request", Message: err.Error()}}}
	}

	ve := &common.ValidationError{}
	for _, fe := range fieldErrs {
		msg, ok := fieldMessages[fe.StructField()]
		if !ok {
			msg = common.FieldError{Field: fe.Field(), Message: fe.Error()}
		}
		if fe.StructField() == "Password" && passwordMessage != "" {
			msg.Message = passwordMessage
		}
		ve.Fields = append(ve.Fields, msg)
	}
	return ve
}
