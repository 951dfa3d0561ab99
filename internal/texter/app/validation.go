package app

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"texter/internal/texter/domain/services"
)

// fieldLabels - человекочитаемые имена полей запроса.
var fieldLabels = map[string]string{
	"name":      "Name",
	"email":     "Email",
	"password":  "Password",
	"password2": "Confirm password",
	"resetcode": "Reset code",
}

// InputValidator проверяет входные структуры по тегам validate
// и собирает сообщения по JSON-именам полей.
type InputValidator struct {
	validate *validator.Validate
}

// NewInputValidator создает валидатор, использующий JSON-имена полей.
func NewInputValidator() *InputValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &InputValidator{validate: v}
}

// Validate возвращает *services.ValidationError, если вход не прошел проверку.
func (iv *InputValidator) Validate(in any) error {
	err := iv.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &services.ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " field is required"
	case "email":
		return label + " is invalid"
	case "min":
		return label + " must be at least " + fe.Param() + " characters"
	case "max":
		return label + " must be at most " + fe.Param() + " characters"
	case "eqfield":
		return "Passwords must match"
	default:
		return label + " is invalid"
	}
}
