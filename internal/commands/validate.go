package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Input rules mirror the server's request binding so bad input is rejected
// before a request is made.
var validate = validator.New(validator.WithRequiredStructEnabled())

type loginInput struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type registerInput struct {
	Username string `validate:"required,min=3,max=50"`
	Password string `validate:"required,min=6"`
}

type newTaskInput struct {
	Title       string `validate:"required,max=100"`
	Description string `validate:"max=500"`
	DueDate     string `validate:"omitempty,datetime=2006-01-02"`
}

type editTaskInput struct {
	Title       *string `validate:"omitempty,min=1,max=100"`
	Description *string `validate:"omitempty,max=500"`
	DueDate     *string `validate:"omitempty,datetime=2006-01-02"`
	Status      *string `validate:"omitempty,oneof=todo in_progress done"`
}

// checkInput validates v and returns an error naming the first bad field.
func checkInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := flagName(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s required", field)
	case "min":
		if fe.Param() == "1" {
			return fmt.Errorf("%s required", field)
		}
		return fmt.Errorf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s characters", field, fe.Param())
	case "datetime":
		return fmt.Errorf("invalid %s: %v (want YYYY-MM-DD)", field, fe.Value())
	case "oneof":
		return fmt.Errorf("invalid %s: %v (want one of: %s)", field, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Errorf("invalid %s", field)
}

// flagName maps a struct field to the name the user typed.
func flagName(field string) string {
	switch field {
	case "DueDate":
		return "due date"
	case "Description":
		return "description"
	}
	return strings.ToLower(field)
}
