package usecase

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"storefront/pkg/errors"
)

var validate = validator.New()

// validateInput runs struct tags and returns a VALIDATION_ERROR AppError
// wrapping the validator errors.
func validateInput(input interface{}) error {
	if err := validate.Struct(input); err != nil {
		return errors.Validation(validationMessage(err), err)
	}
	return nil
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "Invalid input data"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return field + " must be at most " + fe.Param()
	case "min":
		return field + " must be at least " + fe.Param()
	case "gte":
		return field + " must be greater than or equal to " + fe.Param()
	case "lte":
		return field + " must be less than or equal to " + fe.Param()
	}
	return field + " is invalid"
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.Unauthorized("Authentication required", nil)
	}
	return nil
}

// fail normalizes a non-nil error into an AppError.
func fail(err error, message string) error {
	return errors.From(err, message)
}
