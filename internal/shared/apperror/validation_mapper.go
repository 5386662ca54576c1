package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// FieldError is one entry of the details list returned for a rejected body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// formatFieldName: leave_type -> Leave Type
func formatFieldName(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

func fieldMessage(e validator.FieldError) string {
	name := formatFieldName(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(e.Param(), " ", ", "))
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", name, e.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", name, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

// MapValidationError turns a binding error into an INVALID_INPUT AppError.
// The message names the first failing field; Details lists all of them.
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		details := make([]FieldError, 0, len(errs))
		for _, e := range errs {
			details = append(details, FieldError{Field: e.Field(), Message: fieldMessage(e)})
		}
		return New(CodeInvalidInput, details[0].Message, http.StatusBadRequest).WithDetails(details)
	}

	return New(CodeInvalidInput, "Invalid input", http.StatusBadRequest)
}
