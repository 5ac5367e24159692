package apperror

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// leave_type -> Leave Type
func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	s = splitCamel(s)
	caser := cases.Title(language.English)
	return caser.String(s)
}

// startDate -> start Date
func splitCamel(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MapValidationError turns binding failures into a 400 AppError naming the
// first offending field.
func MapValidationError(err error) *AppError {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		e := errs[0]
		field := formatFieldName(e.Field())

		var appErr *AppError
		switch e.Tag() {
		case "required":
			appErr = RequiredField(field)
		case "oneof":
			appErr = New(
				CodeInvalidInput,
				field+" must be one of: "+strings.ReplaceAll(e.Param(), " ", ", "),
				http.StatusBadRequest,
			)
		case "max":
			appErr = New(
				CodeInvalidInput,
				field+" must be at most "+e.Param()+" characters",
				http.StatusBadRequest,
			)
		default:
			appErr = InvalidField(field)
		}
		return appErr.WithDetails(map[string]string{"field": e.Field(), "rule": e.Tag()})
	}

	return New(
		CodeInvalidInput,
		"Invalid input",
		http.StatusBadRequest,
	)
}
