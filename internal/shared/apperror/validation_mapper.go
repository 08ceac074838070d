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

// stale_record_id -> Stale Record Id
func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	return cases.Title(language.English).String(s)
}

func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return New(CodeInvalidInput, "Invalid input", http.StatusBadRequest)
	}

	// Ambil error pertama saja, cukup untuk ditampilkan di form
	e := errs[0]
	field := formatFieldName(e.Field())

	switch e.Tag() {
	case "required":
		return RequiredField(field)
	case "uuid", "uuid4":
		return New(CodeInvalidInput, fmt.Sprintf("%s must be a valid UUID", field), http.StatusBadRequest)
	case "datetime":
		return New(CodeInvalidInput, fmt.Sprintf("%s must match %s", field, e.Param()), http.StatusBadRequest)
	default:
		return InvalidField(field)
	}
}
