package sitebuilder

import (
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
)

// field is one user-supplied value checked by validateFields.
type field struct {
	name     string
	value    string
	max      int
	required bool
	email    bool
}

// validateFields returns a 400 HTTPError naming the first invalid field.
func validateFields(fields ...field) error {
	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		switch {
		case f.required && v == "":
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is required", f.name))
		case f.max > 0 && utf8.RuneCountInString(v) > f.max:
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s must be at most %d characters", f.name, f.max))
		case f.email && v != "" && !validEmail(v):
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is not a valid email address", f.name))
		}
	}
	return nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
