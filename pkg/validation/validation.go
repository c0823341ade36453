// Package validation wraps go-playground/validator for models, request
// bodies and URL lists.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Get returns the shared validator instance
func Get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		// Report json names so messages match request bodies
		instance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return instance
}

// Struct validates s and returns a readable error, or nil
func Struct(s interface{}) error {
	if err := Get().Struct(s); err != nil {
		return errors.New(Describe(err))
	}
	return nil
}

// Describe turns validator errors into a single human readable line
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be <= %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// IsAbsoluteURL reports whether raw is an absolute URL with a scheme and a host
func IsAbsoluteURL(raw string) bool {
	if err := Get().Var(raw, "required,url"); err != nil {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// EchoValidator adapts the shared validator to echo's Validator interface
type EchoValidator struct{}

// Validate implements echo.Validator
func (EchoValidator) Validate(i interface{}) error {
	if err := Get().Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, Describe(err))
	}
	return nil
}
