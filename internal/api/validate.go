package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// bindAndValidate binds req from the request, fills defaults and validates
// it. A non-nil return is the list of problems to send back with 400.
func bindAndValidate(c echo.Context, req interface{}) []ErrorBody {
	if err := c.Bind(req); err != nil {
		return toErrorBodies(err)
	}
	if err := defaults.Set(req); err != nil {
		return toErrorBodies(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return toErrorBodies(err)
	}
	return nil
}

func toErrorBodies(err error) []ErrorBody {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		out := make([]ErrorBody, 0, len(ves))
		for _, fe := range ves {
			out = append(out, ErrorBody{
				Code:    "ERR_" + strings.ToUpper(fe.Tag()),
				Field:   fe.Field(),
				Message: fieldMessage(fe),
			})
		}
		return out
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ErrorBody{{Code: "ERR_BIND", Message: fmt.Sprintf("%v", he.Message)}}
	}
	return []ErrorBody{{Code: "ERR_UNKNOWN", Message: err.Error()}}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag())
	}
}
