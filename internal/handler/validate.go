package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validate is shared by every request DTO.
var Validate = validator.New()

// RequestValidator plugs Validate into echo so handlers can call
// c.Validate on bound bodies.
type RequestValidator struct{ v *validator.Validate }

func NewRequestValidator() *RequestValidator { return &RequestValidator{v: Validate} }

func (rv *RequestValidator) Validate(i any) error { return rv.v.Struct(i) }

// bindAndValidate binds the request body into dst and validates it.  The
// returned error is already an *echo.HTTPError with status 400.
func bindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
