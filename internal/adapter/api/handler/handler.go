package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"storefront/pkg/errors"
)

// pathParam returns a trimmed path parameter or a BadRequest naming it.
func pathParam(c echo.Context, name, label string) (string, error) {
	v := strings.TrimSpace(c.Param(name))
	if v == "" {
		return "", errors.BadRequest(label+" is required", nil)
	}
	return v, nil
}

// variantQuery reads ?variant_id. Absent and blank both mean the product
// itself.
func variantQuery(c echo.Context) *string {
	v := strings.TrimSpace(c.QueryParam("variant_id"))
	if v == "" {
		return nil
	}
	return &v
}

func queryBool(c echo.Context, name string) bool {
	b, _ := strconv.ParseBool(c.QueryParam(name))
	return b
}

// bind decodes the body and runs the echo validator.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.BadRequest("Invalid request body", err)
	}
	return c.Validate(req)
}
