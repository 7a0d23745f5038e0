// Package httpx holds request helpers shared by the Fiber handlers.
package httpx

import (
	"errors"
	"strconv"
	"strings"

	"github.com/samhans17/delivery-tracker/internal/apperr"
	"github.com/samhans17/delivery-tracker/internal/logging"
	"github.com/samhans17/delivery-tracker/internal/period"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every failure as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return c.Status(ae.Status()).JSON(ae.Body())
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
		})
	}
	logging.WithField("path", c.Path()).WithField("error", err.Error()).Error("unexpected error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Unexpected server error",
	})
}

// ParamID reads a positive integer route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("%s is invalid", name)
	}
	return uint(id), nil
}

// QueryID reads an optional positive integer query parameter.
func QueryID(c *fiber.Ctx, name string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, apperr.Validation("%s is invalid", name)
	}
	v := uint(id)
	return &v, nil
}

// QueryMonth reads the optional month/year filter.
func QueryMonth(c *fiber.Ctx) (*period.Month, error) {
	return period.ParseMonth(c.Query("month"), c.Query("year"))
}

// ParseBody decodes the JSON body.
func ParseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return nil
}

// OK is the acknowledgement returned by mutations without a payload.
func OK(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true})
}
