package stats

import (
	"strconv"
	"strings"
	"time"

	"github.com/samhans17/delivery-tracker/internal/apperr"
	"github.com/samhans17/delivery-tracker/internal/database"
	"github.com/samhans17/delivery-tracker/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

func parseFilter(c *fiber.Ctx) (Filter, error) {
	carID, err := httpx.QueryID(c, "car_id")
	if err != nil {
		return Filter{}, err
	}
	m, err := httpx.QueryMonth(c)
	if err != nil {
		return Filter{}, err
	}
	return Filter{CarID: carID, Month: m}, nil
}

// GET /api/stats/monthly?month=3&year=2024&car_id=1
func MonthlyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseFilter(c)
		if err != nil {
			return err
		}
		res, err := Monthly(database.DB, f)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// GET /api/stats/expenses?month=3&year=2024&car_id=1
func ExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseFilter(c)
		if err != nil {
			return err
		}
		res, err := Expenses(database.DB, f)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// GET /api/stats/yearly?year=2024&car_id=1
func YearlyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		year := time.Now().UTC().Year()
		if raw := strings.TrimSpace(c.Query("year")); raw != "" {
			y, err := strconv.Atoi(raw)
			if err != nil || y < 2000 || y > 2100 {
				return apperr.Validation("year is invalid")
			}
			year = y
		}
		carID, err := httpx.QueryID(c, "car_id")
		if err != nil {
			return err
		}

		res, err := Yearly(database.DB, year, carID)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}
