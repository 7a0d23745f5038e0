package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/samhans17/delivery-tracker/internal/database"
	"github.com/samhans17/delivery-tracker/internal/entry"
	"github.com/samhans17/delivery-tracker/internal/expense"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func sendWorkbook(c *fiber.Ctx, name string, buf *bytes.Buffer) error {
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s-%s.xlsx"`, name, time.Now().UTC().Format("20060102")))
	return c.Send(buf.Bytes())
}

// GET /api/export/entries.xlsx?car_id=&month=&year=
func EntriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := entry.ParseFilter(c)
		if err != nil {
			return err
		}
		rows, err := entry.List(database.DB, f)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := WriteEntries(&buf, rows); err != nil {
			return err
		}
		return sendWorkbook(c, "entries", &buf)
	}
}

// GET /api/export/expenses.xlsx?car_id=&expense_type_id=&month=&year=
func ExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := expense.ParseFilter(c)
		if err != nil {
			return err
		}
		rows, err := expense.List(database.DB, f)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := WriteExpenses(&buf, rows); err != nil {
			return err
		}
		return sendWorkbook(c, "expenses", &buf)
	}
}
