package expense

import (
	"time"

	"github.com/samhans17/delivery-tracker/internal/apperr"
	"github.com/samhans17/delivery-tracker/internal/database"
	"github.com/samhans17/delivery-tracker/internal/httpx"
	"github.com/samhans17/delivery-tracker/internal/models"
	"github.com/samhans17/delivery-tracker/internal/period"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ExpenseRequest struct {
	CarID         uint             `json:"car_id"`
	ExpenseTypeID uint             `json:"expense_type_id"`
	Amount        *decimal.Decimal `json:"amount"`
	Description   string           `json:"description"`
	ExpenseDate   string           `json:"expense_date"` // "2025-12-09"
}

type ExpenseResponse struct {
	ID              uint            `json:"id"`
	CarID           uint            `json:"car_id"`
	CarNumber       string          `json:"car_number"`
	ExpenseTypeID   uint            `json:"expense_type_id"`
	ExpenseTypeName string          `json:"expense_type_name"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	ExpenseDate     string          `json:"expense_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

func ToResponse(e models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:              e.ID,
		CarID:           e.CarID,
		CarNumber:       e.Car.CarNumber,
		ExpenseTypeID:   e.ExpenseTypeID,
		ExpenseTypeName: e.ExpenseType.Name,
		Amount:          e.Amount,
		Description:     e.Description,
		ExpenseDate:     period.FormatDate(e.ExpenseDate),
		CreatedAt:       e.CreatedAt,
	}
}

func (r ExpenseRequest) toInput() (Input, error) {
	in := Input{CarID: r.CarID, ExpenseTypeID: r.ExpenseTypeID, Description: r.Description}
	if r.Amount == nil {
		return in, apperr.Validation("amount is required")
	}
	in.Amount = *r.Amount

	d, err := period.ParseDate("expense_date", r.ExpenseDate)
	if err != nil {
		return in, err
	}
	in.ExpenseDate = d
	return in, nil
}

// ParseFilter reads car_id, expense_type_id and month/year.
func ParseFilter(c *fiber.Ctx) (Filter, error) {
	carID, err := httpx.QueryID(c, "car_id")
	if err != nil {
		return Filter{}, err
	}
	typeID, err := httpx.QueryID(c, "expense_type_id")
	if err != nil {
		return Filter{}, err
	}
	m, err := httpx.QueryMonth(c)
	if err != nil {
		return Filter{}, err
	}
	return Filter{CarID: carID, ExpenseTypeID: typeID, Month: m}, nil
}

// GET /api/expenses?car_id=&expense_type_id=&month=&year=
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := ParseFilter(c)
		if err != nil {
			return err
		}

		rows, err := List(database.DB, f)
		if err != nil {
			return err
		}

		resp := make([]ExpenseResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, ToResponse(r))
		}
		return c.JSON(resp)
	}
}

// GET /api/expenses/:id
func GetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		e, err := Get(database.DB, id)
		if err != nil {
			return err
		}
		return c.JSON(ToResponse(*e))
	}
}

// POST /api/expenses
func CreateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ExpenseRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		in, err := body.toInput()
		if err != nil {
			return err
		}

		e, err := Create(database.DB, in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToResponse(*e))
	}
}

// PUT /api/expenses/:id
func UpdateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ExpenseRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		in, err := body.toInput()
		if err != nil {
			return err
		}

		e, err := Update(database.DB, id, in)
		if err != nil {
			return err
		}
		return c.JSON(ToResponse(*e))
	}
}

// DELETE /api/expenses/:id
func DeleteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := Delete(database.DB, id); err != nil {
			return err
		}
		return httpx.OK(c)
	}
}
