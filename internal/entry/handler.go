package entry

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

type EntryRequest struct {
	CarID        uint             `json:"car_id"`
	RouteID      uint             `json:"route_id"`
	ProductID    uint             `json:"product_id"`
	QuantityTons *decimal.Decimal `json:"quantity_tons"`
	EntryDate    string           `json:"entry_date"` // "2025-03-14"
}

type EntryResponse struct {
	ID             uint            `json:"id"`
	CarID          uint            `json:"car_id"`
	CarNumber      string          `json:"car_number"`
	RouteID        uint            `json:"route_id"`
	RouteName      string          `json:"route_name"`
	ProductID      uint            `json:"product_id"`
	ProductName    string          `json:"product_name"`
	PricePerTon    decimal.Decimal `json:"price_per_ton"` // product's current base price
	QuantityTons   decimal.Decimal `json:"quantity_tons"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	CalculatedRate decimal.Decimal `json:"calculated_rate"`
	EntryDate      string          `json:"entry_date"`
	CreatedAt      time.Time       `json:"created_at"`
}

func ToResponse(e models.Entry) EntryResponse {
	return EntryResponse{
		ID:             e.ID,
		CarID:          e.CarID,
		CarNumber:      e.Car.CarNumber,
		RouteID:        e.RouteID,
		RouteName:      e.Route.Name,
		ProductID:      e.ProductID,
		ProductName:    e.Product.Name,
		PricePerTon:    e.Product.PricePerTon,
		QuantityTons:   e.QuantityTons,
		UnitPrice:      e.UnitPrice,
		CalculatedRate: e.CalculatedRate,
		EntryDate:      period.FormatDate(e.EntryDate),
		CreatedAt:      e.CreatedAt,
	}
}

func (r EntryRequest) toInput() (Input, error) {
	in := Input{CarID: r.CarID, RouteID: r.RouteID, ProductID: r.ProductID}
	if r.QuantityTons == nil {
		return in, apperr.Validation("quantity_tons is required")
	}
	if !r.QuantityTons.IsPositive() {
		return in, apperr.Validation("quantity_tons must be greater than 0")
	}
	in.QuantityTons = *r.QuantityTons

	d, err := period.ParseDate("entry_date", r.EntryDate)
	if err != nil {
		return in, err
	}
	in.EntryDate = d
	return in, nil
}

// ParseFilter reads car_id and month/year from the query string.
func ParseFilter(c *fiber.Ctx) (Filter, error) {
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

// GET /api/entries?car_id=&month=&year=
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

		res := make([]EntryResponse, 0, len(rows))
		for _, e := range rows {
			res = append(res, ToResponse(e))
		}
		return c.JSON(res)
	}
}

// GET /api/entries/:id
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

// POST /api/entries
func CreateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body EntryRequest
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

// PUT /api/entries/:id
func UpdateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body EntryRequest
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

// DELETE /api/entries/:id
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
