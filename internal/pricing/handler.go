package pricing

import (
	"strings"

	"github.com/samhans17/delivery-tracker/internal/apperr"
	"github.com/samhans17/delivery-tracker/internal/database"
	"github.com/samhans17/delivery-tracker/internal/httpx"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ResolutionResponse struct {
	RouteID        uint            `json:"route_id"`
	ProductID      uint            `json:"product_id"`
	Name           string          `json:"name"`
	BasePrice      decimal.Decimal `json:"base_price"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	IsAvailable    bool            `json:"is_available"`
	Overridden     bool            `json:"overridden"`
}

// AvailableProductResponse is one option of the entry form's product list.
// ID is the product id.
type AvailableProductResponse struct {
	ID             uint            `json:"id"`
	Name           string          `json:"name"`
	BasePrice      decimal.Decimal `json:"base_price"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	IsAvailable    bool            `json:"is_available"`
}

type MatrixRowResponse struct {
	ResolutionResponse
	PricingID         *uint            `json:"pricing_id"`
	OverridePrice     *decimal.Decimal `json:"override_price"`
	OverrideAvailable *bool            `json:"override_available"`
}

type QuoteResponse struct {
	ResolutionResponse
	QuantityTons   *decimal.Decimal `json:"quantity_tons,omitempty"`
	CalculatedRate *decimal.Decimal `json:"calculated_rate,omitempty"`
}

type OverrideRequest struct {
	PricePerTon *decimal.Decimal `json:"price_per_ton"`
	IsAvailable *bool            `json:"is_available"`
}

type BulkItem struct {
	ProductID   uint             `json:"product_id"`
	PricePerTon *decimal.Decimal `json:"price_per_ton"`
	IsAvailable *bool            `json:"is_available"`
}

type BulkRequest struct {
	RouteID uint       `json:"route_id"`
	Pricing []BulkItem `json:"pricing"`
}

func toResponse(r Resolution) ResolutionResponse {
	return ResolutionResponse{
		RouteID:        r.RouteID,
		ProductID:      r.ProductID,
		Name:           r.ProductName,
		BasePrice:      r.BasePrice,
		EffectivePrice: r.EffectivePrice,
		IsAvailable:    r.IsAvailable,
		Overridden:     r.Overridden,
	}
}

// GET /api/products/available/:routeId
func ListAvailableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		routeID, err := httpx.ParamID(c, "routeId")
		if err != nil {
			return err
		}

		rows, err := ListAvailable(database.DB, routeID)
		if err != nil {
			return err
		}

		res := make([]AvailableProductResponse, 0, len(rows))
		for _, r := range rows {
			res = append(res, AvailableProductResponse{
				ID:             r.ProductID,
				Name:           r.ProductName,
				BasePrice:      r.BasePrice,
				EffectivePrice: r.EffectivePrice,
				IsAvailable:    r.IsAvailable,
			})
		}
		return c.JSON(res)
	}
}

// GET /api/route-product-pricing/:routeId
func RouteMatrixHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		routeID, err := httpx.ParamID(c, "routeId")
		if err != nil {
			return err
		}

		rows, err := RouteMatrix(database.DB, routeID)
		if err != nil {
			return err
		}

		res := make([]MatrixRowResponse, 0, len(rows))
		for _, r := range rows {
			res = append(res, MatrixRowResponse{
				ResolutionResponse: toResponse(r.Resolution),
				PricingID:          r.PricingID,
				OverridePrice:      r.OverridePrice,
				OverrideAvailable:  r.OverrideAvail,
			})
		}
		return c.JSON(res)
	}
}

// GET /api/route-product-pricing/:routeId/:productId?quantity_tons=12.5
func QuoteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		routeID, err := httpx.ParamID(c, "routeId")
		if err != nil {
			return err
		}
		productID, err := httpx.ParamID(c, "productId")
		if err != nil {
			return err
		}

		raw := strings.TrimSpace(c.Query("quantity_tons"))
		if raw == "" {
			r, err := Resolve(database.DB, routeID, productID)
			if err != nil {
				return err
			}
			return c.JSON(QuoteResponse{ResolutionResponse: toResponse(*r)})
		}

		qty, err := decimal.NewFromString(raw)
		if err != nil || !qty.IsPositive() {
			return apperr.Validation("quantity_tons must be a number greater than 0")
		}
		q, err := QuoteFor(database.DB, routeID, productID, qty)
		if err != nil {
			return err
		}
		return c.JSON(QuoteResponse{
			ResolutionResponse: toResponse(q.Resolution),
			QuantityTons:       &q.QuantityTons,
			CalculatedRate:     &q.CalculatedRate,
		})
	}
}

// PUT /api/route-product-pricing/:routeId/:productId
func UpsertHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		routeID, err := httpx.ParamID(c, "routeId")
		if err != nil {
			return err
		}
		productID, err := httpx.ParamID(c, "productId")
		if err != nil {
			return err
		}

		var body OverrideRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		if _, err := Upsert(database.DB, routeID, OverrideInput{
			ProductID:   productID,
			PricePerTon: body.PricePerTon,
			IsAvailable: body.IsAvailable,
		}); err != nil {
			return err
		}

		r, err := Resolve(database.DB, routeID, productID)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*r))
	}
}

// DELETE /api/route-product-pricing/:routeId/:productId
func DeleteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		routeID, err := httpx.ParamID(c, "routeId")
		if err != nil {
			return err
		}
		productID, err := httpx.ParamID(c, "productId")
		if err != nil {
			return err
		}

		if err := DeleteOverride(database.DB, routeID, productID); err != nil {
			return err
		}
		return httpx.OK(c)
	}
}

// POST /api/route-product-pricing/bulk
func BulkHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BulkRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		if body.RouteID == 0 {
			return apperr.Validation("route_id is required")
		}
		if len(body.Pricing) == 0 {
			return apperr.Validation("pricing must not be empty")
		}

		items := make([]OverrideInput, 0, len(body.Pricing))
		for _, p := range body.Pricing {
			items = append(items, OverrideInput{
				ProductID:   p.ProductID,
				PricePerTon: p.PricePerTon,
				IsAvailable: p.IsAvailable,
			})
		}

		n, err := BulkUpsert(database.DB, body.RouteID, items)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "saved": n})
	}
}
