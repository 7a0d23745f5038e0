// Package pricing resolves the price a product is billed at on a route.
//
// A RouteProductPricing row for the (route, product) pair wins over the
// product's base price. No row means base price and available. A row whose
// availability column is NULL is also available; only an explicit false
// hides the product from the route.
package pricing

import (
	"errors"

	"github.com/samhans17/delivery-tracker/internal/apperr"
	"github.com/samhans17/delivery-tracker/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Resolution struct {
	RouteID        uint
	ProductID      uint
	ProductName    string
	BasePrice      decimal.Decimal
	EffectivePrice decimal.Decimal
	IsAvailable    bool
	Overridden     bool
}

// Quote is a Resolution applied to a quantity.
type Quote struct {
	Resolution
	QuantityTons   decimal.Decimal
	CalculatedRate decimal.Decimal
}

// MatrixRow describes one product on a route with the raw override columns
// next to the resolved values.
type MatrixRow struct {
	Resolution
	PricingID     *uint
	OverridePrice *decimal.Decimal
	OverrideAvail *bool
}

// Amount is the billed amount for quantity at price.
func Amount(quantity, price decimal.Decimal) decimal.Decimal {
	return quantity.Mul(price)
}

func resolve(routeID uint, product models.Product, override *models.RouteProductPricing) Resolution {
	r := Resolution{
		RouteID:        routeID,
		ProductID:      product.ID,
		ProductName:    product.Name,
		BasePrice:      product.PricePerTon,
		EffectivePrice: product.PricePerTon,
		IsAvailable:    true,
	}
	if override != nil {
		r.EffectivePrice = override.PricePerTon
		r.IsAvailable = override.Available()
		r.Overridden = true
	}
	return r
}

// Resolve returns the effective price and availability of product on route.
// Both must exist.
func Resolve(db *gorm.DB, routeID, productID uint) (*Resolution, error) {
	if err := requireRoute(db, routeID); err != nil {
		return nil, err
	}
	product, err := findProduct(db, productID)
	if err != nil {
		return nil, err
	}
	return ResolveProduct(db, routeID, *product)
}

// ResolveProduct is Resolve for a product the caller has already loaded
// (and possibly locked). The route is not checked.
func ResolveProduct(db *gorm.DB, routeID uint, product models.Product) (*Resolution, error) {
	override, err := findOverride(db, routeID, product.ID)
	if err != nil {
		return nil, err
	}
	r := resolve(routeID, product, override)
	return &r, nil
}

// QuoteFor resolves the pair and prices quantity the same way an entry
// write would.
func QuoteFor(db *gorm.DB, routeID, productID uint, quantity decimal.Decimal) (*Quote, error) {
	r, err := Resolve(db, routeID, productID)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Resolution:     *r,
		QuantityTons:   quantity,
		CalculatedRate: Amount(quantity, r.EffectivePrice),
	}, nil
}

// ListAvailable returns every product selectable on the route with its
// effective price, ordered by product name.
func ListAvailable(db *gorm.DB, routeID uint) ([]Resolution, error) {
	rows, err := RouteMatrix(db, routeID)
	if err != nil {
		return nil, err
	}
	out := make([]Resolution, 0, len(rows))
	for _, row := range rows {
		if row.IsAvailable {
			out = append(out, row.Resolution)
		}
	}
	return out, nil
}

// RouteMatrix lists all products for the route, available or not, ordered
// by product name.
func RouteMatrix(db *gorm.DB, routeID uint) ([]MatrixRow, error) {
	if err := requireRoute(db, routeID); err != nil {
		return nil, err
	}

	var products []models.Product
	if err := db.Order("name asc").Find(&products).Error; err != nil {
		return nil, err
	}

	var overrides []models.RouteProductPricing
	if err := db.Where("route_id = ?", routeID).Find(&overrides).Error; err != nil {
		return nil, err
	}
	byProduct := make(map[uint]*models.RouteProductPricing, len(overrides))
	for i := range overrides {
		byProduct[overrides[i].ProductID] = &overrides[i]
	}

	out := make([]MatrixRow, 0, len(products))
	for _, p := range products {
		o := byProduct[p.ID]
		row := MatrixRow{Resolution: resolve(routeID, p, o)}
		if o != nil {
			id := o.ID
			price := o.PricePerTon
			row.PricingID = &id
			row.OverridePrice = &price
			row.OverrideAvail = o.IsAvailable
		}
		out = append(out, row)
	}
	return out, nil
}

func requireRoute(db *gorm.DB, routeID uint) error {
	var route models.Route
	err := db.Select("id").First(&route, routeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Route not found")
	}
	return err
}

func findProduct(db *gorm.DB, productID uint) (*models.Product, error) {
	var product models.Product
	err := db.First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func findOverride(db *gorm.DB, routeID, productID uint) (*models.RouteProductPricing, error) {
	var rows []models.RouteProductPricing
	if err := db.Where("route_id = ? AND product_id = ?", routeID, productID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
