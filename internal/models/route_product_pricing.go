package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RouteProductPricing overrides a product's base price on one route.
// At most one row exists per (route, product); a missing row means the
// base price applies and the product is available.
type RouteProductPricing struct {
	ID          uint            `gorm:"primaryKey"`
	RouteID     uint            `gorm:"not null;uniqueIndex:idx_route_product_pricing_pair"`
	Route       Route           `gorm:"constraint:OnDelete:CASCADE"`
	ProductID   uint            `gorm:"not null;uniqueIndex:idx_route_product_pricing_pair"`
	Product     Product         `gorm:"constraint:OnDelete:CASCADE"`
	PricePerTon decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	IsAvailable *bool           `gorm:"default:true"` // NULL is read as available
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (RouteProductPricing) TableName() string {
	return "route_product_pricing"
}

// Available collapses the nullable column: only an explicit false hides
// the product.
func (p *RouteProductPricing) Available() bool {
	return p.IsAvailable == nil || *p.IsAvailable
}
