package pricing

import (
	"github.com/samhans17/delivery-tracker/internal/apperr"
	"github.com/samhans17/delivery-tracker/internal/database"
	"github.com/samhans17/delivery-tracker/internal/logging"
	"github.com/samhans17/delivery-tracker/internal/metrics"
	"github.com/samhans17/delivery-tracker/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OverrideInput sets the price and availability of one product on a route.
// IsAvailable must be given explicitly. PricePerTon may be omitted only
// when the product is being hidden; the base price is stored then.
type OverrideInput struct {
	ProductID   uint
	PricePerTon *decimal.Decimal
	IsAvailable *bool
}

// Upsert inserts or replaces the override for (routeID, in.ProductID).
func Upsert(db *gorm.DB, routeID uint, in OverrideInput) (*models.RouteProductPricing, error) {
	var saved *models.RouteProductPricing
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := requireRoute(tx, routeID); err != nil {
			return err
		}
		row, err := upsertOne(tx, routeID, in)
		if err != nil {
			return err
		}
		saved = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OverridesWritten(1)
	logging.WithField("route_id", routeID).
		WithField("product_id", in.ProductID).
		WithField("price_per_ton", saved.PricePerTon.String()).
		WithField("is_available", saved.Available()).
		Info("pricing override saved")
	return saved, nil
}

// BulkUpsert saves every item for the route in one transaction. Any invalid
// item rolls the whole batch back.
func BulkUpsert(db *gorm.DB, routeID uint, items []OverrideInput) (int, error) {
	seen := make(map[uint]bool, len(items))
	for _, in := range items {
		if seen[in.ProductID] {
			return 0, apperr.Validation("product_id %d appears more than once", in.ProductID)
		}
		seen[in.ProductID] = true
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// the route comes from the request body here, not the path
		err := requireRoute(tx, routeID)
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.InvalidReference("route_id", "Route not found")
		}
		if err != nil {
			return err
		}
		for _, in := range items {
			if _, err := upsertOne(tx, routeID, in); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.OverridesWritten(len(items))
	logging.WithField("route_id", routeID).WithField("count", len(items)).Info("pricing overrides saved")
	return len(items), nil
}

// DeleteOverride drops the override so the base price applies again.
func DeleteOverride(db *gorm.DB, routeID, productID uint) error {
	res := db.Where("route_id = ? AND product_id = ?", routeID, productID).Delete(&models.RouteProductPricing{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Pricing override not found")
	}
	logging.WithField("route_id", routeID).WithField("product_id", productID).Info("pricing override removed")
	return nil
}

// upsertOne must run inside a transaction. The product row is locked for
// update so entry writes resolving the same product wait for the commit.
func upsertOne(tx *gorm.DB, routeID uint, in OverrideInput) (*models.RouteProductPricing, error) {
	if in.ProductID == 0 {
		return nil, apperr.Validation("product_id is required")
	}
	if in.IsAvailable == nil {
		return nil, apperr.Validation("is_available is required")
	}

	product, err := findProduct(database.ForUpdate(tx), in.ProductID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.InvalidReference("product_id", "Product not found")
	}
	if err != nil {
		return nil, err
	}

	var price decimal.Decimal
	switch {
	case in.PricePerTon != nil:
		price = in.PricePerTon.Round(2)
	case !*in.IsAvailable:
		price = product.PricePerTon
	default:
		return nil, apperr.Validation("price_per_ton is required")
	}
	if !price.IsPositive() {
		return nil, apperr.Validation("price_per_ton must be greater than 0")
	}

	available := *in.IsAvailable
	row := models.RouteProductPricing{
		RouteID:     routeID,
		ProductID:   in.ProductID,
		PricePerTon: price,
		IsAvailable: &available,
	}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "route_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"price_per_ton", "is_available", "updated_at"}),
	}).Omit(clause.Associations).Create(&row).Error
	if err != nil {
		return nil, apperr.FromDB(err, apperr.OpWrite, "pricing override")
	}

	// the id reported after an ON CONFLICT update is driver dependent
	var saved models.RouteProductPricing
	if err := tx.Where("route_id = ? AND product_id = ?", routeID, in.ProductID).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}
