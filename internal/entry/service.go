// Package entry is the delivery ledger. The billed amount of an entry is
// priced once, when the entry is written, and stored with it.
package entry

import (
	"errors"
	"time"

	"github.com/samhans17/delivery-tracker/internal/apperr"
	"github.com/samhans17/delivery-tracker/internal/database"
	"github.com/samhans17/delivery-tracker/internal/logging"
	"github.com/samhans17/delivery-tracker/internal/metrics"
	"github.com/samhans17/delivery-tracker/internal/models"
	"github.com/samhans17/delivery-tracker/internal/period"
	"github.com/samhans17/delivery-tracker/internal/pricing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Input struct {
	CarID        uint
	RouteID      uint
	ProductID    uint
	QuantityTons decimal.Decimal
	EntryDate    time.Time
}

// Filter narrows List. Nil fields are not applied.
type Filter struct {
	CarID *uint
	Month *period.Month
}

func (in *Input) normalize() error {
	switch {
	case in.CarID == 0:
		return apperr.Validation("car_id is required")
	case in.RouteID == 0:
		return apperr.Validation("route_id is required")
	case in.ProductID == 0:
		return apperr.Validation("product_id is required")
	}
	in.QuantityTons = in.QuantityTons.Round(3)
	if !in.QuantityTons.IsPositive() {
		return apperr.Validation("quantity_tons must be greater than 0")
	}
	if in.EntryDate.IsZero() {
		return apperr.Validation("entry_date is required")
	}
	y, m, d := in.EntryDate.Date()
	in.EntryDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return nil
}

// Create prices and stores a new entry.
func Create(db *gorm.DB, in Input) (*models.Entry, error) {
	return write(db, 0, in)
}

// Update re-prices the entry with the current effective price of the
// (possibly changed) route and product.
func Update(db *gorm.DB, id uint, in Input) (*models.Entry, error) {
	return write(db, id, in)
}

func write(db *gorm.DB, id uint, in Input) (*models.Entry, error) {
	op := "create"
	if id != 0 {
		op = "update"
	}

	if err := in.normalize(); err != nil {
		metrics.EntryRejected(err)
		return nil, err
	}

	var saved models.Entry
	err := db.Transaction(func(tx *gorm.DB) error {
		if id != 0 {
			if err := tx.First(&saved, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("Entry not found")
				}
				return err
			}
		}

		// shared locks keep the referenced rows and the override stable
		// until commit on postgres
		locked := database.ForShare(tx)

		if err := requireRef(locked, &models.Car{}, in.CarID, "car_id", "Car not found"); err != nil {
			return err
		}
		if err := requireRef(locked, &models.Route{}, in.RouteID, "route_id", "Route not found"); err != nil {
			return err
		}
		var product models.Product
		if err := locked.First(&product, in.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.InvalidReference("product_id", "Product not found")
			}
			return err
		}

		res, err := pricing.ResolveProduct(locked, in.RouteID, product)
		if err != nil {
			return err
		}
		if !res.IsAvailable {
			return apperr.ProductUnavailable("Product not available for this route")
		}

		saved.CarID = in.CarID
		saved.RouteID = in.RouteID
		saved.ProductID = in.ProductID
		saved.QuantityTons = in.QuantityTons
		saved.UnitPrice = res.EffectivePrice
		saved.CalculatedRate = pricing.Amount(in.QuantityTons, res.EffectivePrice)
		saved.EntryDate = in.EntryDate

		if id == 0 {
			err = tx.Omit(clause.Associations).Create(&saved).Error
		} else {
			err = tx.Omit(clause.Associations).Save(&saved).Error
		}
		return apperr.FromDB(err, apperr.OpWrite, "entry")
	})
	if err != nil {
		metrics.EntryRejected(err)
		return nil, err
	}

	metrics.EntryWritten(op)
	logging.WithField("entry_id", saved.ID).
		WithField("op", op).
		WithField("calculated_rate", saved.CalculatedRate.String()).
		Info("entry saved")

	return Get(db, saved.ID)
}

// Delete removes the entry. A missing id is reported so clients notice
// stale lists.
func Delete(db *gorm.DB, id uint) error {
	res := db.Delete(&models.Entry{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Entry not found")
	}
	metrics.EntryWritten("delete")
	logging.WithField("entry_id", id).Info("entry deleted")
	return nil
}

// Get loads one entry with its car, route and product.
func Get(db *gorm.DB, id uint) (*models.Entry, error) {
	var e models.Entry
	err := withRefs(db).First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Entry not found")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns entries newest first.
func List(db *gorm.DB, f Filter) ([]models.Entry, error) {
	q := withRefs(db)
	if f.CarID != nil {
		q = q.Where("car_id = ?", *f.CarID)
	}
	if f.Month != nil {
		from, to := f.Month.Range()
		q = q.Where("entry_date >= ? AND entry_date < ?", from, to)
	}

	var rows []models.Entry
	if err := q.Order("entry_date desc, created_at desc, id desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func withRefs(db *gorm.DB) *gorm.DB {
	return db.Preload("Car").Preload("Route").Preload("Product")
}

func requireRef(tx *gorm.DB, model interface{}, id uint, field, msg string) error {
	var ids []uint
	if err := tx.Model(model).Where("id = ?", id).Limit(1).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return apperr.InvalidReference(field, "%s", msg)
	}
	return nil
}
