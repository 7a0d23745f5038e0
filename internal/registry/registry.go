// Package registry manages the reference data the ledgers point at:
// routes, products, cars and expense types.
package registry

import (
	"errors"

	"github.com/samhans17/delivery-tracker/internal/apperr"
	"github.com/samhans17/delivery-tracker/internal/models"

	"gorm.io/gorm"
)

// reference is a table holding a foreign key to the row being deleted.
type reference struct {
	label  string
	model  interface{}
	column string
}

var (
	entriesByRoute   = reference{"entries", &models.Entry{}, "route_id"}
	entriesByProduct = reference{"entries", &models.Entry{}, "product_id"}
	entriesByCar     = reference{"entries", &models.Entry{}, "car_id"}
	expensesByCar    = reference{"expenses", &models.Expense{}, "car_id"}
	expensesByType   = reference{"expenses", &models.Expense{}, "expense_type_id"}
)

// ensureDeletable counts live references to id and returns a Conflict
// listing them when any exist.
func ensureDeletable(tx *gorm.DB, what string, id uint, refs ...reference) error {
	blocked := make(map[string]int64)
	for _, ref := range refs {
		var n int64
		if err := tx.Model(ref.model).Where(ref.column+" = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			blocked[ref.label] = n
		}
	}
	if len(blocked) == 0 {
		return nil
	}
	return apperr.Conflict("%s is in use and cannot be deleted", what).WithDetail("blocked_by", blocked)
}

// ensureUnique rejects value when another row already holds it in column.
// excludeID is the row being updated, 0 on create.
func ensureUnique(tx *gorm.DB, model interface{}, column, value string, excludeID uint, msg string) error {
	q := tx.Model(model).Where(column+" = ?", value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var ids []uint
	if err := q.Limit(1).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) > 0 {
		return apperr.Conflict("%s", msg)
	}
	return nil
}

func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s", msg)
	}
	return err
}
