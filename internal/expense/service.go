// Package expense records vehicle operating costs.
package expense

import (
	"errors"
	"strings"
	"time"

	"github.com/samhans17/delivery-tracker/internal/apperr"
	"github.com/samhans17/delivery-tracker/internal/logging"
	"github.com/samhans17/delivery-tracker/internal/models"
	"github.com/samhans17/delivery-tracker/internal/period"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Input struct {
	CarID         uint
	ExpenseTypeID uint
	Amount        decimal.Decimal
	Description   string
	ExpenseDate   time.Time
}

type Filter struct {
	CarID         *uint
	ExpenseTypeID *uint
	Month         *period.Month
}

func (in *Input) normalize() error {
	switch {
	case in.CarID == 0:
		return apperr.Validation("car_id is required")
	case in.ExpenseTypeID == 0:
		return apperr.Validation("expense_type_id is required")
	}
	in.Amount = in.Amount.Round(2)
	if !in.Amount.IsPositive() {
		return apperr.Validation("amount must be greater than 0")
	}
	if in.ExpenseDate.IsZero() {
		return apperr.Validation("expense_date is required")
	}
	y, m, d := in.ExpenseDate.Date()
	in.ExpenseDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	in.Description = strings.TrimSpace(in.Description)
	return nil
}

func Create(db *gorm.DB, in Input) (*models.Expense, error) {
	return write(db, 0, in)
}

func Update(db *gorm.DB, id uint, in Input) (*models.Expense, error) {
	return write(db, id, in)
}

func write(db *gorm.DB, id uint, in Input) (*models.Expense, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var saved models.Expense
	err := db.Transaction(func(tx *gorm.DB) error {
		if id != 0 {
			if err := tx.First(&saved, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("Expense not found")
				}
				return err
			}
		}
		if err := requireRef(tx, &models.Car{}, in.CarID, "car_id", "Car not found"); err != nil {
			return err
		}
		if err := requireRef(tx, &models.ExpenseType{}, in.ExpenseTypeID, "expense_type_id", "Expense type not found"); err != nil {
			return err
		}

		saved.CarID = in.CarID
		saved.ExpenseTypeID = in.ExpenseTypeID
		saved.Amount = in.Amount
		saved.Description = in.Description
		saved.ExpenseDate = in.ExpenseDate

		var err error
		if id == 0 {
			err = tx.Omit(clause.Associations).Create(&saved).Error
		} else {
			err = tx.Omit(clause.Associations).Save(&saved).Error
		}
		return apperr.FromDB(err, apperr.OpWrite, "expense")
	})
	if err != nil {
		return nil, err
	}

	logging.WithField("expense_id", saved.ID).
		WithField("amount", saved.Amount.String()).
		Info("expense saved")
	return Get(db, saved.ID)
}

func Delete(db *gorm.DB, id uint) error {
	res := db.Delete(&models.Expense{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Expense not found")
	}
	logging.WithField("expense_id", id).Info("expense deleted")
	return nil
}

func Get(db *gorm.DB, id uint) (*models.Expense, error) {
	var e models.Expense
	err := db.Preload("Car").Preload("ExpenseType").First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Expense not found")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns expenses newest first.
func List(db *gorm.DB, f Filter) ([]models.Expense, error) {
	q := db.Preload("Car").Preload("ExpenseType")
	if f.CarID != nil {
		q = q.Where("car_id = ?", *f.CarID)
	}
	if f.ExpenseTypeID != nil {
		q = q.Where("expense_type_id = ?", *f.ExpenseTypeID)
	}
	if f.Month != nil {
		from, to := f.Month.Range()
		q = q.Where("expense_date >= ? AND expense_date < ?", from, to)
	}

	var rows []models.Expense
	if err := q.Order("expense_date desc, created_at desc, id desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
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
