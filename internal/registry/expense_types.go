package registry

import (
	"strings"
	"time"

	"github.com/samhans17/delivery-tracker/internal/apperr"
	"github.com/samhans17/delivery-tracker/internal/database"
	"github.com/samhans17/delivery-tracker/internal/httpx"
	"github.com/samhans17/delivery-tracker/internal/logging"
	"github.com/samhans17/delivery-tracker/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ExpenseTypeRequest struct {
	Name *string `json:"name"`
}

type ExpenseTypeResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func expenseTypeResponse(et models.ExpenseType) ExpenseTypeResponse {
	return ExpenseTypeResponse{ID: et.ID, Name: et.Name, CreatedAt: et.CreatedAt}
}

func ListExpenseTypes(db *gorm.DB) ([]models.ExpenseType, error) {
	var rows []models.ExpenseType
	err := db.Order("name asc").Find(&rows).Error
	return rows, err
}

func GetExpenseType(db *gorm.DB, id uint) (*models.ExpenseType, error) {
	var et models.ExpenseType
	if err := db.First(&et, id).Error; err != nil {
		return nil, notFound(err, "Expense type not found")
	}
	return &et, nil
}

func CreateExpenseType(db *gorm.DB, req ExpenseTypeRequest) (*models.ExpenseType, error) {
	var et models.ExpenseType
	if req.Name != nil {
		et.Name = strings.TrimSpace(*req.Name)
	}
	if et.Name == "" {
		return nil, apperr.Validation("name is required")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, &models.ExpenseType{}, "name", et.Name, 0, "Expense type already exists"); err != nil {
			return err
		}
		return apperr.FromDB(tx.Create(&et).Error, apperr.OpWrite, "expense type")
	})
	if err != nil {
		return nil, err
	}
	logging.WithField("expense_type_id", et.ID).Info("expense type created")
	return &et, nil
}

func UpdateExpenseType(db *gorm.DB, id uint, req ExpenseTypeRequest) (*models.ExpenseType, error) {
	var et models.ExpenseType
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&et, id).Error; err != nil {
			return notFound(err, "Expense type not found")
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperr.Validation("name must not be empty")
			}
			if err := ensureUnique(tx, &models.ExpenseType{}, "name", name, id, "Expense type already exists"); err != nil {
				return err
			}
			et.Name = name
		}
		return apperr.FromDB(tx.Save(&et).Error, apperr.OpWrite, "expense type")
	})
	if err != nil {
		return nil, err
	}
	return &et, nil
}

func DeleteExpenseType(db *gorm.DB, id uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetExpenseType(tx, id); err != nil {
			return err
		}
		if err := ensureDeletable(tx, "Expense type", id, expensesByType); err != nil {
			return err
		}
		return apperr.FromDB(tx.Delete(&models.ExpenseType{}, id).Error, apperr.OpDelete, "expense type")
	})
	if err != nil {
		return err
	}
	logging.WithField("expense_type_id", id).Info("expense type deleted")
	return nil
}

// -------------------------
// Handlers
// -------------------------

// GET /api/expense-types
func ListExpenseTypesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := ListExpenseTypes(database.DB)
		if err != nil {
			return err
		}
		res := make([]ExpenseTypeResponse, 0, len(rows))
		for _, et := range rows {
			res = append(res, expenseTypeResponse(et))
		}
		return c.JSON(res)
	}
}

// GET /api/expense-types/:id
func GetExpenseTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		et, err := GetExpenseType(database.DB, id)
		if err != nil {
			return err
		}
		return c.JSON(expenseTypeResponse(*et))
	}
}

// POST /api/expense-types
func CreateExpenseTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ExpenseTypeRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		et, err := CreateExpenseType(database.DB, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(expenseTypeResponse(*et))
	}
}

// PUT /api/expense-types/:id
func UpdateExpenseTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ExpenseTypeRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		et, err := UpdateExpenseType(database.DB, id, body)
		if err != nil {
			return err
		}
		return c.JSON(expenseTypeResponse(*et))
	}
}

// DELETE /api/expense-types/:id
func DeleteExpenseTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := DeleteExpenseType(database.DB, id); err != nil {
			return err
		}
		return httpx.OK(c)
	}
}
