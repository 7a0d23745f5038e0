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

type CarRequest struct {
	CarNumber   *string `json:"car_number"`
	Description *string `json:"description"`
}

type CarResponse struct {
	ID          uint      `json:"id"`
	CarNumber   string    `json:"car_number"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func carResponse(c models.Car) CarResponse {
	return CarResponse{ID: c.ID, CarNumber: c.CarNumber, Description: c.Description, CreatedAt: c.CreatedAt}
}

func ListCars(db *gorm.DB) ([]models.Car, error) {
	var rows []models.Car
	err := db.Order("car_number asc").Find(&rows).Error
	return rows, err
}

func GetCar(db *gorm.DB, id uint) (*models.Car, error) {
	var car models.Car
	if err := db.First(&car, id).Error; err != nil {
		return nil, notFound(err, "Car not found")
	}
	return &car, nil
}

func CreateCar(db *gorm.DB, req CarRequest) (*models.Car, error) {
	var car models.Car
	if req.CarNumber != nil {
		car.CarNumber = strings.TrimSpace(*req.CarNumber)
	}
	if req.Description != nil {
		car.Description = strings.TrimSpace(*req.Description)
	}
	if car.CarNumber == "" {
		return nil, apperr.Validation("car_number is required")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, &models.Car{}, "car_number", car.CarNumber, 0, "Car number already exists"); err != nil {
			return err
		}
		return apperr.FromDB(tx.Create(&car).Error, apperr.OpWrite, "car")
	})
	if err != nil {
		return nil, err
	}
	logging.WithField("car_id", car.ID).Info("car created")
	return &car, nil
}

func UpdateCar(db *gorm.DB, id uint, req CarRequest) (*models.Car, error) {
	var car models.Car
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&car, id).Error; err != nil {
			return notFound(err, "Car not found")
		}
		if req.CarNumber != nil {
			number := strings.TrimSpace(*req.CarNumber)
			if number == "" {
				return apperr.Validation("car_number must not be empty")
			}
			if err := ensureUnique(tx, &models.Car{}, "car_number", number, id, "Car number already exists"); err != nil {
				return err
			}
			car.CarNumber = number
		}
		if req.Description != nil {
			car.Description = strings.TrimSpace(*req.Description)
		}
		return apperr.FromDB(tx.Save(&car).Error, apperr.OpWrite, "car")
	})
	if err != nil {
		return nil, err
	}
	return &car, nil
}

// DeleteCar refuses while entries or expenses still point at the car.
func DeleteCar(db *gorm.DB, id uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetCar(tx, id); err != nil {
			return err
		}
		if err := ensureDeletable(tx, "Car", id, entriesByCar, expensesByCar); err != nil {
			return err
		}
		return apperr.FromDB(tx.Delete(&models.Car{}, id).Error, apperr.OpDelete, "car")
	})
	if err != nil {
		return err
	}
	logging.WithField("car_id", id).Info("car deleted")
	return nil
}

// -------------------------
// Handlers
// -------------------------

// GET /api/cars
func ListCarsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := ListCars(database.DB)
		if err != nil {
			return err
		}
		res := make([]CarResponse, 0, len(rows))
		for _, car := range rows {
			res = append(res, carResponse(car))
		}
		return c.JSON(res)
	}
}

// GET /api/cars/:id
func GetCarHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		car, err := GetCar(database.DB, id)
		if err != nil {
			return err
		}
		return c.JSON(carResponse(*car))
	}
}

// POST /api/cars
func CreateCarHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CarRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		car, err := CreateCar(database.DB, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(carResponse(*car))
	}
}

// PUT /api/cars/:id
func UpdateCarHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body CarRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		car, err := UpdateCar(database.DB, id, body)
		if err != nil {
			return err
		}
		return c.JSON(carResponse(*car))
	}
}

// DELETE /api/cars/:id
func DeleteCarHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := DeleteCar(database.DB, id); err != nil {
			return err
		}
		return httpx.OK(c)
	}
}
