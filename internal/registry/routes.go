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

type RouteRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type RouteResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func routeResponse(r models.Route) RouteResponse {
	return RouteResponse{ID: r.ID, Name: r.Name, Description: r.Description, CreatedAt: r.CreatedAt}
}

func ListRoutes(db *gorm.DB) ([]models.Route, error) {
	var rows []models.Route
	err := db.Order("name asc").Find(&rows).Error
	return rows, err
}

func GetRoute(db *gorm.DB, id uint) (*models.Route, error) {
	var r models.Route
	if err := db.First(&r, id).Error; err != nil {
		return nil, notFound(err, "Route not found")
	}
	return &r, nil
}

func CreateRoute(db *gorm.DB, req RouteRequest) (*models.Route, error) {
	var r models.Route
	if req.Name != nil {
		r.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		r.Description = strings.TrimSpace(*req.Description)
	}
	if r.Name == "" {
		return nil, apperr.Validation("name is required")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, &models.Route{}, "name", r.Name, 0, "Route name already exists"); err != nil {
			return err
		}
		return apperr.FromDB(tx.Create(&r).Error, apperr.OpWrite, "route")
	})
	if err != nil {
		return nil, err
	}
	logging.WithField("route_id", r.ID).Info("route created")
	return &r, nil
}

// UpdateRoute changes only the fields present in req.
func UpdateRoute(db *gorm.DB, id uint, req RouteRequest) (*models.Route, error) {
	var r models.Route
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&r, id).Error; err != nil {
			return notFound(err, "Route not found")
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperr.Validation("name must not be empty")
			}
			if err := ensureUnique(tx, &models.Route{}, "name", name, id, "Route name already exists"); err != nil {
				return err
			}
			r.Name = name
		}
		if req.Description != nil {
			r.Description = strings.TrimSpace(*req.Description)
		}
		return apperr.FromDB(tx.Save(&r).Error, apperr.OpWrite, "route")
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRoute removes a route nobody delivered on, together with its
// pricing overrides.
func DeleteRoute(db *gorm.DB, id uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetRoute(tx, id); err != nil {
			return err
		}
		if err := ensureDeletable(tx, "Route", id, entriesByRoute); err != nil {
			return err
		}
		if err := tx.Where("route_id = ?", id).Delete(&models.RouteProductPricing{}).Error; err != nil {
			return err
		}
		return apperr.FromDB(tx.Delete(&models.Route{}, id).Error, apperr.OpDelete, "route")
	})
	if err != nil {
		return err
	}
	logging.WithField("route_id", id).Info("route deleted")
	return nil
}

// -------------------------
// Handlers
// -------------------------

// GET /api/routes
func ListRoutesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := ListRoutes(database.DB)
		if err != nil {
			return err
		}
		res := make([]RouteResponse, 0, len(rows))
		for _, r := range rows {
			res = append(res, routeResponse(r))
		}
		return c.JSON(res)
	}
}

// GET /api/routes/:id
func GetRouteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		r, err := GetRoute(database.DB, id)
		if err != nil {
			return err
		}
		return c.JSON(routeResponse(*r))
	}
}

// POST /api/routes
func CreateRouteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RouteRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		r, err := CreateRoute(database.DB, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(routeResponse(*r))
	}
}

// PUT /api/routes/:id
func UpdateRouteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body RouteRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		r, err := UpdateRoute(database.DB, id, body)
		if err != nil {
			return err
		}
		return c.JSON(routeResponse(*r))
	}
}

// DELETE /api/routes/:id
func DeleteRouteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := DeleteRoute(database.DB, id); err != nil {
			return err
		}
		return httpx.OK(c)
	}
}
