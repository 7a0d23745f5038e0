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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRequest struct {
	Name        *string          `json:"name"`
	PricePerTon *decimal.Decimal `json:"price_per_ton"`
}

type ProductResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	PricePerTon decimal.Decimal `json:"price_per_ton"`
	CreatedAt   time.Time       `json:"created_at"`
}

func productResponse(p models.Product) ProductResponse {
	return ProductResponse{ID: p.ID, Name: p.Name, PricePerTon: p.PricePerTon, CreatedAt: p.CreatedAt}
}

func basePrice(p *decimal.Decimal) (decimal.Decimal, error) {
	if p == nil {
		return decimal.Zero, apperr.Validation("price_per_ton is required")
	}
	v := p.Round(2)
	if !v.IsPositive() {
		return decimal.Zero, apperr.Validation("price_per_ton must be greater than 0")
	}
	return v, nil
}

func ListProducts(db *gorm.DB) ([]models.Product, error) {
	var rows []models.Product
	err := db.Order("name asc").Find(&rows).Error
	return rows, err
}

func GetProduct(db *gorm.DB, id uint) (*models.Product, error) {
	var p models.Product
	if err := db.First(&p, id).Error; err != nil {
		return nil, notFound(err, "Product not found")
	}
	return &p, nil
}

func CreateProduct(db *gorm.DB, req ProductRequest) (*models.Product, error) {
	var p models.Product
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if p.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	price, err := basePrice(req.PricePerTon)
	if err != nil {
		return nil, err
	}
	p.PricePerTon = price

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, &models.Product{}, "name", p.Name, 0, "Product name already exists"); err != nil {
			return err
		}
		return apperr.FromDB(tx.Create(&p).Error, apperr.OpWrite, "product")
	})
	if err != nil {
		return nil, err
	}
	logging.WithField("product_id", p.ID).WithField("price_per_ton", p.PricePerTon.String()).Info("product created")
	return &p, nil
}

// UpdateProduct changes the name and/or base price. Existing entries keep
// the amount they were priced at.
func UpdateProduct(db *gorm.DB, id uint, req ProductRequest) (*models.Product, error) {
	var p models.Product
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return notFound(err, "Product not found")
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperr.Validation("name must not be empty")
			}
			if err := ensureUnique(tx, &models.Product{}, "name", name, id, "Product name already exists"); err != nil {
				return err
			}
			p.Name = name
		}
		if req.PricePerTon != nil {
			price, err := basePrice(req.PricePerTon)
			if err != nil {
				return err
			}
			p.PricePerTon = price
		}
		return apperr.FromDB(tx.Save(&p).Error, apperr.OpWrite, "product")
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct removes a product never delivered, together with its
// route overrides.
func DeleteProduct(db *gorm.DB, id uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetProduct(tx, id); err != nil {
			return err
		}
		if err := ensureDeletable(tx, "Product", id, entriesByProduct); err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.RouteProductPricing{}).Error; err != nil {
			return err
		}
		return apperr.FromDB(tx.Delete(&models.Product{}, id).Error, apperr.OpDelete, "product")
	})
	if err != nil {
		return err
	}
	logging.WithField("product_id", id).Info("product deleted")
	return nil
}

// -------------------------
// Handlers
// -------------------------

// GET /api/products
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := ListProducts(database.DB)
		if err != nil {
			return err
		}
		res := make([]ProductResponse, 0, len(rows))
		for _, p := range rows {
			res = append(res, productResponse(p))
		}
		return c.JSON(res)
	}
}

// GET /api/products/:id
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		p, err := GetProduct(database.DB, id)
		if err != nil {
			return err
		}
		return c.JSON(productResponse(*p))
	}
}

// POST /api/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		p, err := CreateProduct(database.DB, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(productResponse(*p))
	}
}

// PUT /api/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ProductRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		p, err := UpdateProduct(database.DB, id, body)
		if err != nil {
			return err
		}
		return c.JSON(productResponse(*p))
	}
}

// DELETE /api/products/:id
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := DeleteProduct(database.DB, id); err != nil {
			return err
		}
		return httpx.OK(c)
	}
}
