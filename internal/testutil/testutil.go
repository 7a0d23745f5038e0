// Package testutil provides an in-memory database and fixtures for package
// tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/samhans17/delivery-tracker/internal/database"
	"github.com/samhans17/delivery-tracker/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a private in-memory SQLite database with the full schema and
// the default expense types.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedExpenseTypes(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// UseDB installs db as database.DB for handler tests and restores the
// previous value afterwards.
func UseDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
}

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func Date(s string) time.Time {
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

func Route(t *testing.T, db *gorm.DB, name string) models.Route {
	t.Helper()
	r := models.Route{Name: name}
	require.NoError(t, db.Create(&r).Error)
	return r
}

func Product(t *testing.T, db *gorm.DB, name, price string) models.Product {
	t.Helper()
	p := models.Product{Name: name, PricePerTon: Dec(price)}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func Car(t *testing.T, db *gorm.DB, number string) models.Car {
	t.Helper()
	c := models.Car{CarNumber: number}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// ExpenseType returns one of the seeded types by name.
func ExpenseType(t *testing.T, db *gorm.DB, name string) models.ExpenseType {
	t.Helper()
	var et models.ExpenseType
	require.NoError(t, db.Where("name = ?", name).First(&et).Error)
	return et
}

// Override writes a pricing row directly, bypassing validation.
func Override(t *testing.T, db *gorm.DB, routeID, productID uint, price string, available *bool) models.RouteProductPricing {
	t.Helper()
	row := models.RouteProductPricing{
		RouteID:     routeID,
		ProductID:   productID,
		PricePerTon: Dec(price),
		IsAvailable: available,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func Bool(b bool) *bool { return &b }

// AssertDec compares decimals by value, so "500" equals "500.00".
func AssertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, Dec(want).Equal(got), "want %s, got %s", want, got.String())
}
