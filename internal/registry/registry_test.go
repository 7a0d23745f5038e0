package registry

import (
	"testing"

	"github.com/samhans17/delivery-tracker/internal/apperr"
	"github.com/samhans17/delivery-tracker/internal/models"
	"github.com/samhans17/delivery-tracker/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func str(s string) *string { return &s }

func dec(s string) *decimal.Decimal {
	d := testutil.Dec(s)
	return &d
}

func addEntry(t *testing.T, db *gorm.DB, carID, routeID, productID uint) {
	t.Helper()
	e := models.Entry{
		CarID:          carID,
		RouteID:        routeID,
		ProductID:      productID,
		QuantityTons:   testutil.Dec("1"),
		UnitPrice:      testutil.Dec("500"),
		CalculatedRate: testutil.Dec("500"),
		EntryDate:      testutil.Date("2024-03-01"),
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&e).Error)
}

func addExpense(t *testing.T, db *gorm.DB, carID, typeID uint) {
	t.Helper()
	e := models.Expense{
		CarID:         carID,
		ExpenseTypeID: typeID,
		Amount:        testutil.Dec("80"),
		ExpenseDate:   testutil.Date("2024-03-01"),
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&e).Error)
}

func blockedBy(t *testing.T, err error) map[string]int64 {
	t.Helper()
	require.True(t, apperr.Is(err, apperr.KindConflict), "want conflict, got %v", err)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	blocked, ok := ae.Details["blocked_by"].(map[string]int64)
	require.True(t, ok)
	return blocked
}

func TestRouteLifecycle(t *testing.T) {
	db := testutil.NewDB(t)

	r, err := CreateRoute(db, RouteRequest{Name: str("  North "), Description: str("coast")})
	require.NoError(t, err)
	assert.Equal(t, "North", r.Name)

	_, err = CreateRoute(db, RouteRequest{Name: str("North")})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.EqualError(t, err, "Route name already exists")

	_, err = CreateRoute(db, RouteRequest{Name: str("   ")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	south, err := CreateRoute(db, RouteRequest{Name: str("South")})
	require.NoError(t, err)

	_, err = UpdateRoute(db, south.ID, RouteRequest{Name: str("North")})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	// renaming to its own name is fine
	updated, err := UpdateRoute(db, r.ID, RouteRequest{Name: str("North"), Description: str("inland")})
	require.NoError(t, err)
	assert.Equal(t, "inland", updated.Description)

	_, err = UpdateRoute(db, 999, RouteRequest{Name: str("X")})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	rows, err := ListRoutes(db)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "North", rows[0].Name)
}

func TestDeleteRouteBlockedByEntries(t *testing.T) {
	db := testutil.NewDB(t)
	route := testutil.Route(t, db, "North")
	product := testutil.Product(t, db, "Sand", "500")
	car := testutil.Car(t, db, "TRK-1")
	testutil.Override(t, db, route.ID, product.ID, "600", testutil.Bool(true))
	addEntry(t, db, car.ID, route.ID, product.ID)
	addEntry(t, db, car.ID, route.ID, product.ID)

	err := DeleteRoute(db, route.ID)
	assert.Equal(t, map[string]int64{"entries": 2}, blockedBy(t, err))

	_, err = GetRoute(db, route.ID)
	require.NoError(t, err)
	var overrides int64
	require.NoError(t, db.Model(&models.RouteProductPricing{}).Count(&overrides).Error)
	assert.EqualValues(t, 1, overrides)
}

func TestDeleteRouteCascadesOverrides(t *testing.T) {
	db := testutil.NewDB(t)
	route := testutil.Route(t, db, "North")
	other := testutil.Route(t, db, "South")
	product := testutil.Product(t, db, "Sand", "500")
	testutil.Override(t, db, route.ID, product.ID, "600", testutil.Bool(true))
	testutil.Override(t, db, other.ID, product.ID, "650", testutil.Bool(true))

	require.NoError(t, DeleteRoute(db, route.ID))

	var rows []models.RouteProductPricing
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, other.ID, rows[0].RouteID)

	assert.True(t, apperr.Is(DeleteRoute(db, route.ID), apperr.KindNotFound))
}

func TestProductLifecycle(t *testing.T) {
	db := testutil.NewDB(t)

	_, err := CreateProduct(db, ProductRequest{Name: str("Sand")})
	assert.EqualError(t, err, "price_per_ton is required")
	_, err = CreateProduct(db, ProductRequest{Name: str("Sand"), PricePerTon: dec("0")})
	assert.EqualError(t, err, "price_per_ton must be greater than 0")

	p, err := CreateProduct(db, ProductRequest{Name: str("Sand"), PricePerTon: dec("500.004")})
	require.NoError(t, err)
	testutil.AssertDec(t, "500", p.PricePerTon)

	_, err = CreateProduct(db, ProductRequest{Name: str("Sand"), PricePerTon: dec("1")})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	p, err = UpdateProduct(db, p.ID, ProductRequest{PricePerTon: dec("525.5")})
	require.NoError(t, err)
	assert.Equal(t, "Sand", p.Name)
	testutil.AssertDec(t, "525.5", p.PricePerTon)

	_, err = UpdateProduct(db, p.ID, ProductRequest{PricePerTon: dec("-3")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDeleteProduct(t *testing.T) {
	db := testutil.NewDB(t)
	route := testutil.Route(t, db, "North")
	used := testutil.Product(t, db, "Sand", "500")
	unused := testutil.Product(t, db, "Gravel", "300")
	car := testutil.Car(t, db, "TRK-1")
	testutil.Override(t, db, route.ID, unused.ID, "350", testutil.Bool(false))
	addEntry(t, db, car.ID, route.ID, used.ID)

	assert.Equal(t, map[string]int64{"entries": 1}, blockedBy(t, DeleteProduct(db, used.ID)))

	require.NoError(t, DeleteProduct(db, unused.ID))
	var overrides int64
	require.NoError(t, db.Model(&models.RouteProductPricing{}).Count(&overrides).Error)
	assert.Zero(t, overrides)
}

func TestCarLifecycle(t *testing.T) {
	db := testutil.NewDB(t)

	car, err := CreateCar(db, CarRequest{CarNumber: str("TRK-1")})
	require.NoError(t, err)
	_, err = CreateCar(db, CarRequest{CarNumber: str("TRK-1")})
	assert.EqualError(t, err, "Car number already exists")
	_, err = CreateCar(db, CarRequest{})
	assert.EqualError(t, err, "car_number is required")

	route := testutil.Route(t, db, "North")
	product := testutil.Product(t, db, "Sand", "500")
	petrol := testutil.ExpenseType(t, db, "Petrol")
	addEntry(t, db, car.ID, route.ID, product.ID)
	addExpense(t, db, car.ID, petrol.ID)
	addExpense(t, db, car.ID, petrol.ID)

	assert.Equal(t, map[string]int64{"entries": 1, "expenses": 2}, blockedBy(t, DeleteCar(db, car.ID)))

	spare, err := CreateCar(db, CarRequest{CarNumber: str("TRK-2")})
	require.NoError(t, err)
	require.NoError(t, DeleteCar(db, spare.ID))
}

func TestExpenseTypes(t *testing.T) {
	db := testutil.NewDB(t)

	rows, err := ListExpenseTypes(db)
	require.NoError(t, err)
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Maintainance", "Other", "Petrol", "Service"}, names)

	_, err = CreateExpenseType(db, ExpenseTypeRequest{Name: str("Petrol")})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	tolls, err := CreateExpenseType(db, ExpenseTypeRequest{Name: str("Tolls")})
	require.NoError(t, err)

	car := testutil.Car(t, db, "TRK-1")
	addExpense(t, db, car.ID, tolls.ID)
	assert.Equal(t, map[string]int64{"expenses": 1}, blockedBy(t, DeleteExpenseType(db, tolls.ID)))

	other := testutil.ExpenseType(t, db, "Other")
	require.NoError(t, DeleteExpenseType(db, other.ID))
}
