package entry

import (
	"testing"
	"time"

	"github.com/samhans17/delivery-tracker/internal/apperr"
	"github.com/samhans17/delivery-tracker/internal/models"
	"github.com/samhans17/delivery-tracker/internal/period"
	"github.com/samhans17/delivery-tracker/internal/pricing"
	"github.com/samhans17/delivery-tracker/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	car     models.Car
	route   models.Route
	product models.Product
}

func setup(t *testing.T) fixture {
	db := testutil.NewDB(t)
	return fixture{
		db:      db,
		car:     testutil.Car(t, db, "TRK-1"),
		route:   testutil.Route(t, db, "North"),
		product: testutil.Product(t, db, "Sand", "500"),
	}
}

func (f fixture) input(qty, date string) Input {
	return Input{
		CarID:        f.car.ID,
		RouteID:      f.route.ID,
		ProductID:    f.product.ID,
		QuantityTons: testutil.Dec(qty),
		EntryDate:    testutil.Date(date),
	}
}

func setPrice(t *testing.T, db *gorm.DB, routeID, productID uint, p string) {
	t.Helper()
	d := testutil.Dec(p)
	_, err := pricing.Upsert(db, routeID, pricing.OverrideInput{ProductID: productID, PricePerTon: &d, IsAvailable: testutil.Bool(true)})
	require.NoError(t, err)
}

func TestCreateFreezesAmountAtBasePrice(t *testing.T) {
	f := setup(t)

	e, err := Create(f.db, f.input("10", "2024-03-15"))
	require.NoError(t, err)
	testutil.AssertDec(t, "5000", e.CalculatedRate)
	testutil.AssertDec(t, "500", e.UnitPrice)
	assert.Equal(t, "TRK-1", e.Car.CarNumber)
	assert.Equal(t, "North", e.Route.Name)
	assert.Equal(t, "Sand", e.Product.Name)
	assert.Equal(t, "2024-03-15", period.FormatDate(e.EntryDate))
}

func TestCreateUsesRouteOverride(t *testing.T) {
	f := setup(t)
	setPrice(t, f.db, f.route.ID, f.product.ID, "600")

	e, err := Create(f.db, f.input("2.5", "2024-03-15"))
	require.NoError(t, err)
	testutil.AssertDec(t, "1500", e.CalculatedRate)
}

func TestPriceChangeLeavesStoredEntriesAlone(t *testing.T) {
	f := setup(t)

	e, err := Create(f.db, f.input("10", "2024-03-15"))
	require.NoError(t, err)
	testutil.AssertDec(t, "5000", e.CalculatedRate)

	setPrice(t, f.db, f.route.ID, f.product.ID, "600")
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", f.product.ID).
		Update("price_per_ton", decimal.NewFromInt(700)).Error)

	got, err := Get(f.db, e.ID)
	require.NoError(t, err)
	testutil.AssertDec(t, "5000", got.CalculatedRate)
	testutil.AssertDec(t, "500", got.UnitPrice)

	// saving again picks up the override
	updated, err := Update(f.db, e.ID, f.input("10", "2024-03-15"))
	require.NoError(t, err)
	testutil.AssertDec(t, "6000", updated.CalculatedRate)
	testutil.AssertDec(t, "600", updated.UnitPrice)
	assert.Equal(t, e.ID, updated.ID)
}

func TestUnavailableProductIsRejected(t *testing.T) {
	f := setup(t)
	testutil.Override(t, f.db, f.route.ID, f.product.ID, "500", testutil.Bool(false))

	_, err := Create(f.db, f.input("10", "2024-03-15"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindProductUnavailable))
	assert.EqualError(t, err, "Product not available for this route")

	var count int64
	require.NoError(t, f.db.Model(&models.Entry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateToUnavailablePairKeepsOldRow(t *testing.T) {
	f := setup(t)
	other := testutil.Product(t, f.db, "Gravel", "300")
	testutil.Override(t, f.db, f.route.ID, other.ID, "300", testutil.Bool(false))

	e, err := Create(f.db, f.input("4", "2024-03-15"))
	require.NoError(t, err)

	in := f.input("4", "2024-03-15")
	in.ProductID = other.ID
	_, err = Update(f.db, e.ID, in)
	assert.True(t, apperr.Is(err, apperr.KindProductUnavailable))

	got, err := Get(f.db, e.ID)
	require.NoError(t, err)
	assert.Equal(t, f.product.ID, got.ProductID)
	testutil.AssertDec(t, "2000", got.CalculatedRate)
}

func TestWriteValidation(t *testing.T) {
	f := setup(t)

	cases := []struct {
		name  string
		in    func() Input
		kind  apperr.Kind
		field string
	}{
		{"zero quantity", func() Input { return f.input("0", "2024-03-15") }, apperr.KindValidation, ""},
		{"negative quantity", func() Input { return f.input("-1", "2024-03-15") }, apperr.KindValidation, ""},
		{"missing date", func() Input { in := f.input("1", "2024-03-15"); in.EntryDate = time.Time{}; return in }, apperr.KindValidation, ""},
		{"unknown car", func() Input { in := f.input("1", "2024-03-15"); in.CarID = 999; return in }, apperr.KindInvalidReference, "car_id"},
		{"unknown route", func() Input { in := f.input("1", "2024-03-15"); in.RouteID = 999; return in }, apperr.KindInvalidReference, "route_id"},
		{"unknown product", func() Input { in := f.input("1", "2024-03-15"); in.ProductID = 999; return in }, apperr.KindInvalidReference, "product_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Create(f.db, tc.in())
			require.Error(t, err)
			assert.True(t, apperr.Is(err, tc.kind), err.Error())
			if tc.field != "" {
				var ae *apperr.Error
				require.ErrorAs(t, err, &ae)
				assert.Equal(t, tc.field, ae.Field)
			}
		})
	}

	in := f.input("1", "2024-03-15")
	in.CarID = 999
	_, err := Create(f.db, in)
	assert.EqualError(t, err, "Car not found")

	_, err = Update(f.db, 12345, f.input("1", "2024-03-15"))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestQuantityRoundedBeforePricing(t *testing.T) {
	f := setup(t)

	e, err := Create(f.db, f.input("1.23456", "2024-03-15"))
	require.NoError(t, err)
	testutil.AssertDec(t, "1.235", e.QuantityTons)
	testutil.AssertDec(t, "617.5", e.CalculatedRate)
	assert.True(t, e.QuantityTons.Mul(e.UnitPrice).Equal(e.CalculatedRate))
}

func TestDelete(t *testing.T) {
	f := setup(t)
	e, err := Create(f.db, f.input("1", "2024-03-15"))
	require.NoError(t, err)

	require.NoError(t, Delete(f.db, e.ID))
	assert.True(t, apperr.Is(Delete(f.db, e.ID), apperr.KindNotFound))

	_, err = Get(f.db, e.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListFiltersAndOrder(t *testing.T) {
	f := setup(t)
	other := testutil.Car(t, f.db, "TRK-2")

	a, err := Create(f.db, f.input("1", "2024-03-01"))
	require.NoError(t, err)
	b, err := Create(f.db, f.input("2", "2024-03-31"))
	require.NoError(t, err)
	_, err = Create(f.db, f.input("3", "2024-04-01"))
	require.NoError(t, err)
	in := f.input("4", "2024-03-10")
	in.CarID = other.ID
	c, err := Create(f.db, in)
	require.NoError(t, err)

	march, err := period.NewMonth(2024, 3)
	require.NoError(t, err)

	rows, err := List(f.db, Filter{Month: &march})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []uint{b.ID, c.ID, a.ID}, []uint{rows[0].ID, rows[1].ID, rows[2].ID})

	rows, err = List(f.db, Filter{Month: &march, CarID: &f.car.ID})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows, err = List(f.db, Filter{})
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestResaveAfterOverridePicksUpNewPrice(t *testing.T) {
	db := testutil.NewDB(t)
	car := testutil.Car(t, db, "CAR-1")
	r1 := testutil.Route(t, db, "R1")
	p1 := testutil.Product(t, db, "P1", "100")
	in := Input{CarID: car.ID, RouteID: r1.ID, ProductID: p1.ID, QuantityTons: testutil.Dec("5"), EntryDate: testutil.Date("2024-06-01")}

	first, err := Create(db, in)
	require.NoError(t, err)
	testutil.AssertDec(t, "500", first.CalculatedRate)

	setPrice(t, db, r1.ID, p1.ID, "120")

	untouched, err := Get(db, first.ID)
	require.NoError(t, err)
	testutil.AssertDec(t, "500", untouched.CalculatedRate)

	resaved, err := Update(db, first.ID, in)
	require.NoError(t, err)
	testutil.AssertDec(t, "600", resaved.CalculatedRate)
}
