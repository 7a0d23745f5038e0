// Package stats aggregates the delivery and expense ledgers. Nothing is
// cached; every call reads the ledgers again.
package stats

import (
	"sort"
	"time"

	"github.com/samhans17/delivery-tracker/internal/period"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Filter selects the rows aggregated. A nil Month means all time.
type Filter struct {
	CarID *uint
	Month *period.Month
}

type ProductBreakdown struct {
	ProductID    uint            `json:"product_id"`
	Name         string          `json:"name"`
	Count        int64           `json:"count"`
	TotalTons    decimal.Decimal `json:"total_tons"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type MonthlyStats struct {
	TotalEntries     int64              `json:"total_entries"`
	TotalTons        decimal.Decimal    `json:"total_tons"`
	TotalRevenue     decimal.Decimal    `json:"total_revenue"`
	AvgRate          decimal.Decimal    `json:"avg_rate"`
	ProductBreakdown []ProductBreakdown `json:"product_breakdown"`
}

type TypeBreakdown struct {
	ExpenseTypeID uint            `json:"expense_type_id"`
	Name          string          `json:"name"`
	Count         int64           `json:"count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

type CarBreakdown struct {
	CarID       uint            `json:"car_id"`
	CarNumber   string          `json:"car_number"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type ExpenseStats struct {
	TotalExpenses int64           `json:"total_expenses"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AvgAmount     decimal.Decimal `json:"avg_amount"`
	TypeBreakdown []TypeBreakdown `json:"type_breakdown"`
	CarBreakdown  []CarBreakdown  `json:"car_breakdown"`
}

// Monthly summarizes entries. Totals are the sums of the per-product rows,
// which are ordered by revenue, highest first.
func Monthly(db *gorm.DB, f Filter) (*MonthlyStats, error) {
	q := db.Table("entries AS e").
		Select("e.product_id AS product_id, p.name AS name, COUNT(e.id) AS count, " +
			"SUM(e.quantity_tons) AS total_tons, SUM(e.calculated_rate) AS total_revenue").
		Joins("JOIN products p ON p.id = e.product_id")
	q = applyFilter(q, f, "e.car_id", "e.entry_date")

	var rows []ProductBreakdown
	if err := q.Group("e.product_id, p.name").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := &MonthlyStats{ProductBreakdown: make([]ProductBreakdown, 0, len(rows))}
	for _, r := range rows {
		// sqlite sums numeric columns as floats
		r.TotalTons = r.TotalTons.Round(3)
		r.TotalRevenue = r.TotalRevenue.Round(5)

		out.TotalEntries += r.Count
		out.TotalTons = out.TotalTons.Add(r.TotalTons)
		out.TotalRevenue = out.TotalRevenue.Add(r.TotalRevenue)
		out.ProductBreakdown = append(out.ProductBreakdown, r)
	}
	out.AvgRate = average(out.TotalRevenue, out.TotalEntries)

	sort.SliceStable(out.ProductBreakdown, func(i, j int) bool {
		a, b := out.ProductBreakdown[i], out.ProductBreakdown[j]
		if c := a.TotalRevenue.Cmp(b.TotalRevenue); c != 0 {
			return c > 0
		}
		return a.Name < b.Name
	})
	return out, nil
}

// Expenses summarizes expenses. The car breakdown ignores the car filter
// so every car can be compared over the same period.
func Expenses(db *gorm.DB, f Filter) (*ExpenseStats, error) {
	tq := db.Table("expenses AS x").
		Select("x.expense_type_id AS expense_type_id, t.name AS name, COUNT(x.id) AS count, SUM(x.amount) AS total_amount").
		Joins("JOIN expense_types t ON t.id = x.expense_type_id")
	tq = applyFilter(tq, f, "x.car_id", "x.expense_date")

	var types []TypeBreakdown
	if err := tq.Group("x.expense_type_id, t.name").Scan(&types).Error; err != nil {
		return nil, err
	}

	cq := db.Table("expenses AS x").
		Select("x.car_id AS car_id, c.car_number AS car_number, COUNT(x.id) AS count, SUM(x.amount) AS total_amount").
		Joins("JOIN cars c ON c.id = x.car_id")
	cq = applyFilter(cq, Filter{Month: f.Month}, "x.car_id", "x.expense_date")

	var cars []CarBreakdown
	if err := cq.Group("x.car_id, c.car_number").Scan(&cars).Error; err != nil {
		return nil, err
	}

	out := &ExpenseStats{
		TypeBreakdown: make([]TypeBreakdown, 0, len(types)),
		CarBreakdown:  make([]CarBreakdown, 0, len(cars)),
	}
	for _, r := range types {
		r.TotalAmount = r.TotalAmount.Round(2)
		out.TotalExpenses += r.Count
		out.TotalAmount = out.TotalAmount.Add(r.TotalAmount)
		out.TypeBreakdown = append(out.TypeBreakdown, r)
	}
	for _, r := range cars {
		r.TotalAmount = r.TotalAmount.Round(2)
		out.CarBreakdown = append(out.CarBreakdown, r)
	}
	out.AvgAmount = average(out.TotalAmount, out.TotalExpenses)

	sort.SliceStable(out.TypeBreakdown, func(i, j int) bool {
		a, b := out.TypeBreakdown[i], out.TypeBreakdown[j]
		if c := a.TotalAmount.Cmp(b.TotalAmount); c != 0 {
			return c > 0
		}
		return a.Name < b.Name
	})
	sort.SliceStable(out.CarBreakdown, func(i, j int) bool {
		a, b := out.CarBreakdown[i], out.CarBreakdown[j]
		if c := a.TotalAmount.Cmp(b.TotalAmount); c != 0 {
			return c > 0
		}
		return a.CarNumber < b.CarNumber
	})
	return out, nil
}

func applyFilter(q *gorm.DB, f Filter, carCol, dateCol string) *gorm.DB {
	if f.CarID != nil {
		q = q.Where(carCol+" = ?", *f.CarID)
	}
	if f.Month != nil {
		from, to := f.Month.Range()
		q = q.Where(dateCol+" >= ? AND "+dateCol+" < ?", from, to)
	}
	return q
}

func average(total decimal.Decimal, n int64) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(n)).Round(2)
}

// yearRange is [Jan 1 of year, Jan 1 of year+1).
func yearRange(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}
