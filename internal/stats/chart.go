package stats

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ChartPoint struct {
	Month    string          `json:"month"` // "2024-03"
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

type ChartTotals struct {
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

type YearlyChart struct {
	Year        int          `json:"year"`
	CarID       *uint        `json:"car_id"`
	Points      []ChartPoint `json:"points"`
	GrandTotals ChartTotals  `json:"grand_totals"`
}

// Yearly returns one point per calendar month of year, empty months
// included, with revenue from entries and costs from expenses.
func Yearly(db *gorm.DB, year int, carID *uint) (*YearlyChart, error) {
	from, to := yearRange(year)

	type row struct {
		Day    time.Time       `gorm:"column:day"`
		Amount decimal.Decimal `gorm:"column:amount"`
	}

	var revenue []row
	rq := db.Table("entries").
		Select("entry_date AS day, calculated_rate AS amount").
		Where("entry_date >= ? AND entry_date < ?", from, to)
	if carID != nil {
		rq = rq.Where("car_id = ?", *carID)
	}
	if err := rq.Scan(&revenue).Error; err != nil {
		return nil, err
	}

	var costs []row
	cq := db.Table("expenses").
		Select("expense_date AS day, amount AS amount").
		Where("expense_date >= ? AND expense_date < ?", from, to)
	if carID != nil {
		cq = cq.Where("car_id = ?", *carID)
	}
	if err := cq.Scan(&costs).Error; err != nil {
		return nil, err
	}

	points := make([]ChartPoint, 12)
	for i := range points {
		points[i] = ChartPoint{
			Month:    from.AddDate(0, i, 0).Format("2006-01"),
			Revenue:  decimal.Zero,
			Expenses: decimal.Zero,
		}
	}
	for _, r := range revenue {
		i := int(r.Day.Month()) - 1
		points[i].Revenue = points[i].Revenue.Add(r.Amount)
	}
	for _, r := range costs {
		i := int(r.Day.Month()) - 1
		points[i].Expenses = points[i].Expenses.Add(r.Amount)
	}

	res := &YearlyChart{Year: year, CarID: carID, Points: points}
	res.GrandTotals.Revenue = decimal.Zero
	res.GrandTotals.Expenses = decimal.Zero
	for i := range points {
		points[i].Revenue = points[i].Revenue.Round(5)
		points[i].Expenses = points[i].Expenses.Round(2)
		points[i].Net = points[i].Revenue.Sub(points[i].Expenses)

		res.GrandTotals.Revenue = res.GrandTotals.Revenue.Add(points[i].Revenue)
		res.GrandTotals.Expenses = res.GrandTotals.Expenses.Add(points[i].Expenses)
	}
	res.GrandTotals.Net = res.GrandTotals.Revenue.Sub(res.GrandTotals.Expenses)
	return res, nil
}
