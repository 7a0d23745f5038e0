// Package export renders ledger listings as XLSX workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/samhans17/delivery-tracker/internal/models"
	"github.com/samhans17/delivery-tracker/internal/period"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	entriesSheet  = "Entries"
	expensesSheet = "Expenses"
)

var (
	entryHeader   = []interface{}{"Date", "Car", "Route", "Product", "Quantity (t)", "Unit price", "Amount"}
	expenseHeader = []interface{}{"Date", "Car", "Expense type", "Description", "Amount"}
)

// WriteEntries writes one row per entry followed by a totals row.
func WriteEntries(w io.Writer, rows []models.Entry) error {
	f, err := newBook(entriesSheet, entryHeader)
	if err != nil {
		return err
	}
	defer f.Close()

	tons, revenue := decimal.Zero, decimal.Zero
	for i, e := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		err := f.SetSheetRow(entriesSheet, cell, &[]interface{}{
			period.FormatDate(e.EntryDate),
			e.Car.CarNumber,
			e.Route.Name,
			e.Product.Name,
			e.QuantityTons.InexactFloat64(),
			e.UnitPrice.InexactFloat64(),
			e.CalculatedRate.InexactFloat64(),
		})
		if err != nil {
			return fmt.Errorf("write entry row: %w", err)
		}
		tons = tons.Add(e.QuantityTons)
		revenue = revenue.Add(e.CalculatedRate)
	}

	total, _ := excelize.CoordinatesToCellName(1, len(rows)+2)
	if err := f.SetSheetRow(entriesSheet, total, &[]interface{}{
		"Total", nil, nil, nil, tons.InexactFloat64(), nil, revenue.InexactFloat64(),
	}); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}
	if err := setWidths(f, entriesSheet, []float64{12, 14, 20, 20, 14, 12, 14}); err != nil {
		return err
	}
	return f.Write(w)
}

// WriteExpenses writes one row per expense followed by a totals row.
func WriteExpenses(w io.Writer, rows []models.Expense) error {
	f, err := newBook(expensesSheet, expenseHeader)
	if err != nil {
		return err
	}
	defer f.Close()

	sum := decimal.Zero
	for i, e := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		err := f.SetSheetRow(expensesSheet, cell, &[]interface{}{
			period.FormatDate(e.ExpenseDate),
			e.Car.CarNumber,
			e.ExpenseType.Name,
			e.Description,
			e.Amount.InexactFloat64(),
		})
		if err != nil {
			return fmt.Errorf("write expense row: %w", err)
		}
		sum = sum.Add(e.Amount)
	}

	total, _ := excelize.CoordinatesToCellName(1, len(rows)+2)
	if err := f.SetSheetRow(expensesSheet, total, &[]interface{}{
		"Total", nil, nil, nil, sum.InexactFloat64(),
	}); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}
	if err := setWidths(f, expensesSheet, []float64{12, 14, 18, 32, 12}); err != nil {
		return err
	}
	return f.Write(w)
}

func newBook(sheet string, header []interface{}) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}
	return f, nil
}

func setWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}
	return nil
}
