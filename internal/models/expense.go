package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseType struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultExpenseTypes are inserted when the expense_types table is empty.
var DefaultExpenseTypes = []string{"Petrol", "Maintainance", "Service", "Other"}

// Expense is a vehicle operating cost.
type Expense struct {
	ID            uint            `gorm:"primaryKey"`
	CarID         uint            `gorm:"index;not null"`
	Car           Car             `gorm:"constraint:OnDelete:RESTRICT"`
	ExpenseTypeID uint            `gorm:"index;not null"`
	ExpenseType   ExpenseType     `gorm:"constraint:OnDelete:RESTRICT"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Description   string          `gorm:"size:255"`
	ExpenseDate   time.Time       `gorm:"type:date;index;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
