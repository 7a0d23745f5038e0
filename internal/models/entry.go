package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one recorded delivery. UnitPrice and CalculatedRate are frozen
// when the entry is written and only change when it is saved again.
type Entry struct {
	ID             uint            `gorm:"primaryKey"`
	CarID          uint            `gorm:"index;not null"`
	Car            Car             `gorm:"constraint:OnDelete:RESTRICT"`
	RouteID        uint            `gorm:"index;not null"`
	Route          Route           `gorm:"constraint:OnDelete:RESTRICT"`
	ProductID      uint            `gorm:"index;not null"`
	Product        Product         `gorm:"constraint:OnDelete:RESTRICT"`
	QuantityTons   decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CalculatedRate decimal.Decimal `gorm:"type:numeric(18,5);not null"`
	EntryDate      time.Time       `gorm:"type:date;index;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
