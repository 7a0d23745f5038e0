package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:100;not null;uniqueIndex"`
	PricePerTon decimal.Decimal `gorm:"type:numeric(12,2);not null"` // base price, used when no route override exists
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
