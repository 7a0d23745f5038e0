package models

import "time"

type Car struct {
	ID          uint   `gorm:"primaryKey"`
	CarNumber   string `gorm:"size:50;not null;uniqueIndex"`
	Description string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
