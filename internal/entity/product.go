package entity

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Details      string    `gorm:"type:text"`
	Price        float64   `gorm:"type:numeric(12,2);not null;default:0"`
	ProductImage *string   `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
