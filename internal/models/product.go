package models

import "time"

// Product represents a menu item in the store.
type Product struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=2,max=100"`
	Price     float64   `json:"price" gorm:"not null" validate:"required,gt=0"`
	Image     string    `json:"image" gorm:"type:varchar(500)" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
