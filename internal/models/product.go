package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a sellable item in the catalog. The checkout core only
// reads Price/IsActive and adjusts Stock; everything else belongs to the
// catalog CRUD surface.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	Stock       int             `json:"stock" validate:"gte=0"`
	IsActive    bool            `json:"is_active"`
	gorm.Model                  // CreatedAt, UpdatedAt, DeletedAt
}
