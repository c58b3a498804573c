package models

import "gorm.io/gorm"

// CartItem is one product+quantity line in a shopper's pending cart.
// A line with quantity <= 0 must not exist; it is deleted instead.
type CartItem struct {
	ID         string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID     string  `json:"user_id" gorm:"index;type:varchar(36)" validate:"required,uuid"`
	ProductID  string  `json:"product_id" gorm:"type:varchar(36)" validate:"required,uuid"`
	Quantity   int     `json:"quantity" validate:"required,gt=0"`
	Product    Product `json:"product" gorm:"foreignKey:ProductID"`
	gorm.Model         // CreatedAt, UpdatedAt, DeletedAt
}
