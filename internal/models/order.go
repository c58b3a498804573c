package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. UpdateOrderStatus accepts any of these; there is no
// transition guard (a cancelled order can in principle be marked shipped),
// matching the permissive behavior of the original status column.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Order is a committed checkout. Append-only after creation except for the
// Status field; TotalAmount always equals the sum of its items' subtotals.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"user_id" gorm:"index;type:varchar(36)"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2)"`
	Status          string          `json:"status" gorm:"type:varchar(20)"`
	ShippingAddress string          `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is a single line of an order. PriceAtPurchase is the unit price
// snapshotted inside the checkout transaction; later catalog price changes
// never touch it.
type OrderItem struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID         string          `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID       string          `json:"product_id" gorm:"type:varchar(36)"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase" gorm:"type:decimal(12,2)"`
}

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}
