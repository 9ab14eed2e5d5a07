package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending   = "pending"
	PaymentStatusPending = "pending"
)

// Order is created once, in the pending state, together with its items.
type Order struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	CustomerID          string          `gorm:"size:64;not null;index" json:"customer_id"`
	FoodMakerID         uint            `gorm:"not null;index" json:"food_maker_id"`
	DeliveryAddressID   uint            `gorm:"not null" json:"delivery_address_id"`
	Subtotal            decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"subtotal"`
	TotalAmount         decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"total_amount"`
	DeliveryFee         decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"delivery_fee"`
	TaxAmount           decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"tax_amount"`
	PaymentMethod       string          `gorm:"size:64;not null" json:"payment_method"`
	DeliveryTimeSlot    *string         `gorm:"size:64" json:"delivery_time_slot"`
	SpecialInstructions *string         `gorm:"type:text" json:"special_instructions"`
	OrderStatus         string          `gorm:"size:32;not null;default:pending" json:"order_status"`
	PaymentStatus       string          `gorm:"size:32;not null;default:pending" json:"payment_status"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem freezes the unit price at order time.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"not null;index" json:"order_id"`
	MenuItemID uint            `gorm:"not null" json:"menu_item_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
}

// OrderIdempotencyKey maps a client retry token to the order it created.
type OrderIdempotencyKey struct {
	ID         uint      `gorm:"primaryKey"`
	CustomerID string    `gorm:"size:64;not null;uniqueIndex:idx_idempotency_customer_key"`
	Key        string    `gorm:"column:idempotency_key;size:128;not null;uniqueIndex:idx_idempotency_customer_key"`
	OrderID    uint      `gorm:"not null"`
	CreatedAt  time.Time `gorm:"index"`
}
