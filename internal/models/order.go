package models

import (
	"time"

	"gorm.io/datatypes"
)

// OrderStatus defines possible order statuses
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderSourceOlist marks orders imported by the marketplace sync
const OrderSourceOlist = "olist"

// OrderItem is one line of an order (stored as JSONB)
type OrderItem struct {
	ProductID     string  `json:"productId"`
	Name          string  `json:"name"`
	Quantity      int     `json:"quantity"`
	OriginalPrice float64 `json:"originalPrice"`
	Discount      float64 `json:"discount"`
	Price         float64 `json:"price"`
	Cost          float64 `json:"cost"`
	ImageURL      string  `json:"imageUrl"`
}

// Order represents a store order. Orders imported from the marketplace carry
// the remote order id in ExternalID, which is the upsert key: re-syncing the
// same remote order overwrites the mutable fields instead of duplicating.
type Order struct {
	ID         string  `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalID *string `gorm:"uniqueIndex" json:"externalId,omitempty"`
	UserID     string  `gorm:"not null;index" json:"userId"`
	UserName   string  `gorm:"not null" json:"userName"`

	// Name keeps the legacy free-text sentence consumed by report parsers.
	// The three structured fields below carry the same values so new readers
	// do not have to regex the sentence apart.
	Name                   string `gorm:"not null" json:"name"`
	MarketplaceOrderNumber string `gorm:"index" json:"marketplaceOrderNumber,omitempty"`
	EcommerceOrderNumber   string `json:"ecommerceOrderNumber,omitempty"`
	CustomerDisplayName    string `json:"customerDisplayName,omitempty"`

	ShippingAddress string `json:"shippingAddress"`
	Phone           string `json:"phone"`
	PaymentMethod   string `json:"paymentMethod"`

	Items         datatypes.JSONType[[]OrderItem] `json:"items"`
	TotalCost     float64                         `gorm:"default:0" json:"totalCost"`
	TotalAmount   float64                         `gorm:"not null" json:"totalAmount"`
	TotalQuantity int                             `gorm:"not null" json:"totalQuantity"`

	Status OrderStatus `gorm:"default:'pending';index" json:"status"`
	Source string      `gorm:"index" json:"source,omitempty"`

	// OrderDate is the logical date of the order. For synced orders it is
	// pinned to the sync run's requested date, not the insert time, so
	// backfills land on the right day in reports.
	OrderDate time.Time `gorm:"index" json:"orderDate"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Order model
func (Order) TableName() string {
	return "orders"
}

// RevenueStatuses are the statuses that count toward dashboard revenue
func RevenueStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered}
}
