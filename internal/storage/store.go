package storage

import (
	"errors"

	"github.com/mercantil-app/mercantilgo/internal/models"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// OrderUpdate lists the mutable fields overwritten when re-syncing an
// existing order. The creation timestamp and ownership fields stay untouched.
type OrderUpdate struct {
	Name                   string
	MarketplaceOrderNumber string
	EcommerceOrderNumber   string
	CustomerDisplayName    string
	ShippingAddress        string
	Phone                  string
	PaymentMethod          string
	Items                  []models.OrderItem
	TotalCost              float64
	TotalAmount            float64
	TotalQuantity          int
	Status                 models.OrderStatus
	Source                 string
}

// Store is the persistence boundary used by the sync engine and handlers.
// All lookups return ErrNotFound when no record matches.
type Store interface {
	FindUserByUsername(username string) (*models.User, error)
	CreateUser(user *models.User) error

	FindProductByExternalID(externalID string) (*models.Product, error)
	GetProduct(id string) (*models.Product, error)
	CreateProduct(product *models.Product) error

	FindOrderByExternalID(externalID string) (*models.Order, error)
	CreateOrder(order *models.Order) error
	UpdateOrderByExternalID(externalID string, update OrderUpdate) error
}
