package storage

import (
	"errors"
	"fmt"

	"github.com/mercantil-app/mercantilgo/internal/database"
	"github.com/mercantil-app/mercantilgo/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormStore implements Store on top of the GORM connection
type GormStore struct {
	db *database.DB
}

// NewGormStore creates a Store backed by the application database
func NewGormStore(db *database.DB) *GormStore {
	return &GormStore{db: db}
}

// FindUserByUsername looks up a user by unique username
func (s *GormStore) FindUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user %q: %w", username, err)
	}
	return &user, nil
}

// CreateUser inserts a new user
func (s *GormStore) CreateUser(user *models.User) error {
	if err := s.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user %q: %w", user.Username, err)
	}
	return nil
}

// FindProductByExternalID looks up a product by marketplace SKU
func (s *GormStore) FindProductByExternalID(externalID string) (*models.Product, error) {
	var product models.Product
	if err := s.db.Where("external_id = ?", externalID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product %q: %w", externalID, err)
	}
	return &product, nil
}

// GetProduct loads a product by primary key
func (s *GormStore) GetProduct(id string) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load product %s: %w", id, err)
	}
	return &product, nil
}

// CreateProduct inserts a new product
func (s *GormStore) CreateProduct(product *models.Product) error {
	if err := s.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product %q: %w", product.Name, err)
	}
	return nil
}

// FindOrderByExternalID looks up an order by remote order id
func (s *GormStore) FindOrderByExternalID(externalID string) (*models.Order, error) {
	var order models.Order
	if err := s.db.Where("external_id = ?", externalID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find order %q: %w", externalID, err)
	}
	return &order, nil
}

// CreateOrder inserts a new order
func (s *GormStore) CreateOrder(order *models.Order) error {
	if err := s.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateOrderByExternalID overwrites the mutable fields of an existing
// synced order via a targeted update, keyed by remote order id
func (s *GormStore) UpdateOrderByExternalID(externalID string, update OrderUpdate) error {
	result := s.db.Model(&models.Order{}).
		Where("external_id = ?", externalID).
		Updates(map[string]interface{}{
			"name":                     update.Name,
			"marketplace_order_number": update.MarketplaceOrderNumber,
			"ecommerce_order_number":   update.EcommerceOrderNumber,
			"customer_display_name":    update.CustomerDisplayName,
			"shipping_address":         update.ShippingAddress,
			"phone":                    update.Phone,
			"payment_method":           update.PaymentMethod,
			"items":                    datatypes.NewJSONType(update.Items),
			"total_cost":               update.TotalCost,
			"total_amount":             update.TotalAmount,
			"total_quantity":           update.TotalQuantity,
			"status":                   update.Status,
			"source":                   update.Source,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update order %q: %w", externalID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
