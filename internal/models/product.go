package models

import (
	"time"

	"gorm.io/datatypes"
)

// ProductStatus defines possible product statuses
type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusInactive   ProductStatus = "inactive"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
	ProductStatusArchived   ProductStatus = "archived"
	ProductStatusDraft      ProductStatus = "draft"
)

// ProductImage is one entry of a product's image list (stored as JSONB)
type ProductImage struct {
	PublicID string `json:"public_id,omitempty"`
	URL      string `json:"url"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Format   string `json:"format,omitempty"`
	Bytes    int    `json:"bytes,omitempty"`
}

// Product represents a catalog entry. Marketplace-sourced products carry the
// marketplace SKU in ExternalID; at most one product exists per external id.
type Product struct {
	ID          string            `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalID  *string           `gorm:"uniqueIndex" json:"externalId,omitempty"`
	Name        string            `gorm:"not null" json:"name"`
	Price       float64           `gorm:"not null" json:"price"`
	Images      datatypes.JSONType[[]ProductImage] `json:"images"`
	Description string            `gorm:"type:text" json:"description"`
	Category    string            `gorm:"not null;index" json:"category"`
	Stock       int               `gorm:"default:0" json:"stock"`
	Status      ProductStatus     `gorm:"default:'active'" json:"status"`
	Discount    float64           `gorm:"default:0" json:"discount"`
	Cost        float64           `gorm:"default:0" json:"cost"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Product model
func (Product) TableName() string {
	return "products"
}

// FirstImageURL returns the URL of the first image, or empty string
func (p *Product) FirstImageURL() string {
	images := p.Images.Data()
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
