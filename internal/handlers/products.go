package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mercantil-app/mercantilgo/internal/models"
	"gorm.io/datatypes"
)

// ProductRequest is the create/update payload for catalog entries
type ProductRequest struct {
	Name        string                `json:"name"`
	Price       float64               `json:"price"`
	Images      []models.ProductImage `json:"images"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Stock       int                   `json:"stock"`
	Status      models.ProductStatus  `json:"status"`
	Discount    float64               `json:"discount"`
	Cost        float64               `json:"cost"`
}

// listProducts returns the catalog, optionally filtered by category
func (r *Router) listProducts(w http.ResponseWriter, req *http.Request) {
	query := r.db.Order("created_at DESC")
	if category := req.URL.Query().Get("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// getProduct returns one product by id
func (r *Router) getProduct(w http.ResponseWriter, req *http.Request) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", mux.Vars(req)["id"]).Error; err != nil {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// createProduct creates a catalog entry (admin)
func (r *Router) createProduct(w http.ResponseWriter, req *http.Request) {
	var body ProductRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Name == "" || body.Category == "" {
		respondError(w, http.StatusBadRequest, "name and category are required")
		return
	}

	status := body.Status
	if status == "" {
		status = models.ProductStatusActive
	}

	product := models.Product{
		ID:          uuid.NewString(),
		Name:        body.Name,
		Price:       body.Price,
		Images:      datatypes.NewJSONType(body.Images),
		Description: body.Description,
		Category:    body.Category,
		Stock:       body.Stock,
		Status:      status,
		Discount:    body.Discount,
		Cost:        body.Cost,
	}
	if err := r.db.Create(&product).Error; err != nil {
		respondError(w, http.StatusBadRequest, "Failed to create product")
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

// updateProduct overwrites a catalog entry's editable fields (admin)
func (r *Router) updateProduct(w http.ResponseWriter, req *http.Request) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", mux.Vars(req)["id"]).Error; err != nil {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	var body ProductRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	product.Name = body.Name
	product.Price = body.Price
	product.Images = datatypes.NewJSONType(body.Images)
	product.Description = body.Description
	product.Category = body.Category
	product.Stock = body.Stock
	if body.Status != "" {
		product.Status = body.Status
	}
	product.Discount = body.Discount
	product.Cost = body.Cost

	if err := r.db.Save(&product).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// deleteProduct removes a catalog entry (admin)
func (r *Router) deleteProduct(w http.ResponseWriter, req *http.Request) {
	result := r.db.Delete(&models.Product{}, "id = ?", mux.Vars(req)["id"])
	if result.Error != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}
