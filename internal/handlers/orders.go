package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mercantil-app/mercantilgo/internal/middleware"
	"github.com/mercantil-app/mercantilgo/internal/models"
	"github.com/mercantil-app/mercantilgo/internal/services/printer"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateOrderRequest is the payload for a store-side order
type CreateOrderRequest struct {
	Items []struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
	ShippingAddress string `json:"shippingAddress"`
	Phone           string `json:"phone"`
	PaymentMethod   string `json:"paymentMethod"`
}

// UpdateOrderRequest carries the admin-editable order fields
type UpdateOrderRequest struct {
	Status          *models.OrderStatus `json:"status"`
	ShippingAddress *string             `json:"shippingAddress"`
	Phone           *string             `json:"phone"`
	PaymentMethod   *string             `json:"paymentMethod"`
}

// listOrders returns the caller's orders, or all orders for admins.
// Admins can filter by status, source and a date range on order_date.
func (r *Router) listOrders(w http.ResponseWriter, req *http.Request) {
	claims := middleware.ClaimsFromContext(req.Context())
	role, _ := claims["role"].(string)
	userID, _ := claims["id"].(string)

	query := r.db.Order("order_date DESC, created_at DESC")
	if role != "admin" {
		query = query.Where("user_id = ?", userID)
	} else {
		if status := req.URL.Query().Get("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		if source := req.URL.Query().Get("source"); source != "" {
			query = query.Where("source = ?", source)
		}
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// getOrder returns one order. Non-admins can only read their own.
func (r *Router) getOrder(w http.ResponseWriter, req *http.Request) {
	order, ok := r.loadOrderForCaller(w, req)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// createOrder places a store-side order for the authenticated user.
// Prices, discounts and costs are snapshotted from the catalog at order time.
func (r *Router) createOrder(w http.ResponseWriter, req *http.Request) {
	claims := middleware.ClaimsFromContext(req.Context())
	userID, _ := claims["id"].(string)

	var user models.User
	if err := r.db.First(&user, "id = ?", userID).Error; err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	var body CreateOrderRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if len(body.Items) == 0 {
		respondError(w, http.StatusBadRequest, "Order must have at least one item")
		return
	}

	var (
		items         []models.OrderItem
		totalAmount   float64
		totalCost     float64
		totalQuantity int
	)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, line := range body.Items {
			if line.Quantity < 1 {
				return fmt.Errorf("invalid quantity for product %s", line.ProductID)
			}

			var product models.Product
			if err := tx.First(&product, "id = ?", line.ProductID).Error; err != nil {
				return fmt.Errorf("product %s not found", line.ProductID)
			}
			if product.Stock < line.Quantity {
				return fmt.Errorf("insufficient stock for %s", product.Name)
			}

			price := product.Price - product.Discount
			if price < 0 {
				price = 0
			}

			items = append(items, models.OrderItem{
				ProductID:     product.ID,
				Name:          product.Name,
				Quantity:      line.Quantity,
				OriginalPrice: product.Price,
				Discount:      product.Discount,
				Price:         price,
				Cost:          product.Cost,
				ImageURL:      product.FirstImageURL(),
			})
			totalAmount += price * float64(line.Quantity)
			totalCost += product.Cost * float64(line.Quantity)
			totalQuantity += line.Quantity

			if err := tx.Model(&product).Update("stock", product.Stock-line.Quantity).Error; err != nil {
				return err
			}
		}

		order := models.Order{
			ID:              uuid.NewString(),
			UserID:          user.ID,
			UserName:        user.Name,
			Name:            fmt.Sprintf("Pedido de %s", user.Name),
			ShippingAddress: body.ShippingAddress,
			Phone:           body.Phone,
			PaymentMethod:   body.PaymentMethod,
			Items:           datatypes.NewJSONType(items),
			TotalCost:       totalCost,
			TotalAmount:     totalAmount,
			TotalQuantity:   totalQuantity,
			Status:          models.OrderStatusPending,
			OrderDate:       time.Now().UTC(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		respondJSON(w, http.StatusCreated, order)
		return nil
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
	}
}

// updateOrder patches admin-editable fields on an order
func (r *Router) updateOrder(w http.ResponseWriter, req *http.Request) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", mux.Vars(req)["id"]).Error; err != nil {
		respondError(w, http.StatusNotFound, "Order not found")
		return
	}

	var body UpdateOrderRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if body.Status != nil {
		switch *body.Status {
		case models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusShipped,
			models.OrderStatusDelivered, models.OrderStatusCancelled:
			order.Status = *body.Status
		default:
			respondError(w, http.StatusBadRequest, "Invalid order status")
			return
		}
	}
	if body.ShippingAddress != nil {
		order.ShippingAddress = *body.ShippingAddress
	}
	if body.Phone != nil {
		order.Phone = *body.Phone
	}
	if body.PaymentMethod != nil {
		order.PaymentMethod = *body.PaymentMethod
	}

	if err := r.db.Save(&order).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// deleteOrder removes an order (admin)
func (r *Router) deleteOrder(w http.ResponseWriter, req *http.Request) {
	result := r.db.Delete(&models.Order{}, "id = ?", mux.Vars(req)["id"])
	if result.Error != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete order")
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, "Order not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Order deleted"})
}

// getOrderInvoice renders the order as a PDF with a QR code of the
// marketplace order id when present
func (r *Router) getOrderInvoice(w http.ResponseWriter, req *http.Request) {
	order, ok := r.loadOrderForCaller(w, req)
	if !ok {
		return
	}

	pdfBytes, err := printer.GenerateInvoicePDF(order)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate invoice")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"order-%s.pdf\"", order.ID))
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}

// loadOrderForCaller fetches the order in the URL and enforces ownership
// for non-admin callers. On failure it writes the error response itself.
func (r *Router) loadOrderForCaller(w http.ResponseWriter, req *http.Request) (*models.Order, bool) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", mux.Vars(req)["id"]).Error; err != nil {
		respondError(w, http.StatusNotFound, "Order not found")
		return nil, false
	}

	claims := middleware.ClaimsFromContext(req.Context())
	role, _ := claims["role"].(string)
	userID, _ := claims["id"].(string)
	if role != "admin" && order.UserID != userID {
		respondError(w, http.StatusForbidden, "Access denied")
		return nil, false
	}
	return &order, true
}
