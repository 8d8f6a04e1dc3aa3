package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/mercantil-app/mercantilgo/internal/models"
)

// DashboardStats is the admin analytics summary
type DashboardStats struct {
	TotalRevenue      float64                      `json:"totalRevenue"`
	TotalCost         float64                      `json:"totalCost"`
	OrderCount        int64                        `json:"orderCount"`
	AverageOrderValue float64                      `json:"averageOrderValue"`
	OrdersByStatus    map[models.OrderStatus]int64 `json:"ordersByStatus"`
	OrdersByDay       []DayBucket                  `json:"ordersByDay"`
}

// DayBucket is one day of revenue on the dashboard chart
type DayBucket struct {
	Day     string  `json:"day"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// parseDateRange reads optional startDate/endDate query params (YYYY-MM-DD).
// Defaults to the last 30 days.
func parseDateRange(req *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := req.URL.Query().Get("startDate"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid startDate: %s", raw)
		}
		from = parsed
	}
	if raw := req.URL.Query().Get("endDate"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid endDate: %s", raw)
		}
		// Inclusive end of day
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to, nil
}

// getDashboardStats aggregates revenue, cost and order counts for the
// requested window. Revenue only counts paid, shipped and delivered orders.
func (r *Router) getDashboardStats(w http.ResponseWriter, req *http.Request) {
	from, to, err := parseDateRange(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var orders []models.Order
	if err := r.db.
		Where("order_date BETWEEN ? AND ?", from, to).
		Find(&orders).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load orders")
		return
	}

	revenueStatuses := make(map[models.OrderStatus]bool)
	for _, s := range models.RevenueStatuses() {
		revenueStatuses[s] = true
	}

	stats := DashboardStats{
		OrdersByStatus: make(map[models.OrderStatus]int64),
	}
	dayBuckets := make(map[string]*DayBucket)

	for i := range orders {
		order := &orders[i]
		stats.OrdersByStatus[order.Status]++

		if !revenueStatuses[order.Status] {
			continue
		}
		stats.TotalRevenue += order.TotalAmount
		stats.TotalCost += order.TotalCost
		stats.OrderCount++

		day := order.OrderDate.UTC().Format("2006-01-02")
		bucket, ok := dayBuckets[day]
		if !ok {
			bucket = &DayBucket{Day: day}
			dayBuckets[day] = bucket
		}
		bucket.Orders++
		bucket.Revenue += order.TotalAmount
	}

	if stats.OrderCount > 0 {
		stats.AverageOrderValue = stats.TotalRevenue / float64(stats.OrderCount)
	}

	// Emit buckets in chronological order
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if bucket, ok := dayBuckets[d.Format("2006-01-02")]; ok {
			stats.OrdersByDay = append(stats.OrdersByDay, *bucket)
		}
	}

	respondJSON(w, http.StatusOK, stats)
}

// exportOrdersCSV streams all orders in the requested window as CSV
func (r *Router) exportOrdersCSV(w http.ResponseWriter, req *http.Request) {
	from, to, err := parseDateRange(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var orders []models.Order
	if err := r.db.
		Where("order_date BETWEEN ? AND ?", from, to).
		Order("order_date ASC").
		Find(&orders).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load orders")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=\"orders.csv\"")
	w.WriteHeader(http.StatusOK)

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{
		"id", "external_id", "order_date", "status", "source", "user_name",
		"customer", "marketplace_number", "ecommerce_number",
		"total_quantity", "total_amount", "total_cost", "payment_method",
	})

	for i := range orders {
		order := &orders[i]
		externalID := ""
		if order.ExternalID != nil {
			externalID = *order.ExternalID
		}
		writer.Write([]string{
			order.ID,
			externalID,
			order.OrderDate.UTC().Format("2006-01-02"),
			string(order.Status),
			order.Source,
			order.UserName,
			order.CustomerDisplayName,
			order.MarketplaceOrderNumber,
			order.EcommerceOrderNumber,
			fmt.Sprintf("%d", order.TotalQuantity),
			fmt.Sprintf("%.2f", order.TotalAmount),
			fmt.Sprintf("%.2f", order.TotalCost),
			order.PaymentMethod,
		})
	}
}
