package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mercantil-app/mercantilgo/internal/config"
	"github.com/mercantil-app/mercantilgo/internal/database"
	"github.com/mercantil-app/mercantilgo/internal/middleware"
	"github.com/mercantil-app/mercantilgo/internal/services/tiny"
	"github.com/mercantil-app/mercantilgo/internal/websocket"
)

// Router wraps the mux router and application dependencies
type Router struct {
	*mux.Router
	db   *database.DB
	cfg  *config.Config
	sync *tiny.SyncService
	hub  *websocket.Hub
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, cfg *config.Config) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		db:     db,
		cfg:    cfg,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/register", r.register).Methods("POST")

	// Authenticated API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	api.HandleFunc("/users/me", r.getProfile).Methods("GET")
	api.HandleFunc("/products", r.listProducts).Methods("GET")
	api.HandleFunc("/products/{id}", r.getProduct).Methods("GET")
	api.HandleFunc("/orders", r.listOrders).Methods("GET")
	api.HandleFunc("/orders", r.createOrder).Methods("POST")
	api.HandleFunc("/orders/{id}", r.getOrder).Methods("GET")
	api.HandleFunc("/orders/{id}/invoice", r.getOrderInvoice).Methods("GET")

	// Admin-only routes
	admin := api.NewRoute().Subrouter()
	admin.Use(middleware.RequireRole("admin"))

	admin.HandleFunc("/users", r.listUsers).Methods("GET")
	admin.HandleFunc("/users", r.createUser).Methods("POST")
	admin.HandleFunc("/users/{id}", r.getUser).Methods("GET")
	admin.HandleFunc("/products", r.createProduct).Methods("POST")
	admin.HandleFunc("/products/{id}", r.updateProduct).Methods("PUT")
	admin.HandleFunc("/products/{id}", r.deleteProduct).Methods("DELETE")
	admin.HandleFunc("/orders/{id}", r.updateOrder).Methods("PUT")
	admin.HandleFunc("/orders/{id}", r.deleteOrder).Methods("DELETE")
	admin.HandleFunc("/analytics/dashboard", r.getDashboardStats).Methods("GET")
	admin.HandleFunc("/analytics/orders/export", r.exportOrdersCSV).Methods("GET")
	admin.HandleFunc("/sync/orders", r.triggerSync).Methods("GET")

	// Live order feed for admin dashboards
	r.HandleFunc("/ws", r.serveWS).Methods("GET")

	return r
}

// SetSyncService registers the marketplace sync service for the trigger endpoint
func (r *Router) SetSyncService(svc *tiny.SyncService) {
	r.sync = svc
}

// SetHub registers the websocket hub for the live order feed
func (r *Router) SetHub(hub *websocket.Hub) {
	r.hub = hub
}

// Handler returns the root HTTP handler
func (r *Router) Handler() http.Handler {
	return r.Router
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// serveWS upgrades a dashboard connection to the live order feed
func (r *Router) serveWS(w http.ResponseWriter, req *http.Request) {
	if r.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "Live feed not available")
		return
	}
	websocket.ServeWS(r.hub, w, req)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
