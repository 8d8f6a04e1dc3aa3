package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mercantil-app/mercantilgo/internal/middleware"
	"github.com/mercantil-app/mercantilgo/internal/models"
	"github.com/mercantil-app/mercantilgo/internal/utils"
)

// listUsers returns all users (admin)
func (r *Router) listUsers(w http.ResponseWriter, req *http.Request) {
	var users []models.User
	if err := r.db.Order("created_at DESC").Find(&users).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// getProfile returns the authenticated user's own record
func (r *Router) getProfile(w http.ResponseWriter, req *http.Request) {
	claims := middleware.ClaimsFromContext(req.Context())
	userID, _ := claims["id"].(string)

	var user models.User
	if err := r.db.First(&user, "id = ?", userID).Error; err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// getUser returns one user by id (admin)
func (r *Router) getUser(w http.ResponseWriter, req *http.Request) {
	var user models.User
	if err := r.db.First(&user, "id = ?", mux.Vars(req)["id"]).Error; err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// CreateUserRequest is the admin user-creation payload
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Number   string `json:"number"`
	Role     string `json:"role"`
}

// createUser creates a user with an explicit role (admin)
func (r *Router) createUser(w http.ResponseWriter, req *http.Request) {
	var body CreateUserRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Username == "" || body.Password == "" || body.Email == "" {
		respondError(w, http.StatusBadRequest, "username, password and email are required")
		return
	}

	role := body.Role
	if role == "" {
		role = "user"
	}

	hashedPassword, err := utils.HashPassword(body.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.User{
		ID:       uuid.NewString(),
		Username: body.Username,
		Password: hashedPassword,
		Name:     body.Name,
		Email:    body.Email,
		Number:   body.Number,
		Role:     role,
	}
	if err := r.db.Create(&user).Error; err != nil {
		respondError(w, http.StatusBadRequest, "Failed to create user (username or email might exist)")
		return
	}

	respondJSON(w, http.StatusCreated, user)
}
