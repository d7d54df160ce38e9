package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/unipool/unipool-backend/internal/auth"
	"github.com/unipool/unipool-backend/internal/db"
	"github.com/unipool/unipool-backend/internal/middleware"
	"github.com/unipool/unipool-backend/internal/models"
	"github.com/unipool/unipool-backend/internal/notify"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *auth.Service
	users       db.UserStore
	notifier    *notify.Service
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, users db.UserStore, notifier *notify.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		users:       users,
		notifier:    notifier,
	}
}

// Login handles phone+PIN login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var loginReq models.LoginRequest
	if err := json.Unmarshal(body, &loginReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	// Validate input
	if loginReq.PhoneNumber == "" || loginReq.PIN == "" {
		http.Error(w, "Phone number and PIN are required", http.StatusBadRequest)
		return
	}

	// Find user by phone number
	user, err := h.users.FindUserByPhone(r.Context(), loginReq.PhoneNumber)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	// Verify PIN
	if !h.authService.CheckPIN(loginReq.PIN, user.PINHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	response := models.LoginResponse{
		Token: token,
		User:  *user,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// Register handles user signup
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var registerReq models.RegisterRequest
	if err := json.Unmarshal(body, &registerReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	// Validate input
	if err := h.authService.ValidateName(registerReq.Name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.authService.ValidatePhoneNumber(registerReq.PhoneNumber); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.authService.ValidatePIN(registerReq.PIN); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !models.IsValidRole(registerReq.Role) {
		http.Error(w, "Invalid role", http.StatusBadRequest)
		return
	}

	// Check if phone number is already registered
	if _, err := h.users.FindUserByPhone(r.Context(), registerReq.PhoneNumber); err == nil {
		http.Error(w, "Phone number already registered", http.StatusConflict)
		return
	}

	pinHash, err := h.authService.HashPIN(registerReq.PIN)
	if err != nil {
		http.Error(w, "Failed to hash PIN", http.StatusInternalServerError)
		return
	}

	user := models.User{
		ID:          registerReq.PhoneNumber,
		Name:        registerReq.Name,
		PhoneNumber: registerReq.PhoneNumber,
		PINHash:     pinHash,
		Role:        registerReq.Role,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := h.users.InsertUser(r.Context(), user); err != nil {
		if err == db.ErrDuplicate {
			http.Error(w, "Phone number already registered", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	token, err := h.authService.GenerateToken(&user)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	response := models.LoginResponse{
		Token: token,
		User:  user,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// RequestOtp asks the notification stub to send a one-time code
func (h *AuthHandler) RequestOtp(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var otpReq models.OtpRequest
	if err := json.Unmarshal(body, &otpReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.authService.ValidatePhoneNumber(otpReq.PhoneNumber); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	accepted := h.notifier.SendOtp(otpReq.PhoneNumber)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]bool{"accepted": accepted})
}

// GetProfile returns the current user's profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	user, err := h.users.FindUserByPhone(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}
