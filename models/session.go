package models

import "time"

// Client storage keys, one value each per browser
const (
	KeyAPIURL    = "apiUrl"
	KeyAuthToken = "authToken"
	KeyUserRole  = "userRole"
)

// Auth schemes accepted by the pricing backend
const (
	AuthSchemeBearer = "bearer"
	AuthSchemeBasic  = "basic"
)

// StorageItem represents a persisted client storage value
type StorageItem struct {
	ClientID  string    `json:"clientId"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TokenResponse is the body returned by POST /auth/login
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// UserInfo is the body returned by GET /auth/me
type UserInfo struct {
	UsuarioID int64  `json:"usuario_id"`
	Username  string `json:"username"`
	Rol       string `json:"rol"`
}

// LoginRequest represents the login form
type LoginRequest struct {
	APIURL   string `json:"api_url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the result of a login attempt
type LoginResponse struct {
	Role         string   `json:"role"`
	ProductCount int      `json:"product_count"`
	Status       string   `json:"status"`
	Warnings     []string `json:"warnings,omitempty"`
}
