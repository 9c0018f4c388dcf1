package models

import (
	"time"

	"github.com/google/uuid"
)

// Role constants for users
const (
	RoleUser      = "USER"
	RoleOrganizer = "ORGANIZER"
	RoleAdmin     = "ADMIN"
)

// User mirrors an account held by the Rift identity provider. The local row
// lets the rest of the application join RSVPs and invoices to a user without
// calling Rift on every request.
type User struct {
	ID            uuid.UUID `json:"id" db:"id"`
	ExternalID    string    `json:"externalId" db:"external_id"`
	Email         string    `json:"email" db:"email"`
	Name          string    `json:"name" db:"name"`
	Role          string    `json:"role" db:"role"`
	RiftUserID    string    `json:"riftUserId" db:"rift_user_id"`
	BearerToken   string    `json:"-" db:"bearer_token"`
	WalletAddress string    `json:"walletAddress" db:"wallet_address"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// SignupRequest represents the data needed to create a new account
type SignupRequest struct {
	ExternalID  string `json:"externalId" binding:"required"`
	Password    string `json:"password" binding:"required,min=6"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// LoginRequest represents the credentials for an existing account
type LoginRequest struct {
	ExternalID string `json:"externalId" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// UserResponse represents the public user fields sent in responses
type UserResponse struct {
	ID            uuid.UUID `json:"id"`
	ExternalID    string    `json:"externalId"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	WalletAddress string    `json:"walletAddress,omitempty"`
}

// Public strips the fields that must never leave the server
func (u *User) Public() UserResponse {
	return UserResponse{
		ID:            u.ID,
		ExternalID:    u.ExternalID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		WalletAddress: u.WalletAddress,
	}
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	Success     bool         `json:"success"`
	User        UserResponse `json:"user"`
	BearerToken string       `json:"bearerToken"`
}
