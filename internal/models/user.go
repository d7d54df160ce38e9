package models

import (
	"time"
)

// Role represents user roles in the system
type Role string

const (
	RolePassenger Role = "passenger"
	RoleDriver    Role = "driver"
	RoleNone      Role = ""
)

// User represents a registered commuter. The phone number doubles as the
// user id; profiles are immutable after signup.
type User struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	PhoneNumber string    `bson:"phone_number" json:"phone_number"`
	PINHash     string    `bson:"pin_hash" json:"-"`
	Role        Role      `bson:"role" json:"role"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	PIN         string `json:"pin"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	PIN         string `json:"pin"`
	Role        Role   `json:"role"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// OtpRequest asks for a one-time code to be sent to a phone number
type OtpRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// Claims represents JWT claims
type Claims struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Role        Role   `json:"role"`
	Exp         int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RolePassenger, RoleDriver:
		return true
	default:
		return false
	}
}

// AsPassenger returns the roster snapshot embedded in a ride when this
// user reserves a seat or requests a ride.
func (u *User) AsPassenger() RidePassenger {
	return RidePassenger{
		UserID:      u.ID,
		Name:        u.Name,
		PhoneNumber: u.PhoneNumber,
	}
}
