package model

import (
	"strings"
	"time"
)

// Roles carried in the access token's "role" claim.
const (
	RoleStaff    = "STAFF"
	RoleCustomer = "CUSTOMER"
)

// User is an account. Email is the login identifier.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhoneNumber  string    `json:"phone_number"`
	ProfileImage Image     `json:"profile_image"`
	Bio          string    `json:"bio"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	IsActive     bool      `json:"is_active"`
	DateJoined   time.Time `json:"date_joined"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role maps the staff flag to a token role.
func (u *User) Role() string {
	if u.IsStaff {
		return RoleStaff
	}
	return RoleCustomer
}

// DisplayName is "first last", falling back to the username.
func (u *User) DisplayName() string {
	return DisplayName(u.FirstName, u.LastName, u.Username)
}

func DisplayName(first, last, username string) string {
	if n := strings.TrimSpace(first + " " + last); n != "" {
		return n
	}
	return username
}

// RefreshToken is a stored refresh token. Only the SHA-256 hash is kept.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
