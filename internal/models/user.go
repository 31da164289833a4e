package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole identifies what a user can do on the platform
type UserRole string

const (
	RoleCustomer  UserRole = "customer"
	RoleGuide     UserRole = "guide"
	RoleHotel     UserRole = "hotel"
	RoleBoatOwner UserRole = "boat_owner"
	RoleAdmin     UserRole = "admin"
)

// User represents a platform account
type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	Role           UserRole  `db:"role" json:"role"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Phone          string    `db:"phone" json:"phone"`
	TelegramChatID *int64    `db:"telegram_chat_id" json:"-"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns the user's display name
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
