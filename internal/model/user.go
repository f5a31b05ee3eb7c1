package model

import (
	"time"

	"github.com/google/uuid"
)

// User role enum constants
const (
	RoleStudent    = "student"
	RoleAdmin      = "admin"
	RoleSecurity   = "security"
	RoleSuperAdmin = "superadmin"
)

// ValidRole reports whether r is one of the known account roles.
func ValidRole(r string) bool {
	switch r {
	case RoleStudent, RoleAdmin, RoleSecurity, RoleSuperAdmin:
		return true
	}
	return false
}

// User represents an account that can sign in: students submit exeat
// requests, admins review them, security staff run the checkpoint.
type User struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Password   string    `json:"-"` // bcrypt hash, never serialized
	Role       string    `json:"role"`
	StudentID  string    `json:"student_id,omitempty"` // only for role=student
	Department string    `json:"department,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// RefreshToken is a long-lived token allowing a user to request new
// access tokens without re-entering credentials.
type RefreshToken struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
