package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleStandard = "standard"
	RoleAdmin    = "admin"
)

// User is the sole persistent entity of the service. One-time secrets for
// email verification and password reset live on the row itself, each paired
// with its expiry; a pair is always set and cleared together.
type User struct {
	ID             uuid.UUID
	Name           string
	Email          string
	HashedPassword string
	Role           string
	IsActive       bool
	IsVerified     bool

	VerificationToken        *string
	VerificationTokenExpires *time.Time
	ResetToken               *string
	ResetTokenExpires        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
