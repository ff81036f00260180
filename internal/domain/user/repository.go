package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows admin listings. Nil fields are not applied.
type ListFilter struct {
	Role       *string
	IsVerified *bool
	IsActive   *bool
	Offset     int
	Limit      int
}

// Repository defines the interface for user persistence operations.
//
// The secret-based lookups are expiry-aware: a secret past its expiry must
// behave exactly like an absent one and never resolve to the owning user.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByVerificationToken(ctx context.Context, token string) (*User, error)
	GetByResetToken(ctx context.Context, token string) (*User, error)
	List(ctx context.Context, filter ListFilter) ([]*User, error)

	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error

	SetVerificationToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, userID uuid.UUID) error
	SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, userID uuid.UUID) error

	Deactivate(ctx context.Context, userID uuid.UUID) error
	Activate(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, userID uuid.UUID) error
}
