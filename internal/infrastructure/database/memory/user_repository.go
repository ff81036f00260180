package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"auth-service/internal/domain/user"
	appErrors "auth-service/pkg/errors"
)

// UserRepository is an in-memory user.Repository used in tests. It mirrors
// the semantics of the postgres repository, including the unique-email
// constraint and the expiry-aware secret lookups.
type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*user.User

	// Now is the clock used for expiry checks, overridable in tests.
	Now func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[uuid.UUID]*user.User),
		Now:   time.Now,
	}
}

func (r *UserRepository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return appErrors.ErrDuplicateEmail
		}
	}

	u.ID = uuid.New()
	u.CreatedAt = r.Now()
	u.UpdatedAt = u.CreatedAt
	u.IsActive = true
	u.IsVerified = false
	if u.Role == "" {
		u.Role = user.RoleStandard
	}

	r.users[u.ID] = clone(u)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, userID uuid.UUID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, appErrors.ErrUserNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, appErrors.ErrUserNotFound
}

func (r *UserRepository) GetByVerificationToken(_ context.Context, token string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.VerificationToken != nil && *u.VerificationToken == token &&
			u.VerificationTokenExpires != nil && u.VerificationTokenExpires.After(r.Now()) {
			return clone(u), nil
		}
	}
	return nil, appErrors.ErrUserNotFound
}

func (r *UserRepository) GetByResetToken(_ context.Context, token string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == token &&
			u.ResetTokenExpires != nil && u.ResetTokenExpires.After(r.Now()) {
			return clone(u), nil
		}
	}
	return nil, appErrors.ErrUserNotFound
}

func (r *UserRepository) List(_ context.Context, filter user.ListFilter) ([]*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []*user.User
	for _, u := range r.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.IsVerified != nil && u.IsVerified != *filter.IsVerified {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		users = append(users, clone(u))
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(users) {
			return nil, nil
		}
		users = users[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(users) {
		users = users[:filter.Limit]
	}

	return users, nil
}

func (r *UserRepository) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[u.ID]
	if !ok {
		return appErrors.ErrUserNotFound
	}

	for id, other := range r.users {
		if id != u.ID && other.Email == u.Email {
			return appErrors.ErrDuplicateEmail
		}
	}

	stored.Name = u.Name
	stored.Email = u.Email
	stored.IsVerified = u.IsVerified
	stored.UpdatedAt = r.Now()
	u.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, userID uuid.UUID, hashedPassword string) error {
	return r.mutate(userID, func(u *user.User) {
		u.HashedPassword = hashedPassword
	})
}

func (r *UserRepository) SetVerificationToken(_ context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	return r.mutate(userID, func(u *user.User) {
		u.VerificationToken = &token
		u.VerificationTokenExpires = &expiresAt
	})
}

func (r *UserRepository) MarkVerified(_ context.Context, userID uuid.UUID) error {
	return r.mutate(userID, func(u *user.User) {
		u.IsVerified = true
		u.VerificationToken = nil
		u.VerificationTokenExpires = nil
	})
}

func (r *UserRepository) SetResetToken(_ context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	return r.mutate(userID, func(u *user.User) {
		u.ResetToken = &token
		u.ResetTokenExpires = &expiresAt
	})
}

func (r *UserRepository) ClearResetToken(_ context.Context, userID uuid.UUID) error {
	return r.mutate(userID, func(u *user.User) {
		u.ResetToken = nil
		u.ResetTokenExpires = nil
	})
}

func (r *UserRepository) Deactivate(_ context.Context, userID uuid.UUID) error {
	return r.mutate(userID, func(u *user.User) {
		u.IsActive = false
	})
}

func (r *UserRepository) Activate(_ context.Context, userID uuid.UUID) error {
	return r.mutate(userID, func(u *user.User) {
		u.IsActive = true
	})
}

func (r *UserRepository) Delete(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return appErrors.ErrUserNotFound
	}
	delete(r.users, userID)
	return nil
}

func (r *UserRepository) mutate(userID uuid.UUID, apply func(*user.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return appErrors.ErrUserNotFound
	}
	apply(u)
	u.UpdatedAt = r.Now()
	return nil
}

func clone(u *user.User) *user.User {
	c := *u
	if u.VerificationToken != nil {
		v := *u.VerificationToken
		c.VerificationToken = &v
	}
	if u.VerificationTokenExpires != nil {
		v := *u.VerificationTokenExpires
		c.VerificationTokenExpires = &v
	}
	if u.ResetToken != nil {
		v := *u.ResetToken
		c.ResetToken = &v
	}
	if u.ResetTokenExpires != nil {
		v := *u.ResetTokenExpires
		c.ResetTokenExpires = &v
	}
	return &c
}
