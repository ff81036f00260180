package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	domainUser "auth-service/internal/domain/user"
	"auth-service/internal/logger"
	appErrors "auth-service/pkg/errors"
	"auth-service/pkg/token"
)

// Service owns the lifecycle of the one-time secrets stored on the user
// row: verification and reset, each with its own expiry window. Issuing a
// new secret of a kind overwrites the previous one, which becomes
// permanently unusable.
type Service struct {
	users           domainUser.Repository
	verificationTTL time.Duration
	resetTTL        time.Duration

	// now is the clock used when stamping expiries, overridable in tests.
	now func() time.Time
}

func NewService(users domainUser.Repository, verificationExpireHours, resetExpireHours int) *Service {
	return &Service{
		users:           users,
		verificationTTL: time.Duration(verificationExpireHours) * time.Hour,
		resetTTL:        time.Duration(resetExpireHours) * time.Hour,
		now:             time.Now,
	}
}

// IssueVerificationToken generates and stores a fresh verification secret
// for the user, invalidating any prior one.
func (s *Service) IssueVerificationToken(ctx context.Context, u *domainUser.User) (string, error) {
	secret, err := token.GenerateSecret()
	if err != nil {
		return "", fmt.Errorf("failed to generate verification token: %w", err)
	}

	expiresAt := s.now().Add(s.verificationTTL)
	if err := s.users.SetVerificationToken(ctx, u.ID, secret, expiresAt); err != nil {
		return "", err
	}

	logger.Debug("Verification token issued",
		zap.String("user_id", u.ID.String()),
		zap.Time("expires_at", expiresAt),
		zap.String("event", "verification_token_issued"),
	)

	return secret, nil
}

// ConsumeVerificationToken resolves a verification secret, marks the owner
// verified and clears the secret pair. An unknown or expired secret fails
// with ErrInvalidVerificationToken; a secret that resolves to an already
// verified user fails with ErrAlreadyVerified and changes nothing.
func (s *Service) ConsumeVerificationToken(ctx context.Context, secret string) (*domainUser.User, error) {
	u, err := s.users.GetByVerificationToken(ctx, secret)
	if err != nil {
		if errors.Is(err, appErrors.ErrUserNotFound) {
			return nil, appErrors.ErrInvalidVerificationToken
		}
		return nil, err
	}

	if u.IsVerified {
		return nil, appErrors.ErrAlreadyVerified
	}

	if err := s.users.MarkVerified(ctx, u.ID); err != nil {
		return nil, err
	}

	u.IsVerified = true
	u.VerificationToken = nil
	u.VerificationTokenExpires = nil

	logger.Info("Email verified",
		zap.String("user_id", u.ID.String()),
		zap.String("email", u.Email),
		zap.String("event", "email_verified"),
	)

	return u, nil
}

// IssueResetToken generates and stores a fresh password-reset secret for
// the user, invalidating any prior one.
func (s *Service) IssueResetToken(ctx context.Context, u *domainUser.User) (string, error) {
	secret, err := token.GenerateSecret()
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiresAt := s.now().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, u.ID, secret, expiresAt); err != nil {
		return "", err
	}

	logger.Debug("Reset token issued",
		zap.String("user_id", u.ID.String()),
		zap.Time("expires_at", expiresAt),
		zap.String("event", "reset_token_issued"),
	)

	return secret, nil
}

// ValidateResetToken is a pure check: it resolves the secret without
// consuming it. The caller clears the secret explicitly after the password
// mutation.
func (s *Service) ValidateResetToken(ctx context.Context, secret string) (*domainUser.User, error) {
	u, err := s.users.GetByResetToken(ctx, secret)
	if err != nil {
		if errors.Is(err, appErrors.ErrUserNotFound) {
			return nil, appErrors.ErrInvalidResetToken
		}
		return nil, err
	}

	return u, nil
}

// ClearResetToken removes the reset secret pair after a successful
// password reset.
func (s *Service) ClearResetToken(ctx context.Context, u *domainUser.User) error {
	return s.users.ClearResetToken(ctx, u.ID)
}
