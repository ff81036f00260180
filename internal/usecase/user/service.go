package user

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	domainUser "auth-service/internal/domain/user"
	"auth-service/internal/logger"
	appErrors "auth-service/pkg/errors"
	"auth-service/pkg/utils"

	"github.com/google/uuid"
)

// Mailer sends the direct (non-queued) confirmation mail after a password
// change.
type Mailer interface {
	SendPasswordChangedEmail(to, name string) error
}

// Service implements the profile use cases: read/update the own account,
// change password, deactivate (soft) and delete (hard).
type Service struct {
	users  domainUser.Repository
	mailer Mailer
}

// NewService creates a new user service. mailer may be nil when SMTP is not
// configured; the confirmation mail is then skipped.
func NewService(users domainUser.Repository, mailer Mailer) *Service {
	return &Service{
		users:  users,
		mailer: mailer,
	}
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return ToProfileResponse(user), nil
}

// UpdateProfile applies name and email changes. A changed email resets
// is_verified; the user goes through resend-verification to verify the new
// address.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*ProfileResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		existing, err := s.users.GetByEmail(ctx, *req.Email)
		if err != nil && !errors.Is(err, appErrors.ErrUserNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, appErrors.ErrDuplicateEmail
		}

		user.Email = *req.Email
		user.IsVerified = false

		logger.Info("Email changed, verification reset",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "email_changed"),
		)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return ToProfileResponse(user), nil
}

// ChangePassword requires the current password and rejects a new password
// equal to the stored one. A confirmation mail is sent directly over SMTP.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		return appErrors.NewAppError("WEAK_PASSWORD", err.Error(), nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := utils.CheckPassword(user.HashedPassword, req.CurrentPassword)
	if err != nil {
		return err
	}
	if !ok {
		logger.Warn("Password change attempt with wrong current password",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "password_change_failed_wrong_current"),
		)
		return appErrors.NewAppError("INVALID_PASSWORD", "Current password is incorrect", nil)
	}

	same, err := utils.CheckPassword(user.HashedPassword, req.NewPassword)
	if err != nil {
		return err
	}
	if same {
		return appErrors.NewAppError("SAME_PASSWORD", "New password must differ from the current one", nil)
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return err
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordChangedEmail(user.Email, user.Name); err != nil {
			logger.Error("Failed to send password-changed confirmation",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
		}
	}

	logger.Info("Password changed",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "password_changed"),
	)

	return nil
}

// DeactivateAccount soft-deletes: the record persists, login becomes
// impossible until reactivation.
func (s *Service) DeactivateAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.Deactivate(ctx, userID); err != nil {
		return err
	}

	logger.Info("Account deactivated",
		zap.String("user_id", userID.String()),
		zap.String("event", "account_deactivated"),
	)

	return nil
}

// DeleteAccount hard-deletes the record, irreversibly. The password is
// required as confirmation.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := utils.CheckPassword(user.HashedPassword, password)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.NewAppError("INVALID_PASSWORD", "Password is incorrect", nil)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	logger.Info("Account deleted",
		zap.String("user_id", userID.String()),
		zap.String("event", "account_deleted"),
	)

	return nil
}

// ListUsers is the admin listing with optional role/state filters.
func (s *Service) ListUsers(ctx context.Context, filter ListUsersFilter) ([]*ProfileResponse, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	users, err := s.users.List(ctx, domainUser.ListFilter{
		Role:       filter.Role,
		IsVerified: filter.IsVerified,
		IsActive:   filter.IsActive,
		Offset:     filter.Offset,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]*ProfileResponse, len(users))
	for i, u := range users {
		responses[i] = ToProfileResponse(u)
	}

	return responses, nil
}
