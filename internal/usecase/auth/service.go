package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"auth-service/internal/domain/event"
	domainUser "auth-service/internal/domain/user"
	"auth-service/internal/logger"
	tokenLifecycle "auth-service/internal/usecase/token"
	appErrors "auth-service/pkg/errors"
	"auth-service/pkg/token"
	"auth-service/pkg/utils"
)

// Service orchestrates registration, login, token refresh and the email
// verification and password-reset flows.
type Service struct {
	users       domainUser.Repository
	secrets     *tokenLifecycle.Service
	codec       *token.Codec
	publisher   event.Publisher
	frontendURL string
}

func NewService(
	users domainUser.Repository,
	secrets *tokenLifecycle.Service,
	codec *token.Codec,
	publisher event.Publisher,
	frontendURL string,
) *Service {
	return &Service{
		users:       users,
		secrets:     secrets,
		codec:       codec,
		publisher:   publisher,
		frontendURL: frontendURL,
	}
}

// Register creates an unverified, active account, issues a verification
// secret and emits the verification event.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, appErrors.NewAppError("WEAK_PASSWORD", err.Error(), nil)
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domainUser.User{
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           req.Role,
	}

	// The unique index is the authority on duplicates; no pre-check read.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, appErrors.ErrDuplicateEmail) {
			logger.Warn("Registration attempt with existing email",
				zap.String("email", req.Email),
				zap.String("event", "registration_failed_duplicate_email"),
			)
		}
		return nil, err
	}

	verificationToken, err := s.secrets.IssueVerificationToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish("email_verification", func() error {
		return s.publisher.PublishEmailVerification(event.EmailVerificationEvent{
			UserID:            user.ID,
			Email:             user.Email,
			Name:              user.Name,
			VerificationToken: verificationToken,
			FrontendURL:       s.frontendURL,
		})
	})

	logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", user.Role),
		zap.String("event", "user_registered"),
	)

	return ToUserResponse(user), nil
}

// Login authenticates credentials and gates on account state before issuing
// a token pair. A missing user and a wrong password are indistinguishable;
// the inactive check runs before the verification check.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		logger.Warn("Login attempt for inactive user",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "login_failed_inactive_user"),
		)
		return nil, appErrors.ErrAccountInactive
	}

	if !user.IsVerified {
		logger.Warn("Login attempt for unverified user",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "login_failed_unverified_user"),
		)
		return nil, appErrors.ErrEmailNotVerified
	}

	accessToken, err := s.codec.IssueAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.codec.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("event", "login_success"),
	)

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		User:         ToUserResponse(user),
	}, nil
}

// authenticate looks up by email and checks the password. Both failure modes
// collapse into ErrInvalidCredentials so a caller cannot tell them apart.
func (s *Service) authenticate(ctx context.Context, email, password string) (*domainUser.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, appErrors.ErrUserNotFound) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := utils.CheckPassword(user.HashedPassword, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErrors.ErrInvalidCredentials
	}

	return user, nil
}

// RefreshAccessToken issues a new access token for a caller that has already
// proven possession of a valid refresh token. Only is_active is re-checked;
// verification is not.
func (s *Service) RefreshAccessToken(ctx context.Context, user *domainUser.User) (*RefreshResponse, error) {
	if !user.IsActive {
		return nil, appErrors.ErrAccountInactive
	}

	accessToken, err := s.codec.IssueAccessToken(user.ID)
	if err != nil {
		return nil, err
	}

	logger.Debug("Access token refreshed",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "token_refreshed"),
	)

	return &RefreshResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
	}, nil
}

// VerifyEmail consumes a verification secret and emits the welcome event.
func (s *Service) VerifyEmail(ctx context.Context, secret string) (*UserResponse, error) {
	user, err := s.secrets.ConsumeVerificationToken(ctx, secret)
	if err != nil {
		return nil, err
	}

	s.publish("welcome_email", func() error {
		return s.publisher.PublishWelcomeEmail(event.WelcomeEmailEvent{
			UserID: user.ID,
			Email:  user.Email,
			Name:   user.Name,
		})
	})

	return ToUserResponse(user), nil
}

// ResendVerification re-issues a verification secret, invalidating the
// previous one, and emits a fresh verification event.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.IsVerified {
		return appErrors.ErrAlreadyVerified
	}

	verificationToken, err := s.secrets.IssueVerificationToken(ctx, user)
	if err != nil {
		return err
	}

	s.publish("email_verification", func() error {
		return s.publisher.PublishEmailVerification(event.EmailVerificationEvent{
			UserID:            user.ID,
			Email:             user.Email,
			Name:              user.Name,
			VerificationToken: verificationToken,
			FrontendURL:       s.frontendURL,
		})
	})

	logger.Info("Verification email resent",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "verification_resent"),
	)

	return nil
}

// RequestPasswordReset issues a reset secret and emits the reset event. An
// unknown email is a silent no-op so the endpoint cannot be used to
// enumerate accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, appErrors.ErrUserNotFound) {
			logger.Info("Password reset requested for unknown email",
				zap.String("event", "password_reset_unknown_email"),
			)
			return nil
		}
		return err
	}

	resetToken, err := s.secrets.IssueResetToken(ctx, user)
	if err != nil {
		return err
	}

	s.publish("password_reset", func() error {
		return s.publisher.PublishPasswordReset(event.PasswordResetEvent{
			UserID:      user.ID,
			Email:       user.Email,
			Name:        user.Name,
			ResetToken:  resetToken,
			FrontendURL: s.frontendURL,
		})
	})

	logger.Info("Password reset requested",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "password_reset_requested"),
	)

	return nil
}

// ResetPassword validates the reset secret, updates the password, clears
// the secret and emits the password-changed event.
func (s *Service) ResetPassword(ctx context.Context, secret, newPassword string) error {
	if err := utils.ValidatePassword(newPassword); err != nil {
		return appErrors.NewAppError("WEAK_PASSWORD", err.Error(), nil)
	}

	user, err := s.secrets.ValidateResetToken(ctx, secret)
	if err != nil {
		return err
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return err
	}

	if err := s.secrets.ClearResetToken(ctx, user); err != nil {
		return err
	}

	s.publish("password_changed", func() error {
		return s.publisher.PublishPasswordChanged(event.PasswordChangedEvent{
			UserID: user.ID,
			Email:  user.Email,
			Name:   user.Name,
		})
	})

	logger.Info("Password reset completed",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "password_reset_success"),
	)

	return nil
}

// ValidateResetToken is the pre-flight check behind /password/validate-token.
func (s *Service) ValidateResetToken(ctx context.Context, secret string) error {
	_, err := s.secrets.ValidateResetToken(ctx, secret)
	return err
}

// publish delivers an event best effort: failures are logged and never
// propagated to the triggering operation.
func (s *Service) publish(name string, fn func() error) {
	if err := fn(); err != nil {
		logger.Error("Failed to publish event",
			zap.String("event_type", name),
			zap.Error(err),
		)
	}
}
