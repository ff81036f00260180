package auth

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auth-service/internal/domain/event"
	"auth-service/internal/infrastructure/database/memory"
	"auth-service/internal/logger"
	tokenLifecycle "auth-service/internal/usecase/token"
	appErrors "auth-service/pkg/errors"
	"auth-service/pkg/token"
)

func TestMain(m *testing.M) {
	if err := logger.Init("production"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakePublisher records every published event; when failing is set, each
// publish returns an error.
type fakePublisher struct {
	failing bool

	verifications   []event.EmailVerificationEvent
	welcomes        []event.WelcomeEmailEvent
	resets          []event.PasswordResetEvent
	passwordChanges []event.PasswordChangedEvent
}

func (p *fakePublisher) PublishEmailVerification(e event.EmailVerificationEvent) error {
	if p.failing {
		return errors.New("broker unavailable")
	}
	p.verifications = append(p.verifications, e)
	return nil
}

func (p *fakePublisher) PublishWelcomeEmail(e event.WelcomeEmailEvent) error {
	if p.failing {
		return errors.New("broker unavailable")
	}
	p.welcomes = append(p.welcomes, e)
	return nil
}

func (p *fakePublisher) PublishPasswordReset(e event.PasswordResetEvent) error {
	if p.failing {
		return errors.New("broker unavailable")
	}
	p.resets = append(p.resets, e)
	return nil
}

func (p *fakePublisher) PublishPasswordChanged(e event.PasswordChangedEvent) error {
	if p.failing {
		return errors.New("broker unavailable")
	}
	p.passwordChanges = append(p.passwordChanges, e)
	return nil
}

type fixture struct {
	svc       *Service
	repo      *memory.UserRepository
	publisher *fakePublisher
}

func setup(t *testing.T) *fixture {
	t.Helper()

	repo := memory.NewUserRepository()
	publisher := &fakePublisher{}
	secrets := tokenLifecycle.NewService(repo, 24, 1)
	codec := token.NewCodec("test-secret", 30*time.Minute, 7*24*time.Hour)

	return &fixture{
		svc:       NewService(repo, secrets, codec, publisher, "http://localhost:3000"),
		repo:      repo,
		publisher: publisher,
	}
}

func (f *fixture) register(t *testing.T, email string) *UserResponse {
	t.Helper()

	user, err := f.svc.Register(context.Background(), &RegisterRequest{
		Name:     "Ana",
		Email:    email,
		Password: "Abcd1234",
	})
	require.NoError(t, err)
	return user
}

// verify consumes the verification secret carried by the most recent
// verification event for the given email.
func (f *fixture) verify(t *testing.T, email string) {
	t.Helper()

	secret := f.lastVerificationSecret(t, email)
	_, err := f.svc.VerifyEmail(context.Background(), secret)
	require.NoError(t, err)
}

func (f *fixture) lastVerificationSecret(t *testing.T, email string) string {
	t.Helper()

	for i := len(f.publisher.verifications) - 1; i >= 0; i-- {
		if f.publisher.verifications[i].Email == email {
			return f.publisher.verifications[i].VerificationToken
		}
	}
	t.Fatalf("no verification event for %s", email)
	return ""
}

func TestRegister(t *testing.T) {
	t.Parallel()

	f := setup(t)
	user := f.register(t, "ana@x.com")

	assert.Equal(t, "Ana", user.Name)
	assert.False(t, user.IsVerified)
	assert.True(t, user.IsActive)
	assert.Equal(t, "standard", user.Role)

	require.Len(t, f.publisher.verifications, 1)
	e := f.publisher.verifications[0]
	assert.Equal(t, user.ID, e.UserID)
	assert.Equal(t, "ana@x.com", e.Email)
	assert.NotEmpty(t, e.VerificationToken)
	assert.Equal(t, "http://localhost:3000", e.FrontendURL)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	f := setup(t)
	f.register(t, "ana@x.com")

	_, err := f.svc.Register(context.Background(), &RegisterRequest{
		Name:     "Other",
		Email:    "ana@x.com",
		Password: "Abcd1234",
	})
	assert.ErrorIs(t, err, appErrors.ErrDuplicateEmail)

	// No second verification event, no partial user.
	assert.Len(t, f.publisher.verifications, 1)
}

func TestRegister_WeakPassword(t *testing.T) {
	t.Parallel()

	f := setup(t)

	// Long enough for the DTO binding; rejected by the strength policy.
	_, err := f.svc.Register(context.Background(), &RegisterRequest{
		Name:     "Ana",
		Email:    "ana@x.com",
		Password: "abcdefgh",
	})

	var appErr *appErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WEAK_PASSWORD", appErr.Code)
}

func TestRegister_PublishFailureDoesNotFail(t *testing.T) {
	t.Parallel()

	f := setup(t)
	f.publisher.failing = true

	user, err := f.svc.Register(context.Background(), &RegisterRequest{
		Name:     "Ana",
		Email:    "ana@x.com",
		Password: "Abcd1234",
	})
	require.NoError(t, err)
	assert.NotNil(t, user)
}

func TestLogin_UnknownAndWrongPasswordIndistinguishable(t *testing.T) {
	t.Parallel()

	f := setup(t)
	f.register(t, "ana@x.com")
	f.verify(t, "ana@x.com")

	_, errUnknown := f.svc.Login(context.Background(), &LoginRequest{
		Email:    "nobody@x.com",
		Password: "Abcd1234",
	})
	_, errWrongPassword := f.svc.Login(context.Background(), &LoginRequest{
		Email:    "ana@x.com",
		Password: "Wrong1234",
	})

	assert.ErrorIs(t, errUnknown, appErrors.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPassword, appErrors.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPassword.Error())
}

func TestLogin_GateOrder(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()
	user := f.register(t, "ana@x.com")

	// Unverified on an active account: verification gate.
	_, err := f.svc.Login(ctx, &LoginRequest{Email: "ana@x.com", Password: "Abcd1234"})
	assert.ErrorIs(t, err, appErrors.ErrEmailNotVerified)

	// Inactive and unverified: the inactive check fires first.
	require.NoError(t, f.repo.Deactivate(ctx, user.ID))
	_, err = f.svc.Login(ctx, &LoginRequest{Email: "ana@x.com", Password: "Abcd1234"})
	assert.ErrorIs(t, err, appErrors.ErrAccountInactive)

	// Wrong credentials on an inactive account: credentials fail first.
	_, err = f.svc.Login(ctx, &LoginRequest{Email: "ana@x.com", Password: "Wrong1234"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	f := setup(t)
	f.register(t, "ana@x.com")
	f.verify(t, "ana@x.com")

	resp, err := f.svc.Login(context.Background(), &LoginRequest{
		Email:    "ana@x.com",
		Password: "Abcd1234",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.True(t, resp.User.IsVerified)
}

func TestRefreshAccessToken(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()
	registered := f.register(t, "ana@x.com")

	user, err := f.repo.GetByID(ctx, registered.ID)
	require.NoError(t, err)

	resp, err := f.svc.RefreshAccessToken(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	// A refresh for a since-deactivated account must fail.
	user.IsActive = false
	_, err = f.svc.RefreshAccessToken(ctx, user)
	assert.ErrorIs(t, err, appErrors.ErrAccountInactive)
}

func TestVerifyEmail_EmitsWelcome(t *testing.T) {
	t.Parallel()

	f := setup(t)
	f.register(t, "ana@x.com")
	secret := f.lastVerificationSecret(t, "ana@x.com")

	user, err := f.svc.VerifyEmail(context.Background(), secret)
	require.NoError(t, err)
	assert.True(t, user.IsVerified)

	require.Len(t, f.publisher.welcomes, 1)
	assert.Equal(t, "ana@x.com", f.publisher.welcomes[0].Email)

	// Second use of the same secret: it was cleared on first consumption.
	_, err = f.svc.VerifyEmail(context.Background(), secret)
	assert.ErrorIs(t, err, appErrors.ErrInvalidVerificationToken)
}

func TestResendVerification(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	err := f.svc.ResendVerification(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, appErrors.ErrUserNotFound)

	f.register(t, "ana@x.com")
	firstSecret := f.lastVerificationSecret(t, "ana@x.com")

	require.NoError(t, f.svc.ResendVerification(ctx, "ana@x.com"))
	secondSecret := f.lastVerificationSecret(t, "ana@x.com")
	require.NotEqual(t, firstSecret, secondSecret)

	// Re-issue permanently invalidated the first secret.
	_, err = f.svc.VerifyEmail(ctx, firstSecret)
	assert.ErrorIs(t, err, appErrors.ErrInvalidVerificationToken)

	f.verify(t, "ana@x.com")
	err = f.svc.ResendVerification(ctx, "ana@x.com")
	assert.ErrorIs(t, err, appErrors.ErrAlreadyVerified)
}

func TestRequestPasswordReset_UnknownEmailSilent(t *testing.T) {
	t.Parallel()

	f := setup(t)

	err := f.svc.RequestPasswordReset(context.Background(), "nobody@x.com")
	assert.NoError(t, err)
	assert.Empty(t, f.publisher.resets)
}

func TestResetPasswordFlow(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()
	f.register(t, "ana@x.com")
	f.verify(t, "ana@x.com")

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ana@x.com"))
	require.Len(t, f.publisher.resets, 1)
	secret := f.publisher.resets[0].ResetToken

	require.NoError(t, f.svc.ValidateResetToken(ctx, secret))

	require.NoError(t, f.svc.ResetPassword(ctx, secret, "NewPass99"))
	require.Len(t, f.publisher.passwordChanges, 1)

	// Old password dead, new one works.
	_, err := f.svc.Login(ctx, &LoginRequest{Email: "ana@x.com", Password: "Abcd1234"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, &LoginRequest{Email: "ana@x.com", Password: "NewPass99"})
	assert.NoError(t, err)

	// The secret was cleared after the reset.
	err = f.svc.ResetPassword(ctx, secret, "Another99")
	assert.ErrorIs(t, err, appErrors.ErrInvalidResetToken)
}

func TestResetPassword_InvalidToken(t *testing.T) {
	t.Parallel()

	f := setup(t)

	err := f.svc.ResetPassword(context.Background(), "no-such-secret", "NewPass99")
	assert.ErrorIs(t, err, appErrors.ErrInvalidResetToken)
}

func TestRequestPasswordReset_ReRequestReplaces(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()
	f.register(t, "ana@x.com")

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ana@x.com"))
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ana@x.com"))
	require.Len(t, f.publisher.resets, 2)

	first := f.publisher.resets[0].ResetToken
	second := f.publisher.resets[1].ResetToken
	require.NotEqual(t, first, second)

	assert.ErrorIs(t, f.svc.ValidateResetToken(ctx, first), appErrors.ErrInvalidResetToken)
	assert.NoError(t, f.svc.ValidateResetToken(ctx, second))
}
