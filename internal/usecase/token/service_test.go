package token

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainUser "auth-service/internal/domain/user"
	"auth-service/internal/infrastructure/database/memory"
	"auth-service/internal/logger"
	appErrors "auth-service/pkg/errors"
)

func TestMain(m *testing.M) {
	if err := logger.Init("production"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func setup(t *testing.T) (*Service, *memory.UserRepository, *domainUser.User) {
	t.Helper()

	repo := memory.NewUserRepository()
	u := &domainUser.User{
		Name:           "Ana",
		Email:          "ana@x.com",
		HashedPassword: "digest",
	}
	require.NoError(t, repo.Create(context.Background(), u))

	return NewService(repo, 24, 1), repo, u
}

func TestVerificationLifecycle(t *testing.T) {
	t.Parallel()

	svc, repo, u := setup(t)
	ctx := context.Background()

	secret, err := svc.IssueVerificationToken(ctx, u)
	require.NoError(t, err)
	require.NotEmpty(t, secret)

	verified, err := svc.ConsumeVerificationToken(ctx, secret)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.Nil(t, verified.VerificationToken)

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
	assert.Nil(t, stored.VerificationToken)
	assert.Nil(t, stored.VerificationTokenExpires)

	// The secret was cleared on first use; the same string is now invalid.
	_, err = svc.ConsumeVerificationToken(ctx, secret)
	assert.ErrorIs(t, err, appErrors.ErrInvalidVerificationToken)
}

func TestConsumeVerificationToken_Unknown(t *testing.T) {
	t.Parallel()

	svc, _, _ := setup(t)

	_, err := svc.ConsumeVerificationToken(context.Background(), "no-such-secret")
	assert.ErrorIs(t, err, appErrors.ErrInvalidVerificationToken)
}

func TestConsumeVerificationToken_Expired(t *testing.T) {
	t.Parallel()

	svc, repo, u := setup(t)
	ctx := context.Background()

	secret, err := svc.IssueVerificationToken(ctx, u)
	require.NoError(t, err)

	repo.Now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err = svc.ConsumeVerificationToken(ctx, secret)
	assert.ErrorIs(t, err, appErrors.ErrInvalidVerificationToken)
}

func TestConsumeVerificationToken_AlreadyVerified(t *testing.T) {
	t.Parallel()

	svc, repo, u := setup(t)
	ctx := context.Background()

	// A verified user whose secret still resolves: the defensive branch.
	secret, err := svc.IssueVerificationToken(ctx, u)
	require.NoError(t, err)

	u.IsVerified = true
	require.NoError(t, repo.Update(ctx, u))

	_, err = svc.ConsumeVerificationToken(ctx, secret)
	assert.ErrorIs(t, err, appErrors.ErrAlreadyVerified)

	// No state change: the secret pair is untouched.
	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.VerificationToken)
}

func TestIssueVerificationToken_ReissueInvalidatesOld(t *testing.T) {
	t.Parallel()

	svc, _, u := setup(t)
	ctx := context.Background()

	first, err := svc.IssueVerificationToken(ctx, u)
	require.NoError(t, err)
	second, err := svc.IssueVerificationToken(ctx, u)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = svc.ConsumeVerificationToken(ctx, first)
	assert.ErrorIs(t, err, appErrors.ErrInvalidVerificationToken)

	verified, err := svc.ConsumeVerificationToken(ctx, second)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
}

func TestResetTokenLifecycle(t *testing.T) {
	t.Parallel()

	svc, repo, u := setup(t)
	ctx := context.Background()

	secret, err := svc.IssueResetToken(ctx, u)
	require.NoError(t, err)

	// Validation is a pure check: it does not consume the secret.
	owner, err := svc.ValidateResetToken(ctx, secret)
	require.NoError(t, err)
	assert.Equal(t, u.ID, owner.ID)

	owner, err = svc.ValidateResetToken(ctx, secret)
	require.NoError(t, err)
	assert.Equal(t, u.ID, owner.ID)

	require.NoError(t, svc.ClearResetToken(ctx, owner))

	_, err = svc.ValidateResetToken(ctx, secret)
	assert.ErrorIs(t, err, appErrors.ErrInvalidResetToken)

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ResetToken)
	assert.Nil(t, stored.ResetTokenExpires)
}

func TestValidateResetToken_Expired(t *testing.T) {
	t.Parallel()

	svc, repo, u := setup(t)
	ctx := context.Background()

	secret, err := svc.IssueResetToken(ctx, u)
	require.NoError(t, err)

	repo.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = svc.ValidateResetToken(ctx, secret)
	assert.ErrorIs(t, err, appErrors.ErrInvalidResetToken)
}
