package user

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainUser "auth-service/internal/domain/user"
	"auth-service/internal/infrastructure/database/memory"
	"auth-service/internal/logger"
	appErrors "auth-service/pkg/errors"
	"auth-service/pkg/utils"
)

func TestMain(m *testing.M) {
	if err := logger.Init("production"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeMailer struct {
	failing bool
	sent    []string
}

func (m *fakeMailer) SendPasswordChangedEmail(to, name string) error {
	if m.failing {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, to)
	return nil
}

func setup(t *testing.T) (*Service, *memory.UserRepository, *fakeMailer, *domainUser.User) {
	t.Helper()

	repo := memory.NewUserRepository()
	mailer := &fakeMailer{}

	digest, err := utils.HashPassword("Abcd1234")
	require.NoError(t, err)

	u := &domainUser.User{
		Name:           "Ana",
		Email:          "ana@x.com",
		HashedPassword: digest,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	// Creation always yields an unverified account; these tests start from
	// a verified one so email-change semantics are observable.
	require.NoError(t, repo.MarkVerified(context.Background(), u.ID))
	u.IsVerified = true

	return NewService(repo, mailer), repo, mailer, u
}

func strPtr(s string) *string { return &s }

func TestGetProfile(t *testing.T) {
	t.Parallel()

	svc, _, _, u := setup(t)

	profile, err := svc.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", profile.Email)
	assert.Equal(t, "Ana", profile.Name)
}

func TestUpdateProfile_NameOnly(t *testing.T) {
	t.Parallel()

	svc, _, _, u := setup(t)

	profile, err := svc.UpdateProfile(context.Background(), u.ID, &UpdateProfileRequest{
		Name: strPtr("Ana Maria"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", profile.Name)
	assert.True(t, profile.IsVerified, "a name change must not touch verification")
}

func TestUpdateProfile_EmailChangeResetsVerification(t *testing.T) {
	t.Parallel()

	svc, repo, _, u := setup(t)

	profile, err := svc.UpdateProfile(context.Background(), u.ID, &UpdateProfileRequest{
		Email: strPtr("new@x.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", profile.Email)
	assert.False(t, profile.IsVerified)

	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsVerified)
}

func TestUpdateProfile_SameEmailKeepsVerification(t *testing.T) {
	t.Parallel()

	svc, _, _, u := setup(t)

	profile, err := svc.UpdateProfile(context.Background(), u.ID, &UpdateProfileRequest{
		Email: strPtr("ana@x.com"),
	})
	require.NoError(t, err)
	assert.True(t, profile.IsVerified)
}

func TestUpdateProfile_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, repo, _, u := setup(t)
	require.NoError(t, repo.Create(context.Background(), &domainUser.User{
		Name:           "Bob",
		Email:          "bob@x.com",
		HashedPassword: "digest",
	}))

	_, err := svc.UpdateProfile(context.Background(), u.ID, &UpdateProfileRequest{
		Email: strPtr("bob@x.com"),
	})
	assert.ErrorIs(t, err, appErrors.ErrDuplicateEmail)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	svc, repo, mailer, u := setup(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, u.ID, &ChangePasswordRequest{
		CurrentPassword: "Abcd1234",
		NewPassword:     "NewPass99",
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	ok, err := utils.CheckPassword(stored.HashedPassword, "NewPass99")
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ana@x.com", mailer.sent[0])
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	t.Parallel()

	svc, _, mailer, u := setup(t)

	err := svc.ChangePassword(context.Background(), u.ID, &ChangePasswordRequest{
		CurrentPassword: "Wrong1234",
		NewPassword:     "NewPass99",
	})

	var appErr *appErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_PASSWORD", appErr.Code)
	assert.Empty(t, mailer.sent)
}

func TestChangePassword_SamePassword(t *testing.T) {
	t.Parallel()

	svc, _, _, u := setup(t)

	err := svc.ChangePassword(context.Background(), u.ID, &ChangePasswordRequest{
		CurrentPassword: "Abcd1234",
		NewPassword:     "Abcd1234",
	})

	var appErr *appErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SAME_PASSWORD", appErr.Code)
}

func TestChangePassword_MailerFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	svc, _, mailer, u := setup(t)
	mailer.failing = true

	err := svc.ChangePassword(context.Background(), u.ID, &ChangePasswordRequest{
		CurrentPassword: "Abcd1234",
		NewPassword:     "NewPass99",
	})
	assert.NoError(t, err)
}

func TestChangePassword_NilMailer(t *testing.T) {
	t.Parallel()

	repo := memory.NewUserRepository()
	digest, err := utils.HashPassword("Abcd1234")
	require.NoError(t, err)
	u := &domainUser.User{Name: "Ana", Email: "ana@x.com", HashedPassword: digest}
	require.NoError(t, repo.Create(context.Background(), u))

	svc := NewService(repo, nil)
	err = svc.ChangePassword(context.Background(), u.ID, &ChangePasswordRequest{
		CurrentPassword: "Abcd1234",
		NewPassword:     "NewPass99",
	})
	assert.NoError(t, err)
}

func TestDeactivateAccount(t *testing.T) {
	t.Parallel()

	svc, repo, _, u := setup(t)

	require.NoError(t, svc.DeactivateAccount(context.Background(), u.ID))

	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestDeleteAccount(t *testing.T) {
	t.Parallel()

	svc, repo, _, u := setup(t)
	ctx := context.Background()

	err := svc.DeleteAccount(ctx, u.ID, "Wrong1234")
	var appErr *appErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_PASSWORD", appErr.Code)

	require.NoError(t, svc.DeleteAccount(ctx, u.ID, "Abcd1234"))

	_, err = repo.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, appErrors.ErrUserNotFound)
}

func TestListUsers_LimitClamp(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := setup(t)
	ctx := context.Background()

	admin := &domainUser.User{
		Name:           "Root",
		Email:          "root@x.com",
		HashedPassword: "digest",
		Role:           domainUser.RoleAdmin,
	}
	require.NoError(t, repo.Create(ctx, admin))

	all, err := svc.ListUsers(ctx, ListUsersFilter{Limit: 100000})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	role := domainUser.RoleAdmin
	admins, err := svc.ListUsers(ctx, ListUsersFilter{Role: &role})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "root@x.com", admins[0].Email)
}
