package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subhub/internal/logger"
	"subhub/internal/models/db_models"
	"subhub/internal/models/request_models"
	"subhub/internal/repositories"
	"subhub/pkg/utils"
)

func newTestAccountService() (AccountServiceInterface, repositories.AccountRepository) {
	repo := repositories.NewMemoryAccountRepository()
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	return NewAccountService(repo, tokens, logger.NewNop()), repo
}

func register(t *testing.T, svc AccountServiceInterface, email string) uuid.UUID {
	t.Helper()
	auth, err := svc.CreateAccount(request_models.SignUpRequest{
		Name:     "Asha Rao",
		Email:    email,
		Password: "secret123",
	}, context.Background())
	require.NoError(t, err)
	return uuid.MustParse(auth.User.ID)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAccountService()

	auth, err := svc.CreateAccount(request_models.SignUpRequest{
		Name: "Asha Rao", Email: "Asha@Example.com", Password: "secret123",
	}, ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, "asha@example.com", auth.User.Email)
	assert.Equal(t, "user", auth.User.Role)
	assert.Empty(t, auth.User.LastLogin)

	login, err := svc.Login(request_models.LoginRequest{Email: "asha@example.com", Password: "secret123"}, ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, auth.User.ID, login.User.ID)
	assert.NotEmpty(t, login.User.LastLogin)

	principal, err := svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.User.ID, principal.UserID.String())
	assert.Equal(t, db_models.RoleUser, principal.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAccountService()
	register(t, svc, "asha@example.com")

	_, err := svc.CreateAccount(request_models.SignUpRequest{
		Name: "Other", Email: "ASHA@example.com", Password: "secret123",
	}, context.Background())
	assert.ErrorIs(t, err, utils.ErrEmailAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAccountService()
	_, err := svc.CreateAccount(request_models.SignUpRequest{
		Name: "Asha", Email: "not-an-email", Password: "123",
	}, context.Background())
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestAccountService()
	id := register(t, svc, "asha@example.com")

	_, err := svc.Login(request_models.LoginRequest{Email: "asha@example.com", Password: "wrong"}, ctx)
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, err = svc.Login(request_models.LoginRequest{Email: "nobody@example.com", Password: "secret123"}, ctx)
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	account, err := repo.FindById(ctx, id)
	require.NoError(t, err)
	account.IsActive = false
	require.NoError(t, repo.Update(ctx, account))

	_, err = svc.Login(request_models.LoginRequest{Email: "asha@example.com", Password: "secret123"}, ctx)
	assert.ErrorIs(t, err, utils.ErrAccountInactive)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestAccountService()

	_, err := svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, utils.ErrUnauthorized)

	foreign, err := utils.NewTokenManager("other-secret", time.Hour).CreateToken(uuid.New(), "admin")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, foreign)
	assert.ErrorIs(t, err, utils.ErrUnauthorized)

	// a valid signature for an account that no longer exists
	ghost, err := utils.NewTokenManager("test-secret", time.Hour).CreateToken(uuid.New(), "user")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, utils.ErrUnauthorized)

	id := register(t, svc, "asha@example.com")
	token, err := utils.NewTokenManager("test-secret", time.Hour).CreateToken(id, "user")
	require.NoError(t, err)
	account, err := repo.FindById(ctx, id)
	require.NoError(t, err)
	account.IsActive = false
	require.NoError(t, repo.Update(ctx, account))
	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, utils.ErrAccountInactive)
}

func TestProfileAndPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAccountService()
	id := register(t, svc, "asha@example.com")

	me, err := svc.GetMe(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", me.Name)

	name := "Asha R."
	avatar := "https://cdn.example.com/a.png"
	me, err = svc.UpdateProfile(ctx, id, request_models.UpdateProfileRequest{Name: &name, Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, name, me.Name)
	assert.Equal(t, avatar, me.Avatar)

	err = svc.ChangePassword(ctx, id, request_models.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, id, request_models.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "newsecret"}))
	_, err = svc.Login(request_models.LoginRequest{Email: "asha@example.com", Password: "secret123"}, ctx)
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
	_, err = svc.Login(request_models.LoginRequest{Email: "asha@example.com", Password: "newsecret"}, ctx)
	assert.NoError(t, err)

	_, err = svc.GetMe(ctx, uuid.New())
	assert.ErrorIs(t, err, utils.ErrAccountNotFound)
}

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestAccountService()

	require.NoError(t, svc.SeedAdmin(ctx, "", ""))
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, svc.SeedAdmin(ctx, "admin@example.com", "adminpass"))
	require.NoError(t, svc.SeedAdmin(ctx, "admin@example.com", "adminpass"))
	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	login, err := svc.Login(request_models.LoginRequest{Email: "admin@example.com", Password: "adminpass"}, ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", login.User.Role)
}
