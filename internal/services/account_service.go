package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"subhub/internal/logger"
	"subhub/internal/models/db_models"
	"subhub/internal/models/request_models"
	"subhub/internal/models/response_models"
	"subhub/internal/repositories"
	"subhub/pkg/utils"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID uuid.UUID
	Role   db_models.Role
}

type AccountServiceInterface interface {
	Login(request request_models.LoginRequest, ctx context.Context) (*response_models.AuthResponse, error)
	CreateAccount(request request_models.SignUpRequest, ctx context.Context) (*response_models.AuthResponse, error)

	// Authenticate resolves a bearer token to an active account.
	Authenticate(ctx context.Context, token string) (*Principal, error)
	GetMe(ctx context.Context, userID uuid.UUID) (*response_models.AccountResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req request_models.UpdateProfileRequest) (*response_models.AccountResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req request_models.ChangePasswordRequest) error
	SeedAdmin(ctx context.Context, email, password string) error
}

type AccountService struct {
	accountRepo repositories.AccountRepository
	tokens      *utils.TokenManager
	log         *logger.Logger
	now         func() time.Time
}

func NewAccountService(accountRepo repositories.AccountRepository, tokens *utils.TokenManager, log *logger.Logger) AccountServiceInterface {
	return &AccountService{
		accountRepo: accountRepo,
		tokens:      tokens,
		log:         log,
		now:         time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toAccountResponse(a *db_models.Account) response_models.AccountResponse {
	out := response_models.AccountResponse{
		ID:     a.ID.String(),
		Name:   a.Name,
		Email:  a.Email,
		Role:   string(a.Role),
		Avatar: a.Avatar,
	}
	if a.LastLoginAt != nil {
		out.LastLogin = utils.FormatRFC3339(utils.FromUnixSeconds(*a.LastLoginAt))
	}
	return out
}

func (a *AccountService) Login(request request_models.LoginRequest, ctx context.Context) (*response_models.AuthResponse, error) {
	startTime := a.now()

	if err := validateStruct(request); err != nil {
		return nil, err
	}

	account, err := a.accountRepo.FindByEmail(ctx, normalizeEmail(request.Email))
	if err != nil {
		return nil, dbError("find account", err)
	}
	// unknown email and wrong password are indistinguishable to the caller
	if account == nil {
		return nil, utils.ErrInvalidCredentials
	}
	if err := utils.ComparePasswords(account.PasswordHash, request.Password); err != nil {
		return nil, utils.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, utils.ErrAccountInactive
	}

	stamp := a.now().Unix()
	account.LastLoginAt = &stamp
	if err := a.accountRepo.Update(ctx, account); err != nil {
		return nil, dbError("stamp last login", err)
	}

	token, err := a.tokens.CreateToken(account.ID, string(account.Role))
	if err != nil {
		return nil, err
	}

	a.log.WithContext(ctx).Debugw("login completed", "user_id", account.ID, "took", a.now().Sub(startTime))

	return &response_models.AuthResponse{Token: token, User: toAccountResponse(account)}, nil
}

// CreateAccount registers a regular user. Admins are only provisioned through SeedAdmin.
func (a *AccountService) CreateAccount(request request_models.SignUpRequest, ctx context.Context) (*response_models.AuthResponse, error) {
	if err := validateStruct(request); err != nil {
		return nil, err
	}

	email := normalizeEmail(request.Email)
	existingAccount, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, dbError("find account", err)
	}
	if existingAccount != nil {
		return nil, utils.ErrEmailAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return nil, err
	}

	newAccount := &db_models.Account{
		Name:         strings.TrimSpace(request.Name),
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         db_models.RoleUser,
		IsActive:     true,
	}
	if err := a.accountRepo.InsertTx(newAccount, ctx); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, utils.ErrEmailAlreadyExists
		}
		return nil, dbError("insert account", err)
	}

	token, err := a.tokens.CreateToken(newAccount.ID, string(newAccount.Role))
	if err != nil {
		return nil, err
	}

	a.log.WithContext(ctx).Infow("account registered", "user_id", newAccount.ID)
	return &response_models.AuthResponse{Token: token, User: toAccountResponse(newAccount)}, nil
}

func (a *AccountService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	claims, err := a.tokens.ValidateToken(token)
	if err != nil {
		return nil, utils.ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, utils.ErrUnauthorized
	}

	account, err := a.accountRepo.FindById(ctx, userID)
	if err != nil {
		return nil, dbError("find account", err)
	}
	if account == nil {
		return nil, utils.ErrUnauthorized
	}
	if !account.IsActive {
		return nil, utils.ErrAccountInactive
	}

	// role comes from storage so a demoted account loses access before its token expires
	return &Principal{UserID: account.ID, Role: account.Role}, nil
}

func (a *AccountService) GetMe(ctx context.Context, userID uuid.UUID) (*response_models.AccountResponse, error) {
	account, err := a.mustFind(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := toAccountResponse(account)
	return &out, nil
}

func (a *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, req request_models.UpdateProfileRequest) (*response_models.AccountResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	account, err := a.mustFind(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = strings.TrimSpace(*req.Name)
	}
	if req.Avatar != nil {
		account.Avatar = strings.TrimSpace(*req.Avatar)
	}
	if err := a.accountRepo.Update(ctx, account); err != nil {
		return nil, dbError("update profile", err)
	}

	out := toAccountResponse(account)
	return &out, nil
}

func (a *AccountService) ChangePassword(ctx context.Context, userID uuid.UUID, req request_models.ChangePasswordRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	account, err := a.mustFind(ctx, userID)
	if err != nil {
		return err
	}
	if err := utils.ComparePasswords(account.PasswordHash, req.CurrentPassword); err != nil {
		return utils.ErrInvalidCredentials
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	account.PasswordHash = hashed
	if err := a.accountRepo.Update(ctx, account); err != nil {
		return dbError("change password", err)
	}

	a.log.WithContext(ctx).Infow("password changed", "user_id", userID)
	return nil
}

// SeedAdmin creates the admin account when the email is unused. An existing
// account with that email is left untouched.
func (a *AccountService) SeedAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	existing, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return dbError("find account", err)
	}
	if existing != nil {
		return nil
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &db_models.Account{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hashed,
		Role:         db_models.RoleAdmin,
		IsActive:     true,
	}
	if err := a.accountRepo.InsertTx(admin, ctx); err != nil && !errors.Is(err, repositories.ErrDuplicateKey) {
		return dbError("insert admin", err)
	}

	a.log.Infow("admin account seeded", "email", email)
	return nil
}

func (a *AccountService) mustFind(ctx context.Context, userID uuid.UUID) (*db_models.Account, error) {
	account, err := a.accountRepo.FindById(ctx, userID)
	if err != nil {
		return nil, dbError("find account", err)
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}
	return account, nil
}
