package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/shopkart-labs/shopkart-backend/pkg/auth"
	"github.com/shopkart-labs/shopkart-backend/pkg/config"
	"github.com/shopkart-labs/shopkart-backend/pkg/db"
	"github.com/shopkart-labs/shopkart-backend/pkg/db/models"
	pkgerrors "github.com/shopkart-labs/shopkart-backend/pkg/errors"
	"github.com/shopkart-labs/shopkart-backend/pkg/logger"
	"github.com/shopkart-labs/shopkart-backend/pkg/security"
)

const activationTokenTTL = 24 * time.Hour

type userStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type tokenStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	ActivationTokenKey(token string) string
}

type sessionRegistry interface {
	Register(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
	NewAccessID() string
}

type activationMailer interface {
	SendActivationEmail(ctx context.Context, to, name, link string) error
}

// Service exposes account lifecycle operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Activate(ctx context.Context, token string) error
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, accessID string) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type service struct {
	repo     userStore
	tokens   tokenStore
	sessions sessionRegistry
	mailer   activationMailer
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	baseURL  string
	logger   *logger.Logger
	now      func() time.Time
}

// NewService builds the accounts service backed by the provided stack.
func NewService(
	repo userStore,
	tokens tokenStore,
	sessions sessionRegistry,
	mailer activationMailer,
	jwtCfg config.JWTConfig,
	pwCfg config.PasswordConfig,
	baseURL string,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token store required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session registry required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tokens:   tokens,
		sessions: sessions,
		mailer:   mailer,
		jwtCfg:   jwtCfg,
		pwCfg:    pwCfg,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logg,
		now:      time.Now,
	}, nil
}

// Register creates an unverified account and issues an activation token.
// The activation email is best-effort: a delivery failure is logged and the
// registration still succeeds, since the token stays valid in the store.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        input.Phone,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	token := uuid.NewString()
	if err := s.tokens.Set(ctx, s.tokens.ActivationTokenKey(token), created.ID.String(), activationTokenTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store activation token")
	}

	if s.mailer != nil {
		link := fmt.Sprintf("%s/api/v1/auth/activate/%s", s.baseURL, token)
		if err := s.mailer.SendActivationEmail(ctx, created.Email, created.FullName(), link); err != nil {
			s.logger.Error(s.logger.WithUserID(ctx, created.ID.String()), "send activation email", err)
		}
	}

	return created, nil
}

// Activate consumes an activation token and marks the account verified.
// Activation is idempotent: a token for an already-verified user succeeds.
func (s *service) Activate(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "activation token is required")
	}

	key := s.tokens.ActivationTokenKey(token)
	raw, err := s.tokens.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "invalid or expired activation token")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load activation token")
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse activation token payload")
	}

	if err := s.repo.MarkEmailVerified(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark email verified")
	}

	if err := s.tokens.Del(ctx, key); err != nil {
		s.logger.Error(ctx, "delete activation token", err)
	}
	return nil
}

// Login verifies credentials and mints an access token with a live session.
func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	if !user.IsEmailVerified {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "email address is not verified")
	}

	now := s.now()
	accessID := s.sessions.NewAccessID()
	token, err := auth.MintAccessToken(s.jwtCfg, now, auth.AccessTokenPayload{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		JTI:     accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	if err := s.sessions.Register(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register session")
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Error(s.logger.WithUserID(ctx, user.ID.String()), "record last login", err)
	}

	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   now.Add(s.jwtCfg.AccessTokenTTL()),
		User:        user,
	}, nil
}

// Logout revokes the live session tied to the access token.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id is required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// GetUser loads an account by id.
func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
