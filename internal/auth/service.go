package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/internal/users"
	pkgauth "github.com/ceijey/greenguardian-backend/pkg/auth"
	"github.com/ceijey/greenguardian-backend/pkg/auth/session"
	"github.com/ceijey/greenguardian-backend/pkg/config"
	"github.com/ceijey/greenguardian-backend/pkg/db"
	"github.com/ceijey/greenguardian-backend/pkg/db/models"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
	pkgerrors "github.com/ceijey/greenguardian-backend/pkg/errors"
	"github.com/ceijey/greenguardian-backend/pkg/security"
)

// invalidCredentialsMessage is shared by every login failure so responses do
// not reveal whether the email exists.
const invalidCredentialsMessage = "invalid credentials"

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

// usersRepo is the slice of the users repository the auth flows touch.
type usersRepo interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// sessionManager is the slice of the Redis-backed session store we need.
type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// rateLimiter applies fixed-window limits on login and register attempts.
type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Service implements account registration and session lifecycle.
type Service interface {
	Register(ctx context.Context, req RegisterRequest, clientIP string) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest, clientIP string) (*AuthResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error)
	Logout(ctx context.Context, accessID string) error
}

// ServiceParams groups auth service dependencies.
type ServiceParams struct {
	Users     usersRepo
	Sessions  sessionManager
	Limiter   rateLimiter
	JWT       config.JWTConfig
	Password  config.PasswordConfig
	RateLimit config.AuthRateLimitConfig
	Now       func() time.Time
}

type service struct {
	users     usersRepo
	sessions  sessionManager
	limiter   rateLimiter
	jwt       config.JWTConfig
	password  config.PasswordConfig
	rateLimit config.AuthRateLimitConfig
	now       func() time.Time
}

// NewService builds the auth service.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session manager is required")
	}
	if params.Limiter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate limiter is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:     params.Users,
		sessions:  params.Sessions,
		limiter:   params.Limiter,
		jwt:       params.JWT,
		password:  params.Password,
		rateLimit: params.RateLimit,
		now:       now,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest, clientIP string) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name is required")
	}

	if err := s.allow(ctx, "auth:register:email:"+email, s.rateLimit.RegisterEmailLimit, s.rateLimit.RegisterWindow); err != nil {
		return nil, err
	}
	if clientIP != "" {
		if err := s.allow(ctx, "auth:register:ip:"+clientIP, s.rateLimit.RegisterIPLimit, s.rateLimit.RegisterWindow); err != nil {
			return nil, err
		}
	}

	hash, err := security.HashPassword(req.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		Role:         enums.UserRoleMember,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "users_email_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
	}

	return s.issueSession(ctx, user)
}

func (s *service) Login(ctx context.Context, req LoginRequest, clientIP string) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	if err := s.allow(ctx, "auth:login:email:"+email, s.rateLimit.LoginEmailLimit, s.rateLimit.LoginWindow); err != nil {
		return nil, err
	}
	if clientIP != "" {
		if err := s.allow(ctx, "auth:login:ip:"+clientIP, s.rateLimit.LoginIPLimit, s.rateLimit.LoginWindow); err != nil {
			return nil, err
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	return s.issueSession(ctx, user)
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	if strings.TrimSpace(req.AccessToken) == "" || strings.TrimSpace(req.RefreshToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "refresh requires the prior token pair")
	}

	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwt, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, refreshToken, err := s.sessions.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotating session")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	accessToken, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.ToDTO(user),
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id is required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	return nil
}

// issueSession mints a fresh access token with a new jti and stores the
// matching refresh token in Redis.
func (s *service) issueSession(ctx context.Context, user *models.User) (*AuthResponse, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing refresh session")
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.ToDTO(user),
	}, nil
}

func (s *service) allow(ctx context.Context, scope string, limit int, window time.Duration) error {
	if limit <= 0 || window <= 0 {
		return nil
	}
	allowed, _, err := s.limiter.FixedWindowAllow(ctx, scope, int64(limit), window)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking rate limit")
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%q is not a valid email", email))
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at most %d characters", maxPasswordLength))
	}
	return nil
}

var _ sessionManager = (*session.Manager)(nil)
var _ usersRepo = users.Repository(nil)
