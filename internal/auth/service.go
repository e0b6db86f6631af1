package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/haniSalm/FAST-E-Learning/internal/config"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"
	"github.com/haniSalm/FAST-E-Learning/internal/user"
	"github.com/haniSalm/FAST-E-Learning/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// bcrypt only looks at the first 72 bytes and rejects longer input.
const maxPasswordBytes = 72

type Service struct {
	authRepo   *Repository
	users      user.Repository
	tokens     *TokenManager
	validator  *validation.Validator
	metrics    *metrics.Metrics
	refreshTTL time.Duration
	bcryptCost int
}

func NewService(authRepo *Repository, users user.Repository, tokens *TokenManager, v *validation.Validator, cfg config.AuthConfig, m *metrics.Metrics) *Service {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	refreshTTL := time.Duration(cfg.RefreshTokenTTL) * time.Second
	if refreshTTL == 0 {
		refreshTTL = 24 * time.Hour
	}

	return &Service{
		authRepo:   authRepo,
		users:      users,
		tokens:     tokens,
		validator:  v,
		metrics:    m,
		refreshTTL: refreshTTL,
		bcryptCost: cost,
	}
}

// Signup registers a regular user account.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*user.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	u, err := s.CreateUser(ctx, req.Email, req.Password, false)
	if err != nil {
		return nil, err
	}

	s.metrics.Portal.RecordSignup(ctx)
	return u, nil
}

// CreateSuperuser validates like Signup and creates a staff superuser.
func (s *Service) CreateSuperuser(ctx context.Context, email, password string) (*user.User, error) {
	req := SignupRequest{Email: strings.TrimSpace(email), Password: password}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	return s.CreateUser(ctx, req.Email, req.Password, true)
}

// CreateUser hashes password and stores a new user; superuser also grants staff.
func (s *Service) CreateUser(ctx context.Context, email, password string, superuser bool) (*user.User, error) {
	if len(password) > maxPasswordBytes {
		return nil, validation.NewError("password", fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, user.ErrEmailTaken
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up %s: %w", email, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.users.Create(ctx, &user.User{
		Email:       email,
		Password:    string(hashedPassword),
		IsStaff:     superuser,
		IsSuperuser: superuser,
	})
}

// Login never tells a missing account apart from a wrong password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	pair, err := s.login(ctx, req)
	s.metrics.Portal.RecordLogin(ctx, err == nil)
	return pair, err
}

func (s *Service) login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(ctx, u)
}

// Refresh swaps a live refresh token for a new pair; the old token is revoked.
func (s *Service) Refresh(ctx context.Context, refresh string) (*TokenPair, error) {
	if refresh == "" {
		return nil, ErrInvalidRefreshToken
	}

	// Consuming is one DELETE, so concurrent refreshes of one token get a single winner.
	stored, err := s.authRepo.ConsumeRefreshToken(ctx, refresh)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	u, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	return s.generateTokenPair(ctx, u)
}

func (s *Service) Logout(ctx context.Context, refresh string) error {
	if refresh == "" {
		return validation.NewError("refresh", "refresh is a required field")
	}
	_, err := s.authRepo.DeleteRefreshToken(ctx, refresh)
	return err
}

// PurgeExpiredTokens drops refresh tokens past their expiry.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.authRepo.DeleteExpiredTokens(ctx)
}

func (s *Service) generateTokenPair(ctx context.Context, u *user.User) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	refresh, err := GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := s.authRepo.CreateRefreshToken(ctx, u.ID, refresh, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, err
	}

	return &TokenPair{
		Refresh: refresh,
		Access:  access,
	}, nil
}
