package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/cryptoestate/internal/common"
	"github.com/dmitrijs2005/cryptoestate/internal/server/auth"
	"github.com/dmitrijs2005/cryptoestate/internal/server/config"
	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
	"github.com/dmitrijs2005/cryptoestate/internal/server/ratelimit"
	"github.com/dmitrijs2005/cryptoestate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cryptoestate/internal/server/validation"
)

// UserService registers accounts, logs them in and resolves bearer tokens
// back to the stored user.
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	limiter               ratelimit.Limiter
}

// NewUserService constructs a UserService. A nil limiter disables login
// throttling.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, limiter ratelimit.Limiter) *UserService {
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}
	return &UserService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		limiter:               limiter,
	}
}

// Register creates an active account. Capability defaults to BUYER and
// cannot be changed later. Duplicate email or wallet yields ErrorConflict.
func (s *UserService) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.WalletAddress = strings.TrimSpace(in.WalletAddress)
	if in.Capability == "" {
		in.Capability = models.CapabilityBuyer
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", common.ErrorConflict)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, domainError(err)
	}
	if _, err := repo.GetByWallet(ctx, in.WalletAddress); err == nil {
		return nil, fmt.Errorf("%w: wallet address already registered", common.ErrorConflict)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, domainError(err)
	}

	u, err := repo.Create(ctx, &models.User{
		Email:         in.Email,
		WalletAddress: in.WalletAddress,
		FullName:      in.FullName,
		PasswordHash:  hash,
		IsActive:      true,
		Capability:    in.Capability,
	})
	if err != nil {
		return nil, domainError(err)
	}
	return u, nil
}

// Login checks the credentials and returns a signed session token.
// Unknown email, wrong password and inactive accounts are all reported as
// ErrorUnauthenticated.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)

	if err := s.limiter.Allow(ctx, email); err != nil {
		return "", err
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = s.limiter.Fail(ctx, email)
			return "", fmt.Errorf("%w: incorrect email or password", common.ErrorUnauthenticated)
		}
		return "", domainError(err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) || !user.IsActive {
		_ = s.limiter.Fail(ctx, email)
		return "", fmt.Errorf("%w: incorrect email or password", common.ErrorUnauthenticated)
	}
	_ = s.limiter.Reset(ctx, email)

	token, err := auth.GenerateToken(auth.Subject{Email: user.Email, Capability: user.Capability}, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", domainError(err)
	}
	return token, nil
}

// Resolve maps a bearer token to the current stored user. The capability
// comes from the stored row, never from the token.
func (s *UserService) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUnauthenticated, err)
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, claims.Email())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", common.ErrorUnauthenticated)
		}
		return nil, domainError(err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user is inactive", common.ErrorUnauthenticated)
	}
	return user, nil
}
