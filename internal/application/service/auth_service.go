package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mbet-dev/fund-tracker/internal/application/port"
	"github.com/mbet-dev/fund-tracker/internal/domain/entity"
	"github.com/mbet-dev/fund-tracker/pkg/auth"
	"github.com/mbet-dev/fund-tracker/pkg/utils"
)

// SignInResult is an established session: the bearer token plus the
// principal it resolves to.
type SignInResult struct {
	Token     string
	ExpiresAt time.Time
	Principal entity.Principal
}

// AuthService owns the session lifecycle: established on sign-in, resolved
// per call, torn down on sign-out. There is no ambient session state.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*entity.User, error)
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	GetSession(ctx context.Context, token string) (*entity.Principal, error)
	SignOut(ctx context.Context, token string) error
}

type authServiceImpl struct {
	userRepo    port.UserRepository
	sessionRepo port.SessionRepository
	txManager   port.TransactionManager
	tokens      *auth.TokenManager
	logger      Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo port.UserRepository,
	sessionRepo port.SessionRepository,
	txManager port.TransactionManager,
	tokens *auth.TokenManager,
	logger Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		txManager:   txManager,
		tokens:      tokens,
		logger:      logger,
	}
}

// SignUp registers a new non-admin user.
func (s *authServiceImpl) SignUp(ctx context.Context, email, password string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := utils.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", entity.ErrValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.userRepo.GetByEmail(txCtx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: email already registered", entity.ErrConflict)
		}
		return s.userRepo.Create(txCtx, user)
	})
	if err != nil {
		s.logger.Error("Failed to sign up", "error", err, "email", email)
		return nil, err
	}

	s.logger.Info("User signed up", "user_id", user.ID, "email", email)
	return user, nil
}

// SignIn verifies the credentials and establishes a session.
func (s *authServiceImpl) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to look up user", "error", err, "email", email)
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrInvalidCredentials
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, entity.ErrInvalidCredentials
	}

	token, tokenID, expiresAt, err := s.tokens.Generate(user.ID, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	session := &entity.Session{
		TokenID:   tokenID,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		s.logger.Error("Failed to record session", "error", err, "user_id", user.ID)
		return nil, err
	}

	s.logger.Info("User signed in", "user_id", user.ID)
	return &SignInResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Principal: entity.Principal{UserID: user.ID, Email: user.Email, IsAdmin: user.IsAdmin},
	}, nil
}

// GetSession resolves a bearer token to its principal. A revoked or
// unknown session fails even when the token itself is still valid.
func (s *authServiceImpl) GetSession(ctx context.Context, token string) (*entity.Principal, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrUnauthorized, err)
	}

	session, err := s.sessionRepo.GetByTokenID(ctx, claims.Id)
	if err != nil {
		return nil, err
	}
	if session == nil || session.Revoked() || time.Now().After(session.ExpiresAt) {
		return nil, fmt.Errorf("%w: session is no longer active", entity.ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed session subject", entity.ErrUnauthorized)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: session subject no longer exists", entity.ErrUnauthorized)
	}

	return &entity.Principal{UserID: user.ID, Email: user.Email, IsAdmin: user.IsAdmin}, nil
}

// SignOut tears the session down.
func (s *authServiceImpl) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrUnauthorized, err)
	}

	if err := s.sessionRepo.Revoke(ctx, claims.Id, time.Now()); err != nil {
		s.logger.Error("Failed to revoke session", "error", err, "token_id", claims.Id)
		return err
	}

	s.logger.Info("User signed out", "token_id", claims.Id)
	return nil
}
