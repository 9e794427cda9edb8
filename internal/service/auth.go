// Package service implements the catalog's business logic on top of the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stacksapp/stacks-server/internal/auth"
	"github.com/stacksapp/stacks-server/internal/domain"
	domainerrors "github.com/stacksapp/stacks-server/internal/errors"
	"github.com/stacksapp/stacks-server/internal/id"
	"github.com/stacksapp/stacks-server/internal/store"
	"github.com/stacksapp/stacks-server/internal/validation"
)

// AuthService handles account creation, login, and token resolution.
type AuthService struct {
	store        *store.Store
	tokenService *auth.TokenService
	validator    *validation.Validator
	logger       *slog.Logger

	// loginPassword is the single shared password accepted for every
	// account. Accounts carry no credentials of their own.
	loginPassword string
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	s *store.Store,
	tokenService *auth.TokenService,
	validator *validation.Validator,
	loginPassword string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:         s,
		tokenService:  tokenService,
		validator:     validator,
		loginPassword: loginPassword,
		logger:        logger,
	}
}

// CreateUserRequest contains new account data.
type CreateUserRequest struct {
	Username      string `json:"username" validate:"required,min=3"`
	FavoriteGenre string `json:"favoriteGenre" validate:"required"`
}

// LoginRequest contains login credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse contains the issued access token.
type TokenResponse struct {
	Token string `json:"value"`
}

// CreateUser creates a new account. Usernames are globally unique; a
// duplicate surfaces as a validation error carrying the store's message.
func (s *AuthService) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:            userID,
		Username:      req.Username,
		FavoriteGenre: req.FavoriteGenre,
	}

	if err := s.store.Users.Create(ctx, userID, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.ValidationWithDetails(err.Error(), req).WithCause(err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User created",
			"user_id", userID,
			"username", user.Username,
		)
	}

	return user, nil
}

// Login authenticates an account against the shared password and issues an
// access token. An unknown username and a wrong password are indistinguishable
// to the caller.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.Users.GetByIndex(ctx, "username", req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Validation("wrong credentials")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if req.Password != s.loginPassword {
		return nil, domainerrors.Validation("wrong credentials")
	}

	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User logged in",
			"user_id", user.ID,
			"username", user.Username,
		)
	}

	return &TokenResponse{Token: token}, nil
}

// Resolve turns a bearer token into the account it references.
//
// A malformed or unverifiable token is a token error. A valid token whose
// account no longer exists resolves to anonymous (nil, nil) rather than an
// error, matching the behavior for requests that carry no token at all.
func (s *AuthService) Resolve(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.tokenService.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, domainerrors.Token("invalid token").WithCause(err)
	}

	user, err := s.store.Users.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if s.logger != nil {
				s.logger.Warn("Token references missing account, treating as anonymous",
					"user_id", claims.UserID,
				)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	return user, nil
}
