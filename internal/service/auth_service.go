package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flightbooking/internal/auth"
	apperrors "flightbooking/internal/errors"
	"flightbooking/internal/model"
	"flightbooking/internal/repository"
)

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	// Authenticate turns verified token claims into the current principal.
	Authenticate(ctx context.Context, claims *auth.Claims) (*auth.Principal, error)
	CurrentUser(ctx context.Context, id uint) (*model.User, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	hasher     auth.PasswordHasher
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, hasher auth.PasswordHasher) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		hasher:     hasher,
	}
}

// Register creates a regular user with a hashed password.
func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	existing, err = s.userRepo.FindByName(ctx, name)
	if err == nil && existing != nil {
		return nil, apperrors.ErrNameTaken
	}
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("check name: %w", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if isNotFound(err) {
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, apperrors.ErrAccountInactive
	}

	token, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("generate access token: %w", err)
	}
	return token, user, nil
}

func (s *authService) Authenticate(ctx context.Context, claims *auth.Claims) (*auth.Principal, error) {
	if claims.ID != "" {
		revoked, err := s.tokenStore.IsAccessTokenBlacklisted(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check token: %w", err)
		}
		if revoked {
			return nil, apperrors.ErrTokenRevoked
		}
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("load principal: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountInactive
	}
	return auth.NewPrincipal(user, claims.ID), nil
}

func (s *authService) CurrentUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return user, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.tokenStore.BlacklistAccessToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}
