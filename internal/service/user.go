package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"filevault/internal/auth"
	"filevault/internal/config"
	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
	"filevault/internal/domain/services"
)

type userService struct {
	userRepo repositories.UserRepository
	issuer   auth.TokenIssuer
	ttl      time.Duration
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	issuer auth.TokenIssuer,
	ttl time.Duration,
	logger *slog.Logger,
) services.UserService {
	return &userService{
		userRepo: userRepo,
		issuer:   issuer,
		ttl:      ttl,
		logger:   logger,
	}
}

// Register creates a new user and issues a session for it
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*services.Session, error) {
	if err := s.validateRegisterRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		"id", user.ID,
		"username", user.Username,
	)

	return s.openSession(user)
}

// Login verifies credentials and issues a session
func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*services.Session, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Username, validation.Required),
		validation.Field(&req.Password, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	s.logger.Info("user logged in", "id", user.ID, "username", user.Username)

	return s.openSession(user)
}

// ResolveOwner maps an authenticated identity to its user row. Every
// protected operation starts here; a credential naming no known user is
// an authentication failure, not a lookup miss.
func (s *userService) ResolveOwner(ctx context.Context, identity string) (*models.User, error) {
	return resolveOwner(ctx, s.userRepo, identity)
}

// resolveOwner is shared by every service: a credential naming no known
// user is an authentication failure, not a lookup miss.
func resolveOwner(ctx context.Context, userRepo repositories.UserRepository, identity string) (*models.User, error) {
	if identity == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := userRepo.GetByEmail(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}

	return user, nil
}

func (s *userService) openSession(user *models.User) (*services.Session, error) {
	token, err := s.issuer.IssueToken(user.Email)
	if err != nil {
		return nil, err
	}

	return &services.Session{
		Token:     token,
		User:      user,
		ExpiresAt: time.Now().Add(s.ttl),
	}, nil
}

// validateRegisterRequest validates a registration request
func (s *userService) validateRegisterRequest(req *models.RegisterRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Username,
			validation.Required,
			validation.Length(1, config.MaxUsernameLength),
		),
		validation.Field(&req.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(&req.Password,
			validation.Required,
			validation.Length(config.MinPasswordLength, 0),
		),
	)
}
