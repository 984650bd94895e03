package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventmanagement/internal/domain"
	"eventmanagement/internal/validation"
)

type userService struct {
	userRepo       domain.UserRepository
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewUserService creates a UserService backed by userRepo.
func NewUserService(userRepo domain.UserRepository, logger *slog.Logger, timeout time.Duration) domain.UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		userRepo:       userRepo,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *userService) CreateUser(ctx context.Context, req domain.NewUserRequest) (*domain.User, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if errs := validation.Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(validation.Messages(errs), "; "))
	}

	user := domain.NewUser(req.Email, req.Name, s.now().UTC())
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.InfoContext(ctx, "created user", "user_id", user.ID)
	return user, nil
}
