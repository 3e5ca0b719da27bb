package service

import (
	"context"
	"errors"
	"go-auth-api/ids"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"
	"strings"
	"time"
)

// IUserService is the account surface used by the user handler.
type IUserService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.UserPublic, error)
}

// UserService handles account creation.
type UserService struct {
	userRepo  repository.IUserRepository
	passwords Hasher
	now       func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.IUserRepository, passwords Hasher) *UserService {
	return &UserService{userRepo: userRepo, passwords: passwords, now: time.Now}
}

// Register creates an active account with the default role.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.UserPublic, error) {
	hashed, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	id, err := ids.NewULID(s.now())
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:             id,
		FullName:       strings.TrimSpace(req.FullName),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		HashedPassword: hashed,
		Role:           model.RoleUser,
		IsActive:       true,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("User registered")
	return user.Public(), nil
}
