package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"courtside/internal/cache"
	"courtside/internal/models"
	"courtside/internal/repository"
)

const maxIntroductionLen = 1024

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Me returns the authenticated user's own account.
func (s *UserService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Profile returns another user's public profile. Hidden profiles are only
// visible to their owner.
func (s *UserService) Profile(ctx context.Context, userID uint, viewer *uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, "user", cache.UserKey(userID), &user, cache.UserTTL, func() error {
		u, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		user = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !user.IsProfileVisible && (viewer == nil || *viewer != userID) {
		return nil, models.NewNotFoundError("User", userID)
	}
	return &user, nil
}

func (s *UserService) SetProfileVisibility(ctx context.Context, userID uint, visible bool) (*models.User, error) {
	if err := s.users.UpdateProfileVisibility(ctx, userID, visible); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *UserService) SetIntroduction(ctx context.Context, userID uint, introduction string) (*models.User, error) {
	introduction = strings.TrimSpace(introduction)
	if utf8.RuneCountInString(introduction) > maxIntroductionLen {
		return nil, models.NewValidationError("Introduction too long (max 1024 characters)")
	}
	if err := s.users.UpdateIntroduction(ctx, userID, introduction); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// IsModerator reports whether the user may manage other users' content.
func (s *UserService) IsModerator(ctx context.Context, userID uint) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsModerator(), nil
}
