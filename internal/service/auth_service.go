package service

import (
	"context"
	"errors"
	"strings"

	"courtside/internal/auth"
	"courtside/internal/models"
	"courtside/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer is the part of auth.Manager the auth service needs.
type TokenIssuer interface {
	Issue(userID uint, username string) (auth.Pair, error)
	Parse(ctx context.Context, token string, kind auth.Kind) (*auth.Claims, error)
	Refresh(ctx context.Context, refreshToken string) (auth.Pair, *auth.Claims, error)
	Revoke(ctx context.Context, claims *auth.Claims) error
}

type AuthService struct {
	users  repository.UserRepository
	tokens TokenIssuer
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

var errBadCredentials = models.NewUnauthorizedError("Invalid username or password")

// Login checks a password login and issues a session. Banned and deactivated
// accounts cannot log in.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, auth.Pair, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, auth.Pair{}, models.NewValidationError("Username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			return nil, auth.Pair{}, errBadCredentials
		}
		return nil, auth.Pair{}, err
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, auth.Pair{}, errBadCredentials
	}
	if user.Role != nil && (user.Role.Name == models.RoleBanned || user.Role.Name == models.RoleDeactivated) {
		return nil, auth.Pair{}, models.NewForbiddenError("Account is not active")
	}

	pair, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, auth.Pair{}, models.NewInternalError(err)
	}
	return user, pair, nil
}

// Refresh rotates a refresh token into a new session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (auth.Pair, error) {
	if refreshToken == "" {
		return auth.Pair{}, models.NewUnauthorizedError("Refresh token required")
	}
	pair, _, err := s.tokens.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrRevoked) {
			return auth.Pair{}, models.NewUnauthorizedError("Invalid or expired refresh token")
		}
		return auth.Pair{}, models.NewInternalError(err)
	}
	return pair, nil
}

// Logout revokes the refresh token. An invalid or missing token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.Parse(ctx, refreshToken, auth.KindRefresh)
	if err != nil {
		return nil
	}
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// HashPassword returns the bcrypt hash stored for password logins.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
