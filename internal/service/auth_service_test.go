package service

import (
	"context"
	"fmt"
	"testing"

	"courtside/internal/auth"
	"courtside/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func usersWithPassword(t *testing.T, role string) *userRepoStub {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	return &userRepoStub{getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
		if username != "alice" {
			return nil, models.NewNotFoundError("User", username)
		}
		return &models.User{ID: 1, Username: "alice", Password: string(hash), Role: &models.Role{Name: role}}, nil
	}}
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name     string
		role     string
		username string
		password string
		wantCode string
	}{
		{name: "valid", role: models.RoleUser, username: " alice ", password: "hunter22"},
		{name: "wrong password", role: models.RoleUser, username: "alice", password: "hunter2", wantCode: models.CodeUnauthorized},
		{name: "unknown user", role: models.RoleUser, username: "mallory", password: "hunter22", wantCode: models.CodeUnauthorized},
		{name: "missing password", role: models.RoleUser, username: "alice", wantCode: models.CodeValidation},
		{name: "banned", role: models.RoleBanned, username: "alice", password: "hunter22", wantCode: models.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tokens := &tokenStub{}
			svc := NewAuthService(usersWithPassword(t, tt.role), tokens)

			user, pair, err := svc.Login(ctx, tt.username, tt.password)
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				assert.Empty(t, tokens.issued)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice", user.Username)
			assert.Equal(t, "access", pair.Access)
			assert.Equal(t, []uint{1}, tokens.issued)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tokens := &tokenStub{refresh: func(token string) (auth.Pair, *auth.Claims, error) {
		switch token {
		case "good":
			return auth.Pair{Access: "a2", Refresh: "r2"}, &auth.Claims{}, nil
		case "revoked":
			return auth.Pair{}, nil, fmt.Errorf("refresh: %w", auth.ErrRevoked)
		}
		return auth.Pair{}, nil, auth.ErrInvalidToken
	}}
	svc := NewAuthService(&userRepoStub{}, tokens)

	pair, err := svc.Refresh(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "r2", pair.Refresh)

	for _, token := range []string{"", "revoked", "garbage"} {
		_, err := svc.Refresh(ctx, token)
		assertCode(t, err, models.CodeUnauthorized)
	}
}

func TestAuthService_Logout(t *testing.T) {
	t.Parallel()
	claims := &auth.Claims{Kind: auth.KindRefresh}
	tokens := &tokenStub{parseFn: func(token string, kind auth.Kind) (*auth.Claims, error) {
		assert.Equal(t, auth.KindRefresh, kind)
		if token != "valid" {
			return nil, auth.ErrInvalidToken
		}
		return claims, nil
	}}
	svc := NewAuthService(&userRepoStub{}, tokens)

	require.NoError(t, svc.Logout(context.Background(), ""))
	require.NoError(t, svc.Logout(context.Background(), "expired"))
	assert.Empty(t, tokens.revoked)

	require.NoError(t, svc.Logout(context.Background(), "valid"))
	assert.Equal(t, []*auth.Claims{claims}, tokens.revoked)
}
