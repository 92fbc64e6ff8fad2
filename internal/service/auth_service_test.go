package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LisaMariaKleiner/quizly/internal/dto"
	"github.com/LisaMariaKleiner/quizly/internal/repository"
	"github.com/LisaMariaKleiner/quizly/pkg/token"
)

func newAuthService(t *testing.T) AuthService {
	t.Helper()
	db := newTestDB(t)
	tokens, err := token.NewManager("test-secret", 15*time.Minute, 7*24*time.Hour, token.NewMemoryStore())
	require.NoError(t, err)
	return NewAuthService(repository.NewUserRepository(db), tokens)
}

func registerReq() dto.RegisterRequest {
	return dto.RegisterRequest{
		Username:          "lisa",
		Email:             "lisa@example.com",
		Password:          "sehr-geheim",
		ConfirmedPassword: "sehr-geheim",
	}
}

func TestAuthServiceRegister(t *testing.T) {
	svc := newAuthService(t)

	t.Run("Success", func(t *testing.T) {
		require.NoError(t, svc.Register(registerReq()))
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		err := svc.Register(registerReq())
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "username", valErr.Field)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		req := registerReq()
		req.Username = "lisa2"
		err := svc.Register(req)
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "email", valErr.Field)
	})
}

func TestAuthServiceLogin(t *testing.T) {
	svc := newAuthService(t)
	require.NoError(t, svc.Register(registerReq()))

	t.Run("Success", func(t *testing.T) {
		user, pair, err := svc.Login(dto.LoginRequest{Username: "lisa", Password: "sehr-geheim"})
		require.NoError(t, err)
		assert.Equal(t, "lisa", user.Username)
		assert.Equal(t, "lisa@example.com", user.Email)
		assert.NotEmpty(t, pair.Access)
		assert.NotEmpty(t, pair.Refresh)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, _, err := svc.Login(dto.LoginRequest{Username: "lisa", Password: "falsch"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, _, err := svc.Login(dto.LoginRequest{Username: "niemand", Password: "egal"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthServiceRefreshAndLogout(t *testing.T) {
	svc := newAuthService(t)
	require.NoError(t, svc.Register(registerReq()))
	_, pair, err := svc.Login(dto.LoginRequest{Username: "lisa", Password: "sehr-geheim"})
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("RefreshMintsAccessToken", func(t *testing.T) {
		access, err := svc.Refresh(ctx, pair.Refresh)
		require.NoError(t, err)
		assert.NotEmpty(t, access)
	})

	t.Run("RefreshRejectsAccessToken", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.Access)
		assert.ErrorIs(t, err, token.ErrWrongUsage)
	})

	t.Run("LogoutRevokesRefreshToken", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, pair.Refresh))
		_, err := svc.Refresh(ctx, pair.Refresh)
		assert.ErrorIs(t, err, token.ErrRevokedToken)
	})

	t.Run("LogoutWithoutTokenIsNoop", func(t *testing.T) {
		assert.NoError(t, svc.Logout(ctx, ""))
	})

	t.Run("LogoutWithGarbageTokenIsNoop", func(t *testing.T) {
		assert.NoError(t, svc.Logout(ctx, "not-a-token"))
	})
}
