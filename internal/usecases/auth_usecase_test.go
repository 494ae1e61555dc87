package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"poolfund.backend/internal/domain/entities"
	domainerrors "poolfund.backend/internal/domain/errors"
	"poolfund.backend/internal/usecases"
	"poolfund.backend/pkg/jwt"
)

func newAuthUsecase(l *ledger) *usecases.AuthUsecase {
	jwtService := jwt.NewJWTService("test-secret", time.Hour, 24*time.Hour)
	return usecases.NewAuthUsecase(l.userRepo, jwtService)
}

func registerInput() *entities.RegisterInput {
	return &entities.RegisterInput{
		Email:    "a@example.com",
		Name:     "Investor A",
		Password: "s3cret-pass",
	}
}

func TestAuthRegister(t *testing.T) {
	l := newLedger(t)
	u := newAuthUsecase(l)

	resp, err := u.Register(context.Background(), registerInput())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, entities.UserRoleInvestor, resp.User.Role)
	assert.NotEqual(t, "s3cret-pass", resp.User.PasswordHash)
}

func TestAuthRegister_DuplicateEmail(t *testing.T) {
	l := newLedger(t)
	u := newAuthUsecase(l)
	ctx := context.Background()

	_, err := u.Register(ctx, registerInput())
	require.NoError(t, err)

	_, err = u.Register(ctx, registerInput())
	require.Error(t, err)
	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Status)
}

func TestAuthLogin(t *testing.T) {
	l := newLedger(t)
	u := newAuthUsecase(l)
	ctx := context.Background()

	_, err := u.Register(ctx, registerInput())
	require.NoError(t, err)

	resp, err := u.Login(ctx, &entities.LoginInput{Email: "a@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "a@example.com", resp.User.Email)
}

func TestAuthLogin_WrongPassword(t *testing.T) {
	l := newLedger(t)
	u := newAuthUsecase(l)
	ctx := context.Background()

	_, err := u.Register(ctx, registerInput())
	require.NoError(t, err)

	_, err = u.Login(ctx, &entities.LoginInput{Email: "a@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthLogin_UnknownEmail(t *testing.T) {
	l := newLedger(t)
	u := newAuthUsecase(l)

	_, err := u.Login(context.Background(), &entities.LoginInput{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthRefreshToken(t *testing.T) {
	l := newLedger(t)
	u := newAuthUsecase(l)
	ctx := context.Background()

	resp, err := u.Register(ctx, registerInput())
	require.NoError(t, err)

	pair, err := u.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestAuthRefreshToken_Invalid(t *testing.T) {
	l := newLedger(t)
	u := newAuthUsecase(l)

	_, err := u.RefreshToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}
