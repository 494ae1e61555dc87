package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poolfund.backend/internal/domain/entities"
	"poolfund.backend/pkg/jwt"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *jwt.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtService := jwt.NewJWTService("test-secret", time.Hour, 24*time.Hour)

	r := gin.New()
	r.GET("/protected", AuthMiddleware(jwtService), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		email, _ := GetUserEmail(c)
		role, _ := GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{
			"userId": userID.String(),
			"email":  email,
			"role":   role,
		})
	})
	return r, jwtService
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	r, jwtService := newAuthRouter(t)

	userID := uuid.New()
	pair, err := jwtService.GenerateTokenPair(userID, "a@b.c", string(entities.UserRoleInvestor))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthorizationHeader, BearerPrefix+pair.AccessToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), userID.String())
	assert.Contains(t, rec.Body.String(), "a@b.c")
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authorization header is required")
}

func TestAuthMiddleware_BadFormat(t *testing.T) {
	r, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthorizationHeader, "Token abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid authorization format")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthorizationHeader, BearerPrefix+"not-a-jwt")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token")
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	expiredService := jwt.NewJWTService("test-secret", -time.Minute, 24*time.Hour)
	pair, err := expiredService.GenerateTokenPair(uuid.New(), "a@b.c", string(entities.UserRoleInvestor))
	require.NoError(t, err)

	r := gin.New()
	r.GET("/protected", AuthMiddleware(expiredService), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthorizationHeader, BearerPrefix+pair.AccessToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token has expired")
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtService := jwt.NewJWTService("test-secret", time.Hour, 24*time.Hour)

	r := gin.New()
	r.POST("/admin", AuthMiddleware(jwtService), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	adminPair, err := jwtService.GenerateTokenPair(uuid.New(), "admin@b.c", string(entities.UserRoleAdmin))
	require.NoError(t, err)
	investorPair, err := jwtService.GenerateTokenPair(uuid.New(), "inv@b.c", string(entities.UserRoleInvestor))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set(AuthorizationHeader, BearerPrefix+adminPair.AccessToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set(AuthorizationHeader, BearerPrefix+investorPair.AccessToken)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Insufficient permissions")
}

func TestRequireRole_NoRoleInContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireRole("ADMIN"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "User role not found")
}

func TestIsAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, IsAdmin(c))

	c.Set(UserRoleKey, string(entities.UserRoleInvestor))
	assert.False(t, IsAdmin(c))

	c.Set(UserRoleKey, string(entities.UserRoleAdmin))
	assert.True(t, IsAdmin(c))
}

func TestContextGetters_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetUserID(c)
	assert.False(t, ok)
	_, ok = GetUserEmail(c)
	assert.False(t, ok)
	_, ok = GetUserRole(c)
	assert.False(t, ok)
}
