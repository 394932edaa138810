package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pawhub/backend/internal/models"
	"github.com/pawhub/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, userID uint, email string) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("supersecretjwtkey"))
	require.NoError(t, err)
	return token
}

func invokeWithBearer(t *testing.T, mw echo.MiddlewareFunc, token string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c
}

func TestFirebaseAuthMiddlewareAcceptsLocalJWT(t *testing.T) {
	// A valid locally issued token never reaches the Firebase verifier, so a
	// nil client must not be touched.
	mw := FirebaseAuthMiddleware(nil, repositories.NewPostgresUserRepository(nil))

	rec, c := invokeWithBearer(t, mw, signTestToken(t, 42, "a@b.pl"))

	assert.Equal(t, http.StatusOK, rec.Code)
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	require.True(t, ok)
	assert.Equal(t, uint(42), claims.UserID)
}

func TestFirebaseAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	mw := FirebaseAuthMiddleware(nil, repositories.NewPostgresUserRepository(nil))

	rec, _ := invokeWithBearer(t, mw, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFirebaseAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	mw := FirebaseAuthMiddleware(nil, repositories.NewPostgresUserRepository(nil))

	rec, _ := invokeWithBearer(t, mw, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
