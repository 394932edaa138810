package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/pawhub/backend/internal/models"
	"github.com/pawhub/backend/internal/repositories"
)

// FirebaseAuthMiddleware accepts either a locally issued JWT or a Firebase ID
// token in the Authorization header. A Firebase token is verified against the
// project and mapped to the linked account; tokens with no linked account are
// rejected, since linking happens through the firebase-login endpoint.
func FirebaseAuthMiddleware(authClient *auth.Client, users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}
			tokenString := parts[1]

			if claims, err := ParseToken(tokenString); err == nil {
				c.Set("user", claims)
				return next(c)
			}

			if authClient == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			idToken, err := authClient.VerifyIDToken(context.Background(), tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			user, err := users.GetUserByFirebaseUID(idToken.UID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "No account is linked to this Firebase user")
			}

			c.Set("firebaseUID", idToken.UID)
			c.Set("user", &models.JwtCustomClaims{UserID: user.ID, Email: user.Email})
			return next(c)
		}
	}
}
