package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"task-tracker.com/task-tracker/internal/auth"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

const claimsKey = "claims"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// Authenticate requires a valid bearer token and stores its claims on the
// request context.
func Authenticate(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization header required")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := a.Authenticate(c.Request().Context(), parts[1])
			if errors.Is(err, apperrors.ErrAuth) {
				return echo.NewHTTPError(apperrors.StatusCode(err), apperrors.Message(err))
			}
			if err != nil {
				log.Printf("authenticate request: %v", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

func RequireRole(roles ...constants.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := Claims(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(apperrors.ErrForbidden.StatusCode, apperrors.ErrForbidden.Message)
		}
	}
}

func Claims(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

func CurrentUser(c echo.Context) (model.User, bool) {
	claims, ok := Claims(c)
	if !ok {
		return model.User{}, false
	}
	return claims.User(), true
}
