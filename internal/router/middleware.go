package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"flightbooking/internal/auth"
	"flightbooking/internal/errors"
	"flightbooking/internal/model"
	"flightbooking/internal/service"
)

// Authenticate resolves the verified token claims into the current
// principal. Revoked tokens and deleted or deactivated accounts are refused.
func Authenticate(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(auth.ClaimsKey).(*auth.Claims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Message: "invalid token",
					Code:    "UNAUTHORIZED",
				})
			}
			p, err := authService.Authenticate(c.Request().Context(), claims)
			if err != nil {
				httpErr := errors.MapErrorToHTTP(err)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			c.Set(auth.PrincipalKey, p)
			return next(c)
		}
	}
}

// RequireRoles lets the request through only for principals holding one of roles.
func RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := c.Get(auth.PrincipalKey).(*auth.Principal)
			if !ok || !p.HasRole(roles...) {
				return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
					Message: errors.ErrForbidden.Error(),
					Code:    "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}
