package controllers

import (
	"paletteapi/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// UserMiddleware resolves the token subject to a user account, creating the
// account on its first request.
func UserMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		repo := c.Get("__repo").(repository.Repository)
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return echo.ErrUnauthorized
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return echo.ErrUnauthorized
		}
		subject, _ := claims["sub"].(string)
		if subject == "" {
			log.Warn().Msg("token without subject")
			return echo.ErrUnauthorized
		}
		name, _ := claims["name"].(string)
		email, _ := claims["email"].(string)

		user, err := repo.GetOrCreateUser(c.Request().Context(), subject, name, email)
		if err != nil {
			return respondError(c, err)
		}
		c.Set("currentUser", user)
		return next(c)
	}
}
