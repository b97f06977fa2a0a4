package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/logger"
	"github.com/Windi-Fikriyansyah/studio_be/internal/utils"
)

var errUnauthorized = apperr.New(apperr.CodeUnauthorized, "Silakan login terlebih dahulu")

func claimsOf(c *fiber.Ctx) (*utils.Claims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(*utils.Claims)
	return claims, ok
}

// AttachJWTLocals exposes userId and role to handlers and tags the request logger.
func AttachJWTLocals() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := claimsOf(c)
		if !ok {
			return errUnauthorized
		}

		uid := strings.TrimSpace(claims.UserID)
		if uid == "" {
			return errUnauthorized
		}

		c.Locals("userId", uid)
		c.Locals("role", strings.TrimSpace(claims.Role))

		ctx := c.UserContext()
		l := logger.FromContext(ctx, logger.Nop()).With().Str("user_id", uid).Logger()
		c.SetUserContext(logger.WithContext(ctx, l))
		return c.Next()
	}
}

// UserID returns the authenticated user id set by AttachJWTLocals.
func UserID(c *fiber.Ctx) string {
	uid, _ := c.Locals("userId").(string)
	return uid
}
