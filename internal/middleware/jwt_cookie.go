package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/utils"
)

const CookieName = "studio_token"

func JWTFromCookie(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies(CookieName)
		if tokenStr == "" {
			return apperr.New(apperr.CodeUnauthorized, "Silakan login terlebih dahulu")
		}

		token, _, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return apperr.New(apperr.CodeUnauthorized, "Sesi tidak valid, silakan login ulang")
		}

		c.Locals("user", token)
		return c.Next()
	}
}
