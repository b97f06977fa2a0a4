package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/logger"
)

// Envelope maps err to a status and the JSON body every endpoint answers with.
func Envelope(err error) (int, fiber.Map) {
	if e := apperr.As(err); e != nil {
		body := fiber.Map{
			"success": false,
			"code":    e.Code(),
			"message": e.Message(),
		}
		if f := e.Fields(); len(f) > 0 {
			body["errors"] = f
		}
		return apperr.HTTPStatus(e.Code()), body
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fiber.Map{"success": false, "message": fe.Message}
	}
	return fiber.StatusInternalServerError, fiber.Map{
		"success": false,
		"code":    apperr.CodeInternal,
		"message": "Terjadi kesalahan server",
	}
}

func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := Envelope(err)
		if status >= fiber.StatusInternalServerError {
			l := logger.FromContext(c.UserContext(), log)
			l.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		}
		return c.Status(status).JSON(body)
	}
}
