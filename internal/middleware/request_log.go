package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Windi-Fikriyansyah/studio_be/internal/logger"
	"github.com/Windi-Fikriyansyah/studio_be/internal/metrics"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger attaches a request-scoped logger to the user context and writes
// one line per request. It also feeds the request duration histogram.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		rid := c.Get(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(RequestIDHeader, rid)

		reqLog := log.With().Str("request_id", rid).Logger()
		c.SetUserContext(logger.WithContext(c.UserContext(), reqLog))

		err := c.Next()
		if err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		latency := time.Since(start)
		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Method(), route, strconv.Itoa(status)).
			Observe(latency.Seconds())

		ev := reqLog.Info()
		if status >= fiber.StatusInternalServerError {
			ev = reqLog.Error().Err(err)
		} else if status >= fiber.StatusBadRequest {
			ev = reqLog.Warn()
		}
		if uid := UserID(c); uid != "" {
			ev = ev.Str("user_id", uid)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", latency).
			Msg("request")
		return nil
	}
}
