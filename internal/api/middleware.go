package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"healthcare-agent/internal/helper"
)

// requestLogger tags each request with a uuid and logs method, path, status
// and latency.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID, err := helper.GenerateUUID()
		if err != nil {
			requestID = "unknown"
		}
		c.Locals("request_id", requestID)

		start := time.Now()
		err = c.Next()

		log.Info().
			Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}
