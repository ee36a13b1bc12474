package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/ticket-mgt/ticket-api/pkg/util"
)

// parseBody decodes a JSON body regardless of Content-Type. An empty body
// leaves out untouched so that field validation reports what is missing.
func parseBody(c *fiber.Ctx, out any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := c.App().Config().JSONDecoder(body, out); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	return nil
}
