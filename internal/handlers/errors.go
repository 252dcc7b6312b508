package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

// ErrorHandler renders the error page for errors returned by handlers. Server
// errors are logged with the request id; the message shown to the user stays
// generic.
func ErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Something went wrong while processing your request."

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		}

		entry := logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.Locals("requestid"),
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     code,
		})
		if code >= fiber.StatusInternalServerError {
			entry.Error("Request failed")
		} else {
			entry.Debug("Request rejected")
		}

		renderErr := c.Status(code).Render(viewError, errorView{
			Title:   utils.StatusMessage(code),
			Status:  code,
			Message: message,
		})
		if renderErr != nil {
			logger.WithError(renderErr).Error("Failed to render error page")
			return c.Status(code).SendString(message)
		}
		return nil
	}
}
