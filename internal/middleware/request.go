package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDLocal is the fiber.Ctx local holding the request id.
const RequestIDLocal = "requestid"

// RequestID tags every request with a UUID, echoed in the X-Request-ID header
// and stored under RequestIDLocal. An incoming X-Request-ID is kept.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		ContextKey: RequestIDLocal,
		Generator:  uuid.NewString,
	})
}

// AccessLog writes one line per request into log at info level.
func AccessLog(log *logrus.Logger) fiber.Handler {
	return logger.New(logger.Config{
		Format:        "${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		Output:        accessLogWriter{log: log},
		DisableColors: true,
	})
}

// accessLogWriter turns each formatted access line into a logrus entry.
type accessLogWriter struct {
	log *logrus.Logger
}

func (w accessLogWriter) Write(p []byte) (int, error) {
	w.log.WithField("component", "http").Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
