package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// HomeHandler serves the landing page and the health endpoint.
type HomeHandler struct {
	ping          func() error
	eventsEnabled bool
	log           *logrus.Logger
}

// NewHomeHandler creates a new HomeHandler. ping checks the database and may be
// nil when products are kept in memory.
func NewHomeHandler(ping func() error, eventsEnabled bool, logger *logrus.Logger) *HomeHandler {
	return &HomeHandler{
		ping:          ping,
		eventsEnabled: eventsEnabled,
		log:           logger,
	}
}

// RegisterRoutes registers the landing page and health routes.
func (h *HomeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleHome)
	router.Get("/health", h.HandleHealth)
}

// HandleHome renders the landing page.
func (h *HomeHandler) HandleHome(c *fiber.Ctx) error {
	return c.Render(viewHome, homeView{Title: "Home"})
}

// HandleHealth reports whether the database answers.
func (h *HomeHandler) HandleHealth(c *fiber.Ctx) error {
	status := fiber.StatusOK
	body := fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": "connected",
		"events":   "disabled",
	}
	if h.eventsEnabled {
		body["events"] = "enabled"
	}

	if h.ping == nil {
		body["database"] = "memory"
	} else if err := h.ping(); err != nil {
		h.log.WithError(err).Error("Health check: database ping failed")
		status = fiber.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database"] = "unreachable"
	}

	return c.Status(status).JSON(body)
}
