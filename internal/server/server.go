package server

import (
	"net/http"

	"thestore/internal/handlers"
	"thestore/internal/middleware"
	"thestore/internal/services"
	"thestore/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/sirupsen/logrus"
)

// Options are the collaborators the HTTP app is built from.
type Options struct {
	Logger         *logrus.Logger
	ProductService *services.ProductService
	// Ping checks the database for /health; nil when products live in memory.
	Ping          func() error
	EventsEnabled bool
}

// NewApp builds the Fiber app with templates, middleware and all routes.
func NewApp(opts Options) *fiber.App {
	engine := html.NewFileSystem(web.Templates(), ".html")
	engine.AddFuncMap(handlers.TemplateFuncs())

	app := fiber.New(fiber.Config{
		AppName:               "thestore",
		Views:                 engine,
		ViewsLayout:           "layouts/main",
		ErrorHandler:          handlers.ErrorHandler(opts.Logger),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog(opts.Logger))

	app.Use("/static", filesystem.New(filesystem.Config{
		Root: http.FS(web.Static()),
	}))

	handlers.NewHomeHandler(opts.Ping, opts.EventsEnabled, opts.Logger).RegisterRoutes(app)
	handlers.NewProductHandler(opts.ProductService, opts.Logger).RegisterRoutes(app)

	return app
}
