package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"thestore/internal/config"
	"thestore/internal/database"
	"thestore/internal/logging"
	"thestore/internal/models"
	"thestore/internal/repositories"
	"thestore/internal/server"
	"thestore/internal/services"
	"thestore/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:          "thestore",
		Short:        "Product catalog web application",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(v)
		},
	}

	flags := root.PersistentFlags()
	flags.String("port", "", "HTTP listen address (APP_PORT)")
	flags.String("db-driver", "", "database driver: sqlite, postgres or memory (DB_DRIVER)")
	flags.String("dsn", "", "database connection string (DATABASE_DSN)")
	flags.String("log-level", "", "log level (LOG_LEVEL)")
	bindFlag(v, "APP_PORT", root, "port")
	bindFlag(v, "DB_DRIVER", root, "db-driver")
	bindFlag(v, "DATABASE_DSN", root, "dsn")
	bindFlag(v, "LOG_LEVEL", root, "log-level")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(v)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the products table",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(v)
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert demo products",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSeed(v)
			},
		},
	)
	return root
}

// bindFlag makes an explicitly set flag win over the environment.
func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(name)); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", name, err))
	}
}

// application wires configuration, storage, events and services together.
type application struct {
	cfg     *config.Config
	log     *logrus.Logger
	db      *gorm.DB // nil for the memory driver
	mq      *rabbitmq.Client
	service *services.ProductService
}

func loadApplication(v *viper.Viper) (*application, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return newApplication(cfg, logger)
}

func newApplication(cfg *config.Config, logger *logrus.Logger) (*application, error) {
	a := &application{cfg: cfg, log: logger}

	var repo repositories.ProductRepository
	if cfg.DBDriver == config.DriverMemory {
		logger.Warn("Using in-memory product storage; data is lost on exit")
		repo = repositories.NewMemoryProductRepository()
	} else {
		db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, err
		}
		a.db = db
		repo = repositories.NewGORMProductRepository(db)
	}

	var events services.EventPublisher
	if cfg.EventsEnabled() {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.mq = client
		events = client
	} else {
		logger.Info("RABBITMQ_URL not set; product events are disabled")
	}

	a.service = services.NewProductService(repo, events, logger)
	return a, nil
}

func (a *application) httpApp() *fiber.App {
	var ping func() error
	if a.db != nil {
		db := a.db
		ping = func() error { return database.Ping(db) }
	}
	return server.NewApp(server.Options{
		Logger:         a.log,
		ProductService: a.service,
		Ping:           ping,
		EventsEnabled:  a.mq != nil,
	})
}

// Close releases the broker connection and the database pool.
func (a *application) Close() {
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			a.log.WithError(err).Warn("Error closing RabbitMQ client")
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.log.WithError(err).Warn("Error closing database")
		}
	}
}

func runServe(v *viper.Viper) error {
	a, err := loadApplication(v)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.SeedProducts {
		seedProducts(context.Background(), a.service, a.log)
	}

	app := a.httpApp()

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("Starting server on port %s", a.cfg.AppPort)
		errCh <- app.Listen(a.cfg.AppPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	a.log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		a.log.WithError(err).Error("Error during Fiber shutdown")
	}
	a.log.Info("Server gracefully stopped")
	return nil
}

func runMigrate(v *viper.Viper) error {
	// loadApplication migrates on open.
	a, err := loadApplication(v)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.db == nil {
		a.log.Info("Memory driver selected; nothing to migrate")
		return nil
	}
	a.log.Info("Database migrated")
	return nil
}

func runSeed(v *viper.Viper) error {
	a, err := loadApplication(v)
	if err != nil {
		return err
	}
	defer a.Close()

	if n := seedProducts(context.Background(), a.service, a.log); n == 0 {
		return fmt.Errorf("no products were seeded")
	}
	return nil
}

// seedProducts inserts a few demo products through the service so they get
// regular ids and manufactured dates. It returns how many were stored.
func seedProducts(ctx context.Context, service *services.ProductService, log *logrus.Logger) int {
	warranty := 24
	battery := 12.0
	rating := 4.5
	inputs := []models.ProductInput{
		{Name: "Laptop", Price: 1200.00, Brand: "Acme", ModelNumber: "LP-14", Color: "silver", Warranty: &warranty, BatteryLife: &battery, Rating: &rating},
		{Name: "Keyboard", Price: 75.00, Brand: "Clicky", ModelNumber: "KB-87", Color: "black"},
		{Name: "Mouse", Price: 25.00, Brand: "Clicky", ModelNumber: "MS-2", Color: "white"},
	}

	seeded := 0
	for _, in := range inputs {
		product, err := service.CreateProduct(ctx, in)
		if err != nil {
			log.WithError(err).Errorf("Error seeding product %s", in.Name)
			continue
		}
		seeded++
		log.WithField("product_id", product.ID).Infof("Seeded product: %s", product.Name)
	}
	return seeded
}
