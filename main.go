package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"access-gateway-api/config"
	"access-gateway-api/db"
	"access-gateway-api/events"
	"access-gateway-api/keyword"
	"access-gateway-api/metrics"
	"access-gateway-api/pipeline"
	"access-gateway-api/provision"
	"access-gateway-api/relay"
	"access-gateway-api/rest"
)

func main() {
	root := &cobra.Command{
		Use:           "access-gateway",
		Short:         "Webhook gateway that provisions content access from payment messages",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run migrations and start the HTTP server",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending database migrations and exit",
			RunE:  runMigrate,
		},
	)

	if err := root.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func connect(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := db.ConnectWithConfig(cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Connected to database successfully")

	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := db.GetCurrentVersion(ctx)
	if err != nil {
		log.Printf("Warning: Failed to get current schema version: %v", err)
	} else {
		log.Printf("Database schema version: %d", version)
	}

	return cfg, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if _, err := connect(cmd.Context()); err != nil {
		return err
	}
	return db.Close()
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	store := db.Default()
	m := metrics.New()

	var publisher events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		nats, err := events.ConnectNATS(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return err
		}
		defer nats.Close()
		publisher = nats
		log.Printf("Publishing provisioning events on %s", cfg.NATSSubject)
	}

	settings := pipeline.NewSettingsLoader(store, cfg.SettingsTTL)
	processor := pipeline.New(pipeline.Deps{
		Messages:    store,
		Settings:    settings,
		Provisioner: provision.New(store, provision.WithPublisher(publisher), provision.WithMetrics(m)),
		Forwarder:   relay.NewForwarder(cfg.Relay),
		Gate:        keyword.NewGate(cfg.DefaultKeyword),
		Metrics:     m,
	})

	app := fiber.New(fiber.Config{
		AppName:      "access-gateway-api",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Telegram-Bot-Api-Secret-Token",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	rest.Init(app, rest.Deps{
		Store:         store,
		Processor:     processor,
		Settings:      settings,
		Metrics:       m,
		WebhookSecret: cfg.WebhookSecret,
	})

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Warning: Failed to shut down cleanly: %v", err)
		}
	}()

	log.Printf("Starting server on %s", cfg.HTTPAddr)
	if err := app.Listen(cfg.HTTPAddr); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
