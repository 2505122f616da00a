package rest

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"access-gateway-api/db"
	"access-gateway-api/metrics"
	"access-gateway-api/pipeline"
)

// Processor runs one inbound message through the pipeline.
type Processor interface {
	Process(ctx context.Context, msg pipeline.Message) (pipeline.Summary, error)
}

type Deps struct {
	Store         *db.Store
	Processor     Processor
	Settings      *pipeline.SettingsLoader
	Metrics       *metrics.Metrics
	WebhookSecret string
}

type Handlers struct {
	store         *db.Store
	processor     Processor
	settings      *pipeline.SettingsLoader
	webhookSecret string
	validate      *validator.Validate
}

func Init(app *fiber.App, deps Deps) *Handlers {
	h := &Handlers{
		store:         deps.Store,
		processor:     deps.Processor,
		settings:      deps.Settings,
		webhookSecret: deps.WebhookSecret,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}

	SetupSwagger(app)

	app.Post("/webhook/telegram", h.TelegramWebhookHandler)

	app.Get("/settings", h.GetSettingsHandler)
	app.Put("/settings", h.UpdateSettingsHandler)

	app.Get("/messages", h.ListMessagesHandler)
	app.Get("/forward-logs", h.ListForwardLogsHandler)
	app.Get("/reports", h.GetReportsHandler)

	app.Post("/categories", h.CreateCategoryHandler)
	app.Get("/categories", h.ListCategoriesHandler)
	app.Get("/users/:identifier", h.GetUserHandler)

	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	log.Info("REST API started")
	return h
}
