package api

import (
	"bytes"
	"context"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"healthcare-agent/internal/agent"
	"healthcare-agent/internal/config"
	"healthcare-agent/internal/models"
	"healthcare-agent/internal/store"
)

// Router is the dispatch agent contract the chat endpoint depends on.
type Router interface {
	Ask(ctx context.Context, query string) (*agent.Result, error)
}

// Handler holds dependencies for the request handlers. router is nil when
// startup failed to build the agent; the service then serves degraded.
type Handler struct {
	router    Router
	db        *bun.DB
	cfg       *config.Config
	templates *template.Template
}

// NewHandler constructor. router may be nil (degraded mode).
func NewHandler(router Router, db *bun.DB, cfg *config.Config, templates *template.Template) *Handler {
	return &Handler{router: router, db: db, cfg: cfg, templates: templates}
}

// Health reports service status. Degraded if and only if the agent is unset.
func (h *Handler) Health(c *fiber.Ctx) error {
	dbStatus := "ok"
	if h.db == nil {
		dbStatus = "unavailable"
	} else if err := store.Ping(c.UserContext(), h.db); err != nil {
		dbStatus = err.Error()
	}

	if h.router == nil {
		return c.JSON(fiber.Map{
			"status":   "degraded",
			"message":  "Application is running but agent is not initialized",
			"database": dbStatus,
		})
	}
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"message":  "Application is running",
		"database": dbStatus,
	})
}

// Chat forwards the question to the routing agent.
func (h *Handler) Chat(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil || req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request, expected JSON: {\"query\":\"...\"}"})
	}

	log.Info().Str("query", req.Query).Msg("Received chat request")

	if h.router == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Agent not ready yet."})
	}

	res, err := h.router.Ask(c.UserContext(), req.Query)
	if err != nil {
		log.Error().Err(err).Msg("chat error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(models.ChatResponse{
		CleanAnswer: res.CleanAnswer,
		Tool:        res.Tool,
		ToolDetails: res.ToolDetails,
		RawOutput:   res.RawOutput,
	})
}

// DebugDatabase returns table counts and a few patients.
func (h *Handler) DebugDatabase(c *fiber.Ctx) error {
	if h.db == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "database not connected"})
	}

	counts, err := store.Counts(c.UserContext(), h.db)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	patients, err := store.SamplePatients(c.UserContext(), h.db, 5)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"counts":          counts,
		"sample_patients": patients,
	})
}

// RecreateDatabase reruns the CSV load.
func (h *Handler) RecreateDatabase(c *fiber.Ctx) error {
	if h.db == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "database not connected"})
	}

	if err := store.Recreate(c.UserContext(), h.db, h.cfg.Database.CSVDir); err != nil {
		log.Error().Err(err).Msg("recreate database error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	counts, err := store.Counts(c.UserContext(), h.db)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok", "counts": counts})
}

// Home renders the landing page
func (h *Handler) Home(c *fiber.Ctx) error {
	return h.renderPage(c, "index.html")
}

// Chatbot renders the chat page
func (h *Handler) Chatbot(c *fiber.Ctx) error {
	return h.renderPage(c, "chatbot.html")
}

// About renders the about page
func (h *Handler) About(c *fiber.Ctx) error {
	return h.renderPage(c, "about.html")
}

func (h *Handler) renderPage(c *fiber.Ctx, name string) error {
	if h.templates == nil {
		return c.Status(fiber.StatusInternalServerError).SendString("templates not loaded")
	}
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, nil); err != nil {
		log.Error().Err(err).Str("template", name).Msg("template render error")
		return c.Status(fiber.StatusInternalServerError).SendString("template render error")
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
