package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"healthcare-agent/internal/agent"
	"healthcare-agent/internal/api"
	"healthcare-agent/internal/chromemdb"
	"healthcare-agent/internal/config"
	"healthcare-agent/internal/embedding"
	"healthcare-agent/internal/llmservice"
	"healthcare-agent/internal/store"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	debugRoutes := flag.Bool("debug-routes", false, "Expose /debug endpoints")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	// Database and agent failures leave the service degraded instead of
	// killing the process; /health and /chat report the state.
	db := connectStore(cfg)

	// api.Router is an interface; only assign on success so a failed build
	// leaves it nil rather than a typed nil pointer.
	var router api.Router
	if r, err := buildRouter(cfg, db); err != nil {
		log.Error().Err(err).Msg("Failed to initialize agent, serving degraded")
	} else {
		router = r
	}

	templates, err := template.ParseGlob(filepath.Join(cfg.Server.TemplateDir, "*.html"))
	if err != nil {
		log.Error().Err(err).Msg("Error loading templates")
	}

	app := fiber.New(fiber.Config{AppName: "Unified Multi-Source Agent (PDF + SQL)"})

	h := api.NewHandler(router, db, cfg, templates)
	api.RegisterRoutes(app, h, *debugRoutes)

	log.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
	if err := app.Listen(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func connectStore(cfg *config.Config) *bun.DB {
	sqldb, err := store.ConnectDB(&cfg.Database)
	if err != nil {
		log.Error().Err(err).Msg("Error connecting to database")
		return nil
	}
	db := store.NewDB(sqldb, &cfg.Database)
	if err := store.Ping(context.Background(), db); err != nil {
		log.Error().Err(err).Msg("Database not reachable")
	}
	return db
}

// buildRouter constructs the shared components and the dispatch agent.
// Mirrors the startup contract: any failure is reported, not fatal.
func buildRouter(cfg *config.Config, db *bun.DB) (*agent.Router, error) {
	if cfg.ChatLLM.Key == "" || cfg.ChatLLM.Key == "your_openai_api_key_here" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}
	if db == nil {
		return nil, errors.New("database not connected")
	}

	index, err := chromemdb.NewVectorDBManager(cfg.RAG.IndexPath, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector index: %w", err)
	}
	if _, err := index.GetOrCreateCollection(cfg.RAG.Collection); err != nil {
		return nil, fmt.Errorf("opening collection: %w", err)
	}
	log.Info().Int("documents", index.Count()).Msg("Loaded vector index")

	embedder, err := embedding.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing embedder: %w", err)
	}

	llm, err := llmservice.NewChatModel(&cfg.ChatLLM)
	if err != nil {
		return nil, fmt.Errorf("initializing chat model: %w", err)
	}

	return agent.NewRouter(llm, embedder, index, db, cfg.Database.Driver, cfg.RAG.TopK), nil
}
