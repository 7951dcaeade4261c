package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"healthcare-agent/internal/config"
	"healthcare-agent/internal/helper"
	"healthcare-agent/internal/store"
)

const configFilePath = "./configs/config.yaml"

// setupdb (re)builds the healthcare database from the CSV exports and logs
// per-table row counts as verification.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	if cfg.Database.Driver == "" || cfg.Database.Driver == "sqlite" {
		if err := helper.CreateFolder(filepath.Dir(cfg.Database.DSN)); err != nil {
			log.Fatal().Err(err).Msg("Error creating data folder")
		}
	}

	sqldb, err := store.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	db := store.NewDB(sqldb, &cfg.Database)
	defer db.Close()

	ctx := context.Background()
	log.Info().Str("csv_dir", cfg.Database.CSVDir).Msg("Creating database from CSV files")
	if err := store.Recreate(ctx, db, cfg.Database.CSVDir); err != nil {
		log.Fatal().Err(err).Msg("Error loading CSV files")
	}

	counts, err := store.Counts(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Error verifying tables")
	}
	for _, table := range store.TableNames {
		log.Info().Str("table", table).Int("rows", counts[table]).Msg("Loaded")
	}
	log.Info().Msg("Database created successfully")
}
