package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"healthcare-agent/internal/chromemdb"
	"healthcare-agent/internal/config"
	"healthcare-agent/internal/embedding"
	"healthcare-agent/internal/helper"
	"healthcare-agent/internal/parser"
)

const configFilePath = "./configs/config.yaml"

// indexer builds the persisted vector index from the document folder:
// parse, chunk, embed, store.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	dryRun := flag.Bool("dry-run", false, "Parse and print chunks, do not embed or save")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	ctx := context.Background()

	files, err := documentFiles(cfg.RAG.PDFDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Error reading document folder")
	}
	if len(files) == 0 {
		log.Warn().Str("dir", cfg.RAG.PDFDir).Msg("No documents found, index not created")
		return
	}

	if err := helper.CreateFolder(cfg.RAG.IndexPath); err != nil {
		log.Fatal().Err(err).Msg("Error creating index folder")
	}

	var embedder embeddings.Embedder
	if !*dryRun {
		embedder, err = embedding.New(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Error initializing embedder")
		}
	}

	var docs []chromem.Document
	for _, file := range files {
		log.Info().Str("file", filepath.Base(file)).Msg("Processing")

		chunks, err := parser.ParseToMarkdown(file, cfg)
		if err != nil {
			log.Error().Err(err).Str("file", file).Msg("Error parsing document")
			continue
		}

		if *dryRun {
			helper.PrettyPrint(chunks)
			continue
		}

		chunkEmbeddings, err := embedding.GenerateEmbedding(ctx, embedder, filepath.Base(file), chunks)
		if err != nil {
			log.Fatal().Err(err).Msg("Error generating embedding")
		}

		for _, ce := range chunkEmbeddings {
			docs = append(docs, chromem.Document{
				ID:      fmt.Sprintf("%s-p%d-c%d", ce.SourceFilename, ce.PageNumber, ce.ChunkID),
				Content: ce.Content,
				Metadata: map[string]string{
					"source": ce.SourceFilename,
					"page":   fmt.Sprintf("%d", ce.PageNumber),
					"chunk":  fmt.Sprintf("%d", ce.ChunkID),
				},
				Embedding: ce.Embedding,
			})
		}
	}

	if *dryRun {
		return
	}

	index, err := chromemdb.NewVectorDBManager(cfg.RAG.IndexPath, false)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector database manager")
	}
	if _, err := index.GetOrCreateCollection(cfg.RAG.Collection); err != nil {
		log.Fatal().Err(err).Msg("Error creating collection")
	}

	// rebuild from scratch so reruns do not accumulate stale chunks
	if index.Count() > 0 {
		if err := index.DeleteCollection(); err != nil {
			log.Fatal().Err(err).Msg("Error clearing collection")
		}
		if _, err := index.GetOrCreateCollection(cfg.RAG.Collection); err != nil {
			log.Fatal().Err(err).Msg("Error recreating collection")
		}
	}

	log.Info().Msgf("Adding %d documents to vector database", len(docs))
	if err := index.CreateDocs(ctx, docs); err != nil {
		log.Fatal().Err(err).Msg("Error adding content to vector database")
	}
	log.Info().Msg("Vector index created successfully")
}

func documentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if parser.SupportedExt(path) {
			files = append(files, path)
		}
	}
	return files, nil
}
