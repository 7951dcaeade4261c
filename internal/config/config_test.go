package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "chat_llm:\n  model: gpt-3.5-turbo\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "./data/healthcare.db", cfg.Database.DSN)
	assert.Equal(t, "./csv", cfg.Database.CSVDir)
	assert.Equal(t, "notice_privacy", cfg.RAG.Collection)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 200, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 5, cfg.RAG.TopK)
}

func TestLoadConfig_FileValuesWin(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
rag:
  chunk_size: 220
  chunk_overlap: 40
database:
  driver: postgres
  dsn: "postgres://localhost:5432/health?sslmode=disable"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 220, cfg.RAG.ChunkSize)
	assert.Equal(t, 40, cfg.RAG.ChunkOverlap)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RAG_OFFLINE", "1")

	path := writeConfig(t, "chat_llm:\n  key: from-file\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.ChatLLM.Key)
	assert.Equal(t, "sk-test", cfg.EmbedLLM.Key)
	assert.True(t, cfg.Offline)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}
