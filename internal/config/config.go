package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	TemplateDir string `yaml:"template_dir"`
	StaticDir   string `yaml:"static_dir"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	CSVDir string `yaml:"csv_dir"`
	Debug  bool   `yaml:"debug"`
}

type RAGConfig struct {
	IndexPath    string `yaml:"index_path"`
	Collection   string `yaml:"collection"`
	PDFDir       string `yaml:"pdf_dir"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	TopK         int    `yaml:"top_k"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Key      string `yaml:"key"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	RAG      RAGConfig      `yaml:"rag"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	ChatLLM  LLMConfig      `yaml:"chat_llm"`
	Offline  bool           `yaml:"offline"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// applyEnv lets the environment override file values, dotenv style.
func applyEnv(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.ChatLLM.Key = key
		if cfg.EmbedLLM.Key == "" {
			cfg.EmbedLLM.Key = key
		}
	}
	if os.Getenv("RAG_OFFLINE") == "1" {
		cfg.Offline = true
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.TemplateDir == "" {
		cfg.Server.TemplateDir = "./templates"
	}
	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = "./static"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "./data/healthcare.db"
	}
	if cfg.Database.CSVDir == "" {
		cfg.Database.CSVDir = "./csv"
	}
	if cfg.RAG.IndexPath == "" {
		cfg.RAG.IndexPath = "./data/index"
	}
	if cfg.RAG.Collection == "" {
		cfg.RAG.Collection = "notice_privacy"
	}
	if cfg.RAG.PDFDir == "" {
		cfg.RAG.PDFDir = "./pdf"
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 200
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
}
