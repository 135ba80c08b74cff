package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// Config holds everything the service needs: provider credentials and
// models, the storage backend selection, and the retrieval knobs.
type Config struct {
	APIKey          string `yaml:"api_key" env:"API_KEY"`
	BaseURL         string `yaml:"base_url" env:"BASE_URL"`
	EmbeddingModel  string `yaml:"embedding_model" env:"EMBEDDING_MODEL" envDefault:"text-embedding-ada-002"`
	ChatModel       string `yaml:"chat_model" env:"CHAT_MODEL" envDefault:"gpt-4"`
	TranscribeModel string `yaml:"transcribe_model" env:"TRANSCRIBE_MODEL" envDefault:"whisper-1"`

	DataDir string `yaml:"data_dir" env:"DATA_DIR" envDefault:"./data"`

	// Store selects the index persistence backend: "file", "pgvector"
	// or "milvus".
	Store       string `yaml:"store" env:"STORE" envDefault:"file"`
	PostgresURL string `yaml:"postgres_url" env:"POSTGRES_URL"`

	MilvusAddr       string `yaml:"milvus_addr" env:"MILVUS_ADDR" envDefault:"localhost:19530"`
	MilvusUsername   string `yaml:"milvus_username" env:"MILVUS_USERNAME"`
	MilvusPassword   string `yaml:"milvus_password" env:"MILVUS_PASSWORD"`
	MilvusCollection string `yaml:"milvus_collection" env:"MILVUS_COLLECTION" envDefault:"meeting_chunks"`

	ChunkWords    int `yaml:"chunk_words" env:"CHUNK_WORDS" envDefault:"500"`
	OverlapWords  int `yaml:"overlap_words" env:"OVERLAP_WORDS" envDefault:"50"`
	DefaultTopK   int `yaml:"default_top_k" env:"DEFAULT_TOP_K" envDefault:"5"`
	ContextChunks int `yaml:"context_chunks" env:"CONTEXT_CHUNKS" envDefault:"3"`

	Port string `yaml:"port" env:"PORT" envDefault:"8080"`
}

// Load reads config.yaml if present, then applies environment overrides.
// A missing config file is not an error; the environment alone is enough.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.APIKey) == "" {
		problems = append(problems, "API key is required")
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		problems = append(problems, "embedding model is required")
	}
	if strings.TrimSpace(c.ChatModel) == "" {
		problems = append(problems, "chat model is required")
	}
	if c.OverlapWords >= c.ChunkWords {
		problems = append(problems, "overlap_words must be smaller than chunk_words")
	}
	switch c.Store {
	case "file", "pgvector", "milvus":
	default:
		problems = append(problems, fmt.Sprintf("unknown store backend %q", c.Store))
	}
	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// HasValidAPI reports whether provider calls can be attempted at all.
func (c *Config) HasValidAPI() bool {
	return strings.TrimSpace(c.APIKey) != ""
}
