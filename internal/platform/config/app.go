package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"urbanisme/internal/domain/rag"
)

// AppConfig is the whole service configuration, loaded once at startup.
type AppConfig struct {
	LogLevel  string          `json:"log_level"`
	LogFormat string          `json:"log_format"`
	Server    ServerConfig    `json:"server"`
	Redis     RedisConfig     `json:"redis"`
	LLM       LLMConfig       `json:"llm"`
	Embedding EmbeddingConfig `json:"embedding"`
	RAG       rag.Config      `json:"rag"`
}

type ServerConfig struct {
	Host                string `json:"host"`
	Port                int    `json:"port"`
	ReadTimeoutSeconds  int    `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `json:"write_timeout_seconds"`
}

type RedisConfig struct {
	URL             string `json:"url"`
	CacheTTLSeconds int    `json:"cache_ttl_seconds"`
}

type LLMConfig struct {
	APIKey         string `json:"api_key"`
	BaseURL        string `json:"base_url"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type EmbeddingConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	Dims    int    `json:"dims"`
}

// Default returns the baseline configuration.
func Default() *AppConfig {
	return &AppConfig{
		LogLevel:  "info",
		LogFormat: "text",
		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                8000,
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 120,
		},
		Redis: RedisConfig{
			URL:             "redis://localhost:6379",
			CacheTTLSeconds: 86400, // 24h
		},
		LLM: LLMConfig{
			BaseURL:        "https://api.groq.com/openai/v1",
			Model:          "mixtral-8x7b-32768",
			TimeoutSeconds: 60,
		},
		Embedding: EmbeddingConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "text-embedding-3-small",
			Dims:    1536,
		},
		RAG: *rag.DefaultConfig(),
	}
}

// Load builds the configuration: defaults -> optional JSON file
// (APP_CONFIG_FILE) -> environment variables. A .env file is honored when
// present.
func Load() (*AppConfig, error) {
	_ = godotenv.Load() // .env is optional

	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("APP_CONFIG_FILE")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read APP_CONFIG_FILE %q failed: %w", path, err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse APP_CONFIG_FILE %q failed: %w", path, err)
	}
	return nil
}

func (c *AppConfig) applyEnv() {
	applyString("LOG_LEVEL", &c.LogLevel)
	applyString("LOG_FORMAT", &c.LogFormat)

	applyString("HOST", &c.Server.Host)
	applyInt("PORT", &c.Server.Port)
	applyInt("SERVER_READ_TIMEOUT", &c.Server.ReadTimeoutSeconds)
	applyInt("SERVER_WRITE_TIMEOUT", &c.Server.WriteTimeoutSeconds)

	applyString("REDIS_URL", &c.Redis.URL)
	applyInt("CACHE_TTL", &c.Redis.CacheTTLSeconds)

	applyString("GROQ_API_KEY", &c.LLM.APIKey)
	applyString("GROQ_BASE_URL", &c.LLM.BaseURL)
	applyString("GROQ_MODEL", &c.LLM.Model)
	applyInt("GROQ_TIMEOUT", &c.LLM.TimeoutSeconds)

	// embeddings default to the OpenAI key when no dedicated one is set
	applyString("OPENAI_API_KEY", &c.Embedding.APIKey)
	applyString("EMBEDDING_API_KEY", &c.Embedding.APIKey)
	applyString("EMBEDDING_BASE_URL", &c.Embedding.BaseURL)
	applyString("EMBEDDING_MODEL", &c.Embedding.Model)
	applyInt("EMBEDDING_DIMS", &c.Embedding.Dims)

	applyInt("RAG_CHUNK_SIZE", &c.RAG.ChunkSize)
	applyInt("RAG_CHUNK_OVERLAP", &c.RAG.ChunkOverlap)
	applyInt("RAG_TOP_K", &c.RAG.TopK)
	applyString("VECTOR_STORE_PATH", &c.RAG.IndexPath)
	applyInt("RAG_MAX_FILE_SIZE", &c.RAG.MaxFileSize)
}

// validate catches configuration errors at startup; a bad chunk geometry
// must never surface as a per-request failure.
func (c *AppConfig) validate() error {
	if err := c.RAG.Validate(); err != nil {
		return err
	}
	if c.Redis.CacheTTLSeconds <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %d", c.Redis.CacheTTLSeconds)
	}
	if c.Embedding.Dims <= 0 {
		return fmt.Errorf("EMBEDDING_DIMS must be positive, got %d", c.Embedding.Dims)
	}
	return nil
}

func applyString(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func applyInt(key string, target *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}
