package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App       AppConfig       `toml:"app"`
	Log       LogConfig       `toml:"log"`
	Ollama    OllamaConfig    `toml:"ollama"`
	Store     StoreConfig     `toml:"store"`
	Ingest    IngestConfig    `toml:"ingest"`
	Retrieval RetrievalConfig `toml:"retrieval"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type OllamaConfig struct {
	BaseURL        string `toml:"base_url"`
	ChatModel      string `toml:"chat_model"`
	EmbeddingModel string `toml:"embedding_model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type StoreConfig struct {
	Dir string `toml:"dir"`
}

type IngestConfig struct {
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
	// ReplaceExisting deletes a file's previous chunks before re-ingesting it.
	// Off by default: repeated ingestion appends duplicate chunks.
	ReplaceExisting bool `toml:"replace_existing"`
	MaxUploadMB     int  `toml:"max_upload_mb"`
}

type RetrievalConfig struct {
	TopK int `toml:"top_k"`
	// MinScore drops retrieved chunks below this cosine similarity.
	// 0 disables the cutoff and the raw top-k is always returned.
	MinScore float64 `toml:"min_score"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "docbrain",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "debug",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Ollama: OllamaConfig{
			BaseURL:        "http://127.0.0.1:11434",
			ChatModel:      "llama3",
			EmbeddingModel: "nomic-embed-text",
			TimeoutSeconds: 120,
		},
		Store: StoreConfig{
			Dir: "db",
		},
		Ingest: IngestConfig{
			ChunkSize:       1000,
			ChunkOverlap:    200,
			ReplaceExisting: false,
			MaxUploadMB:     20,
		},
		Retrieval: RetrievalConfig{
			TopK:     4,
			MinScore: 0,
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.Ollama.BaseURL = getEnv("OLLAMA_BASE_URL", cfg.Ollama.BaseURL)
	cfg.Ollama.ChatModel = getEnv("OLLAMA_CHAT_MODEL", cfg.Ollama.ChatModel)
	cfg.Ollama.EmbeddingModel = getEnv("OLLAMA_EMBEDDING_MODEL", cfg.Ollama.EmbeddingModel)
	cfg.Ollama.TimeoutSeconds = getEnvAsInt("OLLAMA_TIMEOUT_SECONDS", cfg.Ollama.TimeoutSeconds)

	cfg.Store.Dir = getEnv("STORE_DIR", cfg.Store.Dir)

	cfg.Ingest.ChunkSize = getEnvAsInt("INGEST_CHUNK_SIZE", cfg.Ingest.ChunkSize)
	cfg.Ingest.ChunkOverlap = getEnvAsInt("INGEST_CHUNK_OVERLAP", cfg.Ingest.ChunkOverlap)
	cfg.Ingest.ReplaceExisting = getEnvAsBool("INGEST_REPLACE_EXISTING", cfg.Ingest.ReplaceExisting)
	cfg.Ingest.MaxUploadMB = getEnvAsInt("INGEST_MAX_UPLOAD_MB", cfg.Ingest.MaxUploadMB)

	cfg.Retrieval.TopK = getEnvAsInt("RETRIEVAL_TOP_K", cfg.Retrieval.TopK)
	cfg.Retrieval.MinScore = getEnvAsFloat("RETRIEVAL_MIN_SCORE", cfg.Retrieval.MinScore)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
