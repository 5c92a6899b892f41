// Package config loads finmcp configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreSurreal  = "surreal"
)

// Embedding providers.
const (
	ProviderOpenAI  = "openai"
	ProviderOllama  = "ollama"
	ProviderBedrock = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// Store selection
	StoreBackend string

	// Postgres
	PostgresURL string

	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Embedding
	EmbedProvider  string
	EmbedModel     string
	EmbedDimension int
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	OllamaHost     string

	// Per-dependency call timeouts
	EmbedTimeout time.Duration
	StoreTimeout time.Duration

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables, applying defaults.
// Call Validate before serving; Load itself never fails.
func Load() Config {
	return Config{
		StoreBackend: getEnv("FINMCP_STORE_BACKEND", StorePostgres),

		PostgresURL: os.Getenv("DATABASE_URL"),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "finance"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "records"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		EmbedProvider:  getEnv("FINMCP_EMBED_PROVIDER", ProviderOpenAI),
		EmbedModel:     getEnv("FINMCP_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbedDimension: getEnvInt("FINMCP_EMBEDDING_DIMENSION", 1536),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		OllamaHost:     getEnv("OLLAMA_HOST", "http://localhost:11434"),

		EmbedTimeout: getEnvDuration("FINMCP_EMBED_TIMEOUT", 30*time.Second),
		StoreTimeout: getEnvDuration("FINMCP_STORE_TIMEOUT", 30*time.Second),

		LogFile:  getEnv("FINMCP_LOG_FILE", "/tmp/finmcp.log"),
		LogLevel: parseLogLevel(getEnv("FINMCP_LOG_LEVEL", "INFO")),
	}
}

// Validate checks that every value required by the selected backend and
// provider is present. A failing Validate must prevent the server from
// accepting tool calls at all.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case StorePostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("DATABASE_URL is required when FINMCP_STORE_BACKEND=postgres")
		}
	case StoreSurreal:
		if c.SurrealDBURL == "" {
			return fmt.Errorf("SURREALDB_URL is required when FINMCP_STORE_BACKEND=surreal")
		}
	default:
		return fmt.Errorf("unknown store backend %q (expected postgres or surreal)", c.StoreBackend)
	}

	switch c.EmbedProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when FINMCP_EMBED_PROVIDER=openai")
		}
	case ProviderOllama, ProviderBedrock:
	default:
		return fmt.Errorf("unknown embedding provider %q (expected openai, ollama, or bedrock)", c.EmbedProvider)
	}

	if c.EmbedDimension <= 0 {
		return fmt.Errorf("FINMCP_EMBEDDING_DIMENSION must be positive, got %d", c.EmbedDimension)
	}
	if c.EmbedTimeout <= 0 || c.StoreTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
