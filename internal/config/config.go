package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// placeholderAPIKey is the value shipped in .env.example; treating it as a
// real credential would make every request fail at generation time instead
// of failing once at startup.
const placeholderAPIKey = "your_openai_api_key_here"

// Config holds all configuration for the application.
type Config struct {
	// Generative model provider.
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Embedding provider.
	EmbeddingBaseURL string
	EmbeddingModel   string

	// Cross-encoder re-ranking provider.
	RerankBaseURL     string
	CrossEncoderModel string

	// Translation provider.
	TranslationAPIURL string

	// Corpus and index.
	IndexFile  string
	TextFolder string
	ChunkSize  int

	// Retrieval tuning.
	RetrievalK    int
	FinalContextK int

	// Conversation.
	MaxHistoryTurns int
	MaxQueryLength  int

	// Language boundary: lowercase ISO 639-1 codes the detector chooses among.
	SupportedLanguages []string

	// Per-call timeouts.
	TranslationTimeout time.Duration
	GenerationTimeout  time.Duration

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Try to find project root by looking for a .env next to go.mod
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		LLMBaseURL:        getEnv("LLM_BASE_URL", "https://api.openai.com"),
		LLMModel:          getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		LLMAPIKey:         getEnv("OPENAI_API_KEY", ""),
		EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "paraphrase-multilingual-mpnet-base-v2"),
		RerankBaseURL:     getEnv("RERANK_BASE_URL", "http://localhost:8082"),
		CrossEncoderModel: getEnv("CROSS_ENCODER_MODEL", "cross-encoder/ms-marco-MiniLM-L-6-v2"),
		TranslationAPIURL: getEnv("MYMEMORY_API_URL", "https://api.mymemory.translated.net/get"),
		IndexFile:         getEnv("INDEX_FILE", "data/index.db"),
		TextFolder:        getEnv("TEXT_FOLDER", "extracted_texts"),
		APIPort:           getEnv("API_PORT", "8000"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}

	if cfg.LLMAPIKey == "" || cfg.LLMAPIKey == placeholderAPIKey {
		return nil, fmt.Errorf("OPENAI_API_KEY is required and must not be the placeholder value")
	}

	intFields := []struct {
		key      string
		def      int
		dst      *int
		minValue int
	}{
		{"CHUNK_SIZE", 500, &cfg.ChunkSize, 1},
		{"RETRIEVAL_K", 10, &cfg.RetrievalK, 1},
		{"FINAL_CONTEXT_K", 4, &cfg.FinalContextK, 1},
		{"MAX_HISTORY_TURNS", 3, &cfg.MaxHistoryTurns, 1},
		{"MAX_QUERY_LENGTH", 200, &cfg.MaxQueryLength, 1},
	}
	for _, f := range intFields {
		v, err := getEnvInt(f.key, f.def)
		if err != nil {
			return nil, err
		}
		if v < f.minValue {
			return nil, fmt.Errorf("%s must be at least %d", f.key, f.minValue)
		}
		*f.dst = v
	}

	if cfg.FinalContextK > cfg.RetrievalK {
		return nil, fmt.Errorf("FINAL_CONTEXT_K (%d) must not exceed RETRIEVAL_K (%d)", cfg.FinalContextK, cfg.RetrievalK)
	}

	translationSecs, err := getEnvInt("TRANSLATION_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	generationSecs, err := getEnvInt("GENERATION_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	if translationSecs <= 0 || generationSecs <= 0 {
		return nil, fmt.Errorf("timeouts must be positive")
	}
	cfg.TranslationTimeout = time.Duration(translationSecs) * time.Second
	cfg.GenerationTimeout = time.Duration(generationSecs) * time.Second

	for _, code := range strings.Split(getEnv("SUPPORTED_LANGUAGES", "tr,en"), ",") {
		code = strings.ToLower(strings.TrimSpace(code))
		if code != "" {
			cfg.SupportedLanguages = append(cfg.SupportedLanguages, code)
		}
	}
	if len(cfg.SupportedLanguages) < 2 {
		return nil, fmt.Errorf("SUPPORTED_LANGUAGES must list at least two language codes")
	}

	switch strings.ToLower(getEnv("LOG_LEVEL", "info")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn", "warning":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	// Create the index directory if it doesn't exist (for future index file)
	dataDir := filepath.Dir(cfg.IndexFile)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return parsed, nil
}
