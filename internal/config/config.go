package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	BackendDisk = "disk"
	BackendS3   = "s3"
)

type Config struct {
	Port     string
	LogLevel string

	// Completion service
	CompletionProvider string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	CompletionModel    string
	GeminiAPIKey       string
	GeminiModel        string
	CompletionTimeout  time.Duration

	// Upload staging
	UploadBackend string
	UploadDir     string

	// S3
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool

	// Upload limits
	MaxFileSize      int64
	MaxDocumentChars int

	// Substitute canned case data when a request omits required fields.
	UseExampleInput bool

	// Clause classifier subprocess; empty disables it.
	ClassifierCommand []string
	ClassifierTimeout time.Duration

	// SQLite completion audit log; empty disables it.
	AuditDBPath string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []error

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CompletionProvider: strings.ToLower(getEnv("COMPLETION_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      strings.TrimRight(getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),
		CompletionModel:    getEnv("COMPLETION_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		UploadBackend:      strings.ToLower(getEnv("UPLOAD_BACKEND", BackendDisk)),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		S3Endpoint:         getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKeyID:      getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretAccessKey:  getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3BucketName:       getEnv("S3_BUCKET_NAME", "uploads"),
		ClassifierCommand:  strings.Fields(getEnv("CLASSIFIER_CMD", "")),
		AuditDBPath:        getEnv("AUDIT_DB_PATH", ""),
	}

	var err error
	if cfg.S3UseSSL, err = getEnvBool("S3_USE_SSL", false); err != nil {
		errs = append(errs, err)
	}
	if cfg.UseExampleInput, err = getEnvBool("USE_EXAMPLE_INPUT", false); err != nil {
		errs = append(errs, err)
	}
	if cfg.CompletionTimeout, err = getEnvDuration("COMPLETION_TIMEOUT", 60*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.ClassifierTimeout, err = getEnvDuration("CLASSIFIER_TIMEOUT", 30*time.Second); err != nil {
		errs = append(errs, err)
	}
	maxFileSizeMB, err := getEnvInt("MAX_FILE_SIZE_MB", 10)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.MaxFileSize = int64(maxFileSizeMB) << 20
	if cfg.MaxDocumentChars, err = getEnvInt("MAX_DOCUMENT_CHARS", 4000); err != nil {
		errs = append(errs, err)
	}

	switch cfg.CompletionProvider {
	case ProviderOpenAI, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("COMPLETION_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, cfg.CompletionProvider))
	}
	switch cfg.UploadBackend {
	case BackendDisk, BackendS3:
	default:
		errs = append(errs, fmt.Errorf("UPLOAD_BACKEND must be %q or %q, got %q", BackendDisk, BackendS3, cfg.UploadBackend))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// Model returns the model identifier for the selected provider.
func (c *Config) Model() string {
	if c.CompletionProvider == ProviderGemini {
		return c.GeminiModel
	}
	return c.CompletionModel
}

// Warnings lists configuration gaps that should be visible at startup but
// must not stop the server.
func (c *Config) Warnings() []string {
	var warnings []string
	switch c.CompletionProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			warnings = append(warnings, "GEMINI_API_KEY is not set; completion requests will fail")
		}
	default:
		if c.OpenAIAPIKey == "" {
			warnings = append(warnings, "OPENAI_API_KEY is not set; completion requests will fail")
		}
	}
	return warnings
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, value)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, value)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, value)
	}
	return d, nil
}
