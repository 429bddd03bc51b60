package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Detect DetectConfig
	LLM    LLMConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr  string
	UploadDir string
}

// DetectConfig holds scanned-document detection thresholds
type DetectConfig struct {
	MinTextThreshold int     // chars of trimmed text below which a page counts as empty
	EmptyPageRatio   float32 // empty-page fraction at or above which a document is scanned
	SamplePages      int     // pages fed into the keyword classifier
	SampleMaxChars   int     // cap on the classifier sample
}

// LLMConfig holds provider credentials and call behavior
type LLMConfig struct {
	OpenAIKey       string
	GoogleKey       string
	LlamaKey        string
	OpenAIBaseURL   string
	GoogleBaseURL   string
	LlamaBaseURL    string
	Timeout         time.Duration
	ValidationDelay time.Duration // makes the Validating phase observable to subscribers
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
			UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
		},
		Detect: DetectConfig{
			MinTextThreshold: getEnvAsInt("DETECT_MIN_TEXT_CHARS", 20),
			EmptyPageRatio:   getEnvAsFloat32("DETECT_EMPTY_PAGE_RATIO", 0.7),
			SamplePages:      getEnvAsInt("CLASSIFY_SAMPLE_PAGES", 3),
			SampleMaxChars:   getEnvAsInt("CLASSIFY_SAMPLE_MAX_CHARS", 5000),
		},
		LLM: LLMConfig{
			OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
			GoogleKey:       getEnv("GOOGLE_API_KEY", ""),
			LlamaKey:        getEnv("LLAMA_CLOUD_API_KEY", ""),
			OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			GoogleBaseURL:   getEnv("GOOGLE_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			LlamaBaseURL:    getEnv("LLAMA_CLOUD_BASE_URL", "https://api.cloud.llamaindex.ai/api/parsing"),
			Timeout:         getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
			ValidationDelay: getEnvAsDuration("VALIDATION_DELAY", 200*time.Millisecond),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration for unusable values
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Server.UploadDir == "" {
		return NewAppError("CONFIG_ERROR", "UPLOAD_DIR is required", ErrInvalidInput)
	}
	if c.Detect.EmptyPageRatio <= 0 || c.Detect.EmptyPageRatio > 1 {
		return NewAppError("CONFIG_ERROR", "DETECT_EMPTY_PAGE_RATIO must be in (0, 1]", ErrInvalidInput)
	}
	return nil
}
