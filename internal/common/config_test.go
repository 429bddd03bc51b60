package common

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.Server.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Detect.MinTextThreshold != 20 {
		t.Errorf("MinTextThreshold = %d", cfg.Detect.MinTextThreshold)
	}
	if cfg.Detect.EmptyPageRatio != 0.7 {
		t.Errorf("EmptyPageRatio = %v", cfg.Detect.EmptyPageRatio)
	}
	if cfg.LLM.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v", cfg.LLM.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DETECT_MIN_TEXT_CHARS", "50")
	t.Setenv("DETECT_EMPTY_PAGE_RATIO", "0.5")
	t.Setenv("LLM_TIMEOUT", "10s")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := LoadConfig()

	if cfg.Server.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Detect.MinTextThreshold != 50 {
		t.Errorf("MinTextThreshold = %d", cfg.Detect.MinTextThreshold)
	}
	if cfg.Detect.EmptyPageRatio != 0.5 {
		t.Errorf("EmptyPageRatio = %v", cfg.Detect.EmptyPageRatio)
	}
	if cfg.LLM.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.LLM.OpenAIKey != "sk-test" {
		t.Errorf("OpenAIKey = %q", cfg.LLM.OpenAIKey)
	}
}

func TestLoadConfig_MalformedEnvFallsBack(t *testing.T) {
	t.Setenv("DETECT_MIN_TEXT_CHARS", "not-a-number")
	t.Setenv("LLM_TIMEOUT", "soon")

	cfg := LoadConfig()

	if cfg.Detect.MinTextThreshold != 20 {
		t.Errorf("MinTextThreshold = %d, want default", cfg.Detect.MinTextThreshold)
	}
	if cfg.LLM.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want default", cfg.LLM.Timeout)
	}
}

func TestValidate_BadRatio(t *testing.T) {
	cfg := LoadConfig()
	cfg.Detect.EmptyPageRatio = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for ratio > 1")
	}
}
