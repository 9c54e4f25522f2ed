package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath = %q", cfg.APIBasePath)
	}
	if cfg.QuotaDailyLimit != 25 {
		t.Errorf("QuotaDailyLimit = %d", cfg.QuotaDailyLimit)
	}
	if cfg.BatchSize != 5 {
		t.Errorf("BatchSize = %d", cfg.BatchSize)
	}
	if cfg.Generation.Model != "gpt-4o-mini" {
		t.Errorf("Generation.Model = %q", cfg.Generation.Model)
	}
	if cfg.Generation.Timeout != 60*time.Second {
		t.Errorf("Generation.Timeout = %v", cfg.Generation.Timeout)
	}
	// Streams outlive a normal request/response exchange.
	if cfg.WriteTimeout != 5*time.Minute {
		t.Errorf("WriteTimeout = %v", cfg.WriteTimeout)
	}
	if len(cfg.AuthTokens) != 0 {
		t.Errorf("AuthTokens = %v", cfg.AuthTokens)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("QUOTA_DAILY_LIMIT", "3")
	t.Setenv("BATCH_SIZE", "2")
	t.Setenv("GENERATION_MODEL", "gpt-4o")
	t.Setenv("GENERATION_TIMEOUT", "90s")
	t.Setenv("AUTH_TOKENS", "tok:alice, tok2:bob")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("GIN_MODE", "nonsense")
	t.Setenv("API_BASE_PATH", "v2/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9999" || cfg.QuotaDailyLimit != 3 || cfg.BatchSize != 2 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Generation.Model != "gpt-4o" || cfg.Generation.Timeout != 90*time.Second {
		t.Fatalf("generation overrides not applied: %+v", cfg.Generation)
	}
	if len(cfg.AuthTokens) != 2 || cfg.AuthTokens[1] != "tok2:bob" {
		t.Fatalf("AuthTokens = %v", cfg.AuthTokens)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode = %q, want fallback release", cfg.GinMode)
	}
	if cfg.APIBasePath != "/v2" {
		t.Fatalf("APIBasePath = %q, want /v2", cfg.APIBasePath)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string][2]string{
		"bad log level": {"LOG_LEVEL", "verbose"},
		"zero quota":    {"QUOTA_DAILY_LIMIT", "0"},
		"zero batch":    {"BATCH_SIZE", "0"},
		"negative rps":  {"RATE_RPS", "-1"},
		"zero burst":    {"RATE_BURST", "0"},
		"bad ratio":     {"OTEL_TRACES_SAMPLER_ARG", "1.5"},
		"empty db path": {"DB_PATH", " "},
		"zero header":   {"MAX_HEADER_BYTES", "-5"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error for %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestMustLoadPanicsOnInvalid(t *testing.T) {
	t.Setenv("QUOTA_DAILY_LIMIT", "0")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustLoad()
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":        "/",
		"/":       "/",
		"api":     "/api",
		"/api/":   "/api",
		"/api/v1": "/api/v1",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetboolParsing(t *testing.T) {
	t.Setenv("FLAG", "yes")
	if !getbool("FLAG", false) {
		t.Fatalf("yes should be true")
	}
	t.Setenv("FLAG", "off")
	if getbool("FLAG", true) {
		t.Fatalf("off should be false")
	}
	t.Setenv("FLAG", "banana")
	if !getbool("FLAG", true) {
		t.Fatalf("garbage should fall back to default")
	}
}
