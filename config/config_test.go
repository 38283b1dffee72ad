package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "negative workers",
			mutate: func(cfg *Config) {
				cfg.Workers = -1
			},
			wantErr: "workers",
		},
		{
			name: "max workers below workers",
			mutate: func(cfg *Config) {
				cfg.Workers = 8
				cfg.MaxWorkers = 4
			},
			wantErr: "max workers",
		},
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "negative delay",
			mutate: func(cfg *Config) {
				cfg.Delay = -time.Millisecond
			},
			wantErr: "delay",
		},
		{
			name: "zero sample size",
			mutate: func(cfg *Config) {
				cfg.SampleSize = 0
			},
			wantErr: "sample size",
		},
		{
			name: "ratio above one",
			mutate: func(cfg *Config) {
				cfg.CanonicalIDRatio = 1.5
			},
			wantErr: "canonical id ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("BOOKBUNDLE_BASE_URL", "http://origin.test")
	t.Setenv("BOOKBUNDLE_DELAY", "25ms")
	t.Setenv("BOOKBUNDLE_WORKERS", "3")
	t.Setenv("BOOKBUNDLE_SAMPLE_SIZE", " 4 ")

	cfg := DefaultConfig()
	if err := FromEnv(cfg); err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.BaseURL != "http://origin.test" {
		t.Fatalf("base url = %q", cfg.BaseURL)
	}
	if cfg.Delay != 25*time.Millisecond {
		t.Fatalf("delay = %v, want 25ms", cfg.Delay)
	}
	if cfg.Workers != 3 || cfg.SampleSize != 4 {
		t.Fatalf("workers=%d sample=%d, want 3/4", cfg.Workers, cfg.SampleSize)
	}
}

func TestFromEnvInvalid(t *testing.T) {
	t.Setenv("BOOKBUNDLE_WORKERS", "many")

	cfg := DefaultConfig()
	if err := FromEnv(cfg); err == nil || !strings.Contains(err.Error(), "BOOKBUNDLE_WORKERS") {
		t.Fatalf("expected BOOKBUNDLE_WORKERS error, got %v", err)
	}
}
