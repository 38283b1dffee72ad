package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds crawler and analysis configuration.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// Delay is the pause each network-bound task takes before issuing its request.
	Delay time.Duration

	Workers       int
	MaxWorkers    int
	QueueCapacity int

	SampleSize   int
	CandidateCap int
	ResultCap    int

	// CanonicalIDRatio bounds how small a product-link id must be, relative to the
	// listing id, before identity resolution accepts it as canonical.
	CanonicalIDRatio  float64
	IdentityCacheSize int

	ListenAddr  string
	MetricsAddr string
	Verbose     bool
}

// DefaultConfig returns conservative defaults for the origin site.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "https://www.aladin.co.kr",
		UserAgent:         "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		Timeout:           10 * time.Second,
		Delay:             300 * time.Millisecond,
		Workers:           5,
		MaxWorkers:        10,
		QueueCapacity:     100,
		SampleSize:        3,
		CandidateCap:      25,
		ResultCap:         20,
		CanonicalIDRatio:  0.5,
		IdentityCacheSize: 100000,
		ListenAddr:        ":8080",
		MetricsAddr:       "",
		Verbose:           false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.MaxWorkers < c.Workers {
		return fmt.Errorf("max workers (%d) cannot be below workers (%d)", c.MaxWorkers, c.Workers)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("queue capacity must be positive")
	}
	if c.SampleSize <= 0 {
		return fmt.Errorf("sample size must be positive")
	}
	if c.CandidateCap <= 0 {
		return fmt.Errorf("candidate cap must be positive")
	}
	if c.ResultCap <= 0 {
		return fmt.Errorf("result cap must be positive")
	}
	if c.CanonicalIDRatio <= 0 || c.CanonicalIDRatio > 1 {
		return fmt.Errorf("canonical id ratio must be in (0, 1]")
	}
	if c.IdentityCacheSize <= 0 {
		return fmt.Errorf("identity cache size must be positive")
	}

	return nil
}

// FromEnv overlays BOOKBUNDLE_* environment variables onto c.
func FromEnv(c *Config) error {
	if value, ok := EnvString("BOOKBUNDLE_BASE_URL"); ok {
		c.BaseURL = value
	}
	if value, ok := EnvString("BOOKBUNDLE_USER_AGENT"); ok {
		c.UserAgent = value
	}
	if value, ok := EnvString("BOOKBUNDLE_LISTEN_ADDR"); ok {
		c.ListenAddr = value
	}
	if value, ok := EnvString("BOOKBUNDLE_METRICS_ADDR"); ok {
		c.MetricsAddr = value
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"BOOKBUNDLE_TIMEOUT", &c.Timeout},
		{"BOOKBUNDLE_DELAY", &c.Delay},
	}
	for _, d := range durations {
		value, ok, err := EnvDuration(d.key)
		if err != nil {
			return err
		}
		if ok {
			*d.target = value
		}
	}

	ints := []struct {
		key    string
		target *int
	}{
		{"BOOKBUNDLE_WORKERS", &c.Workers},
		{"BOOKBUNDLE_MAX_WORKERS", &c.MaxWorkers},
		{"BOOKBUNDLE_QUEUE_CAPACITY", &c.QueueCapacity},
		{"BOOKBUNDLE_SAMPLE_SIZE", &c.SampleSize},
		{"BOOKBUNDLE_CANDIDATE_CAP", &c.CandidateCap},
		{"BOOKBUNDLE_RESULT_CAP", &c.ResultCap},
		{"BOOKBUNDLE_IDENTITY_CACHE_SIZE", &c.IdentityCacheSize},
	}
	for _, i := range ints {
		value, ok, err := EnvInt(i.key)
		if err != nil {
			return err
		}
		if ok {
			*i.target = value
		}
	}

	return nil
}

// EnvString returns the trimmed value of key when it is set and non-empty.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer.
func EnvInt(key string) (int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, true, nil
}

// EnvDuration parses key as a Go duration ("250ms", "10s").
func EnvDuration(key string) (time.Duration, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, true, nil
}
