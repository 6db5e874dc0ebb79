// Package config loads runtime settings from defaults and environment
// variables. Command-line flags are applied on top by package cli.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ironsheep/ocr-session/internal/imaging"
	"github.com/ironsheep/ocr-session/internal/ocr"
	"github.com/ironsheep/ocr-session/internal/session"
)

// Environment variables read by Load.
const (
	EnvLogLevel       = "OCR_SESSION_LOG_LEVEL"
	EnvLanguages      = "OCR_SESSION_LANGUAGES"
	EnvLazyLanguages  = "OCR_SESSION_LAZY_LANGUAGE"
	EnvTessdataPrefix = "OCR_SESSION_TESSDATA_PREFIX"
	EnvFailureMode    = "OCR_SESSION_FAILURE_MODE"
	EnvOverlap        = "OCR_SESSION_OVERLAP"
	EnvFetchTimeout   = "OCR_SESSION_FETCH_TIMEOUT"
	EnvHTTPAddr       = "OCR_SESSION_HTTP_ADDR"
	EnvJWTSecret      = "OCR_SESSION_JWT_SECRET"
)

// Config holds runtime settings.
type Config struct {
	// LogLevel is "info" or "debug".
	LogLevel string

	// Languages is the spec used by Initialize when none is given.
	Languages string

	// LazyLanguages is the spec used when Recognize creates a worker.
	LazyLanguages string

	// TessdataPrefix is the directory holding *.traineddata files. Empty
	// uses Tesseract's built-in search path.
	TessdataPrefix string

	// FailureMode is "silent" or "return".
	FailureMode string

	// Overlap is "serialize" or "reject".
	Overlap string

	// FetchTimeout bounds URL and S3 image downloads.
	FetchTimeout time.Duration

	// HTTPAddr, when set, makes serve listen for MCP over HTTP instead of
	// stdio.
	HTTPAddr string

	// JWTSecret enables bearer-token auth on the HTTP transport.
	JWTSecret string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		Languages:     session.DefaultLanguages,
		LazyLanguages: session.DefaultLazyLanguages,
		FailureMode:   string(session.FailureSilent),
		Overlap:       string(session.OverlapSerialize),
		FetchTimeout:  imaging.DefaultFetchTimeout,
	}
}

// Load returns the defaults overridden by the variables getenv reports.
// Unset or empty variables keep their defaults.
func Load(getenv func(string) string) (*Config, error) {
	cfg := Default()

	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.LogLevel, EnvLogLevel)
	set(&cfg.Languages, EnvLanguages)
	set(&cfg.LazyLanguages, EnvLazyLanguages)
	set(&cfg.TessdataPrefix, EnvTessdataPrefix)
	set(&cfg.FailureMode, EnvFailureMode)
	set(&cfg.Overlap, EnvOverlap)
	set(&cfg.HTTPAddr, EnvHTTPAddr)
	set(&cfg.JWTSecret, EnvJWTSecret)

	if v := strings.TrimSpace(getenv(EnvFetchTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvFetchTimeout, err)
		}
		cfg.FetchTimeout = d
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "info", "debug":
	default:
		return fmt.Errorf("log level must be info or debug, got %q", c.LogLevel)
	}
	if _, err := ocr.ParseLanguages(c.Languages); err != nil {
		return fmt.Errorf("languages: %w", err)
	}
	if _, err := ocr.ParseLanguages(c.LazyLanguages); err != nil {
		return fmt.Errorf("lazy languages: %w", err)
	}
	if _, err := session.ParseFailureMode(c.FailureMode); err != nil {
		return err
	}
	if _, err := session.ParseOverlapPolicy(c.Overlap); err != nil {
		return err
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.JWTSecret != "" && c.HTTPAddr == "" {
		return fmt.Errorf("%s requires %s", EnvJWTSecret, EnvHTTPAddr)
	}
	return nil
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}
