// Package config resolves run configuration from the environment, with
// optional .env support for local development. Every knob has a default so
// an empty environment yields a working pipeline.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvRulesPath        = "EVIDENCEKIT_RULES"
	EnvDefaultThreshold = "EVIDENCEKIT_OCR_THRESHOLD"
	EnvOCRWorkers       = "EVIDENCEKIT_OCR_WORKERS"
	EnvOCRLanguages     = "EVIDENCEKIT_OCR_LANGUAGES"
	EnvStorePath        = "EVIDENCEKIT_STORE"
	EnvInboxDir         = "EVIDENCEKIT_INBOX"
	EnvLogLevel         = "EVIDENCEKIT_LOG_LEVEL"
)

// Config is the resolved run configuration.
type Config struct {
	// RulesPath points at a YAML rule file. Empty means the built-in set.
	RulesPath string
	// DefaultThreshold is the screenshot similarity threshold applied when a
	// rule does not carry its own.
	DefaultThreshold int
	// OCRWorkers bounds concurrent OCR calls.
	OCRWorkers int
	// OCRLanguages are language hints for the OCR engine, e.g. ["eng"].
	OCRLanguages []string
	// StorePath is the SQLite database file for run records.
	StorePath string
	// InboxDir is the directory watched in inbox mode.
	InboxDir string
	// LogLevel is debug, info, warn, or error.
	LogLevel string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		DefaultThreshold: 78,
		OCRWorkers:       4,
		OCRLanguages:     []string{"eng"},
		StorePath:        "evidencekit.db",
		InboxDir:         "inbox",
		LogLevel:         "info",
	}
}

// Load resolves configuration from a .env file (when present) and the
// process environment, on top of the defaults.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv resolves configuration from the given lookup function. Split out
// so tests can inject an environment.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	if v := getenv(EnvRulesPath); v != "" {
		cfg.RulesPath = v
	}
	if v := getenv(EnvDefaultThreshold); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return Config{}, fmt.Errorf("%s: %q is not a threshold in 1-100", EnvDefaultThreshold, v)
		}
		cfg.DefaultThreshold = n
	}
	if v := getenv(EnvOCRWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("%s: %q is not a positive worker count", EnvOCRWorkers, v)
		}
		cfg.OCRWorkers = n
	}
	if v := getenv(EnvOCRLanguages); v != "" {
		cfg.OCRLanguages = nil
		for _, lang := range strings.Split(v, ",") {
			if lang = strings.TrimSpace(lang); lang != "" {
				cfg.OCRLanguages = append(cfg.OCRLanguages, lang)
			}
		}
		if len(cfg.OCRLanguages) == 0 {
			return Config{}, fmt.Errorf("%s: no languages in %q", EnvOCRLanguages, v)
		}
	}
	if v := getenv(EnvStorePath); v != "" {
		cfg.StorePath = v
	}
	if v := getenv(EnvInboxDir); v != "" {
		cfg.InboxDir = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		switch strings.ToLower(v) {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = strings.ToLower(v)
		default:
			return Config{}, fmt.Errorf("%s: unknown level %q", EnvLogLevel, v)
		}
	}
	return cfg, nil
}
