package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/docsite/internal/config"
	"github.com/alnah/docsite/internal/hints"
)

const envPrefix = "DOCSITE_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without editing the YAML file.
type envConfig struct {
	ConfigPath string        // DOCSITE_CONFIG: config file name or path
	OutputDir  string        // DOCSITE_OUTPUT_DIR: build output directory
	Addr       string        // DOCSITE_ADDR: serve listen address
	Timeout    time.Duration // DOCSITE_TIMEOUT: remote fetch timeout
	LogLevel   string        // DOCSITE_LOG_LEVEL
	LogFormat  string        // DOCSITE_LOG_FORMAT
	Workers    int           // DOCSITE_WORKERS: parallel page renders
}

// knownEnvVars lists valid DOCSITE_* environment variables.
var knownEnvVars = map[string]bool{
	"DOCSITE_CONFIG":     true,
	"DOCSITE_OUTPUT_DIR": true,
	"DOCSITE_ADDR":       true,
	"DOCSITE_TIMEOUT":    true,
	"DOCSITE_LOG_LEVEL":  true,
	"DOCSITE_LOG_FORMAT": true,
	"DOCSITE_WORKERS":    true,
	hints.TokenEnv:       true,
}

// loadEnvConfig reads the recognized DOCSITE_* values.
// Malformed numbers and durations are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("DOCSITE_CONFIG"),
		OutputDir:  getenv("DOCSITE_OUTPUT_DIR"),
		Addr:       getenv("DOCSITE_ADDR"),
		LogLevel:   getenv("DOCSITE_LOG_LEVEL"),
		LogFormat:  getenv("DOCSITE_LOG_FORMAT"),
	}

	if timeout := getenv("DOCSITE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := getenv("DOCSITE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars warns about unrecognized DOCSITE_* variables,
// e.g. DOCSITE_OUTPUT instead of DOCSITE_OUTPUT_DIR.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment values over the config file.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied afterwards).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" {
		cfg.Paths.Output = env.OutputDir
	}
	if env.Addr != "" {
		cfg.Serve.Addr = env.Addr
	}
	if env.Timeout > 0 {
		cfg.Remote.Timeout = env.Timeout.String()
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
}
