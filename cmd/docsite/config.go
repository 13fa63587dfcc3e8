package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/alnah/docsite/internal/config"
)

// defaultConfigName is looked up when neither --config nor DOCSITE_CONFIG
// is set. A missing default config falls back to built-in defaults.
const defaultConfigName = "site"

// loadConfig resolves the configuration for one command:
// file (or defaults), then env vars, then common flags, then merge, then
// validation. The returned logger follows the final log settings.
func loadConfig(flags *commonFlags, env *Environment, merge func(*config.Config)) (*config.Config, *slog.Logger, error) {
	envCfg := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())

	name := flags.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	var cfg *config.Config
	var err error
	if name != "" {
		cfg, err = config.LoadConfig(name)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg, err = config.LoadConfig(defaultConfigName)
		switch {
		case errors.Is(err, config.ErrConfigNotFound):
			cfg = config.DefaultConfig()
		case err != nil:
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(envCfg, cfg)
	mergeCommonFlags(flags, cfg)
	if merge != nil {
		merge(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, newLogger(env.Stderr, cfg.Log), nil
}

// mergeCommonFlags applies common flags over config (CLI wins).
// --log-level beats --verbose and --quiet.
func mergeCommonFlags(flags *commonFlags, cfg *config.Config) {
	switch {
	case flags.logLevel != "":
		cfg.Log.Level = flags.logLevel
	case flags.verbose:
		cfg.Log.Level = "debug"
	case flags.quiet:
		cfg.Log.Level = "error"
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
}
