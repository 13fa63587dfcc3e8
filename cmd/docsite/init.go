package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alnah/docsite/internal/config"
	"github.com/alnah/docsite/internal/yamlutil"
)

// ErrConfigExists is returned when init would overwrite a config file.
var ErrConfigExists = errors.New("config file already exists")

// runInit writes a starter config: the defaults plus one example section.
func runInit(args []string, env *Environment) error {
	flags, positional, err := parseInitFlags(args)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: init takes at most one path", ErrUsage)
	}

	path := defaultConfigName + ".yaml"
	if len(positional) == 1 {
		path = positional[0]
	}

	if flags.force {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}

	if err := yamlutil.WriteFile(path, starterConfig()); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, path)
		}
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(env.Stdout, "Created %s\n", path)
	return nil
}

func starterConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Structure = []config.Section{
		{Title: "Getting Started", Docs: []config.Entry{{Name: "installation"}}},
	}
	return cfg
}
