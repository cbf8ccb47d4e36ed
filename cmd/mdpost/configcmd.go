package main

import (
	"fmt"
	"time"

	"github.com/alnah/go-mdpost/internal/yamlutil"
)

// runConfig prints the effective configuration after file and environment
// overrides, ready to be saved as a config file.
func runConfig(args []string, env *Environment) error {
	flags, err := parseConfigFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(flags.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	source := "defaults"
	if name := firstNonEmpty(flags.config, envCfg.ConfigPath); name != "" {
		source = name
	}
	header := fmt.Sprintf("mdpost effective configuration\nsource: %s (with MDPOST_* overrides)\ngenerated: %s",
		source, env.Now().UTC().Format(time.RFC3339))

	out, err := yamlutil.MarshalDocument(header, cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(out)
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
