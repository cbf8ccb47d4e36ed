package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-mdpost/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string        // MDPOST_CONFIG: config file name or path
	Timeout    time.Duration // MDPOST_TIMEOUT: per-file timeout
	Workers    int           // MDPOST_WORKERS: parallel workers

	// Tier 2 - I/O
	InputDir  string // MDPOST_INPUT_DIR: default input directory
	OutputDir string // MDPOST_OUTPUT_DIR: default output directory

	// Tier 3 - Rendering
	ImageHosts      []string // MDPOST_IMAGE_HOSTS: comma-separated URL prefixes
	MentionBase     string   // MDPOST_MENTION_BASE: absolute profile URL prefix
	RouteBase       string   // MDPOST_ROUTE_BASE: in-app route prefix
	LoadProjectText string   // MDPOST_LOAD_PROJECT_TEXT: embed button label
	HighlightStyle  string   // MDPOST_HIGHLIGHT_STYLE: chroma style
	ProbeTimeout    string   // MDPOST_PROBE_TIMEOUT: per-request probe timeout
	NoProbe         bool     // MDPOST_NO_PROBE: disable media probing
}

// knownEnvVars lists valid MDPOST_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"MDPOST_CONFIG":  true,
	"MDPOST_TIMEOUT": true,
	"MDPOST_WORKERS": true,
	// Tier 2 - I/O
	"MDPOST_INPUT_DIR":  true,
	"MDPOST_OUTPUT_DIR": true,
	// Tier 3 - Rendering
	"MDPOST_IMAGE_HOSTS":       true,
	"MDPOST_MENTION_BASE":      true,
	"MDPOST_ROUTE_BASE":        true,
	"MDPOST_LOAD_PROJECT_TEXT": true,
	"MDPOST_HIGHLIGHT_STYLE":   true,
	"MDPOST_PROBE_TIMEOUT":     true,
	"MDPOST_NO_PROBE":          true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numeric, duration and boolean values are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:      os.Getenv("MDPOST_CONFIG"),
		InputDir:        os.Getenv("MDPOST_INPUT_DIR"),
		OutputDir:       os.Getenv("MDPOST_OUTPUT_DIR"),
		MentionBase:     os.Getenv("MDPOST_MENTION_BASE"),
		RouteBase:       os.Getenv("MDPOST_ROUTE_BASE"),
		LoadProjectText: os.Getenv("MDPOST_LOAD_PROJECT_TEXT"),
		HighlightStyle:  os.Getenv("MDPOST_HIGHLIGHT_STYLE"),
		ProbeTimeout:    os.Getenv("MDPOST_PROBE_TIMEOUT"),
	}

	if timeout := os.Getenv("MDPOST_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("MDPOST_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	if hosts := os.Getenv("MDPOST_IMAGE_HOSTS"); hosts != "" {
		for _, h := range strings.Split(hosts, ",") {
			if h = strings.TrimSpace(h); h != "" {
				cfg.ImageHosts = append(cfg.ImageHosts, h)
			}
		}
	}

	if noProbe := os.Getenv("MDPOST_NO_PROBE"); noProbe != "" {
		if b, err := strconv.ParseBool(noProbe); err == nil {
			cfg.NoProbe = b
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MDPOST_* variables.
// Helps catch typos like MDPOST_WORKER instead of MDPOST_WORKERS.
func warnUnknownEnvVars(logger zerolog.Logger) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MDPOST_") {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				logger.Warn().Str("var", name).Msg("unknown environment variable (typo?)")
			}
		}
	}
}

// applyEnvConfig applies environment variable values over the loaded config.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 2 - I/O
	if env.InputDir != "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}

	// Tier 3 - Rendering
	if len(env.ImageHosts) > 0 {
		cfg.Images.AllowedHosts = env.ImageHosts
	}
	if env.MentionBase != "" {
		cfg.Mentions.BaseURL = env.MentionBase
	}
	if env.RouteBase != "" {
		cfg.Routes.Base = env.RouteBase
	}
	if env.LoadProjectText != "" {
		cfg.Embeds.LoadProjectText = env.LoadProjectText
	}
	if env.HighlightStyle != "" {
		cfg.Highlight.Style = env.HighlightStyle
	}
	if env.ProbeTimeout != "" {
		cfg.Probe.Timeout = env.ProbeTimeout
	}
	if env.NoProbe {
		cfg.Probe.Enabled = false
	}
}
