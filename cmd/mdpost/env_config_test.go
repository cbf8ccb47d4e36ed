package main

// Notes:
// - loadEnvConfig: we test every MDPOST_* variable across the three tiers.
//   Malformed timeout, worker and boolean values are ignored, not errors.
// - warnUnknownEnvVars: typo detection; known vars stay silent.
// - applyEnvConfig: env values override file values, empty env leaves them.
// - Tests use t.Setenv() which prevents t.Parallel().
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-mdpost/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable loading
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Run("Tier 1 - Essential", func(t *testing.T) {
		t.Setenv("MDPOST_CONFIG", "/path/to/config.yaml")
		t.Setenv("MDPOST_TIMEOUT", "2m")
		t.Setenv("MDPOST_WORKERS", "4")

		cfg := loadEnvConfig()

		if cfg.ConfigPath != "/path/to/config.yaml" {
			t.Errorf("ConfigPath = %q, want /path/to/config.yaml", cfg.ConfigPath)
		}
		if cfg.Timeout != 2*time.Minute {
			t.Errorf("Timeout = %v, want 2m", cfg.Timeout)
		}
		if cfg.Workers != 4 {
			t.Errorf("Workers = %d, want 4", cfg.Workers)
		}
	})

	t.Run("Tier 2 - I/O", func(t *testing.T) {
		t.Setenv("MDPOST_INPUT_DIR", "/input")
		t.Setenv("MDPOST_OUTPUT_DIR", "/output")

		cfg := loadEnvConfig()

		if cfg.InputDir != "/input" {
			t.Errorf("InputDir = %q, want /input", cfg.InputDir)
		}
		if cfg.OutputDir != "/output" {
			t.Errorf("OutputDir = %q, want /output", cfg.OutputDir)
		}
	})

	t.Run("Tier 3 - Rendering", func(t *testing.T) {
		t.Setenv("MDPOST_IMAGE_HOSTS", " https://a.example/ ,,https://b.example/")
		t.Setenv("MDPOST_MENTION_BASE", "https://social.example/users")
		t.Setenv("MDPOST_ROUTE_BASE", "/app/")
		t.Setenv("MDPOST_LOAD_PROJECT_TEXT", "Open project")
		t.Setenv("MDPOST_HIGHLIGHT_STYLE", "monokai")
		t.Setenv("MDPOST_PROBE_TIMEOUT", "3s")
		t.Setenv("MDPOST_NO_PROBE", "true")

		cfg := loadEnvConfig()

		wantHosts := []string{"https://a.example/", "https://b.example/"}
		if !slices.Equal(cfg.ImageHosts, wantHosts) {
			t.Errorf("ImageHosts = %v, want %v", cfg.ImageHosts, wantHosts)
		}
		if cfg.MentionBase != "https://social.example/users" {
			t.Errorf("MentionBase = %q", cfg.MentionBase)
		}
		if cfg.RouteBase != "/app/" {
			t.Errorf("RouteBase = %q", cfg.RouteBase)
		}
		if cfg.LoadProjectText != "Open project" {
			t.Errorf("LoadProjectText = %q", cfg.LoadProjectText)
		}
		if cfg.HighlightStyle != "monokai" {
			t.Errorf("HighlightStyle = %q", cfg.HighlightStyle)
		}
		if cfg.ProbeTimeout != "3s" {
			t.Errorf("ProbeTimeout = %q", cfg.ProbeTimeout)
		}
		if !cfg.NoProbe {
			t.Error("NoProbe = false, want true")
		}
	})

	t.Run("malformed values are ignored", func(t *testing.T) {
		t.Setenv("MDPOST_TIMEOUT", "soon")
		t.Setenv("MDPOST_WORKERS", "-2")
		t.Setenv("MDPOST_NO_PROBE", "maybe")

		cfg := loadEnvConfig()

		if cfg.Timeout != 0 {
			t.Errorf("Timeout = %v, want 0", cfg.Timeout)
		}
		if cfg.Workers != 0 {
			t.Errorf("Workers = %d, want 0", cfg.Workers)
		}
		if cfg.NoProbe {
			t.Error("NoProbe = true, want false")
		}
	})
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Run("unknown var warns", func(t *testing.T) {
		t.Setenv("MDPOST_WORKER", "2")

		var buf bytes.Buffer
		warnUnknownEnvVars(zerolog.New(&buf))

		if !strings.Contains(buf.String(), "MDPOST_WORKER") {
			t.Errorf("expected warning for MDPOST_WORKER, got %q", buf.String())
		}
	})

	t.Run("known var is silent", func(t *testing.T) {
		t.Setenv("MDPOST_WORKERS", "2")

		var buf bytes.Buffer
		warnUnknownEnvVars(zerolog.New(&buf))

		if strings.Contains(buf.String(), `"MDPOST_WORKERS"`) {
			t.Errorf("unexpected warning: %q", buf.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env over file precedence
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("env overrides file values", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		cfg.Mentions.BaseURL = "https://file.example/users"
		cfg.Output.DefaultDir = "from-file"

		applyEnvConfig(&envConfig{
			MentionBase: "https://env.example/users",
			OutputDir:   "from-env",
			ImageHosts:  []string{"https://img.example/"},
			NoProbe:     true,
		}, cfg)

		if cfg.Mentions.BaseURL != "https://env.example/users" {
			t.Errorf("Mentions.BaseURL = %q", cfg.Mentions.BaseURL)
		}
		if cfg.Output.DefaultDir != "from-env" {
			t.Errorf("Output.DefaultDir = %q", cfg.Output.DefaultDir)
		}
		if !slices.Equal(cfg.Images.AllowedHosts, []string{"https://img.example/"}) {
			t.Errorf("Images.AllowedHosts = %v", cfg.Images.AllowedHosts)
		}
		if cfg.Probe.Enabled {
			t.Error("Probe.Enabled = true, want false")
		}
	})

	t.Run("empty env keeps file values", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		cfg.Routes.Base = "/app/"
		cfg.Highlight.Style = "dracula"

		applyEnvConfig(&envConfig{}, cfg)

		if cfg.Routes.Base != "/app/" || cfg.Highlight.Style != "dracula" {
			t.Errorf("config changed: %+v", cfg)
		}
		if !cfg.Probe.Enabled {
			t.Error("Probe.Enabled = false, want true")
		}
	})
}
