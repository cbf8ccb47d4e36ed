package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdpost/internal/fileutil"
	"github.com/alnah/go-mdpost/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDirName is the directory searched under the user config dir.
const AppDirName = "go-mdpost"

// Field limits for multi-tenant safety.
const (
	MaxURLLength         = 2048 // Browser limit
	MaxLabelLength       = 100  // Placeholder button label
	MaxStyleLength       = 50   // "github-dark", "monokailight"
	MaxPathLength        = 4096 // PATH_MAX
	MaxTitleLength       = 200  // Standalone page title
	MaxImageHosts        = 64
	MaxProbeConcurrency  = 32
	MaxProbeTimeout      = 2 * time.Minute
	DefaultProbeTimeout  = "10s"
	DefaultProbeParallel = 4
)

const defaultProbeTimeout = 10 * time.Second

// Config holds all configuration for rendering posts.
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Render    RenderConfig    `yaml:"render"`
	Images    ImagesConfig    `yaml:"images"`
	Mentions  MentionsConfig  `yaml:"mentions"`
	Routes    RoutesConfig    `yaml:"routes"`
	Embeds    EmbedsConfig    `yaml:"embeds"`
	Probe     ProbeConfig     `yaml:"probe"`
	Highlight HighlightConfig `yaml:"highlight"`
	Assets    AssetsConfig    `yaml:"assets"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
	Standalone bool   `yaml:"standalone"` // Wrap fragments in a full HTML page
	Title      string `yaml:"title"`      // Page title (empty = file name)
}

// RenderConfig defines per-post rendering options.
type RenderConfig struct {
	Inline bool `yaml:"inline"` // No block elements, no embeds
}

// ImagesConfig defines image visibility options.
type ImagesConfig struct {
	Enabled      bool     `yaml:"enabled"`      // false strips every image
	AnyHost      bool     `yaml:"anyHost"`      // bypass the allow-list
	AllowedHosts []string `yaml:"allowedHosts"` // URL prefixes (empty = built-in list)
}

// MentionsConfig defines how @mentions are linked.
type MentionsConfig struct {
	BaseURL string `yaml:"baseURL"` // Absolute profile URL prefix (empty = built-in)
}

// RoutesConfig defines in-app route resolution.
type RoutesConfig struct {
	Base string `yaml:"base"` // Prefix for users/<name> routes (empty = "/")
}

// EmbedsConfig defines project embed placeholders.
type EmbedsConfig struct {
	LoadProjectText string `yaml:"loadProjectText"` // Button label (empty = "Load project")
}

// ProbeConfig defines media probing.
type ProbeConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Timeout     string `yaml:"timeout"`     // Per request, Go duration (e.g., "10s")
	Concurrency int    `yaml:"concurrency"` // In-flight probes per post
}

// HighlightConfig defines code highlighting.
type HighlightConfig struct {
	Style string `yaml:"style"` // chroma style name (empty = github-dark)
}

// AssetsConfig defines standalone page asset loading.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
	Style    string `yaml:"style"`    // Page stylesheet name (empty = default)
	Template string `yaml:"template"` // Page template name (empty = page)
}

// DefaultConfig returns the configuration used when no file is given.
// Images and probing are on, matching the library defaults.
func DefaultConfig() *Config {
	return &Config{
		Images: ImagesConfig{Enabled: true},
		Probe: ProbeConfig{
			Enabled:     true,
			Timeout:     DefaultProbeTimeout,
			Concurrency: DefaultProbeParallel,
		},
	}
}

// ProbeTimeout returns the parsed probe timeout, falling back to the default
// when unset. Validate rejects unparsable values.
func (c *Config) ProbeTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Probe.Timeout); err == nil && d > 0 {
		return d
	}
	return defaultProbeTimeout
}

// Validate checks field lengths and ranges to prevent abuse in multi-tenant
// scenarios. Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("input.defaultDir", c.Input.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.title", c.Output.Title, MaxTitleLength); err != nil {
		return err
	}

	// Validate image hosts
	if len(c.Images.AllowedHosts) > MaxImageHosts {
		return fmt.Errorf("%w: images.allowedHosts has %d entries (max %d)", ErrInvalidValue, len(c.Images.AllowedHosts), MaxImageHosts)
	}
	for i, host := range c.Images.AllowedHosts {
		field := fmt.Sprintf("images.allowedHosts[%d]", i)
		if err := validateFieldLength(field, host, MaxURLLength); err != nil {
			return err
		}
		if strings.TrimSpace(host) == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidValue, field)
		}
	}

	// Validate link targets
	if err := validateFieldLength("mentions.baseURL", c.Mentions.BaseURL, MaxURLLength); err != nil {
		return err
	}
	if c.Mentions.BaseURL != "" && !isAbsoluteURL(c.Mentions.BaseURL) {
		return fmt.Errorf("%w: mentions.baseURL must be an absolute URL, got %q", ErrInvalidValue, c.Mentions.BaseURL)
	}
	if err := validateFieldLength("routes.base", c.Routes.Base, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("embeds.loadProjectText", c.Embeds.LoadProjectText, MaxLabelLength); err != nil {
		return err
	}

	// Validate probe settings
	if c.Probe.Timeout != "" {
		d, err := time.ParseDuration(c.Probe.Timeout)
		if err != nil {
			return fmt.Errorf("%w: probe.timeout: %v", ErrInvalidValue, err)
		}
		if d <= 0 || d > MaxProbeTimeout {
			return fmt.Errorf("%w: probe.timeout must be between 0 and %v, got %v", ErrInvalidValue, MaxProbeTimeout, d)
		}
	}
	if c.Probe.Concurrency < 0 || c.Probe.Concurrency > MaxProbeConcurrency {
		return fmt.Errorf("%w: probe.concurrency must be between 0 and %d, got %d", ErrInvalidValue, MaxProbeConcurrency, c.Probe.Concurrency)
	}

	// Validate style names
	if err := validateFieldLength("highlight.style", c.Highlight.Style, MaxStyleLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.style", c.Assets.Style, MaxStyleLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.template", c.Assets.Template, MaxStyleLength); err != nil {
		return err
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields missing from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists where a config name is looked up, in order:
// current directory, then the user config directory, .yaml before .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDirName, name+ext))
		}
	}

	return paths
}

// resolveConfigPath returns the first existing SearchPaths entry.
func resolveConfigPath(name string) (string, error) {
	triedPaths := SearchPaths(name)
	for _, p := range triedPaths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
