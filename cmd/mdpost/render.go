package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-mdpost"
	"github.com/alnah/go-mdpost/internal/config"
	"github.com/alnah/go-mdpost/internal/fileutil"
	"github.com/alnah/go-mdpost/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage           = errors.New("invalid usage")
	ErrNoInput         = errors.New("no input specified")
	ErrReadMarkdown    = errors.New("failed to read markdown")
	ErrWriteHTML       = errors.New("failed to write HTML")
	ErrNoMarkdownFiles = errors.New("no markdown files found")
	ErrInvalidTimeout  = errors.New("invalid timeout")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// DefaultTimeout bounds one file: rendering plus media probes.
const DefaultTimeout = time.Minute

// maxMarkdownSize caps a single post read from disk or stdin.
const maxMarkdownSize = 8 << 20

// stdinPath selects stdin as input and stdout as output.
const stdinPath = "-"

// PostRenderer is the interface for the rendering service.
type PostRenderer interface {
	Render(ctx context.Context, markdown string, opts mdpost.Options) (*mdpost.Result, error)
}

// Compile-time interface implementation check.
var _ PostRenderer = (*mdpost.Renderer)(nil)

// renderParams groups parameters shared across batch/file rendering.
type renderParams struct {
	opts    mdpost.Options
	page    *pageWriter // nil writes bare fragments
	timeout time.Duration
	logger  zerolog.Logger
}

// runRender orchestrates the render command.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	setMaxProcs(logger)
	warnUnknownEnvVars(logger)

	// Resolve configuration: defaults < file < env < flags
	envCfg := loadEnvConfig()
	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	timeout, err := resolveTimeout(flags.timeout, envCfg.Timeout)
	if err != nil {
		return err
	}

	renderer, err := newRenderer(cfg, logger, env.HTTPClient)
	if err != nil {
		return err
	}

	params := &renderParams{
		opts:    optionsFromConfig(cfg),
		timeout: timeout,
		logger:  logger,
	}
	if cfg.Output.Standalone {
		params.page, err = newPageWriter(cfg)
		if err != nil {
			return err
		}
	}

	inputPath, err := resolveInputPath(positional, cfg)
	if err != nil {
		return err
	}

	if inputPath == stdinPath {
		return renderStream(ctx, renderer, env.Stdin, flags.output, params, env)
	}

	outputDir := resolveOutputDir(flags.output, cfg)
	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s%s", ErrNoMarkdownFiles, inputPath, hints.ForNoMarkdownFiles())
	}

	workers := flags.workers
	if workers == 0 {
		workers = envCfg.Workers
	}
	workers = mdpost.ResolveWorkers(workers)
	logger.Debug().Int("workers", workers).Int("files", len(files)).Msg("starting batch")

	results := renderBatch(ctx, renderer, files, params, workers)

	failedCount := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failedCount > 0 {
		return fmt.Errorf("%d render(s) failed", failedCount)
	}

	return nil
}

// loadConfig loads the config named by flag or MDPOST_CONFIG, or defaults.
func loadConfig(flagConfig string, env *envConfig) (*config.Config, error) {
	name := flagConfig
	if name == "" {
		name = env.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *renderFlags, cfg *config.Config) {
	if flags.inline {
		cfg.Render.Inline = true
	}
	if flags.loadProjectText != "" {
		cfg.Embeds.LoadProjectText = flags.loadProjectText
	}
	if flags.highlightStyle != "" {
		cfg.Highlight.Style = flags.highlightStyle
	}

	// Image flags
	if flags.images.disabled {
		cfg.Images.Enabled = false
	}
	if flags.images.anyHost {
		cfg.Images.AnyHost = true
	}
	if len(flags.images.hosts) > 0 {
		cfg.Images.AllowedHosts = flags.images.hosts
	}

	// Link flags
	if flags.links.mentionBase != "" {
		cfg.Mentions.BaseURL = flags.links.mentionBase
	}
	if flags.links.routeBase != "" {
		cfg.Routes.Base = flags.links.routeBase
	}

	// Probe flags
	if flags.probe.disabled {
		cfg.Probe.Enabled = false
	}
	if flags.probe.timeout != "" {
		cfg.Probe.Timeout = flags.probe.timeout
	}
	if flags.probe.concurrency > 0 {
		cfg.Probe.Concurrency = flags.probe.concurrency
	}

	// Page flags
	if flags.page.standalone {
		cfg.Output.Standalone = true
	}
	if flags.page.title != "" {
		cfg.Output.Title = flags.page.title
	}
	if flags.page.style != "" {
		cfg.Assets.Style = flags.page.style
	}
	if flags.page.assetPath != "" {
		cfg.Assets.BasePath = flags.page.assetPath
	}
}

// newRenderer builds the library renderer from resolved config.
func newRenderer(cfg *config.Config, logger zerolog.Logger, client *http.Client) (*mdpost.Renderer, error) {
	opts := []mdpost.Option{
		mdpost.WithLogger(logger),
		mdpost.WithMediaProbing(cfg.Probe.Enabled),
		mdpost.WithProbeTimeout(cfg.ProbeTimeout()),
	}
	if cfg.Probe.Concurrency > 0 {
		opts = append(opts, mdpost.WithProbeConcurrency(cfg.Probe.Concurrency))
	}
	if len(cfg.Images.AllowedHosts) > 0 {
		opts = append(opts, mdpost.WithImageHosts(cfg.Images.AllowedHosts...))
	}
	if cfg.Mentions.BaseURL != "" {
		opts = append(opts, mdpost.WithMentionBase(cfg.Mentions.BaseURL))
	}
	if cfg.Routes.Base != "" {
		opts = append(opts, mdpost.WithRouter(mdpost.PathRouter{Base: cfg.Routes.Base}))
	}
	if cfg.Highlight.Style != "" {
		opts = append(opts, mdpost.WithHighlightStyle(cfg.Highlight.Style))
	}
	if client != nil {
		opts = append(opts, mdpost.WithHTTPClient(client))
	}

	r, err := mdpost.NewRenderer(opts...)
	if err != nil {
		switch {
		case errors.Is(err, mdpost.ErrInvalidMentionBase):
			return nil, fmt.Errorf("%w%s", err, hints.ForMentionBase())
		case errors.Is(err, mdpost.ErrUnknownStyle):
			return nil, fmt.Errorf("%w%s", err, hints.ForStyleNotFound(mdpost.HighlightStyles()))
		}
		return nil, err
	}
	return r, nil
}

// optionsFromConfig maps resolved config onto per-post options.
func optionsFromConfig(cfg *config.Config) mdpost.Options {
	opts := mdpost.DefaultOptions()
	opts.Inline = cfg.Render.Inline
	opts.Images = cfg.Images.Enabled
	opts.AnyImageHost = cfg.Images.AnyHost
	if cfg.Embeds.LoadProjectText != "" {
		opts.LoadProjectText = cfg.Embeds.LoadProjectText
	}
	return opts
}

// resolveTimeout picks the per-file timeout: flag > env > default.
func resolveTimeout(flagTimeout string, envTimeout time.Duration) (time.Duration, error) {
	if flagTimeout != "" {
		d, err := time.ParseDuration(flagTimeout)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidTimeout, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: must be positive, got %v", ErrInvalidTimeout, d)
		}
		return d, nil
	}
	if envTimeout > 0 {
		return envTimeout, nil
	}
	return DefaultTimeout, nil
}

// resolveInputPath returns the positional input, falling back to config.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir returns the output flag, falling back to config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// renderStream renders one post from r. Output goes to stdout unless an
// .html output path is given.
func renderStream(ctx context.Context, renderer PostRenderer, r io.Reader, output string, params *renderParams, env *Environment) error {
	content, err := io.ReadAll(io.LimitReader(r, maxMarkdownSize+1))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}
	if len(content) > maxMarkdownSize {
		return fmt.Errorf("%w: input exceeds %d bytes", ErrReadMarkdown, maxMarkdownSize)
	}

	out, err := renderDocument(ctx, renderer, string(content), "post", params)
	if err != nil {
		return err
	}

	if output == "" || output == stdinPath {
		if _, err := io.WriteString(env.Stdout, out); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteHTML, err)
		}
		return nil
	}

	if !strings.HasSuffix(output, ".html") {
		return fmt.Errorf("%w: stdin output must be an .html file, got %q", ErrUsage, output)
	}
	return writeOutput(output, out)
}

// renderDocument runs the pipeline, waits for media probes within the
// timeout, and wraps the fragment when standalone pages are requested.
func renderDocument(ctx context.Context, renderer PostRenderer, markdown, name string, params *renderParams) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, params.timeout)
	defer cancel()

	res, err := renderer.Render(ctx, markdown, params.opts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w%s", err, hints.ForTimeout())
		}
		return "", err
	}

	// Probes stop at the deadline; whatever was swapped by then is kept
	res.Wait()

	fragment, err := res.HTML()
	if err != nil {
		return "", err
	}

	params.logger.Debug().
		Str("post", name).
		Int("embeds", len(res.Embeds())).
		Int("media", res.MediaReplaced()).
		Msg("post ready")

	if params.page == nil {
		return fragment, nil
	}
	return params.page.Wrap(fragment, name)
}

// writeOutput writes content to path, creating parent directories.
func writeOutput(path, content string) error {
	if err := mkdirAll(filepath.Dir(path)); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, []byte(content), filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteHTML, err)
	}
	return nil
}

// setMaxProcs aligns GOMAXPROCS with the container CPU quota.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func setMaxProcs(logger zerolog.Logger) {
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug().Msgf(format, args...)
	}))
}
