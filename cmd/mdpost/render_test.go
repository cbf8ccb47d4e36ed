package main

// Notes:
// - mergeFlags: we test that each flag group overrides config and that unset
//   flags leave config untouched.
// - resolveTimeout / resolveInputPath / resolveOutputDir: precedence rules.
// - renderStream / renderBatch: real mdpost renderer with probing disabled,
//   so no network is needed. A failing PostRenderer covers error plumbing.
// - runRender end-to-end paths live in main_test.go.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-mdpost"
	"github.com/alnah/go-mdpost/internal/config"
)

// failingRenderer always returns err.
type failingRenderer struct {
	err error
}

func (f failingRenderer) Render(context.Context, string, mdpost.Options) (*mdpost.Result, error) {
	return nil, f.err
}

func newTestRenderer(t *testing.T) *mdpost.Renderer {
	t.Helper()
	r, err := mdpost.NewRenderer(mdpost.WithMediaProbing(false))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func newTestParams() *renderParams {
	return &renderParams{
		opts:    mdpost.DefaultOptions(),
		timeout: 5 * time.Second,
		logger:  zerolog.Nop(),
	}
}

func newTestEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &stderr,
	}
	return env, &stdout, &stderr
}

// ---------------------------------------------------------------------------
// TestMergeFlags - CLI over config
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	t.Run("flags override config", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		cfg.Mentions.BaseURL = "https://file.example/users"

		mergeFlags(&renderFlags{
			inline:          true,
			loadProjectText: "Open",
			highlightStyle:  "monokai",
			images:          imageFlags{disabled: true, anyHost: true, hosts: []string{"https://a.example/"}},
			links:           linkFlags{mentionBase: "https://flag.example/users", routeBase: "/app/"},
			probe:           probeFlags{disabled: true, timeout: "2s", concurrency: 3},
			page:            pageFlags{standalone: true, title: "Feed", style: "night", assetPath: "assets"},
		}, cfg)

		if !cfg.Render.Inline || cfg.Embeds.LoadProjectText != "Open" || cfg.Highlight.Style != "monokai" {
			t.Errorf("render settings not merged: %+v %+v %+v", cfg.Render, cfg.Embeds, cfg.Highlight)
		}
		if cfg.Images.Enabled || !cfg.Images.AnyHost || len(cfg.Images.AllowedHosts) != 1 {
			t.Errorf("images not merged: %+v", cfg.Images)
		}
		if cfg.Mentions.BaseURL != "https://flag.example/users" || cfg.Routes.Base != "/app/" {
			t.Errorf("links not merged: %+v %+v", cfg.Mentions, cfg.Routes)
		}
		if cfg.Probe.Enabled || cfg.Probe.Timeout != "2s" || cfg.Probe.Concurrency != 3 {
			t.Errorf("probe not merged: %+v", cfg.Probe)
		}
		if !cfg.Output.Standalone || cfg.Output.Title != "Feed" || cfg.Assets.Style != "night" || cfg.Assets.BasePath != "assets" {
			t.Errorf("page not merged: %+v %+v", cfg.Output, cfg.Assets)
		}
	})

	t.Run("unset flags keep config", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		cfg.Routes.Base = "/app/"

		mergeFlags(&renderFlags{}, cfg)

		if cfg.Routes.Base != "/app/" {
			t.Errorf("Routes.Base = %q, want /app/", cfg.Routes.Base)
		}
		if !cfg.Images.Enabled || !cfg.Probe.Enabled {
			t.Errorf("defaults changed: %+v %+v", cfg.Images, cfg.Probe)
		}
	})
}

// ---------------------------------------------------------------------------
// TestResolveTimeout - Timeout precedence
// ---------------------------------------------------------------------------

func TestResolveTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		flag    string
		env     time.Duration
		want    time.Duration
		wantErr bool
	}{
		{"default", "", 0, DefaultTimeout, false},
		{"env", "", 45 * time.Second, 45 * time.Second, false},
		{"flag beats env", "10s", 45 * time.Second, 10 * time.Second, false},
		{"unparsable", "soon", 0, 0, true},
		{"negative", "-1s", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveTimeout(tt.flag, tt.env)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTimeout) {
					t.Errorf("error = %v, want ErrInvalidTimeout", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveTimeout = %v, want %v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestResolvePaths - Input/output fallback to config
// ---------------------------------------------------------------------------

func TestResolvePaths(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	if _, err := resolveInputPath(nil, cfg); !errors.Is(err, ErrNoInput) {
		t.Errorf("resolveInputPath without input: error = %v, want ErrNoInput", err)
	}

	cfg.Input.DefaultDir = "posts"
	cfg.Output.DefaultDir = "public"

	if got, _ := resolveInputPath(nil, cfg); got != "posts" {
		t.Errorf("resolveInputPath fallback = %q, want posts", got)
	}
	if got, _ := resolveInputPath([]string{"draft.md"}, cfg); got != "draft.md" {
		t.Errorf("resolveInputPath positional = %q, want draft.md", got)
	}
	if got := resolveOutputDir("", cfg); got != "public" {
		t.Errorf("resolveOutputDir fallback = %q, want public", got)
	}
	if got := resolveOutputDir("out", cfg); got != "out" {
		t.Errorf("resolveOutputDir flag = %q, want out", got)
	}
}

// ---------------------------------------------------------------------------
// TestOptionsFromConfig - Per-post options
// ---------------------------------------------------------------------------

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	opts := optionsFromConfig(cfg)
	if !opts.Images || opts.Inline || opts.AnyImageHost {
		t.Errorf("default options = %+v", opts)
	}
	if opts.LoadProjectText != mdpost.DefaultLoadProjectText {
		t.Errorf("LoadProjectText = %q, want default", opts.LoadProjectText)
	}

	cfg.Render.Inline = true
	cfg.Images.Enabled = false
	cfg.Images.AnyHost = true
	cfg.Embeds.LoadProjectText = "Open"
	opts = optionsFromConfig(cfg)
	if opts.Images || !opts.Inline || !opts.AnyImageHost || opts.LoadProjectText != "Open" {
		t.Errorf("configured options = %+v", opts)
	}
}

// ---------------------------------------------------------------------------
// TestNewRenderer - Config to renderer options
// ---------------------------------------------------------------------------

func TestNewRenderer(t *testing.T) {
	t.Parallel()

	t.Run("unknown highlight style", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		cfg.Highlight.Style = "no-such-style"

		_, err := newRenderer(cfg, zerolog.Nop(), nil)
		if !errors.Is(err, mdpost.ErrUnknownStyle) {
			t.Fatalf("error = %v, want ErrUnknownStyle", err)
		}
		if !strings.Contains(err.Error(), "hint:") {
			t.Errorf("expected hint in %q", err.Error())
		}
	})

	t.Run("route base", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		cfg.Probe.Enabled = false
		cfg.Routes.Base = "/app/"

		r, err := newRenderer(cfg, zerolog.Nop(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		res, err := r.Render(context.Background(), "hi @alice", mdpost.DefaultOptions())
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		html, _ := res.HTML()
		if !strings.Contains(html, `href="/app/users/alice"`) {
			t.Errorf("expected routed mention, got %q", html)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRenderStream - Stdin mode
// ---------------------------------------------------------------------------

func TestRenderStream(t *testing.T) {
	t.Parallel()

	t.Run("writes fragment to stdout", func(t *testing.T) {
		t.Parallel()
		env, stdout, _ := newTestEnv()

		err := renderStream(context.Background(), newTestRenderer(t), strings.NewReader("hello @alice"), "", newTestParams(), env)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout.String(), `href="/users/alice"`) {
			t.Errorf("stdout = %q, want mention link", stdout.String())
		}
	})

	t.Run("writes html file", func(t *testing.T) {
		t.Parallel()
		env, _, _ := newTestEnv()
		out := filepath.Join(t.TempDir(), "nested", "post.html")

		err := renderStream(context.Background(), newTestRenderer(t), strings.NewReader("**bold**"), out, newTestParams(), env)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		if !strings.Contains(string(data), "<strong>bold</strong>") {
			t.Errorf("output = %q", data)
		}
	})

	t.Run("rejects non-html output", func(t *testing.T) {
		t.Parallel()
		env, _, _ := newTestEnv()

		err := renderStream(context.Background(), newTestRenderer(t), strings.NewReader("x"), "post.txt", newTestParams(), env)
		if !errors.Is(err, ErrUsage) {
			t.Errorf("error = %v, want ErrUsage", err)
		}
	})

	t.Run("oversized input", func(t *testing.T) {
		t.Parallel()
		env, _, _ := newTestEnv()
		big := strings.NewReader(strings.Repeat("a", maxMarkdownSize+1))

		err := renderStream(context.Background(), newTestRenderer(t), big, "", newTestParams(), env)
		if !errors.Is(err, ErrReadMarkdown) {
			t.Errorf("error = %v, want ErrReadMarkdown", err)
		}
	})

	t.Run("timeout adds hint", func(t *testing.T) {
		t.Parallel()
		env, _, _ := newTestEnv()
		r := failingRenderer{err: context.DeadlineExceeded}

		err := renderStream(context.Background(), r, strings.NewReader("x"), "", newTestParams(), env)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("error = %v, want DeadlineExceeded", err)
		}
		if !strings.Contains(err.Error(), "--timeout") {
			t.Errorf("expected timeout hint in %q", err.Error())
		}
	})
}

// ---------------------------------------------------------------------------
// TestRenderBatch - Concurrent file rendering
// ---------------------------------------------------------------------------

func TestRenderBatch(t *testing.T) {
	t.Parallel()

	t.Run("renders every file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		for _, name := range []string{"a.md", "b.md", "c.md"} {
			writeFile(t, dir, name, "# "+name)
		}
		files, err := discoverFiles(dir, "")
		if err != nil {
			t.Fatalf("discoverFiles: %v", err)
		}

		results := renderBatch(context.Background(), newTestRenderer(t), files, newTestParams(), 2)

		if got := countResults(results); got.Succeeded != 3 || got.Failed != 0 {
			t.Fatalf("summary = %+v, want 3 succeeded", got)
		}
		for _, r := range results {
			if _, err := os.Stat(r.OutputPath); err != nil {
				t.Errorf("missing output %s: %v", r.OutputPath, err)
			}
		}
	})

	t.Run("cancelled context fails remaining files", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, dir, "a.md", "a")
		files, _ := discoverFiles(dir, "")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results := renderBatch(ctx, newTestRenderer(t), files, newTestParams(), 1)

		if len(results) != 1 || !errors.Is(results[0].Err, context.Canceled) {
			t.Errorf("results = %+v, want canceled", results)
		}
	})

	t.Run("renderer error is recorded", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, dir, "a.md", "a")
		files, _ := discoverFiles(dir, "")
		boom := errors.New("boom")

		results := renderBatch(context.Background(), failingRenderer{err: boom}, files, newTestParams(), 4)

		if len(results) != 1 || !errors.Is(results[0].Err, boom) {
			t.Errorf("results = %+v, want boom", results)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		if got := renderBatch(context.Background(), newTestRenderer(t), nil, newTestParams(), 2); got != nil {
			t.Errorf("renderBatch(nil) = %v, want nil", got)
		}
	})
}

// ---------------------------------------------------------------------------
// TestPrintResults - Result reporting
// ---------------------------------------------------------------------------

func TestPrintResults(t *testing.T) {
	t.Parallel()

	results := []RenderResult{
		{InputPath: "a.md", OutputPath: "a.html", Duration: time.Millisecond},
		{InputPath: "b.md", Err: errors.New("boom")},
	}

	t.Run("normal", func(t *testing.T) {
		t.Parallel()
		env, stdout, stderr := newTestEnv()

		failed := printResults(results, false, false, env)

		if failed != 1 {
			t.Errorf("failed = %d, want 1", failed)
		}
		if !strings.Contains(stdout.String(), "Created a.html") {
			t.Errorf("stdout = %q", stdout.String())
		}
		if !strings.Contains(stdout.String(), "1 succeeded, 1 failed") {
			t.Errorf("stdout missing summary: %q", stdout.String())
		}
		if !strings.Contains(stderr.String(), "FAILED b.md: boom") {
			t.Errorf("stderr = %q", stderr.String())
		}
	})

	t.Run("quiet", func(t *testing.T) {
		t.Parallel()
		env, stdout, stderr := newTestEnv()

		printResults(results, true, false, env)

		if stdout.Len() != 0 {
			t.Errorf("quiet stdout = %q, want empty", stdout.String())
		}
		if !strings.Contains(stderr.String(), "FAILED") {
			t.Errorf("quiet mode must still report failures, got %q", stderr.String())
		}
	})

	t.Run("verbose", func(t *testing.T) {
		t.Parallel()
		env, stdout, _ := newTestEnv()

		printResults(results[:1], false, true, env)

		if !strings.Contains(stdout.String(), "a.md -> a.html") {
			t.Errorf("verbose stdout = %q", stdout.String())
		}
	})
}
