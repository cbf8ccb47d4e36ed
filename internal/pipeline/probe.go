package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// ErrProbeStatus indicates the probed resource did not answer 200 OK.
var ErrProbeStatus = errors.New("unexpected probe status")

// Probe defaults.
const (
	DefaultProbeConcurrency = 4
	DefaultProbeTimeout     = 10 * time.Second

	// maxDrain bounds how much of a response body is read before closing,
	// so small responses can reuse the connection.
	maxDrain = 4 << 10
)

// MediaKind is what a probed image source turned out to be.
type MediaKind int

const (
	MediaNone MediaKind = iota
	MediaAudio
	MediaVideo
)

// String returns the element name for the kind ("" for MediaNone).
func (k MediaKind) String() string {
	switch k {
	case MediaAudio:
		return "audio"
	case MediaVideo:
		return "video"
	}
	return ""
}

// MediaKindFor classifies a Content-Type header value.
func MediaKindFor(contentType string) MediaKind {
	switch {
	case strings.HasPrefix(contentType, "audio/"):
		return MediaAudio
	case strings.HasPrefix(contentType, "video/"):
		return MediaVideo
	}
	return MediaNone
}

// MediaProber inspects a resource and reports its media kind.
type MediaProber interface {
	Probe(ctx context.Context, src string) (MediaKind, error)
}

// HTTPProber fetches the resource and reads its Content-Type.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber creates an HTTPProber. A nil client selects http.DefaultClient;
// per-probe deadlines come from the context.
func NewHTTPProber(client *http.Client) *HTTPProber {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProber{client: client}
}

// Probe issues a GET for src. Only a 200 response is classified.
func (p *HTTPProber) Probe(ctx context.Context, src string) (MediaKind, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return MediaNone, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return MediaNone, err
	}
	defer func() {
		_, _ = io.CopyN(io.Discard, resp.Body, maxDrain)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return MediaNone, fmt.Errorf("%w: %d", ErrProbeStatus, resp.StatusCode)
	}
	return MediaKindFor(resp.Header.Get("Content-Type")), nil
}

// ProbeConfig bounds a probe run.
type ProbeConfig struct {
	Concurrency int
	Timeout     time.Duration
}

func (c ProbeConfig) withDefaults() ProbeConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultProbeConcurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultProbeTimeout
	}
	return c
}

// ProbeSet is a running batch of media probes over one fragment.
// It finishes on its own; Cancel stops outstanding requests early.
type ProbeSet struct {
	cancel   context.CancelFunc
	done     chan struct{}
	started  int
	replaced atomic.Int64
}

type probeTask struct {
	img *html.Node
	src string
}

// StartProbes launches one probe per image in f whose source is an absolute
// http(s) URL. mu guards f: replacements take it, and so must any reader of
// f while the set is running.
func StartProbes(ctx context.Context, f *Fragment, mu *sync.Mutex, prober MediaProber, cfg ProbeConfig, logger zerolog.Logger) *ProbeSet {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(ctx)

	mu.Lock()
	var tasks []probeTask
	for _, img := range f.Elements("img") {
		src := Attr(img, "src")
		if !isProbeable(src) {
			continue
		}
		tasks = append(tasks, probeTask{img: img, src: src})
	}
	mu.Unlock()

	ps := &ProbeSet{
		cancel:  cancel,
		done:    make(chan struct{}),
		started: len(tasks),
	}

	go func() {
		defer close(ps.done)
		defer cancel()

		var g errgroup.Group
		g.SetLimit(cfg.Concurrency)
		for _, task := range tasks {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				ps.run(ctx, f, mu, prober, cfg.Timeout, task, logger)
				return nil
			})
		}
		_ = g.Wait()
	}()

	return ps
}

func (ps *ProbeSet) run(ctx context.Context, f *Fragment, mu *sync.Mutex, prober MediaProber, timeout time.Duration, task probeTask, logger zerolog.Logger) {
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	kind, err := prober.Probe(pctx, task.src)
	if err != nil {
		logger.Debug().Err(err).Str("src", task.src).Msg("media probe skipped")
		return
	}
	if kind == MediaNone {
		return
	}

	media := newElement(kind.String(),
		html.Attribute{Key: "src", Val: task.src},
		html.Attribute{Key: "controls", Val: ""},
	)

	mu.Lock()
	defer mu.Unlock()
	if !f.Contains(task.img) {
		return
	}
	replaceNode(task.img, media)
	ps.replaced.Add(1)
	logger.Debug().Str("src", task.src).Str("kind", kind.String()).Msg("image replaced by media element")
}

// Wait blocks until every probe has finished or been cancelled.
func (ps *ProbeSet) Wait() {
	<-ps.done
}

// Done is closed when the set has finished.
func (ps *ProbeSet) Done() <-chan struct{} {
	return ps.done
}

// Cancel aborts outstanding probes. Replacements already made stay.
func (ps *ProbeSet) Cancel() {
	ps.cancel()
}

// Started returns the number of images queued for probing.
func (ps *ProbeSet) Started() int {
	return ps.started
}

// Replaced returns how many images have been swapped so far.
func (ps *ProbeSet) Replaced() int {
	return int(ps.replaced.Load())
}

func isProbeable(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
