package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newMediaServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/song":
			w.Header().Set("Content-Type", "audio/mpeg")
		case "/clip":
			w.Header().Set("Content-Type", "video/mp4")
		case "/pic":
			w.Header().Set("Content-Type", "image/png")
		default:
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("data"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// blockingProber waits for its context, counting calls.
type blockingProber struct {
	mu    sync.Mutex
	calls int
}

func (p *blockingProber) Probe(ctx context.Context, _ string) (MediaKind, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	<-ctx.Done()
	return MediaNone, ctx.Err()
}

// gatedProber reports video once release is closed.
type gatedProber struct {
	release chan struct{}
}

func (p *gatedProber) Probe(ctx context.Context, _ string) (MediaKind, error) {
	select {
	case <-p.release:
		return MediaVideo, nil
	case <-ctx.Done():
		return MediaNone, ctx.Err()
	}
}

func TestMediaKindFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        MediaKind
	}{
		{"audio/mpeg", MediaAudio},
		{"audio/ogg; codecs=opus", MediaAudio},
		{"video/mp4", MediaVideo},
		{"image/png", MediaNone},
		{"", MediaNone},
		{"text/html", MediaNone},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			t.Parallel()

			if got := MediaKindFor(tt.contentType); got != tt.want {
				t.Errorf("MediaKindFor(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestHTTPProber_Probe(t *testing.T) {
	t.Parallel()
	srv := newMediaServer(t)
	p := NewHTTPProber(srv.Client())

	kind, err := p.Probe(context.Background(), srv.URL+"/song")
	if err != nil || kind != MediaAudio {
		t.Errorf("Probe(/song) = %v, %v; want audio", kind, err)
	}

	_, err = p.Probe(context.Background(), srv.URL+"/missing")
	if !errors.Is(err, ErrProbeStatus) {
		t.Errorf("Probe(/missing) error = %v, want ErrProbeStatus", err)
	}
}

func TestStartProbes_ReplacesMedia(t *testing.T) {
	t.Parallel()
	srv := newMediaServer(t)

	f := mustParse(t, `<p>`+
		`<img src="`+srv.URL+`/song">`+
		`<img src="`+srv.URL+`/clip">`+
		`<img src="`+srv.URL+`/pic">`+
		`<img src="`+srv.URL+`/missing">`+
		`<img src="/relative.png">`+
		`</p>`)
	var mu sync.Mutex

	ps := StartProbes(context.Background(), f, &mu, NewHTTPProber(srv.Client()), ProbeConfig{Concurrency: 2, Timeout: 5 * time.Second}, zerolog.Nop())
	ps.Wait()

	if ps.Started() != 4 {
		t.Errorf("Started = %d, want 4 (relative sources are skipped)", ps.Started())
	}
	if ps.Replaced() != 2 {
		t.Errorf("Replaced = %d, want 2", ps.Replaced())
	}

	mu.Lock()
	out := mustHTML(t, f)
	mu.Unlock()
	for _, want := range []string{
		`<audio src="` + srv.URL + `/song" controls="">`,
		`<video src="` + srv.URL + `/clip" controls="">`,
		`<img src="` + srv.URL + `/pic"/>`,
		`<img src="/relative.png"/>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStartProbes_Cancel(t *testing.T) {
	t.Parallel()

	f := mustParse(t, `<img src="https://a.example/1"><img src="https://a.example/2">`)
	var mu sync.Mutex
	prober := &blockingProber{}

	ps := StartProbes(context.Background(), f, &mu, prober, ProbeConfig{Timeout: time.Minute}, zerolog.Nop())
	ps.Cancel()

	select {
	case <-ps.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("probe set did not stop after Cancel")
	}
	if ps.Replaced() != 0 {
		t.Errorf("Replaced = %d, want 0", ps.Replaced())
	}
}

func TestStartProbes_Timeout(t *testing.T) {
	t.Parallel()

	f := mustParse(t, `<img src="https://slow.example/a">`)
	var mu sync.Mutex

	ps := StartProbes(context.Background(), f, &mu, &blockingProber{}, ProbeConfig{Timeout: 10 * time.Millisecond}, zerolog.Nop())

	select {
	case <-ps.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("probe did not time out")
	}
	if len(f.Elements("img")) != 1 {
		t.Error("image should stay after a timed-out probe")
	}
}

func TestStartProbes_SkipsDetachedImages(t *testing.T) {
	t.Parallel()

	f := mustParse(t, `<p><img src="https://a.example/v"></p>`)
	var mu sync.Mutex
	prober := &gatedProber{release: make(chan struct{})}

	ps := StartProbes(context.Background(), f, &mu, prober, ProbeConfig{}, zerolog.Nop())

	// The image leaves the document before the probe answers
	mu.Lock()
	removeNode(f.Elements("img")[0])
	mu.Unlock()
	close(prober.release)
	ps.Wait()

	if ps.Replaced() != 0 {
		t.Errorf("Replaced = %d, want 0", ps.Replaced())
	}
	if len(f.Elements("video")) != 0 {
		t.Error("detached image must not be replaced")
	}
}

func TestStartProbes_ParentContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := mustParse(t, `<img src="https://a.example/1">`)
	var mu sync.Mutex

	ps := StartProbes(ctx, f, &mu, &blockingProber{}, ProbeConfig{}, zerolog.Nop())

	select {
	case <-ps.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("probe set ignored cancelled parent context")
	}
}
