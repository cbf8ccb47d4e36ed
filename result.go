package mdpost

import (
	"slices"
	"sync"

	"golang.org/x/net/html"

	"github.com/alnah/go-mdpost/internal/pipeline"
)

// Result is a rendered post. Media probes may still be mutating it after
// Render returns, so every accessor takes the result's lock.
type Result struct {
	mu       sync.Mutex
	fragment *pipeline.Fragment
	embeds   []Embed
	probes   *pipeline.ProbeSet
}

// HTML renders the body's children.
func (r *Result) HTML() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fragment.HTML()
}

// Inspect calls fn with the <body> node while holding the lock. fn must not
// keep references to the tree after it returns.
func (r *Result) Inspect(fn func(body *html.Node)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.fragment.Body())
}

// Embeds returns the placeholders created, in document order.
func (r *Result) Embeds() []Embed {
	return slices.Clone(r.embeds)
}

// ActivateEmbed replaces the placeholder for projectID with its iframe,
// as a click on the placeholder would.
func (r *Result) ActivateEmbed(projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return pipeline.ActivateEmbed(r.fragment, projectID)
}

// Wait blocks until media probing has finished. Returns immediately when
// probing is disabled.
func (r *Result) Wait() {
	if r.probes != nil {
		r.probes.Wait()
	}
}

// Cancel stops outstanding media probes.
func (r *Result) Cancel() {
	if r.probes != nil {
		r.probes.Cancel()
	}
}

// MediaReplaced reports how many images have become audio/video players.
func (r *Result) MediaReplaced() int {
	if r.probes == nil {
		return 0
	}
	return r.probes.Replaced()
}

func (r *Result) probeCount() int {
	if r.probes == nil {
		return 0
	}
	return r.probes.Started()
}
