package pipeline

import (
	"context"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer defines the contract for cleaning rendered HTML before it is
// parsed and enriched.
type Sanitizer interface {
	Sanitize(ctx context.Context, htmlContent string) string
}

// PolicySanitizer applies a bluemonday policy tuned for user posts.
type PolicySanitizer struct {
	policy *bluemonday.Policy
}

// NewPolicySanitizer builds the user-content policy: UGC defaults plus the
// data-* attributes the pipeline relies on, free-form image alt text, and
// the classes emitted by the syntax highlighter.
func NewPolicySanitizer() *PolicySanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowDataAttributes()
	p.AllowAttrs("alt").OnElements("img")
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("tabindex").OnElements("pre")
	p.RequireNoFollowOnLinks(false)
	return &PolicySanitizer{policy: p}
}

// Sanitize returns htmlContent with disallowed markup removed.
// On cancellation the content is returned unchanged; the caller checks ctx.
func (s *PolicySanitizer) Sanitize(ctx context.Context, htmlContent string) string {
	if ctx.Err() != nil {
		return htmlContent
	}
	return s.policy.Sanitize(htmlContent)
}
