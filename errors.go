package mdpost

import (
	"errors"

	"github.com/alnah/go-mdpost/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrHTMLConversion = pipeline.ErrHTMLConversion
	ErrHTMLParse      = pipeline.ErrHTMLParse
	ErrEmbedNotFound  = pipeline.ErrEmbedNotFound
	ErrUnknownStyle   = pipeline.ErrUnknownStyle

	// Renderer option validation errors.
	ErrInvalidOption      = errors.New("invalid renderer option")
	ErrInvalidMentionBase = errors.New("invalid mention base URL")
)
