package assets

import "errors"

// Lookup failures: the named page style or template is absent.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
)

// Input failures, reported as usage errors by the CLI.
var (
	ErrInvalidAssetName = errors.New("invalid asset name")
	ErrInvalidBasePath  = errors.New("invalid base path")
	ErrPathTraversal    = errors.New("path traversal detected")
)

// ErrAssetRead wraps I/O failures while reading an asset that exists.
var ErrAssetRead = errors.New("failed to read asset")
