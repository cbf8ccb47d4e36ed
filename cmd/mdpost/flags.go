package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// imageFlags holds image visibility flags.
type imageFlags struct {
	disabled bool
	anyHost  bool
	hosts    []string
}

// linkFlags holds mention and route flags.
type linkFlags struct {
	mentionBase string
	routeBase   string
}

// probeFlags holds media probing flags.
type probeFlags struct {
	disabled    bool
	timeout     string
	concurrency int
}

// pageFlags holds standalone page output flags.
type pageFlags struct {
	standalone bool
	title      string
	style      string
	assetPath  string
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common          commonFlags
	output          string
	workers         int
	timeout         string
	inline          bool
	loadProjectText string
	highlightStyle  string
	images          imageFlags
	links           linkFlags
	probe           probeFlags
	page            pageFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addImageFlags adds image flags to a FlagSet.
func addImageFlags(fs *flag.FlagSet, f *imageFlags) {
	fs.BoolVar(&f.disabled, "no-images", false, "show every image as text")
	fs.BoolVar(&f.anyHost, "any-image-host", false, "allow images from any host")
	fs.StringSliceVar(&f.hosts, "image-host", nil, "allowed image URL prefix (repeatable)")
}

// addLinkFlags adds mention and route flags to a FlagSet.
func addLinkFlags(fs *flag.FlagSet, f *linkFlags) {
	fs.StringVar(&f.mentionBase, "mention-base", "", "absolute profile URL prefix for @mentions")
	fs.StringVar(&f.routeBase, "route-base", "", "in-app route prefix for profile links")
}

// addProbeFlags adds media probing flags to a FlagSet.
func addProbeFlags(fs *flag.FlagSet, f *probeFlags) {
	fs.BoolVar(&f.disabled, "no-probe", false, "do not probe image links for audio/video")
	fs.StringVar(&f.timeout, "probe-timeout", "", "per-request probe timeout (e.g., 5s)")
	fs.IntVar(&f.concurrency, "probe-concurrency", 0, "in-flight probes per post (0 = default)")
}

// addPageFlags adds standalone page flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.BoolVar(&f.standalone, "standalone", false, "write full HTML pages instead of fragments")
	fs.StringVar(&f.title, "title", "", "page title for --standalone (default: file name)")
	fs.StringVar(&f.style, "style", "", "page stylesheet name for --standalone")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// newRenderFlagSet registers every render flag on a fresh FlagSet.
// Shared by parsing and shell completion.
func newRenderFlagSet(f *renderFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-file timeout including probes (e.g., 30s)")

	// Rendering flags
	fs.BoolVar(&f.inline, "inline", false, "inline mode: no block elements, no embeds")
	fs.StringVar(&f.loadProjectText, "load-project-text", "", "label for project embed buttons")
	fs.StringVar(&f.highlightStyle, "highlight-style", "", "chroma style for code blocks")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addImageFlags(fs, &f.images)
	addLinkFlags(fs, &f.links)
	addProbeFlags(fs, &f.probe)
	addPageFlags(fs, &f.page)

	return fs
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := newRenderFlagSet(f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printRenderUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}

	return f, fs.Args(), nil
}

// cssFlags holds flags for the css command.
type cssFlags struct {
	style  string
	output string
	list   bool
}

func newCSSFlagSet(f *cssFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("css", flag.ContinueOnError)
	fs.StringVarP(&f.style, "style", "s", "", "chroma style name (default: github-dark)")
	fs.StringVarP(&f.output, "output", "o", "", "write stylesheet to file")
	fs.BoolVarP(&f.list, "list", "l", false, "list available styles")
	return fs
}

// parseCSSFlags parses css command flags.
func parseCSSFlags(args []string, stderr io.Writer) (*cssFlags, error) {
	f := &cssFlags{}
	fs := newCSSFlagSet(f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printCSSUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, usageError(err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return f, nil
}

// parseConfigFlags parses config command flags.
func parseConfigFlags(args []string, stderr io.Writer) (*commonFlags, error) {
	f := &commonFlags{}
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.SetOutput(stderr)
	fs.Usage = func() { printConfigUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, usageError(err)
	}
	return f, nil
}

// usageError marks flag parsing failures; --help passes through untouched.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}
