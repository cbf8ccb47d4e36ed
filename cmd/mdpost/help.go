package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpost <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render      Render markdown posts to HTML (default)")
	fmt.Fprintln(w, "  css         Print the code highlighting stylesheet")
	fmt.Fprintln(w, "  config      Print the effective configuration")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdpost help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpost render <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render markdown posts to sanitized HTML fragments.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file, directory, or - for stdin")
	fmt.Fprintln(w, "           (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>         Output file or directory")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>           Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>           Per-file timeout including probes (default 1m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --inline                No block elements, no embeds")
	fmt.Fprintln(w, "      --load-project-text <s> Label for project embed buttons")
	fmt.Fprintln(w, "      --highlight-style <s>   Chroma style for code blocks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Images:")
	fmt.Fprintln(w, "      --no-images             Show every image as text")
	fmt.Fprintln(w, "      --any-image-host        Allow images from any host")
	fmt.Fprintln(w, "      --image-host <prefix>   Allowed image URL prefix (repeatable)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Links:")
	fmt.Fprintln(w, "      --mention-base <url>    Absolute profile URL prefix for @mentions")
	fmt.Fprintln(w, "      --route-base <path>     In-app route prefix for profile links")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Media Probing:")
	fmt.Fprintln(w, "      --no-probe              Do not probe image links for audio/video")
	fmt.Fprintln(w, "      --probe-timeout <d>     Per-request probe timeout (default 10s)")
	fmt.Fprintln(w, "      --probe-concurrency <n> In-flight probes per post")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Standalone Pages:")
	fmt.Fprintln(w, "      --standalone            Write full HTML pages instead of fragments")
	fmt.Fprintln(w, "      --title <s>             Page title (default: file name)")
	fmt.Fprintln(w, "      --style <name>          Page stylesheet name")
	fmt.Fprintln(w, "      --asset-path <dir>      Custom asset directory (styles/, templates/)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show debug logs and timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDPOST_CONFIG, MDPOST_TIMEOUT, MDPOST_WORKERS, MDPOST_INPUT_DIR,")
	fmt.Fprintln(w, "  MDPOST_OUTPUT_DIR, MDPOST_IMAGE_HOSTS, MDPOST_MENTION_BASE,")
	fmt.Fprintln(w, "  MDPOST_ROUTE_BASE, MDPOST_LOAD_PROJECT_TEXT, MDPOST_HIGHLIGHT_STYLE,")
	fmt.Fprintln(w, "  MDPOST_PROBE_TIMEOUT, MDPOST_NO_PROBE")
	fmt.Fprintln(w, "  Flags override environment, environment overrides the config file.")
}

// printCSSUsage prints usage for the css command.
func printCSSUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpost css [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the stylesheet for highlighted code blocks.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -s, --style <name>    Chroma style name (default: github-dark)")
	fmt.Fprintln(w, "  -o, --output <path>   Write stylesheet to file")
	fmt.Fprintln(w, "  -l, --list            List available styles")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpost config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>   Config file name or path")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "css":
		printCSSUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdpost version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdpost help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return nil
}
