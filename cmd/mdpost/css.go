package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/alnah/go-mdpost"
	"github.com/alnah/go-mdpost/internal/hints"
)

// runCSS prints the code highlighting stylesheet, or lists styles.
func runCSS(args []string, env *Environment) error {
	flags, err := parseCSSFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	if flags.list {
		for _, name := range mdpost.HighlightStyles() {
			fmt.Fprintln(env.Stdout, name)
		}
		return nil
	}

	css, err := mdpost.HighlightCSS(flags.style)
	if err != nil {
		if errors.Is(err, mdpost.ErrUnknownStyle) {
			return fmt.Errorf("%w%s", err, hints.ForStyleNotFound(mdpost.HighlightStyles()))
		}
		return err
	}

	if flags.output == "" {
		if _, err := io.WriteString(env.Stdout, css); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteHTML, err)
		}
		return nil
	}

	return writeOutput(flags.output, css)
}
