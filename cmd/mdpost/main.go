package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	ctx, stop := notifyContext(context.Background())
	code := run(ctx, os.Args[1:], DefaultEnv())
	stop()
	os.Exit(code)
}

// run dispatches a command and maps its error to an exit code.
// Arguments that do not name a command are rendered.
func run(ctx context.Context, args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	var err error
	switch args[0] {
	case "render":
		err = runRender(ctx, args[1:], env)
	case "css":
		err = runCSS(args[1:], env)
	case "config":
		err = runConfig(args[1:], env)
	case "completion":
		err = runCompletion(args[1:], env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "mdpost %s\n", Version)
	case "help", "-h", "--help":
		err = runHelp(args[1:], env)
	default:
		err = runRender(ctx, args, env)
	}

	if err == nil || errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}

	fmt.Fprintln(env.Stderr, err)
	return exitCodeFor(err)
}
