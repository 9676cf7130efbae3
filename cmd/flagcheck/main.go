// Command flagcheck validates tricolor flag images from the command line and
// serves the same checks over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ironsheep/flag-check-mcp/internal/config"
	"github.com/ironsheep/flag-check-mcp/internal/logging"
)

// Version information - set by ldflags during build
var Version = "dev"

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1 // a check failed
	exitError  = 2 // usage or runtime error
)

// Environment variables read by the subcommands.
const (
	envConfig        = "FLAGCHECK_CONFIG"
	envRedisAddr     = "FLAGCHECK_REDIS_ADDR"
	envRedisPassword = "FLAGCHECK_REDIS_PASSWORD"
	envDB            = "FLAGCHECK_DB"
)

var errUsage = errors.New("usage")

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, env *cliEnv, args []string) (int, error)
}

// cliEnv carries the process streams and logger into subcommands.
type cliEnv struct {
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger
}

func commands() []command {
	return []command{
		{"validate", "check an image and print the report", runValidate},
		{"mask", "write the emblem hue mask as PNG", runMask},
		{"overlay", "write the diagnostic overlay as SVG", runOverlay},
		{"render", "write a synthetic flag PNG", runRender},
		{"serve", "serve the HTTP API", runServe},
		{"cache-purge", "delete cached reports from Redis", runCachePurge},
	}
}

func main() {
	env := &cliEnv{stdout: os.Stdout, stderr: os.Stderr, log: logging.FromEnv(os.Stderr)}
	os.Exit(run(context.Background(), env, os.Args[1:]))
}

func run(ctx context.Context, env *cliEnv, args []string) int {
	if len(args) == 0 {
		usage(env.stderr)
		return exitError
	}

	switch args[0] {
	case "--version", "-v", "version":
		fmt.Fprintf(env.stdout, "flagcheck %s\n", Version)
		return exitOK
	case "--help", "-h", "help":
		usage(env.stdout)
		return exitOK
	}

	for _, c := range commands() {
		if c.name != args[0] {
			continue
		}
		code, err := c.run(ctx, env, args[1:])
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			return exitError
		}
		if err != nil {
			fmt.Fprintf(env.stderr, "flagcheck %s: %v\n", c.name, err)
			return exitError
		}
		return code
	}

	fmt.Fprintf(env.stderr, "flagcheck: unknown command %q\n\n", args[0])
	usage(env.stderr)
	return exitError
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "flagcheck - tricolor flag conformance checker")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: flagcheck <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands() {
		fmt.Fprintf(w, "  %-12s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %-26s YAML/JSON threshold overrides\n", envConfig)
	fmt.Fprintf(w, "  %-26s Redis address for the report cache\n", envRedisAddr)
	fmt.Fprintf(w, "  %-26s Redis password\n", envRedisPassword)
	fmt.Fprintf(w, "  %-26s SQLite path for validation history (serve)\n", envDB)
	fmt.Fprintf(w, "  %-26s debug, info, warn or error\n", logging.EnvLevel)
}

// parseInterspersed parses flags that may appear before or after positional
// arguments and returns the positionals in order.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return pos, nil
		}
		pos = append(pos, rest[0])
		args = rest[1:]
	}
}

func newFlagSet(env *cliEnv, name, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	fs.Usage = func() {
		fmt.Fprintf(env.stderr, "Usage: flagcheck %s %s\n", name, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

// loadConfig reads path, falling back to FLAGCHECK_CONFIG and then the defaults.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		path = os.Getenv(envConfig)
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func onePositional(fs *flag.FlagSet, pos []string, what string) (string, error) {
	if len(pos) != 1 {
		fmt.Fprintf(fs.Output(), "expected exactly one %s\n", what)
		fs.Usage()
		return "", errUsage
	}
	return pos[0], nil
}
