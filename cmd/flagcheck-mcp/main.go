package main

import (
	"fmt"
	"os"

	"github.com/ironsheep/flag-check-mcp/internal/config"
	"github.com/ironsheep/flag-check-mcp/internal/logging"
	"github.com/ironsheep/flag-check-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("flag-check-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("flag-check-mcp - MCP server for tricolor flag conformance checks")
			fmt.Println()
			fmt.Println("Usage: flag-check-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  FLAGCHECK_LOG_LEVEL=debug    Log level (debug, info, warn, error)")
			fmt.Println("  FLAGCHECK_CONFIG=path.yaml   Override checker thresholds")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client.")
			return
		}
	}

	// Logs go to stderr; stdout is for MCP protocol
	log := logging.FromEnv(os.Stderr)

	cfg := config.Default()
	if path := os.Getenv("FLAGCHECK_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			log.Error("config rejected", "path", path, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	log.Debug("starting", "version", Version, "built", BuildTime, "commit", GitCommit, "config", cfg.Fingerprint())

	server.Version = Version
	srv := server.New(cfg, log)
	if err := srv.Run(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
