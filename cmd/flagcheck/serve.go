package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/flag-check-mcp/internal/cache"
	"github.com/ironsheep/flag-check-mcp/internal/config"
	"github.com/ironsheep/flag-check-mcp/internal/httpapi"
	"github.com/ironsheep/flag-check-mcp/internal/service"
	"github.com/ironsheep/flag-check-mcp/internal/store"
)

const shutdownTimeout = 10 * time.Second

// buildValidator returns the pipeline engine, wrapped in the Redis cache when
// FLAGCHECK_REDIS_ADDR is set and reachable. The returned func releases the
// Redis client.
func buildValidator(ctx context.Context, cfg config.Config, log *slog.Logger) (service.Validator, func(), error) {
	engine, err := service.NewEngine(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	addr := os.Getenv(envRedisAddr)
	if addr == "" {
		return engine, func() {}, nil
	}
	rdb, err := cache.Connect(ctx, addr, os.Getenv(envRedisPassword))
	if err != nil {
		log.Warn("redis unavailable, running without cache", "addr", addr, "error", err)
		return engine, func() {}, nil
	}

	cv := cache.NewCachingValidator(rdb, cache.DefaultTTL, engine, "", cfg.Fingerprint(), log)
	closeFn := func() {
		if err := rdb.Close(); err != nil {
			log.Warn("failed to close redis client", "error", err)
		}
	}
	return cv, closeFn, nil
}

func runServe(ctx context.Context, env *cliEnv, args []string) (int, error) {
	fs := newFlagSet(env, "serve", "[-addr :8080] [-db history.db] [-config file]")
	addr := fs.String("addr", ":8080", "listen address")
	dbPath := fs.String("db", os.Getenv(envDB), "SQLite history path; empty disables history")
	cfgPath := fs.String("config", "", "YAML or JSON threshold overrides")
	pos, err := parseOrUsage(fs, args)
	if err != nil {
		return exitError, err
	}
	if len(pos) != 0 {
		fs.Usage()
		return exitError, errUsage
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return exitError, err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, closeFn, err := buildValidator(ctx, cfg, env.log)
	if err != nil {
		return exitError, err
	}
	defer closeFn()

	var history httpapi.History
	if *dbPath != "" {
		h, err := store.Open(*dbPath)
		if err != nil {
			return exitError, err
		}
		defer func() {
			if err := h.Close(); err != nil {
				env.log.Warn("failed to close history", "error", err)
			}
		}()
		history = h
	}

	if !env.log.Enabled(ctx, slog.LevelDebug) {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              *addr,
		Handler:           httpapi.NewRouter(httpapi.NewHandler(v, history, env.log)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		env.log.Info("listening", "addr", *addr, "history", *dbPath != "", "config", cfg.Fingerprint())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return exitError, err
		}
	case <-ctx.Done():
		env.log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return exitError, fmt.Errorf("shutdown: %w", err)
		}
	}
	return exitOK, nil
}

func runCachePurge(ctx context.Context, env *cliEnv, args []string) (int, error) {
	fs := newFlagSet(env, "cache-purge", "[-redis addr] [-namespace ns]")
	addr := fs.String("redis", os.Getenv(envRedisAddr), "Redis address")
	ns := fs.String("namespace", "", "key namespace (default flagcheck)")
	if err := fs.Parse(args); err != nil {
		return exitError, errUsage
	}
	if *addr == "" {
		fmt.Fprintln(env.stderr, "no Redis address: pass -redis or set "+envRedisAddr)
		return exitError, errUsage
	}

	rdb, err := cache.Connect(ctx, *addr, os.Getenv(envRedisPassword))
	if err != nil {
		return exitError, err
	}
	defer rdb.Close()

	n, err := cache.NewCachingValidator(rdb, 0, nil, *ns, "", env.log).Purge(ctx)
	if err != nil {
		return exitError, err
	}
	fmt.Fprintf(env.stdout, "purged %d cached reports\n", n)
	return exitOK, nil
}
