// Package service turns encoded image bytes into validation outcomes.
//
// It is the seam between transports (HTTP, MCP, CLI) and the pure pipeline in
// package validate: it decodes, enforces the upload limit, runs the checks and
// logs the verdict. Decorators such as the Redis cache wrap a Validator.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/ironsheep/flag-check-mcp/internal/config"
	"github.com/ironsheep/flag-check-mcp/internal/imaging"
	"github.com/ironsheep/flag-check-mcp/internal/validate"
)

// Outcome is the result of validating one encoded image.
type Outcome struct {
	Report      validate.Report `json:"report"`
	ImageSHA256 string          `json:"image_sha256"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
}

// Passed reports whether every check in the report passed.
func (o *Outcome) Passed() bool {
	return o.Report.Passed()
}

// Validator validates encoded images.
type Validator interface {
	Validate(ctx context.Context, data []byte) (*Outcome, error)
}

// Engine is the Validator backed directly by the pipeline.
type Engine struct {
	cfg config.Config
	log *slog.Logger
}

// Compile-time check to ensure Engine implements Validator.
var _ Validator = (*Engine)(nil)

// NewEngine validates cfg and returns an engine. A nil logger discards output.
func NewEngine(cfg config.Config, log *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{cfg: cfg, log: log}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Validate decodes data and runs every check.
//
// Errors are reserved for unusable input: oversized data
// (imaging.ErrImageTooLarge), undecodable bytes (imaging.ErrUnsupportedImage),
// empty images and cancelled contexts.
func (e *Engine) Validate(ctx context.Context, data []byte) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf, err := imaging.Decode(data, e.cfg.MaxImageBytes)
	if err != nil {
		e.log.Warn("image rejected", "bytes", len(data), "error", err)
		return nil, fmt.Errorf("decode: %w", err)
	}

	res, err := validate.Run(buf, e.cfg)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Report:      res.Report,
		ImageSHA256: Digest(data),
		Width:       buf.Width,
		Height:      buf.Height,
	}
	e.log.Info("image validated",
		"sha256", out.ImageSHA256[:12],
		"width", out.Width,
		"height", out.Height,
		"passed", out.Passed(),
		"detected", res.Report.ChakraSpokes.Detected,
		"failed", res.Report.Failed(),
	)
	return out, nil
}

// Digest returns the hex SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
