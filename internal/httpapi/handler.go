// Package httpapi exposes flag validation over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/flag-check-mcp/internal/imaging"
	"github.com/ironsheep/flag-check-mcp/internal/service"
	"github.com/ironsheep/flag-check-mcp/internal/store"
	"github.com/ironsheep/flag-check-mcp/internal/validate"
)

// History is the subset of the store the handlers need.
type History interface {
	Save(ctx context.Context, name string, out *service.Outcome) (store.Record, error)
	Get(ctx context.Context, id string) (store.Record, error)
	List(ctx context.Context, limit int) ([]store.Record, error)
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidateResponse is the body of a successful POST /v1/validate.
type ValidateResponse struct {
	ID string `json:"id,omitempty"`
	*service.Outcome
}

// RecordResponse is one stored validation.
type RecordResponse struct {
	store.Record
	Report validate.Report `json:"report"`
}

// Handler serves the validation endpoints. History may be nil.
type Handler struct {
	v       service.Validator
	history History
	log     *slog.Logger
}

// NewHandler builds a handler. A nil logger discards output.
func NewHandler(v service.Validator, history History, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handler{v: v, history: history, log: log}
}

// Health answers liveness probes and is never cached.
func Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Validate checks an uploaded flag image.
//
// Endpoint: POST /v1/validate
// Content-Type: multipart/form-data
// Field: image
func (h *Handler) Validate(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		h.log.Warn("image field missing", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "image file is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		h.log.Error("open upload failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to read image"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			h.log.Warn("close upload failed", "error", err)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		h.log.Error("read upload failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to read image"})
		return
	}

	out, err := h.v.Validate(c.Request.Context(), data)
	if err != nil {
		status, msg := classifyError(err)
		h.log.Warn("validation rejected", "file", file.Filename, "status", status, "error", err)
		c.JSON(status, ErrorResponse{Error: msg})
		return
	}

	resp := ValidateResponse{Outcome: out}
	if h.history != nil {
		rec, err := h.history.Save(c.Request.Context(), file.Filename, out)
		if err != nil {
			h.log.Error("save validation failed", "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to store validation"})
			return
		}
		resp.ID = rec.ID
	}
	c.JSON(http.StatusOK, resp)
}

// List returns recent validations.
//
// Endpoint: GET /v1/validations?limit=N
func (h *Handler) List(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "history is disabled"})
		return
	}

	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	recs, err := h.history.List(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("list validations failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list validations"})
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	c.JSON(http.StatusOK, recs)
}

// Get returns one stored validation with its report.
//
// Endpoint: GET /v1/validations/:id
func (h *Handler) Get(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "history is disabled"})
		return
	}

	id := c.Param("id")
	rec, err := h.history.Get(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "validation not found"})
		return
	}
	if err != nil {
		h.log.Error("get validation failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load validation"})
		return
	}

	rep, err := rec.Report()
	if err != nil {
		h.log.Error("stored report unreadable", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load validation"})
		return
	}
	c.JSON(http.StatusOK, RecordResponse{Record: rec, Report: rep})
}

// classifyError maps validator errors onto HTTP status codes.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, imaging.ErrImageTooLarge):
		return http.StatusBadRequest, "image exceeds the size limit"
	case errors.Is(err, imaging.ErrUnsupportedImage):
		return http.StatusBadRequest, "image could not be decoded"
	case errors.Is(err, imaging.ErrEmptyImage):
		return http.StatusBadRequest, "image is empty"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request cancelled"
	default:
		return http.StatusInternalServerError, "validation failed"
	}
}
