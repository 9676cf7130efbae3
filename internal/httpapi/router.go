package httpapi

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the handler onto a gin engine with recovery and request logging.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log))

	r.GET("/healthz", Health)
	r.HEAD("/healthz", Health)

	v1 := r.Group("/v1")
	{
		v1.POST("/validate", h.Validate)
		v1.GET("/validations", h.List)
		v1.GET("/validations/:id", h.Get)
	}
	return r
}

// requestLogger logs one line per request through slog.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
