package middleware

import (
	"log/slog"
	"net/http"

	"github.com/rs/cors"

	"github.com/everforgeworks/data-empire/internal/config"
)

var corsMethods = []string{"GET", "POST", "OPTIONS"}

type CORSMiddleware struct {
	*cors.Cors
}

// NewCORS allows the configured frontend origin to drive the local server.
func NewCORS(cfg config.FrontendConfig) *CORSMiddleware {
	logger := slog.With("component", "cors", "operation", "setup")

	allowedOrigins := []string{cfg.URL}

	corsConfig := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: corsMethods,
		AllowedHeaders: []string{"Content-Type"},
		Debug:          cfg.CORSDebug,
	})

	logger.Info("CORS middleware configured",
		"allowed_origins", allowedOrigins,
		"allowed_methods", corsMethods,
		"debug_mode", cfg.CORSDebug,
	)

	return &CORSMiddleware{corsConfig}
}

func (c *CORSMiddleware) Middleware(h http.Handler) http.Handler {
	return c.Cors.Handler(h)
}
