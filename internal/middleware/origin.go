package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/everforgeworks/data-empire/internal/config"
	apperrors "github.com/everforgeworks/data-empire/internal/shared/errors"
	"github.com/everforgeworks/data-empire/internal/shared/response"
)

// OriginGuard refuses state-changing requests sent by a browser page other
// than the frontend. CORS headers alone do not stop a simple POST from
// reaching the handler.
type OriginGuard struct {
	allowed string
	logger  *slog.Logger
}

func NewOriginGuard(cfg config.FrontendConfig) *OriginGuard {
	return &OriginGuard{
		allowed: cfg.URL,
		logger:  slog.With("middleware", "origin"),
	}
}

func (g *OriginGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		if !OriginAllowed(r, g.allowed) {
			response.Error(w, r, g.logger, apperrors.Forbiddenf("origin %q not allowed", r.Header.Get("Origin")))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OriginAllowed accepts requests without an Origin header (curl, native
// clients), the configured frontend origin and the server's own origin.
func OriginAllowed(r *http.Request, allowed string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if allowed != "" && strings.EqualFold(strings.TrimSuffix(origin, "/"), strings.TrimSuffix(allowed, "/")) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
