package api

import (
	"log/slog"
	"net/http"

	apperrors "github.com/everforgeworks/data-empire/internal/shared/errors"
	"github.com/everforgeworks/data-empire/internal/shared/response"
)

// NewRouter wires every REST endpoint and the notification socket.
func NewRouter(h *Handler, hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()

	// Information Endpoints
	mux.HandleFunc("/api/state", only(http.MethodGet, h.HandleGetState))
	mux.HandleFunc("/api/buildings", only(http.MethodGet, h.HandleGetBuildings))
	mux.HandleFunc("/api/catalog", only(http.MethodGet, h.HandleGetCatalog))
	mux.HandleFunc("/api/health", only(http.MethodGet, h.HandleHealth))

	// Action Endpoints
	mux.HandleFunc("/api/click", only(http.MethodPost, h.HandleClick))
	mux.HandleFunc("/api/accept", only(http.MethodPost, h.HandleAccept))
	mux.HandleFunc("/api/reset", only(http.MethodPost, h.HandleReset))
	mux.HandleFunc("/api/upgrades/click-power", only(http.MethodPost, h.HandleBuyClickPower))
	mux.HandleFunc("/api/upgrades/auto-clicker", only(http.MethodPost, h.HandleBuyAutoClicker))
	mux.HandleFunc("/api/buildings/buy", only(http.MethodPost, h.HandleBuyBuilding))
	mux.HandleFunc("/api/buildings/upgrade", only(http.MethodPost, h.HandleUpgradeBuilding))
	mux.HandleFunc("/api/multipliers/buy", only(http.MethodPost, h.HandleBuyMultiplier))

	// Real-Time WebSocket Endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	})

	return mux
}

// only rejects every method but the given one with a JSON 405.
func only(method string, next http.HandlerFunc) http.HandlerFunc {
	logger := slog.With("component", "router")
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			response.Error(w, r, logger, apperrors.MethodNotAllowed(r.Method))
			return
		}
		next(w, r)
	}
}
