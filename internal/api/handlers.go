/*
Package api
File: handlers.go
Description:
    Contains the HTTP handlers for the REST API.
    These functions decode incoming JSON requests, validate them, submit the
    matching intent to the game Session and return the resulting View.

    Key Responsibilities:
    - Input Validation (Is the JSON valid? Does the building or offer exist?)
    - State Modification (every mutation goes through Session.Do)
    - Error Reporting (typed AppErrors rendered by the response package)

    An unaffordable or locked purchase is not an error: the engine ignores it
    and the unchanged View comes back with 200.
*/

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/everforgeworks/data-empire/internal/game"
	apperrors "github.com/everforgeworks/data-empire/internal/shared/errors"
	"github.com/everforgeworks/data-empire/internal/shared/response"
)

// Request DTOs

type BuildingRequest struct {
	BuildingID string `json:"building_id"`
}

type MultiplierRequest struct {
	OfferID string `json:"offer_id"`
}

// BuildingsResponse is the shop listing.
type BuildingsResponse struct {
	Buildings  []game.BuildingView `json:"buildings"`
	NextLocked *game.BuildingView  `json:"next_locked,omitempty"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	PlayerLevel int    `json:"player_level"`
}

// Pinger is the slice of the snapshot store the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the REST API on top of one game Session.
type Handler struct {
	session *game.Session
	store   Pinger
	logger  *slog.Logger
}

// NewHandler creates the REST handlers. store may be nil.
func NewHandler(session *game.Session, store Pinger) *Handler {
	return &Handler{
		session: session,
		store:   store,
		logger:  slog.With("component", "api"),
	}
}

// HandleGetState returns the full View.
func (h *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	view, err := h.session.View(r.Context())
	if err != nil {
		response.Error(w, r, h.logger, sessionError(err))
		return
	}
	response.Success(w, http.StatusOK, view)
}

// HandleGetBuildings returns the unlocked buildings and a preview of the next locked one.
func (h *Handler) HandleGetBuildings(w http.ResponseWriter, r *http.Request) {
	view, err := h.session.View(r.Context())
	if err != nil {
		response.Error(w, r, h.logger, sessionError(err))
		return
	}
	response.Success(w, http.StatusOK, BuildingsResponse{
		Buildings:  view.Buildings,
		NextLocked: view.NextLocked,
	})
}

// HandleGetCatalog returns the static catalog currently in play.
func (h *Handler) HandleGetCatalog(w http.ResponseWriter, r *http.Request) {
	var catalog *game.Catalog
	_, err := h.session.Do(r.Context(), func(e *game.Engine) {
		catalog = e.Catalog()
	})
	if err != nil {
		response.Error(w, r, h.logger, sessionError(err))
		return
	}
	response.Success(w, http.StatusOK, catalog)
}

// HandleHealth reports whether the session loop and the snapshot store respond.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	view, err := h.session.View(ctx)
	if err != nil {
		response.Error(w, r, h.logger, sessionError(err))
		return
	}
	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			response.Error(w, r, h.logger, apperrors.WrapUnavailable("snapshot store unreachable", err))
			return
		}
	}
	response.Success(w, http.StatusOK, HealthResponse{Status: "ok", PlayerLevel: view.Player.PlayerLevel})
}

// HandleClick applies one click.
func (h *Handler) HandleClick(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*game.Engine).Click)
}

// HandleAccept opens the onboarding gate.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(e *game.Engine) { e.SetAccepted(true) })
}

// HandleReset wipes the game back to its initial defaults.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*game.Engine).Reset)
}

// HandleBuyClickPower buys the next click-power upgrade.
func (h *Handler) HandleBuyClickPower(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*game.Engine).BuyClickPowerUpgrade)
}

// HandleBuyAutoClicker buys one auto clicker.
func (h *Handler) HandleBuyAutoClicker(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*game.Engine).BuyAutoClicker)
}

// HandleBuyBuilding buys one unit of a building.
func (h *Handler) HandleBuyBuilding(w http.ResponseWriter, r *http.Request) {
	var req BuildingRequest
	if err := decode(w, r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	if req.BuildingID == "" {
		response.Error(w, r, h.logger, apperrors.Validation("building_id is required"))
		return
	}

	h.applyChecked(w, r, func(e *game.Engine) error {
		if _, ok := e.Catalog().Building(req.BuildingID); !ok {
			return apperrors.NotFoundf("building %q not found", req.BuildingID)
		}
		e.BuyBuilding(req.BuildingID)
		return nil
	})
}

// HandleUpgradeBuilding raises a building's level by one.
func (h *Handler) HandleUpgradeBuilding(w http.ResponseWriter, r *http.Request) {
	var req BuildingRequest
	if err := decode(w, r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	if req.BuildingID == "" {
		response.Error(w, r, h.logger, apperrors.Validation("building_id is required"))
		return
	}

	h.applyChecked(w, r, func(e *game.Engine) error {
		if _, ok := e.Catalog().Building(req.BuildingID); !ok {
			return apperrors.NotFoundf("building %q not found", req.BuildingID)
		}
		e.UpgradeBuilding(req.BuildingID)
		return nil
	})
}

// HandleBuyMultiplier activates a temporary click multiplier.
func (h *Handler) HandleBuyMultiplier(w http.ResponseWriter, r *http.Request) {
	var req MultiplierRequest
	if err := decode(w, r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	if req.OfferID == "" {
		response.Error(w, r, h.logger, apperrors.Validation("offer_id is required"))
		return
	}

	h.applyChecked(w, r, func(e *game.Engine) error {
		if _, ok := e.Catalog().Multiplier(req.OfferID); !ok {
			return apperrors.NotFoundf("multiplier offer %q not found", req.OfferID)
		}
		e.BuyMultiplier(req.OfferID)
		return nil
	})
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, fn func(*game.Engine)) {
	view, err := h.session.Do(r.Context(), fn)
	if err != nil {
		response.Error(w, r, h.logger, sessionError(err))
		return
	}
	response.Success(w, http.StatusOK, view)
}

// applyChecked runs a lookup and the mutation in the same intent, so a
// catalog reload cannot slip in between them.
func (h *Handler) applyChecked(w http.ResponseWriter, r *http.Request, fn func(*game.Engine) error) {
	var opErr error
	view, err := h.session.Do(r.Context(), func(e *game.Engine) {
		opErr = fn(e)
	})
	if err != nil {
		response.Error(w, r, h.logger, sessionError(err))
		return
	}
	if opErr != nil {
		response.Error(w, r, h.logger, opErr)
		return
	}
	response.Success(w, http.StatusOK, view)
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<12))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.WrapValidation("invalid request body", err)
	}
	return nil
}

func sessionError(err error) error {
	if errors.Is(err, game.ErrSessionStopped) || errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return apperrors.WrapUnavailable("game session unavailable", err)
	}
	return apperrors.WrapInternal("game session failed", err)
}
