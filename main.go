/*
Package main
File: main.go
Description: Server entry point. Loads the configuration and the building catalog,
restores the saved game, then runs the game session (the 10 Hz heartbeat that keeps
the economy producing), the real-time WebSocket hub and the local REST API.
*/

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/everforgeworks/data-empire/internal/api"
	"github.com/everforgeworks/data-empire/internal/config"
	"github.com/everforgeworks/data-empire/internal/game"
	"github.com/everforgeworks/data-empire/internal/logger"
	"github.com/everforgeworks/data-empire/internal/middleware"
	"github.com/everforgeworks/data-empire/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg)
	log := slog.With("component", "main")

	// 2. The static building catalog (embedded unless CATALOG_PATH is set)
	catalog, err := game.LoadCatalog(cfg.Game.CatalogPath)
	if err != nil {
		return err
	}
	log.Info("Catalog loaded",
		"buildings", len(catalog.Buildings),
		"multipliers", len(catalog.Multipliers),
		"path", cfg.Game.CatalogPath)

	// 3. Restore the saved game, or start fresh
	db, err := store.Open(cfg.Storage.SnapshotPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := game.NewEngine(catalog)
	game.RestoreFrom(ctx, db, engine, slog.Default())

	// 4. Real-time hub and the game session heartbeat
	hub := api.NewHub(cfg.Frontend.URL)
	go hub.Run(ctx)

	session := game.NewSession(engine, game.SessionConfig{
		TickInterval: cfg.Game.TickInterval,
		Persister:    db,
		Publisher:    hub,
		Logger:       slog.Default(),
	})
	sessionDone := make(chan struct{})
	go func() {
		session.Run(ctx)
		close(sessionDone)
	}()

	// 5. Hot reload: SIGHUP swaps the catalog without a restart
	go reloadCatalogOnHangup(ctx, cfg.Game.CatalogPath, session)

	// 6. Router and middleware
	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	go limiter.Cleanup(ctx, time.Minute)

	handler := middleware.NewCORS(cfg.Frontend).Middleware(
		middleware.NewOriginGuard(cfg.Frontend).Middleware(
			limiter.Middleware(
				api.NewRouter(api.NewHandler(session, db), hub),
			),
		),
	)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 7. Start the Server
	serveErr := make(chan error, 1)
	go func() {
		log.Info("Data Empire server live", "addr", srv.Addr, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case err := <-serveErr:
		stop()
		<-sessionDone
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}

	// The session writes its final snapshot before returning.
	<-sessionDone
	log.Info("Server stopped")
	return nil
}

func reloadCatalogOnHangup(ctx context.Context, path string, session *game.Session) {
	log := slog.With("component", "main", "operation", "reload")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigChan:
		}

		catalog, err := game.LoadCatalog(path)
		if err != nil {
			// Keep playing with the catalog already in place.
			log.Error("Catalog reload failed", "error", err)
			continue
		}
		if _, err := session.Do(ctx, func(e *game.Engine) { e.SetCatalog(catalog) }); err != nil {
			log.Warn("Catalog reload not applied", "error", err)
			continue
		}
		log.Info("Catalog reloaded", "buildings", len(catalog.Buildings))
	}
}
