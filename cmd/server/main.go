package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/squine/oscillo/internal/auth"
	"github.com/squine/oscillo/internal/config"
	"github.com/squine/oscillo/internal/export"
	"github.com/squine/oscillo/internal/live"
	mw "github.com/squine/oscillo/internal/middleware"
	"github.com/squine/oscillo/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		slog.Error("parse log level", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	authService := auth.NewService(cfg.JWTSecret, cfg.TokenTTL)
	authHandler := auth.NewHandler(authService)

	sessions := session.NewService(cfg.EngineSettings(), cfg.MaxSessions)
	sessionHandler := session.NewHandler(sessions, authService)

	hub := live.NewHub(sessions.Engine, cfg.TickInterval())
	go hub.Run()
	sessions.OnDelete(hub.CloseRoom)
	sessions.SetLiveCheck(hub.HasRoom)

	exportHandler := export.NewHandler(sessions.Engine)
	wsHandler := live.NewHandler(hub, authService, cfg.Origins())

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	sessionHandler.RegisterRoutes(api)
	exportHandler.RegisterRoutes(api)
	api.Handle("/sessions/{sessionId}/token", authService.RequireControl(http.HandlerFunc(authHandler.Refresh))).Methods("POST")

	// WebSocket endpoint
	r.HandleFunc("/ws/sessions/{sessionId}", wsHandler.ServeWS)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr: addr,
		// CORS wraps the router so preflight requests are answered before
		// route method matching.
		Handler:      mw.CORS(cfg.Origins())(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop the hub first so frame drivers end and sockets close.
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "tick_rate", cfg.TickRate, "max_sessions", cfg.MaxSessions)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
