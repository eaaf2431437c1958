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

	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/config"
	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/geocoder"
	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/mapgen"
	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/monitor"
	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/scraper"
	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/storage"
)

type Server struct {
	engine *monitor.Engine
}

func main() {
	slog.Info("Starting Lublin room monitor server...")
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := storage.New(ctx, cfg.ProjectID)
	if err != nil {
		slog.Error("Critical error initializing Firestore client", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	selectors, err := scraper.LoadConfig()
	if err != nil {
		slog.Warn("Failed to load selectors. Using defaults.", "error", err)
		selectors = scraper.DefaultSelectors()
	}

	s := scraper.New(cfg, selectors)
	g := geocoder.New(store.GeoCache(), cfg)
	renderer := mapgen.New(cfg)
	engine := monitor.New(store, g, s, renderer)

	srv := &Server{engine: engine}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.RunHandler)
	mux.HandleFunc("/run", srv.RunHandler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"status":"ok"}`)
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		slog.Info("Received signal, shutting down gracefully...", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
	}()

	slog.Info("Listening on port", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Failed to listen and serve", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped.")
}

func (s *Server) RunHandler(w http.ResponseWriter, r *http.Request) {
	// Run the cycle asynchronously so the HTTP response isn't blocked by
	// scraping, geocoding and Firestore work that may exceed the caller's
	// timeout. Geocode politeness spacing alone can take minutes.
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Panic in monitoring cycle", "panic", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if err := s.engine.Run(ctx); err != nil {
			slog.Error("Monitoring cycle failed", "error", err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintln(w, "Monitoring cycle started.")
}
