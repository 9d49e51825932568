package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okatkov/rss-digest/app/api"
	"github.com/okatkov/rss-digest/app/cfg"
	"github.com/okatkov/rss-digest/app/digest"
	"github.com/okatkov/rss-digest/app/export"
	"github.com/okatkov/rss-digest/app/extract"
	"github.com/okatkov/rss-digest/app/feed"
	"github.com/okatkov/rss-digest/app/sources"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting RSS Digest server", "version", appCfg.Version, "extract_policy", appCfg.ExtractPolicy)

	// Load persona source configurations
	sourceCache := sources.NewCache(appCfg.SourcesDir)
	if err := sourceCache.Run(); err != nil {
		log.Fatalf("Failed to load source configurations: %v", err)
	}
	slog.Info("Source configurations loaded", "dir", appCfg.SourcesDir, "count", sourceCache.GetConfigCount())

	// Shared HTTP client; the per-request timeout keeps a slow upstream from
	// blocking a batch indefinitely.
	httpClient := &http.Client{
		Timeout: time.Duration(appCfg.Timeout) * time.Second,
	}

	// Initialize core pipeline components
	feedParser := feed.NewParser()
	filterer := feed.NewFilterer()
	reducer := extract.NewReducer(appCfg.ExtractPolicy)
	fetcher := extract.NewFetcher(httpClient, reducer, appCfg.UserAgent)
	collector := digest.NewCollector(httpClient, feedParser, filterer, fetcher, appCfg.UserAgent, appCfg.WorkerCount)
	serializer := export.NewSerializer()

	// Initialize HTTP server
	apiHandler := api.NewHandler(collector, serializer, sourceCache)
	server := api.NewServer(apiHandler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // batch exports block on upstream fetches
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}
