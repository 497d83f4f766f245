package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rivalmap/rivalmap/app/analysis"
	"github.com/rivalmap/rivalmap/app/api"
	"github.com/rivalmap/rivalmap/app/auth"
	"github.com/rivalmap/rivalmap/app/cfg"
	"github.com/rivalmap/rivalmap/app/database"
	"github.com/rivalmap/rivalmap/app/mcp"
	"github.com/rivalmap/rivalmap/app/research"
	"github.com/rivalmap/rivalmap/app/webhook"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	appConfig, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appConfig == nil {
		// Help was shown, exit gracefully
		return
	}

	log.Printf("Starting Rivalmap %s...", appConfig.Version)

	db, err := database.NewConnection(appConfig.DBPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Printf("Database ready at %s (schema version %d, dirty=%v)", appConfig.DBPath, version, dirty)

	repo := database.NewAnalysisRepository(db)

	researchClient := research.NewClient()
	service := analysis.NewService(repo, researchClient)
	validator := analysis.NewValidator()

	verifier, err := webhook.NewVerifier(appConfig.WebhookSecret)
	if err != nil {
		log.Fatal("Failed to initialize webhook verifier:", err)
	}

	mcpServer := mcp.NewServer(api.NewReportBuilder(repo), appConfig.BaseUrl, appConfig.Version)

	apiHandler := api.NewHandler(repo, service, validator, verifier, mcpServer, auth.NewHandler())
	server := api.NewServer(apiHandler)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appConfig.Port)
		log.Printf("Endpoints available:")
		log.Printf("  Home:     http://localhost:%s/", appConfig.Port)
		log.Printf("  Analyze:  http://localhost:%s/new?company=<domain>", appConfig.Port)
		log.Printf("  Webhook:  http://localhost:%s/webhook", appConfig.Port)
		log.Printf("  MCP:      http://localhost:%s/mcp", appConfig.Port)
		log.Printf("  Health:   http://localhost:%s/health", appConfig.Port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("Rivalmap started successfully!")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	log.Println("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	log.Println("Rivalmap shutdown complete")
}
