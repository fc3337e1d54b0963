package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"steamshelf/internal/library"
	"steamshelf/internal/metadata"
	"steamshelf/internal/profiles"
	"steamshelf/internal/steam"
	"steamshelf/pkg/database"
	"steamshelf/pkg/utils"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.RequireSteam(); err != nil {
		log.Fatalf("config: %v", err)
	}

	db := database.MustOpen(database.Config{Path: cfg.DBPath})
	defer db.Close()

	if err := database.Migrate(db, cfg.SchemaPath); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	profileStore, err := profiles.Open(cfg.ProfilesPath)
	if err != nil {
		log.Fatalf("open profile store: %v", err)
	}
	defer profileStore.Close()

	router := gin.Default()

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.Use(requestID())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.DBPath})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db_error": err.Error()})
			return
		}
		if err := profileStore.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "profiles_error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready", "db": "ok"})
	})

	api := router.Group("/api")

	// Steam lookups
	steamClient := steam.NewClient(cfg.SteamAPIKey, cfg.SteamTimeout)
	libHandler := library.NewHandler(steamClient)
	libHandler.RegisterRoutes(api)

	// Metadata enrichment; runs cache-only when IGDB creds are absent
	metaRepo := metadata.NewRepo(db)
	var enricher metadata.Enricher
	if cfg.EnrichmentEnabled() {
		tokens := metadata.NewTokenSource(cfg.IGDBClientID, cfg.IGDBClientSecret, cfg.IGDBTimeout)
		enricher = metadata.NewIGDBClient(cfg.IGDBClientID, tokens, cfg.IGDBTimeout)
	} else {
		log.Println("IGDB credentials not configured, serving metadata from cache only")
	}
	metaHandler := metadata.NewHandler(metadata.NewFetcher(metaRepo, enricher))
	metaHandler.RegisterRoutes(api)

	// Saved profiles (consent-gated)
	profHandler := profiles.NewHandler(profileStore)
	profHandler.RegisterRoutes(api)

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on %s", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}

// requestID tags every request so upstream-failure log lines can be
// correlated with client reports.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
