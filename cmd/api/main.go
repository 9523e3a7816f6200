package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"catalog/api/internal/app"
	"catalog/api/internal/archive"
	"catalog/api/internal/config"
	"catalog/api/internal/gitrepo"
	"catalog/api/internal/kv"
	"catalog/api/internal/search"
	"catalog/api/internal/taxonomy"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		log.Fatalf("taxonomy load failed: %v", err)
	}

	backend, cleanup, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatalf("kv backend failed: %v", err)
	}
	defer cleanup()

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, search.NewMemory(search.Records(tax)))

	service := app.New(tax, backend, searchService)

	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		archiveService, err := archive.New(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Printf("WARNING: export archive disabled: %v", err)
		} else {
			service.WithArchive(archiveService)
		}
	}
	if strings.TrimSpace(cfg.DraftsDir) != "" {
		service.WithDrafts(gitrepo.New(cfg.DraftsDir))
	}

	if err := service.Bootstrap(ctx); err != nil {
		log.Printf("WARNING: bootstrap error (will retry on next restart): %v", err)
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Catalog API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// openBackend picks the KV store from config: redis, postgres or the
// in-memory store for local development.
func openBackend(ctx context.Context, cfg config.Config) (kv.Store, func(), error) {
	switch cfg.KVBackend {
	case "redis":
		log.Printf("Using Redis for catalog state")
		store, err := kv.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "postgres":
		log.Printf("Using PostgreSQL for catalog state")
		db, err := kv.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := kv.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
			db.Close()
			return nil, nil, err
		}
		store := kv.NewPostgresStore(db)
		return store, func() { _ = store.Close() }, nil
	default:
		log.Printf("Using in-memory catalog state (set CATALOG_KV_BACKEND to redis or postgres to persist)")
		store := kv.NewMemory()
		return store, func() {}, nil
	}
}
