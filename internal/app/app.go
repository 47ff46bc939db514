// Package app holds the wiring shared by the registry binaries.
package app

import (
	"context"
	"fmt"

	"eie-registry/internal/config"
	"eie-registry/internal/eprel"
	"eie-registry/internal/repository"
	"eie-registry/internal/service"
	"eie-registry/internal/storage"
	"eie-registry/internal/ws"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// NewStore returns the MinIO bucket when an endpoint is configured and an
// in-process store otherwise.
func NewStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.ObjectStore, error) {
	if cfg.MinioEndpoint == "" {
		logger.Warn().Msg("MINIO_ENDPOINT not set, product files are kept in memory")
		return storage.NewMemoryStore(), nil
	}
	store, err := storage.NewMinioStore(storage.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		UseSSL:    cfg.MinioUseSSL,
		Bucket:    cfg.MinioBucket,
	})
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	return store, nil
}

// NewLookup returns nil when no EPREL endpoint is configured.
func NewLookup(cfg *config.Config, logger zerolog.Logger) eprel.Lookup {
	if cfg.EPRELBaseURL == "" {
		logger.Warn().Msg("EPREL_BASE_URL not set, uploads are registered without EPREL checks")
		return nil
	}
	return eprel.NewClient(cfg.EPRELBaseURL, cfg.EPRELAPIKey, cfg.EPRELTimeout)
}

// NewUploadProcessor builds the product file loader on db.
func NewUploadProcessor(db *gorm.DB, store storage.ObjectStore, lookup eprel.Lookup, notifier ws.Notifier, logger zerolog.Logger) service.UploadProcessor {
	return service.NewUploadProcessor(
		repository.NewUploadRepo(db),
		repository.NewProductRepo(db),
		store,
		lookup,
		db,
		notifier,
		logger,
	)
}

func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}
