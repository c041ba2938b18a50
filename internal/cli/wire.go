package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.etcd.io/bbolt"

	"jfinder/config"
	"jfinder/internal/adapter/encoder"
	"jfinder/internal/adapter/index"
	"jfinder/internal/adapter/openalex"
	"jfinder/internal/port"
)

// buildEncoder constructs the text encoder selected by the config.
func buildEncoder(cfg *config.Config) (port.Encoder, error) {
	switch cfg.Encoder.Provider {
	case "hf", "":
		backend, err := encoder.NewHFBackend(
			cfg.Encoder.APIKeyEnv,
			cfg.Encoder.Model,
			cfg.Encoder.BaseURL,
			cfg.Encoder.Dimension,
			cfg.Encoder.MaxTokens,
		)
		if err != nil {
			return nil, fmt.Errorf("configuring encoder: %w", err)
		}
		return encoder.New(backend), nil
	case "mock":
		return encoder.New(encoder.NewMockBackend(cfg.Encoder.Dimension)), nil
	default:
		return nil, fmt.Errorf("unknown encoder provider: %s", cfg.Encoder.Provider)
	}
}

func chromaConfig(cfg *config.Config) index.ChromaConfig {
	c := cfg.Index.Chroma
	return index.ChromaConfig{
		Host:       c.Host,
		APIKey:     os.Getenv(c.APIKeyEnv),
		Tenant:     os.Getenv(c.TenantEnv),
		Database:   c.Database,
		Collection: c.Collection,
		Timeout:    time.Duration(c.TimeoutSecs) * time.Second,
	}
}

// buildIndex constructs the vector index selected by the config. The
// returned close function releases the backing store. Connection failures
// are errors here; the serve command uses buildServeIndex instead.
func buildIndex(ctx context.Context, cfg *config.Config) (port.VectorIndex, func() error, error) {
	switch cfg.Index.Provider {
	case "chroma", "":
		idx := index.NewChromaIndex(chromaConfig(cfg))
		if err := idx.Connect(ctx); err != nil {
			return nil, nil, err
		}
		return idx, func() error { return nil }, nil
	case "bolt":
		db, err := bbolt.Open(cfg.Index.Bolt.Path, 0600, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("opening local index: %w", err)
		}
		idx, err := index.NewBoltIndex(db, cfg.Encoder.Dimension)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return idx, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown index provider: %s", cfg.Index.Provider)
	}
}

// buildServeIndex is buildIndex for the long-running server: a chroma
// backend that cannot be reached becomes the Unavailable variant so the
// process still starts and every query reports a clear failure.
func buildServeIndex(ctx context.Context, cfg *config.Config) (port.VectorIndex, func() error, error) {
	if cfg.Index.Provider == "chroma" || cfg.Index.Provider == "" {
		return index.ConnectOrUnavailable(ctx, chromaConfig(cfg)), func() error { return nil }, nil
	}
	return buildIndex(ctx, cfg)
}

// buildCatalog constructs the OpenAlex journal source.
func buildCatalog(cfg *config.Config) port.JournalSource {
	opts := []openalex.ClientOption{}
	if mailto := os.Getenv(cfg.Ingest.MailtoEnv); mailto != "" {
		opts = append(opts, openalex.WithMailto(mailto))
	}
	return openalex.NewCatalog(openalex.NewClient(opts...))
}
