package config

import (
	"context"
	"fmt"

	"github.com/marmos91/davmount/pkg/store/mounts"
	"github.com/marmos91/davmount/pkg/store/mounts/badger"
	"github.com/marmos91/davmount/pkg/store/mounts/memory"
	"github.com/marmos91/davmount/pkg/store/mounts/postgres"
	"github.com/mitchellh/mapstructure"
)

// CreateMountStore creates a mount record store from configuration.
//
// The per-type settings are decoded from the matching MountsStoreConfig
// section, so each backend keeps its own configuration type.
func CreateMountStore(ctx context.Context, cfg MountsStoreConfig) (mounts.Store, error) {
	switch cfg.Type {
	case "memory", "":
		// Records vanish on restart; useful for tests and throwaway runs
		return memory.New(), nil
	case "badger":
		return createBadgerMountStore(ctx, cfg)
	case "postgres":
		return createPostgresMountStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown mount store type: %q", cfg.Type)
	}
}

// createBadgerMountStore creates a BadgerDB-backed mount store.
func createBadgerMountStore(ctx context.Context, cfg MountsStoreConfig) (mounts.Store, error) {
	var badgerCfg badger.Config
	if err := decodeStoreConfig(cfg.Badger, &badgerCfg); err != nil {
		return nil, fmt.Errorf("invalid badger config: %w", err)
	}

	if badgerCfg.DBPath == "" {
		return nil, fmt.Errorf("badger mount store requires db_path to be set")
	}

	store, err := badger.New(ctx, badgerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return store, nil
}

// createPostgresMountStore creates a PostgreSQL-backed mount store.
func createPostgresMountStore(ctx context.Context, cfg MountsStoreConfig) (mounts.Store, error) {
	var pgCfg postgres.Config
	if err := decodeStoreConfig(cfg.Postgres, &pgCfg); err != nil {
		return nil, fmt.Errorf("invalid postgres config: %w", err)
	}

	// New applies defaults and validates before connecting
	store, err := postgres.New(ctx, &pgCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres mount store: %w", err)
	}

	return store, nil
}

// decodeStoreConfig decodes a raw per-type config section into the
// backend's own config type, applying the same decode hooks as the main
// config load so durations and sizes keep their human-readable forms.
func decodeStoreConfig(raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: configDecodeHooks(),
		Result:     out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}
