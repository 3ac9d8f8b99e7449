// Package badger provides a BadgerDB-backed mount-record store.
//
// This is the default persistence backend: an embedded key-value database
// that needs no external service and survives daemon restarts, which is
// what resuming mounts at startup depends on.
package badger

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/marmos91/davmount/pkg/store/mounts"
)

// Store implements mounts.Store using BadgerDB for persistence.
//
// Thread Safety:
// BadgerDB transactions provide isolation; the store itself holds no
// mutable state beyond the database handle, so it is safe for concurrent
// use from multiple goroutines.
type Store struct {
	// db is the BadgerDB database handle (thread-safe, uses internal MVCC)
	db *badger.DB
}

// Config contains configuration for creating a BadgerDB mount store.
type Config struct {
	// DBPath is the directory where BadgerDB will store its files.
	// BadgerDB creates multiple files in this directory (value log, LSM
	// tree, etc.)
	DBPath string `mapstructure:"db_path"`

	// BadgerOptions allows customization of BadgerDB behavior.
	// If nil, sensible defaults are used.
	BadgerOptions *badger.Options

	// BlockCacheSizeMB is BadgerDB's block cache size in MB (default: 8).
	// Mount records are tiny; the default is deliberately small.
	BlockCacheSizeMB int64 `mapstructure:"block_cache_size_mb"`

	// IndexCacheSizeMB is BadgerDB's index cache size in MB (default: 4).
	IndexCacheSizeMB int64 `mapstructure:"index_cache_size_mb"`
}

// New creates a BadgerDB-backed mount store with the given configuration.
//
// The database is opened at the configured path, creating the directory if
// needed. The returned store is immediately ready for use.
//
// Parameters:
//   - ctx: Context for cancellation during initialization
//   - config: Configuration including the database path
//
// Returns:
//   - *Store: A new store instance ready for use
//   - error: Error if the database cannot be opened or context is cancelled
func New(ctx context.Context, config Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts badger.Options
	if config.BadgerOptions != nil {
		opts = *config.BadgerOptions
	} else {
		opts = badger.DefaultOptions(config.DBPath)

		// Mount records are a few hundred bytes each and change only on
		// mount/unmount, so trim the defaults accordingly.
		opts = opts.WithLoggingLevel(badger.WARNING) // Reduce log noise
		opts = opts.WithCompression(options.None)    // Records are small, compression overhead not worth it

		blockCacheMB := config.BlockCacheSizeMB
		if blockCacheMB == 0 {
			blockCacheMB = 8
		}
		indexCacheMB := config.IndexCacheSizeMB
		if indexCacheMB == 0 {
			indexCacheMB = 4
		}

		opts = opts.WithBlockCacheSize(blockCacheMB << 20) // Convert MB to bytes
		opts = opts.WithIndexCacheSize(indexCacheMB << 20) // Convert MB to bytes
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", config.DBPath, err)
	}

	return &Store{db: db}, nil
}

// NewStoreWithDefaults creates a BadgerDB mount store with default options.
//
// Parameters:
//   - ctx: Context for cancellation during initialization
//   - dbPath: Directory where BadgerDB will store its files
func NewStoreWithDefaults(ctx context.Context, dbPath string) (*Store, error) {
	return New(ctx, Config{DBPath: dbPath})
}

// Save persists a record, replacing any existing record with the same ID.
func (s *Store) Save(ctx context.Context, rec *mounts.Record) error {
	if rec == nil || rec.ID == "" {
		return mounts.NewInvalidArgumentError("record must have an ID")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeRecord(rec)
	if err != nil {
		return mounts.NewInternalError("save mount record", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyMount(rec.ID), data)
	})
	if err != nil {
		return mapBadgerError(err, "save mount record")
	}
	return nil
}

// Get retrieves a record by ID.
func (s *Store) Get(ctx context.Context, id mounts.MountID) (*mounts.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec *mounts.Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyMount(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			rec, err = decodeRecord(val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, mounts.NewNotFoundError(id)
	}
	if err != nil {
		return nil, mapBadgerError(err, "get mount record")
	}
	return rec, nil
}

// Delete removes a record by ID.
func (s *Store) Delete(ctx context.Context, id mounts.MountID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		// Badger deletes are blind; check existence so absent IDs are
		// reported the same way as the other backends.
		if _, err := txn.Get(keyMount(id)); err != nil {
			return err
		}
		return txn.Delete(keyMount(id))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return mounts.NewNotFoundError(id)
	}
	if err != nil {
		return mapBadgerError(err, "delete mount record")
	}
	return nil
}

// List returns all records ordered by ID.
//
// Badger iterates keys in byte order and IDs are fixed-width hex, so the
// prefix scan already yields ID order.
func (s *Store) List(ctx context.Context) ([]*mounts.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []*mounts.Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = keyMountPrefix()

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				rec, err := decodeRecord(val)
				if err != nil {
					return err
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, mapBadgerError(err, "list mount records")
	}
	return records, nil
}

// Close closes the BadgerDB database and releases all resources.
//
// After calling Close, the store must not be used.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close BadgerDB: %w", err)
	}
	return nil
}

// mapBadgerError maps BadgerDB errors to mount store errors. Key-not-found
// is handled at call sites because the mapping needs the mount ID.
func mapBadgerError(err error, operation string) error {
	if errors.Is(err, badger.ErrDBClosed) {
		return mounts.NewClosedError()
	}
	return mounts.NewInternalError(operation, err)
}

// Ensure Store implements mounts.Store.
var _ mounts.Store = (*Store)(nil)
