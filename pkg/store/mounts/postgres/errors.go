package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/marmos91/davmount/pkg/store/mounts"
)

// mapPgError maps PostgreSQL errors to mount store errors.
func mapPgError(err error, operation string, id mounts.MountID) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return mounts.NewNotFoundError(id)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505: unique_violation. Save upserts, so this only surfaces
		// from future non-upsert writes.
		if pgErr.Code == "23505" {
			return &mounts.StoreError{
				Code:    mounts.ErrAlreadyExists,
				Message: fmt.Sprintf("%s: already exists", operation),
				ID:      id,
			}
		}
	}

	return mounts.NewInternalError(operation, err)
}
