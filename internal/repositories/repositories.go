// package repositories provides SQLite persistence for recorded profile runs.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/JuezFenix/bgg-profiler/internal/shared"
)

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// notFound converts [sql.ErrNoRows] into [shared.ErrNotFound] for the named entity.
func notFound(err error, entity, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, entity, id)
	}
	return fmt.Errorf("failed to scan %s: %w", entity, err)
}
