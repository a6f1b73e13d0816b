package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/niksmo/stylehub/internal/core/port"
)

var _ port.StateStorage = (*StateRepository)(nil)

// StateRepository keeps session state blobs in the local_state table.
type StateRepository struct {
	sqldb sqldb
}

func NewStateRepository(sqldb sqldb) StateRepository {
	return StateRepository{sqldb}
}

func (r StateRepository) Load(ctx context.Context, key string) ([]byte, error) {
	const op = "StateRepository.Load"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT value FROM local_state WHERE key = $1;`

	var data []byte
	err := r.sqldb.QueryRowContext(ctx, query, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: key %q: %w", op, key, err)
	}
	return data, nil
}

func (r StateRepository) Save(ctx context.Context, key string, data []byte) error {
	const op = "StateRepository.Save"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO local_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at;
	`

	_, err := r.sqldb.ExecContext(ctx, query, key, data)
	if err != nil {
		return fmt.Errorf("%s: key %q: %w", op, key, err)
	}
	return nil
}
