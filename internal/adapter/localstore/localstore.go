package localstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/niksmo/stylehub/internal/core/port"
	"github.com/spf13/afero"
)

var _ port.StateStorage = (*Store)(nil)

var ErrInvalidKey = errors.New("invalid state key")

const fileExt = ".json"

// Store keeps every state key in its own file.
// Writes go to a temporary file renamed over the old one.
type Store struct {
	fs afero.Fs
}

func New(fs afero.Fs) Store {
	return Store{fs}
}

// OpenDir creates dir if needed and stores state files there.
func OpenDir(dir string) (Store, error) {
	const op = "localstore.OpenDir"
	log := slog.With("op", op)

	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return Store{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("local state directory is ready", "dir", dir)
	return New(afero.NewBasePathFs(osFs, dir)), nil
}

// InMemory keeps state for the process lifetime only.
func InMemory() Store {
	return New(afero.NewMemMapFs())
}

func (s Store) Load(ctx context.Context, key string) ([]byte, error) {
	const op = "Store.Load"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	name, err := fileName(key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data, err := afero.ReadFile(s.fs, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func (s Store) Save(ctx context.Context, key string, data []byte) error {
	const op = "Store.Save"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	name, err := fileName(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tmp := name + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.fs.Rename(tmp, name); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func fileName(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%q: %w", key, ErrInvalidKey)
	}
	return path.Join("/", key+fileExt), nil
}
