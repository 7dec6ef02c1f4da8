// Package storage writes raw landing files (FX aggregates, position
// snapshots) for downstream ingestion.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var ErrExists = errors.New("file already exists")

type Writer interface {
	// Put writes data to path. With overwrite false an existing file is
	// left untouched and ErrExists is returned.
	Put(ctx context.Context, path string, data []byte, overwrite bool) error
}

// LocalFS writes under Root. Absolute paths are used as given.
type LocalFS struct {
	Root string
	Perm fs.FileMode
}

var _ Writer = LocalFS{}

func (l LocalFS) resolve(path string) string {
	if filepath.IsAbs(path) || l.Root == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(l.Root, path)
}

func (l LocalFS) Put(ctx context.Context, path string, data []byte, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full := l.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", full, err)
	}

	perm := l.Perm
	if perm == 0 {
		perm = 0o644
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	f, err := os.OpenFile(full, flags, perm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", full, ErrExists)
		}
		return fmt.Errorf("open %s: %w", full, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", full, err)
	}
	return f.Close()
}
