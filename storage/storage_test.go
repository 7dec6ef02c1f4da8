package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFSPutCreatesDirs(t *testing.T) {
	root := t.TempDir()
	w := LocalFS{Root: root}

	require.NoError(t, w.Put(context.Background(), "raw/fx_rates/EURUSD.json", []byte(`{"a":1}`), false))

	data, err := os.ReadFile(filepath.Join(root, "raw", "fx_rates", "EURUSD.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestLocalFSOverwrite(t *testing.T) {
	root := t.TempDir()
	w := LocalFS{Root: root}
	ctx := context.Background()

	require.NoError(t, w.Put(ctx, "p.json", []byte("first"), false))

	err := w.Put(ctx, "p.json", []byte("second"), false)
	assert.ErrorIs(t, err, ErrExists)

	data, _ := os.ReadFile(filepath.Join(root, "p.json"))
	assert.Equal(t, "first", string(data))

	require.NoError(t, w.Put(ctx, "p.json", []byte("third"), true))
	data, _ = os.ReadFile(filepath.Join(root, "p.json"))
	assert.Equal(t, "third", string(data))
}

func TestLocalFSAbsolutePathIgnoresRoot(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "out", "x.json")
	w := LocalFS{Root: "/nonexistent-root"}

	require.NoError(t, w.Put(context.Background(), abs, []byte("x"), true))
	_, err := os.Stat(abs)
	assert.NoError(t, err)
}

func TestLocalFSCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := LocalFS{Root: t.TempDir()}.Put(ctx, "x.json", nil, true)
	assert.ErrorIs(t, err, context.Canceled)
}
