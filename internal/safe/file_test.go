package safe

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	t.Run("reads regular file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "frame.png")
		require.NoError(t, os.WriteFile(path, []byte("pixels"), 0o600))

		got, err := ReadFile(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "pixels", string(got))
	})

	t.Run("missing file keeps not-exist error", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(t.TempDir(), "missing.png"), nil)
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("rejects symlink by default", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "frame.png")
		link := filepath.Join(dir, "link.png")
		require.NoError(t, os.WriteFile(src, []byte("pixels"), 0o600))
		require.NoError(t, os.Symlink(src, link))

		_, err := ReadFile(link, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "symlink")

		got, err := ReadFile(link, &ReadOptions{AllowSymlinks: true})
		require.NoError(t, err)
		assert.Equal(t, "pixels", string(got))
	})

	t.Run("rejects directory", func(t *testing.T) {
		_, err := ReadFile(t.TempDir(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a regular file")
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "big.png")
		require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o600))

		_, err := ReadFile(path, &ReadOptions{MaxSize: 50})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds maximum")
	})
}
