package document

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchSeesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	var fired atomic.Int64
	stop, err := Watch(path, func() { fired.Add(1) })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	require.Eventually(t, func() bool { return fired.Load() > 0 }, 3*time.Second, 10*time.Millisecond)
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	var fired atomic.Int64
	stop, err := Watch(path, func() { fired.Add(1) })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int64(0), fired.Load())
}

func TestWatchSeesAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	var fired atomic.Int64
	stop, err := Watch(path, func() { fired.Add(1) })
	require.NoError(t, err)
	defer stop()

	tmp := filepath.Join(dir, ".doc.txt.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("v2"), 0o644))
	require.NoError(t, os.Rename(tmp, path))
	require.Eventually(t, func() bool { return fired.Load() > 0 }, 3*time.Second, 10*time.Millisecond)
}

func TestWatchMissingDirectory(t *testing.T) {
	_, err := Watch(filepath.Join(t.TempDir(), "nope", "doc.txt"), func() {})
	assert.Error(t, err)
}
