package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s := Default()
	assert.Equal(t, 2, s.PageBuffer)
	assert.Equal(t, 200, s.DebounceMs)
	assert.Equal(t, 200*time.Millisecond, s.Debounce())
	assert.False(t, s.Silent)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "page_buffer = 4\ndebounce_ms = 50\nsilent = true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, s.PageBuffer)
	assert.Equal(t, 50*time.Millisecond, s.Debounce())
	assert.True(t, s.Silent)
	// Unset keys keep their defaults.
	assert.Equal(t, Default().PageCap, s.PageCap)
}

func TestLoadClampsNegatives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("page_buffer = -3\ndebounce_ms = -1\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, s.PageBuffer)
	assert.Equal(t, 0, s.DebounceMs)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("page_buffer = [not toml"), 0o644))

	s, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), s)
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("report.pdf"))
	assert.True(t, IsSupported("NOTES.TXT"))
	assert.True(t, IsSupported("mail.eml"))
	assert.False(t, IsSupported("binary.exe"))
	assert.False(t, IsSupported("noextension"))
}
