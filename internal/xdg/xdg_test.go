// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package xdg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDir(t *testing.T) {
	t.Run("uses XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		assert.Equal(t, "/custom/config/identity", ConfigDir())
	})

	t.Run("falls back to HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", "/home/test")
		assert.Equal(t, "/home/test/.config/identity", ConfigDir())
	})
}

func TestDefaultConfigFile(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	path, err := DefaultConfigFile()
	require.NoError(t, err)
	assert.Empty(t, path, "missing file is not an error")

	dir := filepath.Join(base, "identity")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	want := filepath.Join(dir, "identity.yaml")
	require.NoError(t, os.WriteFile(want, []byte("log:\n  format: text\n"), 0o600))

	path, err = DefaultConfigFile()
	require.NoError(t, err)
	assert.Equal(t, want, path)
}
