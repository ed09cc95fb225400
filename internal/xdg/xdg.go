// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package xdg locates the identity configuration under the XDG Base
// Directory layout.
package xdg

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const (
	appName    = "identity"
	configName = "identity.yaml"
)

// ConfigDir returns the XDG config directory for identity.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// DefaultConfigFile returns the path of identity.yaml in ConfigDir when the
// file exists, or "" when it does not. Other stat failures are errors so an
// unreadable file is not silently ignored.
func DefaultConfigFile() (string, error) {
	path := filepath.Join(ConfigDir(), configName)
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	default:
		return "", oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
	}
}
