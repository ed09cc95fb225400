// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamName(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		id       string
		expected string
	}{
		{"without tenant", "role", "01HZX", "role/01HZX"},
		{"with tenant", "user", "acme:01HZX", "user/acme:01HZX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := StreamName(tt.kind, tt.id)
			assert.Equal(t, tt.expected, stream)

			kind, id, ok := SplitStreamName(stream)
			assert.True(t, ok)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestSplitStreamName_Malformed(t *testing.T) {
	_, _, ok := SplitStreamName("no-separator")
	assert.False(t, ok)
}
