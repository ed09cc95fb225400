// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package manager

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/identity/internal/identity"
)

func TestCollectors_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	for _, c := range Collectors() {
		require.NoError(t, reg.Register(c))
	}

	conflictsTotal.WithLabelValues("user", "email").Add(0)
	cascadeSavesTotal.WithLabelValues("user").Add(0)
	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "identity_manager_uniqueness_conflicts_total")
	assert.Contains(t, names, "identity_manager_cascade_saves_total")
}

func TestUniqueNameConflict_CountsConflict(t *testing.T) {
	counter := conflictsTotal.WithLabelValues("role", "unique_name")
	before := testutil.ToFloat64(counter)

	err := uniqueNameConflict("role", "acme", identity.UniqueName("admins"), "acme:r1", "acme:r2")

	assert.ErrorIs(t, err, ErrUniqueNameAlreadyUsed)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
