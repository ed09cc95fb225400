// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package token

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	validationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identity_token_validations_total",
			Help: "Total number of token validations by outcome",
		},
		[]string{"outcome"},
	)
	purgedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "identity_token_blacklist_purged_total",
		Help: "Total number of expired blacklist entries purged",
	})
	purgeFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "identity_token_blacklist_purge_failures_total",
		Help: "Total number of purge runs that failed after retries",
	})
)

// Collectors returns the metrics of the package for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{validationsTotal, purgedTotal, purgeFailuresTotal}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "valid"
	case errors.Is(err, ErrBlacklisted):
		return "blacklisted"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrInvalid):
		return "invalid"
	default:
		return "error"
	}
}
