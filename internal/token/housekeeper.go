// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package token

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/holomush/identity/pkg/errutil"
)

// Housekeeper periodically purges expired blacklist entries.
type Housekeeper struct {
	blacklist  Blacklist
	interval   time.Duration
	maxRetries uint64
	backoff    time.Duration
	logger     *slog.Logger
}

// HousekeeperOption configures a Housekeeper.
type HousekeeperOption func(*Housekeeper)

// WithHousekeeperLogger sets the logger.
func WithHousekeeperLogger(l *slog.Logger) HousekeeperOption {
	return func(h *Housekeeper) { h.logger = l }
}

// WithRetries sets how often a failed purge is retried and the initial backoff.
func WithRetries(maxRetries uint64, backoff time.Duration) HousekeeperOption {
	return func(h *Housekeeper) {
		h.maxRetries = maxRetries
		h.backoff = backoff
	}
}

// NewHousekeeper creates a housekeeper purging every interval.
func NewHousekeeper(blacklist Blacklist, interval time.Duration, opts ...HousekeeperOption) (*Housekeeper, error) {
	if blacklist == nil {
		return nil, oops.Code("TOKEN_BLACKLIST_MISSING").Wrap(ErrBlacklistMissing)
	}
	if interval <= 0 {
		return nil, oops.Code("INVALID_INTERVAL").With("interval", interval).Errorf("housekeeping interval must be positive")
	}
	h := &Housekeeper{
		blacklist:  blacklist,
		interval:   interval,
		maxRetries: 3,
		backoff:    100 * time.Millisecond,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Run purges once immediately and then on every tick until ctx is done.
// Failed runs are logged and counted; they never stop the loop.
func (h *Housekeeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.logger.InfoContext(ctx, "blacklist housekeeping started", "interval", h.interval)
	for {
		if _, err := h.Purge(ctx); err != nil && ctx.Err() == nil {
			purgeFailuresTotal.Inc()
			errutil.LogError(h.logger, "blacklist purge failed", err)
		}
		select {
		case <-ctx.Done():
			h.logger.InfoContext(ctx, "blacklist housekeeping stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Purge removes expired entries, retrying with exponential backoff.
func (h *Housekeeper) Purge(ctx context.Context) (int64, error) {
	var purged int64
	backoff := retry.WithMaxRetries(h.maxRetries, retry.NewExponential(h.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		n, err := h.blacklist.Purge(ctx)
		if err != nil {
			errutil.LogWarn(ctx, h.logger, "blacklist purge attempt failed", err)
			return retry.RetryableError(err)
		}
		purged = n
		return nil
	})
	if err != nil {
		return 0, oops.Code("TOKEN_BLACKLIST_PURGE_FAILED").Wrap(err)
	}
	purgedTotal.Add(float64(purged))
	if purged > 0 {
		h.logger.InfoContext(ctx, "purged expired blacklist entries", "count", purged)
	}
	return purged, nil
}
