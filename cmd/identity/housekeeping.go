// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/identity/internal/manager"
	"github.com/holomush/identity/internal/observability"
	"github.com/holomush/identity/internal/settings"
	"github.com/holomush/identity/internal/token"
	"github.com/holomush/identity/pkg/errutil"
)

// observabilityServerFactory creates the metrics/health server.
// Replaced in tests.
var observabilityServerFactory = func(addr string, ready observability.ReadinessChecker, cs ...prometheus.Collector) (ObservabilityServer, error) {
	return observability.NewServer(addr, version, ready, cs...)
}

// NewHousekeepingCmd creates the housekeeping command.
func NewHousekeepingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "housekeeping",
		Short: "Purge expired token blacklist entries until stopped",
		Long: `Run the blacklist housekeeper: expired entries are purged on every
token.purge_interval. Metrics and health probes are served on metrics.addr.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runHousekeeping(ctx, cfg, logger)
		},
	}
}

func runHousekeeping(ctx context.Context, cfg settings.Config, logger *slog.Logger) error {
	interval, err := cfg.PurgeEvery()
	if err != nil {
		return err
	}

	blacklist, closeBlacklist, err := openBlacklist(ctx, cfg)
	if err != nil {
		return oops.With("operation", "open blacklist").Wrap(err)
	}
	defer closeBlacklist()

	housekeeper, err := token.NewHousekeeper(blacklist, interval, token.WithHousekeeperLogger(logger))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ready atomic.Bool
	var obsServer ObservabilityServer
	if cfg.Metrics.Addr != "" {
		collectors := append(token.Collectors(), manager.Collectors()...)
		obsServer, err = observabilityServerFactory(cfg.Metrics.Addr, ready.Load, collectors...)
		if err != nil {
			return err
		}
		errCh, err := obsServer.Start()
		if err != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").With("addr", cfg.Metrics.Addr).Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, errCh, "observability", logger)
	}

	logger.InfoContext(ctx, "housekeeping started",
		"blacklist", cfg.Token.Blacklist,
		"interval", interval,
	)
	ready.Store(true)
	runErr := housekeeper.Run(ctx)
	ready.Store(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			errutil.LogWarn(shutdownCtx, logger, "error stopping observability server", err)
		}
	}

	logger.Info("shutdown complete")
	return runErr
}

// monitorServerErrors cancels ctx when a server reports an error.
// It exits when either an error is received, the channel is closed, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			logger.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
