// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/identity/internal/logging"
	"github.com/holomush/identity/internal/settings"
	"github.com/holomush/identity/internal/xdg"
)

const serviceName = "identity"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the identity CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Identity - event-sourced users, roles and credentials",
		Long: `Identity administers the event-sourced identity store: database
migrations, token blacklist housekeeping, password hashing and token tooling.`,
		SilenceUsage: true,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default $XDG_CONFIG_HOME/identity/identity.yaml when present)")
	addConfigFlags(cmd)

	// Add subcommands
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewHousekeepingCmd())
	cmd.AddCommand(NewPasswordCmd())
	cmd.AddCommand(NewTokenCmd())
	cmd.AddCommand(NewStreamsCmd())

	return cmd
}

// addConfigFlags registers one persistent flag per configuration key. Flag
// names are the dotted keys so they map onto the config file one to one.
func addConfigFlags(cmd *cobra.Command) {
	defaults := settings.Default()
	flags := cmd.PersistentFlags()
	flags.String("log.format", defaults.Log.Format, "log format (json or text)")
	flags.String("log.level", defaults.Log.Level, "log level (debug, info, warn, error)")
	flags.String("database.url", defaults.Database.URL, "PostgreSQL connection URL")
	flags.String("redis.url", defaults.Redis.URL, "Redis URL or host:port")
	flags.String("token.blacklist", defaults.Token.Blacklist, "token blacklist backend (memory, postgres, redis)")
	flags.String("token.purge_interval", defaults.Token.PurgeInterval, "interval between blacklist purges")
	flags.String("token.issuer", defaults.Token.Issuer, "issuer of created tokens")
	flags.String("token.audience", defaults.Token.Audience, "audience of created tokens")
	flags.String("metrics.addr", defaults.Metrics.Addr, "metrics/health HTTP address (empty = disabled)")
}

// loadConfig reads the configuration for cmd and installs the default logger.
func loadConfig(cmd *cobra.Command) (settings.Config, *slog.Logger, error) {
	path := configFile
	if path == "" {
		var err error
		if path, err = xdg.DefaultConfigFile(); err != nil {
			return settings.Config{}, nil, err
		}
	}
	cfg, err := settings.Load(path, cmd.Flags())
	if err != nil {
		return settings.Config{}, nil, oops.With("config", path).Wrap(err)
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return settings.Config{}, nil, err
	}
	logger := logging.SetDefault(serviceName, version, cfg.Log.Format, cfg.Log.Level)
	return cfg, logger, nil
}

func requireDatabaseURL(cfg settings.Config) error {
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").
			Errorf("database URL is required (--database.url or IDENTITY_DATABASE_URL)")
	}
	return nil
}
