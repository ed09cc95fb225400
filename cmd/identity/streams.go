// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/identity/internal/apikey"
	"github.com/holomush/identity/internal/core"
	"github.com/holomush/identity/internal/otp"
	"github.com/holomush/identity/internal/role"
	"github.com/holomush/identity/internal/session"
	"github.com/holomush/identity/internal/store"
	"github.com/holomush/identity/internal/user"
)

var aggregateTypes = []string{
	apikey.AggregateType,
	otp.AggregateType,
	role.AggregateType,
	session.AggregateType,
	user.AggregateType,
}

// eventStoreFactory opens the event store for a database URL.
// Replaced in tests.
var eventStoreFactory = func(ctx context.Context, databaseURL string) (core.EventStore, func(), error) {
	pool, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}
	return store.NewPostgresEventStore(pool), pool.Close, nil
}

// NewStreamsCmd creates the streams command.
func NewStreamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "streams [TYPE...]",
		Short: "List event streams with their version and last event",
		Long: `List the event streams of the given aggregate types (default: all of
apikey, otp, role, session and user).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range args {
				if !slices.Contains(aggregateTypes, t) {
					return oops.Code("INVALID_ARGUMENT").
						With("aggregate_type", t).
						With("valid", aggregateTypes).
						Errorf("unknown aggregate type")
				}
			}
			if len(args) == 0 {
				args = aggregateTypes
			}

			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := requireDatabaseURL(cfg); err != nil {
				return err
			}
			events, closeStore, err := eventStoreFactory(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return err
			}
			defer closeStore()
			return listStreams(cmd, events, args)
		},
	}
}

func listStreams(cmd *cobra.Command, events core.EventStore, aggregateTypes []string) error {
	ctx := cmd.Context()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	if _, err := w.Write([]byte("STREAM\tVERSION\tLAST EVENT\tACTOR\tOCCURRED\n")); err != nil {
		return oops.Wrap(err)
	}
	for _, aggregateType := range aggregateTypes {
		streams, err := events.ListStreams(ctx, aggregateType)
		if err != nil {
			return err
		}
		for _, stream := range streams {
			history, err := events.Load(ctx, stream)
			if err != nil {
				return err
			}
			if len(history) == 0 {
				continue
			}
			last := history[len(history)-1]
			if _, err := fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
				stream, last.Version, last.Type, last.ActorID, last.Timestamp.Format(time.RFC3339)); err != nil {
				return oops.Wrap(err)
			}
		}
	}
	return oops.Wrap(w.Flush())
}
