// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package manager saves aggregates whose invariants span several aggregates:
// tenant-wide uniqueness of names, emails and custom identifiers, and the
// clean-up of references when a role or user is deleted.
//
// Checks run against the repositories before the save; two concurrent saves
// can still both pass them. Storage-level uniqueness belongs to read models.
package manager

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/identity"
)

var tracer = otel.Tracer("holomush/identity/manager")

// Sentinel errors for errors.Is checks.
var (
	ErrUniqueNameAlreadyUsed       = errors.New("unique name already used")
	ErrEmailAddressAlreadyUsed     = errors.New("email address already used")
	ErrCustomIdentifierAlreadyUsed = errors.New("custom identifier already used")
)

var (
	conflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identity_manager_uniqueness_conflicts_total",
			Help: "Total number of saves rejected by a uniqueness check, by aggregate and field",
		},
		[]string{"aggregate", "field"},
	)
	cascadeSavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identity_manager_cascade_saves_total",
			Help: "Total number of aggregates saved while cleaning up after a deletion, by aggregate",
		},
		[]string{"aggregate"},
	)
)

// Collectors returns the metrics of the package for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{conflictsTotal, cascadeSavesTotal}
}

// Option configures a manager.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func startSpan(ctx context.Context, name, aggregateID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("aggregate.id", aggregateID)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// isNotFound treats a missing aggregate as an absent conflict.
func isNotFound(err error) bool {
	return errors.Is(err, eventsourcing.ErrNotFound)
}

func uniqueNameConflict(aggregate string, tenantID identity.TenantID, name identity.UniqueName, aggregateID, conflictID string) error {
	conflictsTotal.WithLabelValues(aggregate, "unique_name").Inc()
	return oops.Code("UNIQUE_NAME_ALREADY_USED").
		With("aggregate_type", aggregate).
		With("tenant_id", tenantID.String()).
		With("unique_name", name.String()).
		With("aggregate_id", aggregateID).
		With("conflict_id", conflictID).
		Wrap(ErrUniqueNameAlreadyUsed)
}
