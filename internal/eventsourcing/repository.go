// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package eventsourcing

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/holomush/identity/internal/core"
	"github.com/holomush/identity/pkg/errutil"
)

// Aggregate is the part of an aggregate the repository needs. Aggregates get
// it by embedding Root.
type Aggregate[E DomainEvent] interface {
	AggregateID() string
	Version() int64
	IsDeleted() bool
	Changes() []E
	MarkCommitted()
	LoadFromHistory(events []E) error
}

// Publisher receives every event after it has been persisted.
type Publisher interface {
	Publish(ctx context.Context, event core.Event) error
}

// Option configures a Repository.
type Option func(*options)

type options struct {
	publisher Publisher
	logger    *slog.Logger
}

// WithPublisher publishes persisted events to p.
func WithPublisher(p Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithLogger sets the logger used for publish failures and debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Repository loads and saves aggregates of one type from an event store.
type Repository[A Aggregate[E], E DomainEvent] struct {
	store        core.EventStore
	codec        *Codec[E]
	newAggregate func() A
	publisher    Publisher
	logger       *slog.Logger
}

// NewRepository creates a repository. newAggregate returns an empty aggregate
// ready for LoadFromHistory.
func NewRepository[A Aggregate[E], E DomainEvent](store core.EventStore, codec *Codec[E], newAggregate func() A, opts ...Option) *Repository[A, E] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Repository[A, E]{
		store:        store,
		codec:        codec,
		newAggregate: newAggregate,
		publisher:    o.publisher,
		logger:       o.logger,
	}
}

// AggregateType returns the type of aggregate stored by the repository.
func (r *Repository[A, E]) AggregateType() string { return r.codec.AggregateType() }

// Load replays the aggregate with the given id. Deleted aggregates are
// returned as such; an id without events yields ErrNotFound. The aggregate
// repositories built on Repository report deleted aggregates as ErrNotFound
// with context deleted=true instead.
func (r *Repository[A, E]) Load(ctx context.Context, id string) (A, error) {
	return r.loadStream(ctx, core.StreamName(r.codec.AggregateType(), id), id)
}

// LoadAll replays every aggregate of the repository's type, deleted ones included.
func (r *Repository[A, E]) LoadAll(ctx context.Context) ([]A, error) {
	streams, err := r.store.ListStreams(ctx, r.codec.AggregateType())
	if err != nil {
		return nil, oops.With("aggregate_type", r.codec.AggregateType()).Wrap(err)
	}
	out := make([]A, 0, len(streams))
	for _, stream := range streams {
		_, id, _ := core.SplitStreamName(stream)
		agg, err := r.loadStream(ctx, stream, id)
		if err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	return out, nil
}

// Find returns the live aggregates matching match, in stream order.
func (r *Repository[A, E]) Find(ctx context.Context, match func(A) bool) ([]A, error) {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []A
	for _, agg := range all {
		if !agg.IsDeleted() && match(agg) {
			out = append(out, agg)
		}
	}
	return out, nil
}

// FindOne returns the first live aggregate matching match, or ErrNotFound.
func (r *Repository[A, E]) FindOne(ctx context.Context, match func(A) bool, keyvals ...any) (A, error) {
	var zero A
	found, err := r.Find(ctx, match)
	if err != nil {
		return zero, err
	}
	if len(found) == 0 {
		return zero, NotFound(r.codec.AggregateType(), keyvals...)
	}
	return found[0], nil
}

// Save appends the uncommitted events of each aggregate, then publishes them.
// Aggregates are appended one stream at a time; a failure leaves earlier
// aggregates persisted. Publish failures are logged, never returned, because
// the events are already committed.
func (r *Repository[A, E]) Save(ctx context.Context, aggregates ...A) error {
	if err := ctx.Err(); err != nil {
		return oops.With("aggregate_type", r.codec.AggregateType()).Wrap(err)
	}

	var persisted []core.Event
	for _, agg := range aggregates {
		changes := agg.Changes()
		if len(changes) == 0 {
			continue
		}

		envelopes := make([]core.Event, 0, len(changes))
		for _, e := range changes {
			env, err := r.codec.Encode(e)
			if err != nil {
				return err
			}
			envelopes = append(envelopes, env)
		}

		stream := core.StreamName(r.codec.AggregateType(), agg.AggregateID())
		expected := agg.Version() - int64(len(changes))
		if err := r.store.Append(ctx, stream, expected, envelopes); err != nil {
			return oops.With("aggregate_type", r.codec.AggregateType()).
				With("aggregate_id", agg.AggregateID()).
				Wrap(err)
		}
		agg.MarkCommitted()
		persisted = append(persisted, envelopes...)

		r.logger.DebugContext(ctx, "aggregate saved",
			"aggregate_type", r.codec.AggregateType(),
			"aggregate_id", agg.AggregateID(),
			"version", agg.Version(),
			"events", len(envelopes),
		)
	}

	r.publish(ctx, persisted)
	return nil
}

func (r *Repository[A, E]) publish(ctx context.Context, events []core.Event) {
	if r.publisher == nil {
		return
	}
	for _, ev := range events {
		if err := r.publisher.Publish(ctx, ev); err != nil {
			errutil.LogWarn(ctx, r.logger, "event publish failed",
				oops.With("event_id", ev.ID.String()).With("event_type", ev.Type).Wrap(err))
		}
	}
}

func (r *Repository[A, E]) loadStream(ctx context.Context, stream, id string) (A, error) {
	var zero A
	envelopes, err := r.store.Load(ctx, stream)
	if err != nil {
		return zero, oops.With("stream", stream).Wrap(err)
	}
	if len(envelopes) == 0 {
		return zero, NotFound(r.codec.AggregateType(), "aggregate_id", id)
	}

	events := make([]E, 0, len(envelopes))
	for _, env := range envelopes {
		e, err := r.codec.Decode(env)
		if err != nil {
			return zero, err
		}
		events = append(events, e)
	}

	agg := r.newAggregate()
	if err := agg.LoadFromHistory(events); err != nil {
		return zero, err
	}
	return agg, nil
}
