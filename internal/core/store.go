// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package core

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/samber/oops"
)

// ErrConcurrencyConflict is returned when an append's expected version does not
// match the current version of the stream.
var ErrConcurrencyConflict = errors.New("concurrency conflict")

// EventStore persists and retrieves aggregate event streams.
type EventStore interface {
	// Append persists events to a stream. expectedVersion is the version the
	// caller loaded the stream at (0 for a new stream). The append is rejected
	// with ErrConcurrencyConflict if the stream has moved on since.
	Append(ctx context.Context, stream string, expectedVersion int64, events []Event) error

	// Load returns every event of a stream in version order.
	// An unknown stream yields an empty slice.
	Load(ctx context.Context, stream string) ([]Event, error)

	// ListStreams returns the names of every stream holding aggregates of the given type.
	ListStreams(ctx context.Context, aggregateType string) ([]string, error)
}

// NewConcurrencyConflict builds the error returned on an expected-version mismatch.
func NewConcurrencyConflict(stream string, expected, actual int64) error {
	return oops.Code("EVENT_STORE_CONCURRENCY_CONFLICT").
		With("stream", stream).
		With("expected_version", expected).
		With("actual_version", actual).
		Wrap(ErrConcurrencyConflict)
}

// MemoryEventStore is an in-memory EventStore for testing and single-process use.
type MemoryEventStore struct {
	mu      sync.RWMutex
	streams map[string][]Event
}

// NewMemoryEventStore creates a new in-memory event store.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{
		streams: make(map[string][]Event),
	}
}

// Append persists events to the in-memory store.
func (s *MemoryEventStore) Append(ctx context.Context, stream string, expectedVersion int64, events []Event) error {
	if err := ctx.Err(); err != nil {
		return oops.With("stream", stream).Wrap(err)
	}
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := int64(len(s.streams[stream]))
	if current != expectedVersion {
		return NewConcurrencyConflict(stream, expectedVersion, current)
	}
	for i, e := range events {
		if e.Version != expectedVersion+int64(i)+1 {
			return NewConcurrencyConflict(stream, expectedVersion+int64(i), e.Version-1)
		}
	}

	s.streams[stream] = append(s.streams[stream], events...)
	return nil
}

// Load returns a copy of the events of a stream.
func (s *MemoryEventStore) Load(ctx context.Context, stream string) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, oops.With("stream", stream).Wrap(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.streams[stream]
	result := make([]Event, len(events))
	copy(result, events)
	return result, nil
}

// ListStreams returns the streams of an aggregate type in lexical order.
func (s *MemoryEventStore) ListStreams(ctx context.Context, aggregateType string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, oops.With("aggregate_type", aggregateType).Wrap(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var streams []string
	for name := range s.streams {
		if kind, _, ok := SplitStreamName(name); ok && kind == aggregateType {
			streams = append(streams, name)
		}
	}
	sort.Strings(streams)
	return streams, nil
}
