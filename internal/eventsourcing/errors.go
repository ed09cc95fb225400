// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package eventsourcing

import (
	"errors"

	"github.com/samber/oops"
)

// Sentinel errors for errors.Is checks.
var (
	ErrAggregateIsDeleted = errors.New("aggregate is deleted")
	ErrNotFound           = errors.New("aggregate not found")
	ErrHistoryOutOfOrder  = errors.New("event history out of order")
	ErrUnknownEventType   = errors.New("unknown event type")
)

// NotFound builds the error returned when no live aggregate matches a lookup.
// The key-value pairs identify the lookup (e.g. "aggregate_id", id).
func NotFound(aggregateType string, keyvals ...any) error {
	return oops.Code("NOT_FOUND").
		With("aggregate_type", aggregateType).
		With(keyvals...).
		Wrap(ErrNotFound)
}
