// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package eventsourcing provides the aggregate kernel shared by every identity
// aggregate.
//
// An aggregate embeds Root, declares a closed set of events (an interface with
// an unexported marker method) and handles each of them in an exhaustive type
// switch passed to NewRoot. Business methods check their preconditions and call
// Raise; Raise stamps the event, applies it and queues it for persistence.
// Repository turns queued events into core.Event envelopes through a Codec,
// appends them with optimistic concurrency and publishes them afterwards.
package eventsourcing
