// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package otp

import (
	"time"

	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/identity"
	"github.com/holomush/identity/internal/password"
)

// Event is the closed set of one-time password events.
type Event interface {
	eventsourcing.DomainEvent
	isOTPEvent()
}

// Created is the first event of every one-time password.
type Created struct {
	eventsourcing.EventBase
	Password        password.Hash `json:"password"`
	ExpiresOn       *time.Time    `json:"expires_on,omitempty"`
	MaximumAttempts int           `json:"maximum_attempts,omitempty"`
}

// ValidationFailed records a wrong candidate and consumes one attempt.
type ValidationFailed struct {
	eventsourcing.EventBase
}

// ValidationSucceeded records the single successful validation.
type ValidationSucceeded struct {
	eventsourcing.EventBase
}

// Updated patches the custom attributes.
type Updated struct {
	eventsourcing.EventBase
	CustomAttributes identity.CustomAttributesPatch `json:"custom_attributes,omitempty"`
}

// Deleted logically deletes a one-time password.
type Deleted struct {
	eventsourcing.EventBase
}

func (*Created) EventType() string             { return "otp.created" }
func (*ValidationFailed) EventType() string    { return "otp.validation_failed" }
func (*ValidationSucceeded) EventType() string { return "otp.validation_succeeded" }
func (*Updated) EventType() string             { return "otp.updated" }
func (*Deleted) EventType() string             { return "otp.deleted" }

// DeletesAggregate implements eventsourcing.Deletion.
func (*Deleted) DeletesAggregate() bool { return true }

func (*Created) isOTPEvent()             {}
func (*ValidationFailed) isOTPEvent()    {}
func (*ValidationSucceeded) isOTPEvent() {}
func (*Updated) isOTPEvent()             {}
func (*Deleted) isOTPEvent()             {}

// Codec serializes one-time password events.
var Codec = eventsourcing.NewCodec[Event](AggregateType,
	func() Event { return &Created{} },
	func() Event { return &ValidationFailed{} },
	func() Event { return &ValidationSucceeded{} },
	func() Event { return &Updated{} },
	func() Event { return &Deleted{} },
)
