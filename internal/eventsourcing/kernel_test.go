// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package eventsourcing_test

import (
	"fmt"

	"github.com/holomush/identity/internal/eventsourcing"
)

// counter is a minimal aggregate exercising the kernel.
type counter struct {
	eventsourcing.Root[counterEvent]
	name  string
	total int
}

type counterEvent interface {
	eventsourcing.DomainEvent
	isCounterEvent()
}

type counterCreated struct {
	eventsourcing.EventBase
	Name string `json:"name"`
}

type counterIncremented struct {
	eventsourcing.EventBase
	By int `json:"by"`
}

type counterDeleted struct {
	eventsourcing.EventBase
}

func (*counterCreated) EventType() string     { return "counter.created" }
func (*counterIncremented) EventType() string { return "counter.incremented" }
func (*counterDeleted) EventType() string     { return "counter.deleted" }
func (*counterDeleted) DeletesAggregate() bool { return true }

func (*counterCreated) isCounterEvent()     {}
func (*counterIncremented) isCounterEvent() {}
func (*counterDeleted) isCounterEvent()     {}

var counterCodec = eventsourcing.NewCodec[counterEvent]("counter",
	func() counterEvent { return &counterCreated{} },
	func() counterEvent { return &counterIncremented{} },
	func() counterEvent { return &counterDeleted{} },
)

func emptyCounter() *counter {
	c := &counter{}
	c.Root = eventsourcing.NewRoot(c.apply)
	return c
}

func newCounter(id, name string, actor eventsourcing.ActorID) *counter {
	c := emptyCounter()
	c.Raise(&counterCreated{EventBase: eventsourcing.EventBase{AggregateID: id}, Name: name}, actor)
	return c
}

func (c *counter) Increment(by int, actor eventsourcing.ActorID) error {
	if err := c.EnsureNotDeleted(); err != nil {
		return err
	}
	c.Raise(&counterIncremented{By: by}, actor)
	return nil
}

func (c *counter) Delete(actor eventsourcing.ActorID) error {
	if err := c.EnsureNotDeleted(); err != nil {
		return err
	}
	c.Raise(&counterDeleted{}, actor)
	return nil
}

func (c *counter) apply(e counterEvent) {
	switch e := e.(type) {
	case *counterCreated:
		c.name = e.Name
	case *counterIncremented:
		c.total += e.By
	case *counterDeleted:
	default:
		panic(fmt.Sprintf("counter: unhandled event %T", e))
	}
}
