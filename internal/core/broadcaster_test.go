// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestBroadcaster_PatternRouting(t *testing.T) {
	bc := NewBroadcaster()
	ctx := context.Background()

	roles, err := bc.Subscribe("role.*")
	require.NoError(t, err)
	all, err := bc.Subscribe("*")
	require.NoError(t, err)

	require.NoError(t, bc.Publish(ctx, Event{ID: NewULID(), Type: "role.created"}))
	require.NoError(t, bc.Publish(ctx, Event{ID: NewULID(), Type: "user.created"}))

	assert.Len(t, roles, 1)
	assert.Len(t, all, 2)

	received := <-roles
	assert.Equal(t, "role.created", received.Type)
}

func TestBroadcaster_InvalidPattern(t *testing.T) {
	bc := NewBroadcaster()

	_, err := bc.Subscribe("role.[")
	require.Error(t, err)
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	bc := NewBroadcaster()

	ch, err := bc.Subscribe("*")
	require.NoError(t, err)
	bc.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("channel should be closed immediately")
	}

	// Publishing after unsubscribe must not panic on the closed channel.
	require.NoError(t, bc.Publish(context.Background(), Event{Type: "role.deleted"}))
}

func TestBroadcaster_FullBufferDropsWithoutBlocking(t *testing.T) {
	bc := NewBroadcaster()
	ctx := context.Background()

	ch, err := bc.Subscribe("*")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range subscriberBuffer + 10 {
			_ = bc.Publish(ctx, Event{ID: NewULID(), Type: "otp.validation_failed"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestBroadcaster_NoGoroutineLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	bc := NewBroadcaster()
	ch, err := bc.Subscribe("session.*")
	require.NoError(t, err)

	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		for range ch {
		}
	}()

	require.NoError(t, bc.Publish(context.Background(), Event{Type: "session.signed_out"}))
	bc.Unsubscribe(ch)
	<-consumed
}
