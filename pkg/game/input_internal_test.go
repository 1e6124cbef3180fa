package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestInputQueue_DrainOrder(t *testing.T) {
	t.Parallel()

	q := NewInputQueue()
	q.Push(EventKeyPause)
	q.Push(EventKeyStop)
	q.Push(EventKeyDebug)
	assert.Equal(t, 3, q.Len())

	events := []Event{EventQuit}
	q.drain(&events)
	assert.Equal(t, []Event{EventQuit, EventKeyPause, EventKeyStop, EventKeyDebug}, events)
	assert.Zero(t, q.Len())

	events = events[:0]
	q.drain(&events)
	assert.Empty(t, events)
}

func TestInputQueue_ConcurrentPush(t *testing.T) {
	t.Parallel()

	const (
		producers = 8
		perWorker = 500
	)

	q := NewInputQueue()
	var g errgroup.Group
	for i := range producers {
		ev := allEvents[i%len(allEvents)]
		g.Go(func() error {
			for range perWorker {
				q.Push(ev)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var events []Event
	q.drain(&events)
	assert.Len(t, events, producers*perWorker)
}
