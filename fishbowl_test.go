/*
Copyright © 2026 Fishbowlhq <dev@fishbowlhq.dev>
*/

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// A connection tearing down while the directory is mid-broadcast must
// never land an event on a closed channel.
func TestBroadcasterSendDuringTeardown(t *testing.T) {
	b := newWSBroadcaster()

	const iterations = 10000

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < iterations; i++ {
			b.Send("c", RoomMessage{Type: "updateLobby"})
			b.Broadcast([]string{"c"}, TimerMessage{Type: "timerUpdate", Timer: i})
		}
	}()

	for i := 0; i < iterations; i++ {
		c := &Client{id: "c", send: make(chan any, 8)}
		b.register(c)
		b.unregister(c.id)
	}

	<-done
}

func TestBroadcasterDropsWhenConsumerStalls(t *testing.T) {
	b := newWSBroadcaster()

	c := &Client{id: "c", send: make(chan any, 2)}
	b.register(c)

	for i := 0; i < 10; i++ {
		b.Send("c", TimerMessage{Type: "timerUpdate", Timer: i})
	}

	assert.Len(t, c.send, 2, "overflow beyond the buffer is dropped")
}

func TestBroadcasterIgnoresUnknownConnection(t *testing.T) {
	b := newWSBroadcaster()

	b.Send("nobody", RoomMessage{Type: "updateLobby"})
	b.Broadcast([]string{"nobody"}, RoomMessage{Type: "updateLobby"})
}

func TestBroadcasterUnregisterIdempotent(t *testing.T) {
	b := newWSBroadcaster()

	c := &Client{id: "c", send: make(chan any, 8)}
	b.register(c)
	b.unregister(c.id)
	b.unregister(c.id)
}
