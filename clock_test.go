/*
Copyright © 2026 Fishbowlhq <dev@fishbowlhq.dev>
*/

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startedRoom spins up a room with a running game so tick behavior can
// be exercised without the websocket layer.
func startedRoom(t *testing.T, d *Directory) (*Room, []string) {
	t.Helper()

	conns := fillRoom(t, d, "den", 4)
	for i := 0; i < 10; i++ {
		d.dispatch(conns[0], ClientMessage{Type: evPhraseAdded, Phrase: "phrase-" + string(rune('a'+i))})
	}
	d.dispatch(conns[0], ClientMessage{Type: evStartGame})
	require.True(t, d.rooms["den"].Game.HasBegun)

	return d.rooms["den"], conns
}

func TestTickIgnoresStoppedTimers(t *testing.T) {
	d, out := newTestDirectory(testConfig())
	room, _ := startedRoom(t, d)

	out.reset()
	d.Tick()

	assert.Equal(t, 60, room.Game.Timer)
	assert.Empty(t, out.broadcast)
}

func TestTickCountsDown(t *testing.T) {
	d, out := newTestDirectory(testConfig())
	room, _ := startedRoom(t, d)

	d.dispatch(activeClueGiver(room), ClientMessage{Type: evShowPhrase})
	require.True(t, room.Game.TimerRunning)

	out.reset()
	d.Tick()

	assert.Equal(t, 59, room.Game.Timer)
	assert.Equal(t, []string{"timerUpdate"}, out.broadcastTypes())

	update, ok := out.broadcast[0].(TimerMessage)
	require.True(t, ok)
	assert.Equal(t, 59, update.Timer)
}

func TestTickExpirySwitchesTurn(t *testing.T) {
	d, out := newTestDirectory(testConfig())
	room, _ := startedRoom(t, d)
	g := room.Game

	d.dispatch(activeClueGiver(room), ClientMessage{Type: evShowPhrase})

	was := g.ActiveTeam
	rotation := g.Team(was).ActivePlayer
	g.Timer = 0

	out.reset()
	d.Tick()

	assert.Equal(t, was.Other(), g.ActiveTeam)
	assert.Equal(t, 60, g.Timer)
	assert.False(t, g.TimerRunning)
	assert.Equal(t, rotation, g.Team(was).ActivePlayer, "turn expiry must not advance the rotation")

	assert.Equal(t, []string{"switchingTurns", "newActivePlayer", "updateGame", "timerUpdate"}, out.broadcastTypes())
}

func TestTickKicksAfkPlayers(t *testing.T) {
	cfg := testConfig()
	cfg.afkTimeout = 2 * time.Second

	d, _ := newTestDirectory(cfg)
	conns := fillRoom(t, d, "den", 2)

	// Budget is two ticks; the third tick finds it exhausted.
	d.Tick()
	d.Tick()
	require.Contains(t, d.rooms, "den")

	d.Tick()

	assert.NotContains(t, d.players, conns[0])
	assert.NotContains(t, d.players, conns[1])
	assert.Empty(t, d.rooms, "emptied room is deleted")
}

func TestDispatchResetsAfkBudget(t *testing.T) {
	cfg := testConfig()
	cfg.afkTimeout = 2 * time.Second

	d, _ := newTestDirectory(cfg)
	conns := fillRoom(t, d, "den", 2)

	d.Tick()
	d.Tick()

	// Any event from the player counts as activity.
	d.dispatch(conns[0], ClientMessage{Type: evChatMessage, Message: "still here"})

	d.Tick()

	assert.Contains(t, d.players, conns[0])
	assert.NotContains(t, d.players, conns[1])
}

func TestAfkDisabledByDefault(t *testing.T) {
	d, _ := newTestDirectory(testConfig())
	conns := fillRoom(t, d, "den", 2)

	for i := 0; i < 100; i++ {
		d.Tick()
	}

	assert.Contains(t, d.players, conns[0])
	assert.Contains(t, d.players, conns[1])
}
