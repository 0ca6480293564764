/*
Copyright © 2026 Fishbowlhq <dev@fishbowlhq.dev>
*/

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomPassword(t *testing.T) {
	room, err := NewRoom("den", "hunter2", newTestGame(defaultTestOptions()))
	require.NoError(t, err)

	assert.True(t, room.CheckPassword("hunter2"))
	assert.False(t, room.CheckPassword("hunter3"))
	assert.False(t, room.CheckPassword(""))
}

func TestRoomEmptyPassword(t *testing.T) {
	room, err := NewRoom("den", "", newTestGame(defaultTestOptions()))
	require.NoError(t, err)

	assert.True(t, room.CheckPassword(""))
	assert.False(t, room.CheckPassword("anything"))
}

func TestUniqueNickname(t *testing.T) {
	room, err := NewRoom("den", "", newTestGame(defaultTestOptions()))
	require.NoError(t, err)

	for i, want := range []string{"Amy", "Amy-1", "Amy-2"} {
		got := room.uniqueNickname("Amy")
		assert.Equal(t, want, got)

		room.Players[string(rune('a'+i))] = &Player{Nickname: got}
	}
}
