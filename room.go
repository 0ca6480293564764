/*
Copyright © 2026 Fishbowlhq <dev@fishbowlhq.dev>
*/

package main

import (
	"fmt"

	"github.com/segmentio/kafka-go"
	"golang.org/x/crypto/bcrypt"
)

// Player is one connection's identity inside a room.
type Player struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	RoomName string `json:"roomName"`
	Ready    bool   `json:"ready"`

	// Remaining clock ticks before the player is treated as gone.
	afkBudget int
}

// Room owns one game, its players, and the chat log. Rooms live only
// inside the session directory and die the instant they empty.
type Room struct {
	Name       string             `json:"roomName"`
	Players    map[string]*Player `json:"players"`
	ReadyCount int                `json:"playersReady"`
	Game       *Game              `json:"game"`

	chatHistory  []ChatEntry
	passwordHash []byte
	audit        *kafka.Writer
}

func NewRoom(name, password string, game *Game) (*Room, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Room{
		Name:         name,
		Players:      make(map[string]*Player),
		Game:         game,
		chatHistory:  []ChatEntry{},
		passwordHash: hash,
	}, nil
}

func (r *Room) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(r.passwordHash, []byte(password)) == nil
}

// uniqueNickname disambiguates a requested nickname against the current
// roster by appending -1, -2, ... in join order.
func (r *Room) uniqueNickname(base string) string {
	name := base
	for i := 1; r.hasNickname(name); i++ {
		name = fmt.Sprintf("%s-%d", base, i)
	}
	return name
}

func (r *Room) hasNickname(name string) bool {
	for _, p := range r.Players {
		if p.Nickname == name {
			return true
		}
	}
	return false
}

func (r *Room) connIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for id := range r.Players {
		ids = append(ids, id)
	}
	return ids
}
