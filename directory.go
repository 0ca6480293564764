/*
Copyright © 2026 Fishbowlhq <dev@fishbowlhq.dev>
*/

package main

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Broadcaster delivers outbound events. Send targets one connection,
// Broadcast a set of them. The directory never touches sockets; the
// transport injects an implementation.
type Broadcaster interface {
	Send(conn string, event any)
	Broadcast(conns []string, event any)
}

// Directory is the process-wide session registry: room names to rooms,
// connection ids to players. All mutations happen on a single
// goroutine inside Run, so handlers need no locking; sequential
// delivery is the isolation mechanism.
type Directory struct {
	cfg     *Config
	out     Broadcaster
	rng     *rand.Rand
	audit   *auditSink
	rooms   map[string]*Room
	players map[string]*Player

	Inbox chan Envelope
}

func NewDirectory(cfg *Config, out Broadcaster, rng *rand.Rand) *Directory {
	return &Directory{
		cfg:     cfg,
		out:     out,
		rng:     rng,
		audit:   newAuditSink(cfg.kafkaBroker),
		rooms:   make(map[string]*Room),
		players: make(map[string]*Player),
		Inbox:   make(chan Envelope, 256),
	}
}

// Run consumes inbound envelopes and clock ticks until ctx is done.
func (d *Directory) Run(ctx context.Context, ticks <-chan time.Time) {
	for {
		select {
		case env := <-d.Inbox:
			d.Dispatch(env)
		case <-ticks:
			d.Tick()
		case <-ctx.Done():
			return
		}
	}
}

func (d *Directory) Dispatch(env Envelope) {
	// Any event from a known player counts as activity.
	if p, ok := d.players[env.Conn]; ok {
		p.afkBudget = d.afkBudgetTicks()
	}

	switch env.Msg.Type {
	case evCreateRoom:
		d.createRoom(env.Conn, env.Msg)
	case evJoinRoom:
		d.joinRoom(env.Conn, env.Msg)
	case evLeaveRoom:
		d.leaveRoom(env.Conn)
	case evDisconnect:
		d.disconnect(env.Conn)
	case evPhraseAdded:
		d.phraseAdded(env.Conn, env.Msg.Phrase)
	case evPhraseRemoved:
		d.phraseRemoved(env.Conn, env.Msg.Phrase)
	case evReadyGame:
		d.readyGame(env.Conn)
	case evStartGame:
		d.startGame(env.Conn)
	case evJoinRedTeam:
		d.changeTeams(env.Conn, RedTeam)
	case evJoinBlueTeam:
		d.changeTeams(env.Conn, BlueTeam)
	case evShowPhrase:
		d.showPhrase(env.Conn)
	case evPhraseCorrect:
		d.phraseCorrect(env.Conn)
	case evNextRound:
		d.nextRound(env.Conn)
	case evChatMessage:
		d.chatMessage(env.Conn, env.Msg.Message)
	}
}

func (d *Directory) afkBudgetTicks() int {
	if d.cfg.afkTimeout <= 0 {
		return 0
	}
	return int(d.cfg.afkTimeout / d.cfg.tick)
}

func (d *Directory) broadcastRoom(room *Room, event any) {
	d.out.Broadcast(room.connIDs(), event)
}

// playerRoom resolves the sender to its player and room. Events from
// unknown connections are silently ignored by every caller.
func (d *Directory) playerRoom(conn string) (*Player, *Room) {
	p, ok := d.players[conn]
	if !ok {
		return nil, nil
	}
	return p, d.rooms[p.RoomName]
}

// Room lifecycle
////////////////////////////////////////////////////////////////////////

func (d *Directory) createRoom(conn string, msg ClientMessage) {
	roomName := strings.TrimSpace(msg.RoomName)
	nickname := strings.TrimSpace(msg.Nickname)

	if _, taken := d.rooms[roomName]; taken {
		d.out.Send(conn, ResponseMessage{Type: "createResponse", Msg: "Room Already Exists"})
		return
	}
	if roomName == "" {
		d.out.Send(conn, ResponseMessage{Type: "createResponse", Msg: "Enter A Valid Room Name"})
		return
	}
	if nickname == "" {
		d.out.Send(conn, ResponseMessage{Type: "createResponse", Msg: "Enter A Valid Nickname"})
		return
	}

	room, err := NewRoom(roomName, msg.Password, NewGame(d.cfg.gameOptions(), d.rng))
	if err != nil {
		d.out.Send(conn, ResponseMessage{Type: "createResponse", Msg: "Could Not Create Room"})
		return
	}
	room.audit = d.audit.openTopic(d.cfg, roomName)
	d.rooms[roomName] = room

	p := d.addPlayerToRoom(conn, nickname, room)
	logf(d.cfg, "ROOMS: %q created room %q", p.Nickname, roomName)

	d.out.Send(conn, ResponseMessage{Type: "createResponse", Success: true})
	d.broadcastRoom(room, RoomMessage{Type: "updateLobby", Room: room})
}

func (d *Directory) joinRoom(conn string, msg ClientMessage) {
	nickname := strings.TrimSpace(msg.Nickname)
	room := d.rooms[strings.TrimSpace(msg.RoomName)]

	if room == nil {
		d.out.Send(conn, ResponseMessage{Type: "joinResponse", Msg: "Room Not Found"})
		return
	}
	if !room.CheckPassword(msg.Password) {
		d.out.Send(conn, ResponseMessage{Type: "joinResponse", Msg: "Incorrect Password"})
		return
	}
	if nickname == "" {
		d.out.Send(conn, ResponseMessage{Type: "joinResponse", Msg: "Enter A Valid Nickname"})
		return
	}

	p := d.addPlayerToRoom(conn, nickname, room)
	logf(d.cfg, "ROOMS: %q joined room %q", p.Nickname, room.Name)

	d.out.Send(conn, ResponseMessage{Type: "joinResponse", Success: true})
	d.out.Send(conn, ChatHistoryMessage{Type: "chatHistory", History: room.chatHistory})

	// A mid-session joiner goes straight to the game view.
	if room.Game.HasBegun {
		d.out.Send(conn, NewGameMessage{Type: "newGameResponse", Success: true, Game: room.Game})
		d.broadcastRoom(room, RoomMessage{Type: "updateGame", Room: room})
	} else {
		d.broadcastRoom(room, RoomMessage{Type: "updateLobby", Room: room})
	}
}

func (d *Directory) addPlayerToRoom(conn, nickname string, room *Room) *Player {
	p := &Player{
		ID:        conn,
		Nickname:  room.uniqueNickname(nickname),
		RoomName:  room.Name,
		afkBudget: d.afkBudgetTicks(),
	}
	room.Players[conn] = p
	d.players[conn] = p
	room.Game.AddPlayer(conn, nil)
	return p
}

func (d *Directory) leaveRoom(conn string) {
	if d.removePlayer(conn) {
		d.out.Send(conn, ResponseMessage{Type: "leaveResponse", Success: true})
	}
}

func (d *Directory) disconnect(conn string) {
	d.removePlayer(conn)
}

// removePlayer is the shared leave/disconnect path: drop the player,
// delete the room if it emptied, otherwise repair the game state for
// the remaining members. Idempotent for unknown connections.
func (d *Directory) removePlayer(conn string) bool {
	p, room := d.playerRoom(conn)
	if p == nil || room == nil {
		return false
	}

	delete(d.players, conn)
	delete(room.Players, conn)

	if len(room.Players) == 0 {
		d.deleteRoom(room)
		return true
	}

	d.repairAfterRemoval(room, p)
	return true
}

func (d *Directory) deleteRoom(room *Room) {
	delete(d.rooms, room.Name)
	d.audit.closeTopic(d.cfg, room.Name, room.audit)
	logf(d.cfg, "ROOMS: deleted empty room %q", room.Name)
}

// repairAfterRemoval keeps a room playable after a member vanishes:
// clamp the rotation indices, hand the turn to the next clue-giver if
// the active one left, and fix the ready tally.
func (d *Directory) repairAfterRemoval(room *Room, p *Player) {
	g := room.Game

	wasActive := g.IsActiveClueGiver(p.ID)
	g.RemovePlayer(p.ID)
	g.ClampRotation()
	if wasActive {
		d.broadcastRoom(room, GameMessage{Type: "newActivePlayer", Game: g})
	}

	if p.Ready {
		room.ReadyCount--
		p.Ready = false
	}

	if g.HasBegun && !g.Over {
		d.broadcastRoom(room, RoomMessage{Type: "updateGame", Room: room})
	} else {
		d.broadcastRoom(room, RoomMessage{Type: "updateLobby", Room: room})
	}
}

// Lobby
////////////////////////////////////////////////////////////////////////

func (d *Directory) phraseAdded(conn, phrase string) {
	p, room := d.playerRoom(conn)
	if p == nil || room == nil {
		d.out.Send(conn, ResponseMessage{Type: "addPhraseToGameResponse", Msg: "player not found. " + phrase + " not added"})
		return
	}
	if room.Game.HasBegun {
		d.out.Send(conn, ResponseMessage{Type: "addPhraseToGameResponse", Msg: "phrases are locked once the game begins"})
		return
	}

	if room.Game.AddPhrase(phrase) {
		d.out.Send(conn, ResponseMessage{Type: "addPhraseToGameResponse", Success: true, Msg: phrase + " added"})
	} else {
		d.out.Send(conn, ResponseMessage{Type: "addPhraseToGameResponse", Msg: phrase + " is already in the bowl"})
	}
}

func (d *Directory) phraseRemoved(conn, phrase string) {
	p, room := d.playerRoom(conn)
	if p == nil || room == nil {
		d.out.Send(conn, ResponseMessage{Type: "removePhraseFromGameResponse", Msg: "player not found. " + phrase + " not removed"})
		return
	}
	if room.Game.HasBegun {
		d.out.Send(conn, ResponseMessage{Type: "removePhraseFromGameResponse", Msg: "phrases are locked once the game begins"})
		return
	}

	if room.Game.RemovePhrase(phrase) {
		d.out.Send(conn, ResponseMessage{Type: "removePhraseFromGameResponse", Success: true, Msg: phrase + " removed"})
	} else {
		d.out.Send(conn, ResponseMessage{Type: "removePhraseFromGameResponse", Msg: phrase + " is not in the bowl"})
	}
}

// readyGame toggles the sender's ready flag. The tally is derived from
// the flag, never from the wire, so it always matches the number of
// players whose flag is set.
func (d *Directory) readyGame(conn string) {
	p, room := d.playerRoom(conn)
	if p == nil || room == nil {
		return
	}

	if p.Ready {
		room.ReadyCount--
	} else {
		room.ReadyCount++
	}
	p.Ready = !p.Ready

	d.broadcastRoom(room, RoomMessage{Type: "updateLobby", Room: room})
}

func (d *Directory) startGame(conn string) {
	p, room := d.playerRoom(conn)
	if p == nil || room == nil {
		return
	}
	g := room.Game
	playerIDs := room.connIDs()

	switch {
	case len(playerIDs) < d.cfg.minPlayers:
		d.out.Send(conn, NewGameMessage{Type: "newGameResponse", Msg: fmt.Sprintf("You must have at least %d players in the room to begin", d.cfg.minPlayers)})
	case len(g.AllPhrases) < d.cfg.minPhrases:
		d.out.Send(conn, NewGameMessage{Type: "newGameResponse", Msg: fmt.Sprintf("You need at least %d phrases to begin. %d more to go!", d.cfg.minPhrases, d.cfg.minPhrases-len(g.AllPhrases))})
	case len(g.RedTeam.PlayerIDs) < d.cfg.minTeamSize || len(g.BlueTeam.PlayerIDs) < d.cfg.minTeamSize:
		d.out.Send(conn, NewGameMessage{Type: "newGameResponse", Msg: fmt.Sprintf("Each team must have at least %d players to begin", d.cfg.minTeamSize)})
	default:
		g.Start(playerIDs)
		logf(d.cfg, "GAMES: started game in room %q with %d players", room.Name, len(playerIDs))
		d.audit.record(room.audit, "game started")

		d.broadcastRoom(room, NewGameMessage{Type: "newGameResponse", Success: true, Game: g})
		d.broadcastRoom(room, GameMessage{Type: "newActivePlayer", Game: g})
		d.broadcastRoom(room, RoomMessage{Type: "updateGame", Room: room})
	}
}

func (d *Directory) changeTeams(conn string, ref TeamRef) {
	p, room := d.playerRoom(conn)
	if p == nil || room == nil {
		return
	}

	room.Game.RemovePlayer(conn)
	room.Game.AddPlayer(conn, &ref)
	room.Game.ClampRotation()

	d.broadcastRoom(room, RoomMessage{Type: "updateLobby", Room: room})
}

// In game
////////////////////////////////////////////////////////////////////////

func (d *Directory) showPhrase(conn string) {
	p, room := d.playerRoom(conn)
	if p == nil || room == nil {
		return
	}
	g := room.Game
	if !g.HasBegun || g.Over || len(g.CommunityBowl) == 0 {
		return
	}
	if !g.IsActiveClueGiver(conn) {
		return
	}

	g.StartTimer()
	d.out.Send(conn, PhraseMessage{Type: "showPhraseResponse", Phrase: g.NextPhrase()})
}

func (d *Directory) phraseCorrect(conn string) {
	p, room := d.playerRoom(conn)
	if p == nil || room == nil {
		return
	}
	g := room.Game
	if !g.HasBegun || g.Over || g.ActivePhrase == "" {
		return
	}
	if !g.IsActiveClueGiver(conn) {
		return
	}

	phrase := g.ActivePhrase
	g.AwardPhrase()
	d.audit.record(room.audit, fmt.Sprintf("%s won %q for the %s team", p.Nickname, phrase, g.Team(g.ActiveTeam).Name))
	d.broadcastRoom(room, GameMessage{Type: "awardPhraseResponse", Game: g})

	if len(g.CommunityBowl) > 0 {
		// Same team keeps going with the next clue-giver.
		d.broadcastRoom(room, GameMessage{Type: "newActivePlayer", Game: g})
	} else {
		g.StopTimer()
		if g.RoundNumber == g.LastRound() {
			g.Over = true
			g.EndGame()
			logf(d.cfg, "GAMES: game over in room %q, %s wins", room.Name, g.Winner)
			d.audit.record(room.audit, "game over, winner: "+g.Winner)
			d.broadcastRoom(room, GameMessage{Type: "gameOver", Game: g})
		} else {
			// Wait for the host to advance before rotating further.
			d.broadcastRoom(room, GameMessage{Type: "advanceToNextRound", Game: g})
		}
	}

	d.broadcastRoom(room, RoomMessage{Type: "updateGame", Room: room})
}

func (d *Directory) nextRound(conn string) {
	p, room := d.playerRoom(conn)
	if p == nil || room == nil {
		return
	}
	g := room.Game
	if !g.HasBegun || g.Over || len(g.CommunityBowl) > 0 {
		return
	}

	g.AdvanceRound()
	d.broadcastRoom(room, GameMessage{Type: "newActivePlayer", Game: g})
	d.broadcastRoom(room, RoomMessage{Type: "updateGame", Room: room})
}

// Chat
////////////////////////////////////////////////////////////////////////

func (d *Directory) chatMessage(conn, text string) {
	p, room := d.playerRoom(conn)
	if p == nil || room == nil {
		d.out.Send(conn, ResponseMessage{Type: "sendMessageResponse"})
		return
	}

	entry := ChatEntry{Nickname: p.Nickname, Message: text}
	room.chatHistory = append(room.chatHistory, entry)
	d.audit.record(room.audit, p.Nickname+": "+text)

	d.broadcastRoom(room, ChatMessage{Type: "chatMessage", Nickname: entry.Nickname, Message: entry.Message})
	d.out.Send(conn, ResponseMessage{Type: "sendMessageResponse", Success: true})
}
