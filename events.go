/*
Copyright © 2026 Fishbowlhq <dev@fishbowlhq.dev>
*/

package main

// Inbound event types. Anything not listed here is dropped at the
// transport edge before it reaches the session directory.
const (
	evCreateRoom    = "createRoom"
	evJoinRoom      = "joinRoom"
	evLeaveRoom     = "leaveRoom"
	evPhraseAdded   = "phraseAdded"
	evPhraseRemoved = "phraseRemoved"
	evReadyGame     = "readyGame"
	evStartGame     = "startGame"
	evJoinRedTeam   = "joinRedTeam"
	evJoinBlueTeam  = "joinBlueTeam"
	evShowPhrase    = "showPhraseButtonPressed"
	evPhraseCorrect = "phraseCorrectButtonPressed"
	evNextRound     = "nextRoundButtonPressed"
	evChatMessage   = "chatMessage"

	// Synthesized by the transport when a connection goes away; never
	// accepted off the wire.
	evDisconnect = "disconnect"
)

// ClientMessage is the single inbound wire shape; unused fields are
// omitted per event type.
type ClientMessage struct {
	Type     string `json:"type"`
	Nickname string `json:"nickname,omitempty"`
	RoomName string `json:"roomName,omitempty"`
	Password string `json:"password,omitempty"`
	Phrase   string `json:"phrase,omitempty"`
	Delta    int    `json:"delta,omitempty"` // accepted but ignored; ready state toggles server-side
	Message  string `json:"message,omitempty"`
}

// Envelope pairs an inbound message with the connection it came from.
type Envelope struct {
	Conn string
	Msg  ClientMessage
}

// ResponseMessage acknowledges a request to the sender only.
type ResponseMessage struct {
	Type    string `json:"type"` // createResponse, joinResponse, leaveResponse, sendMessageResponse, addPhraseToGameResponse, removePhraseFromGameResponse
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

// RoomMessage carries a full room snapshot (players, ready count, game).
type RoomMessage struct {
	Type string `json:"type"` // updateLobby, updateGame
	Room *Room  `json:"room"`
}

// GameMessage carries a full game snapshot.
type GameMessage struct {
	Type string `json:"type"` // newActivePlayer, awardPhraseResponse, advanceToNextRound, switchingTurns, gameOver
	Game *Game  `json:"game"`
}

// NewGameMessage answers a start request; on success every room member
// receives it with the fresh game attached.
type NewGameMessage struct {
	Type    string `json:"type"` // newGameResponse
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
	Game    *Game  `json:"game,omitempty"`
}

type PhraseMessage struct {
	Type   string `json:"type"` // showPhraseResponse
	Phrase string `json:"phrase"`
}

type TimerMessage struct {
	Type  string `json:"type"` // timerUpdate
	Timer int    `json:"timer"`
}

type ChatEntry struct {
	Nickname string `json:"nickname"`
	Message  string `json:"message"`
}

type ChatMessage struct {
	Type     string `json:"type"` // chatMessage
	Nickname string `json:"nickname"`
	Message  string `json:"message"`
}

type ChatHistoryMessage struct {
	Type    string      `json:"type"` // chatHistory
	History []ChatEntry `json:"history"`
}
