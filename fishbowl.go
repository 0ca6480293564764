/*
Copyright © 2026 Fishbowlhq <dev@fishbowlhq.dev>
*/

package main

import (
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection: a read pump feeding the session
// directory and a buffered write pump draining outbound events.
type Client struct {
	conn    *websocket.Conn
	send    chan any
	id      string
	limiter *rate.Limiter
}

// wsBroadcaster maps connection ids to clients and implements the
// Broadcaster capability the directory is given.
type wsBroadcaster struct {
	mu    sync.RWMutex
	conns map[string]*Client
}

func newWSBroadcaster() *wsBroadcaster {
	return &wsBroadcaster{
		conns: make(map[string]*Client),
	}
}

func (b *wsBroadcaster) register(c *Client) {
	b.mu.Lock()
	b.conns[c.id] = c
	b.mu.Unlock()
}

func (b *wsBroadcaster) unregister(id string) {
	b.mu.Lock()
	if c, ok := b.conns[id]; ok {
		delete(b.conns, id)
		close(c.send)
	}
	b.mu.Unlock()
}

func (b *wsBroadcaster) Send(conn string, event any) {
	// The send happens under the read lock; unregister closes the
	// channel under the write lock, so a close can never race a send
	// in flight. The send is non-blocking, so a consumer too slow to
	// keep up loses events rather than stalling the directory.
	b.mu.RLock()
	defer b.mu.RUnlock()

	c := b.conns[conn]
	if c == nil {
		return
	}

	select {
	case c.send <- event:
	default:
	}
}

func (b *wsBroadcaster) Broadcast(conns []string, event any) {
	for _, id := range conns {
		b.Send(id, event)
	}
}

func (c *Client) readPump(d *Directory, b *wsBroadcaster) {
	defer func() {
		b.unregister(c.id)
		_ = c.conn.Close()
		d.Inbox <- Envelope{Conn: c.id, Msg: ClientMessage{Type: evDisconnect}}
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		if !c.limiter.Allow() {
			continue
		}

		switch msg.Type {
		case evCreateRoom, evJoinRoom, evLeaveRoom,
			evPhraseAdded, evPhraseRemoved, evReadyGame, evStartGame,
			evJoinRedTeam, evJoinBlueTeam,
			evShowPhrase, evPhraseCorrect, evNextRound,
			evChatMessage:
			d.Inbox <- Envelope{Conn: c.id, Msg: msg}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func serveWS(cfg *Config, d *Directory, b *wsBroadcaster) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "SERVE: upgrade error from %s: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn:    conn,
			send:    make(chan any, 8),
			id:      uuid.NewString(),
			limiter: rate.NewLimiter(rate.Limit(20), 40),
		}

		b.register(client)
		logf(cfg, "SERVE: websocket %s connected from %s", client.id, realIP(r))

		go client.writePump()
		client.readPump(d, b)
	}
}

// QR handler: generates a PNG QR code for the game URL, for handing a
// room join to a phone.
func qrHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at $path/qr; strip the trailing "/qr" to get the game URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")
	url := scheme + "://" + r.Host + path

	const qrSize = 320
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func servePlayPage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)
		_, _ = w.Write([]byte(playHTML))
	}
}

// registerFishbowlGame sets up routes so that:
//   - $path       → HTML client
//   - $path/ws    → shared WebSocket endpoint
//   - $path/qr    → PNG QR code for the game URL
func registerFishbowlGame(cfg *Config, path string, mux *httprouter.Router, d *Directory, b *wsBroadcaster) {
	mux.GET(cfg.prefix+path, servePlayPage(cfg))
	mux.GET(cfg.prefix+path+"/ws", serveWS(cfg, d, b))
	mux.GET(cfg.prefix+path+"/qr", qrHandler)
}

// Simple HTML client for quick testing
const playHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Fishbowl</title>
<style>
  body { font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; }
  h1 { margin-bottom: 0.5rem; }
  #status { margin-bottom: 1rem; font-size: 0.9rem; }
  #log { margin-top: 1rem; padding: 0.5rem; border: 1px solid #ddd; height: 16rem; overflow-y: auto; font-size: 0.85rem; }
  #phrase { font-size: 1.4rem; font-weight: bold; }
  button { margin: 0.1rem; }
</style>
</head>
<body>
<h1>Fishbowl</h1>
<div id="status">Connecting…</div>
<div>
  <input id="nickname" placeholder="nickname">
  <input id="room" placeholder="room name">
  <input id="password" placeholder="password" type="password">
  <button onclick="send('createRoom',{nickname:v('nickname'),roomName:v('room'),password:v('password')})">Create</button>
  <button onclick="send('joinRoom',{nickname:v('nickname'),roomName:v('room'),password:v('password')})">Join</button>
  <button onclick="send('leaveRoom',{})">Leave</button>
</div>
<div>
  <input id="newPhrase" placeholder="phrase">
  <button onclick="send('phraseAdded',{phrase:v('newPhrase')})">Add phrase</button>
  <button onclick="send('phraseRemoved',{phrase:v('newPhrase')})">Remove phrase</button>
  <button onclick="send('readyGame',{})">Ready</button>
  <button onclick="send('startGame',{})">Start game</button>
</div>
<div>
  <button onclick="send('joinRedTeam',{})">Red team</button>
  <button onclick="send('joinBlueTeam',{})">Blue team</button>
  <button onclick="send('showPhraseButtonPressed',{})">Show phrase</button>
  <button onclick="send('phraseCorrectButtonPressed',{})">Correct!</button>
  <button onclick="send('nextRoundButtonPressed',{})">Next round</button>
</div>
<div><span id="timer"></span> <span id="phrase"></span></div>
<div>
  <input id="chat" placeholder="say something">
  <button onclick="send('chatMessage',{message:v('chat')})">Send</button>
</div>
<div id="log"></div>

<script>
(function() {
  const statusEl = document.getElementById('status');
  const logEl = document.getElementById('log');

  const proto = (location.protocol === 'https:') ? 'wss://' : 'ws://';
  const wsPath = location.pathname.replace(/\/$/, '') + '/ws';
  const ws = new WebSocket(proto + location.host + wsPath);

  window.v = function(id) { return document.getElementById(id).value; };
  window.send = function(type, data) {
    data.type = type;
    ws.send(JSON.stringify(data));
  };
  function logLine(text) {
    const div = document.createElement('div');
    div.textContent = text;
    logEl.appendChild(div);
    logEl.scrollTop = logEl.scrollHeight;
  }

  ws.onopen = function() { statusEl.textContent = 'Connected.'; };
  ws.onclose = function() { statusEl.textContent = 'Disconnected.'; };
  ws.onerror = function() { statusEl.textContent = 'Error with WebSocket.'; };

  ws.onmessage = function(event) {
    try {
      const msg = JSON.parse(event.data);
      switch (msg.type) {
      case 'timerUpdate':
        document.getElementById('timer').textContent = msg.timer;
        return;
      case 'showPhraseResponse':
        document.getElementById('phrase').textContent = msg.phrase;
        return;
      case 'chatMessage':
        logLine(msg.nickname + ': ' + msg.message);
        return;
      case 'chatHistory':
        (msg.history || []).forEach(function(e) { logLine(e.nickname + ': ' + e.message); });
        return;
      case 'gameOver':
        logLine('Game over! Winner: ' + msg.game.winner);
        return;
      default:
        logLine(event.data);
      }
    } catch (e) {
      console.error('bad message', e);
    }
  };
})();
</script>
</body>
</html>
`
