/*
Copyright © 2026 Fishbowlhq <dev@fishbowlhq.dev>
*/

package main

// Tick advances every live room by one clock step. Rooms whose timer
// is not running cost a single comparison; rooms that are counting
// down get the decrement, an expiry check, and a timer broadcast. The
// afk pass drains player budgets and funnels expired players through
// the same path as a disconnect.
//
// Run invokes Tick once per configured interval; tests call it
// directly instead of waiting on a real clock.
func (d *Directory) Tick() {
	var kicked []*Player

	for _, room := range d.rooms {
		g := room.Game

		if g.TimerRunning {
			g.Timer--
			if g.Timer < 0 {
				g.ResetTimer()
				g.SwitchTurn()

				d.broadcastRoom(room, GameMessage{Type: "switchingTurns", Game: g})
				d.broadcastRoom(room, GameMessage{Type: "newActivePlayer", Game: g})
				d.broadcastRoom(room, RoomMessage{Type: "updateGame", Room: room})
			}

			d.broadcastRoom(room, TimerMessage{Type: "timerUpdate", Timer: g.Timer})
		}

		if d.cfg.afkTimeout > 0 {
			for _, p := range room.Players {
				p.afkBudget--
				if p.afkBudget < 0 {
					kicked = append(kicked, p)
				}
			}
		}
	}

	// Kicks mutate the room set, so they run after the scan.
	for _, p := range kicked {
		logf(d.cfg, "ROOMS: kicking %q from room %q for inactivity", p.Nickname, p.RoomName)
		d.disconnect(p.ID)
	}
}
