/*
Copyright © 2026 Fishbowlhq <dev@fishbowlhq.dev>
*/

package main

import (
	"math/rand"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TeamRef identifies one of the two fixed teams.
type TeamRef int

const (
	RedTeam TeamRef = iota
	BlueTeam
)

func (t TeamRef) Other() TeamRef {
	if t == RedTeam {
		return BlueTeam
	}
	return RedTeam
}

func (t TeamRef) String() string {
	if t == RedTeam {
		return "redTeam"
	}
	return "blueTeam"
}

func (t TeamRef) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// Team holds membership by connection id only; players are looked up
// through the room, so a team never duplicates player identity.
type Team struct {
	Name         string   `json:"name"`
	PlayerIDs    []string `json:"playerIds"`
	PhrasesWon   []string `json:"phrasesWon"`
	ActivePlayer int      `json:"activePlayer"`
	NextPlayer   int      `json:"nextPlayer"`
	Score        int      `json:"score"`
}

func (t *Team) contains(id string) bool {
	for _, pid := range t.PlayerIDs {
		if pid == id {
			return true
		}
	}
	return false
}

func (t *Team) remove(id string) {
	for i, pid := range t.PlayerIDs {
		if pid == id {
			t.PlayerIDs = append(t.PlayerIDs[:i], t.PlayerIDs[i+1:]...)
			return
		}
	}
}

// clampRotation re-establishes activePlayer/nextPlayer as valid indices
// after any membership change, modulo the new length.
func (t *Team) clampRotation() {
	n := len(t.PlayerIDs)
	if n == 0 {
		t.ActivePlayer, t.NextPlayer = 0, 0
		return
	}
	t.ActivePlayer %= n
	t.NextPlayer = (t.ActivePlayer + 1) % n
}

type GameOptions struct {
	RoundNames  []string
	TimerAmount int
	BonusRound  bool
}

func defaultRoundNames() []string {
	return []string{"taboo", "charades", "password", "ghost charades"}
}

// Game is the round/turn/timer engine for one room. It knows nothing
// about connections or transports; all randomness comes from the
// injected source so tests can pin it.
type Game struct {
	RoundNames    []string `json:"roundNames"`
	TimerAmount   int      `json:"timerAmount"`
	AllPhrases    []string `json:"allPhrases"`
	CommunityBowl []string `json:"communityBowl"`
	RedTeam       Team     `json:"redTeam"`
	BlueTeam      Team     `json:"blueTeam"`
	ActiveTeam    TeamRef  `json:"activeTeam"`
	ActivePhrase  string   `json:"activePhrase"`
	Timer         int      `json:"timer"`
	TimerRunning  bool     `json:"timerRunning"`
	RoundNumber   int      `json:"roundNumber"`
	BonusRound    bool     `json:"bonusRound"`
	HasBegun      bool     `json:"hasBegun"`
	Over          bool     `json:"over"`
	Winner        string   `json:"winner"`

	rng *rand.Rand
}

func NewGame(opts GameOptions, rng *rand.Rand) *Game {
	return &Game{
		RoundNames:    opts.RoundNames,
		TimerAmount:   opts.TimerAmount,
		BonusRound:    opts.BonusRound,
		Timer:         opts.TimerAmount,
		AllPhrases:    []string{},
		CommunityBowl: []string{},
		RedTeam:       Team{Name: "red", PlayerIDs: []string{}, PhrasesWon: []string{}},
		BlueTeam:      Team{Name: "blue", PlayerIDs: []string{}, PhrasesWon: []string{}},
		rng:           rng,
	}
}

func (g *Game) Team(ref TeamRef) *Team {
	if ref == RedTeam {
		return &g.RedTeam
	}
	return &g.BlueTeam
}

// AddPlayer assigns id to the requested team, or to whichever team is
// smaller, ties broken by a coin flip.
func (g *Game) AddPlayer(id string, desired *TeamRef) {
	var ref TeamRef
	switch {
	case desired != nil:
		ref = *desired
	case len(g.RedTeam.PlayerIDs) < len(g.BlueTeam.PlayerIDs):
		ref = RedTeam
	case len(g.BlueTeam.PlayerIDs) < len(g.RedTeam.PlayerIDs):
		ref = BlueTeam
	default:
		ref = TeamRef(g.rng.Intn(2))
	}

	t := g.Team(ref)
	t.PlayerIDs = append(t.PlayerIDs, id)
	t.clampRotation()
}

// RemovePlayer drops id from whichever team holds it. It does not fix
// up the rotation indices; callers follow with ClampRotation.
func (g *Game) RemovePlayer(id string) {
	g.RedTeam.remove(id)
	g.BlueTeam.remove(id)
}

func (g *Game) ClampRotation() {
	g.RedTeam.clampRotation()
	g.BlueTeam.clampRotation()
}

// IsActiveClueGiver reports whether id is the clue-giver whose turn is
// currently in progress.
func (g *Game) IsActiveClueGiver(id string) bool {
	t := g.Team(g.ActiveTeam)
	return len(t.PlayerIDs) > 0 && t.PlayerIDs[t.ActivePlayer] == id
}

// Start shuffles the given players onto two balanced teams and begins
// the first round. Preconditions (player/phrase/team minimums) are the
// caller's responsibility; Start itself always transitions.
func (g *Game) Start(playerIDs []string) {
	ids := append([]string(nil), playerIDs...)
	g.rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	half := len(ids) / 2
	g.RedTeam = Team{Name: "red", PlayerIDs: ids[:half], PhrasesWon: []string{}, ActivePlayer: 0, NextPlayer: 1, Score: 0}
	g.BlueTeam = Team{Name: "blue", PlayerIDs: ids[half:], PhrasesWon: []string{}, ActivePlayer: 0, NextPlayer: 1, Score: 0}

	g.HasBegun = true
	g.Over = false
	g.Winner = ""
	g.ActivePhrase = ""
	g.Timer = g.TimerAmount
	g.TimerRunning = false
	g.RoundNumber = 0
	g.ActiveTeam = TeamRef(g.rng.Intn(2))

	g.refillBowl()
}

func (g *Game) refillBowl() {
	g.CommunityBowl = append([]string(nil), g.AllPhrases...)
}

// normalizePhrase lowercases, trims, and strips accents so duplicate
// detection ignores casing and diacritics.
func normalizePhrase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// AddPhrase adds phrase to the pool, rejecting blanks and duplicates.
func (g *Game) AddPhrase(phrase string) bool {
	trimmed := strings.TrimSpace(phrase)
	if trimmed == "" {
		return false
	}

	key := normalizePhrase(trimmed)
	for _, p := range g.AllPhrases {
		if normalizePhrase(p) == key {
			return false
		}
	}

	g.AllPhrases = append(g.AllPhrases, trimmed)
	return true
}

func (g *Game) RemovePhrase(phrase string) bool {
	key := normalizePhrase(phrase)
	for i, p := range g.AllPhrases {
		if normalizePhrase(p) == key {
			g.AllPhrases = append(g.AllPhrases[:i], g.AllPhrases[i+1:]...)
			return true
		}
	}
	return false
}

// NextPhrase picks a random remaining phrase from the community bowl
// and makes it the active phrase. The bowl must be non-empty.
func (g *Game) NextPhrase() string {
	g.ActivePhrase = g.CommunityBowl[g.rng.Intn(len(g.CommunityBowl))]
	return g.ActivePhrase
}

func (g *Game) StartTimer() {
	g.TimerRunning = true
}

func (g *Game) StopTimer() {
	g.TimerRunning = false
}

func (g *Game) ResetTimer() {
	g.Timer = g.TimerAmount
	g.StopTimer()
}

// AwardPhrase moves the active phrase from the bowl to the active
// team's winnings, scores it, and rotates that team's clue-giver. The
// active phrase is consumed; the next one is drawn on demand.
func (g *Game) AwardPhrase() {
	t := g.Team(g.ActiveTeam)
	t.PhrasesWon = append(t.PhrasesWon, g.ActivePhrase)
	t.Score++

	for i, p := range g.CommunityBowl {
		if p == g.ActivePhrase {
			g.CommunityBowl = append(g.CommunityBowl[:i], g.CommunityBowl[i+1:]...)
			break
		}
	}

	g.ActivePhrase = ""
	g.ChangeActivePlayer()
}

func (g *Game) ChangeActivePlayer() {
	t := g.Team(g.ActiveTeam)
	if len(t.PlayerIDs) == 0 {
		return
	}
	t.ActivePlayer = (t.ActivePlayer + 1) % len(t.PlayerIDs)
	t.NextPlayer = (t.NextPlayer + 1) % len(t.PlayerIDs)
}

// LastRound is the index of the final round; the bonus round, when
// enabled, sits one past the nominal last round.
func (g *Game) LastRound() int {
	last := len(g.RoundNames) - 2
	if g.BonusRound {
		last++
	}
	return last
}

// AdvanceRound refills the bowl for the next round and clears both
// teams' per-round winnings. Scores carry over.
func (g *Game) AdvanceRound() {
	g.RoundNumber++
	g.RedTeam.PhrasesWon = []string{}
	g.BlueTeam.PhrasesWon = []string{}
	g.ActivePhrase = ""
	g.ResetTimer()
	g.refillBowl()
}

// SwitchTurn hands the turn to the other team and draws their opening
// phrase. The clue-giver rotation is untouched; that only advances on
// a correct guess.
func (g *Game) SwitchTurn() {
	g.ActiveTeam = g.ActiveTeam.Other()
	g.NextPhrase()
}

// EndGame records and returns the winner. Ties go to red.
func (g *Game) EndGame() string {
	if g.BlueTeam.Score > g.RedTeam.Score {
		g.Winner = "blue"
	} else {
		g.Winner = "red"
	}
	return g.Winner
}
