/*
Copyright © 2026 Fishbowlhq <dev@fishbowlhq.dev>
*/

package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(opts GameOptions) *Game {
	return NewGame(opts, rand.New(rand.NewSource(1)))
}

func defaultTestOptions() GameOptions {
	return GameOptions{
		RoundNames:  defaultRoundNames(),
		TimerAmount: 60,
	}
}

func startedGame(t *testing.T, players int, phrases []string) *Game {
	t.Helper()

	g := newTestGame(defaultTestOptions())
	for _, p := range phrases {
		require.True(t, g.AddPhrase(p))
	}

	ids := make([]string, players)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}
	g.Start(ids)

	return g
}

func TestAddPlayerBalancesTeams(t *testing.T) {
	g := newTestGame(defaultTestOptions())

	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddPlayer(id, nil)
	}

	assert.Len(t, g.RedTeam.PlayerIDs, 2)
	assert.Len(t, g.BlueTeam.PlayerIDs, 2)

	for _, id := range g.RedTeam.PlayerIDs {
		assert.False(t, g.BlueTeam.contains(id), "player %q on both teams", id)
	}
}

func TestAddPlayerHonorsRequestedTeam(t *testing.T) {
	g := newTestGame(defaultTestOptions())

	ref := BlueTeam
	g.AddPlayer("a", &ref)
	g.AddPlayer("b", &ref)

	assert.Empty(t, g.RedTeam.PlayerIDs)
	assert.Equal(t, []string{"a", "b"}, g.BlueTeam.PlayerIDs)
}

func TestAddPhraseRejectsBlanksAndDuplicates(t *testing.T) {
	g := newTestGame(defaultTestOptions())

	assert.False(t, g.AddPhrase(""))
	assert.False(t, g.AddPhrase("   "))

	assert.True(t, g.AddPhrase("Taco Tuesday"))
	assert.False(t, g.AddPhrase("taco tuesday"))
	assert.False(t, g.AddPhrase("  TACO TUESDAY  "))
	assert.False(t, g.AddPhrase("tacó tuesday"), "accents should not defeat duplicate detection")

	assert.Len(t, g.AllPhrases, 1)
}

func TestRemovePhrase(t *testing.T) {
	g := newTestGame(defaultTestOptions())

	require.True(t, g.AddPhrase("one"))
	require.True(t, g.AddPhrase("two"))

	assert.True(t, g.RemovePhrase("ONE"))
	assert.False(t, g.RemovePhrase("one"))
	assert.Equal(t, []string{"two"}, g.AllPhrases)
}

func TestStartSplitsPlayersAndFillsBowl(t *testing.T) {
	g := startedGame(t, 4, []string{"p1", "p2", "p3"})

	assert.True(t, g.HasBegun)
	assert.False(t, g.Over)
	assert.Equal(t, 0, g.RoundNumber)
	assert.Equal(t, 60, g.Timer)
	assert.False(t, g.TimerRunning)

	assert.Len(t, g.RedTeam.PlayerIDs, 2)
	assert.Len(t, g.BlueTeam.PlayerIDs, 2)
	for _, id := range g.RedTeam.PlayerIDs {
		assert.False(t, g.BlueTeam.contains(id))
	}

	assert.ElementsMatch(t, g.AllPhrases, g.CommunityBowl)
}

func TestNextPhraseDrawsFromBowl(t *testing.T) {
	g := startedGame(t, 4, []string{"p1", "p2", "p3"})

	phrase := g.NextPhrase()
	assert.Contains(t, g.CommunityBowl, phrase)
	assert.Equal(t, phrase, g.ActivePhrase)
}

func TestAwardPhrase(t *testing.T) {
	g := startedGame(t, 4, []string{"p1", "p2", "p3"})

	phrase := g.NextPhrase()
	team := g.Team(g.ActiveTeam)
	before := team.ActivePlayer

	g.AwardPhrase()

	assert.Equal(t, 1, team.Score)
	assert.Equal(t, []string{phrase}, team.PhrasesWon)
	assert.NotContains(t, g.CommunityBowl, phrase)
	assert.Len(t, g.CommunityBowl, 2)
	assert.Empty(t, g.ActivePhrase, "award should consume the active phrase")
	assert.Equal(t, (before+1)%len(team.PlayerIDs), team.ActivePlayer)
}

func TestLastRound(t *testing.T) {
	g := newTestGame(defaultTestOptions())
	assert.Equal(t, 2, g.LastRound())

	g.BonusRound = true
	assert.Equal(t, 3, g.LastRound())
}

func TestAdvanceRound(t *testing.T) {
	g := startedGame(t, 4, []string{"p1", "p2", "p3"})

	g.NextPhrase()
	g.AwardPhrase()
	g.StartTimer()
	g.Timer = 12

	g.AdvanceRound()

	assert.Equal(t, 1, g.RoundNumber)
	assert.Empty(t, g.RedTeam.PhrasesWon)
	assert.Empty(t, g.BlueTeam.PhrasesWon)
	assert.Empty(t, g.ActivePhrase)
	assert.Equal(t, 60, g.Timer)
	assert.False(t, g.TimerRunning)
	assert.ElementsMatch(t, g.AllPhrases, g.CommunityBowl, "bowl refills for the new round")
}

func TestAdvanceRoundKeepsScores(t *testing.T) {
	g := startedGame(t, 4, []string{"p1", "p2", "p3"})

	g.NextPhrase()
	g.AwardPhrase()
	scored := g.ActiveTeam

	g.AdvanceRound()

	assert.Equal(t, 1, g.Team(scored).Score)
}

func TestSwitchTurnFlipsTeamOnly(t *testing.T) {
	g := startedGame(t, 4, []string{"p1", "p2", "p3"})

	was := g.ActiveTeam
	red, blue := g.RedTeam.ActivePlayer, g.BlueTeam.ActivePlayer

	g.SwitchTurn()

	assert.Equal(t, was.Other(), g.ActiveTeam)
	assert.Equal(t, red, g.RedTeam.ActivePlayer, "clue-giver rotation only advances on a correct guess")
	assert.Equal(t, blue, g.BlueTeam.ActivePlayer)
	assert.NotEmpty(t, g.ActivePhrase)
}

func TestEndGameTiesGoToRed(t *testing.T) {
	g := newTestGame(defaultTestOptions())

	g.RedTeam.Score = 3
	g.BlueTeam.Score = 3
	assert.Equal(t, "red", g.EndGame())

	g.BlueTeam.Score = 4
	assert.Equal(t, "blue", g.EndGame())
}

func TestClampRotationAfterRemoval(t *testing.T) {
	g := newTestGame(defaultTestOptions())

	ref := RedTeam
	for _, id := range []string{"a", "b", "c"} {
		g.AddPlayer(id, &ref)
	}
	g.RedTeam.ActivePlayer = 2
	g.RedTeam.NextPlayer = 0

	g.RemovePlayer("c")
	g.ClampRotation()

	assert.Less(t, g.RedTeam.ActivePlayer, len(g.RedTeam.PlayerIDs))
	assert.Less(t, g.RedTeam.NextPlayer, len(g.RedTeam.PlayerIDs))
}

func TestClampRotationEmptyTeam(t *testing.T) {
	g := newTestGame(defaultTestOptions())

	ref := RedTeam
	g.AddPlayer("a", &ref)
	g.RemovePlayer("a")
	g.ClampRotation()

	assert.Zero(t, g.RedTeam.ActivePlayer)
	assert.Zero(t, g.RedTeam.NextPlayer)
}

func TestIsActiveClueGiver(t *testing.T) {
	g := startedGame(t, 4, []string{"p1", "p2", "p3"})

	active := g.Team(g.ActiveTeam)
	idle := g.Team(g.ActiveTeam.Other())

	assert.True(t, g.IsActiveClueGiver(active.PlayerIDs[active.ActivePlayer]))
	assert.False(t, g.IsActiveClueGiver(idle.PlayerIDs[idle.ActivePlayer]))
}

func TestTeamRefMarshalsAsName(t *testing.T) {
	red, err := RedTeam.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"redTeam"`, string(red))

	blue, err := BlueTeam.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"blueTeam"`, string(blue))
}
