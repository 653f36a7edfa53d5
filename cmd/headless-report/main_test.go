package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Garsondee/battlescape/internal/ai"
	"github.com/Garsondee/battlescape/internal/battle"
	"github.com/Garsondee/battlescape/internal/config"
	"github.com/Garsondee/battlescape/internal/scenario"
)

func TestDetectStalemate_TrueWhenBothSidesStandAndNobodyShoots(t *testing.T) {
	rs := runStats{
		turns:            20,
		winner:           "none",
		playerTotal:      4,
		hostileTotal:     4,
		playerOut:        1,
		hostileOut:       0,
		shots:            6,
		firstContactTurn: -1,
	}

	stale, reason := detectStalemate(rs)
	require.True(t, stale, reason)
	assert.Contains(t, reason, "high_mutual_survival")
	assert.Contains(t, reason, "few_shots")
	assert.Contains(t, reason, "no_contact")
}

func TestDetectStalemate_FalseWhenDecided(t *testing.T) {
	rs := runStats{turns: 7, winner: "player", playerTotal: 4, hostileTotal: 4, hostileOut: 4}

	stale, reason := detectStalemate(rs)
	assert.False(t, stale)
	assert.Equal(t, "decided", reason)
}

func TestDetectStalemate_FalseUnderHeavyLosses(t *testing.T) {
	rs := runStats{turns: 20, winner: "none", playerTotal: 4, playerOut: 3, hostileTotal: 4}

	stale, reason := detectStalemate(rs)
	assert.False(t, stale)
	assert.Equal(t, "attrition", reason)
}

func TestAvgHelpers(t *testing.T) {
	assert.Equal(t, 0.0, avg(10, 0))
	assert.Equal(t, 2.5, avg(5, 2))
	assert.Equal(t, "n/a", avgTurnString(nil))
	assert.Equal(t, "3.0", avgTurnString([]int{2, 4}))
}

func TestJoinCountsIsSorted(t *testing.T) {
	assert.Equal(t, "none", joinCounts(nil))
	assert.Equal(t, "hostile=2 none=1 player=3", joinCounts(map[string]int{"player": 3, "none": 1, "hostile": 2}))
}

func TestFormatModesListsEveryMode(t *testing.T) {
	got := formatModes(map[ai.Mode]int{ai.ModeCombat: 4})
	assert.Equal(t, "patrol=0 ambush=0 combat=4 escape=0", got)
}

func TestFirstTurn(t *testing.T) {
	entries := []battle.Event{
		{Turn: 1, Category: "ai", Key: "decision", Value: "patrol/walk"},
		{Turn: 2, Category: "fire", Key: "shot", Value: "snapshot at (1,1,0): miss"},
		{Turn: 3, Category: "ai", Key: "decision", Value: "combat/snapshot"},
	}
	assert.Equal(t, 3, firstTurn(entries, "ai", "decision", "combat/"))
	assert.Equal(t, 2, firstTurn(entries, "fire", "shot", ""))
	assert.Equal(t, -1, firstTurn(entries, "unit", "out", ""))
}

func TestRunBattleCollectsTotals(t *testing.T) {
	sc, err := scenario.Builtin("skirmish")
	require.NoError(t, err)

	rs, err := runBattle(t.Context(), sc, config.Default(), zap.NewNop(), nil, 1, 7, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, rs.runIndex)
	assert.Equal(t, int64(7), rs.seed)
	assert.Equal(t, 4, rs.playerTotal)
	assert.Equal(t, 4, rs.hostileTotal)
	assert.Equal(t, 1, rs.neutralTotal)
	assert.Empty(t, rs.saveID)
	total := 0
	for _, n := range rs.modes {
		total += n
	}
	assert.Positive(t, total)
}
