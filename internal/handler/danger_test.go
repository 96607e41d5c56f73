package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimecore/server/internal/world"
)

func TestDangerExitChance(t *testing.T) {
	tests := []struct {
		step int
		want float64
	}{
		{1, 0.10},
		{2, 0.30},
		{3, 0.60},
		{4, 0.70},
		{5, 0.70},
		{9, 0.70},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, dangerExitChance(tt.step), 1e-9, "step %d", tt.step)
	}
}

func TestDangerWalk(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")
	p.CurrentDanger = &world.DangerState{ScenarioID: 0, BranchID: 0, Step: 1}
	p.CurrentDangerMsgID = 5

	// Step damage lands first (34% of 100), then the 10% exit roll misses.
	env.rng.floats = []float64{0.99}
	env.d.cbDangerMove(env.callback(p, "danger_move:1"), "1")

	require.NotNil(t, p.CurrentDanger)
	assert.Equal(t, 66, p.HP)
	assert.Equal(t, 2, p.CurrentDanger.Step)

	// Next move: damage again, then the 30% exit roll hits; the 12% item
	// roll misses.
	env.rng.floats = []float64{0.1, 0.99}
	env.d.cbDangerMove(env.callback(p, "danger_move:2"), "2")

	assert.Nil(t, p.CurrentDanger)
	assert.Equal(t, 32, p.HP, "escaping does not heal")
	assert.Equal(t, 100, p.Infection)
	assert.Equal(t, 1, p.SurvivalDays)
	assert.Nil(t, p.PendingDrop)
}

func TestDangerExitWithItem(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")
	p.CurrentDanger = &world.DangerState{ScenarioID: 0, BranchID: 0, Step: 3}
	p.CurrentDangerMsgID = 5

	// Exit roll hits, item roll hits, weighted pick lands on the knife.
	env.rng.floats = []float64{0.1, 0.01, 0.01}
	env.d.cbDangerMove(env.callback(p, "danger_move:1"), "1")

	assert.Nil(t, p.CurrentDanger)
	require.NotNil(t, p.PendingDrop)
}

func TestDangerDeath(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")
	p.HP = 30
	p.Infection = 60
	p.SurvivalDays = 4
	p.CurrentDanger = &world.DangerState{ScenarioID: 0, BranchID: 0, Step: 2}
	p.CurrentDangerMsgID = 5

	env.d.cbDangerMove(env.callback(p, "danger_move:1"), "1")

	assert.Nil(t, p.CurrentDanger)
	assert.Equal(t, p.MaxHP, p.HP)
	assert.Equal(t, 0, p.Infection, "the toll is clamped at zero")
	assert.Zero(t, p.SurvivalDays)
}

func TestDangerMoveIgnoresStaleButtons(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")

	env.d.cbDangerMove(env.callback(p, "danger_move:1"), "1")
	answer, ok := env.lastCallbackAnswer()
	require.True(t, ok)
	assert.Contains(t, answer, "выбрался")
	assert.Equal(t, 100, p.HP)
}

func TestDangerStepClampsPastBranchEnd(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")
	p.CurrentDanger = &world.DangerState{ScenarioID: 0, BranchID: 0, Step: 7}

	step := env.d.dangerStep(p)
	require.NotNil(t, step)
	last := env.d.Scripts.Scenario(0).Branches[0].Steps[2]
	assert.Equal(t, last.Prompt, step.Prompt, "steps past the third repeat the last one")
}
