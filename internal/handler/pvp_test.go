package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimecore/server/internal/world"
)

func TestPvpRequestAndAccept(t *testing.T) {
	env := newTestEnv(t)
	a := env.player(1, "alpha")
	b := env.player(2, "bravo")

	env.d.cmdPvp(env.command(a, "pvp"))
	req := env.d.World.PvpRequests[a.ID]
	require.NotNil(t, req)
	assert.Equal(t, env.now.Add(pvpRequestTTL).Unix(), req.ExpiresAt)
	assert.Contains(t, env.fake.LastText(), "бросает вызов")

	// The challenger may not accept their own challenge.
	env.d.cmdPvp(env.command(a, "pvp", "1"))
	assert.Contains(t, env.fake.LastText(), "Сам с собой")
	assert.NotNil(t, env.d.World.PvpRequests[a.ID])

	env.d.cmdPvp(env.command(b, "pvp", "@alpha"))
	assert.Empty(t, env.d.World.PvpRequests)

	duel := env.d.Sessions.Duels[a.ID]
	require.NotNil(t, duel)
	assert.Same(t, duel, env.d.Sessions.Duels[b.ID])
	assert.Equal(t, duelActive, duel.Status)

	require.NotNil(t, a.Pvp)
	assert.Equal(t, b.ID, a.Pvp.OpponentID)
	require.NotNil(t, b.Pvp)
	assert.Equal(t, a.ID, b.Pvp.OpponentID)
	assert.Equal(t, env.now.Unix(), a.LastPvpStartAt)
	assert.Equal(t, env.now.Unix(), b.LastPvpStartAt)
}

func TestPvpRequestExpires(t *testing.T) {
	env := newTestEnv(t)
	a := env.player(1, "alpha")
	b := env.player(2, "bravo")

	env.d.cmdPvp(env.command(a, "pvp"))
	env.now = env.now.Add(pvpRequestTTL + 1)

	env.d.cmdPvp(env.command(b, "pvp", "1"))
	assert.Contains(t, env.fake.LastText(), "Такого вызова нет")
	assert.Empty(t, env.d.Sessions.Duels)
}

func TestPvpBlocked(t *testing.T) {
	env := newTestEnv(t)

	cooling := env.player(1, "")
	cooling.LastPvpStartAt = env.now.Unix() - 10
	env.d.cmdPvp(env.command(cooling, "pvp"))
	assert.Contains(t, env.fake.LastText(), "Отдышись")
	assert.Empty(t, env.d.World.PvpRequests)

	busy := env.player(2, "")
	busy.Monster = &world.Monster{Name: "Гуль", HP: 20, MaxHP: 20}
	env.d.cmdPvp(env.command(busy, "pvp"))
	assert.Contains(t, env.fake.LastText(), "уже в бою")
	assert.Empty(t, env.d.World.PvpRequests)
}

func TestAcceptRejectsBusyChallenger(t *testing.T) {
	env := newTestEnv(t)
	a := env.player(1, "alpha")
	b := env.player(2, "bravo")

	env.d.cmdPvp(env.command(a, "pvp"))
	a.Monster = &world.Monster{Name: "Гуль", HP: 20, MaxHP: 20}

	env.d.cmdPvp(env.command(b, "pvp", "1"))
	assert.Contains(t, env.fake.LastText(), "Противник сейчас не может драться")
	assert.NotNil(t, env.d.World.PvpRequests[a.ID])
	assert.Empty(t, env.d.Sessions.Duels)
}

func TestDuelFinishRewards(t *testing.T) {
	env := newTestEnv(t)
	a := env.player(1, "alpha")
	b := env.player(2, "bravo")
	b.HP = 5

	// One int for the round pace, one for the damage roll.
	env.rng.ints = []int{0, 0}
	env.d.startPlayerDuel(a.ID, a, b, false)
	duel := env.d.Sessions.Duels[a.ID]
	require.NotNil(t, duel)

	env.d.duelRound(duel)

	assert.Equal(t, duelDone, duel.Status)
	assert.Empty(t, env.d.Sessions.Duels)
	assert.Equal(t, 300, a.Infection)
	assert.Equal(t, 1, a.PvpWins)
	assert.Equal(t, 1, b.PvpLosses)
	assert.Equal(t, 1, b.HP)
	assert.Nil(t, a.Pvp)
	assert.Nil(t, b.Pvp)
	assert.Contains(t, env.fake.LastText(), "побеждает")
}

func TestRankedDuelRating(t *testing.T) {
	env := newTestEnv(t)
	a := env.player(1, "alpha")
	b := env.player(2, "bravo")
	b.HP = 5
	b.PvpRating = 70
	b.PvpRatingBest = 70

	env.rng.ints = []int{0, 0}
	env.d.startPlayerDuel(a.ID, a, b, true)
	env.d.duelRound(env.d.Sessions.Duels[a.ID])

	assert.Equal(t, world.RankedPointsPerWin, a.PvpRating)
	assert.Equal(t, world.RankedPointsPerWin, a.PvpRatingBest)
	assert.Zero(t, a.Infection)
	assert.Zero(t, b.PvpRating)
	assert.Equal(t, 70, b.PvpRatingBest)
}

func TestDuelStunSkipsTurn(t *testing.T) {
	env := newTestEnv(t)
	a := env.player(1, "alpha")
	b := env.player(2, "bravo")

	env.d.startPlayerDuel(a.ID, a, b, false)
	duel := env.d.Sessions.Duels[a.ID]
	require.NotNil(t, duel)
	duel.Sides[0].Status.Stun = 1

	env.d.duelRound(duel)

	assert.Zero(t, duel.Sides[0].Status.Stun)
	assert.Equal(t, duel.Sides[1].Status.MaxHP, duel.Sides[1].Status.HP)
	assert.Equal(t, 1, duel.Turn)
	assert.Contains(t, env.fake.LastText(), "пропускает ход")
}
