package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimecore/server/internal/combat"
	"github.com/crimecore/server/internal/world"
)

// makeClan creates a clan with n members, ids starting at base.
func makeClan(t *testing.T, env *testEnv, name string, base int64, n int) (*world.Clan, []*world.Player) {
	t.Helper()
	leader := env.player(base, "")
	c, err := env.d.World.CreateClan(name, leader)
	require.NoError(t, err)
	members := []*world.Player{leader}
	for i := 1; i < n; i++ {
		p := env.player(base+int64(i), "")
		require.NoError(t, env.d.World.JoinClan(c, p))
		members = append(members, p)
	}
	return c, members
}

func TestClanBattleQueueAndPairing(t *testing.T) {
	env := newTestEnv(t)
	a, as := makeClan(t, env, "Альфа", 10, 2)
	b, bs := makeClan(t, env, "Браво", 20, 2)

	// One clan queueing alone never opens a countdown.
	env.d.cmdClanBattle(env.command(as[0], "clan_battle"))
	env.d.cmdClanBattle(env.command(as[1], "clan_battle"))
	assert.Nil(t, env.d.Sessions.PendingClash)
	assert.Len(t, env.d.Sessions.BattleQueues[a.ID], 2)

	// Double-queueing is rejected.
	env.d.cmdClanBattle(env.command(as[0], "clan_battle"))
	assert.Len(t, env.d.Sessions.BattleQueues[a.ID], 2)

	// The second clan reaching two fighters triggers the pairing.
	env.d.cmdClanBattle(env.command(bs[0], "clan_battle"))
	env.d.cmdClanBattle(env.command(bs[1], "clan_battle"))

	clash := env.d.Sessions.PendingClash
	require.NotNil(t, clash)
	assert.Equal(t, clashCountdown, clash.Status)
	assert.Equal(t, b.ID, clash.AID, "the clan that completed the pair initiates")
	assert.Equal(t, a.ID, clash.BID)
	require.Len(t, env.d.World.Battles, 1)
	assert.Equal(t, world.BattlePending, env.d.World.Battles[0].Status)
}

func TestAcceptBattleRules(t *testing.T) {
	env := newTestEnv(t)
	_, as := makeClan(t, env, "Альфа", 10, 2)
	_, bs := makeClan(t, env, "Браво", 20, 2)
	outsider := env.player(99, "")

	env.d.cmdClanBattle(env.command(as[0], "clan_battle"))
	env.d.cmdClanBattle(env.command(as[1], "clan_battle"))
	env.d.cmdClanBattle(env.command(bs[0], "clan_battle"))
	env.d.cmdClanBattle(env.command(bs[1], "clan_battle"))

	clash := env.d.Sessions.PendingClash
	require.NotNil(t, clash)

	// Clash AID is Браво (it completed the pair); only Альфа may accept.
	env.d.cmdAcceptBattle(env.command(outsider, "acceptbattle"))
	assert.False(t, clash.Accepted)
	env.d.cmdAcceptBattle(env.command(bs[0], "acceptbattle"))
	assert.False(t, clash.Accepted, "the initiating clan cannot accept its own call")

	env.d.cmdAcceptBattle(env.command(as[0], "acceptbattle"))
	assert.True(t, clash.Accepted)
	assert.Equal(t, as[0].ID, clash.Record.AcceptedBy)
	assert.Equal(t, clashCountdown, clash.Status, "accepted early, battle waits for the countdown")

	// Acceptance after the countdown fired starts the clash immediately.
	clash.Accepted = false
	clash.Status = clashReady
	env.d.cmdAcceptBattle(env.command(as[1], "acceptbattle"))
	assert.Equal(t, clashActive, clash.Status)
	assert.Len(t, clash.fighters, 4)
}

func TestClashRoundEliminatesAndFinishes(t *testing.T) {
	env := newTestEnv(t)
	a, as := makeClan(t, env, "Альфа", 10, 2)
	b, bs := makeClan(t, env, "Браво", 20, 2)
	b.Points = 500

	clash := &PendingClash{
		Status: clashActive,
		ChatID: 1,
		AID:    a.ID,
		BID:    b.ID,
		AQueue: []int64{as[0].ID, as[1].ID},
		BQueue: []int64{bs[0].ID, bs[1].ID},
		Record: &world.ClanBattle{Status: world.BattleActive},
		fighters: map[int64]*duelSide{
			as[0].ID: {PlayerID: as[0].ID, Fighter: combat.PlayerFighter(as[0]), Status: &combat.Status{HP: 500, MaxHP: 500}},
			as[1].ID: {PlayerID: as[1].ID, Fighter: combat.PlayerFighter(as[1]), Status: &combat.Status{HP: 500, MaxHP: 500}},
			bs[0].ID: {PlayerID: bs[0].ID, Fighter: combat.PlayerFighter(bs[0]), Status: &combat.Status{HP: 5, MaxHP: 100}},
			bs[1].ID: {PlayerID: bs[1].ID, Fighter: combat.PlayerFighter(bs[1]), Status: &combat.Status{HP: 5, MaxHP: 100}},
		},
	}
	env.d.Sessions.PendingClash = clash

	// Round 1: A's front one-shots B's front, who cannot answer.
	env.d.clashRound(clash)
	assert.Equal(t, 1, clash.BIdx, "the fallen fighter leaves the line")
	assert.Equal(t, 0, clash.AIdx)
	assert.Equal(t, clashActive, clash.Status)

	// Round 2 alternates the first striker; B's second fighter still dies
	// and the clash settles.
	env.d.clashRound(clash)
	assert.Equal(t, clashDone, clash.Status)
	assert.Nil(t, env.d.Sessions.PendingClash)
	assert.Equal(t, 500, a.Points)
	assert.Equal(t, 0, b.Points)
}

func TestFinishClashSettlement(t *testing.T) {
	env := newTestEnv(t)
	a, as := makeClan(t, env, "Альфа", 10, 2)
	b, bs := makeClan(t, env, "Браво", 20, 2)
	a.Points = 100
	b.Points = 200

	clash := &PendingClash{
		Status: clashActive,
		ChatID: 1,
		AID:    a.ID,
		BID:    b.ID,
		Record: &world.ClanBattle{Status: world.BattleActive},
		fighters: map[int64]*duelSide{
			as[0].ID: {PlayerID: as[0].ID, Status: &combat.Status{HP: 0, MaxHP: 100}},
			bs[0].ID: {PlayerID: bs[0].ID, Status: &combat.Status{HP: 77, MaxHP: 100}},
		},
	}
	env.d.Sessions.PendingClash = clash
	env.d.Sessions.BattleQueues[a.ID] = []int64{as[0].ID}
	env.d.Sessions.BattleQueues[b.ID] = []int64{bs[0].ID}

	env.d.finishClash(clash, false)

	assert.Equal(t, 0, a.Points, "losses floor at zero")
	assert.Equal(t, 700, b.Points)
	assert.Equal(t, 1, as[0].HP, "fallen fighters leave with 1 HP")
	assert.Equal(t, 77, bs[0].HP)
	assert.Equal(t, world.BattleFinished, clash.Record.Status)
	assert.Equal(t, b.ID, clash.Record.Data["winner"])
	assert.Empty(t, env.d.Sessions.BattleQueues)
	assert.Nil(t, env.d.Sessions.PendingClash)
}

func TestAbortClashReleasesQueues(t *testing.T) {
	env := newTestEnv(t)
	a, _ := makeClan(t, env, "Альфа", 10, 2)
	b, _ := makeClan(t, env, "Браво", 20, 2)

	clash := &PendingClash{
		Status: clashCountdown,
		ChatID: 1,
		AID:    a.ID,
		BID:    b.ID,
		Record: &world.ClanBattle{Status: world.BattlePending},
	}
	env.d.Sessions.PendingClash = clash
	env.d.Sessions.BattleQueues[a.ID] = []int64{10}
	env.d.Sessions.BattleQueues[b.ID] = []int64{20}

	env.d.abortClash(clash, "⚠️ Бойцы разбежались, битва отменена.")

	assert.Equal(t, clashDone, clash.Status)
	assert.Equal(t, world.BattleFinished, clash.Record.Status)
	assert.Empty(t, env.d.Sessions.BattleQueues)
	assert.Nil(t, env.d.Sessions.PendingClash)
}
