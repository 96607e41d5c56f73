package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimecore/server/internal/combat"
)

func TestRaidLobbyJoining(t *testing.T) {
	env := newTestEnv(t)
	c, members := makeClan(t, env, "Альфа", 10, 3)
	outsider := env.player(99, "")

	env.d.openRaidLobby(members[0], 1, false)
	raid := env.d.Sessions.Raids[c.ID]
	require.NotNil(t, raid)
	assert.Equal(t, raidLobby, raid.Status)
	assert.Len(t, raid.Members, 1, "the initiator joins automatically")
	assert.False(t, raid.DoubleReward)

	// A second lobby for the same clan is refused.
	env.d.openRaidLobby(members[1], 1, false)
	assert.Same(t, raid, env.d.Sessions.Raids[c.ID])
	assert.Len(t, raid.Members, 1)

	env.d.cmdAcceptMission(env.command(members[1], "acceptmission"))
	env.d.cmdAcceptMission(env.command(members[2], "acceptmission"))
	assert.Len(t, raid.Members, 3)

	// Duplicates and clanless players are rejected.
	env.d.cmdAcceptMission(env.command(members[1], "acceptmission"))
	assert.Len(t, raid.Members, 3)
	env.d.cmdAcceptMission(env.command(outsider, "acceptmission"))
	assert.Len(t, raid.Members, 3)
}

func TestRaidStyleIsLeaderOnly(t *testing.T) {
	env := newTestEnv(t)
	c, members := makeClan(t, env, "Альфа", 10, 2)

	env.d.openRaidLobby(members[0], 1, false)
	raid := env.d.Sessions.Raids[c.ID]
	env.d.cmdAcceptMission(env.command(members[1], "acceptmission"))
	env.d.raidStyleSelection(raid)
	require.Equal(t, raidStyle, raid.Status)

	env.d.cbRaidStyle(env.callback(members[1], "raid_style"), c.ID+":stealth")
	assert.Empty(t, raid.Style, "only the leader picks the style")

	env.d.cbRaidStyle(env.callback(members[0], "raid_style"), c.ID+":stealth")
	assert.Equal(t, styleStealth, raid.Style)
	assert.Equal(t, 1, raid.Stage)
	assert.Equal(t, raidBattle, raid.Status, "stage 1 has no guard-post choice")
	require.NotNil(t, raid.Enemy)
	assert.Equal(t, raidStages[0].HP, raid.Enemy.HP)
}

func TestRaidStealthChoice(t *testing.T) {
	env := newTestEnv(t)
	c, members := makeClan(t, env, "Альфа", 10, 2)

	env.d.openRaidLobby(members[0], 1, false)
	raid := env.d.Sessions.Raids[c.ID]
	raid.Style = styleStealth
	env.d.raidEnterStage(raid, 3)
	require.Equal(t, raidChoice, raid.Status, "stage 3 offers a choice")

	// Stealth style raises the slip-through chance to 70%; the roll hits
	// and the post-stage supply roll misses.
	env.rng.floats = []float64{0.5, 0.99}
	env.d.cbRaidChoice(env.callback(members[0], "raid_choice"), c.ID+":3:stealth")

	assert.Equal(t, 3, raid.LastCleared)
	assert.Equal(t, raidChoice, raid.Status, "the breather timer has not moved the raid yet")
}

func TestRaidStealthDetectedFallsBackToBattle(t *testing.T) {
	env := newTestEnv(t)
	c, members := makeClan(t, env, "Альфа", 10, 2)

	env.d.openRaidLobby(members[0], 1, false)
	raid := env.d.Sessions.Raids[c.ID]
	env.d.raidEnterStage(raid, 3)

	// Without the stealth style the slip chance is 10%; the roll misses.
	env.rng.floats = []float64{0.5}
	env.d.cbRaidChoice(env.callback(members[0], "raid_choice"), c.ID+":3:stealth")

	assert.Equal(t, raidBattle, raid.Status)
	assert.Zero(t, raid.LastCleared)
}

func TestRaidBattleRoundKillsGuard(t *testing.T) {
	env := newTestEnv(t)
	c, members := makeClan(t, env, "Альфа", 10, 2)

	env.d.openRaidLobby(members[0], 1, false)
	raid := env.d.Sessions.Raids[c.ID]
	env.d.cmdAcceptMission(env.command(members[1], "acceptmission"))
	raid.Status = raidBattle
	raid.Stage = 1
	raid.LastCleared = 0
	raid.Enemy = &combat.Status{HP: 8, MaxHP: 8}
	raid.EnemyDmg = raidStages[0].Dmg

	// Member strike: 10 base damage kills the 8 HP guard; the supply roll
	// after the stage misses.
	env.rng.ints = []int{0}
	env.rng.floats = []float64{0.99}
	env.d.raidBattleRound(raid)

	assert.Equal(t, 1, raid.LastCleared)
	assert.Equal(t, 100, raid.Members[0].Status.HP, "a dead guard does not retaliate")
}

func TestRaidWipeFinalizesWithoutReward(t *testing.T) {
	env := newTestEnv(t)
	c, members := makeClan(t, env, "Альфа", 10, 2)

	env.d.openRaidLobby(members[0], 1, false)
	raid := env.d.Sessions.Raids[c.ID]
	raid.Status = raidBattle
	raid.Stage = 1
	raid.Enemy = &combat.Status{HP: 5000, MaxHP: 5000}
	raid.EnemyDmg = 5000
	raid.Members[0].Status.HP = 50

	env.rng.ints = []int{0}
	env.d.raidBattleRound(raid)

	assert.True(t, raid.RewardGranted)
	assert.Equal(t, raidDone, raid.Status)
	assert.Zero(t, c.Points, "a wipe before the first clear pays nothing")
	assert.Equal(t, 1, members[0].HP, "members leave the raid with at least 1 HP")
	assert.NotContains(t, env.d.Sessions.Raids, c.ID)
}

func TestFinalizeRaidDoubleReward(t *testing.T) {
	env := newTestEnv(t)
	c, members := makeClan(t, env, "Альфа", 10, 2)

	raid := &RaidSession{
		Status:       raidBattle,
		ClanID:       c.ID,
		ChatID:       1,
		LeaderID:     members[0].ID,
		Stage:        4,
		LastCleared:  3,
		DoubleReward: true,
		Members: []*raidMember{
			{PlayerID: members[0].ID, Status: &combat.Status{HP: 40, MaxHP: 100}},
			{PlayerID: members[1].ID, Status: &combat.Status{HP: 0, MaxHP: 100}},
		},
	}
	env.d.Sessions.Raids[c.ID] = raid

	env.d.finalizeRaid(raid, false)

	// Stage 3 pays 700; the hunt-raid entry doubles it.
	assert.Equal(t, 1400, c.Points)
	assert.Equal(t, 1400, members[0].Infection)
	assert.Equal(t, 1400, members[1].Infection)
	assert.Equal(t, 40, members[0].HP)
	assert.Equal(t, 1, members[1].HP)
	assert.True(t, raid.RewardGranted)

	// Finalizing twice must not pay twice.
	env.d.finalizeRaid(raid, false)
	assert.Equal(t, 1400, c.Points)
	assert.Equal(t, 1400, members[0].Infection)
}

func TestRaidMedkitHealsTwoHundred(t *testing.T) {
	env := newTestEnv(t)
	c, members := makeClan(t, env, "Альфа", 10, 2)

	env.d.openRaidLobby(members[0], 1, false)
	raid := env.d.Sessions.Raids[c.ID]
	raid.Style = styleIntellect
	raid.Stage = 2
	raid.Members[0].Status.HP = 10
	raid.Members[0].Status.MaxHP = 400

	// Intellect style finds medkits at 70%; the roll hits.
	env.rng.floats = []float64{0.5}
	env.d.raidStageCleared(raid)

	assert.Equal(t, 210, raid.Members[0].Status.HP,
		"the announcement brags about 300, the medkit heals 200")
	assert.Contains(t, env.fake.LastText(), "+300 HP")
}
