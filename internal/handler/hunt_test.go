package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimecore/server/internal/world"
)

func TestHuntCooldown(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")

	// One second short of the window: refused with a single loud warning.
	p.LastHunt = env.now.Unix() - int64(huntCooldown.Seconds()) + 1
	env.d.cbHunt(env.callback(p, "hunt"))

	answer, ok := env.lastCallbackAnswer()
	require.True(t, ok)
	assert.Contains(t, answer, "Рано")
	assert.True(t, p.HuntCooldownWarned)
	assert.Nil(t, p.Monster)

	// Repeat violations stay silent.
	env.d.cbHunt(env.callback(p, "hunt"))
	answer, ok = env.lastCallbackAnswer()
	require.True(t, ok)
	assert.Empty(t, answer)

	// Exactly at the boundary the hunt goes through.
	p.LastHunt = env.now.Unix() - int64(huntCooldown.Seconds())
	env.d.cbHunt(env.callback(p, "hunt"))

	assert.Equal(t, env.now.Unix(), p.LastHunt)
	assert.False(t, p.HuntCooldownWarned)
	require.NotNil(t, p.Monster, "all ladder rolls missed, so a regular monster spawns")
}

func TestHuntAdminCooldown(t *testing.T) {
	env := newTestEnv(t)
	admin := env.player(900, "admin")
	admin.LastHunt = env.now.Unix() - 2

	env.d.cbHunt(env.callback(admin, "hunt"))
	assert.NotNil(t, admin.Monster)
}

func TestHuntBossBranch(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")

	// Miss rescue, hunt-raid and supply, then hit the boss roll.
	env.rng.floats = []float64{0.9, 0.9, 0.9, 0.01}
	env.d.cbHunt(env.callback(p, "hunt"))

	require.NotNil(t, p.Monster)
	assert.Equal(t, world.TierBoss, p.Monster.Tier)
	assert.Equal(t, 5300, p.Monster.HP)
	assert.Equal(t, 600, p.Monster.Dmg)
}

func TestHuntSupplyDrop(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")
	p.HP = 40

	// Miss rescue and hunt-raid, hit supply, medkit side of the coin flip.
	env.rng.floats = []float64{0.9, 0.9, 0.01, 0.1}
	env.d.cbHunt(env.callback(p, "hunt"))

	assert.Nil(t, p.Monster)
	assert.Equal(t, 100, p.HP, "medkit heals 100 up to the cap")
	assert.Equal(t, 1, p.SurvivalDays)
}

func TestHuntRaidOfferDegradesWithoutClan(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")

	// Hunt-raid roll hits, but a clanless player gets a plain monster.
	env.rng.floats = []float64{0.9, 0.01}
	env.d.cbHunt(env.callback(p, "hunt"))

	assert.False(t, p.PendingHuntRaid)
	assert.NotNil(t, p.Monster)
}

func TestHuntClearsStaleCombatState(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")
	p.MonsterStun = 3
	p.SignRadiationUsed = true
	p.CurrentDanger = &world.DangerState{Step: 2}

	env.d.cbHunt(env.callback(p, "hunt"))

	assert.Zero(t, p.MonsterStun)
	assert.False(t, p.SignRadiationUsed)
	assert.Nil(t, p.CurrentDanger)
}

func TestAttackExchange(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")
	p.Monster = &world.Monster{Name: "🧟", HP: 20, MaxHP: 20, Dmg: 10, Tier: world.TierWeak, Infection: 20}

	// Player hits for 10 (base 10 + Intn=0), monster retaliates for 10.
	env.rng.ints = []int{0}
	env.d.cbAttack(env.callback(p, "attack"))

	assert.Equal(t, 10, p.Monster.HP)
	assert.Equal(t, 90, p.HP)
	assert.True(t, p.FirstAttack)

	// Second exchange kills the monster before it can answer.
	env.rng.ints = []int{20}
	env.d.cbAttack(env.callback(p, "attack"))

	assert.Nil(t, p.Monster, "combat state clears on the kill")
	assert.Equal(t, 90, p.HP)
	assert.Equal(t, 20, p.Infection)
	assert.Equal(t, 1, p.SurvivalDays)
	assert.Nil(t, p.PendingDrop, "weak-tier drop roll missed")
}

func TestKillGrantsSurvivalDay(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")
	p.SurvivalDays = 4
	p.BestSurvivalDays = 4
	p.Monster = &world.Monster{Name: "🧟", HP: 1, MaxHP: 1, Tier: world.TierWeak, Infection: 20}

	env.rng.ints = []int{0}
	env.d.cbAttack(env.callback(p, "attack"))

	assert.Nil(t, p.Monster)
	assert.Equal(t, 5, p.SurvivalDays)
	assert.Equal(t, 5, p.BestSurvivalDays)
	assert.Contains(t, env.fake.LastText(), "+1 день выживания")
}

func TestAttackStunnedMonsterSkipsTurn(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")
	p.Monster = &world.Monster{Name: "🧟", HP: 500, MaxHP: 500, Dmg: 50, Tier: world.TierWeak}
	p.MonsterStun = 1

	env.rng.ints = []int{0}
	env.d.cbAttack(env.callback(p, "attack"))

	assert.Equal(t, 100, p.HP, "a stunned monster does not retaliate")
	assert.Zero(t, p.MonsterStun)
}

func TestRadiationBoostDoublesKillReward(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")
	p.Monster = &world.Monster{Name: "🧟", HP: 5, MaxHP: 5, Tier: world.TierWeak, Infection: 20}
	p.RadiationBoost = true

	env.rng.ints = []int{0}
	env.d.cbAttack(env.callback(p, "attack"))

	assert.Equal(t, 40, p.Infection)
}

func TestPlayerDeathInPve(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")
	p.SurvivalDays = 7
	p.Infection = 150
	p.HP = 5
	p.Monster = &world.Monster{Name: "🧪", HP: 2222, MaxHP: 2222, Dmg: 333, Tier: world.TierSpecial}

	env.rng.ints = []int{0}
	env.d.cbAttack(env.callback(p, "attack"))

	assert.Nil(t, p.Monster)
	assert.Zero(t, p.SurvivalDays)
	assert.Equal(t, p.MaxHP, p.HP, "death resets HP to full")
	assert.Equal(t, 50, p.Infection, "the special subject drains 100 infection")
	assert.Equal(t, 7, p.BestSurvivalDays)
}

func TestRunBeforeStart(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")
	p.Monster = &world.Monster{Name: "🧟", HP: 100, MaxHP: 100, Dmg: 10, Tier: world.TierWeak}

	env.d.cbRunBeforeStart(env.callback(p, "run_before_start"))
	assert.Nil(t, p.Monster, "fleeing is allowed before the first strike")

	p.Monster = &world.Monster{Name: "🧟", HP: 100, MaxHP: 100, Dmg: 10, Tier: world.TierWeak}
	p.FirstAttack = true
	env.d.cbRunBeforeStart(env.callback(p, "run_before_start"))
	assert.NotNil(t, p.Monster, "no escape once the fight started")
	answer, _ := env.lastCallbackAnswer()
	assert.Contains(t, answer, "Поздно")
}

func TestRollDrop(t *testing.T) {
	env := newTestEnv(t)

	// Bosses always drop the full-heal sign.
	drop := env.d.rollDrop(&world.Monster{Tier: world.TierBoss})
	require.NotNil(t, drop)
	assert.Equal(t, "Финальный знак", drop.Name)

	// The special subject rolls uniformly over the whole pool.
	env.rng.ints = []int{0}
	drop = env.d.rollDrop(&world.Monster{Tier: world.TierSpecial})
	require.NotNil(t, drop)

	// Ordinary tiers gate on the tier's drop chance.
	env.rng.floats = []float64{0.99}
	assert.Nil(t, env.d.rollDrop(&world.Monster{Tier: world.TierWeak, DropChance: 0.20}))
	env.rng.floats = []float64{0.1, 0.1}
	assert.NotNil(t, env.d.rollDrop(&world.Monster{Tier: world.TierWeak, DropChance: 0.20}))
}

func TestTakeAndDiscardDrop(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")

	item := env.d.Catalog.FindByName("Кухонный нож").Clone()
	p.PendingDrop = item
	env.d.cbTakeDrop(env.callback(p, "take_drop"))

	assert.Nil(t, p.PendingDrop)
	require.NotNil(t, p.Inventory.Weapon)
	assert.Equal(t, "Кухонный нож", p.Inventory.Weapon.Name)

	p.PendingDrop = env.d.Catalog.FindByName("Обрез").Clone()
	env.d.cbDiscardDrop(env.callback(p, "discard_drop"))
	assert.Nil(t, p.PendingDrop)
	assert.Equal(t, "Кухонный нож", p.Inventory.Weapon.Name, "discarded loot never equips")

	// Nothing pending: both answer with an alert instead of acting.
	env.d.cbTakeDrop(env.callback(p, "take_drop"))
	answer, _ := env.lastCallbackAnswer()
	assert.Contains(t, answer, "нечего")
}

func TestRescueReward(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(10, "stalker")
	p.PendingRescueGift = true

	env.rng.floats = []float64{0.1}
	env.d.cbRescueReward(env.callback(p, "rescue_reward:weapon"), "weapon")

	assert.False(t, p.PendingRescueGift)
	require.NotNil(t, p.PendingDrop)
	assert.Equal(t, "Кухонный нож", p.PendingDrop.Name)

	// The gift cannot be claimed twice.
	env.d.cbRescueReward(env.callback(p, "rescue_reward:weapon"), "weapon")
	answer, _ := env.lastCallbackAnswer()
	assert.Contains(t, answer, "уже")
}
