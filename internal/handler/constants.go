package handler

import "time"

// Pacing and TTL constants. These mirror the live game's timings.
const (
	huntCooldown      = 15 * time.Second
	adminHuntCooldown = 1 * time.Second

	pvpStartCooldown = 20 * time.Second
	pvpRequestTTL    = 60 * time.Second
	pvpSweepEvery    = 15 * time.Second
	pvpRoundPaceMin  = 2500 * time.Millisecond
	pvpRoundPaceMax  = 5 * time.Second

	inviteTTL        = 5 * time.Minute
	inviteSweepEvery = 60 * time.Second

	clanBattleCountdown = 20 * time.Second
	clanBattleRoundPace = 2 * time.Second

	raidLobbyDuration = 130 * time.Second
	raidTransition    = 3500 * time.Millisecond
	raidBattleTick    = 2500 * time.Millisecond
	raidMaxMembers    = 5

	assaultWindow     = 5 * time.Minute
	assaultCadence    = 35 * time.Minute
	assaultDuelTick   = 5 * time.Second
	assaultMinMembers = 4

	autosaveEvery = 30 * time.Second

	freeGiftCooldown = 24 * time.Hour
)

// Reward constants.
const (
	pvpWinInfection   = 300
	clanBattleStake   = 500
	assaultWinPoints  = 150
	supplyMedkitHeal  = 100
	supplyFoodHeal    = 30
	raidMedkitHeal    = 200
	bossInfection     = 200
	specialInfection  = 200
	specialDeathToll  = 100
	dangerExitReward  = 100
	dangerDeathToll   = 100
	dangerItemChance  = 0.12
	dangerStepDamage  = 0.34
)
