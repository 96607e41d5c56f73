package world

import (
	"github.com/crimecore/server/internal/data"
)

const BaseMaxHP = 100

// Inventory holds the six exclusive slots. Each slot owns its item copy.
type Inventory struct {
	Armor    *data.Item `json:"armor,omitempty"`
	Helmet   *data.Item `json:"helmet,omitempty"`
	Weapon   *data.Item `json:"weapon,omitempty"`
	Mutation *data.Item `json:"mutation,omitempty"`
	Extra    *data.Item `json:"extra,omitempty"`
	Sign     *data.Item `json:"sign,omitempty"`
}

// Slot returns a pointer to the slot for a kind, or nil for unknown kinds.
func (inv *Inventory) Slot(kind data.Kind) **data.Item {
	switch kind {
	case data.KindArmor:
		return &inv.Armor
	case data.KindHelmet:
		return &inv.Helmet
	case data.KindWeapon:
		return &inv.Weapon
	case data.KindMutation:
		return &inv.Mutation
	case data.KindExtra:
		return &inv.Extra
	case data.KindSign:
		return &inv.Sign
	}
	return nil
}

// Monster is the player's current PvE opponent snapshot.
// Monster tiers.
const (
	TierWeak    = "weak"
	TierMedium  = "medium"
	TierFat     = "fat"
	TierBoss    = "boss"
	TierSpecial = "special"
)

type Monster struct {
	Name       string  `json:"name"`
	HP         int     `json:"hp"`
	MaxHP      int     `json:"maxHp"`
	Dmg        int     `json:"dmg"`
	Tier       string  `json:"tier"`
	Infection  int     `json:"infection"`
	DropChance float64 `json:"dropChance"`
}

// DangerState is the player's position inside a danger-room scenario.
type DangerState struct {
	ScenarioID int `json:"scenarioId"`
	BranchID   int `json:"branchId"`
	Step       int `json:"step"`
}

// EventState references the story event currently shown to the player.
type EventState struct {
	EventID   string `json:"eventId"`
	MessageID int    `json:"messageId,omitempty"`
}

// PvpRef marks a player as engaged in a duel. The duel session itself is
// ephemeral; this snapshot only survives for stale-state tolerance.
type PvpRef struct {
	OpponentID   int64  `json:"opponentId,omitempty"`
	OpponentName string `json:"opponentName,omitempty"`
	Ranked       bool   `json:"ranked,omitempty"`
}

// Player is the persistent entity for one Telegram user.
// Accessed only from the game loop goroutine, so no locks are needed.
type Player struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`

	HP         int `json:"hp"`
	MaxHP      int `json:"maxHp"`
	Infection  int `json:"infection"`
	Crimecoins int `json:"crimecoins,omitempty"`

	SurvivalDays     int `json:"survivalDays"`
	BestSurvivalDays int `json:"bestSurvivalDays"`

	PvpWins       int `json:"pvpWins"`
	PvpLosses     int `json:"pvpLosses"`
	PvpRating     int `json:"pvpRating,omitempty"`
	PvpRatingBest int `json:"pvpRatingBest,omitempty"`

	ClanID string `json:"clanId,omitempty"`

	Inventory Inventory `json:"inventory"`

	// Volatile combat fields. Persisted for crash tolerance; engines clear
	// stale values on entry.
	Monster              *Monster     `json:"monster,omitempty"`
	MonsterStun          int          `json:"monsterStun,omitempty"`
	DamageBoostTurns     int          `json:"damageBoostTurns,omitempty"`
	DamageReductionTurns int          `json:"damageReductionTurns,omitempty"`
	RadiationBoost       bool         `json:"radiationBoost,omitempty"`
	FirstAttack          bool         `json:"firstAttack,omitempty"`
	PendingDrop          *data.Item   `json:"pendingDrop,omitempty"`
	CurrentEvent         *EventState  `json:"currentEvent,omitempty"`
	CurrentDanger        *DangerState `json:"currentDanger,omitempty"`
	CurrentDangerMsgID   int          `json:"currentDangerMsgId,omitempty"`
	PendingRescueGift    bool         `json:"pendingRescueGift,omitempty"`
	PendingHuntRaid      bool         `json:"pendingHuntRaid,omitempty"`
	Pvp                  *PvpRef      `json:"pvp,omitempty"`
	SignRadiationUsed    bool         `json:"signRadiationUsed,omitempty"`
	SignFinalUsed        bool         `json:"signFinalUsed,omitempty"`
	BattleMsgID          int          `json:"battleMsgId,omitempty"`

	// Session bookkeeping, unix seconds.
	LastHunt           int64 `json:"lastHunt,omitempty"`
	LastGiftTime       int64 `json:"lastGiftTime,omitempty"`
	LastPvpStartAt     int64 `json:"lastPvpStartAt,omitempty"`
	HuntCooldownWarned bool  `json:"huntCooldownWarned,omitempty"`

	InviteCasesAvailable int     `json:"inviteCasesAvailable,omitempty"`
	InviteCasesOpened    int     `json:"inviteCasesOpened,omitempty"`
	InvitedUserIDs       []int64 `json:"invitedUserIds,omitempty"`

	BaseURL string `json:"baseUrl,omitempty"`

	// Unknown persisted fields survive the round-trip untouched.
	Extra map[string]any `json:"-"`
}

// DisplayName returns the best available handle for prose.
func (p *Player) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Username != "" {
		return "@" + p.Username
	}
	return "Выживший"
}

// ApplyArmorHelmetBonuses recomputes MaxHP from armor and clamps HP.
func (p *Player) ApplyArmorHelmetBonuses() {
	p.MaxHP = BaseMaxHP
	if p.Inventory.Armor != nil {
		p.MaxHP += p.Inventory.Armor.HP
	}
	p.ClampHP()
}

// ClampHP keeps HP within [0, MaxHP].
func (p *Player) ClampHP() {
	if p.MaxHP < BaseMaxHP {
		p.MaxHP = BaseMaxHP
	}
	if p.HP > p.MaxHP {
		p.HP = p.MaxHP
	}
	if p.HP < 0 {
		p.HP = 0
	}
}

// Heal adds HP up to MaxHP and returns the amount actually restored.
func (p *Player) Heal(amount int) int {
	before := p.HP
	p.HP += amount
	if p.HP > p.MaxHP {
		p.HP = p.MaxHP
	}
	return p.HP - before
}

// Equip replaces the slot matching the item's kind and returns the previous
// occupant. MaxHP is recomputed when the armor slot changes.
func (p *Player) Equip(item *data.Item) *data.Item {
	slot := p.Inventory.Slot(item.Kind)
	if slot == nil {
		return nil
	}
	prev := *slot
	*slot = item
	p.ApplyArmorHelmetBonuses()
	return prev
}

// GrantSurvivalDay advances the survival counter and its record.
func (p *Player) GrantSurvivalDay() {
	p.SurvivalDays++
	if p.SurvivalDays > p.BestSurvivalDays {
		p.BestSurvivalDays = p.SurvivalDays
	}
}

// ResetSurvival zeroes the current streak; the record is kept.
func (p *Player) ResetSurvival() {
	p.SurvivalDays = 0
}

// AddInfection adjusts the soft currency, clamped at zero.
func (p *Player) AddInfection(amount int) {
	p.Infection += amount
	if p.Infection < 0 {
		p.Infection = 0
	}
}

// GrantRankedPvpPoints awards ranked rating and tracks the record.
func (p *Player) GrantRankedPvpPoints(amount int) {
	if amount <= 0 {
		amount = RankedPointsPerWin
	}
	p.PvpRating += amount
	if p.PvpRating > p.PvpRatingBest {
		p.PvpRatingBest = p.PvpRating
	}
}

// ResetPvpRating wipes the current rating; the best is preserved.
func (p *Player) ResetPvpRating() {
	p.PvpRating = 0
}

// RankedStage derives the synthesized opponent tier from current rating.
func (p *Player) RankedStage() int {
	return p.PvpRating / RankedPointsPerWin
}

// ResetSignOneShots rearms per-fight sign protections.
func (p *Player) ResetSignOneShots() {
	p.SignRadiationUsed = false
	p.SignFinalUsed = false
}

// ClearCombatState drops every volatile combat field. Engines call this on
// entry so stale persisted state never leaks into a new session.
func (p *Player) ClearCombatState() {
	p.Monster = nil
	p.MonsterStun = 0
	p.DamageBoostTurns = 0
	p.DamageReductionTurns = 0
	p.RadiationBoost = false
	p.FirstAttack = false
	p.PendingDrop = nil
	p.CurrentEvent = nil
	p.CurrentDanger = nil
	p.CurrentDangerMsgID = 0
	p.PendingRescueGift = false
	p.PendingHuntRaid = false
	p.Pvp = nil
	p.BattleMsgID = 0
	p.ResetSignOneShots()
}

// InCombat reports whether any combat context is active.
func (p *Player) InCombat() bool {
	return p.Monster != nil || p.Pvp != nil || p.CurrentDanger != nil ||
		p.PendingRescueGift || p.PendingHuntRaid
}

// RankedPointsPerWin is the fixed ranked rating increment.
const RankedPointsPerWin = 35
