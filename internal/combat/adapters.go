package combat

import (
	"github.com/crimecore/server/internal/world"
)

// PlayerFighter builds the equipment view of a player.
func PlayerFighter(p *world.Player) Fighter {
	return Fighter{
		Name:     p.DisplayName(),
		Weapon:   p.Inventory.Weapon,
		Helmet:   p.Inventory.Helmet,
		Mutation: p.Inventory.Mutation,
		Extra:    p.Inventory.Extra,
		Sign:     p.Inventory.Sign,
	}
}

// PlayerStatus copies the player's volatile combat counters out.
func PlayerStatus(p *world.Player) *Status {
	return &Status{
		HP:                p.HP,
		MaxHP:             p.MaxHP,
		BoostTurns:        p.DamageBoostTurns,
		ReductionTurns:    p.DamageReductionTurns,
		RadiationBoost:    p.RadiationBoost,
		SignRadiationUsed: p.SignRadiationUsed,
		SignFinalUsed:     p.SignFinalUsed,
	}
}

// CommitPlayer writes a resolved Status back onto the player.
func CommitPlayer(p *world.Player, st *Status) {
	p.HP = st.HP
	p.DamageBoostTurns = st.BoostTurns
	p.DamageReductionTurns = st.ReductionTurns
	p.RadiationBoost = st.RadiationBoost
	p.SignRadiationUsed = st.SignRadiationUsed
	p.SignFinalUsed = st.SignFinalUsed
	p.ClampHP()
}

// MonsterStatus copies a PvE opponent's counters out. Stun lives on the
// owning player row (monsterStun column).
func MonsterStatus(p *world.Player, m *world.Monster) *Status {
	return &Status{
		HP:    m.HP,
		MaxHP: m.MaxHP,
		Stun:  p.MonsterStun,
	}
}

// CommitMonster writes a resolved Status back onto the monster snapshot.
func CommitMonster(p *world.Player, m *world.Monster, st *Status) {
	m.HP = st.HP
	if m.HP < 0 {
		m.HP = 0
	}
	p.MonsterStun = st.Stun
}
