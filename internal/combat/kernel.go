package combat

import (
	"fmt"
	"math"

	"github.com/crimecore/server/internal/data"
	"github.com/crimecore/server/internal/loot"
)

// extraTriggerChance is the per-attack probability of the extra slot firing.
const extraTriggerChance = 0.30

// Fighter is one side's equipment view. Any slot may be nil.
type Fighter struct {
	Name     string
	Weapon   *data.Item
	Helmet   *data.Item
	Mutation *data.Item
	Extra    *data.Item
	Sign     *data.Item
}

// Status is the mutable per-fight state of one side. The resolver mutates
// exactly the two Status values it is handed; everything else is read-only.
type Status struct {
	HP                int
	MaxHP             int
	Stun              int
	BoostTurns        int
	ReductionTurns    int
	RadiationBoost    bool
	SignRadiationUsed bool
	SignFinalUsed     bool
}

// Attack resolves one strike of atk against def and returns the battle log
// lines in resolution order. pve enables PvE-only effects (doubleInfection).
func Attack(rng loot.Rand, atk, def Fighter, as, ds *Status, pve bool) []string {
	var events []string

	// 1. Extra item.
	if atk.Extra != nil && rng.Float64() < extraTriggerChance {
		events = append(events, triggerExtra(atk, as, ds, pve)...)
	}

	// 2. Base damage.
	weaponName := "кулаки"
	weaponDmg := 0
	if atk.Weapon != nil {
		weaponName = atk.Weapon.Name
		weaponDmg = atk.Weapon.Dmg
	}
	damage := 10 + rng.Intn(30) + weaponDmg

	// 3. Crit.
	if atk.Mutation != nil && atk.Mutation.Crit > 0 && rng.Float64() < atk.Mutation.Crit {
		damage *= 2
		events = append(events, "💥 Критический удар!")
	}

	// 4. Attacker boost.
	if as.BoostTurns > 0 {
		damage *= 2
		as.BoostTurns--
		events = append(events, fmt.Sprintf("🔥 %s бьёт с удвоенной силой!", atk.Name))
	}

	// 5. Defender reduction.
	if ds.ReductionTurns > 0 {
		damage = ceilDiv(damage, 2)
		ds.ReductionTurns--
		events = append(events, fmt.Sprintf("🛡 %s получает вдвое меньше урона.", def.Name))
	}

	// 6. Dodge.
	dodged := false
	if def.Sign != nil && def.Sign.Sign != nil && def.Sign.Sign.DodgeChance > 0 &&
		rng.Float64() < def.Sign.Sign.DodgeChance {
		dodged = true
		damage = 0
		events = append(events, fmt.Sprintf("💨 %s уклоняется от удара!", def.Name))
	}

	// 7. Helmet block.
	if !dodged && def.Helmet != nil && def.Helmet.Block > 0 && damage > 0 {
		blocked := int(math.Ceil(float64(damage) * float64(def.Helmet.Block) / 100))
		if blocked > damage {
			blocked = damage
		}
		damage -= blocked
		events = append(events, fmt.Sprintf("🪖 Шлем блокирует %d урона.", blocked))
	}

	// 8. Apply.
	ds.HP -= damage
	if ds.HP < 0 {
		ds.HP = 0
	}
	events = append(events, fmt.Sprintf("⚔️ %s бьёт (%s) и наносит %d урона.", atk.Name, weaponName, damage))

	// 9. Vampirism.
	if damage > 0 && atk.Sign != nil && atk.Sign.Sign != nil && atk.Sign.Sign.Vampirism > 0 {
		heal := int(math.Ceil(float64(damage) * atk.Sign.Sign.Vampirism))
		before := as.HP
		as.HP += heal
		if as.HP > as.MaxHP {
			as.HP = as.MaxHP
		}
		if as.HP > before {
			events = append(events, fmt.Sprintf("🩸 %s восстанавливает %d HP.", atk.Name, as.HP-before))
		}
	}

	// 10. Sign save-from-death.
	if ds.HP <= 0 {
		events = append(events, applySignSave(def, as, ds)...)
	}

	return events
}

// Retaliate is the simplified monster/scout strike: flat damage through the
// defender steps only (reduction, dodge, block, sign saves). No extras, no
// crit. The attacker Status matters only for the stun a sign save may apply.
func Retaliate(rng loot.Rand, attackerName string, baseDamage int, def Fighter, as, ds *Status) []string {
	var events []string
	damage := baseDamage

	if ds.ReductionTurns > 0 {
		damage = ceilDiv(damage, 2)
		ds.ReductionTurns--
		events = append(events, fmt.Sprintf("🛡 %s получает вдвое меньше урона.", def.Name))
	}

	dodged := false
	if def.Sign != nil && def.Sign.Sign != nil && def.Sign.Sign.DodgeChance > 0 &&
		rng.Float64() < def.Sign.Sign.DodgeChance {
		dodged = true
		damage = 0
		events = append(events, fmt.Sprintf("💨 %s уклоняется от удара!", def.Name))
	}

	if !dodged && def.Helmet != nil && def.Helmet.Block > 0 && damage > 0 {
		blocked := int(math.Ceil(float64(damage) * float64(def.Helmet.Block) / 100))
		if blocked > damage {
			blocked = damage
		}
		damage -= blocked
		events = append(events, fmt.Sprintf("🪖 Шлем блокирует %d урона.", blocked))
	}

	ds.HP -= damage
	if ds.HP < 0 {
		ds.HP = 0
	}
	events = append(events, fmt.Sprintf("👊 %s наносит %d урона %s.", attackerName, damage, def.Name))

	if ds.HP <= 0 {
		events = append(events, applySignSave(def, as, ds)...)
	}

	return events
}

// triggerExtra applies the attacker's extra-item effect.
func triggerExtra(atk Fighter, as, ds *Status, pve bool) []string {
	eff := atk.Extra
	turns := eff.EffectTurns
	switch eff.Effect {
	case data.EffectStun2:
		if turns <= 0 {
			turns = 2
		}
		ds.Stun = turns
		return []string{fmt.Sprintf("⚡ %s: противник оглушён на %d хода!", eff.Name, turns)}
	case data.EffectDamage50:
		ds.HP -= 50
		if ds.HP < 0 {
			ds.HP = 0
		}
		return []string{fmt.Sprintf("💣 %s: дополнительно 50 урона!", eff.Name)}
	case data.EffectDamage100:
		ds.HP -= 100
		if ds.HP < 0 {
			ds.HP = 0
		}
		return []string{fmt.Sprintf("💣 %s: дополнительно 100 урона!", eff.Name)}
	case data.EffectHalfDamage1:
		if turns <= 0 {
			turns = 1
		}
		as.ReductionTurns = turns
		return []string{fmt.Sprintf("🛡 %s: входящий урон ополовинен.", eff.Name)}
	case data.EffectDoubleDamage1:
		if turns <= 0 {
			turns = 1
		}
		as.BoostTurns = turns
		return []string{fmt.Sprintf("🔥 %s: следующий удар удвоен!", eff.Name)}
	case data.EffectDoubleInfection:
		if pve {
			as.RadiationBoost = true
			return []string{fmt.Sprintf("☢️ %s: заражение за бой удвоено!", eff.Name)}
		}
	}
	return nil
}

// applySignSave checks the defender's save-from-death protections in order.
// Each is a one-shot per fight; the flag is consumed only on the killing blow.
func applySignSave(def Fighter, as, ds *Status) []string {
	if def.Sign == nil || def.Sign.Sign == nil {
		return nil
	}
	eff := def.Sign.Sign
	switch eff.PreventLethal {
	case data.PreventRadiation:
		if ds.SignRadiationUsed {
			return nil
		}
		ds.SignRadiationUsed = true
		ds.HP = 1
		events := []string{fmt.Sprintf("☢️ %s спасает %s от смерти!", def.Sign.Name, def.Name)}
		if eff.ExtraTurn && as.Stun < 1 {
			as.Stun = 1
			events = append(events, "⚡ Противник оглушён на 1 ход.")
		}
		return events
	case data.PreventFinal:
		if !eff.FullHeal || ds.SignFinalUsed {
			return nil
		}
		ds.SignFinalUsed = true
		ds.HP = ds.MaxHP
		return []string{fmt.Sprintf("✨ %s полностью исцеляет %s!", def.Sign.Name, def.Name)}
	}
	return nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
