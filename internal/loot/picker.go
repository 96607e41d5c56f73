package loot

import (
	"math/rand"

	"github.com/crimecore/server/internal/data"
)

// Rand is the subset of *rand.Rand the engines draw from. Tests substitute a
// scripted implementation.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

var _ Rand = (*rand.Rand)(nil)

// Picker implements every loot draw over an injected random source.
type Picker struct {
	rng Rand
}

func NewPicker(rng Rand) *Picker {
	return &Picker{rng: rng}
}

// WeightedPick draws from the pool proportionally to each item's Chance.
// Returns nil on an empty or zero-weight pool. The result is a copy.
func (p *Picker) WeightedPick(pool []data.Item) *data.Item {
	total := 0.0
	for i := range pool {
		if pool[i].Chance > 0 {
			total += pool[i].Chance
		}
	}
	if total <= 0 {
		return nil
	}
	r := p.rng.Float64() * total
	acc := 0.0
	for i := range pool {
		if pool[i].Chance <= 0 {
			continue
		}
		acc += pool[i].Chance
		if r < acc {
			return strip(pool[i])
		}
	}
	// Float drift: the last positive-weight entry covers the tail.
	for i := len(pool) - 1; i >= 0; i-- {
		if pool[i].Chance > 0 {
			return strip(pool[i])
		}
	}
	return nil
}

// UniformPick draws with equal probability, ignoring weights.
func (p *Picker) UniformPick(pool []data.Item) *data.Item {
	if len(pool) == 0 {
		return nil
	}
	return strip(pool[p.rng.Intn(len(pool))])
}

// PickRandomItem is the weighted draw used for monster drops and rescue rewards.
func (p *Picker) PickRandomItem(pool []data.Item) *data.Item {
	return p.WeightedPick(pool)
}

// PickRandomSign draws a sign uniformly; sign chances are never weighted.
func (p *Picker) PickRandomSign(pool []data.Item) *data.Item {
	return p.UniformPick(pool)
}

// PickCaseItem draws one item for a crate. Sign and legend crates roll
// uniformly; the rest roll by weight, falling back to uniform when the pool
// carries no weights.
func (p *Picker) PickCaseItem(c *data.Catalog, ct data.CaseType) *data.Item {
	def := data.CaseByType(ct)
	if def == nil {
		return nil
	}
	pool := c.ItemsForCase(ct, def.IncludeSigns)
	if len(pool) == 0 {
		return nil
	}
	if def.UniformRoll {
		return p.UniformPick(pool)
	}
	if it := p.WeightedPick(pool); it != nil {
		return it
	}
	return p.UniformPick(pool)
}

// PickRankedItem builds ranked-PvP opponent gear. The pool arrives sorted
// ascending by rarity; the draw window slides with the challenger's stage.
func (p *Picker) PickRankedItem(pool []data.Item, stage int) *data.Item {
	if len(pool) == 0 {
		return nil
	}
	maxIndex := len(pool) - 1
	var lo, hi int
	if stage <= maxIndex {
		lo = stage - 1
		if lo < 0 {
			lo = 0
		}
		hi = stage + 1
		if hi > maxIndex {
			hi = maxIndex
		}
	} else {
		span := maxIndex
		if span > 3 {
			span = 3
		}
		lo = maxIndex - span
		hi = maxIndex
	}
	return strip(pool[lo+p.rng.Intn(hi-lo+1)])
}

// PickRankedSign returns nil below stage 2, then draws uniformly from a
// 3-wide window centered on the stage.
func (p *Picker) PickRankedSign(pool []data.Item, stage int) *data.Item {
	if stage <= 1 || len(pool) == 0 {
		return nil
	}
	maxIndex := len(pool) - 1
	center := stage - 1
	if center > maxIndex {
		center = maxIndex
	}
	lo := center - 1
	if lo < 0 {
		lo = 0
	}
	hi := center + 1
	if hi > maxIndex {
		hi = maxIndex
	}
	return strip(pool[lo+p.rng.Intn(hi-lo+1)])
}

// Chance rolls a probability in [0,1].
func (p *Picker) Chance(prob float64) bool {
	return p.rng.Float64() < prob
}

// IntBetween returns a uniform integer in [lo, hi].
func (p *Picker) IntBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + p.rng.Intn(hi-lo+1)
}

// strip copies the template and drops the draw weight; inventory copies carry
// no chance.
func strip(it data.Item) *data.Item {
	cp := it.Clone()
	cp.Chance = 0
	return cp
}
