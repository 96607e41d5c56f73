package data

// Kind identifies the inventory slot an item occupies.
type Kind string

const (
	KindArmor    Kind = "armor"
	KindHelmet   Kind = "helmet"
	KindWeapon   Kind = "weapon"
	KindMutation Kind = "mutation"
	KindExtra    Kind = "extra"
	KindSign     Kind = "sign"
)

// Kinds lists every slot kind in display order.
var Kinds = []Kind{KindArmor, KindHelmet, KindWeapon, KindMutation, KindExtra, KindSign}

// Rarity tiers, ascending.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityVeryRare  Rarity = "very_rare"
	RarityLegendary Rarity = "legendary"
)

// Emoji returns the fixed display badge for a tier.
func (r Rarity) Emoji() string {
	switch r {
	case RarityRare:
		return "🔵"
	case RarityVeryRare:
		return "🟣"
	case RarityLegendary:
		return "🟡"
	default:
		return "⚪"
	}
}

// ExtraEffect enumerates the triggered effects of extra-slot items.
type ExtraEffect string

const (
	EffectStun2           ExtraEffect = "stun2"
	EffectDamage50        ExtraEffect = "damage50"
	EffectDamage100       ExtraEffect = "damage100"
	EffectHalfDamage1     ExtraEffect = "halfDamage1"
	EffectDoubleDamage1   ExtraEffect = "doubleDamage1"
	EffectDoubleInfection ExtraEffect = "doubleInfection"
)

// PreventLethal variants for sign items.
const (
	PreventRadiation = "radiation"
	PreventFinal     = "final"
)

// SignEffect is the payload of sign-slot items.
type SignEffect struct {
	Vampirism     float64 `yaml:"vampirism,omitempty" json:"vampirism,omitempty"`
	DodgeChance   float64 `yaml:"dodge_chance,omitempty" json:"dodgeChance,omitempty"`
	PreventLethal string  `yaml:"prevent_lethal,omitempty" json:"preventLethal,omitempty"`
	ExtraTurn     bool    `yaml:"extra_turn,omitempty" json:"extraTurn,omitempty"`
	FullHeal      bool    `yaml:"full_heal,omitempty" json:"fullHeal,omitempty"`
}

// Item is an immutable template. Equipping copies it into a player slot;
// copies never share state with the catalog.
type Item struct {
	Name   string  `yaml:"name" json:"name"`
	Kind   Kind    `yaml:"kind" json:"kind"`
	Rarity Rarity  `yaml:"rarity,omitempty" json:"rarityKey,omitempty"`
	Chance float64 `yaml:"chance,omitempty" json:"chance,omitempty"`

	// Kind-specific payload. Zero values mean "not applicable".
	HP           int         `yaml:"hp,omitempty" json:"hp,omitempty"`       // armor
	Block        int         `yaml:"block,omitempty" json:"block,omitempty"` // helmet, percent 0-100
	Dmg          int         `yaml:"dmg,omitempty" json:"dmg,omitempty"`     // weapon
	Crit         float64     `yaml:"crit,omitempty" json:"crit,omitempty"`   // mutation, probability 0-1
	Effect       ExtraEffect `yaml:"effect,omitempty" json:"effect,omitempty"`
	EffectTurns  int         `yaml:"turns,omitempty" json:"turns,omitempty"`
	Sign         *SignEffect `yaml:"sign,omitempty" json:"sign,omitempty"`
	CaseEligible bool        `yaml:"case_eligible,omitempty" json:"caseEligible,omitempty"`
	CaseTypes    []CaseType  `yaml:"case_types,omitempty" json:"caseTypes,omitempty"`
}

// Clone returns an independent copy of the template.
func (it Item) Clone() *Item {
	cp := it
	if it.Sign != nil {
		s := *it.Sign
		cp.Sign = &s
	}
	if it.CaseTypes != nil {
		cp.CaseTypes = append([]CaseType(nil), it.CaseTypes...)
	}
	return &cp
}

// EligibleFor reports whether the item may roll from the given case.
func (it *Item) EligibleFor(ct CaseType) bool {
	if !it.CaseEligible {
		return false
	}
	for _, t := range it.CaseTypes {
		if t == ct {
			return true
		}
	}
	return false
}
