// Package unit defines the combatant data model shared by the battle
// simulation and the tactical AI.
package unit

import (
	"github.com/Zeldazackman/VoreWar/internal/game/grid"
	"github.com/Zeldazackman/VoreWar/internal/game/spell"
)

// Side identifies the army a combatant fights for.
type Side int

// Kind distinguishes ordinary soldiers from units that never flee.
type Kind int

const (
	KindSoldier Kind = iota
	KindSummon
	KindMercenary
)

// Trait is a behavioural capability flag.
type Trait uint32

const (
	// TraitCapturer marks a combatant able to capture enemies into its capacity.
	TraitCapturer Trait = 1 << iota
	TraitFearless
	// TraitLeap allows long-range leap attacks and leap captures.
	TraitLeap
	// TraitRangedCapture lets a capturer attempt captures from a few tiles away.
	TraitRangedCapture
	// TraitBiter lowers the capture chance a capturer is willing to gamble on.
	TraitBiter
	TraitAcidImmune
	TraitFlight
	// TraitFinisher unlocks the finishing strike used after a melee approach.
	TraitFinisher
)

// TraitSet is a bit set of Trait values.
type TraitSet uint32

// Has reports whether t is present.
func (s TraitSet) Has(t Trait) bool { return uint32(s)&uint32(t) != 0 }

// With returns s plus t.
func (s TraitSet) With(t Trait) TraitSet { return TraitSet(uint32(s) | uint32(t)) }

// Traits builds a TraitSet from individual traits.
func Traits(ts ...Trait) TraitSet {
	var s TraitSet
	for _, t := range ts {
		s = s.With(t)
	}
	return s
}

// Weapon is an equipped melee or ranged weapon.
type Weapon struct {
	Name string
	// Damage is a dice expression such as "1d8+2".
	Damage string
	// Range is the maximum attack distance in tiles; melee weapons use 1.
	Range int
	// Omni weapons may fire at adjacent targets.
	Omni bool
}

// Capacity tracks how much bulk a capturer can hold.
//
// Invariant: 0 <= Used <= Total.
type Capacity struct {
	Total float64
	Used  float64
}

// Free returns the remaining capacity.
func (c Capacity) Free() float64 { return c.Total - c.Used }

// Combatant is one unit on the tactical board.
type Combatant struct {
	ID   string
	Name string
	Side Side
	Kind Kind

	Pos         grid.Pos
	Movement    int
	MaxMovement int

	// Targetable is false once the combatant has left play (dead, captured, fled).
	Targetable  bool
	Surrendered bool
	Dead        bool

	Traits   TraitSet
	Capacity Capacity
	Bulk     float64
	// CaptureAverse > 0 tells capturers to leave this unit alone.
	CaptureAverse int

	Melee  *Weapon
	Ranged *Weapon
	Spells []*spell.Spell

	Level     int
	Health    int
	MaxHealth int
	Mana      int
	MaxMana   int

	Effects map[string]int
}

// Has reports whether the combatant carries trait t.
func (c *Combatant) Has(t Trait) bool { return c.Traits.Has(t) }

// CanCapture reports whether the combatant has capture capability.
func (c *Combatant) CanCapture() bool { return c.Traits.Has(TraitCapturer) }

// IsRanged reports whether a ranged weapon is equipped.
func (c *Combatant) IsRanged() bool { return c.Ranged != nil }

// HasWeapon reports whether any weapon is equipped.
func (c *Combatant) HasWeapon() bool { return c.Melee != nil || c.Ranged != nil }

// InPlay reports whether the combatant is alive and still on the board.
func (c *Combatant) InPlay() bool { return c.Targetable && !c.Dead }

// HealthFraction returns Health/MaxHealth in [0,1]; 0 when MaxHealth is 0.
func (c *Combatant) HealthFraction() float64 {
	if c.MaxHealth <= 0 {
		return 0
	}
	f := float64(c.Health) / float64(c.MaxHealth)
	if f < 0 {
		return 0
	}
	return f
}

// HasEffect reports whether a status effect is active.
func (c *Combatant) HasEffect(name string) bool {
	return c.Effects[name] > 0
}

// AddEffect applies a status effect for the given number of turns.
func (c *Combatant) AddEffect(name string, turns int) {
	if c.Effects == nil {
		c.Effects = make(map[string]int)
	}
	c.Effects[name] = turns
}

// SpellOfKind returns the first known spell of kind k.
func (c *Combatant) SpellOfKind(k spell.Kind) (*spell.Spell, bool) {
	for _, s := range c.Spells {
		if s.Kind == k {
			return s, true
		}
	}
	return nil, false
}

// ResetMovement restores movement points for a new turn.
//
// Postcondition: Movement == MaxMovement for targetable combatants, 0 otherwise.
func (c *Combatant) ResetMovement() {
	if !c.Targetable {
		c.Movement = 0
		return
	}
	c.Movement = c.MaxMovement
}

// ClearMovement ends the combatant's turn.
func (c *Combatant) ClearMovement() { c.Movement = 0 }
