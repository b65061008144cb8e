// Package spell describes the spells a combatant may know.
//
// Casting mechanics live in the battle simulation; this package only carries
// the descriptor fields the tactical AI reasons about.
package spell

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ID identifies a spell within a Book.
type ID string

// Kind is the broad effect category of a spell.
type Kind int

const (
	KindDamage Kind = iota
	KindStatus
	KindHeal
	KindSummon
	KindResurrection
)

var kindNames = map[Kind]string{
	KindDamage:       "damage",
	KindStatus:       "status",
	KindHeal:         "heal",
	KindSummon:       "summon",
	KindResurrection: "resurrection",
}

// String returns the YAML name of the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// UnmarshalYAML decodes a kind from its name.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	for kind, name := range kindNames {
		if strings.EqualFold(s, name) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("spell: unknown kind %q", s)
}

// TargetSet is the set of combatant categories a spell may be aimed at.
type TargetSet uint8

const (
	TargetEnemy TargetSet = 1 << iota
	TargetAlly
)

// Has reports whether every category in c is present in s.
func (s TargetSet) Has(c TargetSet) bool { return s&c == c }

// UnmarshalYAML decodes a list such as [enemy, ally].
func (s *TargetSet) UnmarshalYAML(node *yaml.Node) error {
	var names []string
	if err := node.Decode(&names); err != nil {
		return err
	}
	var out TargetSet
	for _, n := range names {
		switch strings.ToLower(n) {
		case "enemy":
			out |= TargetEnemy
		case "ally":
			out |= TargetAlly
		default:
			return fmt.Errorf("spell: unknown target category %q", n)
		}
	}
	*s = out
	return nil
}

// Spell is a castable spell descriptor.
type Spell struct {
	ID           ID        `yaml:"id"`
	Name         string    `yaml:"name"`
	Kind         Kind      `yaml:"kind"`
	ManaCost     int       `yaml:"mana_cost"`
	Range        int       `yaml:"range"`
	AreaOfEffect int       `yaml:"area_of_effect"`
	Targets      TargetSet `yaml:"targets"`
	// Status names the effect a KindStatus spell applies.
	Status string `yaml:"status"`
	// Potency is damage dealt or health restored.
	Potency int `yaml:"potency"`
}

// Affordable reports whether mana covers the spell's cost.
func (s *Spell) Affordable(mana int) bool { return s.ManaCost <= mana }

// Validate checks descriptor invariants.
//
// Postcondition: nil iff ID is non-empty, costs and ranges are non-negative,
// and status spells name a status.
func (s *Spell) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("spell: id must not be empty")
	}
	if s.ManaCost < 0 || s.Range < 0 || s.AreaOfEffect < 0 {
		return fmt.Errorf("spell %q: mana_cost, range and area_of_effect must be >= 0", s.ID)
	}
	if s.Kind == KindStatus && s.Status == "" {
		return fmt.Errorf("spell %q: status spells must name a status", s.ID)
	}
	return nil
}
