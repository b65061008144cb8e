// Package ai implements the utility-driven tactical AI that steers one side of
// a battle.
//
// Each turn the AI reassesses the strategic situation, then hands out orders
// one combatant at a time. Orders are chosen by trying behaviors in a fixed
// priority order; a behavior's precondition may be gated by a Lua hook named
// in the side's Profile.
package ai

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// BehaviorID names one entry in the order priority chain.
type BehaviorID string

const (
	BehaviorLeapCapture    BehaviorID = "leap_capture"
	BehaviorCapture        BehaviorID = "capture"
	BehaviorResurrect      BehaviorID = "resurrect"
	BehaviorSpells         BehaviorID = "spells"
	BehaviorMeleeLeap      BehaviorID = "melee_leap"
	BehaviorAttack         BehaviorID = "attack"
	BehaviorDistantCapture BehaviorID = "distant_capture"
)

// PriorityOrder is the fixed order in which behaviors are attempted.
var PriorityOrder = []BehaviorID{
	BehaviorLeapCapture,
	BehaviorCapture,
	BehaviorResurrect,
	BehaviorSpells,
	BehaviorMeleeLeap,
	BehaviorAttack,
	BehaviorDistantCapture,
}

func knownBehavior(id BehaviorID) bool {
	for _, b := range PriorityOrder {
		if b == id {
			return true
		}
	}
	return false
}

// BehaviorRule adjusts one behavior for a profile.
//
// Precondition: ID must name a behavior in PriorityOrder.
// Precondition: Precondition is a Lua function name; empty means always applicable.
type BehaviorRule struct {
	ID           BehaviorID `yaml:"id"`
	Precondition string     `yaml:"precondition"`
	Disabled     bool       `yaml:"disabled"`
}

// Profile customises which behaviors a side may use. The priority order itself
// never changes; a profile can only switch behaviors off or gate them.
//
// Invariant: each behavior appears in Behaviors at most once.
type Profile struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	// ScriptScope selects the Lua VM preconditions run in.
	ScriptScope string          `yaml:"script_scope"`
	Behaviors   []*BehaviorRule `yaml:"behaviors"`
}

// DefaultProfile enables every behavior without preconditions.
func DefaultProfile() *Profile {
	return &Profile{ID: "default", Description: "all behaviors enabled"}
}

// Validate checks required fields and behavior references.
//
// Postcondition: nil return guarantees a non-empty ID and that every rule
// names a known behavior exactly once.
func (p *Profile) Validate() error {
	if p.ID == "" {
		return errors.New("ai.Profile: ID must not be empty")
	}
	seen := make(map[BehaviorID]struct{}, len(p.Behaviors))
	for _, r := range p.Behaviors {
		if r == nil || r.ID == "" {
			return fmt.Errorf("ai.Profile %q: behavior rule has empty ID", p.ID)
		}
		if !knownBehavior(r.ID) {
			return fmt.Errorf("ai.Profile %q: unknown behavior %q", p.ID, r.ID)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("ai.Profile %q: duplicate behavior %q", p.ID, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

// RuleFor returns the rule for id, or false if the profile leaves it at defaults.
func (p *Profile) RuleFor(id BehaviorID) (*BehaviorRule, bool) {
	for _, r := range p.Behaviors {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// NeedsScripts reports whether any enabled rule carries a Lua precondition.
func (p *Profile) NeedsScripts() bool {
	for _, r := range p.Behaviors {
		if !r.Disabled && r.Precondition != "" {
			return true
		}
	}
	return false
}

type yamlProfileFile struct {
	Profile *Profile `yaml:"profile"`
}

// LoadProfiles reads all *.yaml files from dir and returns parsed Profiles.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any YAML file fails to parse or validate.
// Postcondition: returns (nil, nil) if dir contains no .yaml files.
func LoadProfiles(dir string) ([]*Profile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadProfiles: reading %q: %w", dir, err)
	}
	var profiles []*Profile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("ai.LoadProfiles: reading %s: %w", e.Name(), err)
		}
		var f yamlProfileFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("ai.LoadProfiles: parsing %s: %w", e.Name(), err)
		}
		if f.Profile == nil {
			return nil, fmt.Errorf("ai.LoadProfiles: %s missing top-level 'profile' key", e.Name())
		}
		if err := f.Profile.Validate(); err != nil {
			return nil, err
		}
		profiles = append(profiles, f.Profile)
	}
	return profiles, nil
}
