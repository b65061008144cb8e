// Package scenario loads tactical battle setups from YAML.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Zeldazackman/VoreWar/internal/game/ai"
	"github.com/Zeldazackman/VoreWar/internal/game/grid"
	"github.com/Zeldazackman/VoreWar/internal/game/spell"
	"github.com/Zeldazackman/VoreWar/internal/game/unit"
)

// Side describes one army and how its AI is configured.
type Side struct {
	Side      unit.Side
	Name      string
	Defending bool
	// DefendingVillage doubles the side's power when it weighs a retreat.
	DefendingVillage bool
	// Profile names an ai.Profile; empty means the default profile.
	Profile string
	// Retreat is nil when the scenario leaves the policy to configuration.
	Retreat *ai.RetreatPolicy
	// NoRetreat disables retreat even when configuration supplies a policy.
	NoRetreat bool
}

// Scenario is a fully resolved battle setup.
type Scenario struct {
	Name  string
	Board *grid.Board
	Sides []Side
	Units []*unit.Combatant
	Book  *spell.Book
}

type yamlScenarioFile struct {
	Scenario yamlScenario `yaml:"scenario"`
}

type yamlScenario struct {
	Name     string         `yaml:"name"`
	Board    []string       `yaml:"board"`
	SpellDir string         `yaml:"spell_dir"`
	Spells   []*spell.Spell `yaml:"spells"`
	Sides    []yamlSide     `yaml:"sides"`
	Units    []yamlUnit     `yaml:"units"`
}

type yamlSide struct {
	Side      int               `yaml:"side"`
	Name      string            `yaml:"name"`
	Defending bool              `yaml:"defending"`
	Village   bool              `yaml:"defending_village"`
	Profile   string            `yaml:"profile"`
	Retreat   *ai.RetreatPolicy `yaml:"retreat"`
	NoRetreat bool              `yaml:"no_retreat"`
}

type yamlWeapon struct {
	Name   string `yaml:"name"`
	Damage string `yaml:"damage"`
	Range  int    `yaml:"range"`
	Omni   bool   `yaml:"omni"`
}

type yamlUnit struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name"`
	Side          int            `yaml:"side"`
	Kind          string         `yaml:"kind"`
	X             int            `yaml:"x"`
	Y             int            `yaml:"y"`
	Movement      int            `yaml:"movement"`
	Level         int            `yaml:"level"`
	Health        int            `yaml:"health"`
	MaxHealth     int            `yaml:"max_health"`
	Mana          int            `yaml:"mana"`
	Traits        []string       `yaml:"traits"`
	Capacity      float64        `yaml:"capacity"`
	Bulk          float64        `yaml:"bulk"`
	CaptureAverse int            `yaml:"capture_averse"`
	Surrendered   bool           `yaml:"surrendered"`
	Melee         *yamlWeapon    `yaml:"melee"`
	Ranged        *yamlWeapon    `yaml:"ranged"`
	Spells        []spell.ID     `yaml:"spells"`
	Effects       map[string]int `yaml:"effects"`
}

var traitNames = map[string]unit.Trait{
	"capturer":       unit.TraitCapturer,
	"fearless":       unit.TraitFearless,
	"leap":           unit.TraitLeap,
	"ranged_capture": unit.TraitRangedCapture,
	"biter":          unit.TraitBiter,
	"acid_immune":    unit.TraitAcidImmune,
	"flight":         unit.TraitFlight,
	"finisher":       unit.TraitFinisher,
}

var kindNames = map[string]unit.Kind{
	"":          unit.KindSoldier,
	"soldier":   unit.KindSoldier,
	"summon":    unit.KindSummon,
	"mercenary": unit.KindMercenary,
}

// Load reads a scenario file. A relative spell_dir resolves against the
// file's directory.
//
// Precondition: path must point to a readable YAML scenario file.
// Postcondition: Returns a validated Scenario or a non-nil error.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario.Load: reading %s: %w", path, err)
	}
	s, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("scenario.Load: %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scenario document. baseDir anchors a relative spell_dir.
//
// Postcondition: Returns a validated Scenario or a non-nil error.
func Parse(data []byte, baseDir string) (*Scenario, error) {
	var file yamlScenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("scenario.Parse: %w", err)
	}
	raw := file.Scenario

	board, err := grid.ParseBoard(raw.Board)
	if err != nil {
		return nil, fmt.Errorf("scenario.Parse: %w", err)
	}
	book, err := loadSpells(raw, baseDir)
	if err != nil {
		return nil, fmt.Errorf("scenario.Parse: %w", err)
	}
	s := &Scenario{Name: raw.Name, Board: board, Book: book}
	for _, ys := range raw.Sides {
		s.Sides = append(s.Sides, Side{
			Side:             unit.Side(ys.Side),
			Name:             ys.Name,
			Defending:        ys.Defending,
			DefendingVillage: ys.Village,
			Profile:          ys.Profile,
			Retreat:          ys.Retreat,
			NoRetreat:        ys.NoRetreat,
		})
	}
	for i, yu := range raw.Units {
		u, err := convertUnit(yu, book)
		if err != nil {
			return nil, fmt.Errorf("scenario.Parse: unit %d: %w", i, err)
		}
		s.Units = append(s.Units, u)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario.Parse: %w", err)
	}
	return s, nil
}

func loadSpells(raw yamlScenario, baseDir string) (*spell.Book, error) {
	book := spell.NewBook()
	if raw.SpellDir != "" {
		dir := raw.SpellDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(baseDir, dir)
		}
		var err error
		if book, err = spell.LoadBook(dir); err != nil {
			return nil, err
		}
	}
	for _, sp := range raw.Spells {
		if err := book.Add(sp); err != nil {
			return nil, err
		}
	}
	return book, nil
}

func convertWeapon(w *yamlWeapon, defaultRange int) *unit.Weapon {
	if w == nil {
		return nil
	}
	rng := w.Range
	if rng <= 0 {
		rng = defaultRange
	}
	return &unit.Weapon{Name: w.Name, Damage: w.Damage, Range: rng, Omni: w.Omni}
}

func convertUnit(yu yamlUnit, book *spell.Book) (*unit.Combatant, error) {
	kind, ok := kindNames[strings.ToLower(yu.Kind)]
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", yu.Kind)
	}
	var traits unit.TraitSet
	for _, name := range yu.Traits {
		t, ok := traitNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown trait %q", name)
		}
		traits = traits.With(t)
	}
	spells, err := book.Resolve(yu.Spells)
	if err != nil {
		return nil, err
	}
	id := yu.ID
	if id == "" {
		id = uuid.NewString()
	}
	name := yu.Name
	if name == "" {
		name = id
	}
	maxHP := yu.MaxHealth
	if maxHP <= 0 {
		maxHP = yu.Health
	}
	hp := yu.Health
	if hp <= 0 {
		hp = maxHP
	}
	level := max(1, yu.Level)
	bulk := yu.Bulk
	if bulk <= 0 {
		bulk = 1
	}
	return &unit.Combatant{
		ID:            id,
		Name:          name,
		Side:          unit.Side(yu.Side),
		Kind:          kind,
		Pos:           grid.Pos{X: yu.X, Y: yu.Y},
		Movement:      yu.Movement,
		MaxMovement:   yu.Movement,
		Targetable:    true,
		Surrendered:   yu.Surrendered,
		Traits:        traits,
		Capacity:      unit.Capacity{Total: yu.Capacity},
		Bulk:          bulk,
		CaptureAverse: yu.CaptureAverse,
		Melee:         convertWeapon(yu.Melee, 1),
		Ranged:        convertWeapon(yu.Ranged, 1),
		Spells:        spells,
		Level:         level,
		Health:        hp,
		MaxHealth:     maxHP,
		Mana:          yu.Mana,
		MaxMana:       yu.Mana,
		Effects:       yu.Effects,
	}, nil
}

// Validate checks that the scenario is playable. It reports every violation.
//
// Postcondition: nil iff there are at least two sides, side numbers and unit
// IDs are unique, every unit belongs to a declared side, stands on open
// terrain inside the board, and has positive movement and health.
func (s *Scenario) Validate() error {
	var errs []error
	if len(s.Sides) < 2 {
		errs = append(errs, errors.New("at least two sides are required"))
	}
	sides := make(map[unit.Side]bool, len(s.Sides))
	for _, side := range s.Sides {
		if sides[side.Side] {
			errs = append(errs, fmt.Errorf("side %d declared twice", side.Side))
		}
		sides[side.Side] = true
	}
	ids := make(map[string]bool, len(s.Units))
	tiles := make(map[grid.Pos]string, len(s.Units))
	for _, u := range s.Units {
		if ids[u.ID] {
			errs = append(errs, fmt.Errorf("unit %q declared twice", u.ID))
		}
		ids[u.ID] = true
		if !sides[u.Side] {
			errs = append(errs, fmt.Errorf("unit %q: undeclared side %d", u.ID, u.Side))
		}
		if !s.Board.InBounds(u.Pos) {
			errs = append(errs, fmt.Errorf("unit %q: %s is off the board", u.ID, u.Pos))
		} else if s.Board.Cost(u.Pos, u.Has(unit.TraitFlight)) == grid.Impassable {
			errs = append(errs, fmt.Errorf("unit %q: %s is impassable", u.ID, u.Pos))
		}
		if other, taken := tiles[u.Pos]; taken {
			errs = append(errs, fmt.Errorf("unit %q: %s is taken by %q", u.ID, u.Pos, other))
		}
		tiles[u.Pos] = u.ID
		if u.MaxMovement <= 0 {
			errs = append(errs, fmt.Errorf("unit %q: movement must be > 0", u.ID))
		}
		if u.MaxHealth <= 0 {
			errs = append(errs, fmt.Errorf("unit %q: health must be > 0", u.ID))
		}
	}
	return errors.Join(errs...)
}

// SideFor returns the declaration of side.
func (s *Scenario) SideFor(side unit.Side) (Side, bool) {
	for _, d := range s.Sides {
		if d.Side == side {
			return d, true
		}
	}
	return Side{}, false
}
