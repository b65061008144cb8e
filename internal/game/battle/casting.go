package battle

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Zeldazackman/VoreWar/internal/game/combat"
	"github.com/Zeldazackman/VoreWar/internal/game/grid"
	"github.com/Zeldazackman/VoreWar/internal/game/spell"
	"github.com/Zeldazackman/VoreWar/internal/game/unit"
)

const (
	// effectTurns is how long a status spell lasts.
	effectTurns = 3
	// summonHealthPerLevel scales a summoned creature's health by spell potency.
	summonHealthPerLevel = 8
	summonMovement       = 3
	summonWeapon         = "1d6"
)

func (b *Battle) canCast(caster *unit.Combatant, sp *spell.Spell) bool {
	return sp != nil && caster.InPlay() && caster.Movement > 0 && sp.Affordable(caster.Mana)
}

// spend pays for sp and ends caster's turn.
func (b *Battle) spend(caster *unit.Combatant, sp *spell.Spell) {
	caster.Mana -= sp.ManaCost
	caster.ClearMovement()
	b.logger.Debug("cast",
		zap.String("caster", caster.ID),
		zap.String("spell", string(sp.ID)),
		zap.String("kind", sp.Kind.String()),
	)
}

// TryCast casts sp on target.
//
// Postcondition: returns true iff mana was spent; hostile spells may still miss.
func (b *Battle) TryCast(caster *unit.Combatant, sp *spell.Spell, target *unit.Combatant) bool {
	if !b.canCast(caster, sp) || target == nil || !target.InPlay() {
		return false
	}
	if caster.Pos.MovesTo(target.Pos) > sp.Range {
		return false
	}
	switch sp.Kind {
	case spell.KindDamage:
		b.spend(caster, sp)
		b.blast(caster, sp, target.Pos)
	case spell.KindStatus:
		b.spend(caster, sp)
		if target.Side != caster.Side && !b.lands(caster, target, sp) {
			return true
		}
		target.AddEffect(sp.Status, effectTurns)
		b.events.Notice(fmt.Sprintf("%s casts %s on %s.", caster.Name, spellName(sp), target.Name))
	case spell.KindHeal:
		b.spend(caster, sp)
		target.Health = min(target.MaxHealth, target.Health+sp.Potency)
		b.events.Notice(fmt.Sprintf("%s heals %s.", caster.Name, target.Name))
	default:
		return false
	}
	return true
}

// TryCastAt casts a summon, resurrection, or area spell centred on at.
//
// Postcondition: returns true iff mana was spent.
func (b *Battle) TryCastAt(caster *unit.Combatant, sp *spell.Spell, at grid.Pos) bool {
	if !b.canCast(caster, sp) {
		return false
	}
	switch sp.Kind {
	case spell.KindSummon:
		if !b.OpenTile(at, nil) {
			return false
		}
		b.spend(caster, sp)
		b.summon(caster, sp, at)
	case spell.KindResurrection:
		fallen := b.ResurrectTarget(caster)
		if fallen == nil || !b.OpenTile(at, fallen) {
			return false
		}
		b.spend(caster, sp)
		fallen.Dead = false
		fallen.Targetable = true
		fallen.Pos = at
		fallen.Health = max(1, fallen.MaxHealth/2)
		fallen.Movement = 0
		b.events.Notice(fmt.Sprintf("%s raises %s.", caster.Name, fallen.Name))
	case spell.KindDamage:
		if caster.Pos.MovesTo(at) > sp.Range {
			return false
		}
		b.spend(caster, sp)
		b.blast(caster, sp, at)
	default:
		return false
	}
	return true
}

func (b *Battle) lands(caster, target *unit.Combatant, sp *spell.Spell) bool {
	out := combat.ResolveChance(b.model.MagicChance(caster, target, sp), b.rand)
	if !out.Succeeded() {
		b.events.Notice(fmt.Sprintf("%s resists %s.", target.Name, spellName(sp)))
		return false
	}
	return true
}

// blast damages every combatant in play within sp's area of at, friend or foe.
func (b *Battle) blast(caster *unit.Combatant, sp *spell.Spell, at grid.Pos) {
	b.events.Notice(fmt.Sprintf("%s casts %s.", caster.Name, spellName(sp)))
	for _, u := range b.UnitsWithin(at, sp.AreaOfEffect) {
		if !b.lands(caster, u, sp) {
			continue
		}
		b.events.Notice(fmt.Sprintf("%s takes %d damage.", u.Name, sp.Potency))
		b.damage(u, sp.Potency)
	}
}

func (b *Battle) summon(caster *unit.Combatant, sp *spell.Spell, at grid.Pos) {
	level := max(1, sp.Potency)
	hp := level * summonHealthPerLevel
	s := &unit.Combatant{
		ID:          uuid.NewString(),
		Name:        spellName(sp),
		Side:        caster.Side,
		Kind:        unit.KindSummon,
		Pos:         at,
		MaxMovement: summonMovement,
		Targetable:  true,
		Melee:       &unit.Weapon{Name: "claws", Damage: summonWeapon, Range: 1},
		Level:       level,
		Health:      hp,
		MaxHealth:   hp,
	}
	// IDs come from uuid; add cannot collide.
	_ = b.add(s)
	b.events.Notice(fmt.Sprintf("%s summons %s.", caster.Name, s.Name))
}

func spellName(sp *spell.Spell) string {
	if sp.Name != "" {
		return sp.Name
	}
	return string(sp.ID)
}
