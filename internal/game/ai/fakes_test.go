package ai_test

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/Zeldazackman/VoreWar/internal/game/ai"
	"github.com/Zeldazackman/VoreWar/internal/game/grid"
	"github.com/Zeldazackman/VoreWar/internal/game/spell"
	"github.com/Zeldazackman/VoreWar/internal/game/unit"
)

type fakeWorld struct {
	turn     int
	units    []*unit.Combatant
	board    *grid.Board
	blocked  map[grid.Pos]bool
	shared   map[grid.Pos]bool
	cramped  map[grid.Pos]bool
	raisable *unit.Combatant
	oneSided bool
}

func (w *fakeWorld) CurrentTurn() int                               { return w.turn }
func (w *fakeWorld) Units() []*unit.Combatant                       { return w.units }
func (w *fakeWorld) Board() *grid.Board                             { return w.board }
func (w *fakeWorld) TileShared(p grid.Pos) bool                     { return w.shared[p] }
func (w *fakeWorld) OnlyOneSideVisible() bool                       { return w.oneSided }
func (w *fakeWorld) ResurrectTarget(*unit.Combatant) *unit.Combatant { return w.raisable }

func (w *fakeWorld) OpenTile(p grid.Pos, mover *unit.Combatant) bool {
	if !w.board.InBounds(p) || w.blocked[p] {
		return false
	}
	for _, u := range w.units {
		if u != mover && u.Targetable && u.Pos == p {
			return false
		}
	}
	return true
}

func (w *fakeWorld) FreeSpaceAround(p grid.Pos, _ *unit.Combatant) bool { return !w.cramped[p] }

func (w *fakeWorld) UnitsWithin(p grid.Pos, radius int) []*unit.Combatant {
	var out []*unit.Combatant
	for _, u := range w.units {
		if u.Pos.MovesTo(p) <= radius {
			out = append(out, u)
		}
	}
	return out
}

type fakeActions struct {
	world        *fakeWorld
	calls        []string
	failMove     bool
	captureWorks bool
	canFinish    bool
}

func (a *fakeActions) record(format string, args ...any) {
	a.calls = append(a.calls, fmt.Sprintf(format, args...))
}

func (a *fakeActions) MoveTo(c *unit.Combatant, p grid.Pos) bool {
	if a.failMove || c.Pos.MovesTo(p) != 1 || !a.world.OpenTile(p, c) {
		return false
	}
	c.Pos = p
	c.Movement--
	a.record("move:%s:%s", c.ID, p)
	return true
}

func (a *fakeActions) Step(c *unit.Combatant, d grid.Direction) bool {
	p := c.Pos.Add(d)
	if !a.world.OpenTile(p, c) {
		return false
	}
	c.Pos = p
	c.Movement--
	a.record("step:%s:%s", c.ID, p)
	return true
}

func (a *fakeActions) Attack(c, t *unit.Combatant, ranged bool) {
	kind := "melee"
	if ranged {
		kind = "ranged"
	}
	a.record("attack:%s:%s:%s", c.ID, t.ID, kind)
	c.Movement = 0
}

func (a *fakeActions) Capture(c, t *unit.Combatant) bool {
	a.record("capture:%s:%s", c.ID, t.ID)
	c.Movement = 0
	if a.captureWorks {
		t.Targetable = false
	}
	return a.captureWorks
}

func (a *fakeActions) CaptureLeap(c, t *unit.Combatant) bool {
	a.record("capture_leap:%s:%s", c.ID, t.ID)
	c.Movement = 0
	if a.captureWorks {
		t.Targetable = false
	}
	return a.captureWorks
}

func (a *fakeActions) MeleeLeap(c, t *unit.Combatant) {
	a.record("melee_leap:%s:%s", c.ID, t.ID)
	c.Movement = 0
}

func (a *fakeActions) CanFinish(*unit.Combatant) bool { return a.canFinish }

func (a *fakeActions) Finish(c, t *unit.Combatant) {
	a.record("finish:%s:%s", c.ID, t.ID)
	c.Movement = 0
}

func (a *fakeActions) AttemptRetreat(c *unit.Combatant) {
	a.record("retreat:%s", c.ID)
	c.Targetable = false
	c.Movement = 0
}

func (a *fakeActions) ClearMovement(c *unit.Combatant) {
	a.record("clear:%s", c.ID)
	c.Movement = 0
}

// fakePaths walks straight toward the goal one tile at a time.
type fakePaths struct {
	fail bool
}

func toward(from, to grid.Pos) grid.Pos {
	return grid.Pos{X: from.X + sign(to.X-from.X), Y: from.Y + sign(to.Y-from.Y)}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func (p *fakePaths) FindPath(from, to grid.Pos, minDistance int, _ *unit.Combatant, maxDistance int) []grid.Pos {
	if p.fail {
		return nil
	}
	if minDistance < 1 {
		minDistance = 1
	}
	var path []grid.Pos
	cur := from
	for cur.MovesTo(to) > minDistance && len(path) < maxDistance {
		cur = toward(cur, to)
		path = append(path, cur)
	}
	return path
}

func (p *fakePaths) FindPathTowardRow(from grid.Pos, _ bool, row int, _ *unit.Combatant) []grid.Pos {
	if p.fail {
		return nil
	}
	var path []grid.Pos
	cur := from
	for cur.Y != row {
		cur = grid.Pos{X: cur.X, Y: cur.Y + sign(row-cur.Y)}
		path = append(path, cur)
	}
	return path
}

// fakeCombat uses fixed chances and sums levels for army power.
type fakeCombat struct {
	attack  float64
	capture float64
	magic   float64
	damage  int
}

func (c *fakeCombat) AttackChance(_, _ *unit.Combatant, _ bool) float64 { return c.attack }
func (c *fakeCombat) CaptureChance(_, _ *unit.Combatant) float64        { return c.capture }
func (c *fakeCombat) MagicChance(_, _ *unit.Combatant, _ *spell.Spell) float64 {
	return c.magic
}
func (c *fakeCombat) WeaponDamage(_, _ *unit.Combatant, _ bool) int { return c.damage }

func (c *fakeCombat) ArmyPower(units []*unit.Combatant) float64 {
	var total float64
	for _, u := range units {
		total += float64(u.Level)
	}
	return total
}

type fakeCaster struct {
	calls []string
	works bool
}

func (c *fakeCaster) TryCast(caster *unit.Combatant, sp *spell.Spell, t *unit.Combatant) bool {
	c.calls = append(c.calls, fmt.Sprintf("cast:%s:%s:%s", caster.ID, sp.ID, t.ID))
	caster.Movement = 0
	return c.works
}

func (c *fakeCaster) TryCastAt(caster *unit.Combatant, sp *spell.Spell, at grid.Pos) bool {
	c.calls = append(c.calls, fmt.Sprintf("cast_at:%s:%s:%s", caster.ID, sp.ID, at))
	if c.works {
		caster.Movement = 0
	}
	return c.works
}

// seqRand replays values modulo n; an empty sequence always yields 0.
type seqRand struct {
	vals []int
	i    int
}

func (r *seqRand) Intn(n int) int {
	if len(r.vals) == 0 {
		return 0
	}
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

type recordingEvents struct{ notices []string }

func (e *recordingEvents) Notice(msg string) { e.notices = append(e.notices, msg) }

// mockScriptCaller returns a fixed value per hook name.
type mockScriptCaller struct {
	results map[string]lua.LValue
	calls   []string
}

func (m *mockScriptCaller) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.calls = append(m.calls, scope+":"+hook)
	if v, ok := m.results[hook]; ok {
		return v, nil
	}
	return lua.LNil, nil
}

type harness struct {
	world   *fakeWorld
	actions *fakeActions
	paths   *fakePaths
	combat  *fakeCombat
	caster  *fakeCaster
	events  *recordingEvents
	rand    *seqRand
}

func newHarness(units ...*unit.Combatant) *harness {
	w := &fakeWorld{
		turn:    1,
		units:   units,
		board:   grid.NewBoard(20, 10),
		blocked: map[grid.Pos]bool{},
		shared:  map[grid.Pos]bool{},
		cramped: map[grid.Pos]bool{},
	}
	return &harness{
		world:   w,
		actions: &fakeActions{world: w, captureWorks: true},
		paths:   &fakePaths{},
		combat:  &fakeCombat{attack: 0.8, capture: 0.7, magic: 0.9, damage: 5},
		caster:  &fakeCaster{works: true},
		events:  &recordingEvents{},
		rand:    &seqRand{},
	}
}

func (h *harness) deps() ai.Deps {
	return ai.Deps{
		World:   h.world,
		Actions: h.actions,
		Paths:   h.paths,
		Combat:  h.combat,
		Spells:  h.caster,
		Rand:    h.rand,
		Events:  h.events,
	}
}

func (h *harness) newAI(cfg ai.Config) *ai.TacticalAI {
	return ai.New(cfg, h.deps())
}

func soldier(id string, side unit.Side, x, y int) *unit.Combatant {
	return &unit.Combatant{
		ID:          id,
		Name:        id,
		Side:        side,
		Pos:         grid.Pos{X: x, Y: y},
		Movement:    3,
		MaxMovement: 3,
		Targetable:  true,
		Level:       1,
		Health:      10,
		MaxHealth:   10,
		Melee:       &unit.Weapon{Name: "sword", Damage: "1d6", Range: 1},
	}
}

func capturer(id string, side unit.Side, x, y int, total float64) *unit.Combatant {
	c := soldier(id, side, x, y)
	c.Traits = unit.Traits(unit.TraitCapturer)
	c.Capacity = unit.Capacity{Total: total}
	return c
}

func archer(id string, side unit.Side, x, y, rng int) *unit.Combatant {
	c := soldier(id, side, x, y)
	c.Ranged = &unit.Weapon{Name: "bow", Damage: "1d8", Range: rng}
	return c
}
