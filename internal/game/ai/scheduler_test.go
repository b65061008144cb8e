package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Zeldazackman/VoreWar/internal/game/ai"
	"github.com/Zeldazackman/VoreWar/internal/game/dice"
	"github.com/Zeldazackman/VoreWar/internal/game/grid"
	"github.com/Zeldazackman/VoreWar/internal/game/unit"
)

func TestNew_PanicsOnMissingCollaborators(t *testing.T) {
	assert.Panics(t, func() { ai.New(ai.Config{}, ai.Deps{}) })
}

func TestNew_PanicsWhenProfileNeedsScripts(t *testing.T) {
	h := newHarness()
	p := &ai.Profile{ID: "gated", Behaviors: []*ai.BehaviorRule{{ID: ai.BehaviorAttack, Precondition: "ok"}}}
	assert.Panics(t, func() { h.newAI(ai.Config{Profile: p}) })
}

func TestAdvanceOneStep_NoEligibleCombatant(t *testing.T) {
	tired := soldier("tired", 0, 1, 1)
	tired.Movement = 0
	gone := soldier("gone", 0, 2, 2)
	gone.Targetable = false
	enemy := soldier("enemy", 1, 5, 5)
	h := newHarness(tired, gone, enemy)
	a := h.newAI(ai.Config{Side: 0})
	assert.False(t, a.AdvanceOneStep())
	assert.Empty(t, h.actions.calls)
}

func TestAdvanceOneStep_AdjacentCaptureCommitsImmediately(t *testing.T) {
	pred := capturer("pred", 0, 5, 5, 3)
	prey := soldier("prey", 1, 6, 5)
	prey.Bulk = 2
	h := newHarness(pred, prey)
	h.combat.capture = 0.7
	a := h.newAI(ai.Config{Side: 0})

	require.True(t, a.AdvanceOneStep())
	assert.Equal(t, []string{"capture:pred:prey"}, h.actions.calls)
	assert.Nil(t, a.Plan())
	assert.Equal(t, 1, a.State().Consumed)
}

func TestAdvanceOneStep_PlanConsumesOneWaypointPerCall(t *testing.T) {
	m := soldier("m", 0, 0, 0)
	m.Movement = 4
	e := soldier("e", 1, 3, 0)
	h := newHarness(m, e)
	a := h.newAI(ai.Config{Side: 0})

	require.True(t, a.AdvanceOneStep())
	plan := a.Plan()
	require.NotNil(t, plan)
	assert.Same(t, m, plan.Owner)
	assert.Equal(t, 2, plan.Remaining())
	require.NotNil(t, plan.Action)
	assert.Equal(t, ai.CommandAttack, plan.Action.Kind)
	assert.Equal(t, "e", plan.Action.TargetID)

	require.True(t, a.AdvanceOneStep())
	require.NotNil(t, a.Plan())
	assert.Equal(t, 1, a.Plan().Remaining())

	require.True(t, a.AdvanceOneStep())
	assert.Nil(t, a.Plan())
	assert.Equal(t, []string{"move:m:(1,0)", "move:m:(2,0)", "attack:m:e:melee"}, h.actions.calls)

	assert.False(t, a.AdvanceOneStep())
}

func TestAdvanceOneStep_RangedAttackerDropsPlanOnLastPoint(t *testing.T) {
	r := archer("r", 0, 0, 0, 3)
	r.Movement = 2
	e := soldier("e", 1, 8, 0)
	h := newHarness(r, e)
	a := h.newAI(ai.Config{Side: 0})

	require.True(t, a.AdvanceOneStep())
	require.NotNil(t, a.Plan())
	assert.Equal(t, ai.CommandRangedAttack, a.Plan().Action.Kind)

	require.True(t, a.AdvanceOneStep())
	assert.Nil(t, a.Plan(), "plan must be dropped for a fresh decision")
	assert.Equal(t, 1, r.Movement)
}

func TestAdvanceOneStep_RangedAttackerKeepsPlanOnSharedTile(t *testing.T) {
	r := archer("r", 0, 0, 0, 3)
	r.Movement = 2
	e := soldier("e", 1, 8, 0)
	h := newHarness(r, e)
	h.world.shared[grid.Pos{X: 1, Y: 0}] = true
	a := h.newAI(ai.Config{Side: 0})

	require.True(t, a.AdvanceOneStep())
	require.True(t, a.AdvanceOneStep())
	require.NotNil(t, a.Plan())
	assert.Equal(t, 4, a.Plan().Remaining())
}

func TestAdvanceOneStep_FailedMoveRunsDeferredActionAndEndsTurn(t *testing.T) {
	m := soldier("m", 0, 0, 0)
	m.Movement = 4
	e := soldier("e", 1, 3, 0)
	h := newHarness(m, e)
	a := h.newAI(ai.Config{Side: 0})
	require.True(t, a.AdvanceOneStep())

	h.actions.failMove = true
	require.True(t, a.AdvanceOneStep())
	assert.Equal(t, []string{"attack:m:e:melee", "clear:m"}, h.actions.calls)
	assert.Nil(t, a.Plan())
	assert.Zero(t, m.Movement)
}

func TestAdvanceOneStep_BlockedLastStepEndsTurn(t *testing.T) {
	m := soldier("m", 0, 0, 0)
	m.Movement = 4
	e := soldier("e", 1, 3, 0)
	h := newHarness(m, e)
	a := h.newAI(ai.Config{Side: 0})
	require.True(t, a.AdvanceOneStep())

	m.Movement = 1
	h.world.blocked[grid.Pos{X: 1, Y: 0}] = true
	require.True(t, a.AdvanceOneStep())
	assert.Equal(t, []string{"clear:m"}, h.actions.calls)
	assert.Nil(t, a.Plan())
}

func TestAdvanceOneStep_DeferredTargetGoneIsSkipped(t *testing.T) {
	m := soldier("m", 0, 0, 0)
	m.Movement = 4
	e := soldier("e", 1, 3, 0)
	h := newHarness(m, e)
	a := h.newAI(ai.Config{Side: 0})
	require.True(t, a.AdvanceOneStep())

	e.Targetable = false
	require.True(t, a.AdvanceOneStep())
	require.True(t, a.AdvanceOneStep())
	assert.Nil(t, a.Plan())
	assert.Equal(t, []string{"move:m:(1,0)", "move:m:(2,0)"}, h.actions.calls)
}

func TestAdvanceOneStep_TurnBoundaryDiscardsPlan(t *testing.T) {
	r := archer("r", 0, 0, 0, 3)
	e := soldier("e", 1, 8, 0)
	h := newHarness(r, e)
	a := h.newAI(ai.Config{Side: 0})
	require.True(t, a.AdvanceOneStep())
	first := a.Plan()
	require.NotNil(t, first)

	h.world.turn = 2
	require.True(t, a.AdvanceOneStep())
	require.NotNil(t, a.Plan())
	assert.NotEqual(t, first.ID, a.Plan().ID)
	assert.Equal(t, grid.Pos{X: 0, Y: 0}, r.Pos)
}

func TestAdvanceOneStep_PassClearsMovement(t *testing.T) {
	s := soldier("s", 0, 0, 0)
	h := newHarness(s)
	a := h.newAI(ai.Config{Side: 0})
	require.True(t, a.AdvanceOneStep())
	assert.Equal(t, []string{"clear:s"}, h.actions.calls)
	assert.False(t, a.AdvanceOneStep())
}

func TestAdvanceOneStep_FirstEligibleInRosterOrder(t *testing.T) {
	first := soldier("first", 0, 0, 0)
	second := soldier("second", 0, 5, 5)
	h := newHarness(first, second)
	a := h.newAI(ai.Config{Side: 0})
	require.True(t, a.AdvanceOneStep())
	require.True(t, a.AdvanceOneStep())
	assert.Equal(t, []string{"clear:first", "clear:second"}, h.actions.calls)
}

func TestAdvanceOneStep_ExhaustedPlanMovesOnToNextActor(t *testing.T) {
	first := soldier("first", 0, 0, 0)
	second := soldier("second", 0, 5, 5)
	h := newHarness(first, second)
	a := h.newAI(ai.Config{Side: 0})
	a.Restore(ai.StrategicState{LastTurn: 1})
	a.InstallPlan(&ai.PendingPlan{ID: "spent", Owner: first, Action: &ai.Command{Kind: ai.CommandAttack, TargetID: "ghost"}})

	require.True(t, a.AdvanceOneStep())
	assert.Equal(t, []string{"clear:second"}, h.actions.calls)
	assert.Equal(t, 3, first.Movement)
	assert.Nil(t, a.Plan())

	require.True(t, a.AdvanceOneStep())
	assert.Equal(t, []string{"clear:second", "clear:first"}, h.actions.calls)
	assert.False(t, a.AdvanceOneStep())
}

func TestAdvanceOneStep_ExhaustedPlanOfLastActorStillReportsWork(t *testing.T) {
	only := soldier("only", 0, 0, 0)
	h := newHarness(only)
	a := h.newAI(ai.Config{Side: 0})
	a.Restore(ai.StrategicState{LastTurn: 1})
	a.InstallPlan(&ai.PendingPlan{ID: "spent", Owner: only, Action: &ai.Command{Kind: ai.CommandAttack, TargetID: "ghost"}})

	require.True(t, a.AdvanceOneStep(), "owner still has movement")
	assert.Empty(t, h.actions.calls)
	require.True(t, a.AdvanceOneStep())
	assert.Equal(t, []string{"clear:only"}, h.actions.calls)
	assert.False(t, a.AdvanceOneStep())
}

func TestNew_PartialTuningKeepsSetFieldsAndFillsUnusableZeros(t *testing.T) {
	s := soldier("s", 0, 0, 0)
	e := soldier("e", 1, 8, 0)
	h := newHarness(s, e)
	deps := h.deps()
	deps.Rand = dice.NewSeededSource(11)
	a := ai.New(ai.Config{Side: 0, Tuning: ai.Tuning{StalemateTurn: 200}}, deps)

	got := a.Tuning()
	assert.Equal(t, 200, got.StalemateTurn)
	assert.Equal(t, ai.DefaultTuning().SpellOdds, got.SpellOdds)
	assert.Equal(t, ai.DefaultTuning().MaxSearchDistance, got.MaxSearchDistance)
	assert.Zero(t, got.HealCeiling, "zero is a usable ceiling")
	assert.NotPanics(t, func() { a.AdvanceOneStep() })
}

func TestNew_ZeroTuningIsDefault(t *testing.T) {
	a := newHarness().newAI(ai.Config{})
	assert.Equal(t, ai.DefaultTuning(), a.Tuning())
}

func TestProperty_New_NonPositiveSpellOddsNeverReachesRand(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		odds := rapid.IntRange(-5, 0).Draw(rt, "spell_odds")
		s := soldier("s", 0, 0, 0)
		e := soldier("e", 1, 8, 0)
		h := newHarness(s, e)
		deps := h.deps()
		deps.Rand = dice.NewSeededSource(uint64(-odds))
		a := ai.New(ai.Config{Side: 0, Tuning: ai.Tuning{SpellOdds: odds, StalemateTurn: 1}}, deps)
		if a.Tuning().SpellOdds <= 0 {
			rt.Fatalf("SpellOdds = %d", a.Tuning().SpellOdds)
		}
		a.AdvanceOneStep()
	})
}

func TestRetreatPolicy_AccessorCopiesValue(t *testing.T) {
	h := newHarness()
	a := h.newAI(ai.Config{})
	_, ok := a.RetreatPolicy()
	assert.False(t, ok)

	p := &ai.RetreatPolicy{MinPowerRatio: 0.5}
	a.SetRetreatPolicy(p)
	p.MinPowerRatio = 0.9
	got, ok := a.RetreatPolicy()
	require.True(t, ok)
	assert.InDelta(t, 0.5, got.MinPowerRatio, 1e-9)

	a.SetRetreatPolicy(nil)
	_, ok = a.RetreatPolicy()
	assert.False(t, ok)
}

func TestState_RestoreRoundTrip(t *testing.T) {
	h := newHarness()
	a := h.newAI(ai.Config{})
	want := ai.StrategicState{Retreating: true, Consumed: 3, LastTurn: 7}
	a.Restore(want)
	assert.Equal(t, want, a.State())
}

func TestProperty_AdvanceOneStep_FalseIffNoEligible(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(rt, "n")
		var units []*unit.Combatant
		eligible := false
		for i := range n {
			u := soldier(string(rune('a'+i)), unit.Side(rapid.IntRange(0, 1).Draw(rt, "side")), i*3, 0)
			u.Movement = rapid.IntRange(0, 2).Draw(rt, "movement")
			u.Targetable = rapid.Bool().Draw(rt, "targetable")
			if u.Side == 0 && u.Targetable && u.Movement > 0 {
				eligible = true
			}
			units = append(units, u)
		}
		h := newHarness(units...)
		a := h.newAI(ai.Config{Side: 0})
		if got := a.AdvanceOneStep(); got != eligible {
			rt.Fatalf("AdvanceOneStep = %v, eligible = %v", got, eligible)
		}
	})
}
