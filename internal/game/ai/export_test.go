package ai

// InstallPlan replaces the pending plan.
func (a *TacticalAI) InstallPlan(p *PendingPlan) { a.plan = p }

// Tuning returns the effective tuning.
func (a *TacticalAI) Tuning() Tuning { return a.tuning }
