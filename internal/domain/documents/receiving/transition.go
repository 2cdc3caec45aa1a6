package receiving

import (
	"procura/internal/domain/catalogs/item"
)

// Effect is the stock contribution of a receiving in a given state.
type Effect struct {
	Key  string
	Name string
	Qty  int64
}

// EffectOf returns the contribution of r, if any.
// Only an exactly "accepted" receiving with a positive qty contributes.
func EffectOf(r *Receiving) (Effect, bool) {
	if r == nil || r.Status != StatusAccepted || r.Qty <= 0 {
		return Effect{}, false
	}
	key := item.NormalizeName(r.ItemName)
	if key == "" {
		return Effect{}, false
	}
	return Effect{Key: key, Name: r.ItemName, Qty: r.Qty}, true
}

// StepKind is the ledger operation of a Step.
type StepKind int

const (
	StepRevert StepKind = iota + 1
	StepApply
)

func (k StepKind) String() string {
	switch k {
	case StepRevert:
		return "revert"
	case StepApply:
		return "apply"
	default:
		return "unknown"
	}
}

// Step is one ledger operation to run for a transition.
type Step struct {
	Kind   StepKind
	Effect Effect
}

// PlanTransition returns the ledger operations moving stock from the effect
// of prev to the effect of next. prev is nil on create.
//
// Equal effects (same key and qty, or none on both sides) need no change.
// Otherwise the old contribution is reverted before the new one is applied.
func PlanTransition(prev, next *Receiving) []Step {
	oldEff, hadOld := EffectOf(prev)
	newEff, hasNew := EffectOf(next)

	if hadOld == hasNew && (!hadOld || (oldEff.Key == newEff.Key && oldEff.Qty == newEff.Qty)) {
		return nil
	}

	var steps []Step
	if hadOld {
		steps = append(steps, Step{Kind: StepRevert, Effect: oldEff})
	}
	if hasNew {
		steps = append(steps, Step{Kind: StepApply, Effect: newEff})
	}
	return steps
}
