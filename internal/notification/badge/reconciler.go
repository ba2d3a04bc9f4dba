package badge

import "repaircrm_backend/internal/events"

// Reconciler is a pure reducer over the lead change stream. It adjusts a
// counter in place from insert/update/delete deltas and reports drift when a
// decrement would push the counter negative. The stream carries no ordering
// or exactly-once guarantee, so drift is expected occasionally; the caller
// answers it with a fresh authoritative count via Reset.
type Reconciler struct {
	pred  Predicate
	count int
}

// NewReconciler starts the reducer from an authoritative mount-time count.
func NewReconciler(pred Predicate, initial int) *Reconciler {
	if initial < 0 {
		initial = 0
	}
	return &Reconciler{pred: pred, count: initial}
}

// Count returns the current counter value. Never negative.
func (r *Reconciler) Count() int {
	return r.count
}

// Reset replaces the counter with a re-fetched authoritative value.
func (r *Reconciler) Reset(count int) {
	if count < 0 {
		count = 0
	}
	r.count = count
}

// Apply folds one change event into the counter. The returned drift flag is
// true when a decrement was clamped at zero, meaning the local counter has
// diverged from server truth and should be re-fetched.
func (r *Reconciler) Apply(op events.ChangeOp, before, after *events.LeadSnapshot) (count int, drift bool) {
	switch op {
	case events.OpInsert:
		if r.pred.Matches(after) {
			r.count++
		}
	case events.OpDelete:
		if r.pred.Matches(before) {
			drift = r.decrement()
		}
	case events.OpUpdate:
		was, is := r.pred.Matches(before), r.pred.Matches(after)
		switch {
		case was && !is:
			drift = r.decrement()
		case !was && is:
			r.count++
		}
	}
	return r.count, drift
}

func (r *Reconciler) decrement() bool {
	if r.count == 0 {
		return true
	}
	r.count--
	return false
}
