package badge

import (
	"context"
	"testing"

	"repaircrm_backend/internal/events"

	"github.com/google/uuid"
)

func snapshot(status string, assignedTo *uuid.UUID) *events.LeadSnapshot {
	return &events.LeadSnapshot{ID: uuid.New(), Status: status, AssignedTo: assignedTo}
}

func TestPredicateMatches(t *testing.T) {
	viewer := uuid.New()
	other := uuid.New()

	cases := []struct {
		name string
		pred Predicate
		lead *events.LeadSnapshot
		want bool
	}{
		{"nil snapshot never matches", Predicate{Privileged: true}, nil, false},
		{"privileged sees any new lead", Predicate{Privileged: true}, snapshot("new", nil), true},
		{"privileged sees legacy empty status", Predicate{Privileged: true}, snapshot("", nil), true},
		{"privileged ignores contacted", Predicate{Privileged: true}, snapshot("contacted", nil), false},
		{"restricted sees own new lead", Predicate{ViewerID: viewer}, snapshot("new", &viewer), true},
		{"restricted ignores others' leads", Predicate{ViewerID: viewer}, snapshot("new", &other), false},
		{"restricted ignores unassigned", Predicate{ViewerID: viewer}, snapshot("new", nil), false},
		{"restricted ignores own contacted lead", Predicate{ViewerID: viewer}, snapshot("contacted", &viewer), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.pred.Matches(tc.lead); got != tc.want {
				t.Errorf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPredicateFor(t *testing.T) {
	viewer := uuid.New()

	if !PredicateFor(viewer, []string{"technician", "manager"}).Privileged {
		t.Error("manager role should be privileged")
	}
	if !PredicateFor(viewer, []string{"admin"}).Privileged {
		t.Error("admin role should be privileged")
	}
	if PredicateFor(viewer, []string{"technician"}).Privileged {
		t.Error("technician role should not be privileged")
	}
	if PredicateFor(viewer, nil).Privileged {
		t.Error("no roles should not be privileged")
	}
}

// TestReconcilerRestrictedViewer walks the counter through assignment and
// status changes from a restricted technician's point of view.
func TestReconcilerRestrictedViewer(t *testing.T) {
	viewer := uuid.New()
	other := uuid.New()
	rec := NewReconciler(Predicate{ViewerID: viewer}, 3)

	// A lead created for someone else is invisible.
	count, drift := rec.Apply(events.OpInsert, nil, snapshot("new", &other))
	if count != 3 || drift {
		t.Fatalf("after foreign insert: count=%d drift=%v, want 3/false", count, drift)
	}

	// Reassigning that lead to the viewer brings it into scope.
	before := snapshot("new", &other)
	after := &events.LeadSnapshot{ID: before.ID, Status: "new", AssignedTo: &viewer}
	count, drift = rec.Apply(events.OpUpdate, before, after)
	if count != 4 || drift {
		t.Fatalf("after reassignment: count=%d drift=%v, want 4/false", count, drift)
	}

	// Contacting one of the viewer's leads removes it.
	before = snapshot("new", &viewer)
	after = &events.LeadSnapshot{ID: before.ID, Status: "contacted", AssignedTo: &viewer}
	count, drift = rec.Apply(events.OpUpdate, before, after)
	if count != 3 || drift {
		t.Fatalf("after contact: count=%d drift=%v, want 3/false", count, drift)
	}

	// Deleting a matching lead decrements.
	count, drift = rec.Apply(events.OpDelete, snapshot("new", &viewer), nil)
	if count != 2 || drift {
		t.Fatalf("after delete: count=%d drift=%v, want 2/false", count, drift)
	}
}

func TestReconcilerUpdateWithinScopeIsNeutral(t *testing.T) {
	rec := NewReconciler(Predicate{Privileged: true}, 5)

	// new -> new with a different assignee: matched before and after.
	a, b := uuid.New(), uuid.New()
	before := snapshot("new", &a)
	after := &events.LeadSnapshot{ID: before.ID, Status: "new", AssignedTo: &b}
	if count, drift := rec.Apply(events.OpUpdate, before, after); count != 5 || drift {
		t.Errorf("neutral update: count=%d drift=%v, want 5/false", count, drift)
	}

	// contacted -> won: unmatched both sides.
	before = snapshot("contacted", nil)
	after = &events.LeadSnapshot{ID: before.ID, Status: "won"}
	if count, drift := rec.Apply(events.OpUpdate, before, after); count != 5 || drift {
		t.Errorf("out-of-scope update: count=%d drift=%v, want 5/false", count, drift)
	}
}

// TestReconcilerDrift: decrements against an already-zero counter clamp and
// flag drift instead of going negative.
func TestReconcilerDrift(t *testing.T) {
	rec := NewReconciler(Predicate{Privileged: true}, 0)

	count, drift := rec.Apply(events.OpDelete, snapshot("new", nil), nil)
	if count != 0 {
		t.Errorf("count = %d, want clamped at 0", count)
	}
	if !drift {
		t.Error("expected drift to be reported on clamped decrement")
	}

	rec.Reset(2)
	if rec.Count() != 2 {
		t.Errorf("count after reset = %d, want 2", rec.Count())
	}
}

func TestReconcilerNegativeInputsClamp(t *testing.T) {
	rec := NewReconciler(Predicate{Privileged: true}, -7)
	if rec.Count() != 0 {
		t.Errorf("initial count = %d, want clamped at 0", rec.Count())
	}
	rec.Reset(-1)
	if rec.Count() != 0 {
		t.Errorf("reset count = %d, want clamped at 0", rec.Count())
	}
}

// TestSessionDriftRefetch verifies a session answers drift with a fresh
// authoritative count instead of serving the clamped value.
func TestSessionDriftRefetch(t *testing.T) {
	calls := 0
	count := func(_ context.Context, _ uuid.UUID, _ bool) (int, error) {
		calls++
		if calls == 1 {
			return 0, nil // mount
		}
		return 6, nil // re-fetch after drift
	}

	hub := NewHub(count)
	session, release, err := hub.Mount(context.Background(), Predicate{Privileged: true})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer release()

	// A delete against a zero counter is drift; the session re-fetches.
	hub.dispatch(context.Background(), events.LeadChanged{
		Op:     events.OpDelete,
		Before: snapshot("new", nil),
	})

	if calls != 2 {
		t.Fatalf("count fetches = %d, want mount + drift re-fetch", calls)
	}
	if got := session.Current(); got != 6 {
		t.Errorf("session count = %d, want authoritative 6", got)
	}

	select {
	case got := <-session.Updates():
		if got != 6 {
			t.Errorf("emitted count = %d, want 6", got)
		}
	default:
		t.Error("expected an update after drift re-fetch")
	}
}

func TestSessionEmitsOnlyOnChange(t *testing.T) {
	count := func(context.Context, uuid.UUID, bool) (int, error) { return 2, nil }

	hub := NewHub(count)
	session, release, err := hub.Mount(context.Background(), Predicate{Privileged: true})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer release()

	// Out-of-scope insert: no change, no emission.
	hub.dispatch(context.Background(), events.LeadChanged{
		Op:    events.OpInsert,
		After: snapshot("contacted", nil),
	})
	select {
	case got := <-session.Updates():
		t.Fatalf("unexpected update %d for an out-of-scope event", got)
	default:
	}

	hub.dispatch(context.Background(), events.LeadChanged{
		Op:    events.OpInsert,
		After: snapshot("new", nil),
	})
	select {
	case got := <-session.Updates():
		if got != 3 {
			t.Errorf("emitted count = %d, want 3", got)
		}
	default:
		t.Error("expected an update for an in-scope insert")
	}
}

func TestHubReleaseStopsDispatch(t *testing.T) {
	count := func(context.Context, uuid.UUID, bool) (int, error) { return 0, nil }

	hub := NewHub(count)
	session, release, err := hub.Mount(context.Background(), Predicate{Privileged: true})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	release()

	hub.dispatch(context.Background(), events.LeadChanged{
		Op:    events.OpInsert,
		After: snapshot("new", nil),
	})
	if got := session.Current(); got != 0 {
		t.Errorf("released session count = %d, want untouched 0", got)
	}
}
