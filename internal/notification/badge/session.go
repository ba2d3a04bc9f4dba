package badge

import (
	"context"
	"sync"

	"repaircrm_backend/internal/events"

	"github.com/google/uuid"
)

// CountFunc fetches the authoritative badge count for a viewer from the
// store. Used at mount and whenever drift is detected.
type CountFunc func(ctx context.Context, viewerID uuid.UUID, privileged bool) (int, error)

// Session is one viewer connection's live badge. It owns a Reconciler, feeds
// it change events, and emits the resulting counts on Updates. On drift it
// re-fetches the authoritative count before emitting. Sessions hold no
// persistent state: a reconnect always starts from a fresh mount count.
type Session struct {
	pred    Predicate
	count   CountFunc
	updates chan int

	mu  sync.Mutex
	rec *Reconciler
}

func newSession(ctx context.Context, pred Predicate, count CountFunc) (*Session, error) {
	initial, err := count(ctx, pred.ViewerID, pred.Privileged)
	if err != nil {
		return nil, err
	}

	s := &Session{
		pred:    pred,
		count:   count,
		updates: make(chan int, 16),
	}
	s.rec = NewReconciler(pred, initial)
	return s, nil
}

// Updates emits the badge count after every change that affects it. The
// channel is buffered; if a slow consumer falls behind, intermediate counts
// are dropped in favor of the latest one.
func (s *Session) Updates() <-chan int {
	return s.updates
}

// Current returns the count the session currently holds.
func (s *Session) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Count()
}

// apply folds one change event in and pushes the new count to the consumer.
func (s *Session) apply(ctx context.Context, op events.ChangeOp, before, after *events.LeadSnapshot) {
	s.mu.Lock()
	prev := s.rec.Count()
	count, drift := s.rec.Apply(op, before, after)

	if drift {
		if fresh, err := s.count(ctx, s.pred.ViewerID, s.pred.Privileged); err == nil {
			s.rec.Reset(fresh)
			count = fresh
		}
	}
	s.mu.Unlock()

	if count == prev && !drift {
		return
	}
	s.push(count)
}

func (s *Session) push(count int) {
	for {
		select {
		case s.updates <- count:
			return
		default:
			// Drop the oldest pending count; only the latest matters.
			select {
			case <-s.updates:
			default:
			}
		}
	}
}
