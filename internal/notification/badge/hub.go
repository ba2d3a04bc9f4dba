package badge

import (
	"context"
	"sync"

	"repaircrm_backend/internal/events"
)

// Hub fans the lead change stream out to every mounted badge session.
type Hub struct {
	count CountFunc

	mu       sync.RWMutex
	sessions map[*Session]struct{}
}

func NewHub(count CountFunc) *Hub {
	return &Hub{
		count:    count,
		sessions: make(map[*Session]struct{}),
	}
}

// Count fetches the authoritative badge count for a viewer without mounting
// a session.
func (h *Hub) Count(ctx context.Context, pred Predicate) (int, error) {
	return h.count(ctx, pred.ViewerID, pred.Privileged)
}

// Mount creates a session seeded with the authoritative count for the viewer
// and registers it on the change stream. The returned release function tears
// the session down; callers must invoke it when the connection ends.
func (h *Hub) Mount(ctx context.Context, pred Predicate) (*Session, func(), error) {
	session, err := newSession(ctx, pred, h.count)
	if err != nil {
		return nil, nil, err
	}

	h.mu.Lock()
	h.sessions[session] = struct{}{}
	h.mu.Unlock()

	release := func() {
		h.mu.Lock()
		delete(h.sessions, session)
		h.mu.Unlock()
	}
	return session, release, nil
}

// Subscribe registers the hub on the event bus. One subscription serves all
// sessions for the process lifetime.
func (h *Hub) Subscribe(bus events.Bus) {
	bus.Subscribe(events.LeadChanged{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		changed, ok := event.(events.LeadChanged)
		if !ok {
			return nil
		}
		h.dispatch(ctx, changed)
		return nil
	}))
}

func (h *Hub) dispatch(ctx context.Context, changed events.LeadChanged) {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		s.apply(ctx, changed.Op, changed.Before, changed.After)
	}
}
