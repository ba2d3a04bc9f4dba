// Package sse provides Server-Sent Events support for real-time staff
// notifications.
package sse

import (
	"sync"

	"repaircrm_backend/platform/logger"

	"github.com/google/uuid"
)

// EventType represents different types of SSE events
type EventType string

const (
	EventConnected     EventType = "connected"
	EventBadgeUpdated  EventType = "badge_updated"
	EventLeadConverted EventType = "lead_converted"
	EventFollowUpDue   EventType = "followup_due"
)

// Event represents an SSE event payload
type Event struct {
	Type    EventType   `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// client represents a connected SSE client
type client struct {
	userID uuid.UUID
	events chan Event
}

// Service manages SSE connections and event delivery.
type Service struct {
	mu      sync.Mutex
	clients map[uuid.UUID][]*client // userID -> connections
	closed  bool
	log     *logger.Logger
}

// New creates a new SSE service
func New(log *logger.Logger) *Service {
	return &Service{
		clients: make(map[uuid.UUID][]*client),
		log:     log,
	}
}

// Register adds a connection for the user and returns its event channel plus
// a release function that must run when the connection ends.
func (s *Service) Register(userID uuid.UUID) (<-chan Event, func()) {
	cl := &client{
		userID: userID,
		events: make(chan Event, 32),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(cl.events)
		return cl.events, func() {}
	}
	s.clients[userID] = append(s.clients[userID], cl)
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		conns := s.clients[userID]
		for i, existing := range conns {
			if existing == cl {
				s.clients[userID] = append(conns[:i], conns[i+1:]...)
				close(cl.events)
				break
			}
		}
		if len(s.clients[userID]) == 0 {
			delete(s.clients, userID)
		}
	}
	return cl.events, release
}

// Publish sends an event to every connection of one user. Full buffers drop
// the event rather than block the publisher.
func (s *Service) Publish(userID uuid.UUID, event Event) {
	s.mu.Lock()
	conns := make([]*client, len(s.clients[userID]))
	copy(conns, s.clients[userID])
	s.mu.Unlock()

	for _, cl := range conns {
		select {
		case cl.events <- event:
		default:
			s.log.Warn("sse buffer full, dropping event", "user_id", userID, "type", event.Type)
		}
	}
}

// Broadcast sends an event to every connected user.
func (s *Service) Broadcast(event Event) {
	s.mu.Lock()
	userIDs := make([]uuid.UUID, 0, len(s.clients))
	for userID := range s.clients {
		userIDs = append(userIDs, userID)
	}
	s.mu.Unlock()

	for _, userID := range userIDs {
		s.Publish(userID, event)
	}
}

// Close shuts down the SSE service and disconnects every client.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	for _, conns := range s.clients {
		for _, cl := range conns {
			close(cl.events)
		}
	}
	s.clients = make(map[uuid.UUID][]*client)
}
