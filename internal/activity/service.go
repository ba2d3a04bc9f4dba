// Package activity records who did what to which entity. Writes are strictly
// best-effort: a failed audit write is logged and swallowed, never surfaced to
// the caller, so the audit trail can never fail a business operation.
package activity

import (
	"context"
	"encoding/json"

	"repaircrm_backend/platform/logger"

	"github.com/google/uuid"
)

// Entry describes one auditable action. Before and After are arbitrary
// snapshots marshalled to JSON; either may be nil.
type Entry struct {
	ActorID    *uuid.UUID
	ActorName  string
	Action     string
	EntityType string
	EntityID   uuid.UUID
	Before     any
	After      any
}

// Recorder is the write side consumed by other modules.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

type store interface {
	Insert(ctx context.Context, actorID *uuid.UUID, actorName, action, entityType string, entityID uuid.UUID, before, after []byte) error
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]Record, error)
}

type Service struct {
	repo store
	log  *logger.Logger
}

func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Record persists the entry. It has no error return on purpose: failures are
// logged with enough detail to reconstruct the lost entry and then dropped.
func (s *Service) Record(ctx context.Context, entry Entry) {
	before, err := marshalSnapshot(entry.Before)
	if err != nil {
		s.log.AuditFailure(entry.Action, entry.EntityType, entry.EntityID.String(), err)
		return
	}
	after, err := marshalSnapshot(entry.After)
	if err != nil {
		s.log.AuditFailure(entry.Action, entry.EntityType, entry.EntityID.String(), err)
		return
	}

	if err := s.repo.Insert(ctx, entry.ActorID, entry.ActorName, entry.Action, entry.EntityType, entry.EntityID, before, after); err != nil {
		s.log.AuditFailure(entry.Action, entry.EntityType, entry.EntityID.String(), err)
	}
}

// Trail returns the newest-first audit history for one entity.
func (s *Service) Trail(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]Record, error) {
	return s.repo.ListByEntity(ctx, entityType, entityID, limit)
}

func marshalSnapshot(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
