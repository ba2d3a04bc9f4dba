package service

import (
	"context"
	"errors"

	"repaircrm_backend/internal/activity"
	"repaircrm_backend/internal/events"
	"repaircrm_backend/internal/leads/domain"
	"repaircrm_backend/internal/leads/repository"
	"repaircrm_backend/platform/apperr"

	"github.com/google/uuid"
)

// StatusResult reports a completed status change. Converted is true exactly
// when the new status closed the deal (won); the customer conversion is a
// best-effort side effect and does not affect it.
type StatusResult struct {
	Lead      repository.Lead
	OldStatus string
	Converted bool
}

// ChangeStatus moves a lead to newStatus. The status write and its SLA
// timestamps land atomically in the store. Audit, conversion, and event
// publication are side effects that cannot roll the write back: conversion
// failures are logged and retried on the next won transition, since
// conversion itself is idempotent.
func (s *Service) ChangeStatus(ctx context.Context, actor Actor, id uuid.UUID, newStatus string) (StatusResult, error) {
	if !domain.IsKnownStatus(newStatus) {
		return StatusResult{}, apperr.Validation("unknown status: " + newStatus)
	}

	change, err := s.store.UpdateStatus(ctx, id, newStatus)
	if errors.Is(err, repository.ErrNotFound) {
		return StatusResult{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return StatusResult{}, apperr.Storage("leads.change_status", err)
	}

	s.audit.Record(ctx, activity.Entry{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     "lead_status_changed",
		EntityType: "lead",
		EntityID:   change.Lead.ID,
		Before:     map[string]string{"status": change.OldStatus},
		After:      map[string]string{"status": change.Lead.Status},
	})

	converted := domain.IsConverting(newStatus)
	if converted && s.converter != nil {
		if err := s.converter.ConvertWonLead(ctx, change.Lead.ID); err != nil {
			s.log.Error("customer conversion failed", "lead_id", change.Lead.ID, "error", err)
		}
	}

	before := events.LeadSnapshot{
		ID:         change.Lead.ID,
		Status:     change.OldStatus,
		AssignedTo: change.Lead.AssignedTo,
	}
	s.bus.Publish(ctx, events.LeadChanged{
		BaseEvent: events.NewBaseEvent(),
		Op:        events.OpUpdate,
		Before:    &before,
		After:     snapshotOf(change.Lead),
	})
	s.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    change.Lead.ID,
		OldStatus: change.OldStatus,
		NewStatus: change.Lead.Status,
		Converted: converted,
	})

	return StatusResult{Lead: change.Lead, OldStatus: change.OldStatus, Converted: converted}, nil
}
