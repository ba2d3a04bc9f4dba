// Package service implements lead lifecycle orchestration: intake, workflow
// status changes with SLA stamping, assignment, and deletion. Every mutation
// leaves an audit entry and a change event; neither may fail the mutation.
package service

import (
	"context"
	"errors"
	"time"

	"repaircrm_backend/internal/activity"
	"repaircrm_backend/internal/events"
	"repaircrm_backend/internal/leads/domain"
	"repaircrm_backend/internal/leads/repository"
	"repaircrm_backend/platform/apperr"
	"repaircrm_backend/platform/logger"
	"repaircrm_backend/platform/phone"

	"github.com/google/uuid"
)

// LeadStore is the persistence surface the service needs. Satisfied by
// repository.Repository; tests substitute a fake.
type LeadStore interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Lead, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, newStatus string) (repository.StatusChange, error)
	Delete(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	CountActionable(ctx context.Context, viewerID uuid.UUID, privileged bool) (int, error)
}

// Converter turns a won lead into a customer record. Implemented by the
// customers module behind an adapter to keep the packages decoupled.
type Converter interface {
	ConvertWonLead(ctx context.Context, leadID uuid.UUID) error
}

// FollowUpScheduler enqueues a delayed first-contact reminder check.
type FollowUpScheduler interface {
	ScheduleFollowUp(ctx context.Context, leadID uuid.UUID, runAt time.Time) error
}

// Vocabulary validates intake fields against the shop's configured device and
// issue catalogue.
type Vocabulary interface {
	HasDeviceType(deviceType string) bool
	AcceptsIssue(issue string) bool
}

// Actor identifies who performed a mutation, for the audit trail.
type Actor struct {
	ID   *uuid.UUID
	Name string
}

type Service struct {
	store       LeadStore
	converter   Converter
	scheduler   FollowUpScheduler
	vocab       Vocabulary
	audit       activity.Recorder
	bus         events.Bus
	log         *logger.Logger
	phoneRegion string
	followUpTTL time.Duration
}

type Config struct {
	Store       LeadStore
	Converter   Converter
	Scheduler   FollowUpScheduler
	Vocabulary  Vocabulary
	Audit       activity.Recorder
	Bus         events.Bus
	Logger      *logger.Logger
	PhoneRegion string
	FollowUpTTL time.Duration
}

func New(cfg Config) *Service {
	return &Service{
		store:       cfg.Store,
		converter:   cfg.Converter,
		scheduler:   cfg.Scheduler,
		vocab:       cfg.Vocabulary,
		audit:       cfg.Audit,
		bus:         cfg.Bus,
		log:         cfg.Logger,
		phoneRegion: cfg.PhoneRegion,
		followUpTTL: cfg.FollowUpTTL,
	}
}

// SetConverter wires the customer conversion dependency after construction.
// The customers module depends on leads for merge lookups, so main injects
// this through an adapter once both modules exist.
func (s *Service) SetConverter(converter Converter) {
	s.converter = converter
}

type CreateLeadInput struct {
	CustomerName      string
	ContactNumber     string
	Email             *string
	DeviceType        string
	DeviceModel       string
	IssueReported     string
	AssignedTo        *uuid.UUID
	QuotedAmountCents *int64
}

func (s *Service) Create(ctx context.Context, actor Actor, input CreateLeadInput) (repository.Lead, error) {
	if s.vocab != nil {
		if !s.vocab.HasDeviceType(input.DeviceType) {
			return repository.Lead{}, apperr.Validation("unknown device type: " + input.DeviceType)
		}
		if !s.vocab.AcceptsIssue(input.IssueReported) {
			return repository.Lead{}, apperr.Validation("unknown issue: " + input.IssueReported)
		}
	}

	params := repository.CreateLeadParams{
		CustomerName:      input.CustomerName,
		ContactNumber:     phone.NormalizeE164(input.ContactNumber, s.phoneRegion),
		Email:             input.Email,
		DeviceType:        input.DeviceType,
		DeviceModel:       input.DeviceModel,
		IssueReported:     input.IssueReported,
		AssignedTo:        input.AssignedTo,
		QuotedAmountCents: input.QuotedAmountCents,
	}

	lead, err := s.store.Create(ctx, params)
	if err != nil {
		return repository.Lead{}, apperr.Storage("leads.create", err)
	}

	s.audit.Record(ctx, activity.Entry{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     "lead_created",
		EntityType: "lead",
		EntityID:   lead.ID,
		After:      lead,
	})

	if s.scheduler != nil {
		runAt := lead.CreatedAt.Add(s.followUpTTL)
		if err := s.scheduler.ScheduleFollowUp(ctx, lead.ID, runAt); err != nil {
			s.log.Warn("follow-up scheduling failed", "lead_id", lead.ID, "error", err)
		}
	}

	s.bus.Publish(ctx, events.LeadChanged{
		BaseEvent: events.NewBaseEvent(),
		Op:        events.OpInsert,
		After:     snapshotOf(lead),
	})
	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        lead.ID,
		AssignedTo:    lead.AssignedTo,
		CustomerName:  lead.CustomerName,
		ContactNumber: lead.ContactNumber,
		DeviceType:    lead.DeviceType,
	})

	return lead, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return repository.Lead{}, apperr.Storage("leads.get", err)
	}
	return lead, nil
}

func (s *Service) List(ctx context.Context, params repository.ListParams) ([]repository.Lead, error) {
	if params.Status != "" && !domain.IsKnownStatus(params.Status) {
		return nil, apperr.Validation("unknown status: " + params.Status)
	}
	leads, err := s.store.List(ctx, params)
	if err != nil {
		return nil, apperr.Storage("leads.list", err)
	}
	return leads, nil
}

type UpdateLeadInput = repository.UpdateLeadParams

func (s *Service) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateLeadInput) (repository.Lead, error) {
	before, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return repository.Lead{}, apperr.Storage("leads.update", err)
	}

	if input.ContactNumber != nil {
		normalized := phone.NormalizeE164(*input.ContactNumber, s.phoneRegion)
		input.ContactNumber = &normalized
	}

	lead, err := s.store.Update(ctx, id, input)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return repository.Lead{}, apperr.Storage("leads.update", err)
	}

	s.audit.Record(ctx, activity.Entry{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     "lead_updated",
		EntityType: "lead",
		EntityID:   lead.ID,
		Before:     before,
		After:      lead,
	})

	s.bus.Publish(ctx, events.LeadChanged{
		BaseEvent: events.NewBaseEvent(),
		Op:        events.OpUpdate,
		Before:    snapshotOf(before),
		After:     snapshotOf(lead),
	})

	return lead, nil
}

func (s *Service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	lead, err := s.store.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	if err != nil {
		return apperr.Storage("leads.delete", err)
	}

	s.audit.Record(ctx, activity.Entry{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     "lead_deleted",
		EntityType: "lead",
		EntityID:   lead.ID,
		Before:     lead,
	})

	s.bus.Publish(ctx, events.LeadChanged{
		BaseEvent: events.NewBaseEvent(),
		Op:        events.OpDelete,
		Before:    snapshotOf(lead),
	})

	return nil
}

// CountActionable is the authoritative badge count for a viewer.
func (s *Service) CountActionable(ctx context.Context, viewerID uuid.UUID, privileged bool) (int, error) {
	count, err := s.store.CountActionable(ctx, viewerID, privileged)
	if err != nil {
		return 0, apperr.Storage("leads.count_actionable", err)
	}
	return count, nil
}

func snapshotOf(lead repository.Lead) *events.LeadSnapshot {
	return &events.LeadSnapshot{
		ID:         lead.ID,
		Status:     lead.Status,
		AssignedTo: lead.AssignedTo,
	}
}
