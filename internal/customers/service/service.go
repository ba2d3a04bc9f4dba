// Package service implements the customer conversion engine: materializing
// and merging customer records from won leads without ever producing two rows
// for one phone number.
package service

import (
	"context"
	"errors"

	"repaircrm_backend/internal/activity"
	"repaircrm_backend/internal/customers/repository"
	"repaircrm_backend/internal/events"
	"repaircrm_backend/platform/apperr"
	"repaircrm_backend/platform/logger"

	"github.com/google/uuid"
)

// LeadDetails is the lead state the conversion engine needs. Defined here so
// the customers package does not import the leads package; main wires an
// adapter over the leads repository.
type LeadDetails struct {
	ID                uuid.UUID
	CustomerName      string
	ContactNumber     string
	Email             *string
	QuotedAmountCents *int64
}

// LeadReader loads the lead being converted.
type LeadReader interface {
	GetLead(ctx context.Context, id uuid.UUID) (LeadDetails, error)
}

// CustomerStore is the persistence surface; satisfied by repository.Repository.
type CustomerStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Customer, error)
	GetByLeadID(ctx context.Context, leadID uuid.UUID) (repository.Customer, error)
	GetByPhone(ctx context.Context, phone string) (repository.Customer, error)
	Create(ctx context.Context, params repository.CreateCustomerParams) (repository.Customer, error)
	IncrementConversion(ctx context.Context, id uuid.UUID, amountCents int64) (repository.Customer, error)
	LinkLead(ctx context.Context, id, leadID uuid.UUID) (repository.Customer, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Customer, error)
}

type Service struct {
	store CustomerStore
	leads LeadReader
	audit activity.Recorder
	bus   events.Bus
	log   *logger.Logger
}

func New(store CustomerStore, audit activity.Recorder, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, audit: audit, bus: bus, log: log}
}

// SetLeadReader wires the lead lookup dependency (breaks the
// leads ↔ customers cycle).
func (s *Service) SetLeadReader(leads LeadReader) {
	s.leads = leads
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Customer, error) {
	c, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Customer{}, apperr.NotFound("customer not found")
	}
	if err != nil {
		return repository.Customer{}, apperr.Storage("customers.get", err)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, params repository.ListParams) ([]repository.Customer, error) {
	customers, err := s.store.List(ctx, params)
	if err != nil {
		return nil, apperr.Storage("customers.list", err)
	}
	return customers, nil
}

// ConvertWonLead reconciles a won lead into the customer base. Safe under
// at-least-once delivery: a repeat call finds the row linked on the first call
// and takes the increment path, so no duplicate row can appear. Each call does
// apply its increments; a retried won transition is a new repair, not a dedupe
// candidate.
func (s *Service) ConvertWonLead(ctx context.Context, leadID uuid.UUID) error {
	lead, err := s.leads.GetLead(ctx, leadID)
	if err != nil {
		return err
	}
	_, err = s.convert(ctx, lead, false)
	return err
}

// ConvertLeadToCustomer is the manual staff entry point. Unlike the
// reconciliation path it fails with a conflict when a customer is already
// linked to this exact lead: a repeated one-shot user action must surface the
// duplicate, not silently re-increment.
func (s *Service) ConvertLeadToCustomer(ctx context.Context, leadID uuid.UUID) (repository.Customer, error) {
	lead, err := s.leads.GetLead(ctx, leadID)
	if err != nil {
		return repository.Customer{}, err
	}

	if existing, err := s.store.GetByLeadID(ctx, leadID); err == nil {
		return repository.Customer{}, apperr.Conflict("lead already converted to customer " + existing.ID.String())
	} else if !errors.Is(err, repository.ErrNotFound) {
		return repository.Customer{}, apperr.Storage("customers.convert_manual", err)
	}

	return s.convert(ctx, lead, true)
}

// convert runs the find-or-create merge. skipLeadLookup is true on the manual
// path, which has already established no customer is linked to this lead.
func (s *Service) convert(ctx context.Context, lead LeadDetails, skipLeadLookup bool) (repository.Customer, error) {
	amount := int64(0)
	if lead.QuotedAmountCents != nil {
		amount = *lead.QuotedAmountCents
	}

	if !skipLeadLookup {
		existing, err := s.store.GetByLeadID(ctx, lead.ID)
		if err == nil {
			return s.applyIncrement(ctx, existing, lead, amount)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return repository.Customer{}, apperr.Storage("customers.convert", err)
		}
	}

	byPhone, err := s.store.GetByPhone(ctx, lead.ContactNumber)
	if err == nil {
		linked, err := s.store.LinkLead(ctx, byPhone.ID, lead.ID)
		if err != nil {
			return repository.Customer{}, apperr.Storage("customers.convert", err)
		}
		return s.applyIncrement(ctx, linked, lead, amount)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return repository.Customer{}, apperr.Storage("customers.convert", err)
	}

	created, err := s.store.Create(ctx, repository.CreateCustomerParams{
		Name:               lead.CustomerName,
		ContactNumber:      lead.ContactNumber,
		Email:              lead.Email,
		LeadID:             &lead.ID,
		LifetimeValueCents: amount,
		TotalRepairs:       1,
	})
	if repository.IsUniqueViolation(err) {
		// Lost the first-conversion race: another call created the row for
		// this phone number between our lookup and insert. The unique index
		// is the arbiter; fall back to the merge path.
		byPhone, err := s.store.GetByPhone(ctx, lead.ContactNumber)
		if err != nil {
			return repository.Customer{}, apperr.Storage("customers.convert", err)
		}
		linked, err := s.store.LinkLead(ctx, byPhone.ID, lead.ID)
		if err != nil {
			return repository.Customer{}, apperr.Storage("customers.convert", err)
		}
		return s.applyIncrement(ctx, linked, lead, amount)
	}
	if err != nil {
		return repository.Customer{}, apperr.Storage("customers.convert", err)
	}

	s.audit.Record(ctx, activity.Entry{
		ActorName:  "system",
		Action:     "customer_created",
		EntityType: "customer",
		EntityID:   created.ID,
		After:      created,
	})
	s.publishConverted(ctx, lead, created, amount, true)
	return created, nil
}

func (s *Service) applyIncrement(ctx context.Context, customer repository.Customer, lead LeadDetails, amount int64) (repository.Customer, error) {
	updated, err := s.store.IncrementConversion(ctx, customer.ID, amount)
	if err != nil {
		return repository.Customer{}, apperr.Storage("customers.convert", err)
	}

	s.audit.Record(ctx, activity.Entry{
		ActorName:  "system",
		Action:     "customer_updated",
		EntityType: "customer",
		EntityID:   updated.ID,
		Before:     customer,
		After:      updated,
	})
	s.publishConverted(ctx, lead, updated, amount, false)
	return updated, nil
}

func (s *Service) publishConverted(ctx context.Context, lead LeadDetails, customer repository.Customer, amount int64, created bool) {
	s.bus.Publish(ctx, events.LeadConverted{
		BaseEvent:       events.NewBaseEvent(),
		LeadID:          lead.ID,
		CustomerID:      customer.ID,
		AmountCents:     amount,
		CustomerCreated: created,
	})
}
