// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"repaircrm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// ChangeOp identifies the kind of row mutation carried by a LeadChanged event.
type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// LeadSnapshot is the minimal lead state carried on the change stream. It is
// what the live badge predicate evaluates, so it stays small on purpose.
type LeadSnapshot struct {
	ID         uuid.UUID  `json:"id"`
	Status     string     `json:"status"`
	AssignedTo *uuid.UUID `json:"assignedTo,omitempty"`
}

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadChanged is published for every lead row mutation. Inserts carry only
// After, deletes only Before, updates both. Consumers must not assume ordered
// or exactly-once delivery.
type LeadChanged struct {
	BaseEvent
	Op     ChangeOp      `json:"op"`
	Before *LeadSnapshot `json:"before,omitempty"`
	After  *LeadSnapshot `json:"after,omitempty"`
}

func (e LeadChanged) EventName() string { return "leads.changed" }

// LeadCreated is published when a new repair inquiry is registered.
type LeadCreated struct {
	BaseEvent
	LeadID        uuid.UUID  `json:"leadId"`
	AssignedTo    *uuid.UUID `json:"assignedTo,omitempty"`
	CustomerName  string     `json:"customerName"`
	ContactNumber string     `json:"contactNumber"`
	DeviceType    string     `json:"deviceType"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published when a staff member moves a lead through the
// workflow. Converted is true when the new status closed the deal.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	Converted bool      `json:"converted"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status.changed" }

// LeadFollowUpDue is published by the scheduler worker when a lead has gone
// uncontacted past the follow-up window.
type LeadFollowUpDue struct {
	BaseEvent
	LeadID        uuid.UUID  `json:"leadId"`
	AssignedTo    *uuid.UUID `json:"assignedTo,omitempty"`
	CustomerName  string     `json:"customerName"`
	ContactNumber string     `json:"contactNumber"`
	DeviceType    string     `json:"deviceType"`
}

func (e LeadFollowUpDue) EventName() string { return "leads.followup.due" }

// =============================================================================
// Customers Domain Events
// =============================================================================

// LeadConverted is published when the conversion engine materializes or
// updates a customer from a won lead.
type LeadConverted struct {
	BaseEvent
	LeadID          uuid.UUID `json:"leadId"`
	CustomerID      uuid.UUID `json:"customerId"`
	AmountCents     int64     `json:"amountCents"`
	CustomerCreated bool      `json:"customerCreated"`
}

func (e LeadConverted) EventName() string { return "customers.lead.converted" }
