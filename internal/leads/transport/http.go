// Package transport defines the HTTP request and response shapes for the
// leads module, keeping JSON concerns out of the service layer.
package transport

import (
	"time"

	"repaircrm_backend/internal/leads/repository"
	"repaircrm_backend/internal/leads/service"

	"github.com/google/uuid"
)

type CreateLeadRequest struct {
	CustomerName      string  `json:"customerName" validate:"required,min=2,max=120"`
	ContactNumber     string  `json:"contactNumber" validate:"required,min=5,max=20"`
	Email             *string `json:"email" validate:"omitempty,email"`
	DeviceType        string  `json:"deviceType" validate:"required"`
	DeviceModel       string  `json:"deviceModel" validate:"required,max=120"`
	IssueReported     string  `json:"issueReported" validate:"required,max=2000"`
	AssignedTo        *string `json:"assignedTo" validate:"omitempty,uuid"`
	QuotedAmountCents *int64  `json:"quotedAmountCents" validate:"omitempty,min=0"`
}

func (r CreateLeadRequest) ToInput() (service.CreateLeadInput, error) {
	assignedTo, err := parseOptionalUUID(r.AssignedTo)
	if err != nil {
		return service.CreateLeadInput{}, err
	}
	return service.CreateLeadInput{
		CustomerName:      r.CustomerName,
		ContactNumber:     r.ContactNumber,
		Email:             r.Email,
		DeviceType:        r.DeviceType,
		DeviceModel:       r.DeviceModel,
		IssueReported:     r.IssueReported,
		AssignedTo:        assignedTo,
		QuotedAmountCents: r.QuotedAmountCents,
	}, nil
}

// UpdateLeadRequest is a partial update: absent fields stay untouched, and
// nullable fields (email, assignedTo, quotedAmountCents) can be cleared by
// sending an explicit null once the field key is present.
type UpdateLeadRequest struct {
	CustomerName      *string          `json:"customerName" validate:"omitempty,min=2,max=120"`
	ContactNumber     *string          `json:"contactNumber" validate:"omitempty,min=5,max=20"`
	Email             Optional[string] `json:"email"`
	DeviceModel       *string          `json:"deviceModel" validate:"omitempty,max=120"`
	IssueReported     *string          `json:"issueReported" validate:"omitempty,max=2000"`
	AssignedTo        Optional[string] `json:"assignedTo"`
	QuotedAmountCents Optional[int64]  `json:"quotedAmountCents"`
}

func (r UpdateLeadRequest) ToParams() (repository.UpdateLeadParams, error) {
	params := repository.UpdateLeadParams{
		CustomerName:  r.CustomerName,
		ContactNumber: r.ContactNumber,
		DeviceModel:   r.DeviceModel,
		IssueReported: r.IssueReported,
	}
	if r.Email.Present {
		params.EmailSet = true
		params.Email = r.Email.Value
	}
	if r.AssignedTo.Present {
		params.AssignedToSet = true
		id, err := parseOptionalUUID(r.AssignedTo.Value)
		if err != nil {
			return repository.UpdateLeadParams{}, err
		}
		params.AssignedTo = id
	}
	if r.QuotedAmountCents.Present {
		params.QuotedAmountCentsSet = true
		params.QuotedAmountCents = r.QuotedAmountCents.Value
	}
	return params, nil
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type LeadResponse struct {
	ID                uuid.UUID  `json:"id"`
	CustomerName      string     `json:"customerName"`
	ContactNumber     string     `json:"contactNumber"`
	Email             *string    `json:"email,omitempty"`
	DeviceType        string     `json:"deviceType"`
	DeviceModel       string     `json:"deviceModel"`
	IssueReported     string     `json:"issueReported"`
	Status            string     `json:"status"`
	AssignedTo        *uuid.UUID `json:"assignedTo,omitempty"`
	QuotedAmountCents *int64     `json:"quotedAmountCents,omitempty"`
	FirstContactAt    *time.Time `json:"firstContactAt,omitempty"`
	RepairStartedAt   *time.Time `json:"repairStartedAt,omitempty"`
	RepairCompletedAt *time.Time `json:"repairCompletedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func FromLead(lead repository.Lead) LeadResponse {
	return LeadResponse{
		ID:                lead.ID,
		CustomerName:      lead.CustomerName,
		ContactNumber:     lead.ContactNumber,
		Email:             lead.Email,
		DeviceType:        lead.DeviceType,
		DeviceModel:       lead.DeviceModel,
		IssueReported:     lead.IssueReported,
		Status:            lead.Status,
		AssignedTo:        lead.AssignedTo,
		QuotedAmountCents: lead.QuotedAmountCents,
		FirstContactAt:    lead.FirstContactAt,
		RepairStartedAt:   lead.RepairStartedAt,
		RepairCompletedAt: lead.RepairCompletedAt,
		CreatedAt:         lead.CreatedAt,
		UpdatedAt:         lead.UpdatedAt,
	}
}

func FromLeads(leads []repository.Lead) []LeadResponse {
	out := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, FromLead(lead))
	}
	return out
}

type StatusChangeResponse struct {
	Lead      LeadResponse `json:"lead"`
	OldStatus string       `json:"oldStatus"`
	Converted bool         `json:"converted"`
}

func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
