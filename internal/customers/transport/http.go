// Package transport defines the HTTP response shapes for the customers module.
package transport

import (
	"time"

	"repaircrm_backend/internal/customers/repository"

	"github.com/google/uuid"
)

type CustomerResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	ContactNumber      string     `json:"contactNumber"`
	Email              *string    `json:"email,omitempty"`
	LeadID             *uuid.UUID `json:"leadId,omitempty"`
	LifetimeValueCents int64      `json:"lifetimeValueCents"`
	TotalRepairs       int        `json:"totalRepairs"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

func FromCustomer(c repository.Customer) CustomerResponse {
	return CustomerResponse{
		ID:                 c.ID,
		Name:               c.Name,
		ContactNumber:      c.ContactNumber,
		Email:              c.Email,
		LeadID:             c.LeadID,
		LifetimeValueCents: c.LifetimeValueCents,
		TotalRepairs:       c.TotalRepairs,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func FromCustomers(customers []repository.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, FromCustomer(c))
	}
	return out
}
