// Package adapters contains thin anti-corruption adapters that let bounded
// contexts depend on their own interfaces instead of each other's packages.
package adapters

import (
	"context"

	customersvc "repaircrm_backend/internal/customers/service"
	leadsvc "repaircrm_backend/internal/leads/service"

	"github.com/google/uuid"
)

// LeadConverter adapts the customers service to the leads module's Converter
// interface, so the leads package never imports customers.
type LeadConverter struct {
	customers *customersvc.Service
}

func NewLeadConverter(customers *customersvc.Service) *LeadConverter {
	return &LeadConverter{customers: customers}
}

func (a *LeadConverter) ConvertWonLead(ctx context.Context, leadID uuid.UUID) error {
	return a.customers.ConvertWonLead(ctx, leadID)
}

var _ leadsvc.Converter = (*LeadConverter)(nil)
