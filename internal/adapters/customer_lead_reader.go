package adapters

import (
	"context"
	"errors"

	customersvc "repaircrm_backend/internal/customers/service"
	leadrepo "repaircrm_backend/internal/leads/repository"
	"repaircrm_backend/platform/apperr"

	"github.com/google/uuid"
)

// CustomerLeadReader adapts the leads repository to the customers module's
// LeadReader interface for conversion lookups.
type CustomerLeadReader struct {
	leads *leadrepo.Repository
}

func NewCustomerLeadReader(leads *leadrepo.Repository) *CustomerLeadReader {
	return &CustomerLeadReader{leads: leads}
}

func (a *CustomerLeadReader) GetLead(ctx context.Context, id uuid.UUID) (customersvc.LeadDetails, error) {
	lead, err := a.leads.GetByID(ctx, id)
	if errors.Is(err, leadrepo.ErrNotFound) {
		return customersvc.LeadDetails{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return customersvc.LeadDetails{}, apperr.Storage("leads.get", err)
	}

	return customersvc.LeadDetails{
		ID:                lead.ID,
		CustomerName:      lead.CustomerName,
		ContactNumber:     lead.ContactNumber,
		Email:             lead.Email,
		QuotedAmountCents: lead.QuotedAmountCents,
	}, nil
}

var _ customersvc.LeadReader = (*CustomerLeadReader)(nil)
