// Package badge keeps the per-viewer "leads needing attention" counter live
// over the lead change stream, without re-querying the store on every event.
package badge

import (
	"repaircrm_backend/internal/events"
	"repaircrm_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Predicate decides whether a lead counts toward a viewer's badge. Privileged
// viewers (admin, manager) see every actionable lead; restricted viewers only
// those assigned to them.
type Predicate struct {
	ViewerID   uuid.UUID
	Privileged bool
}

// Matches evaluates the predicate against a lead snapshot. A nil snapshot
// never matches, which makes insert (after only) and delete (before only)
// events safe to feed through unconditionally.
func (p Predicate) Matches(lead *events.LeadSnapshot) bool {
	if lead == nil {
		return false
	}
	if !domain.IsActionable(lead.Status) {
		return false
	}
	if p.Privileged {
		return true
	}
	return lead.AssignedTo != nil && *lead.AssignedTo == p.ViewerID
}

// privilegedRoles match every actionable lead regardless of assignment.
var privilegedRoles = map[string]struct{}{
	"admin":   {},
	"manager": {},
}

// PredicateFor builds the predicate for a viewer from their role list.
func PredicateFor(viewerID uuid.UUID, roles []string) Predicate {
	p := Predicate{ViewerID: viewerID}
	for _, role := range roles {
		if _, ok := privilegedRoles[role]; ok {
			p.Privileged = true
			break
		}
	}
	return p
}
