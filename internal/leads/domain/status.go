// Package domain provides core business rules for the leads bounded context.
package domain

const (
	StatusNew        = "new"
	StatusContacted  = "contacted"
	StatusInterested = "interested"
	StatusQuoted     = "quoted"
	StatusWon        = "won"
	StatusLost       = "lost"
	StatusInRepair   = "in_repair"
	StatusCompleted  = "completed"
	StatusDelivered  = "delivered"
)

var knownStatuses = map[string]struct{}{
	StatusNew:        {},
	StatusContacted:  {},
	StatusInterested: {},
	StatusQuoted:     {},
	StatusWon:        {},
	StatusLost:       {},
	StatusInRepair:   {},
	StatusCompleted:  {},
	StatusDelivered:  {},
}

// IsKnownStatus reports whether status is one of the nine workflow values.
//
// There is deliberately no transition graph: any known status may follow any
// other. Support regularly reverts won back to in_repair on warranty reopens,
// so restricting transitions would break real workflows. Only the SLA
// timestamp stamping in transitions.go is conditional on the (old, new) pair.
func IsKnownStatus(status string) bool {
	_, ok := knownStatuses[status]
	return ok
}

// IsConverting reports whether moving to newStatus closes the deal and must
// trigger customer conversion.
func IsConverting(newStatus string) bool {
	return newStatus == StatusWon
}

// IsActionable reports whether a lead with this status still needs first
// attention. An empty status is treated as new: rows created before the
// status column had a default carry it unset.
func IsActionable(status string) bool {
	return status == StatusNew || status == ""
}
