// Package domain holds the pure pipeline projection rules for opportunities.
package domain

const (
	StageQualified  = "qualified"
	StagePickup     = "pickup"
	StageClosedWon  = "closed_won"
	StageClosedLost = "closed_lost"
)

// stageByStatus is the fixed status→stage table. Statuses outside it are not
// opportunities at all.
var stageByStatus = map[string]string{
	"interested": StageQualified,
	"quoted":     StagePickup,
	"won":        StageClosedWon,
	"lost":       StageClosedLost,
}

// StageFor maps a lead status to its pipeline stage. The second return is
// false for statuses that are excluded from the opportunity set.
func StageFor(status string) (string, bool) {
	stage, ok := stageByStatus[status]
	return stage, ok
}

// OpportunityStatuses returns the statuses that project into the pipeline, for
// use in store queries.
func OpportunityStatuses() []string {
	return []string{"interested", "quoted", "won", "lost"}
}
