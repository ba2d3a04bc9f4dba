package domain

// SLAMarks records which SLA timestamps a lead already carries. Each is set at
// most once; once set it never changes.
type SLAMarks struct {
	FirstContactSet    bool
	RepairStartedSet   bool
	RepairCompletedSet bool
}

// StampSet names the SLA timestamps a transition must stamp, applied
// atomically with the status write.
type StampSet struct {
	FirstContact    bool
	RepairStarted   bool
	RepairCompleted bool
}

// TransitionStamps decides which SLA timestamps the (oldStatus, newStatus)
// transition stamps, given the marks already present. The rules mirror the
// repair workflow milestones:
//
//   - new → contacted marks the first customer contact
//   - entering in_repair (from anywhere) marks repair start
//   - leaving in_repair for won or completed marks repair completion
func TransitionStamps(oldStatus, newStatus string, marks SLAMarks) StampSet {
	var stamps StampSet

	if oldStatus == StatusNew && newStatus == StatusContacted && !marks.FirstContactSet {
		stamps.FirstContact = true
	}

	if newStatus == StatusInRepair && !marks.RepairStartedSet {
		stamps.RepairStarted = true
	}

	if oldStatus == StatusInRepair && (newStatus == StatusWon || newStatus == StatusCompleted) && !marks.RepairCompletedSet {
		stamps.RepairCompleted = true
	}

	return stamps
}
