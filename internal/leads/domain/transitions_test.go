package domain

import "testing"

func TestIsKnownStatus(t *testing.T) {
	for _, status := range []string{
		StatusNew, StatusContacted, StatusInterested, StatusQuoted, StatusWon,
		StatusLost, StatusInRepair, StatusCompleted, StatusDelivered,
	} {
		if !IsKnownStatus(status) {
			t.Errorf("IsKnownStatus(%q) = false, want true", status)
		}
	}

	for _, status := range []string{"", "unknown", "NEW", "in-repair"} {
		if IsKnownStatus(status) {
			t.Errorf("IsKnownStatus(%q) = true, want false", status)
		}
	}
}

func TestIsConverting(t *testing.T) {
	if !IsConverting(StatusWon) {
		t.Error("IsConverting(won) = false, want true")
	}
	for _, status := range []string{StatusCompleted, StatusDelivered, StatusLost, StatusNew} {
		if IsConverting(status) {
			t.Errorf("IsConverting(%q) = true, want false", status)
		}
	}
}

func TestIsActionable(t *testing.T) {
	if !IsActionable(StatusNew) {
		t.Error("IsActionable(new) = false, want true")
	}
	if !IsActionable("") {
		t.Error("IsActionable(\"\") = false, want true")
	}
	for _, status := range []string{StatusContacted, StatusWon, StatusDelivered} {
		if IsActionable(status) {
			t.Errorf("IsActionable(%q) = true, want false", status)
		}
	}
}

func TestTransitionStamps(t *testing.T) {
	cases := []struct {
		name      string
		oldStatus string
		newStatus string
		marks     SLAMarks
		want      StampSet
	}{
		{
			name:      "new to contacted stamps first contact",
			oldStatus: StatusNew, newStatus: StatusContacted,
			want: StampSet{FirstContact: true},
		},
		{
			name:      "first contact is set at most once",
			oldStatus: StatusNew, newStatus: StatusContacted,
			marks: SLAMarks{FirstContactSet: true},
			want:  StampSet{},
		},
		{
			name:      "contacted to contacted does not stamp",
			oldStatus: StatusContacted, newStatus: StatusContacted,
			want: StampSet{},
		},
		{
			name:      "entering in_repair stamps repair start",
			oldStatus: StatusQuoted, newStatus: StatusInRepair,
			want: StampSet{RepairStarted: true},
		},
		{
			name:      "entering in_repair from new stamps repair start only",
			oldStatus: StatusNew, newStatus: StatusInRepair,
			want: StampSet{RepairStarted: true},
		},
		{
			name:      "re-entering in_repair does not restamp",
			oldStatus: StatusWon, newStatus: StatusInRepair,
			marks: SLAMarks{RepairStartedSet: true},
			want:  StampSet{},
		},
		{
			name:      "in_repair to won stamps completion",
			oldStatus: StatusInRepair, newStatus: StatusWon,
			marks: SLAMarks{RepairStartedSet: true},
			want:  StampSet{RepairCompleted: true},
		},
		{
			name:      "in_repair to completed stamps completion",
			oldStatus: StatusInRepair, newStatus: StatusCompleted,
			marks: SLAMarks{RepairStartedSet: true},
			want:  StampSet{RepairCompleted: true},
		},
		{
			name:      "completion is set at most once",
			oldStatus: StatusInRepair, newStatus: StatusWon,
			marks: SLAMarks{RepairStartedSet: true, RepairCompletedSet: true},
			want:  StampSet{},
		},
		{
			name:      "won from quoted skips completion stamp",
			oldStatus: StatusQuoted, newStatus: StatusWon,
			want: StampSet{},
		},
		{
			name:      "lost never stamps",
			oldStatus: StatusNew, newStatus: StatusLost,
			want: StampSet{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TransitionStamps(tc.oldStatus, tc.newStatus, tc.marks)
			if got != tc.want {
				t.Errorf("TransitionStamps(%q, %q, %+v) = %+v, want %+v",
					tc.oldStatus, tc.newStatus, tc.marks, got, tc.want)
			}
		})
	}
}

// TestTimestampMonotonicity walks a lead through repeated transitions and
// verifies each SLA timestamp is earned at most once over any sequence.
func TestTimestampMonotonicity(t *testing.T) {
	sequence := []string{
		StatusContacted, StatusInRepair, StatusWon,
		StatusInRepair, StatusWon, StatusContacted, StatusInRepair,
	}

	var marks SLAMarks
	status := StatusNew
	stampCounts := map[string]int{}

	for _, next := range sequence {
		stamps := TransitionStamps(status, next, marks)
		if stamps.FirstContact {
			stampCounts["first_contact"]++
			marks.FirstContactSet = true
		}
		if stamps.RepairStarted {
			stampCounts["repair_started"]++
			marks.RepairStartedSet = true
		}
		if stamps.RepairCompleted {
			stampCounts["repair_completed"]++
			marks.RepairCompletedSet = true
		}
		status = next
	}

	for field, count := range stampCounts {
		if count > 1 {
			t.Errorf("%s stamped %d times, want at most 1", field, count)
		}
	}
	if stampCounts["first_contact"] != 1 || stampCounts["repair_started"] != 1 || stampCounts["repair_completed"] != 1 {
		t.Errorf("expected each timestamp stamped exactly once, got %v", stampCounts)
	}
}
