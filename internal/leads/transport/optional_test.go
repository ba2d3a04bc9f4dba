package transport

import (
	"encoding/json"
	"testing"
)

func TestOptionalDistinguishesAbsentFromNull(t *testing.T) {
	type payload struct {
		AssignedTo Optional[string] `json:"assignedTo"`
		Amount     Optional[int64]  `json:"quotedAmountCents"`
	}

	cases := []struct {
		name         string
		body         string
		wantPresent  bool
		wantAssigned *string
	}{
		{"absent key", `{}`, false, nil},
		{"explicit null", `{"assignedTo": null}`, true, nil},
		{"value", `{"assignedTo": "c4a2"}`, true, ptr("c4a2")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p payload
			if err := json.Unmarshal([]byte(tc.body), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if p.AssignedTo.Present != tc.wantPresent {
				t.Errorf("Present = %v, want %v", p.AssignedTo.Present, tc.wantPresent)
			}
			switch {
			case tc.wantAssigned == nil && p.AssignedTo.Value != nil:
				t.Errorf("Value = %q, want nil", *p.AssignedTo.Value)
			case tc.wantAssigned != nil && (p.AssignedTo.Value == nil || *p.AssignedTo.Value != *tc.wantAssigned):
				t.Errorf("Value = %v, want %q", p.AssignedTo.Value, *tc.wantAssigned)
			}
		})
	}
}

func TestOptionalNumericValue(t *testing.T) {
	var o Optional[int64]
	if err := json.Unmarshal([]byte(`45000`), &o); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !o.Present || o.Value == nil || *o.Value != 45000 {
		t.Errorf("Optional = %+v, want present 45000", o)
	}
}

func ptr(s string) *string { return &s }
