// Package vocabulary loads the shop's intake vocabulary: the device types
// accepted at lead intake and the common issue labels offered to staff.
package vocabulary

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type file struct {
	DeviceTypes []string `yaml:"deviceTypes"`
	Issues      []string `yaml:"issues"`
}

type Vocabulary struct {
	deviceTypes []string
	issues      []string
	deviceSet   map[string]struct{}
	issueSet    map[string]struct{}
}

// Load reads the vocabulary from a YAML file. A vocabulary without device
// types is rejected: it would make every intake fail validation.
func Load(path string) (*Vocabulary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	if len(f.DeviceTypes) == 0 {
		return nil, fmt.Errorf("vocabulary %s defines no device types", path)
	}

	v := &Vocabulary{
		deviceTypes: f.DeviceTypes,
		issues:      f.Issues,
		deviceSet:   make(map[string]struct{}, len(f.DeviceTypes)),
		issueSet:    make(map[string]struct{}, len(f.Issues)),
	}
	for _, dt := range f.DeviceTypes {
		v.deviceSet[normalize(dt)] = struct{}{}
	}
	for _, issue := range f.Issues {
		v.issueSet[normalize(issue)] = struct{}{}
	}
	return v, nil
}

// HasDeviceType reports whether deviceType is accepted at intake.
// Matching is case-insensitive.
func (v *Vocabulary) HasDeviceType(deviceType string) bool {
	_, ok := v.deviceSet[normalize(deviceType)]
	return ok
}

// AcceptsIssue reports whether issue passes intake validation. A vocabulary
// with no configured issues takes free text; otherwise the issue must be one
// of the configured labels. Matching is case-insensitive.
func (v *Vocabulary) AcceptsIssue(issue string) bool {
	if len(v.issueSet) == 0 {
		return true
	}
	_, ok := v.issueSet[normalize(issue)]
	return ok
}

// DeviceTypes returns the configured device types in file order.
func (v *Vocabulary) DeviceTypes() []string {
	return v.deviceTypes
}

// Issues returns the configured common issue labels in file order.
func (v *Vocabulary) Issues() []string {
	return v.issues
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
