package vocabulary

import (
	"os"
	"path/filepath"
	"testing"
)

func writeVocabulary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocabulary.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write vocabulary file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeVocabulary(t, `
deviceTypes:
  - smartphone
  - laptop
issues:
  - cracked screen
  - battery drain
`)

	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := v.DeviceTypes(); len(got) != 2 || got[0] != "smartphone" {
		t.Errorf("DeviceTypes = %v, want file order preserved", got)
	}
	if got := v.Issues(); len(got) != 2 || got[1] != "battery drain" {
		t.Errorf("Issues = %v, want file order preserved", got)
	}
}

func TestHasDeviceTypeIsCaseInsensitive(t *testing.T) {
	path := writeVocabulary(t, "deviceTypes: [smartphone, laptop]\n")
	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, input := range []string{"smartphone", "Smartphone", "  LAPTOP "} {
		if !v.HasDeviceType(input) {
			t.Errorf("HasDeviceType(%q) = false, want true", input)
		}
	}
	if v.HasDeviceType("tablet") {
		t.Error("HasDeviceType(tablet) = true, want false")
	}
}

func TestAcceptsIssue(t *testing.T) {
	path := writeVocabulary(t, "deviceTypes: [smartphone]\nissues: [cracked screen]\n")
	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !v.AcceptsIssue("Cracked Screen") {
		t.Error("AcceptsIssue should match case-insensitively")
	}
	if v.AcceptsIssue("water damage") {
		t.Error("AcceptsIssue(water damage) = true, want false with a configured list")
	}
}

// Shops that configure no issue list take free text.
func TestAcceptsIssueFreeTextWithoutList(t *testing.T) {
	path := writeVocabulary(t, "deviceTypes: [smartphone]\n")
	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !v.AcceptsIssue("screen flickers after a drop") {
		t.Error("AcceptsIssue should accept free text when no issues are configured")
	}
}

func TestLoadRejectsEmptyDeviceTypes(t *testing.T) {
	path := writeVocabulary(t, "issues: [cracked screen]\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for a vocabulary without device types")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeVocabulary(t, "deviceTypes: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
