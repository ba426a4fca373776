package check

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verustcode/reportforge/internal/config"
)

const customFlavor = `id: incident
name: Incident
sections:
  - key: timeline
  - key: impact
    subsections:
      - key: customers
`

// TestValidateFlavorFiles tests flavor file validation and duplicate detection
func TestValidateFlavorFiles(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a_incident.yaml": customFlavor,
		"b_incident.yml":  customFlavor,
		"c_broken.yaml":   badFlavor,
		"notes.txt":       "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	c := NewChecker(filepath.Join(dir, "absent.yaml"), dir)
	results, ids := c.validateFlavorFiles(dir)

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if !results[0].Valid || results[0].SectionCount != 3 {
		t.Errorf("first result = %+v, want valid with 3 sections", results[0])
	}
	if len(results[1].Warnings) != 1 || !strings.Contains(results[1].Warnings[0], "a_incident.yaml") {
		t.Errorf("duplicate warning missing: %v", results[1].Warnings)
	}
	if results[2].Valid || results[2].Error == nil {
		t.Errorf("broken flavor should be invalid: %+v", results[2])
	}

	for _, id := range []string{"incident", "bug_report", "review_report", "review_report_short"} {
		if !ids[id] {
			t.Errorf("flavor %q missing from available IDs", id)
		}
	}
}

// TestValidateConfigFile tests config validation and the default flavor warning
func TestValidateConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "rf.yaml")
	content := "database:\n  enabled: false\nrender:\n  default_flavor: nope\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewChecker(configPath, filepath.Join(dir, "flavors"))
	results := c.validationResults()

	first := results[0]
	if first.Path != configPath || !first.Valid {
		t.Fatalf("config result = %+v, want valid", first)
	}
	if len(first.Warnings) != 2 {
		t.Errorf("warnings = %v, want archive and default flavor warnings", first.Warnings)
	}
}

// TestValidateChrome tests browser detection through configuration
func TestValidateChrome(t *testing.T) {
	c := NewChecker("", "")

	t.Setenv("CHROME_PATH", "")
	cfgPath := filepath.Join(t.TempDir(), "chrome")
	if err := os.WriteFile(cfgPath, []byte{}, 0755); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Render.ChromePath = cfgPath
	if result := c.validateChrome(cfg); len(result.Warnings) != 0 {
		t.Errorf("existing binary should not warn: %v", result.Warnings)
	}

	cfg.Render.ChromePath = filepath.Join(t.TempDir(), "missing-chrome")
	result := c.validateChrome(cfg)
	if !result.Valid || len(result.Warnings) != 1 {
		t.Errorf("missing binary should be a warning: %+v", result)
	}
}
