package check

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/fatih/color"

	"github.com/verustcode/reportforge/internal/config"
	"github.com/verustcode/reportforge/internal/flavor"
)

// chromeCandidates are the browser binaries PDF export can drive
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// ValidationResult represents the result of a config validation
type ValidationResult struct {
	Path         string
	Valid        bool
	SectionCount int // for flavor files
	Error        error
	Warnings     []string
}

// validateConfigs validates the config file, the flavor files and the PDF toolchain
func (c *Checker) validateConfigs() {
	for _, result := range c.validationResults() {
		c.report.AddValidationResult(result)
		printValidationResult(result)
	}
}

// validationResults runs every validation without printing
func (c *Checker) validationResults() []ValidationResult {
	var results []ValidationResult

	cfg := config.DefaultConfig()
	if fileExists(c.configPath) {
		result, loaded := c.validateConfigFile()
		results = append(results, result)
		if loaded != nil {
			cfg = loaded
		}
	}

	flavorResults, ids := c.validateFlavorFiles(c.FlavorsDir())
	results = append(results, flavorResults...)

	if cfg.Render.DefaultFlavor != "" && !ids[cfg.Render.DefaultFlavor] && len(results) > 0 && results[0].Path == c.configPath {
		results[0].Warnings = append(results[0].Warnings,
			fmt.Sprintf("default flavor %q is not defined", cfg.Render.DefaultFlavor))
	}

	results = append(results, c.validateChrome(cfg))
	return results
}

// loadConfig reads the config file without validating it
func (c *Checker) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// validateConfigFile parses and validates the configuration file
func (c *Checker) validateConfigFile() (ValidationResult, *config.Config) {
	result := ValidationResult{Path: c.configPath}

	cfg, err := c.loadConfig()
	if err != nil {
		result.Error = err
		return result, nil
	}
	if err := cfg.Validate(); err != nil {
		result.Error = err
		return result, nil
	}

	if !cfg.Database.Enabled {
		result.Warnings = append(result.Warnings, "render archive is disabled; save requests are ignored")
	}
	result.Valid = true
	return result, cfg
}

// validateFlavorFiles validates every flavor file in dir. It returns the
// results and the set of flavor IDs available, built-ins included.
func (c *Checker) validateFlavorFiles(dir string) ([]ValidationResult, map[string]bool) {
	ids := make(map[string]bool)
	if builtins, err := flavor.NewBuiltinRegistry(); err == nil {
		for _, id := range builtins.IDs() {
			ids[id] = true
		}
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, _ := filepath.Glob(filepath.Join(dir, pattern))
		files = append(files, matches...)
	}
	sort.Strings(files)

	seen := make(map[string]string)
	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		result := ValidationResult{Path: file}

		cfg, err := flavor.NewLoader().LoadFile(file)
		if err != nil {
			result.Error = err
			results = append(results, result)
			continue
		}

		result.Valid = true
		result.SectionCount = cfg.SectionCount()
		if prev, ok := seen[cfg.ID]; ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("flavor %q is also defined in %s; the later file wins", cfg.ID, filepath.Base(prev)))
		}
		seen[cfg.ID] = file
		ids[cfg.ID] = true
		results = append(results, result)
	}

	return results, ids
}

// validateChrome looks for a browser for PDF export. A missing browser is a warning.
func (c *Checker) validateChrome(cfg *config.Config) ValidationResult {
	result := ValidationResult{Path: "PDF export", Valid: true}

	for _, explicit := range []string{cfg.Render.ChromePath, os.Getenv("CHROME_PATH")} {
		if explicit == "" {
			continue
		}
		if _, err := os.Stat(explicit); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("configured Chrome binary not found: %s", explicit))
		}
		return result
	}

	if findChrome() == "" {
		result.Warnings = append(result.Warnings,
			"no Chrome or Chromium binary found in PATH; PDF export will fail")
	}
	return result
}

// findChrome returns the first Chrome-like binary found in PATH
func findChrome() string {
	for _, name := range chromeCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// printValidationResult prints one validation result
func printValidationResult(result ValidationResult) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	switch {
	case result.Valid && result.SectionCount > 0:
		green.Printf("  ✓ %s (%d sections)\n", result.Path, result.SectionCount)
	case result.Valid:
		green.Printf("  ✓ %s\n", result.Path)
	case result.Error != nil:
		red.Printf("  ✗ %s: %v\n", result.Path, result.Error)
	}

	for _, warning := range result.Warnings {
		yellow.Printf("    └─ %s\n", warning)
	}
}
