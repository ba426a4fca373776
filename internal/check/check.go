// Package check provides interactive environment checking and initialization.
// It helps users set up their local ReportForge configuration and flavor files.
package check

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/verustcode/reportforge/consts"
)

// CheckResult represents the result of a non-interactive environment check
type CheckResult struct {
	// Success indicates whether all required checks passed
	Success bool
	// Errors contains critical errors that prevent server startup
	Errors []string
	// Warnings contains non-critical issues that don't block startup
	Warnings []string
	// Suggestions contains helpful tips for fixing issues
	Suggestions []string
}

// ConfirmFunc asks the user whether something should be created
type ConfirmFunc func(prompt string) (bool, error)

// Checker handles environment checking and initialization
type Checker struct {
	configPath string
	// flavorsDir overrides the flavors directory named by the config file
	flavorsDir string
	confirm    ConfirmFunc
	report     *Report
}

// NewChecker creates a new environment checker for the config file at configPath.
// An empty flavorsDir uses the directory named by the config file.
func NewChecker(configPath, flavorsDir string) *Checker {
	if configPath == "" {
		configPath = consts.DefaultConfigPath
	}
	return &Checker{
		configPath: configPath,
		flavorsDir: flavorsDir,
		confirm:    confirmCreate,
		report:     NewReport(),
	}
}

// AssumeYes makes the checker create missing files without prompting
func (c *Checker) AssumeYes() *Checker {
	c.confirm = func(string) (bool, error) { return true, nil }
	return c
}

// WithConfirm replaces the interactive confirmation
func (c *Checker) WithConfirm(fn ConfirmFunc) *Checker {
	c.confirm = fn
	return c
}

// Report returns the collected results
func (c *Checker) Report() *Report {
	return c.report
}

// Run executes the full environment check
func (c *Checker) Run() error {
	c.printHeader()

	// Step 1: Check and create the configuration file
	fmt.Println()
	printSection("Checking configuration file")
	if err := c.checkFiles(); err != nil {
		return fmt.Errorf("file check failed: %w", err)
	}

	// Step 2: Check and initialize the flavors directory
	fmt.Println()
	printSection("Checking flavors directory")
	if err := c.checkFlavorsDir(); err != nil {
		return fmt.Errorf("flavors check failed: %w", err)
	}

	// Step 3: Validate configuration and flavor files
	fmt.Println()
	printSection("Validating configuration")
	c.validateConfigs()

	fmt.Println()
	c.report.Print()

	if c.report.HasErrors() {
		return fmt.Errorf("environment check found errors")
	}
	return nil
}

// printHeader prints the welcome header
func (c *Checker) printHeader() {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	fmt.Println(titleStyle.Render("🔍 " + consts.ProjectName + " Environment Check"))
}

// printSection prints a section header
func printSection(title string) {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15"))
	fmt.Println(style.Render(title + "..."))
}

// ConfigPath returns the path of the configuration file
func (c *Checker) ConfigPath() string {
	return c.configPath
}

// FlavorsDir returns the flavors directory: the override, else the one named
// by a readable config file, else the default
func (c *Checker) FlavorsDir() string {
	if c.flavorsDir != "" {
		return c.flavorsDir
	}
	if cfg, err := c.loadConfig(); err == nil && cfg.Render.FlavorsDir != "" {
		return cfg.Render.FlavorsDir
	}
	return consts.DefaultFlavorsDir
}

// confirmCreate asks user to confirm file creation
func confirmCreate(prompt string) (bool, error) {
	var confirm bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Create %s from template?", prompt)).
		Affirmative("Yes").
		Negative("No").
		Value(&confirm).
		WithTheme(huh.ThemeCharm()).
		Run()
	if err != nil {
		return false, err
	}
	return confirm, nil
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ensureDir creates the parent directory of path if it doesn't exist
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// RunNonInteractive performs a non-interactive environment check.
// Unlike Run, it never prompts and never creates files.
func (c *Checker) RunNonInteractive() *CheckResult {
	result := &CheckResult{
		Success:     true,
		Errors:      make([]string, 0),
		Warnings:    make([]string, 0),
		Suggestions: make([]string, 0),
	}

	if !fileExists(c.configPath) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Configuration file not found, using defaults: %s", c.configPath))
		result.Suggestions = append(result.Suggestions,
			"Run 'reportforge check' to create the configuration file from the template")
	}

	for _, v := range c.validationResults() {
		if !v.Valid {
			result.Success = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", v.Path, v.Error))
		}
		for _, w := range v.Warnings {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", v.Path, w))
		}
	}

	if !result.Success {
		result.Suggestions = append(result.Suggestions,
			"Fix the files listed above, then run 'reportforge check' again")
	}
	return result
}

// PrintCheckResult prints the check result in a formatted way
func PrintCheckResult(result *CheckResult) {
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	if len(result.Errors) > 0 {
		fmt.Println()
		red.Println("[ERROR] Environment check failed")
		fmt.Println()
		for _, err := range result.Errors {
			red.Printf("  ✗ %s\n", err)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Println()
		yellow.Println("[WARNING] Configuration warnings:")
		fmt.Println()
		for _, warn := range result.Warnings {
			yellow.Printf("  ⚠ %s\n", warn)
		}
	}

	if len(result.Suggestions) > 0 {
		cyan.Println("\nTo fix these issues:")
		for _, suggestion := range result.Suggestions {
			fmt.Printf("  → %s\n", suggestion)
		}
	}

	fmt.Println()
}
