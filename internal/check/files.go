package check

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/verustcode/reportforge/internal/configfiles"
)

// TemplateType represents the type of template file
type TemplateType int

const (
	TemplateConfig TemplateType = iota
)

// FileConfig represents a configuration file to check
type FileConfig struct {
	Path        string
	Description string
	Template    TemplateType
}

// FileCheckResult represents the result of a file check
type FileCheckResult struct {
	Path        string
	Exists      bool
	Created     bool
	Description string
	Error       error
}

// RequiredFiles returns the configuration files the check looks for
func (c *Checker) RequiredFiles() []FileConfig {
	return []FileConfig{
		{
			Path:        c.configPath,
			Description: "Service configuration (server, database, logging, render)",
			Template:    TemplateConfig,
		},
	}
}

// checkFiles checks all required configuration files
func (c *Checker) checkFiles() error {
	for _, file := range c.RequiredFiles() {
		result := c.checkFile(file)
		c.report.AddFileResult(result)

		if result.Error != nil {
			return result.Error
		}
	}
	return nil
}

// checkFile checks a single file and prompts for creation if missing
func (c *Checker) checkFile(file FileConfig) FileCheckResult {
	result := FileCheckResult{
		Path:        file.Path,
		Description: file.Description,
	}

	if fileExists(file.Path) {
		result.Exists = true
		printFileStatus(file.Path, true, false)
		return result
	}

	printFileStatus(file.Path, false, false)

	confirm, err := c.confirm(file.Path)
	if err != nil {
		result.Error = fmt.Errorf("failed to get user confirmation: %w", err)
		return result
	}
	if !confirm {
		return result
	}

	content, err := getTemplateContent(file.Template)
	if err != nil {
		result.Error = fmt.Errorf("failed to get template: %w", err)
		return result
	}

	if err := ensureDir(file.Path); err != nil {
		result.Error = err
		return result
	}

	if err := os.WriteFile(file.Path, content, 0644); err != nil {
		result.Error = fmt.Errorf("failed to create file %s: %w", file.Path, err)
		return result
	}

	result.Exists = true
	result.Created = true
	printFileCreated(file.Path)

	return result
}

// getTemplateContent returns the embedded template content
func getTemplateContent(t TemplateType) ([]byte, error) {
	switch t {
	case TemplateConfig:
		return configfiles.GetConfigExample()
	default:
		return nil, fmt.Errorf("unknown template type: %d", t)
	}
}

// printFileStatus prints the status of a file check
func printFileStatus(path string, exists bool, created bool) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	if exists {
		green.Printf("  ✓ %s\n", path)
	} else if created {
		green.Printf("  ✓ %s (created)\n", path)
	} else {
		yellow.Printf("  ⚠ %s does not exist\n", path)
	}
}

// printFileCreated prints a message when a file is created
func printFileCreated(path string) {
	green := color.New(color.FgGreen)
	green.Printf("  ✓ Created %s\n", path)
}

// checkFlavorsDir checks and initializes the flavors directory
func (c *Checker) checkFlavorsDir() error {
	dir := c.FlavorsDir()

	if configfiles.FlavorFilesExist(dir) {
		printFileStatus(dir, true, false)
		c.report.AddFileResult(FileCheckResult{Path: dir, Exists: true, Description: "Flavor definitions"})
		return nil
	}

	printFileStatus(dir, false, false)
	result := FileCheckResult{Path: dir, Description: "Flavor definitions"}

	confirm, err := c.confirm(dir + " (built-in flavors)")
	if err != nil {
		result.Error = fmt.Errorf("failed to get user confirmation: %w", err)
		c.report.AddFileResult(result)
		return result.Error
	}
	if !confirm {
		c.report.AddFileResult(result)
		return nil
	}

	created, err := configfiles.InitFlavorFiles(dir)
	if err != nil {
		result.Error = fmt.Errorf("failed to initialize flavor files: %w", err)
		c.report.AddFileResult(result)
		return result.Error
	}

	result.Exists = true
	result.Created = true
	c.report.AddFileResult(result)

	green := color.New(color.FgGreen)
	green.Printf("  ✓ Created %d flavor file(s) in %s\n", created, dir)
	return nil
}
