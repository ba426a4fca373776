package check

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
)

// Report accumulates file and validation results over one check run
type Report struct {
	FileResults       []FileCheckResult
	ValidationResults []ValidationResult
}

// NewReport creates an empty report
func NewReport() *Report {
	return &Report{}
}

func (r *Report) AddFileResult(result FileCheckResult) {
	r.FileResults = append(r.FileResults, result)
}

func (r *Report) AddValidationResult(result ValidationResult) {
	r.ValidationResults = append(r.ValidationResults, result)
}

// HasErrors reports whether any file or validation failed
func (r *Report) HasErrors() bool {
	return r.Summary().HasErrors
}

// ReportSummary counts the outcomes of a check run
type ReportSummary struct {
	TotalFiles   int
	FilesExist   int
	FilesCreated int
	FilesMissing int

	TotalValidations int
	ValidationsValid int
	ValidationErrors int
	// Sections is the number of flavor sections found in valid files
	Sections int

	HasErrors   bool
	HasWarnings bool
}

// Summary tallies the collected results
func (r *Report) Summary() ReportSummary {
	s := ReportSummary{
		TotalFiles:       len(r.FileResults),
		TotalValidations: len(r.ValidationResults),
	}

	for _, f := range r.FileResults {
		switch {
		case f.Created:
			s.FilesCreated++
			s.FilesExist++
		case f.Exists:
			s.FilesExist++
		default:
			s.FilesMissing++
		}
		s.HasErrors = s.HasErrors || f.Error != nil
	}

	for _, v := range r.ValidationResults {
		if v.Valid {
			s.ValidationsValid++
			s.Sections += v.SectionCount
		} else {
			s.ValidationErrors++
			s.HasErrors = true
		}
		s.HasWarnings = s.HasWarnings || len(v.Warnings) > 0
	}
	return s
}

// Print writes the validation table and the summary line to stdout
func (r *Report) Print() {
	r.Fprint(os.Stdout)
}

// Fprint writes the validation table and the summary line to w
func (r *Report) Fprint(w io.Writer) {
	if len(r.ValidationResults) > 0 {
		fmt.Fprintln(w, r.validationTable())
	}

	rule := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	fmt.Fprintln(w, rule.Render(strings.Repeat("─", 50)))

	s := r.Summary()
	var headline *color.Color
	switch {
	case s.HasErrors:
		headline = color.New(color.FgRed, color.Bold)
		headline.Fprint(w, "✗ Check completed")
	case s.HasWarnings || s.FilesMissing > 0:
		headline = color.New(color.FgYellow, color.Bold)
		headline.Fprint(w, "⚠ Check completed")
	default:
		headline = color.New(color.FgGreen, color.Bold)
		headline.Fprint(w, "✓ Check completed")
	}

	var details []string
	if s.FilesCreated > 0 {
		details = append(details, fmt.Sprintf("%d file(s) created", s.FilesCreated))
	}
	if s.FilesMissing > 0 {
		details = append(details, fmt.Sprintf("%d file(s) missing", s.FilesMissing))
	}
	if s.ValidationErrors > 0 {
		details = append(details, fmt.Sprintf("%d validation error(s)", s.ValidationErrors))
	}

	if len(details) == 0 {
		fmt.Fprintf(w, " - all checks passed, %d flavor section(s) defined\n", s.Sections)
		return
	}
	fmt.Fprintf(w, " (%s)\n", strings.Join(details, ", "))
}

func (r *Report) validationTable() string {
	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	bad := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warn := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	rows := make([][]string, 0, len(r.ValidationResults))
	for _, v := range r.ValidationResults {
		status := ok.Render("ok")
		note := ""
		switch {
		case !v.Valid:
			status = bad.Render("invalid")
			if v.Error != nil {
				note = v.Error.Error()
			}
		case len(v.Warnings) > 0:
			status = warn.Render("warning")
			note = strings.Join(v.Warnings, "; ")
		}
		sections := ""
		if v.SectionCount > 0 {
			sections = strconv.Itoa(v.SectionCount)
		}
		rows = append(rows, []string{v.Path, status, sections, note})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("FILE", "STATUS", "SECTIONS", "NOTES").
		Rows(rows...).
		Render()
}
