package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/verustcode/reportforge/internal/check"
	"github.com/verustcode/reportforge/internal/config"
	"github.com/verustcode/reportforge/internal/database"
	"github.com/verustcode/reportforge/internal/flavor"
	"github.com/verustcode/reportforge/internal/jsonvalue"
	"github.com/verustcode/reportforge/internal/model"
	"github.com/verustcode/reportforge/internal/report"
	"github.com/verustcode/reportforge/internal/report/exporter"
	"github.com/verustcode/reportforge/internal/store"
	"github.com/verustcode/reportforge/pkg/errors"
)

var renderCmd = &cobra.Command{
	Use:   "render PAYLOAD",
	Short: "Render a payload file to a document",
	Long: `Render a JSON payload with a flavor and write the document.
PAYLOAD is a file path, or - to read standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var numbersCmd = &cobra.Command{
	Use:   "numbers PAYLOAD",
	Short: "Show the section numbers a payload gets",
	Args:  cobra.ExactArgs(1),
	RunE:  runNumbers,
}

var markdownCmd = &cobra.Command{
	Use:   "markdown PAYLOAD",
	Short: "Convert a JSON value to Markdown without a flavor",
	Args:  cobra.ExactArgs(1),
	RunE:  runMarkdown,
}

var flavorsCmd = &cobra.Command{
	Use:   "flavors",
	Short: "List the available flavors",
	Args:  cobra.NoArgs,
	RunE:  runFlavors,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check and initialize the environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		checker := check.NewChecker(configPath, flavorsDir)
		if yes, _ := cmd.Flags().GetBool("yes"); yes {
			checker.AssumeYes()
		}
		return checker.Run()
	},
}

func init() {
	renderCmd.Flags().String("flavor", "", "flavor ID (default: render.default_flavor)")
	renderCmd.Flags().String("format", "markdown", "output format: markdown, json, html, pdf")
	renderCmd.Flags().StringP("out", "o", "", "output file (default: stdout)")
	renderCmd.Flags().Bool("save", false, "save the render to the archive")

	numbersCmd.Flags().String("flavor", "", "flavor ID (default: render.default_flavor)")
	numbersCmd.Flags().Bool("json", false, "print the numbers as JSON")

	checkCmd.Flags().BoolP("yes", "y", false, "create missing files without prompting")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format, err := exporter.ParseFormat(mustFlag(cmd, "format"))
	if err != nil {
		return err
	}

	fl, err := resolveFlavor(cfg, mustFlag(cmd, "flavor"))
	if err != nil {
		return err
	}

	raw, payload, err := readPayload(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	doc, err := report.NewRenderer().Render(ctx, fl, payload)
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		if err := saveRender(cfg, doc, raw); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved render %s\n", doc.ID)
	}

	exports := exporter.NewDefaultManager(pdfOptions(cfg))
	if out := mustFlag(cmd, "out"); out != "" {
		if err := exports.ExportToFile(ctx, doc, out, format); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s (%d sections)\n", out, doc.SectionCount())
		return nil
	}

	content, err := exports.Export(ctx, doc, format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(content)
	return err
}

// saveRender archives doc in the configured database
func saveRender(cfg *config.Config, doc *report.Document, raw []byte) error {
	if !cfg.Database.Enabled {
		return errors.ErrValidation("cannot save render: the database is disabled")
	}
	if err := database.InitWithPath(cfg.Database.Path); err != nil {
		return err
	}
	defer database.Close()

	rec, err := store.NewRenderRecord(doc, raw, model.RenderSourceCLI)
	if err != nil {
		return err
	}
	return store.NewStore(database.Get()).Render().Create(rec)
}

func runNumbers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fl, err := resolveFlavor(cfg, mustFlag(cmd, "flavor"))
	if err != nil {
		return err
	}

	_, payload, err := readPayload(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	numbers := fl.Numbers(payload)
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(numbers)
	}

	fmt.Fprintln(cmd.OutOrStdout(), numbersTable(fl, numbers))
	return nil
}

// numbersTable lists the numbered sections of fl in document order
func numbersTable(fl *flavor.Config, numbers report.SectionNumbers) string {
	var keys []string
	if fl.IsFlat() {
		keys = fl.FlatKeys()
	} else {
		keys = fl.Descriptor().Keys()
	}

	rows := make([][]string, 0, len(numbers))
	for _, key := range keys {
		if !numbers.Has(key) {
			continue
		}
		number := numbers[key]
		rows = append(rows, []string{number, key, report.ReplaceNumberInTitle(fl.SectionTitle(key), number)})
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("NUMBER", "KEY", "TITLE").
		Rows(rows...).
		Render()
}

func runMarkdown(cmd *cobra.Command, args []string) error {
	_, value, err := readPayload(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.ExtractMarkdownFromData(value))
	return nil
}

func runFlavors(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry, err := flavor.NewRegistryFromDir(cfg.Render.FlavorsDir)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, registry.Len())
	for _, fl := range registry.List() {
		id := fl.ID
		if id == cfg.Render.DefaultFlavor {
			id += " *"
		}
		rows = append(rows, []string{id, fl.Name, fl.Numbering, fmt.Sprintf("%d", fl.SectionCount())})
	}

	fmt.Fprintln(cmd.OutOrStdout(), table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ID", "NAME", "NUMBERING", "SECTIONS").
		Rows(rows...).
		Render())
	return nil
}

// resolveFlavor loads the flavors and picks id, or the configured default
func resolveFlavor(cfg *config.Config, id string) (*flavor.Config, error) {
	registry, err := flavor.NewRegistryFromDir(cfg.Render.FlavorsDir)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = cfg.Render.DefaultFlavor
	}
	return registry.Get(id)
}

// readPayload reads a JSON document from path, or from stdin when path is "-"
func readPayload(path string, stdin io.Reader) ([]byte, jsonvalue.Value, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, jsonvalue.Null(), fmt.Errorf("failed to read payload: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, jsonvalue.Null(), errors.ErrPayloadInvalid("payload is empty", nil)
	}

	value, err := jsonvalue.Parse(raw)
	if err != nil {
		return nil, jsonvalue.Null(), errors.ErrPayloadInvalid("payload is not valid JSON", err)
	}
	return raw, value, nil
}

func mustFlag(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
