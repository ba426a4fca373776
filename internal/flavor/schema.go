// Package flavor loads report flavors: named report types that fix the section
// hierarchy, the numbering scheme and the Markdown normalization options.
package flavor

import (
	"fmt"

	"github.com/verustcode/reportforge/consts"
	"github.com/verustcode/reportforge/internal/jsonvalue"
	"github.com/verustcode/reportforge/internal/report"
	"github.com/verustcode/reportforge/pkg/errors"
)

// Config is one flavor definition. Each flavor lives in its own YAML file.
type Config struct {
	// ID is the unique identifier (e.g., "bug_report")
	ID string `yaml:"id" json:"id"`

	// Name is the display name
	Name string `yaml:"name" json:"name"`

	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Title heads rendered documents; defaults to Name
	Title string `yaml:"title,omitempty" json:"title"`

	// Numbering is "nested" (N. / N.M) or "flat" (a single counter)
	Numbering string `yaml:"numbering,omitempty" json:"numbering"`

	// Sections lists the main sections in display order
	Sections []Section `yaml:"sections" json:"sections"`

	// SkipFields overrides the normalizer's skip-set when non-empty
	SkipFields []string `yaml:"skip_fields,omitempty" json:"skip_fields,omitempty"`

	// LongTextThreshold overrides the normalizer's long text threshold when positive
	LongTextThreshold int `yaml:"long_text_threshold,omitempty" json:"long_text_threshold,omitempty"`
}

// Section is a main section of a flavor
type Section struct {
	Key         string       `yaml:"key" json:"key"`
	Title       string       `yaml:"title,omitempty" json:"title"`
	Subsections []Subsection `yaml:"subsections,omitempty" json:"subsections,omitempty"`
}

// Subsection is a second level section
type Subsection struct {
	Key   string `yaml:"key" json:"key"`
	Title string `yaml:"title,omitempty" json:"title"`
}

// Validate checks required fields and section key uniqueness
func (c *Config) Validate() error {
	if c.ID == "" {
		return errors.New(errors.ErrCodeFlavorInvalid,
			"flavor missing required field: id")
	}

	if c.Name == "" {
		return errors.New(errors.ErrCodeFlavorInvalid,
			fmt.Sprintf("flavor '%s' missing required field: name", c.ID))
	}

	if c.Numbering != "" && c.Numbering != consts.NumberingNested && c.Numbering != consts.NumberingFlat {
		return errors.New(errors.ErrCodeFlavorInvalid,
			fmt.Sprintf("flavor '%s': numbering must be %q or %q, got %q",
				c.ID, consts.NumberingNested, consts.NumberingFlat, c.Numbering))
	}

	if len(c.Sections) == 0 {
		return errors.New(errors.ErrCodeFlavorInvalid,
			fmt.Sprintf("flavor '%s' declares no sections", c.ID))
	}

	if c.LongTextThreshold < 0 {
		return errors.New(errors.ErrCodeFlavorInvalid,
			fmt.Sprintf("flavor '%s': long_text_threshold must not be negative, got %d", c.ID, c.LongTextThreshold))
	}

	seen := make(map[string]bool)
	checkKey := func(key string) error {
		if key == "" {
			return errors.New(errors.ErrCodeFlavorInvalid,
				fmt.Sprintf("flavor '%s' has a section without a key", c.ID))
		}
		if seen[key] {
			return errors.New(errors.ErrCodeFlavorInvalid,
				fmt.Sprintf("flavor '%s': duplicate section key %q", c.ID, key))
		}
		seen[key] = true
		return nil
	}

	for _, section := range c.Sections {
		if err := checkKey(section.Key); err != nil {
			return err
		}
		if c.Numbering == consts.NumberingFlat && len(section.Subsections) > 0 {
			return errors.New(errors.ErrCodeFlavorInvalid,
				fmt.Sprintf("flavor '%s': flat numbering does not allow subsections (section %q)", c.ID, section.Key))
		}
		for _, sub := range section.Subsections {
			if err := checkKey(sub.Key); err != nil {
				return err
			}
		}
	}

	return nil
}

// ApplyDefaults fills in numbering, titles and normalizer options
func (c *Config) ApplyDefaults() {
	if c.Numbering == "" {
		c.Numbering = consts.NumberingNested
	}
	if c.Title == "" {
		c.Title = c.Name
	}
	if len(c.SkipFields) == 0 {
		c.SkipFields = append([]string(nil), report.DefaultSkipFields...)
	}
	if c.LongTextThreshold == 0 {
		c.LongTextThreshold = report.DefaultLongTextThreshold
	}

	for i := range c.Sections {
		section := &c.Sections[i]
		if section.Title == "" {
			section.Title = report.TitleCase(section.Key)
		}
		for j := range section.Subsections {
			sub := &section.Subsections[j]
			if sub.Title == "" {
				sub.Title = report.TitleCase(sub.Key)
			}
		}
	}
}

// Descriptor returns the section hierarchy used for numbering
func (c *Config) Descriptor() report.SectionDescriptor {
	descriptor := make(report.SectionDescriptor, 0, len(c.Sections))
	for _, section := range c.Sections {
		spec := report.SectionSpec{Key: section.Key}
		for _, sub := range section.Subsections {
			spec.Subsections = append(spec.Subsections, sub.Key)
		}
		descriptor = append(descriptor, spec)
	}
	return descriptor
}

// FlatKeys returns the main section keys in order
func (c *Config) FlatKeys() []string {
	keys := make([]string, 0, len(c.Sections))
	for _, section := range c.Sections {
		keys = append(keys, section.Key)
	}
	return keys
}

// NormalizerOptions returns the Markdown normalizer settings of this flavor
func (c *Config) NormalizerOptions() report.NormalizerOptions {
	opts := report.DefaultNormalizerOptions()
	if len(c.SkipFields) > 0 {
		opts.SkipFields = append([]string(nil), c.SkipFields...)
	}
	if c.LongTextThreshold > 0 {
		opts.LongTextThreshold = c.LongTextThreshold
	}
	return opts
}

// SectionTitle returns the title of a main or subsection key.
// Unknown keys fall back to their Title Case form.
func (c *Config) SectionTitle(key string) string {
	for _, section := range c.Sections {
		if section.Key == key {
			return section.Title
		}
		for _, sub := range section.Subsections {
			if sub.Key == key {
				return sub.Title
			}
		}
	}
	return report.TitleCase(key)
}

// IsFlat reports whether the flavor uses a single numbering counter
func (c *Config) IsFlat() bool {
	return c.Numbering == consts.NumberingFlat
}

// FlavorID returns ID; together with the methods above it satisfies report.Layout
func (c *Config) FlavorID() string {
	return c.ID
}

// DocumentTitle returns the document heading
func (c *Config) DocumentTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

// Numbers computes section numbers for payload with this flavor's scheme
func (c *Config) Numbers(payload jsonvalue.Value) report.SectionNumbers {
	if c.IsFlat() {
		return report.CalculateFlatSectionNumbers(payload, c.FlatKeys())
	}
	return report.CalculateSectionNumbers(payload, c.Descriptor())
}

// SectionCount returns the number of main plus subsections
func (c *Config) SectionCount() int {
	n := 0
	for _, section := range c.Sections {
		n += 1 + len(section.Subsections)
	}
	return n
}
