package report

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/reportforge/pkg/errors"
	"github.com/verustcode/reportforge/pkg/idgen"
)

type testLayout struct {
	id         string
	title      string
	flat       bool
	descriptor SectionDescriptor
	titles     map[string]string
	opts       NormalizerOptions
}

func (l testLayout) FlavorID() string                     { return l.id }
func (l testLayout) DocumentTitle() string                { return l.title }
func (l testLayout) IsFlat() bool                         { return l.flat }
func (l testLayout) Descriptor() SectionDescriptor        { return l.descriptor }
func (l testLayout) NormalizerOptions() NormalizerOptions { return l.opts }
func (l testLayout) SectionTitle(key string) string {
	if t, ok := l.titles[key]; ok {
		return t
	}
	return TitleCase(key)
}

func bugLayout() testLayout {
	return testLayout{
		id:    "bug_report",
		title: "Bug Report",
		descriptor: SectionDescriptor{
			{Key: "section1", Subsections: []string{"section1_1", "section1_2"}},
			{Key: "section2", Subsections: []string{"section2_1"}},
			{Key: "section3"},
		},
		titles: map[string]string{
			"section1":   "Summary",
			"section1_2": "Affected Components",
			"section3":   "Impact",
		},
		opts: DefaultNormalizerOptions(),
	}
}

func fixedRenderer() *Renderer {
	r := NewRenderer()
	r.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	return r
}

const bugPayload = `{
	"section1": {"summary": "Crash on save", "status": "done"},
	"section1_1": "",
	"section1_2": ["editor"],
	"section2": null,
	"section2_1": [],
	"section3": "Some text"
}`

// TestRenderer_Render tests numbering, titles and Markdown of rendered sections
func TestRenderer_Render(t *testing.T) {
	doc, err := fixedRenderer().Render(context.Background(), bugLayout(), mustParse(t, bugPayload))
	require.NoError(t, err)

	assert.True(t, idgen.IsValid(doc.ID))
	assert.Equal(t, "bug_report", doc.FlavorID)
	assert.Equal(t, "Bug Report", doc.Title)
	assert.Equal(t, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC), doc.GeneratedAt)
	assert.Equal(t, SectionNumbers{
		"section1":   "1.",
		"section1_2": "1.1",
		"section3":   "2.",
	}, doc.Numbers)

	want := []RenderedSection{
		{
			Key:      "section1",
			Number:   "1.",
			Title:    "1. Summary",
			Markdown: "**Summary:** Crash on save",
			Subsections: []RenderedSection{
				{Key: "section1_2", Number: "1.1", Title: "1.1 Affected Components", Markdown: "- editor"},
			},
		},
		{Key: "section3", Number: "2.", Title: "2. Impact", Markdown: "Some text"},
	}
	assert.Equal(t, want, doc.Sections)
	assert.Equal(t, 3, doc.SectionCount())
}

// TestDocument_Markdown tests the merged Markdown document
func TestDocument_Markdown(t *testing.T) {
	doc, err := fixedRenderer().Render(context.Background(), bugLayout(), mustParse(t, bugPayload))
	require.NoError(t, err)

	want := "# Bug Report\n\n" +
		"## Table of Contents\n\n" +
		"1. [Summary](#1-summary)\n" +
		"   - [1.1 Affected Components](#11-affected-components)\n" +
		"2. [Impact](#2-impact)\n" +
		"\n---\n\n" +
		"## 1. Summary\n\n" +
		"**Summary:** Crash on save\n\n" +
		"### 1.1 Affected Components\n\n" +
		"- editor\n\n" +
		"---\n\n" +
		"## 2. Impact\n\n" +
		"Some text\n"
	assert.Equal(t, want, doc.Markdown())
}

// TestDocument_MarkdownEmpty tests a document without populated sections
func TestDocument_MarkdownEmpty(t *testing.T) {
	doc, err := fixedRenderer().Render(context.Background(), bugLayout(), mustParse(t, `{"section2": ""}`))
	require.NoError(t, err)

	assert.Empty(t, doc.Sections)
	assert.Empty(t, doc.Numbers)
	assert.Equal(t, "# Bug Report\n\n*No sections contain data.*\n", doc.Markdown())
}

// TestRenderer_RenderFlat tests single counter numbering
func TestRenderer_RenderFlat(t *testing.T) {
	layout := testLayout{
		id:    "short",
		title: "Review Summary",
		flat:  true,
		descriptor: SectionDescriptor{
			{Key: "section1"}, {Key: "section2"}, {Key: "section3"},
		},
		titles: map[string]string{"section3": "9.9 Highlights"},
	}

	doc, err := fixedRenderer().Render(context.Background(), layout, mustParse(t, `{"section1": 7, "section3": ["good"]}`))
	require.NoError(t, err)

	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "1. Section1", doc.Sections[0].Title)
	assert.Equal(t, "7", doc.Sections[0].Markdown)
	assert.Equal(t, "2. Highlights", doc.Sections[1].Title, "stale numbers in titles are replaced")
}

// TestRenderer_MainSectionWithoutData tests a main section numbered only through its subsections
func TestRenderer_MainSectionWithoutData(t *testing.T) {
	doc, err := fixedRenderer().Render(context.Background(), bugLayout(), mustParse(t, `{"section2_1": "steps"}`))
	require.NoError(t, err)

	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "1. Section2", doc.Sections[0].Title)
	assert.Empty(t, doc.Sections[0].Markdown)
	assert.Equal(t, "1.1 Section2 1", doc.Sections[0].Subsections[0].Title)
	assert.Contains(t, doc.Markdown(), "## 1. Section2\n\n### 1.1 Section2 1\n\nsteps\n")
}

// TestRenderer_RejectsNonObject tests payload validation
func TestRenderer_RejectsNonObject(t *testing.T) {
	for _, payload := range []string{`[]`, `"text"`, `null`, `42`} {
		t.Run(payload, func(t *testing.T) {
			_, err := NewRenderer().Render(context.Background(), bugLayout(), mustParse(t, payload))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodePayloadInvalid))
		})
	}
}

// TestRenderer_UsesLayoutOptions tests that normalizer options come from the layout
func TestRenderer_UsesLayoutOptions(t *testing.T) {
	layout := bugLayout()
	layout.opts = NormalizerOptions{SkipFields: []string{"summary"}}

	doc, err := NewRenderer().Render(context.Background(), layout, mustParse(t, `{"section1": {"summary": "hidden", "status": "open"}}`))
	require.NoError(t, err)

	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "**Status:** open", doc.Sections[0].Markdown)
}

// TestRenderer_Concurrent tests concurrent renders share no state
func TestRenderer_Concurrent(t *testing.T) {
	r := NewRenderer()
	payload := mustParse(t, bugPayload)

	var wg sync.WaitGroup
	ids := make([]string, 16)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := r.Render(context.Background(), bugLayout(), payload)
			if assert.NoError(t, err) {
				ids[i] = doc.ID
				assert.Equal(t, 3, doc.SectionCount())
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "render IDs must be unique")
		seen[id] = true
	}
}

// TestHeadingAnchor tests heading anchors
func TestHeadingAnchor(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"1. Summary", "1-summary"},
		{"1.1 Affected Components", "11-affected-components"},
		{"2. Root Cause (Analysis)", "2-root-cause-analysis"},
		{"3. Expected vs_Actual", "3-expected-vs-actual"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, HeadingAnchor(tt.title))
		})
	}
}
