package report

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/verustcode/reportforge/internal/jsonvalue"
)

// DefaultLongTextThreshold is the rune count above which a string value is
// rendered as its own headed block instead of an inline bold-label line
const DefaultLongTextThreshold = 100

// DefaultSkipFields are bookkeeping keys that never appear in rendered Markdown
var DefaultSkipFields = []string{
	"artifact_type",
	"format",
	"status",
	"is_complete",
	"completed",
	"action",
}

// markdownFields are checked in order on a top-level object; the first truthy
// one is treated as already-rendered Markdown and returned as is
var markdownFields = []string{"markdown", "content", "text", "body"}

var (
	leadingFencePattern  = regexp.MustCompile("^```[\\w+-]*[ \\t]*\\r?\\n?")
	trailingFencePattern = regexp.MustCompile("\\s*```\\s*$")
)

// NormalizerOptions configures a Normalizer
type NormalizerOptions struct {
	// SkipFields lists object keys omitted from the output
	SkipFields []string `json:"skip_fields" yaml:"skip_fields"`

	// LongTextThreshold is the rune count above which strings get a heading
	LongTextThreshold int `json:"long_text_threshold" yaml:"long_text_threshold"`
}

// DefaultNormalizerOptions returns the default skip-set and threshold
func DefaultNormalizerOptions() NormalizerOptions {
	return NormalizerOptions{
		SkipFields:        append([]string(nil), DefaultSkipFields...),
		LongTextThreshold: DefaultLongTextThreshold,
	}
}

// Normalizer converts arbitrary report data into a single Markdown string.
// It is immutable after construction and safe for concurrent use.
type Normalizer struct {
	skip      map[string]struct{}
	threshold int
}

// NewNormalizer creates a Normalizer. A non-positive threshold falls back to the default.
func NewNormalizer(opts NormalizerOptions) *Normalizer {
	skip := make(map[string]struct{}, len(opts.SkipFields))
	for _, f := range opts.SkipFields {
		skip[f] = struct{}{}
	}
	threshold := opts.LongTextThreshold
	if threshold <= 0 {
		threshold = DefaultLongTextThreshold
	}
	return &Normalizer{skip: skip, threshold: threshold}
}

var defaultNormalizer = NewNormalizer(DefaultNormalizerOptions())

// ExtractMarkdownFromData converts data to Markdown with the default options
func ExtractMarkdownFromData(data jsonvalue.Value) string {
	return defaultNormalizer.Extract(data)
}

// Extract converts data to Markdown. It never fails: malformed embedded JSON
// degrades to plain text and unexpected shapes are stringified or dropped.
func (n *Normalizer) Extract(data jsonvalue.Value) string {
	w := &markdownWriter{
		n:     n,
		caser: cases.Upper(language.Und),
	}
	return w.extract(data)
}

// markdownWriter carries per-call state. cases.Caser is not safe for concurrent use.
type markdownWriter struct {
	n     *Normalizer
	caser cases.Caser
}

func (w *markdownWriter) extract(data jsonvalue.Value) string {
	if !data.Truthy() {
		return ""
	}

	switch data.Kind() {
	case jsonvalue.KindString:
		return data.Str()
	case jsonvalue.KindObject:
		for _, field := range markdownFields {
			if v := data.Get(field); v.Truthy() {
				return w.extract(v)
			}
		}
		return w.render(data, 0)
	case jsonvalue.KindArray:
		return w.render(data, 0)
	default:
		return data.Text()
	}
}

// render converts a container at the given depth
func (w *markdownWriter) render(v jsonvalue.Value, depth int) string {
	switch v.Kind() {
	case jsonvalue.KindArray:
		return w.renderArray(v, depth)
	case jsonvalue.KindObject:
		return w.renderObject(v, depth)
	default:
		return v.Text()
	}
}

func (w *markdownWriter) renderArray(v jsonvalue.Value, depth int) string {
	var lines []string
	for _, item := range v.Items() {
		switch {
		case item.IsNull():
			continue
		case item.IsContainer():
			if s := w.render(item, depth); s != "" {
				lines = append(lines, s)
			}
		default:
			lines = append(lines, "- "+item.Text())
		}
	}
	return strings.Join(lines, "\n")
}

func (w *markdownWriter) renderObject(v jsonvalue.Value, depth int) string {
	var blocks []string
	for _, m := range v.Object().Members() {
		if _, skip := w.n.skip[m.Key]; skip || m.Value.IsNull() {
			continue
		}

		label := w.label(m.Key)
		var block string
		switch m.Value.Kind() {
		case jsonvalue.KindString:
			block = w.renderString(label, m.Value.Str(), depth)
		case jsonvalue.KindNumber, jsonvalue.KindBool:
			block = "**" + label + ":** " + m.Value.Text()
		case jsonvalue.KindArray, jsonvalue.KindObject:
			if content := w.render(m.Value, depth+1); content != "" {
				block = headingPrefix(depth) + " " + label + "\n\n" + content
			}
		}

		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n")
}

// renderString handles a string member, unwrapping JSON embedded in it
func (w *markdownWriter) renderString(label, s string, depth int) string {
	if parsed, trailing, ok := parseEmbeddedJSON(s); ok {
		parts := make([]string, 0, 2)
		if content := w.render(parsed, depth+1); content != "" {
			parts = append(parts, content)
		}
		if trailing != "" {
			parts = append(parts, trailing)
		}
		if len(parts) == 0 {
			return ""
		}
		return headingPrefix(depth) + " " + label + "\n\n" + strings.Join(parts, "\n\n")
	}

	if strings.TrimSpace(s) == "" {
		return ""
	}
	if utf8.RuneCountInString(s) > w.n.threshold {
		return headingPrefix(depth) + " " + label + "\n\n" + s
	}
	return "**" + label + ":** " + s
}

func (w *markdownWriter) label(key string) string {
	return titleWords(w.caser, key)
}

// TitleCase turns a snake_case key into a display label ("root_cause" -> "Root Cause").
// Only the first rune of each space-separated word changes ("2nd_place" -> "2nd Place").
func TitleCase(key string) string {
	return titleWords(cases.Upper(language.Und), key)
}

// titleWords upper-cases the first rune of every word of key, with upper an Upper caser
func titleWords(upper cases.Caser, key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		if size == 0 {
			continue
		}
		words[i] = upper.String(string(r)) + word[size:]
	}
	return strings.Join(words, " ")
}

// headingPrefix picks the heading level for a recursion depth
func headingPrefix(depth int) string {
	switch depth {
	case 0:
		return "##"
	case 1:
		return "###"
	default:
		return "####"
	}
}

// parseEmbeddedJSON looks for a JSON object or array inside a string value.
// Code fences around the JSON are tolerated. When the whole string is not valid
// JSON but starts with an object, the first balanced object is used and whatever
// prose follows it is returned as trailing.
func parseEmbeddedJSON(s string) (jsonvalue.Value, string, bool) {
	stripped := stripCodeFences(s)
	if stripped == "" || (stripped[0] != '{' && stripped[0] != '[') {
		return jsonvalue.Value{}, "", false
	}

	if v, err := jsonvalue.ParseString(stripped); err == nil {
		return v, "", v.IsContainer()
	}

	if stripped[0] != '{' {
		return jsonvalue.Value{}, "", false
	}
	end, ok := balancedObjectEnd(stripped, 0)
	if !ok {
		return jsonvalue.Value{}, "", false
	}
	v, err := jsonvalue.ParseString(stripped[:end+1])
	if err != nil {
		return jsonvalue.Value{}, "", false
	}
	return v, trailingAfter(stripped, end), true
}

// stripCodeFences removes a leading ```lang fence and a trailing ``` fence
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = leadingFencePattern.ReplaceAllString(s, "")
	s = trailingFencePattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ExtractTrailingContent returns the text following the first balanced JSON
// object in s, with a leading closing code fence removed. It returns "" when
// s holds no balanced object or nothing follows it.
func ExtractTrailingContent(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	end, ok := balancedObjectEnd(s, start)
	if !ok {
		return ""
	}
	return trailingAfter(s, end)
}

func trailingAfter(s string, end int) string {
	rest := strings.TrimSpace(s[end+1:])
	if strings.HasPrefix(rest, "```") {
		rest = strings.TrimSpace(rest[3:])
	}
	return rest
}

// balancedObjectEnd returns the index of the brace closing the object opened at start.
// Braces inside JSON string literals do not count.
func balancedObjectEnd(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
