package report

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/verustcode/reportforge/internal/jsonvalue"
)

// SectionSpec declares one main section and its subsection keys in display order
type SectionSpec struct {
	Key         string   `json:"key" yaml:"key"`
	Subsections []string `json:"subsections,omitempty" yaml:"subsections,omitempty"`
}

// SectionDescriptor is the ordered section hierarchy of a report type
type SectionDescriptor []SectionSpec

// Keys returns every main and subsection key in document order
func (d SectionDescriptor) Keys() []string {
	var keys []string
	for _, s := range d {
		keys = append(keys, s.Key)
		keys = append(keys, s.Subsections...)
	}
	return keys
}

// SectionNumbers maps a section key to its display label.
// Main sections get "N." and subsections "N.M".
type SectionNumbers map[string]string

// Has reports whether key was numbered
func (n SectionNumbers) Has(key string) bool {
	_, ok := n[key]
	return ok
}

// CalculateSectionNumbers numbers the populated sections of payload in descriptor order.
// A main section is numbered when it or any of its subsections has data; empty
// sections take no number, so the sequence has no gaps. Subsection counters
// restart in every main section.
func CalculateSectionNumbers(payload jsonvalue.Value, descriptor SectionDescriptor) SectionNumbers {
	numbers := make(SectionNumbers)
	if payload.Kind() != jsonvalue.KindObject {
		return numbers
	}

	mainNumber := 0
	for _, section := range descriptor {
		mainHasData := HasData(payload.Get(section.Key))
		anySubHasData := false
		for _, sub := range section.Subsections {
			if HasData(payload.Get(sub)) {
				anySubHasData = true
				break
			}
		}
		if !mainHasData && !anySubHasData {
			continue
		}

		mainNumber++
		mainLabel := strconv.Itoa(mainNumber)
		numbers[section.Key] = mainLabel + "."

		subNumber := 0
		for _, sub := range section.Subsections {
			if !HasData(payload.Get(sub)) {
				continue
			}
			subNumber++
			numbers[sub] = mainLabel + "." + strconv.Itoa(subNumber)
		}
	}

	return numbers
}

// CalculateFlatSectionNumbers numbers populated top-level keys with a single counter.
// Used by single-level report variants.
func CalculateFlatSectionNumbers(payload jsonvalue.Value, keys []string) SectionNumbers {
	numbers := make(SectionNumbers)
	if payload.Kind() != jsonvalue.KindObject {
		return numbers
	}

	n := 0
	for _, key := range keys {
		if !HasData(payload.Get(key)) {
			continue
		}
		n++
		numbers[key] = strconv.Itoa(n) + "."
	}
	return numbers
}

var leadingNumberPattern = regexp.MustCompile(`^[\d.]+\s*`)

// ReplaceNumberInTitle swaps a leading "1.2 " style prefix of title for newNumber.
// Exactly one prefix is stripped, so renumbering an already numbered title is stable.
// An empty newNumber yields the bare title.
func ReplaceNumberInTitle(title, newNumber string) string {
	rest := strings.TrimSpace(leadingNumberPattern.ReplaceAllString(title, ""))
	if newNumber == "" {
		return rest
	}
	return newNumber + " " + rest
}
