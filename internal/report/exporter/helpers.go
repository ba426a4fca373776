package exporter

import (
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
)

const maxFilenameRunes = 100

// sanitizeFilename keeps letters, digits, '-' and '.'; every other rune becomes
// a single '_'. The result never starts or ends with '_' or '.'.
func sanitizeFilename(name string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.' {
			sb.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			sb.WriteByte('_')
			lastUnderscore = true
		}
	}

	result := strings.Trim(sb.String(), "_.")
	if runes := []rune(result); len(runes) > maxFilenameRunes {
		result = string(runes[:maxFilenameRunes])
	}
	return result
}

// formatBytes renders a size for log fields
func formatBytes(n int) string {
	return humanize.IBytes(uint64(n))
}
