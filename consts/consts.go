// Package consts holds names, defaults and build information shared across reportforge.
package consts

import (
	"sync"
	"time"
)

// ServiceName is used for telemetry and as the default log/database file stem
const ServiceName = "reportforge"

// Project information
const (
	ProjectName = "ReportForge"
	ProjectURL  = "https://github.com/verustcode/reportforge"
)

// Export formats understood by the exporter registry
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatHTML     = "html"
	FormatPDF      = "pdf"
)

// Numbering schemes a flavor may declare
const (
	NumberingNested = "nested"
	NumberingFlat   = "flat"
)

// Default locations and limits
const (
	DefaultConfigPath      = "config/reportforge.yaml"
	DefaultFlavorsDir      = "config/flavors"
	DefaultDatabasePath    = "data/reportforge.db"
	DefaultCleanupSchedule = "0 3 * * *"
	DefaultRetentionDays   = 30
	DefaultPDFTimeout      = 60 * time.Second

	// MaxPayloadBytes bounds request bodies accepted by the HTTP API
	MaxPayloadBytes = 8 << 20
)

// Build information, set through ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	startedAt   time.Time
	startedOnce sync.Once
)

// SetStartedAt records the server start time. Only the first call takes effect.
func SetStartedAt(t time.Time) {
	startedOnce.Do(func() {
		startedAt = t
	})
}

// GetStartedAt returns the server start time
func GetStartedAt() time.Time {
	return startedAt
}

// GetUptime returns the time since SetStartedAt, or 0 if it was never called
func GetUptime() time.Duration {
	if startedAt.IsZero() {
		return 0
	}
	return time.Since(startedAt)
}
