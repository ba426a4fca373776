package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/verustcode/reportforge/pkg/errors"
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var validLogFormats = map[string]bool{"json": true, "text": true}

// Validate checks the configuration and reports every problem at once
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	for _, origin := range c.Server.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			problems = append(problems, fmt.Sprintf("server.cors_origins entry %q must start with http:// or https://", origin))
		}
	}

	if c.Database.Enabled && c.Database.Path == "" {
		problems = append(problems, "database.path is required when the database is enabled")
	}

	if c.Logging.Level != "" && !validLogLevels[strings.ToLower(c.Logging.Level)] {
		problems = append(problems, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		problems = append(problems, fmt.Sprintf("logging.format %q is not one of json, text", c.Logging.Format))
	}

	if c.Telemetry.Enabled && c.Telemetry.OTLP.Enabled && c.Telemetry.OTLP.Endpoint == "" {
		problems = append(problems, "telemetry.otlp.endpoint is required when OTLP export is enabled")
	}

	if c.Render.RetentionDays < 0 {
		problems = append(problems, fmt.Sprintf("render.retention_days must not be negative, got %d", c.Render.RetentionDays))
	}
	if c.Render.PDFTimeoutSeconds < 0 {
		problems = append(problems, fmt.Sprintf("render.pdf_timeout_seconds must not be negative, got %d", c.Render.PDFTimeoutSeconds))
	}
	if c.Render.CleanupSchedule != "" {
		if _, err := cron.ParseStandard(c.Render.CleanupSchedule); err != nil {
			problems = append(problems, fmt.Sprintf("render.cleanup_schedule %q is not a valid cron expression: %v", c.Render.CleanupSchedule, err))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New(errors.ErrCodeConfigInvalid, "invalid configuration").WithDetails(problems)
}
