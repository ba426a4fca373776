package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Only ${VAR} is expanded; a bare $VAR is left alone.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ExpandEnvVars replaces ${VAR} and ${VAR:-default} references in content.
// Unset variables without a default expand to "".
func ExpandEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		name, def, hasDefault := strings.Cut(match[2:len(match)-1], ":-")
		if value := os.Getenv(name); value != "" {
			return value
		}
		if hasDefault {
			return def
		}
		return ""
	})
}

// applyEnvOverrides applies RF_* variables on top of the parsed file
func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Host, "RF_SERVER_HOST")
	setInt(&cfg.Server.Port, "RF_SERVER_PORT")
	setBool(&cfg.Server.Debug, "RF_SERVER_DEBUG")

	setString(&cfg.Database.Path, "RF_DATABASE_PATH")
	setBool(&cfg.Database.Enabled, "RF_DATABASE_ENABLED")

	setString(&cfg.Logging.Level, "RF_LOG_LEVEL")
	setString(&cfg.Logging.Format, "RF_LOG_FORMAT")
	setString(&cfg.Logging.File, "RF_LOG_FILE")

	setString(&cfg.Render.FlavorsDir, "RF_FLAVORS_DIR")
	setString(&cfg.Render.DefaultFlavor, "RF_DEFAULT_FLAVOR")
	setString(&cfg.Render.ChromePath, "RF_CHROME_PATH")

	setBool(&cfg.Telemetry.Enabled, "RF_TELEMETRY_ENABLED")
	if v := os.Getenv("RF_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLP.Endpoint = v
		cfg.Telemetry.OTLP.Enabled = true
	}
	if v := os.Getenv("RF_PROMETHEUS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Telemetry.Prometheus.Port = port
			cfg.Telemetry.Prometheus.Enabled = true
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = parseBool(v)
	}
}

// parseBool accepts true/1/yes/on in any case
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}
