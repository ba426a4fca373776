// Package config loads reportforge's YAML configuration file.
// Values may reference environment variables with ${VAR} or ${VAR:-default},
// and RF_* environment variables override individual settings after parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verustcode/reportforge/consts"
	"github.com/verustcode/reportforge/pkg/errors"
	"github.com/verustcode/reportforge/pkg/logger"
	"github.com/verustcode/reportforge/pkg/telemetry"
)

// Config is the complete service configuration
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Database  DatabaseConfig   `yaml:"database"`
	Logging   logger.Config    `yaml:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry"`
	Render    RenderConfig     `yaml:"render"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	Debug bool   `yaml:"debug"`
	// CORSOrigins lists allowed browser origins; empty allows none
	CORSOrigins []string `yaml:"cors_origins"`
}

// Address returns host:port
func (c ServerConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// DatabaseConfig configures the render archive
type DatabaseConfig struct {
	// Enabled turns the archive on; without it renders are never persisted
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// RenderConfig configures flavors, archiving and export
type RenderConfig struct {
	// FlavorsDir holds flavor YAML files merged over the built-ins
	FlavorsDir    string `yaml:"flavors_dir"`
	DefaultFlavor string `yaml:"default_flavor"`
	// SaveRenders archives every render, not only those requested with save=true
	SaveRenders bool `yaml:"save_renders"`
	// RetentionDays is how long archived renders are kept; 0 keeps them forever
	RetentionDays   int    `yaml:"retention_days"`
	CleanupSchedule string `yaml:"cleanup_schedule"`
	// PDFTimeoutSeconds bounds a single headless Chrome print
	PDFTimeoutSeconds int `yaml:"pdf_timeout_seconds"`
	// ChromePath overrides the browser binary used for PDF export
	ChromePath string `yaml:"chrome_path"`
}

// PDFTimeout returns the PDF timeout as a duration
func (c RenderConfig) PDFTimeout() time.Duration {
	if c.PDFTimeoutSeconds <= 0 {
		return consts.DefaultPDFTimeout
	}
	return time.Duration(c.PDFTimeoutSeconds) * time.Second
}

// DefaultConfig returns the configuration used for anything the file leaves out
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8092,
		},
		Database: DatabaseConfig{
			Enabled: true,
			Path:    consts.DefaultDatabasePath,
		},
		Logging: logger.DefaultConfig(),
		Telemetry: telemetry.Config{
			ServiceName: consts.ServiceName,
			OTLP: telemetry.OTLPConfig{
				Endpoint: "localhost:4317",
				Insecure: true,
			},
			Prometheus: telemetry.PrometheusConfig{
				Port: 9090,
				Path: "/metrics",
			},
		},
		Render: RenderConfig{
			FlavorsDir:        consts.DefaultFlavorsDir,
			DefaultFlavor:     "bug_report",
			RetentionDays:     consts.DefaultRetentionDays,
			CleanupSchedule:   consts.DefaultCleanupSchedule,
			PDFTimeoutSeconds: int(consts.DefaultPDFTimeout / time.Second),
		},
	}
}

// Load reads the configuration at path. A missing file yields the defaults
// (still subject to RF_* overrides); a malformed one is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		logger.Debug("Config file not found, using defaults")
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeConfigNotFound, "failed to read config file "+path, err)
	default:
		if err := yaml.Unmarshal([]byte(ExpandEnvVars(string(data))), cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfigParse, "failed to parse config file "+path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Exists reports whether a config file is present at path
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Write stores cfg at path with a descriptive header, creating parent directories
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(configHeader+string(data)), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

const configHeader = `# ReportForge configuration
#
# Values may reference environment variables as ${VAR} or ${VAR:-default}.
# These environment variables override the file:
#   RF_SERVER_HOST, RF_SERVER_PORT, RF_SERVER_DEBUG
#   RF_DATABASE_PATH, RF_DATABASE_ENABLED
#   RF_LOG_LEVEL, RF_LOG_FORMAT, RF_LOG_FILE
#   RF_FLAVORS_DIR, RF_DEFAULT_FLAVOR, RF_CHROME_PATH
#   RF_TELEMETRY_ENABLED, RF_OTLP_ENDPOINT, RF_PROMETHEUS_PORT
#

`
