package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verustcode/reportforge/consts"
	"github.com/verustcode/reportforge/internal/api/router"
	"github.com/verustcode/reportforge/internal/check"
	"github.com/verustcode/reportforge/internal/config"
	"github.com/verustcode/reportforge/internal/database"
	"github.com/verustcode/reportforge/internal/flavor"
	"github.com/verustcode/reportforge/internal/report/exporter"
	"github.com/verustcode/reportforge/internal/server"
	"github.com/verustcode/reportforge/internal/store"
	"github.com/verustcode/reportforge/pkg/errors"
	"github.com/verustcode/reportforge/pkg/logger"
	"github.com/verustcode/reportforge/pkg/telemetry"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ReportForge server",
	Long: `Start the HTTP server that renders report payloads.

On first run, use --check flag to interactively set up your environment:
  reportforge serve --check

This will guide you through:
  - Creating the configuration file from its template
  - Installing the built-in flavors
  - Validating configuration and flavor files

After initial setup, simply run:
  reportforge serve`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "server host (overrides config)")
	serveCmd.Flags().Int("port", 0, "server port (overrides config)")
	serveCmd.Flags().Bool("debug", false, "enable debug mode")
	serveCmd.Flags().Bool("check", false, "run interactive environment check before starting server")
}

// runServe starts the ReportForge server
func runServe(cmd *cobra.Command, args []string) {
	interactiveCheck, _ := cmd.Flags().GetBool("check")

	checker := check.NewChecker(configPath, flavorsDir)
	if interactiveCheck {
		if err := checker.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Environment check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("\n✓ Environment check completed successfully")
	} else {
		result := checker.RunNonInteractive()
		if !result.Success {
			check.PrintCheckResult(result)
			os.Exit(1)
		}
		for _, warn := range result.Warnings {
			fmt.Fprintf(os.Stderr, "[WARNING] %s\n", warn)
		}
		if len(result.Warnings) > 0 {
			fmt.Fprintln(os.Stderr)
		}
	}

	consts.SetStartedAt(time.Now())

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		if appErr, ok := errors.AsAppError(err); ok && appErr.Code == errors.ErrCodeConfigInvalid {
			if problems, ok := appErr.Details.([]string); ok {
				for _, p := range problems {
					fmt.Fprintf(os.Stderr, "  - %s\n", p)
				}
			}
			os.Exit(errors.ExitCodeConfigValidation)
		}
		os.Exit(1)
	}

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Server.Debug = true
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "text"
	}

	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting ReportForge",
		zap.String("version", Version),
		zap.String("config", configPath),
	)

	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			logger.Error("Failed to shutdown telemetry", zap.Error(err))
		}
	}()

	registry, err := flavor.NewRegistryFromDir(cfg.Render.FlavorsDir)
	if err != nil {
		logger.Fatal("Failed to load flavors", zap.Error(err))
	}
	logger.Info("Flavors loaded",
		zap.Strings("ids", registry.IDs()),
		zap.String("dir", cfg.Render.FlavorsDir),
	)

	deps := router.Dependencies{
		Flavors: registry,
		Exports: exporter.NewDefaultManager(pdfOptions(cfg)),
	}

	if cfg.Database.Enabled {
		if err := database.InitWithPath(cfg.Database.Path); err != nil {
			logger.Fatal("Failed to initialize database", zap.Error(err))
		}
		defer database.Close()

		deps.Store = store.NewStore(database.Get())

		cleanup := store.NewCleanupService(deps.Store.Render(), cfg.Render.CleanupSchedule, cfg.Render.RetentionDays)
		if err := cleanup.Start(); err != nil {
			// The archive still works without scheduled purging
			logger.Warn("Failed to start render cleanup service", zap.Error(err))
		} else {
			defer cleanup.Stop()
		}
	} else {
		logger.Info("Render archive disabled")
	}

	srv := server.New(cfg, deps)
	srv.SetupRoutes()

	if err := srv.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	logger.Info("ReportForge server is running",
		zap.String("address", cfg.Server.Address()),
	)

	port := cfg.Server.Port
	logger.Info(fmt.Sprintf("  Local:   http://localhost:%d/api/v1/flavors", port))
	if lanIP := getLocalIP(); lanIP != "" {
		logger.Info(fmt.Sprintf("  Network: http://%s:%d/api/v1/flavors", lanIP, port))
	}

	srv.WaitForShutdown()

	logger.Info("ReportForge stopped")
}

// pdfOptions applies the render settings to the default PDF options
func pdfOptions(cfg *config.Config) exporter.PDFOptions {
	opts := exporter.DefaultPDFOptions()
	opts.Timeout = cfg.Render.PDFTimeout()
	opts.ChromePath = cfg.Render.ChromePath
	return opts
}
