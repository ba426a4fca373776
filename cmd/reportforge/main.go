// Package main is the entry point for the ReportForge application.
// ReportForge turns structured JSON report payloads into numbered Markdown,
// HTML, JSON and PDF documents, from the command line or over HTTP.
package main

import (
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/verustcode/reportforge/consts"
	"github.com/verustcode/reportforge/internal/config"
)

// Build information - set via ldflags during build
// These variables are linked to consts package for global access
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// init synchronizes build info to consts package for global access
func init() {
	consts.Version = Version
	consts.BuildTime = BuildTime
	consts.GitCommit = GitCommit
}

var (
	// configPath holds the path to the configuration file
	configPath string
	// flavorsDir overrides render.flavors_dir
	flavorsDir string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "reportforge",
	Short: "ReportForge - structured report rendering service",
	Long: `ReportForge renders structured JSON report payloads into numbered
documents. Flavors decide which sections a report has and how they are numbered.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", consts.ProjectName, Version)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
	},
}

func init() {
	// Disable auto-generated completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", consts.DefaultConfigPath, "config file path")
	rootCmd.PersistentFlags().StringVar(&flavorsDir, "flavors-dir", "", "flavors directory (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(numbersCmd)
	rootCmd.AddCommand(markdownCmd)
	rootCmd.AddCommand(flavorsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration, applying --flavors-dir
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if flavorsDir != "" {
		cfg.Render.FlavorsDir = flavorsDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getLocalIP returns the first non-loopback IPv4 address, or ""
func getLocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ip := ipnet.IP.To4(); ip != nil {
				return ip.String()
			}
		}
	}
	return ""
}
