// Package main provides the interview-coach command line: the HTTP API server plus
// local tools for practising interviews and managing the store.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath string
	debugLog   bool
	jsonLog    bool
)

var rootCmd = &cobra.Command{
	Use:           "interview_coach",
	Short:         "AI mock interview service",
	Long:          "interview_coach runs résumé-driven mock interviews: it generates questions per skill, transcribes and scores answers, and renders score reports.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default: ./interview-coach.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json", false, "Log as JSON")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
