// Package cli implements the hiveshield command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hiveshield",
	Short: "Privacy and security shield for AI agent traffic",
	Long:  "Inspects messages between an agent application and external AI providers:\nsecret scanning, prompt-injection assessment, PII cloaking, and per-destination\naccess policy. Blocked content never leaves the machine.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to shield config YAML (default: $HIVESHIELD_CONFIG, then ~/.hiveshield/config.yaml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
