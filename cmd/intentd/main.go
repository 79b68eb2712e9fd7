// Package main implements the intentd CLI for training, evaluating and
// serving the namjari intent classifier.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is the optional YAML configuration file
	configPath string
	// version information, injected at build time
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "intentd",
	Short: "Intent classifier for Bengali namjari queries",
	Long: `intentd classifies Bengali land-mutation (namjari) queries into intent
categories using a three-stage pipeline: regex pattern rules, semantic
nearest-neighbor voting over an embedding index, and a TF-IDF keyword
fallback.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file (optional)")
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd prints detailed build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("intentd %s (commit %s, built %s)\n", version, gitCommit, buildDate)
	},
}
