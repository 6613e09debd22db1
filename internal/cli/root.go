// Package cli defines Cobra command definitions for the coderelay CLI.
// This file contains the root command and version flag.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	version    = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "coderelay",
	Short: "Streaming HTTP service wrapping the Claude CLI",
	Long: `Coderelay exposes the Claude CLI as a streaming HTTP service.
Each conversation gets a persistent session identity and an isolated
workspace directory; every request runs one claude process and streams
its JSON events back to the caller as they arrive.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to coderelay.yaml (defaults apply when omitted)")
}
