// Package cmd wires the CLI surface: one command per workflow, all exit-code
// discipline concentrated in the test command so scripts can branch on the
// result.
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	cfg "github.com/songquanpeng/ai-probe/common/config"
)

var rootCmd = &cobra.Command{
	Use:   "ai-probe",
	Short: "Verify credentials and connectivity for AI service endpoints",
	Long: `ai-probe resolves a credential with the configured authentication
method, then runs lightweight request scenarios against each configured
service endpoint. The exit code tells you what broke: configuration,
authentication, the network, or the service itself.`,
	// Errors are reported through the verdict machinery; usage spam on a
	// failed run would only bury it.
	SilenceUsage: true,
}

// Execute runs the CLI. Subcommands that produce a verdict exit directly
// with its code; anything that falls through here is a plain CLI error.
func Execute(ctx context.Context) {
	rootCmd.Version = cfg.Version
	rootCmd.SetVersionTemplate(`{{printf "ai-probe version %s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newTestCmd())
	rootCmd.AddCommand(newDiagnoseCmd())
	rootCmd.AddCommand(newVersionCmd())
}
