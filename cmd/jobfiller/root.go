// Package cli wires the jobfiller commands: interactive fill,
// auto-apply, resume import, collateral generation, the brain server,
// and diagnostics.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobfiller/jobfiller/internal/config"
	"github.com/jobfiller/jobfiller/internal/logging"
)

// Shared CLI flags
var (
	verbose  bool
	headless bool
)

// settings holds the loaded configuration (set by SetupRootCmd)
var settings *config.Settings

// SetupRootCmd configures the root command with all subcommands and flags
func SetupRootCmd(s *config.Settings) *cobra.Command {
	settings = s

	rootCmd := &cobra.Command{
		Use:   "jobfiller",
		Short: "JobFiller - AI-assisted job application autofill",
		Long: `JobFiller fills job application forms from your stored profile.

Deterministic and learned answers are applied directly; everything
else is escalated to the configured AI chain (Ollama, Gemini, or the
local brain server). Use 'jobfiller fill <url>' for a single page or
'jobfiller autoapply <url>' for a bounded multi-page run.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !verbose {
				logging.Disable()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", false, "run the browser without a window")

	rootCmd.AddCommand(FillCmd())
	rootCmd.AddCommand(AutoApplyCmd())
	rootCmd.AddCommand(ResumeCmd())
	rootCmd.AddCommand(ComposeCmd())
	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(DoctorCmd())

	return rootCmd
}

func fail(format string, v ...any) {
	fmt.Fprintf(os.Stderr, "\033[31mError: "+format+"\033[0m\n", v...)
	os.Exit(1)
}
