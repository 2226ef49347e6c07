package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobfiller/jobfiller/internal/ai"
	"github.com/jobfiller/jobfiller/internal/compose"
)

// ComposeCmd creates the compose command group
func ComposeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Generate application collateral from your profile",
	}

	cmd.AddCommand(composeCoverCmd())
	cmd.AddCommand(composeMatchCmd())
	return cmd
}

func composeCoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cover <job-description-file>",
		Short: "Write a short cover letter for a posting",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			jd := readPosting(args[0])
			store, prof := loadProfile()
			defer store.Close()

			letter, err := newComposer().CoverLetter(context.Background(), prof, jd)
			if err != nil {
				fail("Failed to generate cover letter: %v", err)
			}
			fmt.Println(letter)
		},
	}
}

func composeMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <job-description-file>",
		Short: "Score your profile against a posting",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			jd := readPosting(args[0])
			store, prof := loadProfile()
			defer store.Close()

			report, err := newComposer().AnalyzeMatch(context.Background(), prof, jd)
			if err != nil {
				fail("Failed to analyze match: %v", err)
			}

			fmt.Printf("Match score: %d/100\n", report.Score)
			fmt.Printf("%s\n", report.Summary)
			if len(report.MatchingSkills) > 0 {
				fmt.Printf("\033[32mMatching:\033[0m %s\n", strings.Join(report.MatchingSkills, ", "))
			}
			if len(report.MissingSkills) > 0 {
				fmt.Printf("\033[33mMissing:\033[0m  %s\n", strings.Join(report.MissingSkills, ", "))
			}
		},
	}
}

func newComposer() *compose.Composer {
	return compose.New(ai.NewOrchestrator(settings))
}

func readPosting(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		fail("Failed to read %s: %v", path, err)
	}
	return string(data)
}
