package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobfiller/jobfiller/internal/ai"
	"github.com/jobfiller/jobfiller/internal/resume"
)

// ResumeCmd creates the resume command group
func ResumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Manage the stored profile from a resume",
	}

	cmd.AddCommand(resumeImportCmd())
	cmd.AddCommand(resumeShowCmd())
	return cmd
}

func resumeImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Parse a resume text file into the profile",
		Long: `Extract your profile from a plain-text resume using the configured
AI chain and store it. Learned answers already in the store are kept.

Example:
  jobfiller resume import ~/resume.txt`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runResumeImport(args[0])
		},
	}
}

func runResumeImport(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fail("Failed to read %s: %v", path, err)
	}

	parser := resume.New(ai.NewOrchestrator(settings))
	prof, err := parser.Parse(context.Background(), string(data))
	if err != nil {
		fail("Failed to parse resume: %v", err)
	}

	store, existing := loadProfile()
	defer store.Close()

	// Learned answers survive a re-import
	prof.QnA = existing.QnA

	if err := store.Save(prof); err != nil {
		fail("Failed to save profile: %v", err)
	}

	fmt.Printf("Imported profile for %s (%d experience, %d education entries)\n",
		prof.Personal.FullName(), len(prof.Experience), len(prof.Education))
}

func resumeShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored profile",
		Run: func(cmd *cobra.Command, args []string) {
			store, prof := loadProfile()
			defer store.Close()
			fmt.Println(prof.PromptContext())
		},
	}
}
