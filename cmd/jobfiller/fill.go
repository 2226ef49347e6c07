package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobfiller/jobfiller/internal/ai"
	"github.com/jobfiller/jobfiller/internal/browser"
	"github.com/jobfiller/jobfiller/internal/profile"
	"github.com/jobfiller/jobfiller/internal/resolver"
	"github.com/jobfiller/jobfiller/internal/session"
)

// FillCmd creates the fill command for a single-page run
func FillCmd() *cobra.Command {
	var learn bool
	var jobDescription string

	cmd := &cobra.Command{
		Use:   "fill <url>",
		Short: "Fill the application form at a URL",
		Long: `Open the page, scan its form, and fill every field that resolves
from your profile, learned answers, or the AI chain.

With --learn, fields you fill in by hand before closing the run are
captured as learned answers for next time.

Examples:
  jobfiller fill https://jobs.example.com/apply/123
  jobfiller fill --learn https://jobs.example.com/apply/123`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runFill(args[0], learn, jobDescription)
		},
	}

	cmd.Flags().BoolVar(&learn, "learn", false, "capture manually filled fields as learned answers")
	cmd.Flags().StringVar(&jobDescription, "job-description", "", "file with the posting text, for AI context")

	return cmd
}

func runFill(url string, learn bool, jobDescriptionFile string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, prof := loadProfile()
	defer store.Close()

	if jobDescriptionFile != "" {
		data, err := os.ReadFile(jobDescriptionFile)
		if err != nil {
			fail("Failed to read job description: %v", err)
		}
		prof.JobDescription = string(data)
	}

	sess, err := browser.Launch(headless)
	if err != nil {
		fail("Failed to launch browser: %v", err)
	}
	defer sess.Close()

	if err := sess.Open(url); err != nil {
		fail("Failed to open %s: %v", url, err)
	}

	controller := session.NewController(newResolver(), sess, sess)
	if err := sess.Watch(controller.FieldsDiscovered); err != nil {
		fail("Failed to watch for dynamic fields: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nCancelling after the current field...")
		controller.Cancel()
	}()

	summary, err := controller.Start(ctx, prof)
	if err != nil {
		fail("Fill failed: %v", err)
	}

	fmt.Printf("Filled %d fields, skipped %d\n", summary.FilledCount, summary.Skipped)
	if summary.LastError != nil {
		fmt.Printf("\033[33mLast error: %v\033[0m\n", summary.LastError)
	}

	if learn {
		captureLearned(ctx, sess, store)
	}
}

// captureLearned records the user's manual answers after a fill pass
func captureLearned(ctx context.Context, sess *browser.Session, store *profile.Store) {
	fmt.Println("Fill the remaining fields by hand, then press Enter to capture them...")
	fmt.Scanln()

	fields, err := sess.CaptureFilled(ctx)
	if err != nil {
		fail("Capture failed: %v", err)
	}

	var brain *ai.BrainProvider
	if settings.UseBrain {
		brain = ai.NewBrainProvider(settings.BrainURL, settings.BrainModel)
	}

	added := 0
	for _, f := range fields {
		created, err := store.LearnQnA(f.Question, f.Answer, "learned")
		if err != nil {
			fail("Failed to store answer: %v", err)
		}
		if created {
			added++
		}
		if brain != nil {
			brain.Memorize(ctx,
				fmt.Sprintf("Question: %s Answer: %s", f.Question, f.Answer),
				map[string]string{"question": f.Question, "answer": f.Answer})
		}
	}
	fmt.Printf("Learned %d new answers (%d total captured)\n", added, len(fields))
}

// loadProfile opens the store and loads the profile snapshot
func loadProfile() (*profile.Store, *profile.Context) {
	store, err := profile.OpenStore(settings.DatabasePath())
	if err != nil {
		fail("Failed to open profile store: %v", err)
	}
	prof, err := store.Load()
	if err != nil {
		store.Close()
		fail("Failed to load profile: %v", err)
	}
	return store, prof
}

// newResolver builds the field resolver over the configured AI chain
func newResolver() *resolver.Resolver {
	return resolver.New(ai.NewOrchestrator(settings), settings.EnableAI)
}
