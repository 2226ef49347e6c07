package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobfiller/jobfiller/internal/browser"
	"github.com/jobfiller/jobfiller/internal/session"
)

// AutoApplyCmd creates the autoapply command for a multi-page run
func AutoApplyCmd() *cobra.Command {
	var maxPages, maxTabs int

	cmd := &cobra.Command{
		Use:   "autoapply <url>",
		Short: "Fill and advance through a multi-page application",
		Long: `Run fill-then-advance until the application is submitted or a
safety cap is hit. Page transitions and new tabs are both bounded so a
pathological flow can never loop forever.

Examples:
  jobfiller autoapply https://jobs.example.com/apply/123
  jobfiller autoapply --max-pages 8 https://jobs.example.com/apply/123`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runAutoApply(args[0], maxPages, maxTabs)
		},
	}

	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "page transitions per session (default from config)")
	cmd.Flags().IntVar(&maxTabs, "max-tabs", 0, "external tabs per session (default from config)")

	return cmd
}

func runAutoApply(url string, maxPages, maxTabs int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if maxPages <= 0 {
		maxPages = settings.MaxPages
	}
	if maxTabs <= 0 {
		maxTabs = settings.MaxTabs
	}

	store, prof := loadProfile()
	defer store.Close()

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

	loop := session.NewAutoApply(controller, sess, store, maxPages, maxTabs)
	if loop.Resumable() {
		fmt.Println("\033[33mA previous auto-apply session did not finish; starting fresh.\033[0m")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nCancelling after the current field...")
		controller.Cancel()
	}()

	report, err := loop.Run(ctx, prof)
	if err != nil {
		fail("Auto-apply failed: %v", err)
	}

	fmt.Printf("Auto-apply finished: %s (%d pages, %d fields filled)\n",
		describeStatus(report.Status), report.Pages, report.FilledTotal)
	if report.LastError != nil {
		fmt.Printf("\033[33mLast error: %v\033[0m\n", report.LastError)
	}
}

func describeStatus(status session.TerminalStatus) string {
	switch status {
	case session.StatusCompleted:
		return "completed"
	case session.StatusPageCap:
		return "stopped at page cap"
	case session.StatusTabCap:
		return "stopped at tab cap"
	case session.StatusCancelled:
		return "cancelled"
	default:
		return string(status)
	}
}
