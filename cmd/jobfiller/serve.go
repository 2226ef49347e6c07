package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobfiller/jobfiller/internal/ai"
	"github.com/jobfiller/jobfiller/internal/brainserver"
	"github.com/jobfiller/jobfiller/internal/profile"
)

// ServeCmd creates the serve command for the local brain server
func ServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local brain server",
		Long: `Start the OpenAI-compatible brain server. Fill sessions on this
machine (or others pointing at it) get answers augmented with your
stored profile, and push learned facts back to it.

Example:
  jobfiller serve --addr :3000`,
		Run: func(cmd *cobra.Command, args []string) {
			runServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":3000", "listen address")

	return cmd
}

func runServe(addr string) {
	store, err := profile.OpenStore(settings.DatabasePath())
	if err != nil {
		fail("Failed to open profile store: %v", err)
	}
	defer store.Close()

	// The backing chain must not include the brain itself
	backing := *settings
	backing.UseBrain = false
	server := brainserver.New(ai.NewOrchestrator(&backing), store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	fmt.Printf("Brain server listening on %s\n", addr)
	if err := server.ListenAndServe(ctx, addr); err != nil && err != http.ErrServerClosed {
		fail("Server error: %v", err)
	}
}
