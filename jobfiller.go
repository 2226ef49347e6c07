package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	cli "github.com/jobfiller/jobfiller/cmd/jobfiller"
	"github.com/jobfiller/jobfiller/internal/config"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cli.SetupRootCmd(settings).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
