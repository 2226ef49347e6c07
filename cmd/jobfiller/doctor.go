package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobfiller/jobfiller/internal/ai"
	"github.com/jobfiller/jobfiller/internal/profile"
)

// DoctorCmd creates the doctor command for health checks
func DoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and backend connectivity",
		Long: `Run diagnostics on your JobFiller setup.

Checks:
  - Configuration and data directory
  - Profile database
  - Ollama endpoint and models
  - Gemini credential
  - Brain server connectivity`,
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

type checkResult struct {
	name    string
	status  string // "ok", "warn", "error"
	message string
}

func runDoctor() {
	fmt.Println("\033[1mJobFiller Doctor\033[0m")
	fmt.Println("================")
	fmt.Println()

	var results []checkResult
	results = append(results, checkConfig()...)
	results = append(results, checkDatabase()...)
	results = append(results, checkProviders()...)

	okCount, warnCount, errorCount := 0, 0, 0
	for _, r := range results {
		switch r.status {
		case "ok":
			fmt.Printf("\033[32m✓\033[0m %s: %s\n", r.name, r.message)
			okCount++
		case "warn":
			fmt.Printf("\033[33m⚠\033[0m %s: %s\n", r.name, r.message)
			warnCount++
		case "error":
			fmt.Printf("\033[31m✗\033[0m %s: %s\n", r.name, r.message)
			errorCount++
		}
	}

	fmt.Println()
	fmt.Printf("Summary: \033[32m%d passed\033[0m", okCount)
	if warnCount > 0 {
		fmt.Printf("  \033[33m%d warnings\033[0m", warnCount)
	}
	if errorCount > 0 {
		fmt.Printf("  \033[31m%d errors\033[0m", errorCount)
	}
	fmt.Println()

	if errorCount > 0 {
		os.Exit(1)
	}
}

func checkConfig() []checkResult {
	var results []checkResult

	if _, err := os.Stat(settings.DataDir); err != nil {
		results = append(results, checkResult{"Data directory", "warn",
			fmt.Sprintf("%s does not exist yet (created on first run)", settings.DataDir)})
	} else {
		results = append(results, checkResult{"Data directory", "ok", settings.DataDir})
	}

	if !settings.EnableAI {
		results = append(results, checkResult{"AI", "warn", "disabled; unmapped fields will be skipped"})
	} else {
		results = append(results, checkResult{"AI", "ok", "enabled"})
	}

	return results
}

func checkDatabase() []checkResult {
	store, err := profile.OpenStore(settings.DatabasePath())
	if err != nil {
		return []checkResult{{"Database", "error", err.Error()}}
	}
	defer store.Close()

	prof, err := store.Load()
	if err != nil {
		return []checkResult{{"Database", "error", err.Error()}}
	}

	if prof.Personal.FullName() == "" {
		return []checkResult{{"Profile", "warn", "empty; run 'jobfiller resume import' first"}}
	}
	return []checkResult{{"Profile", "ok",
		fmt.Sprintf("%s (%d learned answers)", prof.Personal.FullName(), len(prof.QnA))}}
}

func checkProviders() []checkResult {
	var results []checkResult

	if settings.HasLocalEndpoint() {
		if ai.CheckOllamaAvailable(settings.OllamaURL) {
			msg := settings.OllamaURL
			if models, err := ai.ListOllamaModels(settings.OllamaURL); err == nil && len(models) > 0 {
				msg = fmt.Sprintf("%s (models: %s)", settings.OllamaURL, strings.Join(models, ", "))
			}
			results = append(results, checkResult{"Ollama", "ok", msg})
		} else {
			results = append(results, checkResult{"Ollama", "error",
				fmt.Sprintf("not reachable at %s", settings.OllamaURL)})
		}
	} else {
		results = append(results, checkResult{"Ollama", "warn", "not configured"})
	}

	if settings.HasCloudAuth() {
		results = append(results, checkResult{"Gemini", "ok", "API key configured"})
	} else {
		results = append(results, checkResult{"Gemini", "warn", "no API key (set GEMINI_API_KEY or gemini_api_key)"})
	}

	if settings.UseBrain {
		if ai.CheckBrainAvailable(settings.BrainURL) {
			results = append(results, checkResult{"Brain", "ok", settings.BrainURL})
		} else {
			results = append(results, checkResult{"Brain", "error",
				fmt.Sprintf("not reachable at %s (run 'jobfiller serve')", settings.BrainURL)})
		}
	} else {
		results = append(results, checkResult{"Brain", "warn", "disabled"})
	}

	if !settings.HasLocalEndpoint() && !settings.HasCloudAuth() && !settings.UseBrain {
		results = append(results, checkResult{"Providers", "error",
			"no AI backend configured; only deterministic and learned answers will fill"})
	}

	return results
}
