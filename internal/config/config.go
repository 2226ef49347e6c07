package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings holds the user-facing configuration: which AI backends are
// enabled, their endpoints and credentials, and the auto-apply limits.
type Settings struct {
	// Provider selection
	EnableAI      bool   `yaml:"enable_ai"`
	UseLocalModel bool   `yaml:"use_local_model"`
	UseBrain      bool   `yaml:"use_brain"`
	OllamaURL     string `yaml:"ollama_url"`
	OllamaModel   string `yaml:"ollama_model"`
	GeminiAPIKey  string `yaml:"gemini_api_key"`
	GeminiModel   string `yaml:"gemini_model"`
	BrainURL      string `yaml:"brain_url"`
	BrainModel    string `yaml:"brain_model"`

	// Session settings
	DataDir string `yaml:"data_dir"` // ~/.jobfiller

	// Auto-apply limits
	MaxPages int `yaml:"max_pages"` // Page transitions per session
	MaxTabs  int `yaml:"max_tabs"`  // External tabs per session
}

// DefaultSettings returns settings with the extension's defaults
func DefaultSettings() *Settings {
	return &Settings{
		EnableAI:    true,
		OllamaURL:   "http://localhost:11434",
		OllamaModel: "llama3.1:latest",
		GeminiModel: "gemini-2.0-flash",
		BrainURL:    "http://localhost:3000",
		DataDir:     DefaultDataDir(),
		MaxPages:    5,
		MaxTabs:     1,
	}
}

// DefaultDataDir returns the default data directory (~/.jobfiller)
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jobfiller"
	}
	return filepath.Join(home, ".jobfiller")
}

// Load loads settings from <dataDir>/config.yaml, falling back to
// defaults when the file does not exist. String fields support ${VAR}
// expansion so API keys can live in the environment.
func Load() (*Settings, error) {
	s := DefaultSettings()

	path := filepath.Join(s.DataDir, "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), s); err != nil {
		return nil, err
	}

	if s.DataDir == "" {
		s.DataDir = DefaultDataDir()
	}
	if s.MaxPages <= 0 {
		s.MaxPages = 5
	}
	if s.MaxTabs <= 0 {
		s.MaxTabs = 1
	}
	return s, nil
}

// Save writes settings back to <dataDir>/config.yaml
func (s *Settings) Save() error {
	if err := os.MkdirAll(s.DataDir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.DataDir, "config.yaml"), data, 0o600)
}

// HasCloudAuth reports whether a Gemini credential is configured
func (s *Settings) HasCloudAuth() bool {
	return s.GeminiAPIKey != ""
}

// HasLocalEndpoint reports whether the Ollama endpoint is usable
func (s *Settings) HasLocalEndpoint() bool {
	return s.OllamaURL != "" && s.OllamaModel != ""
}

// DatabasePath returns the SQLite path for profile/QnA storage
func (s *Settings) DatabasePath() string {
	return filepath.Join(s.DataDir, "jobfiller.db")
}
