package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/abm/config.yml.
// API keys may also come from the environment (or a .env file); environment
// values win over the config file.
type GlobalConfig struct {
	RepoPath     string `yaml:"repo_path,omitempty"`     // Default dataset repository
	GroqAPIKey   string `yaml:"groq_api_key,omitempty"`  // Extraction LLM key
	GroqBaseURL  string `yaml:"groq_base_url,omitempty"` // OpenAI-compatible endpoint override
	ExtractModel string `yaml:"extract_model,omitempty"` // Extraction model name
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "abm"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/abm/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.RepoPath != "" {
		cfg.RepoPath = ExpandTilde(cfg.RepoPath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetGroqAPIKey returns the extraction API key, preferring the
// GROQ_API_KEY environment variable over the global config.
func GetGroqAPIKey() string {
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		return key
	}
	cfg, _ := LoadGlobalConfig()
	return cfg.GroqAPIKey
}

// GetGroqBaseURL returns the OpenAI-compatible endpoint base URL, or ""
// for the library default.
func GetGroqBaseURL() string {
	if url := os.Getenv("GROQ_BASE_URL"); url != "" {
		return url
	}
	cfg, _ := LoadGlobalConfig()
	return cfg.GroqBaseURL
}

// GetExtractModel returns the configured extraction model name, or "".
func GetExtractModel() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.ExtractModel
}

// GetRepoPath returns the configured default repository path from global config.
func GetRepoPath() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.RepoPath
}

// HelpfulConfigMessage returns a helpful message when no repository is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No dataset repository found.

Run 'abm init' inside a repository, or create %s to set a default:
  mkdir -p %s
  echo 'repo_path: /path/to/your/dataset' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
