// Package config loads and persists the dormant configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/spiffcs/dormant/internal/constants"
	"github.com/spiffcs/dormant/internal/duration"
)

// Removal hook choices
const (
	RemovalNone        = "none"
	RemovalCopilotSeat = "copilot-seat"
	RemovalOrgMember   = "org-member"
)

// Config represents the application configuration
type Config struct {
	// Organization is the GitHub organization being checked.
	Organization string `yaml:"organization,omitempty"`

	// Check names the logical check; it stamps the activity database
	// and scopes the default database path.
	Check string `yaml:"check,omitempty"`

	// Database overrides the activity database location.
	Database string `yaml:"database,omitempty"`

	// Duration is the dormancy threshold, e.g. "90d".
	Duration string `yaml:"duration,omitempty"`

	// Grace is the notification grace period, e.g. "7d".
	Grace string `yaml:"grace,omitempty"`

	// Mode is the snapshot interpretation: partial or complete.
	Mode string `yaml:"mode,omitempty"`

	// Fetcher selects the activity source: copilot or audit-log.
	Fetcher string `yaml:"fetcher,omitempty"`

	// ActivitySource selects the copilot seat timestamp behavior:
	// most-recent, fallback, or ignore.
	ActivitySource string `yaml:"activity_source,omitempty"`

	// Removal selects the removal hook: none, copilot-seat, or org-member.
	Removal string `yaml:"removal,omitempty"`

	// DefaultFormat is the output format: table, json, or markdown.
	DefaultFormat string `yaml:"default_format,omitempty"`

	// DryRun suppresses all side effects when true.
	DryRun bool `yaml:"dry_run,omitempty"`

	// Whitelist lists logins exempt from dormancy classification,
	// matched case-insensitively.
	Whitelist []string `yaml:"whitelist,omitempty"`

	// Notify configures the notification lifecycle.
	Notify *NotifyConfig `yaml:"notify,omitempty"`
}

// NotifyConfig configures where notification tickets live.
type NotifyConfig struct {
	// Repo is the owner/repo holding notification issues.
	Repo string `yaml:"repo,omitempty"`

	// Assignee is assigned to every created issue (optional).
	Assignee string `yaml:"assignee,omitempty"`

	// Labels are extra labels applied beyond the built-in ones.
	Labels []string `yaml:"labels,omitempty"`
}

// DefaultConfig returns a fully populated config with default values.
func DefaultConfig() *Config {
	return &Config{
		Check:          "copilot",
		Duration:       duration.Humanize(constants.DefaultDormancyThreshold),
		Grace:          duration.Humanize(constants.DefaultGracePeriod),
		Mode:           "complete",
		Fetcher:        "copilot",
		ActivitySource: "fallback",
		Removal:        RemovalNone,
		DefaultFormat:  "table",
	}
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".dormant"
	}
	return filepath.Join(configDir, "dormant")
}

// ConfigPath returns the path to the global config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".dormant.yaml"
}

// Load loads the configuration from disk.
// It first loads the global config from the XDG config directory, then
// merges any local .dormant.yaml on top (local values take precedence).
func Load() (*Config, error) {
	cfg := DefaultConfig()

	globalPath := ConfigPath()
	if _, err := os.Stat(globalPath); err == nil {
		data, err := os.ReadFile(globalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read global config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse global config file: %w", err)
		}
	}

	localPath := LocalConfigPath()
	if _, err := os.Stat(localPath); err == nil {
		data, err := os.ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read local config file: %w", err)
		}

		var localCfg Config
		if err := yaml.Unmarshal(data, &localCfg); err != nil {
			return nil, fmt.Errorf("failed to parse local config file: %w", err)
		}

		cfg = mergeConfig(cfg, &localCfg)
	}

	return cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values win when set; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := *global

	if local.Organization != "" {
		result.Organization = local.Organization
	}
	if local.Check != "" {
		result.Check = local.Check
	}
	if local.Database != "" {
		result.Database = local.Database
	}
	if local.Duration != "" {
		result.Duration = local.Duration
	}
	if local.Grace != "" {
		result.Grace = local.Grace
	}
	if local.Mode != "" {
		result.Mode = local.Mode
	}
	if local.Fetcher != "" {
		result.Fetcher = local.Fetcher
	}
	if local.ActivitySource != "" {
		result.ActivitySource = local.ActivitySource
	}
	if local.Removal != "" {
		result.Removal = local.Removal
	}
	if local.DefaultFormat != "" {
		result.DefaultFormat = local.DefaultFormat
	}
	if local.DryRun {
		result.DryRun = true
	}
	if len(local.Whitelist) > 0 {
		result.Whitelist = local.Whitelist
	}
	if local.Notify != nil {
		result.Notify = local.Notify
	}

	return &result
}

// Save saves the configuration to the global config path
func (c *Config) Save() error {
	configDir := DefaultConfigDir()

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// GetGitHubToken returns the GitHub token from the GITHUB_TOKEN environment
// variable. Following 12-factor practice, tokens are only read from the
// environment.
func (c *Config) GetGitHubToken() string {
	return os.Getenv("GITHUB_TOKEN")
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# dormant configuration file
# See: dormant config defaults  (for all available options)

# GitHub organization to check
organization: my-org

# Inactivity threshold before an account is dormant
duration: 90d

# Grace period between notification and removal
grace: 7d

# Activity source: copilot or audit-log
fetcher: copilot

# Snapshot mode: complete (removal-by-absence) or partial
mode: complete

# Removal hook: none, copilot-seat, or org-member
removal: none

# Exempt logins (optional)
# whitelist:
#   - octocat

# Notification issues (required for dormant notify)
# notify:
#   repo: my-org/dormancy-notifications
#   assignee: org-admin
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
