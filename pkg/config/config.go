package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	errs "redditstats/pkg/errors"
)

// Config holds all configuration options for redditstats
type Config struct {
	// Reddit API endpoints and credentials
	Reddit RedditConfig `yaml:"reddit" json:"reddit" toml:"reddit"`

	// Request pacing
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit" toml:"rate_limit"`

	// Search defaults
	Search SearchConfig `yaml:"search" json:"search" toml:"search"`

	// Result output
	Output OutputConfig `yaml:"output" json:"output" toml:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging" toml:"logging"`
}

// RedditConfig holds the API location and the credentials used for the
// password grant
type RedditConfig struct {
	BaseURL        string `yaml:"base_url" json:"base_url" toml:"base_url"`
	AuthURL        string `yaml:"auth_url" json:"auth_url" toml:"auth_url"`
	AppID          string `yaml:"app_id" json:"app_id" toml:"app_id"`
	Secret         string `yaml:"secret" json:"secret" toml:"secret"`
	Username       string `yaml:"username" json:"username" toml:"username"`
	Password       string `yaml:"password" json:"password" toml:"password"`
	UserAgent      string `yaml:"user_agent" json:"user_agent" toml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds" toml:"timeout_seconds"`
}

// RateLimitConfig holds request pacing configuration
type RateLimitConfig struct {
	RequestsPerMinute int     `yaml:"requests_per_minute" json:"requests_per_minute" toml:"requests_per_minute"`
	RemainingFloor    float64 `yaml:"remaining_floor" json:"remaining_floor" toml:"remaining_floor"`
}

// SearchConfig holds defaults for a search run
type SearchConfig struct {
	Days         int    `yaml:"days" json:"days" toml:"days"`
	Mode         string `yaml:"mode" json:"mode" toml:"mode"`
	PageLimit    int    `yaml:"page_limit" json:"page_limit" toml:"page_limit"`
	CommentDepth int    `yaml:"comment_depth" json:"comment_depth" toml:"comment_depth"`
}

// OutputConfig holds result output configuration
type OutputConfig struct {
	File   string `yaml:"file" json:"file" toml:"file"`
	Format string `yaml:"format" json:"format" toml:"format"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level" toml:"level"`
	File  string `yaml:"file" json:"file" toml:"file"`
}

// Environment variable names for the required settings
const (
	EnvBaseURL   = "REDDIT_BASE_URL"
	EnvAuthURL   = "REDDIT_AUTH_URL"
	EnvAppID     = "REDDIT_PARSER_APP_ID"
	EnvAppSecret = "REDDIT_PARSER_APP_SECRET"
	EnvUsername  = "REDDIT_USER"
	EnvPassword  = "REDDIT_PASSWORD"
)

// MaxPageLimit is the largest page size the listing endpoints accept
const MaxPageLimit = 100

// Public Reddit endpoints, written into example configuration files. Both
// URLs are required settings and have no default.
const (
	RedditBaseURL = "https://oauth.reddit.com"
	RedditAuthURL = "https://www.reddit.com/api/v1/access_token"
)

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Reddit: RedditConfig{
			TimeoutSeconds: 30,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 90,
			RemainingFloor:    2,
		},
		Search: SearchConfig{
			Days:      3,
			Mode:      "top_users",
			PageLimit: MaxPageLimit,
		},
		Output: OutputConfig{
			File:   "result.json",
			Format: "json",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	setString := func(name string, target *string) {
		if v := os.Getenv(name); v != "" {
			*target = v
		}
	}

	setString(EnvBaseURL, &c.Reddit.BaseURL)
	setString(EnvAuthURL, &c.Reddit.AuthURL)
	setString(EnvAppID, &c.Reddit.AppID)
	setString(EnvAppSecret, &c.Reddit.Secret)
	setString(EnvUsername, &c.Reddit.Username)
	setString(EnvPassword, &c.Reddit.Password)
	setString("REDDITSTATS_USER_AGENT", &c.Reddit.UserAgent)
	setString("REDDITSTATS_MODE", &c.Search.Mode)
	setString("REDDITSTATS_OUTPUT_FILE", &c.Output.File)
	setString("REDDITSTATS_OUTPUT_FORMAT", &c.Output.Format)
	setString("REDDITSTATS_LOG_LEVEL", &c.Logging.Level)
	setString("REDDITSTATS_LOG_FILE", &c.Logging.File)

	ints := map[string]*int{
		"REDDITSTATS_REQUESTS_PER_MINUTE": &c.RateLimit.RequestsPerMinute,
		"REDDITSTATS_DAYS":                &c.Search.Days,
		"REDDITSTATS_PAGE_LIMIT":          &c.Search.PageLimit,
		"REDDITSTATS_TIMEOUT_SECONDS":     &c.Reddit.TimeoutSeconds,
	}
	for name, target := range ints {
		raw := os.Getenv(name)
		if raw == "" {
			continue
		}
		val, err := strconv.Atoi(raw)
		if err != nil {
			return errs.NewConfigError(fmt.Sprintf("%s must be an integer", name), err)
		}
		*target = val
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or TOML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, c)
	} else {
		err = yaml.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".redditstats.yaml",
		".redditstats.yml",
		".redditstats.toml",
		filepath.Join(home, ".config", "redditstats", "config.yaml"),
		filepath.Join(home, ".config", "redditstats", "config.toml"),
		filepath.Join(home, ".redditstats.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks ranges and enumerations. Credentials are checked
// separately by ValidateCredentials so that callers can fill them from a
// credential store first.
func (c *Config) Validate() error {
	var list []error

	if c.RateLimit.RequestsPerMinute <= 0 {
		list = append(list, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.RemainingFloor < 0 {
		list = append(list, errors.New("remaining floor cannot be negative"))
	}
	if c.Reddit.TimeoutSeconds <= 0 {
		list = append(list, errors.New("timeout must be positive"))
	}
	if c.Search.Days <= 0 {
		list = append(list, errors.New("days must be positive"))
	}
	if c.Search.PageLimit <= 0 || c.Search.PageLimit > MaxPageLimit {
		list = append(list, fmt.Errorf("page limit must be between 1 and %d", MaxPageLimit))
	}
	if c.Search.CommentDepth < 0 {
		list = append(list, errors.New("comment depth cannot be negative"))
	}

	validModes := map[string]bool{"top_links": true, "top_users": true}
	if !validModes[strings.ToLower(c.Search.Mode)] {
		list = append(list, fmt.Errorf("invalid mode %q", c.Search.Mode))
	}

	validFormats := map[string]bool{"json": true, "yaml": true, "table": true}
	if !validFormats[strings.ToLower(c.Output.Format)] {
		list = append(list, fmt.Errorf("invalid output format %q", c.Output.Format))
	} else if !strings.EqualFold(c.Output.Format, "table") && strings.TrimSpace(c.Output.File) == "" {
		list = append(list, errors.New("output file is required for file formats"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		list = append(list, errors.New("invalid log level"))
	}

	if len(list) > 0 {
		return errs.NewConfigError("invalid configuration", errors.Join(list...))
	}

	return nil
}

// MissingCredentials lists the environment names of required settings that
// are still empty
func (c *Config) MissingCredentials() []string {
	required := []struct {
		name  string
		value string
	}{
		{EnvBaseURL, c.Reddit.BaseURL},
		{EnvAuthURL, c.Reddit.AuthURL},
		{EnvAppID, c.Reddit.AppID},
		{EnvAppSecret, c.Reddit.Secret},
		{EnvUsername, c.Reddit.Username},
		{EnvPassword, c.Reddit.Password},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	return missing
}

// ValidateCredentials fails with a ConfigError naming every missing
// required setting
func (c *Config) ValidateCredentials() error {
	if missing := c.MissingCredentials(); len(missing) > 0 {
		return errs.NewConfigError("missing required settings: "+strings.Join(missing, ", "), nil)
	}
	return nil
}

// UserAgent returns the configured user agent or the one derived from the
// client identity
func (c *Config) UserAgent() string {
	if c.Reddit.UserAgent != "" {
		return c.Reddit.UserAgent
	}
	return fmt.Sprintf("linux:%s:v0.5 (by /u/%s)", c.Reddit.AppID, c.Reddit.Username)
}

// Save saves the configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// flags holds only the flags the user set, so every value is applied as
// given and left to Validate.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["days"].(int); ok {
		c.Search.Days = v
	}
	if v, ok := flags["mode"].(string); ok {
		c.Search.Mode = v
	}
	if v, ok := flags["comment-depth"].(int); ok {
		c.Search.CommentDepth = v
	}
	if v, ok := flags["output"].(string); ok {
		c.Output.File = v
	}
	if v, ok := flags["format"].(string); ok {
		c.Output.Format = v
	}
	if v, ok := flags["requests-per-minute"].(int); ok {
		c.RateLimit.RequestsPerMinute = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: command line flags > environment variables > .env file
// > config file > defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files never override variables already set in the environment
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".redditstats.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, errs.NewConfigError("failed to load config file", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, err
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}
