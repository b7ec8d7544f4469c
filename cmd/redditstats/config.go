package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"redditstats/pkg/config"
	"redditstats/pkg/ui"
)

const defaultConfigPath = ".redditstats.yaml"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage redditstats configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - .env files
  - Configuration file (YAML, or TOML when the name ends in .toml)
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file holding every option with its
default value.

The file is created as '.redditstats.yaml' in the current directory unless
a different path is given with --config. Existing files are never
overwritten.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after all sources have been applied.

The app secret and password are masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Load the configuration from every source and check it.

This command checks:
  - File syntax
  - Value ranges, the mode and the output format
  - That every required Reddit setting is present`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s (remove it first to start over)", configPath)
	}

	data, err := exampleConfig(configPath)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	// The file is meant to hold credentials
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "1. Add your Reddit app id, secret, username and password, or run 'redditstats auth login'")
	fmt.Fprintln(out, "2. Run 'redditstats config validate' to check the configuration")
	fmt.Fprintln(out, "3. Run 'redditstats search <subreddit>'")
	return nil
}

// exampleConfig renders the default configuration in the format implied by
// path
func exampleConfig(path string) ([]byte, error) {
	cfg := config.DefaultConfig()
	cfg.Reddit.BaseURL = config.RedditBaseURL
	cfg.Reddit.AuthURL = config.RedditAuthURL

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		body, err := toml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to render configuration: %w", err)
		}
		return append([]byte(configHeader), body...), nil
	}

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to render configuration: %w", err)
	}
	return append([]byte(configHeader), body...), nil
}

const configHeader = `# redditstats configuration
#
# Required settings may also come from the environment:
#   REDDIT_BASE_URL, REDDIT_AUTH_URL, REDDIT_PARSER_APP_ID,
#   REDDIT_PARSER_APP_SECRET, REDDIT_USER, REDDIT_PASSWORD
# Optional settings use the REDDITSTATS_ prefix, for example
#   REDDITSTATS_DAYS, REDDITSTATS_MODE, REDDITSTATS_LOG_LEVEL

`

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	display := *cfg
	display.Reddit.Secret = maskSecret(display.Reddit.Secret)
	display.Reddit.Password = maskSecret(display.Reddit.Password)

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(out)
	fmt.Fprint(out, string(data))
	printSources(out)
	return nil
}

func printSources(out io.Writer) {
	fmt.Fprintln(out, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(out, "1. Command line flags")
	fmt.Fprintln(out, "2. Environment variables (REDDIT_*, REDDITSTATS_*)")
	fmt.Fprintln(out, "3. .env files")
	if configFile != "" {
		fmt.Fprintf(out, "4. Configuration file: %s\n", configFile)
	} else {
		fmt.Fprintln(out, "4. Configuration file: (default locations)")
	}
	fmt.Fprintln(out, "5. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		ui.PrintWarning("Missing required settings:")
		for _, name := range missing {
			fmt.Fprintf(out, "  - %s\n", name)
		}
		fmt.Fprintln(out, "\nStored credentials from 'redditstats auth login' are used when these are unset.")
	} else {
		ui.PrintSuccess("Configuration is valid")
	}

	fmt.Fprintln(out, "\nConfiguration summary:")
	fmt.Fprintf(out, "  API: %s\n", cfg.Reddit.BaseURL)
	fmt.Fprintf(out, "  Mode: %s over %d day(s)\n", cfg.Search.Mode, cfg.Search.Days)
	fmt.Fprintf(out, "  Rate limit: %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Fprintf(out, "  Output: %s (%s)\n", cfg.Output.File, cfg.Output.Format)
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}

func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) > 8:
		return s[:4] + "..." + s[len(s)-4:]
	default:
		return "***"
	}
}
