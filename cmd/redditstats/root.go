package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"redditstats/pkg/config"
	"redditstats/pkg/logger"
	"redditstats/pkg/ui"
)

var (
	// Version information, set with -ldflags at build time
	version   = "0.5.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "redditstats",
	Short: "Rank a subreddit's top posts and most active authors",
	Long: `redditstats reads a subreddit through the Reddit OAuth API and produces
ranked summaries over a recent time window:

  top_links   all-time top posts created within the window, by score
  top_users   authors of the window's newest posts, by post count and by
              the number of comments they left on those posts

Requests are paced to stay within Reddit's rate limit, backing off when the
server reports the quota is nearly used up.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.SetColorEnabled(false)
		}
		if !quiet && cmd.Name() == "search" {
			ui.PrintBanner()
		}
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.PrintError("Error", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file, YAML or TOML (default is ./.redditstats.yaml or $HOME/.redditstats.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress the banner and progress lines")

	rootCmd.SetVersionTemplate(`redditstats {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads the layered configuration, applying the flags the user
// set explicitly, and initializes the global logger from it
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	for _, name := range []string{"days", "comment-depth", "requests-per-minute"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			v, err := cmd.Flags().GetInt(name)
			if err != nil {
				return nil, err
			}
			flags[name] = v
		}
	}
	for _, name := range []string{"mode", "output", "format"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			flags[name] = f.Value.String()
		}
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "redditstats %s\n", version)
		fmt.Fprintf(out, "commit:  %s\n", gitCommit)
		fmt.Fprintf(out, "built:   %s\n", buildDate)
		fmt.Fprintf(out, "go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
