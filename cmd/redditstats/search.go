package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"redditstats/pkg/auth"
	"redditstats/pkg/config"
	"redditstats/pkg/logger"
	"redditstats/pkg/reddit"
	"redditstats/pkg/searcher"
	"redditstats/pkg/storage"
	"redditstats/pkg/ui"
)

var (
	// Search command flags
	searchDays         int
	searchMode         string
	outputFile         string
	outputFormat       string
	commentDepth       int
	requestsPerMinute  int
	searchAccount      string
	notifyOnCompletion bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <subreddit>",
	Short: "Rank a subreddit's posts or authors over the last few days",
	Long: `Search a subreddit and write a ranked summary.

Credentials are taken from, in order:
  - Command line and configuration file settings
  - Environment variables (REDDIT_PARSER_APP_ID, REDDIT_PARSER_APP_SECRET,
    REDDIT_USER, REDDIT_PASSWORD, REDDIT_BASE_URL, REDDIT_AUTH_URL)
  - Stored credentials (use 'redditstats auth login' to store them)

The run is aborted without writing output if any request fails.`,
	Example: `  # Rank the most active authors of the last 3 days into result.json
  redditstats search golang

  # Top posts of the last week, printed as a table
  redditstats search golang --mode top_links --days 7 --format table

  # Write YAML somewhere else
  redditstats search golang --format yaml --output stats/golang.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVarP(&searchDays, "days", "d", 3, "size of the time window in days")
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "top_users", "what to compute ("+strings.Join(searcher.Modes(), ", ")+")")
	searchCmd.Flags().StringVarP(&outputFile, "output", "o", "result.json", "output file for json and yaml formats")
	searchCmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format ("+strings.Join(storage.Formats(), ", ")+")")
	searchCmd.Flags().IntVar(&commentDepth, "comment-depth", 0, "maximum depth of comment trees (0 lets the server decide)")
	searchCmd.Flags().IntVar(&requestsPerMinute, "requests-per-minute", 90, "request budget per minute")
	searchCmd.Flags().StringVarP(&searchAccount, "account", "a", "", "use a specific stored account")
	searchCmd.Flags().BoolVar(&notifyOnCompletion, "notify", false, "send a desktop notification when the search ends")
}

func runSearch(cmd *cobra.Command, args []string) error {
	subreddit := normalizeSubreddit(args[0])
	if subreddit == "" {
		return fmt.Errorf("invalid subreddit name %q", args[0])
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.GetLogger()

	if err := resolveCredentials(cfg, searchAccount, log); err != nil {
		return err
	}

	mode, err := searcher.ParseMode(cfg.Search.Mode)
	if err != nil {
		return err
	}
	sink, err := storage.NewSink(cfg.Output.Format, cfg.Output.File, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if !quiet {
		ui.PrintInfo("Subreddit", "r/"+subreddit)
		ui.PrintInfo("Mode", mode.String())
		ui.PrintInfo("Window", fmt.Sprintf("%d days", cfg.Search.Days))
	}

	client := reddit.NewClient(cfg, log)
	s := searcher.New(searcher.RedditSources{
		Client:       client,
		PageLimit:    cfg.Search.PageLimit,
		CommentDepth: cfg.Search.CommentDepth,
	}, log)

	var notifier *ui.Notifier
	if notifyOnCompletion {
		notifier = ui.NewNotifier(cmd.ErrOrStderr())
	}

	result, err := s.Run(cmd.Context(), mode, subreddit, cfg.Search.Days)
	if err != nil {
		if notifier != nil {
			_ = notifier.SendError("redditstats: search failed", err.Error())
		}
		return fmt.Errorf("search r/%s failed: %w", subreddit, err)
	}

	if err := sink.Write(result.Payload()); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	summary := summarize(result)
	if fileSink, ok := sink.(*storage.FileSink); ok {
		summary += " written to " + fileSink.Path()
	}
	if !quiet {
		ui.PrintSuccess(summary)
	}
	if notifier != nil {
		if err := notifier.SendSuccess("redditstats: search complete", summary); err != nil {
			log.WithError(err).Warn("notification not delivered")
		}
	}
	return nil
}

// newCredentialManager opens the credential stores
var newCredentialManager = auth.NewManager

// resolveCredentials selects the stored account when one is named, otherwise
// completes cfg from the credential manager when the configuration and
// environment leave required settings empty
func resolveCredentials(cfg *config.Config, account string, log logger.Logger) error {
	if account == "" && len(cfg.MissingCredentials()) == 0 {
		return nil
	}

	manager, err := newCredentialManager(log)
	if err != nil {
		if account != "" {
			return fmt.Errorf("failed to initialize credential manager: %w", err)
		}
		log.WithError(err).Warn("credential manager unavailable")
		return cfg.ValidateCredentials()
	}

	if account != "" {
		if err := manager.UseAccount(cfg, account); err != nil {
			return err
		}
		return cfg.ValidateCredentials()
	}

	if _, err := manager.ApplyTo(cfg); err != nil && !errors.Is(err, auth.ErrCredentialsNotFound) {
		return err
	}
	return cfg.ValidateCredentials()
}

func summarize(result *searcher.Result) string {
	if result.Mode == searcher.ModeTopUsers && result.Users != nil {
		return fmt.Sprintf("%d post authors and %d comment authors ranked",
			len(result.Users.ByPosts), len(result.Users.ByComments))
	}
	return fmt.Sprintf("%d posts ranked", len(result.Links))
}

// normalizeSubreddit accepts "golang", "r/golang" and "/r/golang/"
func normalizeSubreddit(name string) string {
	name = strings.Trim(strings.TrimSpace(name), "/")
	name = strings.TrimPrefix(name, "r/")
	if strings.ContainsAny(name, "/ ") {
		return ""
	}
	return name
}
