package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"redditstats/pkg/auth"
	"redditstats/pkg/logger"
	"redditstats/pkg/reddit"
	"redditstats/pkg/ui"
)

var (
	verifyLogin bool
	logoutAll   bool
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored Reddit credentials",
	Long: `Manage stored Reddit API credentials.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only)`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store Reddit credentials",
	Long: `Store the credentials of a Reddit script application and the account it
signs in as. You will be prompted for:
  - Reddit username (if not provided)
  - Password (hidden)
  - App id
  - App secret (hidden)`,
	Example: `  # Interactive login
  redditstats auth login

  # Store and check that the credentials work
  redditstats auth login myusername --verify`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [username]",
	Short: "Remove stored credentials",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored accounts",
	Long:  `List stored Reddit accounts with secrets masked.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)

	loginCmd.Flags().BoolVar(&verifyLogin, "verify", false, "sign in and fetch the account before storing")
	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "remove every stored account")
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager(logger.GetLogger())
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())
	auth.ShowAppRegistrationGuide(out)

	account := &auth.Account{}
	if len(args) > 0 {
		account.Username = strings.TrimSpace(args[0])
	}
	if account.Username == "" {
		if account.Username, err = prompt(out, reader, "Reddit username: "); err != nil {
			return err
		}
	}
	if account.Username == "" {
		return fmt.Errorf("username is required")
	}

	if existing, _ := manager.Retrieve(account.Username); existing != nil {
		answer, err := prompt(out, reader, fmt.Sprintf("Account '%s' already exists. Update credentials? (y/N): ", account.Username))
		if err != nil {
			return err
		}
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return nil
		}
	}

	if account.Password, err = promptSecret(out, reader, "Password: "); err != nil {
		return err
	}
	if account.AppID, err = prompt(out, reader, "App id: "); err != nil {
		return err
	}
	if account.Secret, err = promptSecret(out, reader, "App secret: "); err != nil {
		return err
	}
	if err := account.Validate(); err != nil {
		return err
	}

	if verifyLogin {
		name, err := verifyAccount(cmd, account)
		if err != nil {
			return fmt.Errorf("credentials rejected: %w", err)
		}
		ui.PrintSuccess("Signed in as u/" + name)
	}

	if err := manager.Store(account); err != nil {
		return err
	}
	ui.PrintSuccess("Credentials stored for " + account.Username)
	return nil
}

// verifyAccount signs in with account and returns the name Reddit reports
func verifyAccount(cmd *cobra.Command, account *auth.Account) (string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	cfg.Reddit.Username = account.Username
	cfg.Reddit.Password = account.Password
	cfg.Reddit.AppID = account.AppID
	cfg.Reddit.Secret = account.Secret
	if err := cfg.ValidateCredentials(); err != nil {
		return "", err
	}

	me, err := reddit.NewClient(cfg, logger.GetLogger()).GetMe(cmd.Context())
	if err != nil {
		return "", err
	}
	return me.Name, nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager(logger.GetLogger())
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if logoutAll {
		accounts, err := manager.List()
		if err != nil {
			return err
		}
		for _, account := range accounts {
			if err := manager.Delete(account.Username); err != nil {
				ui.PrintWarning(fmt.Sprintf("Could not remove %s: %v", account.Username, err))
			}
		}
		ui.PrintSuccess(fmt.Sprintf("Removed %d account(s)", len(accounts)))
		return nil
	}

	username := ""
	if len(args) > 0 {
		username = args[0]
	} else {
		reader := bufio.NewReader(cmd.InOrStdin())
		if username, err = prompt(cmd.OutOrStdout(), reader, "Username to remove: "); err != nil {
			return err
		}
	}

	if err := manager.Delete(username); err != nil {
		return err
	}
	ui.PrintSuccess("Removed credentials for " + username)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager(logger.GetLogger())
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return err
	}
	printAccounts(cmd.OutOrStdout(), accounts)
	return nil
}

func printAccounts(out io.Writer, accounts []*auth.Account) {
	if len(accounts) == 0 {
		fmt.Fprintln(out, "No stored accounts. Run 'redditstats auth login' to add one.")
		return
	}

	fmt.Fprintf(out, "Stored accounts (%d):\n\n", len(accounts))
	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Fprintf(out, "%d. Username: %s\n", i+1, sanitized.Username)
		fmt.Fprintf(out, "   App id: %s\n", sanitized.AppID)
		fmt.Fprintf(out, "   Secret: %s\n", sanitized.Secret)
		if !sanitized.LastModified.IsZero() {
			fmt.Fprintf(out, "   Last modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintln(out)
	}
}

func prompt(out io.Writer, reader *bufio.Reader, label string) (string, error) {
	fmt.Fprint(out, label)
	input, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// promptSecret reads without echo when stdin is a terminal
func promptSecret(out io.Writer, reader *bufio.Reader, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(out, reader, label)
	}

	fmt.Fprint(out, label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}
