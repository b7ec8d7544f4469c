package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"redditstats/pkg/config"
	"redditstats/pkg/logger"
)

// Account holds a Reddit script application and the account it acts as
type Account struct {
	Username     string    `json:"username"`
	Password     string    `json:"password"`
	AppID        string    `json:"app_id"`
	Secret       string    `json:"secret"`
	UserAgent    string    `json:"user_agent,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Validate reports the first missing required field
func (a *Account) Validate() error {
	switch {
	case a == nil:
		return ErrInvalidCredentials
	case a.Username == "":
		return errors.New("username is required")
	case a.Password == "":
		return errors.New("password is required")
	case a.AppID == "":
		return errors.New("app id is required")
	case a.Secret == "":
		return errors.New("app secret is required")
	}
	return nil
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	// Store saves credentials for a given account
	Store(account *Account) error

	// Retrieve gets credentials for a specific username
	Retrieve(username string) (*Account, error)

	// List returns all stored accounts
	List() ([]*Account, error)

	// Delete removes credentials for a specific username
	Delete(username string) error

	// Exists checks if credentials exist for a username
	Exists(username string) bool
}

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
	logger logger.Logger
}

// NewManager creates a credential manager backed by the system keychain
// when available, an encrypted file, and finally the environment
func NewManager(log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	} else {
		log.DebugWithFields("system keyring unavailable", map[string]interface{}{
			"error": err.Error(),
		})
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore, NewEnvironmentStore())

	return &Manager{stores: stores, logger: log}, nil
}

// NewManagerWithStores creates a Manager over the given stores, in
// priority order
func NewManagerWithStores(log logger.Logger, stores ...CredentialStore) *Manager {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Manager{stores: stores, logger: log}
}

// Store saves credentials using the first store that accepts them
func (m *Manager) Store(account *Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	account.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(account)
		if err == nil {
			m.logger.InfoWithFields("credentials stored", map[string]interface{}{
				"username": account.Username,
				"store":    fmt.Sprintf("%T", store),
			})
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve(username string) (*Account, error) {
	for _, store := range m.stores {
		if account, err := store.Retrieve(username); err == nil && account != nil {
			return account, nil
		}
	}
	return nil, fmt.Errorf("%w for user: %s", ErrCredentialsNotFound, username)
}

// RetrieveDefault returns the environment credentials if set, otherwise the
// most recently modified stored account
func (m *Manager) RetrieveDefault() (*Account, error) {
	for _, store := range m.stores {
		if envStore, ok := store.(*EnvironmentStore); ok {
			if account, err := envStore.Retrieve(""); err == nil {
				return account, nil
			}
		}
	}

	accounts, err := m.List()
	if err == nil && len(accounts) > 0 {
		return accounts[0], nil
	}
	return nil, ErrCredentialsNotFound
}

// List returns the accounts of all stores, most recently modified first.
// An account present in several stores is reported once.
func (m *Manager) List() ([]*Account, error) {
	accountMap := make(map[string]*Account)

	for _, store := range m.stores {
		accounts, err := store.List()
		if err != nil {
			continue
		}
		for _, account := range accounts {
			if existing, ok := accountMap[account.Username]; !ok || account.LastModified.After(existing.LastModified) {
				accountMap[account.Username] = account
			}
		}
	}

	result := make([]*Account, 0, len(accountMap))
	for _, account := range accountMap {
		result = append(result, account)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].LastModified.Equal(result[j].LastModified) {
			return result[i].LastModified.After(result[j].LastModified)
		}
		return result[i].Username < result[j].Username
	})
	return result, nil
}

// Delete removes credentials from every store holding them
func (m *Manager) Delete(username string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(username); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if deleted {
		return nil
	}
	if lastErr != nil && !errors.Is(lastErr, ErrCredentialsNotFound) && !errors.Is(lastErr, ErrStoreUnavailable) {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	return fmt.Errorf("%w for user: %s", ErrCredentialsNotFound, username)
}

// ApplyTo fills the credential settings cfg is missing from a stored
// account. The account is chosen by cfg's username when set. It reports
// whether any setting was filled.
func (m *Manager) ApplyTo(cfg *config.Config) (bool, error) {
	if len(cfg.MissingCredentials()) == 0 {
		return false, nil
	}

	var (
		account *Account
		err     error
	)
	if cfg.Reddit.Username != "" {
		account, err = m.Retrieve(cfg.Reddit.Username)
	} else {
		account, err = m.RetrieveDefault()
	}
	if err != nil {
		return false, err
	}

	filled := false
	fill := func(dst *string, value string) {
		if *dst == "" && value != "" {
			*dst = value
			filled = true
		}
	}
	fill(&cfg.Reddit.Username, account.Username)
	fill(&cfg.Reddit.Password, account.Password)
	fill(&cfg.Reddit.AppID, account.AppID)
	fill(&cfg.Reddit.Secret, account.Secret)
	fill(&cfg.Reddit.UserAgent, account.UserAgent)

	if filled {
		m.logger.DebugWithFields("using stored credentials", map[string]interface{}{
			"username": account.Username,
		})
	}
	return filled, nil
}

// UseAccount replaces the account settings of cfg with the stored account
// username. Username, password, app id and secret are taken together from
// the store so that none of them mixes with values from the environment.
func (m *Manager) UseAccount(cfg *config.Config, username string) error {
	account, err := m.Retrieve(username)
	if err != nil {
		return fmt.Errorf("account %s: %w", username, err)
	}

	cfg.Reddit.Username = account.Username
	cfg.Reddit.Password = account.Password
	cfg.Reddit.AppID = account.AppID
	cfg.Reddit.Secret = account.Secret
	if account.UserAgent != "" {
		cfg.Reddit.UserAgent = account.UserAgent
	}

	m.logger.DebugWithFields("using selected account", map[string]interface{}{
		"username": account.Username,
	})
	return nil
}

// getConfigDir returns the per-user configuration directory, creating it
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "redditstats")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "redditstats")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "redditstats")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "redditstats")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// SanitizeAccount creates a copy of the account with secrets masked
func SanitizeAccount(account *Account) *Account {
	if account == nil {
		return nil
	}

	return &Account{
		Username:     account.Username,
		Password:     maskString(account.Password),
		AppID:        account.AppID,
		Secret:       maskString(account.Secret),
		UserAgent:    account.UserAgent,
		LastModified: account.LastModified,
	}
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
