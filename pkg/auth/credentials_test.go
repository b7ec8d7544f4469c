package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"redditstats/pkg/config"
)

func testAccount(username string) *Account {
	return &Account{
		Username: username,
		Password: "correct-horse-battery",
		AppID:    "app_" + username,
		Secret:   "secret_value_" + username,
	}
}

func clearRedditEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{config.EnvUsername, config.EnvPassword, config.EnvAppID, config.EnvAppSecret} {
		t.Setenv(name, "")
	}
}

// configWithURLs returns a default config with both API URLs set
func configWithURLs() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Reddit.BaseURL = config.RedditBaseURL
	cfg.Reddit.AuthURL = config.RedditAuthURL
	return cfg
}

func TestAccountValidate(t *testing.T) {
	assert.NoError(t, testAccount("alice").Validate())

	var nilAccount *Account
	assert.ErrorIs(t, nilAccount.Validate(), ErrInvalidCredentials)

	missing := testAccount("alice")
	missing.Secret = ""
	assert.EqualError(t, missing.Validate(), "app secret is required")
}

func TestManagerLifecycle(t *testing.T) {
	manager, store := NewMockManager()

	require.NoError(t, manager.Store(testAccount("alice")))
	assert.Equal(t, 1, store.Count())

	got, err := manager.Retrieve("alice")
	require.NoError(t, err)
	assert.Equal(t, "app_alice", got.AppID)
	assert.False(t, got.LastModified.IsZero())

	accounts, err := manager.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	require.NoError(t, manager.Delete("alice"))
	_, err = manager.Retrieve("alice")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	err = manager.Delete("alice")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestManagerStoreRejectsIncompleteAccount(t *testing.T) {
	manager, store := NewMockManager()

	account := testAccount("alice")
	account.Password = ""
	assert.Error(t, manager.Store(account))
	assert.Zero(t, store.Count())
}

func TestManagerFallsBackToNextStore(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("keychain locked")
	working := NewMockStore()

	manager := NewManagerWithStores(nil, broken, working)
	require.NoError(t, manager.Store(testAccount("bob")))

	assert.Zero(t, broken.Count())
	assert.Equal(t, 1, working.Count())
}

func TestManagerStoreAllFail(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("disk full")

	err := NewManagerWithStores(nil, broken).Store(testAccount("bob"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestManagerListDeduplicatesByRecency(t *testing.T) {
	older := NewMockStore()
	newer := NewMockStore()

	stale := testAccount("carol")
	stale.LastModified = time.Now().Add(-time.Hour)
	stale.AppID = "stale"
	require.NoError(t, older.Store(stale))

	fresh := testAccount("carol")
	fresh.LastModified = time.Now()
	fresh.AppID = "fresh"
	require.NoError(t, newer.Store(fresh))

	dave := testAccount("dave")
	dave.LastModified = time.Now().Add(-2 * time.Hour)
	require.NoError(t, older.Store(dave))

	accounts, err := NewManagerWithStores(nil, older, newer).List()
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "carol", accounts[0].Username)
	assert.Equal(t, "fresh", accounts[0].AppID)
	assert.Equal(t, "dave", accounts[1].Username)
}

func TestManagerApplyTo(t *testing.T) {
	clearRedditEnv(t)
	manager, _ := NewMockManager()
	require.NoError(t, manager.Store(testAccount("erin")))

	cfg := configWithURLs()
	cfg.Reddit.Username = "erin"

	filled, err := manager.ApplyTo(cfg)
	require.NoError(t, err)
	assert.True(t, filled)
	assert.Equal(t, "app_erin", cfg.Reddit.AppID)
	assert.Equal(t, "correct-horse-battery", cfg.Reddit.Password)
	assert.NoError(t, cfg.ValidateCredentials())
}

func TestManagerApplyToKeepsConfiguredValues(t *testing.T) {
	clearRedditEnv(t)
	manager, _ := NewMockManager()
	require.NoError(t, manager.Store(testAccount("erin")))

	cfg := configWithURLs()
	cfg.Reddit.Username = "erin"
	cfg.Reddit.AppID = "from-config"

	_, err := manager.ApplyTo(cfg)
	require.NoError(t, err)
	assert.Equal(t, "from-config", cfg.Reddit.AppID)
}

func TestManagerApplyToNothingStored(t *testing.T) {
	clearRedditEnv(t)
	manager, _ := NewMockManager()

	filled, err := manager.ApplyTo(config.DefaultConfig())
	assert.False(t, filled)
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestManagerApplyToCompleteConfig(t *testing.T) {
	manager, _ := NewMockManager()
	cfg := configWithURLs()
	cfg.Reddit.Username = "u"
	cfg.Reddit.Password = "p"
	cfg.Reddit.AppID = "a"
	cfg.Reddit.Secret = "s"

	filled, err := manager.ApplyTo(cfg)
	require.NoError(t, err)
	assert.False(t, filled)
}

func TestManagerUseAccountReplacesEnvironmentPair(t *testing.T) {
	t.Setenv(config.EnvUsername, "alice")
	t.Setenv(config.EnvPassword, "alice-password")
	manager, _ := NewMockManager()
	require.NoError(t, manager.Store(testAccount("bob")))

	cfg := configWithURLs()
	cfg.Reddit.Username = "alice"
	cfg.Reddit.Password = "alice-password"
	cfg.Reddit.AppID = "env-app"
	cfg.Reddit.Secret = "env-secret"

	require.NoError(t, manager.UseAccount(cfg, "bob"))
	assert.Equal(t, "bob", cfg.Reddit.Username)
	assert.Equal(t, "correct-horse-battery", cfg.Reddit.Password)
	assert.Equal(t, "app_bob", cfg.Reddit.AppID)
	assert.Equal(t, "secret_value_bob", cfg.Reddit.Secret)
}

func TestManagerUseAccountUnknown(t *testing.T) {
	clearRedditEnv(t)
	manager, _ := NewMockManager()
	cfg := configWithURLs()
	cfg.Reddit.Username = "alice"

	err := manager.UseAccount(cfg, "bob")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	assert.Equal(t, "alice", cfg.Reddit.Username)
}

func TestEncryptedFileStore(t *testing.T) {
	t.Setenv(PassphraseEnv, "test_passphrase_123")
	path := filepath.Join(t.TempDir(), "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Store(testAccount("frank")))
	require.NoError(t, store.Store(testAccount("alice")))

	got, err := store.Retrieve("frank")
	require.NoError(t, err)
	assert.Equal(t, "secret_value_frank", got.Secret)
	assert.True(t, store.Exists("alice"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "secret_value_frank")
	assert.NotContains(t, string(content), "correct-horse-battery")

	accounts, err := store.List()
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "alice", accounts[0].Username)

	require.NoError(t, store.Delete("alice"))
	require.NoError(t, store.Delete("frank"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file is removed with the last account")
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	t.Setenv(PassphraseEnv, "first")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(testAccount("gina")))

	t.Setenv(PassphraseEnv, "second")
	other, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	_, err = other.Retrieve("gina")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decrypt")
}

func TestEncryptedFileStoreGeneratesPassphrase(t *testing.T) {
	t.Setenv(PassphraseEnv, "")
	dir := t.TempDir()

	store, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)
	require.NoError(t, store.Store(testAccount("hank")))

	_, err = os.Stat(filepath.Join(dir, ".passphrase"))
	require.NoError(t, err)

	reopened, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)
	got, err := reopened.Retrieve("hank")
	require.NoError(t, err)
	assert.Equal(t, "hank", got.Username)
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv(config.EnvUsername, "ivan")
	t.Setenv(config.EnvPassword, "pw")
	t.Setenv(config.EnvAppID, "id")
	t.Setenv(config.EnvAppSecret, "secret")

	store := NewEnvironmentStore()

	account, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, "ivan", account.Username)
	assert.Equal(t, "id", account.AppID)

	_, err = store.Retrieve("someone-else")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	assert.True(t, store.Exists("ivan"))
	assert.ErrorIs(t, store.Store(account), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("ivan"), ErrStoreUnavailable)
}

func TestEnvironmentStoreIncomplete(t *testing.T) {
	clearRedditEnv(t)
	t.Setenv(config.EnvUsername, "ivan")

	accounts, err := NewEnvironmentStore().List()
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestRetrieveDefaultPrefersEnvironment(t *testing.T) {
	t.Setenv(config.EnvUsername, "env-user")
	t.Setenv(config.EnvPassword, "pw")
	t.Setenv(config.EnvAppID, "id")
	t.Setenv(config.EnvAppSecret, "secret")

	mock := NewMockStore()
	require.NoError(t, mock.Store(testAccount("stored-user")))

	account, err := NewManagerWithStores(nil, mock, NewEnvironmentStore()).RetrieveDefault()
	require.NoError(t, err)
	assert.Equal(t, "env-user", account.Username)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	require.NoError(t, err)

	require.NoError(t, store.Store(testAccount("judy")))
	require.NoError(t, store.Store(testAccount("ken")))

	got, err := store.Retrieve("judy")
	require.NoError(t, err)
	assert.Equal(t, "app_judy", got.AppID)

	accounts, err := store.List()
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "judy", accounts[0].Username)
	assert.Equal(t, "ken", accounts[1].Username)

	require.NoError(t, store.Delete("judy"))
	assert.False(t, store.Exists("judy"))
	assert.ErrorIs(t, store.Delete("judy"), ErrCredentialsNotFound)

	accounts, err = store.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestKeyringUnavailable(t *testing.T) {
	keyring.MockInitWithError(errors.New("no secret service"))
	t.Cleanup(keyring.MockInit)

	_, err := NewKeyringStore()
	assert.Error(t, err)
}

func TestSanitizeAccount(t *testing.T) {
	account := testAccount("lena")
	sanitized := SanitizeAccount(account)

	assert.Equal(t, "lena", sanitized.Username)
	assert.Equal(t, "app_lena", sanitized.AppID)
	assert.NotEqual(t, account.Password, sanitized.Password)
	assert.Equal(t, "secr...lena", sanitized.Secret)
	assert.Nil(t, SanitizeAccount(nil))
	assert.Equal(t, "********", maskString("short"))
}

func TestShowAppRegistrationGuide(t *testing.T) {
	var buf bytes.Buffer
	ShowAppRegistrationGuide(&buf)
	assert.Contains(t, buf.String(), AppPreferencesURL)

	buf.Reset()
	ShowQuickGuide(&buf)
	assert.Contains(t, buf.String(), "script")
}
