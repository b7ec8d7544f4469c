package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redditstats/pkg/auth"
	"redditstats/pkg/config"
	errs "redditstats/pkg/errors"
	"redditstats/pkg/logger"
	"redditstats/pkg/models"
	"redditstats/pkg/searcher"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		configFile = ""
		logLevel = ""
		quiet = false
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestNormalizeSubreddit(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"golang", "golang"},
		{"r/golang", "golang"},
		{"/r/golang/", "golang"},
		{"  golang ", "golang"},
		{"r/go/lang", ""},
		{"go lang", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeSubreddit(tt.in), "input %q", tt.in)
	}
}

func TestSummarize(t *testing.T) {
	links := &searcher.Result{Mode: searcher.ModeTopLinks, Links: []models.Entity{}}
	assert.Equal(t, "0 posts ranked", summarize(links))

	users := &searcher.Result{
		Mode: searcher.ModeTopUsers,
		Users: &searcher.AuthorRanking{
			ByPosts:    []string{"x: 2", "y: 1"},
			ByComments: []string{"z: 4"},
		},
	}
	assert.Equal(t, "2 post authors and 1 comment authors ranked", summarize(users))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", maskSecret(""))
	assert.Equal(t, "***", maskSecret("short"))
	assert.Equal(t, "abcd...mnop", maskSecret("abcdefghijklmnop"))
}

func TestExampleConfigLoads(t *testing.T) {
	for _, name := range []string{"redditstats.yaml", "redditstats.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			data, err := exampleConfig(path)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(path, data, 0600))

			want := config.DefaultConfig()
			want.Reddit.BaseURL = config.RedditBaseURL
			want.Reddit.AuthURL = config.RedditAuthURL

			cfg := &config.Config{}
			require.NoError(t, cfg.LoadFromFile(path))
			assert.Equal(t, want, cfg)
		})
	}
}

func TestConfigInitRefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "redditstats.yaml")

	_, err := executeCommand(t, "config", "init", "--config", path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = executeCommand(t, "config", "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestSearchRejectsNonPositiveDays(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	for _, days := range []string{"0", "-2"} {
		_, err := executeCommand(t, "search", "golang", "-q", "--days", days)
		require.Error(t, err, "days %s", days)
		assert.True(t, errs.IsConfigError(err), "days %s", days)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "redditstats "+version)
}

func TestResolveCredentialsNamedAccountIgnoresEnvironmentPair(t *testing.T) {
	manager, store := auth.NewMockManager()
	require.NoError(t, store.Store(&auth.Account{
		Username: "bob",
		Password: "bob-password",
		AppID:    "bob-app",
		Secret:   "bob-secret",
	}))
	original := newCredentialManager
	newCredentialManager = func(logger.Logger) (*auth.Manager, error) { return manager, nil }
	t.Cleanup(func() { newCredentialManager = original })

	cfg := config.DefaultConfig()
	cfg.Reddit.BaseURL = config.RedditBaseURL
	cfg.Reddit.AuthURL = config.RedditAuthURL
	cfg.Reddit.Username = "alice"
	cfg.Reddit.Password = "alice-password"
	cfg.Reddit.AppID = "alice-app"
	cfg.Reddit.Secret = "alice-secret"

	require.NoError(t, resolveCredentials(cfg, "bob", logger.NewNopLogger()))
	assert.Equal(t, "bob", cfg.Reddit.Username)
	assert.Equal(t, "bob-password", cfg.Reddit.Password)
	assert.Equal(t, "bob-app", cfg.Reddit.AppID)
	assert.Equal(t, "bob-secret", cfg.Reddit.Secret)

	err := resolveCredentials(cfg, "carol", logger.NewNopLogger())
	assert.ErrorIs(t, err, auth.ErrCredentialsNotFound)
}

func TestPrintAccounts(t *testing.T) {
	var out bytes.Buffer
	printAccounts(&out, nil)
	assert.Contains(t, out.String(), "No stored accounts")

	out.Reset()
	printAccounts(&out, []*auth.Account{{
		Username:     "alice",
		Password:     "hunter22hunter22",
		AppID:        "app-id",
		Secret:       "supersecretvalue",
		LastModified: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}})

	text := out.String()
	assert.Contains(t, text, "Username: alice")
	assert.Contains(t, text, "2024-03-01 12:00:00")
	assert.NotContains(t, text, "supersecretvalue")
	assert.NotContains(t, text, "hunter22hunter22")
}
