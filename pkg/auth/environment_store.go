package auth

import (
	"os"
	"time"

	"redditstats/pkg/config"
)

// EnvironmentStore reads credentials from the REDDIT_* variables. It is
// read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(*Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment credentials. A non-empty username must
// match REDDIT_USER.
func (e *EnvironmentStore) Retrieve(username string) (*Account, error) {
	account := &Account{
		Username:     os.Getenv(config.EnvUsername),
		Password:     os.Getenv(config.EnvPassword),
		AppID:        os.Getenv(config.EnvAppID),
		Secret:       os.Getenv(config.EnvAppSecret),
		LastModified: time.Now(),
	}

	if account.Validate() != nil {
		return nil, ErrCredentialsNotFound
	}
	if username != "" && username != account.Username {
		return nil, ErrCredentialsNotFound
	}
	return account, nil
}

// List returns the environment account if one is fully configured
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist for username
func (e *EnvironmentStore) Exists(username string) bool {
	_, err := e.Retrieve(username)
	return err == nil
}
