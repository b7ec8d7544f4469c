// Package auth stores Reddit API credentials between runs.
//
// A credential is an Account: the script application's id and secret plus
// the username and password it signs in as. The Manager tries, in order,
// the system keychain (go-keyring), an AES-GCM encrypted file under the
// user's config directory, and the REDDIT_* environment variables, which
// are read-only. The search command uses Manager.ApplyTo to fill settings
// the configuration leaves empty.
package auth
