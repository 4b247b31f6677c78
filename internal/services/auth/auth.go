// Package auth stores API tokens for the learning-management server in the
// OS keychain, one per server host.
package auth

import (
	"errors"
	"net/url"

	"eduplanner/studysync/internal/util"
)

const ServiceName = "studysync"

var ErrTokenNotFound = errors.New("auth token not found")

type Store interface {
	SetToken(account string, token string) error
	GetToken(account string) (string, error)
	DeleteToken(account string) error
}

// DefaultStore returns the standard auth store backed by the OS keychain.
func DefaultStore() Store {
	return NewKeyringStore(ServiceName)
}

// AccountFor derives the keychain account from an API base URL, so tokens
// for different servers do not collide. Unparseable input is used as is.
func AccountFor(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil || u.Host == "" {
		return NormalizeAccount(apiURL)
	}
	return NormalizeAccount(u.Host)
}

// NormalizeAccount normalizes an account name for consistent key lookup.
func NormalizeAccount(account string) string {
	return util.NormalizeKey(account)
}
