package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// ErrEmptyToken is returned when asked to store a blank token.
var ErrEmptyToken = errors.New("auth token is empty")

// KeyringStore keeps one token per server host in the OS keychain under
// a single service name.
type KeyringStore struct {
	service string
}

func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = ServiceName
	}
	return &KeyringStore{service: service}
}

func (k *KeyringStore) SetToken(account string, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	if err := keyring.Set(k.service, NormalizeAccount(account), token); err != nil {
		return fmt.Errorf("auth: keychain write for %s: %w", NormalizeAccount(account), err)
	}
	return nil
}

func (k *KeyringStore) GetToken(account string) (string, error) {
	token, err := keyring.Get(k.service, NormalizeAccount(account))
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", ErrTokenNotFound
	case err != nil:
		return "", fmt.Errorf("auth: keychain read for %s: %w", NormalizeAccount(account), err)
	}
	return token, nil
}

func (k *KeyringStore) DeleteToken(account string) error {
	err := keyring.Delete(k.service, NormalizeAccount(account))
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return ErrTokenNotFound
	case err != nil:
		return fmt.Errorf("auth: keychain delete for %s: %w", NormalizeAccount(account), err)
	}
	return nil
}
