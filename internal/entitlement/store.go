// Package entitlement persists which cities have been unlocked on this
// installation. The record is advisory client state: no expiry, no sync.
package entitlement

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("entitlement not found")

// Key prefixes used in durable storage.
const (
	PrefixCode    = "code-"
	PrefixLicense = "license-"
)

// Backend is a durable key-value store for unlock codes.
type Backend interface {
	// Get returns ErrNotFound when no code is stored under key.
	Get(ctx context.Context, key string) (string, error)
	// Put stores code under key, replacing any previous value.
	Put(ctx context.Context, key, code string) error
}

// Store answers "is this city unlocked" on top of a Backend. The demo city
// is always unlocked without a stored record.
type Store struct {
	backend Backend
	prefix  string
	demo    string
}

// New returns a Store writing keys as <prefix><cityKey>. demoKey names the
// city that is free for everyone.
func New(backend Backend, prefix, demoKey string) *Store {
	return &Store{backend: backend, prefix: prefix, demo: demoKey}
}

func (s *Store) IsUnlocked(ctx context.Context, cityKey string) (bool, error) {
	if cityKey == s.demo {
		return true, nil
	}
	_, err := s.Get(ctx, cityKey)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Unlock(ctx context.Context, cityKey, code string) error {
	if cityKey == "" {
		return errors.New("empty city key")
	}
	if err := s.backend.Put(ctx, s.prefix+cityKey, code); err != nil {
		return fmt.Errorf("storing entitlement for %s: %w", cityKey, err)
	}
	return nil
}

// Get returns the stored code for cityKey, or ErrNotFound.
func (s *Store) Get(ctx context.Context, cityKey string) (string, error) {
	code, err := s.backend.Get(ctx, s.prefix+cityKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("reading entitlement for %s: %w", cityKey, err)
	}
	return code, err
}
