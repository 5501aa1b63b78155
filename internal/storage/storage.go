// Package storage keeps the small amount of state the console remembers per
// browser: the API token, the cached profile and PIN gate grants.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Well-known keys.
const (
	KeyAuthToken   = "auth_token"
	KeyUserProfile = "user_profile"
)

// GateKey is the key holding the access grant of a gated section.
func GateKey(section string) string {
	return "gate:" + section
}

// Storage is an independent key/value store. Reads of missing keys return
// ok == false and no error.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Nop is the storage of a context without a browser: nothing is ever found
// and writes are dropped.
type Nop struct{}

func (Nop) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (Nop) Set(context.Context, string, string) error         { return nil }
func (Nop) Remove(context.Context, string) error              { return nil }

type scoped struct {
	backend Storage
	prefix  string
}

// Scoped namespaces every key of backend under one browser's client id.
// An empty client id yields Nop.
func Scoped(backend Storage, clientID string) Storage {
	if backend == nil || strings.TrimSpace(clientID) == "" {
		return Nop{}
	}
	return &scoped{backend: backend, prefix: "client:" + clientID + ":"}
}

func (s *scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.backend.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.backend.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Remove(ctx context.Context, key string) error {
	return s.backend.Remove(ctx, s.prefix+key)
}

// GetJSON decodes the value under key into out. ok is false when the key is
// missing; a value that does not decode is reported as an error.
func GetJSON(ctx context.Context, s Storage, key string, out any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Storage, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
