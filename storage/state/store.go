// Package state defines the shared client-state store: a flat key/value
// space holding cached tenant lists, selected-tenant pointers and user
// preferences. Values are JSON-serializable blobs with no schema versioning;
// a malformed or expired value always reads as absent, never as an error.
package state

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent, expired or unreadable.
var ErrNotFound = errors.New("state entry not found")

type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the whole value stored under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Well-known key builders. Keys are scoped per user; writes are whole-value
// replacements so no cross-key consistency is required.

func TenantListKey(userID string) string      { return "tenants:" + userID }
func TenantFetchedAtKey(userID string) string { return "tenants:" + userID + ":fetched_at" }
func SelectedTenantKey(userID string) string  { return "tenant:selected:" + userID }
func PrefKey(userID, name string) string      { return "pref:" + name + ":" + userID }
