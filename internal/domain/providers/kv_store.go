package providers

import (
	"context"
)

// KVStore defines the string key-value persistence surface used for search
// history, analytics, and experiment state. Implementations return a
// NOT_FOUND application error for missing keys; callers in non-critical
// subsystems treat any error as "no data".
type KVStore interface {
	// Get retrieves the value stored under key
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value
	Set(ctx context.Context, key string, value string) error

	// Delete removes the value stored under key
	Delete(ctx context.Context, key string) error
}
