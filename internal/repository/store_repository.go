package repository

import (
	"context"
	"log"
)

// KeyValueStore is a persistent string-to-string store scoped to one
// namespace, the same shape as browser local storage. Get reports a missing
// key with ok == false and a nil error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// RemoveKeys removes every key, logging failures instead of returning them.
// It reports whether all removals succeeded.
func RemoveKeys(ctx context.Context, store KeyValueStore, keys ...string) bool {
	ok := true
	for _, key := range keys {
		if err := store.Remove(ctx, key); err != nil {
			log.Printf("[STORE] Failed to remove %s: %v", key, err)
			ok = false
		}
	}
	return ok
}
