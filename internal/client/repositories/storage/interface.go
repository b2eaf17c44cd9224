package storage

import (
	"context"
)

// Repository is the per-browser key/value store.
//
// SetMany and DeleteMany are atomic: another reader or another process never
// observes only part of a call's keys changed.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)
	SetMany(ctx context.Context, values map[string][]byte) error
	DeleteMany(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// Change describes a committed write.
type Change struct {
	Keys     []string
	Origin   string
	Revision int64
}

// Has reports whether the change touched any of keys. An empty filter, or a
// change whose keys are unknown, always matches.
func (c Change) Has(keys ...string) bool {
	if len(keys) == 0 || len(c.Keys) == 0 {
		return true
	}
	for _, k := range c.Keys {
		for _, want := range keys {
			if k == want {
				return true
			}
		}
	}
	return false
}

// Notifier delivers changes made by other origins.
type Notifier interface {
	Subscribe(origin string, keys ...string) *Subscription
}

// Publisher accepts committed changes.
type Publisher interface {
	Publish(c Change)
}
