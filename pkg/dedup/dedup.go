// Package dedup coalesces concurrent identical operations so that at most one
// underlying call is in flight per key at any time.
package dedup

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Deduplicator maps caller-supplied keys to in-flight operations. All callers
// sharing a key observe the same eventual outcome, success or failure.
type Deduplicator[V any] struct {
	group   singleflight.Group
	mu      sync.Mutex
	pending map[string]struct{}
}

// New creates an empty deduplicator.
func New[V any]() *Deduplicator[V] {
	return &Deduplicator[V]{pending: make(map[string]struct{})}
}

// Execute runs fn under key. If an operation for key is already in flight the
// existing one is joined and fn is not invoked; otherwise fn runs once and its
// registration is dropped when it settles, regardless of how many callers are
// attached.
func (d *Deduplicator[V]) Execute(key string, fn func() (V, error)) (V, error) {
	v, err, _ := d.group.Do(key, func() (interface{}, error) {
		d.mu.Lock()
		d.pending[key] = struct{}{}
		d.mu.Unlock()
		defer func() {
			d.mu.Lock()
			delete(d.pending, key)
			d.mu.Unlock()
		}()
		return fn()
	})
	if v == nil {
		var zero V
		return zero, err
	}
	return v.(V), err
}

// Cancel drops the registration for key. Callers already attached to the
// underlying operation still receive its eventual outcome; this is bookkeeping
// cleanup, not interruption of in-flight work.
func (d *Deduplicator[V]) Cancel(key string) {
	d.group.Forget(key)
	d.mu.Lock()
	delete(d.pending, key)
	d.mu.Unlock()
}

// CancelAll drops every registration.
func (d *Deduplicator[V]) CancelAll() {
	d.mu.Lock()
	keys := make([]string, 0, len(d.pending))
	for k := range d.pending {
		keys = append(keys, k)
	}
	d.pending = make(map[string]struct{})
	d.mu.Unlock()

	for _, k := range keys {
		d.group.Forget(k)
	}
}

// PendingCount reports the number of keys currently registered as in flight.
func (d *Deduplicator[V]) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
