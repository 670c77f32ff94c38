package events

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Deduplicator wraps a Listener and suppresses duplicate lifecycle events.
//
// When streams are composed in a diamond (two delegating layers forwarding
// onto the same base factory), a listener registered on the outer registry
// can end up registered on the base registry twice and would see every
// lifecycle event twice. Lifecycle kinds occur at most once per connection,
// so an LRU of seen (endpoint, conn, kind) keys filters the duplicates.
// Byte-counter kinds repeat legitimately and pass through untouched.
type Deduplicator struct {
	next  Listener
	cache *lru.Cache[string, bool]
}

// NewDeduplicator wraps next with a dedup window of size entries.
func NewDeduplicator(next Listener, size int) (*Deduplicator, error) {
	cache, err := lru.New[string, bool](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &Deduplicator{next: next, cache: cache}, nil
}

// OnEvent implements Listener. The seen-check and the insert are one atomic
// cache operation, so concurrent duplicates cannot both pass.
func (d *Deduplicator) OnEvent(ev Event) {
	if key := dedupKey(ev); key != "" {
		if seen, _ := d.cache.ContainsOrAdd(key, true); seen {
			return
		}
	}
	d.next.OnEvent(ev)
}

// Len returns the current number of remembered keys.
func (d *Deduplicator) Len() int {
	return d.cache.Len()
}

// Clear forgets all remembered keys.
func (d *Deduplicator) Clear() {
	d.cache.Purge()
}

// dedupKey returns the identity key for lifecycle events, or "" for kinds
// that must never be deduplicated.
func dedupKey(ev Event) string {
	switch ev.Kind {
	case KindConnectStart, KindConnectSuccess, KindConnectFailed, KindConnClosed:
		return fmt.Sprintf("%s:%d:%s", ev.Endpoint, ev.ConnID, ev.Kind)
	default:
		return ""
	}
}
