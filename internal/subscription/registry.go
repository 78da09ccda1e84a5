package subscription

import (
	"sort"
	"sync"
)

// Registry holds the desired subscription set: market code → channel set.
//
// One registry-wide mutex serializes mutation against the reads used to
// build resubscription frames; reconciliation always spans every market
// registered for a channel type, so finer locking buys nothing.
type Registry struct {
	mu   sync.Mutex
	subs map[string]map[Channel]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]map[Channel]struct{})}
}

// Add registers markets under a channel type and returns the full sorted
// list of market codes now registered for that channel, not just the new
// ones. Subscribe frames always carry the complete set.
func (r *Registry) Add(ch Channel, markets ...string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, market := range markets {
		channels, ok := r.subs[market]
		if !ok {
			channels = make(map[Channel]struct{})
			r.subs[market] = channels
		}
		channels[ch] = struct{}{}
	}

	return r.marketsLocked(ch)
}

// Remove deletes the given channels for a market, or every channel when
// none are named. A market whose channel set becomes empty is dropped.
// Returns false if the market was not registered.
func (r *Registry) Remove(market string, channels ...Channel) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.subs[market]
	if !ok {
		return false
	}

	if len(channels) == 0 {
		delete(r.subs, market)
		return true
	}

	for _, ch := range channels {
		delete(existing, ch)
	}
	if len(existing) == 0 {
		delete(r.subs, market)
	}
	return true
}

// Markets returns the sorted market codes registered under a channel type.
func (r *Registry) Markets(ch Channel) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.marketsLocked(ch)
}

// Snapshot returns the market list for every channel type that has at
// least one market, in a single critical section.
func (r *Registry) Snapshot() map[Channel][]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[Channel][]string)
	for _, ch := range Channels {
		if codes := r.marketsLocked(ch); len(codes) > 0 {
			out[ch] = codes
		}
	}
	return out
}

// HasPrivate reports whether any registered channel requires authentication.
func (r *Registry) HasPrivate() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, channels := range r.subs {
		for ch := range channels {
			if ch.Private() {
				return true
			}
		}
	}
	return false
}

// Empty reports whether no subscriptions are registered.
func (r *Registry) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs) == 0
}

// Len returns the number of registered markets.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

func (r *Registry) marketsLocked(ch Channel) []string {
	var codes []string
	for market, channels := range r.subs {
		if _, ok := channels[ch]; ok {
			codes = append(codes, market)
		}
	}
	sort.Strings(codes)
	return codes
}
