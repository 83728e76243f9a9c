package trust

import (
	"sort"
	"sync"
)

// ListRegistry holds the whitelist and blacklist membership sets. It is an
// explicit instance, not a package singleton, so tests and multi-tenant
// deployments construct isolated registries. All mutations are serialized;
// reads may proceed concurrently.
type ListRegistry struct {
	mu        sync.RWMutex
	whitelist map[string]struct{}
	blacklist map[string]struct{}
}

// NewListRegistry creates an empty registry.
func NewListRegistry() *ListRegistry {
	return &ListRegistry{
		whitelist: make(map[string]struct{}),
		blacklist: make(map[string]struct{}),
	}
}

// AddToWhitelist inserts source into the whitelist. Idempotent.
func (r *ListRegistry) AddToWhitelist(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.whitelist[source] = struct{}{}
}

// AddToBlacklist inserts source into the blacklist. Idempotent. Blacklist
// membership takes precedence over the whitelist during evaluation.
func (r *ListRegistry) AddToBlacklist(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blacklist[source] = struct{}{}
}

// RemoveFromWhitelist deletes source from the whitelist. Idempotent.
func (r *ListRegistry) RemoveFromWhitelist(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.whitelist, source)
}

// RemoveFromBlacklist deletes source from the blacklist. Idempotent.
func (r *ListRegistry) RemoveFromBlacklist(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.blacklist, source)
}

// Whitelist returns the current whitelist membership, sorted.
func (r *ListRegistry) Whitelist() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.whitelist)
}

// Blacklist returns the current blacklist membership, sorted.
func (r *ListRegistry) Blacklist() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.blacklist)
}

// membership snapshots both flags under one read lock so evaluation never
// observes a half-updated pair.
func (r *ListRegistry) membership(source string) (whitelisted, blacklisted bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, whitelisted = r.whitelist[source]
	_, blacklisted = r.blacklist[source]
	return whitelisted, blacklisted
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
