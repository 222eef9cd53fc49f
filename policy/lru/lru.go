// Package lru implements the LRU eviction policy.
package lru

import "github.com/IvanBrykalov/texcache/policy"

// lru is a classic "move-to-front" Least-Recently-Used policy.
// It delegates list manipulation to policy.Hooks provided by the cache.
type lru struct {
	h policy.Hooks
}

type lruPolicy struct{}

// New returns a Policy factory that constructs LRU instances.
func New() policy.Policy { return lruPolicy{} }

// New implements policy.Policy by binding cache hooks.
func (lruPolicy) New(h policy.Hooks) policy.ListPolicy {
	return &lru{h: h}
}

// OnAdd places the new entry at MRU. LRU itself doesn't choose evictions;
// the cache evicts from the tail when the texel pool is full.
func (p *lru) OnAdd(s policy.Slot) (evict policy.Slot) {
	p.h.PushFront(s)
	return policy.None
}

// OnGet promotes the entry to MRU.
func (p *lru) OnGet(s policy.Slot) { p.h.MoveToFront(s) }

// OnRemove is a no-op for pure LRU.
func (p *lru) OnRemove(policy.Slot) {}
