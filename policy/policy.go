// Package policy defines the pluggable eviction policy used by the texture
// cache. Policies see cache entries only as slot indices and drive the
// cache's intrusive MRU/LRU list through Hooks.
package policy

// Slot identifies a cache entry by its index in the owning cache's slot table.
type Slot int32

// None is the "no slot" sentinel returned by Back on an empty list and by
// OnAdd when the policy has no eviction candidate.
const None Slot = -1

// Hooks expose O(1) list operations that a policy can use to manipulate
// the cache's intrusive MRU/LRU list. Implementations are provided by the cache.
//
// Important: hooks manage only the list; the cache owns the slot table and the
// texel pool.
type Hooks interface {
	// MoveToFront promotes the slot to MRU.
	MoveToFront(Slot)
	// PushFront inserts the slot at MRU (used on admission).
	PushFront(Slot)
	// Remove detaches the slot from the list.
	Remove(Slot)
	// Back returns the current LRU slot (or None if empty).
	Back() Slot
	// Len returns the number of resident entries.
	Len() int
}

// ListPolicy is a policy instance bound to one cache's hooks.
//
// Semantics:
//   - OnAdd may return an eviction candidate (e.g., LRU of a probation queue).
//     The cache will evict that slot and subsequently call OnRemove for it.
//   - OnGet typically promotes the slot (e.g., move to MRU). A relight of a
//     resident entry is not a use and produces no callback.
//   - OnRemove is a notification to update policy-internal state
//     (e.g., maintain ghost queues). The cache performs the actual unlink.
type ListPolicy interface {
	OnAdd(Slot) (evict Slot)
	OnGet(Slot)
	OnRemove(Slot)
}

// Policy is a factory that creates cache-local policy instances.
type Policy interface {
	New(Hooks) ListPolicy
}
