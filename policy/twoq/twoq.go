// Package twoq implements the 2Q eviction policy.
//
// For a texture cache 2Q keeps a fly-through (every polygon of a sector seen
// once) from flushing the surfaces that are lit every frame.
package twoq

import (
	"container/list"

	"github.com/IvanBrykalov/texcache/policy"
)

// twoQ implements the 2Q eviction policy.
//
// Resident queues:
//   - A1in (younger queue): its own list + index by slot; admits first-time entries
//   - Am   (mature queue):  slots not present in inIdx; ordering is driven by cache hooks
//
// Ghost A1out: slots only, tracks recently evicted A1in entries to give them
// a second chance (bypass A1in on re-admission). Slots are recycled by the
// cache after Release, so a ghost hit on a recycled slot only skips probation.
type twoQ struct {
	h policy.Hooks

	capIn    int // A1in capacity
	capGhost int // A1out (ghost) capacity

	// A1in: MRU at Front() -> LRU at Back()
	inList *list.List
	inIdx  map[policy.Slot]*list.Element

	// A1out (ghosts): MRU at Front() -> LRU at Back()
	ghostList *list.List
	ghostIdx  map[policy.Slot]*list.Element
}

// New constructs a 2Q policy factory.
// Common choices: capIn ≈ 25% of the expected resident entries; capGhost ≈ 50–100%.
func New(capIn, capGhost int) policy.Policy {
	if capIn < 1 {
		capIn = 1
	}
	if capGhost < 1 {
		capGhost = 1
	}
	return twoQPolicy{capIn: capIn, capGhost: capGhost}
}

type twoQPolicy struct {
	capIn    int
	capGhost int
}

func (p twoQPolicy) New(h policy.Hooks) policy.ListPolicy {
	return &twoQ{
		h:         h,
		capIn:     p.capIn,
		capGhost:  p.capGhost,
		inList:    list.New(),
		inIdx:     make(map[policy.Slot]*list.Element),
		ghostList: list.New(),
		ghostIdx:  make(map[policy.Slot]*list.Element),
	}
}

// OnAdd admission rules:
//   - If the slot is a ghost (A1out), bypass A1in and admit directly to Am (MRU).
//   - Otherwise admit into A1in (and MRU in the cache list via hooks).
//   - If A1in overflows, return its LRU candidate to the cache for eviction.
func (q *twoQ) OnAdd(s policy.Slot) (evict policy.Slot) {
	if ge, ok := q.ghostIdx[s]; ok {
		q.ghostList.Remove(ge)
		delete(q.ghostIdx, s)
		q.h.PushFront(s)
		return policy.None
	}

	q.h.PushFront(s)
	q.inIdx[s] = q.inList.PushFront(s)

	if q.inList.Len() > q.capIn {
		if lruEl := q.inList.Back(); lruEl != nil {
			return lruEl.Value.(policy.Slot)
		}
	}
	return policy.None
}

// OnGet: if the slot was in A1in, remove it from A1in (promotion to Am),
// then move it to MRU in the cache list.
func (q *twoQ) OnGet(s policy.Slot) {
	if el, ok := q.inIdx[s]; ok {
		q.inList.Remove(el)
		delete(q.inIdx, s)
	}
	q.h.MoveToFront(s)
}

// OnRemove:
//   - If the slot was in A1in, remember it in ghosts (A1out), respecting capGhost.
//   - Removals from Am do NOT populate ghosts.
func (q *twoQ) OnRemove(s policy.Slot) {
	el, ok := q.inIdx[s]
	if !ok {
		return
	}
	q.inList.Remove(el)
	delete(q.inIdx, s)

	if old := q.ghostIdx[s]; old != nil {
		q.ghostList.Remove(old)
	}
	q.ghostIdx[s] = q.ghostList.PushFront(s)

	for q.ghostList.Len() > q.capGhost {
		tail := q.ghostList.Back()
		if tail == nil {
			break
		}
		delete(q.ghostIdx, tail.Value.(policy.Slot))
		q.ghostList.Remove(tail)
	}
}
