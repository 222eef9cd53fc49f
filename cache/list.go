package cache

import "github.com/IvanBrykalov/texcache/policy"

// -------------------- intrusive MRU/LRU list --------------------

// insertFront inserts id at MRU in O(1).
func (c *Cache[P]) insertFront(id policy.Slot) {
	n := &c.slots[id]
	n.prev = policy.None
	n.next = c.head
	if c.head != policy.None {
		c.slots[c.head].prev = id
	}
	c.head = id
	if c.tail == policy.None {
		c.tail = id
	}
	c.len++
}

// moveToFront promotes id to MRU in O(1).
func (c *Cache[P]) moveToFront(id policy.Slot) {
	if id == c.head {
		return
	}
	n := &c.slots[id]
	// detach
	if n.prev != policy.None {
		c.slots[n.prev].next = n.next
	}
	if n.next != policy.None {
		c.slots[n.next].prev = n.prev
	}
	if c.tail == id {
		c.tail = n.prev
	}
	// insert at head
	n.prev = policy.None
	n.next = c.head
	if c.head != policy.None {
		c.slots[c.head].prev = id
	}
	c.head = id
	if c.tail == policy.None {
		c.tail = id
	}
}

// unlink removes id from the list in O(1). Unlinking a detached slot is a no-op.
func (c *Cache[P]) unlink(id policy.Slot) {
	n := &c.slots[id]
	if n.prev == policy.None && n.next == policy.None && c.head != id {
		return
	}
	if n.prev != policy.None {
		c.slots[n.prev].next = n.next
	}
	if n.next != policy.None {
		c.slots[n.next].prev = n.prev
	}
	if c.head == id {
		c.head = n.next
	}
	if c.tail == id {
		c.tail = n.prev
	}
	n.prev, n.next = policy.None, policy.None
	c.len--
}

// -------------------- policy hooks --------------------

// listHooks adapts the cache's list operations to policy.Hooks.
type listHooks[P Pixel] struct{ c *Cache[P] }

func (h listHooks[P]) MoveToFront(id policy.Slot) { h.c.moveToFront(id) }
func (h listHooks[P]) PushFront(id policy.Slot)   { h.c.insertFront(id) }
func (h listHooks[P]) Remove(id policy.Slot)      { h.c.unlink(id) }
func (h listHooks[P]) Back() policy.Slot          { return h.c.tail }
func (h listHooks[P]) Len() int                   { return h.c.len }
