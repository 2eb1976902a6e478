// Package cache provides a bounded LRU cache used for the layered shaping
// caches of textlayout: per-font shaping data, variable-font instances and
// compiled shape plans.
//
// The cache is intentionally not lock-protected: a cache belongs to one
// FontContext, which is owned by a single goroutine during a build. Callers
// that share a FontContext across goroutines must synchronize externally.
package cache

// lruNode is a node in a doubly-linked LRU list.
// The node stores its key for O(1) deletion from the parent map.
type lruNode[K comparable, V any] struct {
	key   K
	value V
	prev  *lruNode[K, V]
	next  *lruNode[K, V]
}

// lruList is a doubly-linked list for LRU eviction.
// The head is the most recently used, the tail the least recently used.
type lruList[K comparable, V any] struct {
	head *lruNode[K, V]
	tail *lruNode[K, V]
	len  int
}

// pushFront adds a new node at the front (most recently used).
func (l *lruList[K, V]) pushFront(node *lruNode[K, V]) {
	if l.head == nil {
		l.head = node
		l.tail = node
	} else {
		node.next = l.head
		l.head.prev = node
		l.head = node
	}
	l.len++
}

// moveToFront moves an existing node to the front (most recently used).
func (l *lruList[K, V]) moveToFront(node *lruNode[K, V]) {
	if node == l.head {
		return
	}
	l.unlink(node)
	node.prev = nil
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.len++
}

// removeOldest unlinks and returns the least recently used node.
// Returns nil if the list is empty.
func (l *lruList[K, V]) removeOldest() *lruNode[K, V] {
	if l.tail == nil {
		return nil
	}
	node := l.tail
	l.unlink(node)
	return node
}

// unlink removes a node from the list.
func (l *lruList[K, V]) unlink(node *lruNode[K, V]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
	l.len--
}

// clear drops all nodes.
func (l *lruList[K, V]) clear() {
	l.head = nil
	l.tail = nil
	l.len = 0
}
