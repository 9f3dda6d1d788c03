// Package ordered implements an ordered associative container that keeps the
// insertion order of its entries while still giving constant-time access by
// key.
package ordered

import (
	"fmt"

	"github.com/AdguardTeam/golibs/errors"
)

const (
	// ErrKeyNotFound is returned when an operation refers to a key that is not
	// in the map.
	ErrKeyNotFound errors.Error = "key not found"

	// ErrDuplicateKey is returned when inserting a key that is already in the
	// map.
	ErrDuplicateKey errors.Error = "duplicate key"

	// ErrOutOfRange is returned when a position is negative.
	ErrOutOfRange errors.Error = "position out of range"
)

// nilIdx is the arena index used as the "no node" value in links.
const nilIdx = -1

// node is a single entry of the map stored in the arena.
type node[K comparable, V any] struct {
	key  K
	val  V
	prev int
	next int
}

// Map is an ordered map.  Nodes live in a growable arena addressed by integer
// index, the index map gives constant-time lookup, and the prev/next links
// allow constant-time splicing before any existing key.  A zero Map is not
// usable, use [New].
type Map[K comparable, V any] struct {
	// index maps keys to the arena positions of their nodes.
	index map[K]int

	// nodes is the node arena.  Deleted positions are reused through free.
	nodes []node[K, V]

	// free is the stack of unused arena positions.
	free []int

	head int
	tail int
}

// New returns a new empty ordered map.  sizeHint is used to preallocate the
// arena.
func New[K comparable, V any](sizeHint int) (m *Map[K, V]) {
	return &Map[K, V]{
		index: make(map[K]int, sizeHint),
		nodes: make([]node[K, V], 0, sizeHint),
		head:  nilIdx,
		tail:  nilIdx,
	}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() (n int) {
	return len(m.index)
}

// Has returns true if k is in the map.
func (m *Map[K, V]) Has(k K) (ok bool) {
	_, ok = m.index[k]

	return ok
}

// Get returns the value for k and true, or a zero value and false if k is not
// in the map.
func (m *Map[K, V]) Get(k K) (v V, ok bool) {
	i, ok := m.index[k]
	if !ok {
		return v, false
	}

	return m.nodes[i].val, true
}

// Lookup is like [Map.Get] but returns an error wrapping [ErrKeyNotFound] if k
// is not in the map.
func (m *Map[K, V]) Lookup(k K) (v V, err error) {
	v, ok := m.Get(k)
	if !ok {
		return v, fmt.Errorf("%v: %w", k, ErrKeyNotFound)
	}

	return v, nil
}

// Set replaces the value stored under k keeping its position.  It returns an
// error wrapping [ErrKeyNotFound] if k is not in the map.
func (m *Map[K, V]) Set(k K, v V) (err error) {
	i, ok := m.index[k]
	if !ok {
		return fmt.Errorf("%v: %w", k, ErrKeyNotFound)
	}

	m.nodes[i].val = v

	return nil
}

// Append adds the entry to the end of the map.
func (m *Map[K, V]) Append(k K, v V) (err error) {
	i, err := m.alloc(k, v)
	if err != nil {
		return err
	}

	m.linkBefore(i, nilIdx)

	return nil
}

// InsertBefore adds the entry right before the entry with the key successor.
func (m *Map[K, V]) InsertBefore(k K, v V, successor K) (err error) {
	succIdx, ok := m.index[successor]
	if !ok {
		return fmt.Errorf("successor %v: %w", successor, ErrKeyNotFound)
	}

	i, err := m.alloc(k, v)
	if err != nil {
		return err
	}

	m.linkBefore(i, succIdx)

	return nil
}

// InsertAt adds the entry so that it becomes the pos-th entry in the iteration
// order.  A pos greater than or equal to the length appends the entry.  It
// takes O(pos) time.
func (m *Map[K, V]) InsertAt(k K, v V, pos int) (err error) {
	if pos < 0 {
		return fmt.Errorf("position %d: %w", pos, ErrOutOfRange)
	}

	succIdx := m.head
	for ; pos > 0 && succIdx != nilIdx; pos-- {
		succIdx = m.nodes[succIdx].next
	}

	i, err := m.alloc(k, v)
	if err != nil {
		return err
	}

	m.linkBefore(i, succIdx)

	return nil
}

// Delete removes k from the map.  It returns false if k was not in it.
func (m *Map[K, V]) Delete(k K) (ok bool) {
	i, ok := m.index[k]
	if !ok {
		return false
	}

	n := &m.nodes[i]
	if n.prev == nilIdx {
		m.head = n.next
	} else {
		m.nodes[n.prev].next = n.next
	}

	if n.next == nilIdx {
		m.tail = n.prev
	} else {
		m.nodes[n.next].prev = n.prev
	}

	// Drop the references so that the garbage collector can reclaim them.
	*n = node[K, V]{prev: nilIdx, next: nilIdx}

	delete(m.index, k)
	m.free = append(m.free, i)

	return true
}

// IndexOf returns the position of k in the iteration order or -1 if k is not
// in the map.  It takes O(n) time.
func (m *Map[K, V]) IndexOf(k K) (pos int) {
	target, ok := m.index[k]
	if !ok {
		return -1
	}

	for i := m.head; i != nilIdx; i = m.nodes[i].next {
		if i == target {
			return pos
		}

		pos++
	}

	// Must not happen, since the index and the links are kept in sync.
	panic(fmt.Errorf("ordered: key %v is indexed but not linked", k))
}

// Range calls f for each entry in order until f returns false.  f must not
// modify the map.
func (m *Map[K, V]) Range(f func(k K, v V) (cont bool)) {
	for i := m.head; i != nilIdx; i = m.nodes[i].next {
		n := m.nodes[i]
		if !f(n.key, n.val) {
			return
		}
	}
}

// Keys returns the keys in order.
func (m *Map[K, V]) Keys() (keys []K) {
	keys = make([]K, 0, m.Len())
	m.Range(func(k K, _ V) (cont bool) {
		keys = append(keys, k)

		return true
	})

	return keys
}

// alloc stores a new unlinked node in the arena and indexes it.
func (m *Map[K, V]) alloc(k K, v V) (i int, err error) {
	if _, ok := m.index[k]; ok {
		return nilIdx, fmt.Errorf("%v: %w", k, ErrDuplicateKey)
	}

	n := node[K, V]{key: k, val: v, prev: nilIdx, next: nilIdx}
	if l := len(m.free); l > 0 {
		i = m.free[l-1]
		m.free = m.free[:l-1]
		m.nodes[i] = n
	} else {
		i = len(m.nodes)
		m.nodes = append(m.nodes, n)
	}

	m.index[k] = i

	return i, nil
}

// linkBefore links node i right before node succ.  succ being nilIdx means the
// end of the list.
func (m *Map[K, V]) linkBefore(i, succ int) {
	var prev int
	if succ == nilIdx {
		prev = m.tail
		m.tail = i
	} else {
		prev = m.nodes[succ].prev
		m.nodes[succ].prev = i
	}

	m.nodes[i].prev = prev
	m.nodes[i].next = succ

	if prev == nilIdx {
		m.head = i
	} else {
		m.nodes[prev].next = i
	}
}
