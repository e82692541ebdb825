// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hashtable

import (
	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/util"
)

// Key is the set of integer key types. The zero value doubles as the
// empty-bucket sentinel, so zero keys live in an out-of-band slot.
type Key interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint | ~uintptr
}

// Cell is one bucket: key, mapped value and the key's hash. The hash is
// cached so resize re-probes without rehashing. Cells move by plain copy
// during resize, so V must not hold interior pointers into the cell itself.
type Cell[K Key, V any] struct {
	key  K
	hash uint64
	Val  V
}

func (c *Cell[K, V]) Key() K {
	return c.key
}

func (c *Cell[K, V]) isZero() bool {
	return c.key == 0
}

// Allocator hands out bucket arrays. It is a seam for tests that force an
// allocation failure during resize.
type Allocator[K Key, V any] interface {
	Alloc(n int) ([]Cell[K, V], error)
}

type sliceAllocator[K Key, V any] struct{}

func (sliceAllocator[K, V]) Alloc(n int) ([]Cell[K, V], error) {
	return make([]Cell[K, V], n), nil
}

// KeyHolder stages a key for emplace. Persist fires when the key claims a
// new cell, Discard when an equal key already occupies one; holders that
// stage keys in temporary storage (an arena) use them to commit or release
// it. Integer keys need neither.
type KeyHolder[K Key] struct {
	Key     K
	Persist func()
	Discard func()
}

// HashMap is an open-addressing table with linear probing and no deletion.
// Not safe for concurrent use; callers serialize access.
type HashMap[K Key, V any] struct {
	buf     []Cell[K, V]
	grower  Grower
	size    int
	hasZero bool
	zero    Cell[K, V]
	alloc   Allocator[K, V]
	owner   util.Owner
}

func NewHashMap[K Key, V any]() *HashMap[K, V] {
	return NewHashMapWithAllocator[K, V](sliceAllocator[K, V]{})
}

func NewHashMapWithAllocator[K Key, V any](alloc Allocator[K, V]) *HashMap[K, V] {
	m := &HashMap[K, V]{
		grower: NewGrower(),
		alloc:  alloc,
	}
	buf, err := alloc.Alloc(m.grower.BufSize())
	if err != nil {
		panic(err)
	}
	m.buf = buf
	return m
}

func (m *HashMap[K, V]) Hash(key K) uint64 {
	return util.IntHash64(uint64(key))
}

// Size counts distinct keys, the zero key included.
func (m *HashMap[K, V]) Size() int {
	return m.size
}

func (m *HashMap[K, V]) Empty() bool {
	return m.size == 0
}

func (m *HashMap[K, V]) BufSize() int {
	return len(m.buf)
}

// Find returns the cell holding key, or nil on a miss.
func (m *HashMap[K, V]) Find(key K) *Cell[K, V] {
	return m.FindWithHash(key, m.Hash(key))
}

func (m *HashMap[K, V]) FindWithHash(key K, hash uint64) *Cell[K, V] {
	if key == 0 {
		if m.hasZero {
			return &m.zero
		}
		return nil
	}
	pos := m.grower.Place(hash)
	for !m.buf[pos].isZero() {
		if m.buf[pos].key == key {
			return &m.buf[pos]
		}
		pos = m.grower.Next(pos)
	}
	return nil
}

// Emplace inserts key if absent and returns its cell. On a resize failure
// the just-inserted cell is rolled back before the error returns: no
// partial state survives.
func (m *HashMap[K, V]) Emplace(key K) (*Cell[K, V], bool, error) {
	return m.EmplaceKeyHolder(KeyHolder[K]{Key: key})
}

func (m *HashMap[K, V]) EmplaceKeyHolder(kh KeyHolder[K]) (*Cell[K, V], bool, error) {
	m.owner.Enter()
	defer m.owner.Leave()
	key := kh.Key
	if key == 0 {
		if m.hasZero {
			if kh.Discard != nil {
				kh.Discard()
			}
			return &m.zero, false, nil
		}
		m.hasZero = true
		m.zero.key = 0
		m.size++
		if kh.Persist != nil {
			kh.Persist()
		}
		return &m.zero, true, nil
	}

	hash := m.Hash(key)
	pos := m.grower.Place(hash)
	for !m.buf[pos].isZero() {
		if m.buf[pos].key == key {
			if kh.Discard != nil {
				kh.Discard()
			}
			return &m.buf[pos], false, nil
		}
		pos = m.grower.Next(pos)
	}

	m.buf[pos].key = key
	m.buf[pos].hash = hash
	m.size++
	if kh.Persist != nil {
		kh.Persist()
	}

	if m.grower.Overflow(m.size) {
		if err := m.resize(); err != nil {
			var zero Cell[K, V]
			m.buf[pos] = zero
			m.size--
			return nil, false, err
		}
		cell := m.FindWithHash(key, hash)
		util.AssertFunc(cell != nil)
		return cell, true, nil
	}
	return &m.buf[pos], true, nil
}

// GetOrInsert returns a pointer to key's value, inserting the zero value
// first when the key is new.
func (m *HashMap[K, V]) GetOrInsert(key K) (*V, error) {
	cell, _, err := m.Emplace(key)
	if err != nil {
		return nil, err
	}
	return &cell.Val, nil
}

func (m *HashMap[K, V]) resize() error {
	newGrower := m.grower
	newGrower.IncreaseSize()
	newBuf, err := m.alloc.Alloc(newGrower.BufSize())
	if err != nil {
		return common.WrapError(common.CannotAllocateMemory, err,
			"cannot allocate %d hash table buckets", newGrower.BufSize())
	}
	oldSize := len(m.buf)
	copy(newBuf, m.buf)
	m.buf = newBuf
	m.grower = newGrower

	// Re-probe old cells in index order. A chain that wrapped around the
	// old buffer end may leave displaced cells right after it; the tail
	// pass walks them until the first empty bucket.
	for i := 0; i < oldSize; i++ {
		if !m.buf[i].isZero() {
			m.reinsert(i)
		}
	}
	for i := oldSize; i < len(m.buf) && !m.buf[i].isZero(); i++ {
		m.reinsert(i)
	}
	return nil
}

func (m *HashMap[K, V]) reinsert(i int) {
	pos := m.grower.Place(m.buf[i].hash)
	if pos == i {
		return
	}
	for !m.buf[pos].isZero() && pos != i {
		pos = m.grower.Next(pos)
	}
	if pos == i {
		return
	}
	m.buf[pos] = m.buf[i]
	var zero Cell[K, V]
	m.buf[i] = zero
}

// Reserve grows the bucket array up front for an expected element count.
func (m *HashMap[K, V]) Reserve(numElems int) error {
	m.owner.Enter()
	defer m.owner.Leave()
	newGrower := m.grower
	newGrower.Set(numElems)
	if newGrower.BufSize() <= len(m.buf) {
		return nil
	}
	saved := m.grower
	m.grower = newGrower
	newBuf, err := m.alloc.Alloc(newGrower.BufSize())
	if err != nil {
		m.grower = saved
		return common.WrapError(common.CannotAllocateMemory, err,
			"cannot allocate %d hash table buckets", newGrower.BufSize())
	}
	oldBuf := m.buf
	m.buf = newBuf
	for i := range oldBuf {
		if !oldBuf[i].isZero() {
			m.emplaceClean(oldBuf[i])
		}
	}
	return nil
}

// emplaceClean inserts a cell known to be absent into a fresh buffer.
func (m *HashMap[K, V]) emplaceClean(cell Cell[K, V]) {
	pos := m.grower.Place(cell.hash)
	for !m.buf[pos].isZero() {
		pos = m.grower.Next(pos)
	}
	m.buf[pos] = cell
}

// ForEach visits the zero slot first, then buckets in index order.
// Insertion order is not preserved.
func (m *HashMap[K, V]) ForEach(fn func(key K, val *V)) {
	if m.hasZero {
		fn(0, &m.zero.Val)
	}
	for i := range m.buf {
		if !m.buf[i].isZero() {
			fn(m.buf[i].key, &m.buf[i].Val)
		}
	}
}

// MergeToViaEmplace folds this table into dst, inserting missing keys. fn
// sees dst's value cell and whether it was just created; src values stay
// untouched.
func (m *HashMap[K, V]) MergeToViaEmplace(dst *HashMap[K, V], fn func(dstVal *V, srcVal *V, inserted bool)) error {
	var mergeErr error
	m.ForEach(func(key K, val *V) {
		if mergeErr != nil {
			return
		}
		cell, inserted, err := dst.Emplace(key)
		if err != nil {
			mergeErr = err
			return
		}
		fn(&cell.Val, val, inserted)
	})
	return mergeErr
}

// MergeToViaFind folds this table into dst without inserting: fn learns
// whether dst already had the key.
func (m *HashMap[K, V]) MergeToViaFind(dst *HashMap[K, V], fn func(dstVal *V, srcVal *V, found bool)) {
	m.ForEach(func(key K, val *V) {
		cell := dst.Find(key)
		if cell == nil {
			var none V
			fn(&none, val, false)
		} else {
			fn(&cell.Val, val, true)
		}
	})
}

func (m *HashMap[K, V]) Clear() {
	m.owner.Enter()
	defer m.owner.Leave()
	for i := range m.buf {
		var zero Cell[K, V]
		m.buf[i] = zero
	}
	var zero Cell[K, V]
	m.zero = zero
	m.hasZero = false
	m.size = 0
}
