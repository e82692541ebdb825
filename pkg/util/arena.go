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

package util

import (
	"unsafe"
)

const (
	arenaMinChunkSize = 4096
)

// Arena is a bump allocator. Allocations stay valid until the arena itself is
// released; there is no per-object free.
type Arena struct {
	chunks    [][]byte
	head      []byte
	used      int
	allocated int
}

func NewArena() *Arena {
	return &Arena{}
}

func (a *Arena) grow(atLeast int) {
	sz := arenaMinChunkSize
	if len(a.head)*2 > sz {
		sz = len(a.head) * 2
	}
	if atLeast > sz {
		sz = int(NextPowerOfTwo(uint64(atLeast)))
	}
	a.head = make([]byte, sz)
	a.chunks = append(a.chunks, a.head)
	a.used = 0
	a.allocated += sz
}

// Alloc returns a zeroed byte range of the given size.
func (a *Arena) Alloc(sz int) []byte {
	if sz == 0 {
		return nil
	}
	if a.used+sz > len(a.head) {
		a.grow(sz)
	}
	res := a.head[a.used : a.used+sz : a.used+sz]
	a.used += sz
	return res
}

// AllocAligned returns a zeroed byte range whose first byte is aligned to
// align (a power of two).
func (a *Arena) AllocAligned(sz int, align int) []byte {
	AssertFunc(align > 0 && IsPowerOfTwo(uint64(align)))
	if a.used+sz+align > len(a.head) {
		a.grow(sz + align)
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.head)))
	pad := int(AlignValue(uint64(base)+uint64(a.used), uint64(align)) - (uint64(base) + uint64(a.used)))
	a.used += pad
	return a.Alloc(sz)
}

// AllocContinue extends the contiguous run started at *begin by sz bytes and
// returns the new tail. If the current chunk cannot hold the extension the
// whole run is copied to a fresh chunk first, so the run stays contiguous.
// A nil *begin starts a new run.
func (a *Arena) AllocContinue(sz int, begin *[]byte) []byte {
	if sz == 0 {
		if *begin == nil {
			*begin = a.head[a.used:a.used]
		}
		return nil
	}
	contiguous := *begin != nil &&
		len(a.head) > 0 &&
		a.used >= len(*begin) &&
		unsafe.SliceData(a.head[a.used-len(*begin):]) == unsafe.SliceData(*begin)
	if contiguous && a.used+sz <= len(a.head) {
		res := a.head[a.used : a.used+sz : a.used+sz]
		a.used += sz
		*begin = (*begin)[:len(*begin)+sz]
		return res
	}

	prevLen := len(*begin)
	if a.used+prevLen+sz > len(a.head) {
		a.grow(prevLen + sz)
	}
	run := a.head[a.used : a.used+prevLen+sz : a.used+prevLen+sz]
	copy(run, *begin)
	a.used += prevLen + sz
	*begin = run
	return run[prevLen:]
}

// AllocatedBytes reports the total chunk memory owned by the arena.
func (a *Arena) AllocatedBytes() int {
	return a.allocated
}

// Release drops every chunk. All previously returned ranges become invalid.
func (a *Arena) Release() {
	a.chunks = nil
	a.head = nil
	a.used = 0
	a.allocated = 0
}
