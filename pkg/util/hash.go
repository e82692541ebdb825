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
	M    uint64 = 0xc6a4a7935bd1e995
	SEED uint64 = 0xe17a1465
	R    uint64 = 47
)

func HashBytes(ptr unsafe.Pointer, len uint64) uint64 {
	data64 := ptr
	h := SEED ^ (len * M)

	nBlocks := len / 8
	for i := uint64(0); i < nBlocks; i++ {
		k := Load[uint64](PointerAdd(data64, int(i*8)))
		k *= M
		k ^= k >> R
		k *= M

		h ^= k
		h *= M
	}
	data8 := PointerAdd(data64, int(nBlocks*8))
	switch len & 7 {
	case 7:
		val := Load[byte](PointerAdd(data8, 6))
		h ^= uint64(val) << 48
		fallthrough
	case 6:
		val := Load[byte](PointerAdd(data8, 5))
		h ^= uint64(val) << 40
		fallthrough
	case 5:
		val := Load[byte](PointerAdd(data8, 4))
		h ^= uint64(val) << 32
		fallthrough
	case 4:
		val := Load[byte](PointerAdd(data8, 3))
		h ^= uint64(val) << 24
		fallthrough
	case 3:
		val := Load[byte](PointerAdd(data8, 2))
		h ^= uint64(val) << 16
		fallthrough
	case 2:
		val := Load[byte](PointerAdd(data8, 1))
		h ^= uint64(val) << 8
		fallthrough
	case 1:
		val := Load[byte](data8)
		h ^= uint64(val)
		h *= M
		fallthrough
	default:
		break
	}
	h ^= h >> R
	h *= M
	h ^= h >> R
	return h
}

func IntHash64(x uint64) uint64 {
	x ^= x >> 32
	x *= 0xd6e8feb86659fd93
	x ^= x >> 32
	x *= 0xd6e8feb86659fd93
	x ^= x >> 32
	return x
}

func CombineHash(a, b uint64) uint64 {
	return (a * 0xbf58476d1ce4e5b9) ^ b
}

// Hasher is a running order-sensitive hash accumulator. Composite values
// (null flag + nested bytes) hash as the concatenation of Update calls.
type Hasher struct {
	h uint64
}

func NewHasher() *Hasher {
	return &Hasher{h: SEED}
}

func (hs *Hasher) Update(data []byte) {
	if len(data) == 0 {
		hs.h = CombineHash(hs.h, 0)
		return
	}
	hs.h = CombineHash(hs.h, HashBytes(BytesSliceToPointer(data), uint64(len(data))))
}

func (hs *Hasher) UpdateByte(b byte) {
	hs.Update([]byte{b})
}

func (hs *Hasher) Sum64() uint64 {
	return hs.h
}

func (hs *Hasher) Reset() {
	hs.h = SEED
}
