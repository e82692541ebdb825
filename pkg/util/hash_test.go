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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashBytesDeterministic(t *testing.T) {
	data := []byte("the quick brown fox")
	h1 := HashBytes(BytesSliceToPointer(data), uint64(len(data)))
	h2 := HashBytes(BytesSliceToPointer(data), uint64(len(data)))
	assert.Equal(t, h1, h2)

	other := []byte("the quick brown foX")
	h3 := HashBytes(BytesSliceToPointer(other), uint64(len(other)))
	assert.NotEqual(t, h1, h3)
}

func TestHashBytesTailLengths(t *testing.T) {
	// every tail length of the block loop
	seen := make(map[uint64]bool)
	for n := 1; n <= 16; n++ {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i + 1)
		}
		h := HashBytes(BytesSliceToPointer(data), uint64(n))
		assert.False(t, seen[h])
		seen[h] = true
	}
}

func TestIntHash64(t *testing.T) {
	assert.Equal(t, IntHash64(42), IntHash64(42))
	assert.NotEqual(t, IntHash64(42), IntHash64(43))
}

func TestHasherOrderSensitive(t *testing.T) {
	h1 := NewHasher()
	h1.Update([]byte{1})
	h1.Update([]byte{2})

	h2 := NewHasher()
	h2.Update([]byte{2})
	h2.Update([]byte{1})

	assert.NotEqual(t, h1.Sum64(), h2.Sum64())
}

func TestHasherFlagDistinguishes(t *testing.T) {
	// a null row and a non-null row with default payload must differ
	h1 := NewHasher()
	h1.UpdateByte(1)

	h2 := NewHasher()
	h2.UpdateByte(0)
	h2.Update(make([]byte, 8))

	assert.NotEqual(t, h1.Sum64(), h2.Sum64())
}

func TestHasherReset(t *testing.T) {
	h := NewHasher()
	h.Update([]byte("abc"))
	sum := h.Sum64()
	h.Reset()
	h.Update([]byte("abc"))
	assert.Equal(t, sum, h.Sum64())
}
