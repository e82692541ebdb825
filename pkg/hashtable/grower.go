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
	"math/bits"

	"github.com/daviszhen/vexec/pkg/util"
)

const initialSizeDegree = 8

// Grower is the growth policy: power-of-two bucket counts, linear probing,
// and a fill threshold of half the buckets.
type Grower struct {
	sizeDegree int
}

func NewGrower() Grower {
	return Grower{sizeDegree: initialSizeDegree}
}

func (g Grower) BufSize() int {
	return 1 << g.sizeDegree
}

func (g Grower) mask() uint64 {
	return uint64(g.BufSize() - 1)
}

// Place maps a hash to its first probe position.
func (g Grower) Place(hash uint64) int {
	return int(hash & g.mask())
}

// Next advances a probe chain by one bucket, wrapping around.
func (g Grower) Next(pos int) int {
	return int(uint64(pos+1) & g.mask())
}

// Overflow reports whether elems exceeds the fill threshold. MaxFill is
// half of BufSize, so the table never runs above 50% load.
func (g Grower) Overflow(elems int) bool {
	return elems > g.MaxFill()
}

func (g Grower) MaxFill() int {
	return 1 << (g.sizeDegree - 1)
}

// IncreaseSize at least doubles the buckets; small tables quadruple.
func (g *Grower) IncreaseSize() {
	if g.sizeDegree >= 23 {
		g.sizeDegree += 1
	} else {
		g.sizeDegree += 2
	}
}

// Set sizes the table for an expected element count.
func (g *Grower) Set(numElems int) {
	if numElems <= 1 {
		g.sizeDegree = initialSizeDegree
		return
	}
	// smallest degree with maxFill >= numElems
	degree := bits.Len64(uint64(numElems-1)) + 1
	if degree < initialSizeDegree {
		degree = initialSizeDegree
	}
	g.sizeDegree = degree
}

// SetBufSize adopts an exact power-of-two bucket count.
func (g *Grower) SetBufSize(bufSize int) {
	util.AssertFunc(bufSize > 0 && util.IsPowerOfTwo(uint64(bufSize)))
	g.sizeDegree = bits.Len64(uint64(bufSize)) - 1
}
