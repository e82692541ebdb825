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

package column

import (
	"fmt"

	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/util"
)

// ColumnConst broadcasts a single value: it wraps one column of size 1 plus
// a repeat count. Inserts only bump the count, the payload never grows.
type ColumnConst struct {
	data Column
	s    int
}

// NewConst squashes const-of-const chains so the wrapped column is never
// itself const, and rejects a data column whose size is not 1.
func NewConst(data Column, s int) (*ColumnConst, error) {
	for {
		inner, ok := data.(*ColumnConst)
		if !ok {
			break
		}
		data = inner.data
	}
	if data.Size() != 1 {
		return nil, common.NewError(common.SizesOfColumnsDontMatch,
			"incorrect size of nested column in constructor of ColumnConst: %d, must be 1",
			data.Size())
	}
	return &ColumnConst{data: data, s: s}, nil
}

func (c *ColumnConst) DataColumn() Column {
	return c.data
}

func (c *ColumnConst) Name() string {
	return fmt.Sprintf("Const(%s)", c.data.Name())
}

func (c *ColumnConst) Type() common.LType {
	return c.data.Type()
}

func (c *ColumnConst) Size() int {
	return c.s
}

func (c *ColumnConst) GetField(n int) Field {
	util.AssertFunc(n < c.s)
	return c.data.GetField(0)
}

func (c *ColumnConst) GetDataAt(n int) ([]byte, error) {
	util.AssertFunc(n < c.s)
	return c.data.GetDataAt(0)
}

func (c *ColumnConst) InsertField(Field) error {
	c.s++
	return nil
}

func (c *ColumnConst) InsertFrom(Column, int) error {
	c.s++
	return nil
}

func (c *ColumnConst) InsertRangeFrom(src Column, start, length int) error {
	if err := checkRange(start, length, src.Size()); err != nil {
		return err
	}
	c.s += length
	return nil
}

func (c *ColumnConst) InsertData([]byte) error {
	c.s++
	return nil
}

func (c *ColumnConst) InsertDefault() {
	c.s++
}

func (c *ColumnConst) InsertManyDefaults(length int) {
	c.s += length
}

func (c *ColumnConst) PopBack(n int) {
	util.AssertFunc(n <= c.s)
	c.s -= n
}

func (c *ColumnConst) Reserve(int) {}

func (c *ColumnConst) Filter(mask []byte, _ int) (Column, error) {
	if err := checkFilterMask(len(mask), c.s); err != nil {
		return nil, err
	}
	return &ColumnConst{data: c.data, s: CountBytesInFilter(mask)}, nil
}

func (c *ColumnConst) Permute(perm []int, limit int) (Column, error) {
	limit = effectiveLimit(limit, c.s)
	if err := checkPermutation(len(perm), limit); err != nil {
		return nil, err
	}
	return &ColumnConst{data: c.data, s: limit}, nil
}

func (c *ColumnConst) Replicate(offsets []int) (Column, error) {
	if err := checkOffsets(len(offsets), c.s); err != nil {
		return nil, err
	}
	total := 0
	if len(offsets) != 0 {
		total = offsets[len(offsets)-1]
	}
	return &ColumnConst{data: c.data, s: total}, nil
}

func (c *ColumnConst) Scatter(numBuckets int, selector []int) ([]Column, error) {
	if err := checkSelector(len(selector), c.s); err != nil {
		return nil, err
	}
	counts := make([]int, numBuckets)
	for _, s := range selector {
		counts[s]++
	}
	res := make([]Column, numBuckets)
	for b := 0; b < numBuckets; b++ {
		res[b] = &ColumnConst{data: c.data, s: counts[b]}
	}
	return res, nil
}

func (c *ColumnConst) CompareAt(_, _ int, other Column, nanHint int) int {
	o := other.(*ColumnConst)
	return c.data.CompareAt(0, 0, o.data, nanHint)
}

func (c *ColumnConst) GetPermutation(_ bool, limit int, _ int) []int {
	perm := identityPerm(c.s)
	if limit > 0 && limit < len(perm) {
		perm = perm[:limit]
	}
	return perm
}

// Serialization requires a materialized column; the caller expands const
// columns before gathering rows into an arena.
func (c *ColumnConst) SerializeValueIntoArena(int, *util.Arena, *[]byte) []byte {
	panic(common.NewError(common.NotImplemented,
		"method SerializeValueIntoArena is not supported for %s", c.Name()))
}

func (c *ColumnConst) DeserializeAndInsertFromArena([]byte) []byte {
	panic(common.NewError(common.NotImplemented,
		"method DeserializeAndInsertFromArena is not supported for %s", c.Name()))
}

func (c *ColumnConst) UpdateHashWithValue(n int, hasher *util.Hasher) {
	util.AssertFunc(n < c.s)
	c.data.UpdateHashWithValue(0, hasher)
}

func (c *ColumnConst) StructureEquals(other Column) bool {
	o, ok := other.(*ColumnConst)
	return ok && c.data.StructureEquals(o.data)
}

func (c *ColumnConst) CloneResized(n int) Column {
	return &ColumnConst{data: c.data.CloneResized(1), s: n}
}

func (c *ColumnConst) CloneEmpty() Column {
	return &ColumnConst{data: c.data.CloneResized(1), s: 0}
}

// ByteSize counts the single payload value plus the repeat counter; it does
// not scale with s.
func (c *ColumnConst) ByteSize() int {
	return c.data.ByteSize() + 8
}

func (c *ColumnConst) GetExtremes() (Field, Field) {
	if c.s == 0 {
		return Null(), Null()
	}
	v := c.data.GetField(0)
	return v, v
}
