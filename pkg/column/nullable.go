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

// ColumnNullable pairs a non-nullable nested column with a byte-per-row
// null map of the same length. A nonzero null map byte marks the row null;
// the nested value at that row is meaningless but present.
type ColumnNullable struct {
	nested  Column
	nullMap *ColumnVector[uint8]
}

// NewNullable materializes a const nested column first and refuses a const
// null map and a nullable nested column.
func NewNullable(nested Column, nullMap Column) (*ColumnNullable, error) {
	nested = ConvertToFullColumn(nested)
	if IsNullable(nested) {
		return nil, common.NewError(common.IllegalColumn,
			"nested column of ColumnNullable cannot be ColumnNullable")
	}
	if IsConst(nullMap) {
		return nil, common.NewError(common.IllegalColumn,
			"ColumnNullable cannot have constant null map")
	}
	nm, ok := nullMap.(*ColumnVector[uint8])
	if !ok {
		return nil, common.NewError(common.IllegalColumn,
			"null map of ColumnNullable must be a UInt8 column, got %s", nullMap.Name())
	}
	c := &ColumnNullable{nested: nested, nullMap: nm}
	if err := c.CheckConsistency(); err != nil {
		return nil, err
	}
	return c, nil
}

// CheckConsistency holds after every mutating operation.
func (c *ColumnNullable) CheckConsistency() error {
	if c.nullMap.Size() != c.nested.Size() {
		return common.NewError(common.Logical,
			"sizes of nested column %d and null map %d of Nullable column are not equal",
			c.nested.Size(), c.nullMap.Size())
	}
	return nil
}

func (c *ColumnNullable) Nested() Column {
	return c.nested
}

func (c *ColumnNullable) NullMap() *ColumnVector[uint8] {
	return c.nullMap
}

func (c *ColumnNullable) IsNullAt(n int) bool {
	return c.nullMap.data[n] != 0
}

func (c *ColumnNullable) Name() string {
	return fmt.Sprintf("Nullable(%s)", c.nested.Name())
}

func (c *ColumnNullable) Type() common.LType {
	return c.nested.Type()
}

func (c *ColumnNullable) Size() int {
	return c.nested.Size()
}

func (c *ColumnNullable) GetField(n int) Field {
	if c.IsNullAt(n) {
		return Null()
	}
	return c.nested.GetField(n)
}

func (c *ColumnNullable) GetDataAt(n int) ([]byte, error) {
	return nil, common.NewError(common.NotImplemented,
		"method GetDataAt is not supported for %s", c.Name())
}

func (c *ColumnNullable) InsertField(f Field) error {
	if f.IsNull() {
		c.InsertDefault()
		c.nullMap.data[len(c.nullMap.data)-1] = 1
		return nil
	}
	if err := c.nested.InsertField(f); err != nil {
		return err
	}
	c.nullMap.data = append(c.nullMap.data, 0)
	return nil
}

func (c *ColumnNullable) InsertFrom(src Column, n int) error {
	s, ok := src.(*ColumnNullable)
	if !ok {
		// a non-nullable source row is non-null by definition
		if err := c.nested.InsertFrom(src, n); err != nil {
			return err
		}
		c.nullMap.data = append(c.nullMap.data, 0)
		return nil
	}
	if err := c.nested.InsertFrom(s.nested, n); err != nil {
		return err
	}
	c.nullMap.data = append(c.nullMap.data, s.nullMap.data[n])
	return nil
}

func (c *ColumnNullable) InsertRangeFrom(src Column, start, length int) error {
	s, ok := src.(*ColumnNullable)
	if !ok {
		return common.NewError(common.IllegalColumn,
			"cannot insert range from %s into %s", src.Name(), c.Name())
	}
	if err := c.nested.InsertRangeFrom(s.nested, start, length); err != nil {
		return err
	}
	if err := c.nullMap.InsertRangeFrom(s.nullMap, start, length); err != nil {
		return err
	}
	return nil
}

func (c *ColumnNullable) InsertData(data []byte) error {
	if data == nil {
		c.InsertDefault()
		c.nullMap.data[len(c.nullMap.data)-1] = 1
		return nil
	}
	if err := c.nested.InsertData(data); err != nil {
		return err
	}
	c.nullMap.data = append(c.nullMap.data, 0)
	return nil
}

func (c *ColumnNullable) InsertDefault() {
	c.nested.InsertDefault()
	c.nullMap.data = append(c.nullMap.data, 1)
}

func (c *ColumnNullable) InsertManyDefaults(length int) {
	c.nested.InsertManyDefaults(length)
	start := len(c.nullMap.data)
	c.nullMap.data = append(c.nullMap.data, make([]uint8, length)...)
	util.Fill(c.nullMap.data[start:], length, 1)
}

func (c *ColumnNullable) PopBack(n int) {
	c.nested.PopBack(n)
	c.nullMap.PopBack(n)
}

func (c *ColumnNullable) Reserve(n int) {
	c.nested.Reserve(n)
	c.nullMap.Reserve(n)
}

func (c *ColumnNullable) Filter(mask []byte, sizeHint int) (Column, error) {
	nested, err := c.nested.Filter(mask, sizeHint)
	if err != nil {
		return nil, err
	}
	nullMap, err := c.nullMap.Filter(mask, sizeHint)
	if err != nil {
		return nil, err
	}
	return &ColumnNullable{
		nested:  nested,
		nullMap: nullMap.(*ColumnVector[uint8]),
	}, nil
}

func (c *ColumnNullable) Permute(perm []int, limit int) (Column, error) {
	nested, err := c.nested.Permute(perm, limit)
	if err != nil {
		return nil, err
	}
	nullMap, err := c.nullMap.Permute(perm, limit)
	if err != nil {
		return nil, err
	}
	return &ColumnNullable{
		nested:  nested,
		nullMap: nullMap.(*ColumnVector[uint8]),
	}, nil
}

func (c *ColumnNullable) Replicate(offsets []int) (Column, error) {
	nested, err := c.nested.Replicate(offsets)
	if err != nil {
		return nil, err
	}
	nullMap, err := c.nullMap.Replicate(offsets)
	if err != nil {
		return nil, err
	}
	return &ColumnNullable{
		nested:  nested,
		nullMap: nullMap.(*ColumnVector[uint8]),
	}, nil
}

func (c *ColumnNullable) Scatter(numBuckets int, selector []int) ([]Column, error) {
	nested, err := c.nested.Scatter(numBuckets, selector)
	if err != nil {
		return nil, err
	}
	nullMaps, err := c.nullMap.Scatter(numBuckets, selector)
	if err != nil {
		return nil, err
	}
	res := make([]Column, numBuckets)
	for b := 0; b < numBuckets; b++ {
		res[b] = &ColumnNullable{
			nested:  nested[b],
			nullMap: nullMaps[b].(*ColumnVector[uint8]),
		}
	}
	return res, nil
}

// CompareAt treats NULL like NaN one level up: the hint decides whether it
// sorts above or below every value, and two NULLs compare equal.
func (c *ColumnNullable) CompareAt(n, m int, other Column, nullHint int) int {
	o := other.(*ColumnNullable)
	if c.IsNullAt(n) {
		if o.IsNullAt(m) {
			return 0
		}
		return nullHint
	}
	if o.IsNullAt(m) {
		return -nullHint
	}
	return c.nested.CompareAt(n, m, o.nested, nullHint)
}

// GetPermutation orders by the nested column first, then stably partitions
// null rows to one end. Nulls move to the end when (nullHint > 0) !=
// reverse, otherwise to the front; relative order inside each group is
// preserved.
func (c *ColumnNullable) GetPermutation(reverse bool, limit int, nullHint int) []int {
	perm := c.nested.GetPermutation(reverse, 0, nullHint)
	nullsToEnd := (nullHint > 0) != reverse

	res := make([]int, 0, len(perm))
	nulls := make([]int, 0)
	if nullsToEnd {
		for _, idx := range perm {
			if c.IsNullAt(idx) {
				nulls = append(nulls, idx)
			} else {
				res = append(res, idx)
			}
		}
		res = append(res, nulls...)
	} else {
		for _, idx := range perm {
			if c.IsNullAt(idx) {
				nulls = append(nulls, idx)
			}
		}
		res = append(res, nulls...)
		for _, idx := range perm {
			if !c.IsNullAt(idx) {
				res = append(res, idx)
			}
		}
	}
	if limit > 0 && limit < len(res) {
		res = res[:limit]
	}
	return res
}

// The encoding is one flag byte, then the nested bytes only for a non-null
// row. Null and non-null rows with equal nested bytes stay distinct.
func (c *ColumnNullable) SerializeValueIntoArena(n int, arena *util.Arena, begin *[]byte) []byte {
	prev := 0
	if *begin != nil {
		prev = len(*begin)
	}
	flag := arena.AllocContinue(1, begin)
	flag[0] = c.nullMap.data[n]
	if c.nullMap.data[n] == 0 {
		c.nested.SerializeValueIntoArena(n, arena, begin)
	}
	return (*begin)[prev:]
}

func (c *ColumnNullable) DeserializeAndInsertFromArena(pos []byte) []byte {
	util.AssertFunc(len(pos) >= 1)
	flag := pos[0]
	pos = pos[1:]
	if flag != 0 {
		c.nested.InsertDefault()
		c.nullMap.data = append(c.nullMap.data, 1)
		return pos
	}
	pos = c.nested.DeserializeAndInsertFromArena(pos)
	c.nullMap.data = append(c.nullMap.data, 0)
	return pos
}

func (c *ColumnNullable) UpdateHashWithValue(n int, hasher *util.Hasher) {
	hasher.UpdateByte(c.nullMap.data[n])
	if !c.IsNullAt(n) {
		c.nested.UpdateHashWithValue(n, hasher)
	}
}

func (c *ColumnNullable) StructureEquals(other Column) bool {
	o, ok := other.(*ColumnNullable)
	return ok && c.nested.StructureEquals(o.nested)
}

func (c *ColumnNullable) CloneResized(n int) Column {
	return &ColumnNullable{
		nested:  c.nested.CloneResized(n),
		nullMap: cloneNullMapResized(c.nullMap, n),
	}
}

func cloneNullMapResized(nm *ColumnVector[uint8], n int) *ColumnVector[uint8] {
	clone := nm.CloneResized(n).(*ColumnVector[uint8])
	// grown rows are null, not zero
	if n > nm.Size() {
		util.Fill(clone.data[nm.Size():], n-nm.Size(), 1)
	}
	return clone
}

func (c *ColumnNullable) CloneEmpty() Column {
	return &ColumnNullable{
		nested:  c.nested.CloneEmpty(),
		nullMap: NewUint8Vector(),
	}
}

func (c *ColumnNullable) ByteSize() int {
	return c.nested.ByteSize() + c.nullMap.ByteSize()
}

// GetExtremes skips null rows entirely.
func (c *ColumnNullable) GetExtremes() (Field, Field) {
	mask := make([]byte, c.Size())
	cnt := 0
	for i, b := range c.nullMap.data {
		if b == 0 {
			mask[i] = 1
			cnt++
		}
	}
	if cnt == 0 {
		return Null(), Null()
	}
	filtered, err := c.nested.Filter(mask, cnt)
	if err != nil {
		panic(err)
	}
	return filtered.GetExtremes()
}

// ApplyNullMap merges another null map into this column's: a row becomes
// null when it is null on either side.
func (c *ColumnNullable) ApplyNullMap(other *ColumnVector[uint8]) error {
	if other.Size() != c.nullMap.Size() {
		return common.NewError(common.SizesOfColumnsDontMatch,
			"inconsistent sizes of ColumnNullable objects: %d and %d",
			c.nullMap.Size(), other.Size())
	}
	for i, b := range other.data {
		if b != 0 {
			c.nullMap.data[i] = 1
		}
	}
	return nil
}
