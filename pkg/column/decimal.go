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
	"math"
	"sort"
	"unsafe"

	dec "github.com/govalues/decimal"

	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/util"
)

// ColumnDecimal stores raw scaled integers. The scale lives in the type, so
// two columns may hold equal logical values in different raw encodings.
// Cross-scale comparisons go through the decimal package, never through the
// raw representation.
type ColumnDecimal[T ~int32 | ~int64] struct {
	typ  common.LType
	data []T
}

func NewDecimal32Column(width, scale int) *ColumnDecimal[int32] {
	return &ColumnDecimal[int32]{typ: common.Decimal32Type(width, scale)}
}

func NewDecimal64Column(width, scale int) *ColumnDecimal[int64] {
	return &ColumnDecimal[int64]{typ: common.Decimal64Type(width, scale)}
}

func (c *ColumnDecimal[T]) Data() []T {
	return c.data
}

func (c *ColumnDecimal[T]) Append(vals ...T) {
	c.data = append(c.data, vals...)
}

func (c *ColumnDecimal[T]) Scale() int {
	return c.typ.Scale
}

func (c *ColumnDecimal[T]) Name() string {
	return c.typ.String()
}

func (c *ColumnDecimal[T]) Type() common.LType {
	return c.typ
}

func (c *ColumnDecimal[T]) Size() int {
	return len(c.data)
}

func (c *ColumnDecimal[T]) valueSize() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

func (c *ColumnDecimal[T]) GetField(n int) Field {
	util.AssertFunc(n < len(c.data))
	return NewDecimalField(int64(c.data[n]), c.typ.Scale)
}

func (c *ColumnDecimal[T]) GetDataAt(n int) ([]byte, error) {
	util.AssertFunc(n < len(c.data))
	return util.ToBytes(c.data[n : n+1]), nil
}

func (c *ColumnDecimal[T]) InsertField(f Field) error {
	switch f.Kind {
	case DecimalField:
		if f.Scale != c.typ.Scale {
			return common.NewError(common.BadArguments,
				"decimal scale mismatch: field has %d, column %s", f.Scale, c.Name())
		}
		c.data = append(c.data, T(f.I64))
		return nil
	case IntField:
		raw, overflow := rescaleRaw(f.I64, 0, c.typ.Scale)
		if overflow {
			return common.NewError(common.DecimalOverflow,
				"value %d overflows %s", f.I64, c.Name())
		}
		c.data = append(c.data, T(raw))
		return nil
	case NullField:
		return common.NewError(common.BadArguments,
			"cannot insert NULL into non-nullable column %s", c.Name())
	default:
		return common.NewError(common.BadArguments,
			"cannot convert field %s into column %s", f, c.Name())
	}
}

func (c *ColumnDecimal[T]) InsertFrom(src Column, n int) error {
	s, ok := src.(*ColumnDecimal[T])
	if !ok || s.typ.Scale != c.typ.Scale {
		return common.NewError(common.IllegalColumn,
			"cannot insert from %s into %s", src.Name(), c.Name())
	}
	util.AssertFunc(n < len(s.data))
	c.data = append(c.data, s.data[n])
	return nil
}

func (c *ColumnDecimal[T]) InsertRangeFrom(src Column, start, length int) error {
	s, ok := src.(*ColumnDecimal[T])
	if !ok || s.typ.Scale != c.typ.Scale {
		return common.NewError(common.IllegalColumn,
			"cannot insert range from %s into %s", src.Name(), c.Name())
	}
	if err := checkRange(start, length, len(s.data)); err != nil {
		return err
	}
	c.data = append(c.data, s.data[start:start+length]...)
	return nil
}

func (c *ColumnDecimal[T]) InsertData(data []byte) error {
	if len(data) != c.valueSize() {
		return common.NewError(common.BadArguments,
			"incorrect data size %d for %s, expected %d",
			len(data), c.Name(), c.valueSize())
	}
	c.data = append(c.data, util.ToSlice[T](data, c.valueSize())[0])
	return nil
}

func (c *ColumnDecimal[T]) InsertDefault() {
	c.data = append(c.data, 0)
}

func (c *ColumnDecimal[T]) InsertManyDefaults(length int) {
	for i := 0; i < length; i++ {
		c.data = append(c.data, 0)
	}
}

func (c *ColumnDecimal[T]) PopBack(n int) {
	util.AssertFunc(n <= len(c.data))
	c.data = c.data[:len(c.data)-n]
}

func (c *ColumnDecimal[T]) Reserve(n int) {
	if cap(c.data) < n {
		grown := make([]T, len(c.data), n)
		copy(grown, c.data)
		c.data = grown
	}
}

func (c *ColumnDecimal[T]) Filter(mask []byte, sizeHint int) (Column, error) {
	if err := checkFilterMask(len(mask), len(c.data)); err != nil {
		return nil, err
	}
	return &ColumnDecimal[T]{typ: c.typ, data: filterLoop(c.data, mask, sizeHint)}, nil
}

func (c *ColumnDecimal[T]) Permute(perm []int, limit int) (Column, error) {
	limit = effectiveLimit(limit, len(c.data))
	if err := checkPermutation(len(perm), limit); err != nil {
		return nil, err
	}
	return &ColumnDecimal[T]{typ: c.typ, data: permuteLoop(c.data, perm, limit)}, nil
}

func (c *ColumnDecimal[T]) Replicate(offsets []int) (Column, error) {
	if err := checkOffsets(len(offsets), len(c.data)); err != nil {
		return nil, err
	}
	return &ColumnDecimal[T]{typ: c.typ, data: replicateLoop(c.data, offsets)}, nil
}

func (c *ColumnDecimal[T]) Scatter(numBuckets int, selector []int) ([]Column, error) {
	if err := checkSelector(len(selector), len(c.data)); err != nil {
		return nil, err
	}
	parts := scatterLoop(c.data, numBuckets, selector)
	res := make([]Column, numBuckets)
	for b := 0; b < numBuckets; b++ {
		res[b] = &ColumnDecimal[T]{typ: c.typ, data: parts[b]}
	}
	return res, nil
}

func (c *ColumnDecimal[T]) CompareAt(n, m int, other Column, _ int) int {
	o := other.(*ColumnDecimal[T])
	if c.typ.Scale == o.typ.Scale {
		a, b := c.data[n], o.data[m]
		if a < b {
			return -1
		} else if a > b {
			return 1
		}
		return 0
	}
	a := dec.MustNew(int64(c.data[n]), c.typ.Scale)
	b := dec.MustNew(int64(o.data[m]), o.typ.Scale)
	return a.Cmp(b)
}

// GetPermutation sorts through 32-bit indices when the row count allows it
// and widens afterwards. The ordering is identical either way.
func (c *ColumnDecimal[T]) GetPermutation(reverse bool, limit int, _ int) []int {
	if len(c.data) <= math.MaxInt32 {
		perm32 := make([]int32, len(c.data))
		for i := range perm32 {
			perm32[i] = int32(i)
		}
		sort.SliceStable(perm32, func(i, j int) bool {
			a, b := c.data[perm32[i]], c.data[perm32[j]]
			if reverse {
				return a > b
			}
			return a < b
		})
		if limit > 0 && limit < len(perm32) {
			perm32 = perm32[:limit]
		}
		perm := make([]int, len(perm32))
		for i, p := range perm32 {
			perm[i] = int(p)
		}
		return perm
	}
	perm := identityPerm(len(c.data))
	sort.SliceStable(perm, func(i, j int) bool {
		a, b := c.data[perm[i]], c.data[perm[j]]
		if reverse {
			return a > b
		}
		return a < b
	})
	if limit > 0 && limit < len(perm) {
		perm = perm[:limit]
	}
	return perm
}

func (c *ColumnDecimal[T]) SerializeValueIntoArena(n int, arena *util.Arena, begin *[]byte) []byte {
	util.AssertFunc(n < len(c.data))
	mem := arena.AllocContinue(c.valueSize(), begin)
	util.Store(c.data[n], util.BytesSliceToPointer(mem))
	return mem
}

func (c *ColumnDecimal[T]) DeserializeAndInsertFromArena(pos []byte) []byte {
	sz := c.valueSize()
	util.AssertFunc(len(pos) >= sz)
	c.data = append(c.data, util.Load[T](util.BytesSliceToPointer(pos)))
	return pos[sz:]
}

func (c *ColumnDecimal[T]) UpdateHashWithValue(n int, hasher *util.Hasher) {
	util.AssertFunc(n < len(c.data))
	hasher.Update(util.ToBytes(c.data[n : n+1]))
}

func (c *ColumnDecimal[T]) StructureEquals(other Column) bool {
	o, ok := other.(*ColumnDecimal[T])
	return ok && o.typ.Scale == c.typ.Scale
}

func (c *ColumnDecimal[T]) CloneResized(n int) Column {
	data := make([]T, n)
	copy(data, c.data)
	return &ColumnDecimal[T]{typ: c.typ, data: data}
}

func (c *ColumnDecimal[T]) CloneEmpty() Column {
	return &ColumnDecimal[T]{typ: c.typ}
}

func (c *ColumnDecimal[T]) ByteSize() int {
	return len(c.data) * c.valueSize()
}

func (c *ColumnDecimal[T]) GetExtremes() (Field, Field) {
	if len(c.data) == 0 {
		return Null(), Null()
	}
	minV, maxV := c.data[0], c.data[0]
	for _, v := range c.data[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return NewDecimalField(int64(minV), c.typ.Scale),
		NewDecimalField(int64(maxV), c.typ.Scale)
}

// rescaleRaw shifts a raw value from one scale to another, reporting
// overflow. Only upscaling multiplies; downscaling is refused here because
// it loses digits.
func rescaleRaw(raw int64, from, to int) (int64, bool) {
	if from == to {
		return raw, false
	}
	if from > to {
		return 0, true
	}
	for i := from; i < to; i++ {
		next := raw * 10
		if next/10 != raw {
			return 0, true
		}
		raw = next
	}
	return raw, false
}
