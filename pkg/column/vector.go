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

	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/util"
)

// ColumnVector owns a contiguous buffer of fixed-width values.
type ColumnVector[T Numeric] struct {
	typ  common.LType
	data []T
}

func NewVector[T Numeric](typ common.LType) *ColumnVector[T] {
	var zero T
	util.AssertFunc(typ.ValueSize() == int(unsafe.Sizeof(zero)))
	return &ColumnVector[T]{typ: typ}
}

func NewInt8Vector() *ColumnVector[int8]     { return NewVector[int8](common.TinyintType()) }
func NewInt16Vector() *ColumnVector[int16]   { return NewVector[int16](common.SmallintType()) }
func NewInt32Vector() *ColumnVector[int32]   { return NewVector[int32](common.IntegerType()) }
func NewInt64Vector() *ColumnVector[int64]   { return NewVector[int64](common.BigintType()) }
func NewUint8Vector() *ColumnVector[uint8]   { return NewVector[uint8](common.UtinyintType()) }
func NewUint16Vector() *ColumnVector[uint16] { return NewVector[uint16](common.UsmallintType()) }
func NewUint32Vector() *ColumnVector[uint32] { return NewVector[uint32](common.UintegerType()) }
func NewUint64Vector() *ColumnVector[uint64] { return NewVector[uint64](common.UbigintType()) }
func NewFloat32Vector() *ColumnVector[float32] {
	return NewVector[float32](common.FloatType())
}
func NewFloat64Vector() *ColumnVector[float64] {
	return NewVector[float64](common.DoubleType())
}

// Data exposes the backing buffer for bulk operators. The caller must hold
// the column exclusively while writing through it.
func (c *ColumnVector[T]) Data() []T {
	return c.data
}

func (c *ColumnVector[T]) Append(vals ...T) {
	c.data = append(c.data, vals...)
}

func (c *ColumnVector[T]) Name() string {
	return c.typ.String()
}

func (c *ColumnVector[T]) Type() common.LType {
	return c.typ
}

func (c *ColumnVector[T]) Size() int {
	return len(c.data)
}

func (c *ColumnVector[T]) valueSize() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

func (c *ColumnVector[T]) GetField(n int) Field {
	util.AssertFunc(n < len(c.data))
	return numericToField(c.data[n])
}

func (c *ColumnVector[T]) GetDataAt(n int) ([]byte, error) {
	util.AssertFunc(n < len(c.data))
	sz := c.valueSize()
	return util.ToBytes(c.data[n : n+1])[:sz], nil
}

func (c *ColumnVector[T]) InsertField(f Field) error {
	v, err := fieldToNumeric[T](f, c.typ)
	if err != nil {
		return err
	}
	c.data = append(c.data, v)
	return nil
}

func (c *ColumnVector[T]) InsertFrom(src Column, n int) error {
	s, ok := src.(*ColumnVector[T])
	if !ok {
		return common.NewError(common.IllegalColumn,
			"cannot insert from %s into %s", src.Name(), c.Name())
	}
	util.AssertFunc(n < len(s.data))
	c.data = append(c.data, s.data[n])
	return nil
}

func (c *ColumnVector[T]) InsertRangeFrom(src Column, start, length int) error {
	s, ok := src.(*ColumnVector[T])
	if !ok {
		return common.NewError(common.IllegalColumn,
			"cannot insert range from %s into %s", src.Name(), c.Name())
	}
	if err := checkRange(start, length, len(s.data)); err != nil {
		return err
	}
	c.data = append(c.data, s.data[start:start+length]...)
	return nil
}

func (c *ColumnVector[T]) InsertData(data []byte) error {
	if len(data) != c.valueSize() {
		return common.NewError(common.BadArguments,
			"incorrect data size %d for %s, expected %d",
			len(data), c.Name(), c.valueSize())
	}
	c.data = append(c.data, util.ToSlice[T](data, c.valueSize())[0])
	return nil
}

func (c *ColumnVector[T]) InsertDefault() {
	var zero T
	c.data = append(c.data, zero)
}

func (c *ColumnVector[T]) InsertManyDefaults(length int) {
	var zero T
	for i := 0; i < length; i++ {
		c.data = append(c.data, zero)
	}
}

func (c *ColumnVector[T]) PopBack(n int) {
	util.AssertFunc(n <= len(c.data))
	c.data = c.data[:len(c.data)-n]
}

func (c *ColumnVector[T]) Reserve(n int) {
	if cap(c.data) < n {
		grown := make([]T, len(c.data), n)
		copy(grown, c.data)
		c.data = grown
	}
}

func (c *ColumnVector[T]) Filter(mask []byte, sizeHint int) (Column, error) {
	if err := checkFilterMask(len(mask), len(c.data)); err != nil {
		return nil, err
	}
	return &ColumnVector[T]{typ: c.typ, data: filterLoop(c.data, mask, sizeHint)}, nil
}

func (c *ColumnVector[T]) Permute(perm []int, limit int) (Column, error) {
	limit = effectiveLimit(limit, len(c.data))
	if err := checkPermutation(len(perm), limit); err != nil {
		return nil, err
	}
	return &ColumnVector[T]{typ: c.typ, data: permuteLoop(c.data, perm, limit)}, nil
}

func (c *ColumnVector[T]) Replicate(offsets []int) (Column, error) {
	if err := checkOffsets(len(offsets), len(c.data)); err != nil {
		return nil, err
	}
	return &ColumnVector[T]{typ: c.typ, data: replicateLoop(c.data, offsets)}, nil
}

func (c *ColumnVector[T]) Scatter(numBuckets int, selector []int) ([]Column, error) {
	if err := checkSelector(len(selector), len(c.data)); err != nil {
		return nil, err
	}
	parts := scatterLoop(c.data, numBuckets, selector)
	res := make([]Column, numBuckets)
	for b := 0; b < numBuckets; b++ {
		res[b] = &ColumnVector[T]{typ: c.typ, data: parts[b]}
	}
	return res, nil
}

func (c *ColumnVector[T]) CompareAt(n, m int, other Column, nanHint int) int {
	o := other.(*ColumnVector[T])
	return compareValue(c.data[n], o.data[m], nanHint)
}

func (c *ColumnVector[T]) GetPermutation(reverse bool, limit int, nanHint int) []int {
	perm := identityPerm(len(c.data))
	sort.SliceStable(perm, func(i, j int) bool {
		cmp := compareValue(c.data[perm[i]], c.data[perm[j]], nanHint)
		if reverse {
			return cmp > 0
		}
		return cmp < 0
	})
	if limit > 0 && limit < len(perm) {
		perm = perm[:limit]
	}
	return perm
}

func (c *ColumnVector[T]) SerializeValueIntoArena(n int, arena *util.Arena, begin *[]byte) []byte {
	util.AssertFunc(n < len(c.data))
	mem := arena.AllocContinue(c.valueSize(), begin)
	util.Store(c.data[n], util.BytesSliceToPointer(mem))
	return mem
}

func (c *ColumnVector[T]) DeserializeAndInsertFromArena(pos []byte) []byte {
	sz := c.valueSize()
	util.AssertFunc(len(pos) >= sz)
	c.data = append(c.data, util.Load[T](util.BytesSliceToPointer(pos)))
	return pos[sz:]
}

func (c *ColumnVector[T]) UpdateHashWithValue(n int, hasher *util.Hasher) {
	util.AssertFunc(n < len(c.data))
	sz := c.valueSize()
	hasher.Update(util.ToBytes(c.data[n : n+1])[:sz])
}

func (c *ColumnVector[T]) StructureEquals(other Column) bool {
	o, ok := other.(*ColumnVector[T])
	return ok && c.typ.Equal(o.typ)
}

func (c *ColumnVector[T]) CloneResized(n int) Column {
	data := make([]T, n)
	copy(data, c.data)
	return &ColumnVector[T]{typ: c.typ, data: data}
}

func (c *ColumnVector[T]) CloneEmpty() Column {
	return &ColumnVector[T]{typ: c.typ}
}

func (c *ColumnVector[T]) ByteSize() int {
	return len(c.data) * c.valueSize()
}

func (c *ColumnVector[T]) GetExtremes() (Field, Field) {
	var minV, maxV T
	found := false
	for _, v := range c.data {
		if isNaN(v) {
			continue
		}
		if !found {
			minV, maxV = v, v
			found = true
			continue
		}
		if compareValue(v, minV, 0) < 0 {
			minV = v
		}
		if compareValue(v, maxV, 0) > 0 {
			maxV = v
		}
	}
	if !found {
		return Null(), Null()
	}
	return numericToField(minV), numericToField(maxV)
}

func isNaN[T Numeric](v T) bool {
	switch vv := any(v).(type) {
	case float32:
		return math.IsNaN(float64(vv))
	case float64:
		return math.IsNaN(vv)
	default:
		return false
	}
}

func numericToField[T Numeric](v T) Field {
	switch vv := any(v).(type) {
	case int8:
		return NewIntField(int64(vv))
	case int16:
		return NewIntField(int64(vv))
	case int32:
		return NewIntField(int64(vv))
	case int64:
		return NewIntField(vv)
	case uint8:
		return NewUintField(uint64(vv))
	case uint16:
		return NewUintField(uint64(vv))
	case uint32:
		return NewUintField(uint64(vv))
	case uint64:
		return NewUintField(vv)
	case float32:
		return NewFloatField(float64(vv))
	case float64:
		return NewFloatField(vv)
	default:
		panic("usp")
	}
}

func fieldToNumeric[T Numeric](f Field, typ common.LType) (T, error) {
	var zero T
	switch f.Kind {
	case IntField:
		return T(f.I64), nil
	case UintField:
		return T(f.U64), nil
	case FloatField:
		return T(f.F64), nil
	case BoolField:
		if f.Bool {
			return T(1), nil
		}
		return zero, nil
	case NullField:
		return zero, common.NewError(common.BadArguments,
			"cannot insert NULL into non-nullable column %s", typ)
	default:
		return zero, common.NewError(common.BadArguments,
			"cannot convert field %s into column %s", f, typ)
	}
}
