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
	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/util"
)

// Column is the closed set of column representations: Vector, Decimal,
// Const, Nullable. Every variant honors the same operation contract.
//
// Columns are passive data; callers serialize access. Mutating methods are
// only legal on an exclusively owned column (see Ptr).
type Column interface {
	Name() string
	Type() common.LType
	Size() int

	// GetField boxes row n. Panics when n >= Size().
	GetField(n int) Field
	// GetDataAt exposes the raw bytes of row n for fixed-width
	// representations. Variants without a flat layout return an error.
	GetDataAt(n int) ([]byte, error)

	InsertField(f Field) error
	// InsertFrom appends src[n].
	InsertFrom(src Column, n int) error
	// InsertRangeFrom appends src rows [start, start+length).
	InsertRangeFrom(src Column, start, length int) error
	// InsertData appends one row decoded from fixed-width raw bytes.
	InsertData(data []byte) error
	InsertDefault()
	InsertManyDefaults(length int)
	PopBack(n int)
	Reserve(n int)

	// Filter keeps the rows whose mask byte is nonzero. len(mask) must
	// equal Size(). sizeHint > 0 pre-reserves the result.
	Filter(mask []byte, sizeHint int) (Column, error)
	// Permute builds result[i] = self[perm[i]] for i in [0, effective
	// limit). limit == 0 means the full size.
	Permute(perm []int, limit int) (Column, error)
	// Replicate expands row i into offsets[i]-offsets[i-1] copies.
	// len(offsets) must equal Size(); the result has offsets[last] rows.
	Replicate(offsets []int) (Column, error)
	// Scatter splits rows into numBuckets columns by selector value,
	// keeping relative order inside each bucket.
	Scatter(numBuckets int, selector []int) ([]Column, error)

	// CompareAt three-way compares self[n] against other[m]. nanHint
	// decides whether NaN (and, one level up, NULL) sorts as the largest
	// (>0) or smallest (<0) value. Integer variants ignore it.
	CompareAt(n, m int, other Column, nanHint int) int
	// GetPermutation returns row indices sorted by CompareAt order,
	// ascending unless reverse, truncated to limit (0 = full).
	GetPermutation(reverse bool, limit int, nanHint int) []int

	// SerializeValueIntoArena appends a fixed-size encoding of row n to
	// the contiguous run tracked by begin and returns the bytes this call
	// appended. DeserializeAndInsertFromArena is its inverse: it appends
	// exactly one row and returns the cursor advanced past the encoding.
	SerializeValueIntoArena(n int, arena *util.Arena, begin *[]byte) []byte
	DeserializeAndInsertFromArena(pos []byte) []byte

	// UpdateHashWithValue feeds row n into the hasher. Composite variants
	// feed their parts in a fixed order so grouping keys hash stably.
	UpdateHashWithValue(n int, hasher *util.Hasher)

	// StructureEquals reports whether other is the same variant with
	// structurally compatible inner columns.
	StructureEquals(other Column) bool

	// CloneResized copies the first min(n, Size()) rows and zero-fills
	// the rest up to n rows.
	CloneResized(n int) Column
	CloneEmpty() Column

	ByteSize() int
	// GetExtremes returns the min and max over all rows, skipping NaNs
	// and nulls. Both are Null for an empty column.
	GetExtremes() (Field, Field)
}

func IsConst(col Column) bool {
	_, ok := col.(*ColumnConst)
	return ok
}

func IsNullable(col Column) bool {
	_, ok := col.(*ColumnNullable)
	return ok
}

// ConvertToFullColumn materializes a const column into its flat form.
// Other variants are returned unchanged.
func ConvertToFullColumn(col Column) Column {
	if cst, ok := col.(*ColumnConst); ok {
		full, err := cst.data.Replicate([]int{cst.s})
		if err != nil {
			panic(err)
		}
		return full
	}
	return col
}

// MakeNullable wraps col in a nullable with an all-zero null map. A const
// column keeps its const shell: the wrapping happens underneath it.
func MakeNullable(col Column) Column {
	switch c := col.(type) {
	case *ColumnNullable:
		return c
	case *ColumnConst:
		cst, err := NewConst(MakeNullable(c.data), c.s)
		if err != nil {
			panic(err)
		}
		return cst
	default:
		nm := NewUint8Vector()
		nm.data = make([]uint8, col.Size())
		nc, err := NewNullable(col, nm)
		if err != nil {
			panic(err)
		}
		return nc
	}
}
