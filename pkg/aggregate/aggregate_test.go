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

package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/vexec/pkg/column"
	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/util"
)

func nullableInt32Col(t *testing.T, vals []int32, nulls []uint8) *column.ColumnNullable {
	t.Helper()
	nested := column.NewInt32Vector()
	nested.Append(vals...)
	nm := column.NewUint8Vector()
	nm.Append(nulls...)
	nc, err := column.NewNullable(nested, nm)
	require.NoError(t, err)
	return nc
}

func TestCount(t *testing.T) {
	fn := NewCount()
	arena := util.NewArena()
	place := CreatePlace(fn, arena)

	col := column.NewInt32Vector()
	col.Append(1, 2, 3)
	cols := []column.Column{col}

	require.NoError(t, fn.Add(place, cols, 0, arena))
	require.NoError(t, fn.Add(place, cols, 1, arena))

	other := CreatePlace(fn, arena)
	require.NoError(t, fn.AddBatchSinglePlace(other, cols, arena))
	require.NoError(t, fn.Merge(place, other, arena))

	out := column.NewUint64Vector()
	require.NoError(t, fn.InsertResultInto(place, out))
	assert.Equal(t, []uint64{5}, out.Data())
}

func TestSumAddAndMerge(t *testing.T) {
	fn := NewSum[int32, int64](common.BigintType())
	arena := util.NewArena()

	col := column.NewInt32Vector()
	col.Append(10, 20, 30)
	cols := []column.Column{col}

	a := CreatePlace(fn, arena)
	require.NoError(t, fn.Add(a, cols, 0, arena))
	require.NoError(t, fn.Add(a, cols, 1, arena))
	b := CreatePlace(fn, arena)
	require.NoError(t, fn.Add(b, cols, 2, arena))

	// merge either way yields the same total
	require.NoError(t, fn.Merge(a, b, arena))

	out := column.NewInt64Vector()
	require.NoError(t, fn.InsertResultInto(a, out))
	assert.Equal(t, []int64{60}, out.Data())

	// wrong argument column type
	bad := []column.Column{column.NewInt64Vector()}
	err := fn.Add(CreatePlace(fn, arena), bad, 0, arena)
	require.Error(t, err)
	assert.Equal(t, common.IllegalColumn, common.CodeOf(err))
}

func TestMinMax(t *testing.T) {
	arena := util.NewArena()
	col := column.NewFloat64Vector()
	col.Append(3.5, -1.0, 2.0)
	cols := []column.Column{col}

	minFn := NewMin[float64](common.DoubleType())
	maxFn := NewMax[float64](common.DoubleType())
	minPlace := CreatePlace(minFn, arena)
	maxPlace := CreatePlace(maxFn, arena)
	require.NoError(t, minFn.AddBatchSinglePlace(minPlace, cols, arena))
	require.NoError(t, maxFn.AddBatchSinglePlace(maxPlace, cols, arena))

	minOut := column.NewFloat64Vector()
	require.NoError(t, minFn.InsertResultInto(minPlace, minOut))
	assert.Equal(t, []float64{-1.0}, minOut.Data())

	maxOut := column.NewFloat64Vector()
	require.NoError(t, maxFn.InsertResultInto(maxPlace, maxOut))
	assert.Equal(t, []float64{3.5}, maxOut.Data())

	// empty state degrades to the default value
	empty := CreatePlace(minFn, arena)
	emptyOut := column.NewFloat64Vector()
	require.NoError(t, minFn.InsertResultInto(empty, emptyOut))
	assert.Equal(t, []float64{0}, emptyOut.Data())

	// merging an empty rhs changes nothing
	require.NoError(t, minFn.Merge(minPlace, empty, arena))
	minOut2 := column.NewFloat64Vector()
	require.NoError(t, minFn.InsertResultInto(minPlace, minOut2))
	assert.Equal(t, []float64{-1.0}, minOut2.Data())
}

func TestAvg(t *testing.T) {
	fn := NewAvg[int32]()
	arena := util.NewArena()

	col := column.NewInt32Vector()
	col.Append(1, 2, 3, 4)
	cols := []column.Column{col}

	a := CreatePlace(fn, arena)
	require.NoError(t, fn.Add(a, cols, 0, arena))
	require.NoError(t, fn.Add(a, cols, 1, arena))
	b := CreatePlace(fn, arena)
	require.NoError(t, fn.Add(b, cols, 2, arena))
	require.NoError(t, fn.Add(b, cols, 3, arena))
	require.NoError(t, fn.Merge(a, b, arena))

	out := column.NewFloat64Vector()
	require.NoError(t, fn.InsertResultInto(a, out))
	assert.Equal(t, []float64{2.5}, out.Data())

	// empty state yields zero, not NaN
	empty := CreatePlace(fn, arena)
	emptyOut := column.NewFloat64Vector()
	require.NoError(t, fn.InsertResultInto(empty, emptyOut))
	assert.Equal(t, []float64{0}, emptyOut.Data())
}

func TestNullUnarySkipsNulls(t *testing.T) {
	// count over [1, null, 3] sees two rows
	fn, err := WrapNullIfNeeded(NewCount(), []bool{true}, false)
	require.NoError(t, err)

	arena := util.NewArena()
	place := CreatePlace(fn, arena)
	nc := nullableInt32Col(t, []int32{1, 0, 3}, []uint8{0, 1, 0})
	require.NoError(t, fn.AddBatchSinglePlace(place, []column.Column{nc}, arena))

	out := column.NewUint64Vector()
	require.NoError(t, fn.InsertResultInto(place, out))
	assert.Equal(t, []uint64{2}, out.Data())
}

func TestNullUnaryNullableResult(t *testing.T) {
	fn, err := WrapNullIfNeeded(NewSum[int32, int64](common.BigintType()), []bool{true}, true)
	require.NoError(t, err)

	arena := util.NewArena()
	out, err := column.NewNullableColumnFromType(common.BigintType())
	require.NoError(t, err)

	// all rows null: the result row is null, not zero
	allNull := CreatePlace(fn, arena)
	nc := nullableInt32Col(t, []int32{1, 2, 3}, []uint8{1, 1, 1})
	require.NoError(t, fn.AddBatchSinglePlace(allNull, []column.Column{nc}, arena))
	require.NoError(t, fn.InsertResultInto(allNull, out))

	// one non-null row flips the flag
	some := CreatePlace(fn, arena)
	nc2 := nullableInt32Col(t, []int32{5, 7}, []uint8{1, 0})
	require.NoError(t, fn.AddBatchSinglePlace(some, []column.Column{nc2}, arena))
	require.NoError(t, fn.InsertResultInto(some, out))

	ncOut := out.(*column.ColumnNullable)
	require.NoError(t, ncOut.CheckConsistency())
	require.Equal(t, 2, ncOut.Size())
	assert.True(t, ncOut.IsNullAt(0))
	assert.False(t, ncOut.IsNullAt(1))
	assert.Equal(t, int64(7), ncOut.GetField(1).I64)
}

func TestNullUnaryMergePropagatesFlag(t *testing.T) {
	fn, err := WrapNullIfNeeded(NewSum[int32, int64](common.BigintType()), []bool{true}, true)
	require.NoError(t, err)

	arena := util.NewArena()
	empty := CreatePlace(fn, arena)
	seen := CreatePlace(fn, arena)
	nc := nullableInt32Col(t, []int32{4}, []uint8{0})
	require.NoError(t, fn.Add(seen, []column.Column{nc}, 0, arena))

	require.NoError(t, fn.Merge(empty, seen, arena))

	out, err := column.NewNullableColumnFromType(common.BigintType())
	require.NoError(t, err)
	require.NoError(t, fn.InsertResultInto(empty, out))
	ncOut := out.(*column.ColumnNullable)
	assert.False(t, ncOut.IsNullAt(0))
	assert.Equal(t, int64(4), ncOut.GetField(0).I64)
}

func TestNullAdapterStateLayout(t *testing.T) {
	nested := NewSum[int32, int64](common.BigintType())

	// nullable result: a flag prefix padded to the nested alignment
	wrapped := NewNullUnary(nested, true)
	assert.Equal(t, nested.AlignOfData()+nested.SizeOfData(), wrapped.SizeOfData())
	assert.Equal(t, nested.AlignOfData(), wrapped.AlignOfData())

	// non-nullable result: no prefix at all
	plain := NewNullUnary(nested, false)
	assert.Equal(t, nested.SizeOfData(), plain.SizeOfData())
}

func TestNullVariadicArgBounds(t *testing.T) {
	_, err := NewNullVariadic(NewCount(), []bool{true}, false)
	require.Error(t, err)
	assert.Equal(t, common.Logical, common.CodeOf(err))

	_, err = NewNullVariadic(NewCount(), make([]bool, 9), false)
	require.Error(t, err)
	assert.Equal(t, common.BadArguments, common.CodeOf(err))

	_, err = NewNullVariadic(NewCount(), make([]bool, 8), false)
	require.NoError(t, err)
}

func TestNullVariadicSkipsRowOnAnyNull(t *testing.T) {
	fn, err := NewNullVariadic(NewCount(), []bool{true, false}, false)
	require.NoError(t, err)

	arena := util.NewArena()
	place := CreatePlace(fn, arena)
	nc := nullableInt32Col(t, []int32{1, 2, 3}, []uint8{0, 1, 0})
	plain := column.NewInt32Vector()
	plain.Append(10, 20, 30)
	require.NoError(t, fn.AddBatchSinglePlace(place, []column.Column{nc, plain}, arena))

	out := column.NewUint64Vector()
	require.NoError(t, fn.InsertResultInto(place, out))
	assert.Equal(t, []uint64{2}, out.Data())
}

func TestWrapNullIfNeededPassThrough(t *testing.T) {
	nested := NewCount()
	fn, err := WrapNullIfNeeded(nested, []bool{false, false}, false)
	require.NoError(t, err)
	assert.Equal(t, Function(nested), fn)
}

func TestNullAdapterKeepsName(t *testing.T) {
	fn, err := WrapNullIfNeeded(NewCount(), []bool{true}, false)
	require.NoError(t, err)
	assert.Equal(t, "count", fn.Name())

	sum := NewSum[int32, int64](common.BigintType())
	fn, err = WrapNullIfNeeded(sum, []bool{true}, true)
	require.NoError(t, err)
	assert.Equal(t, "sum", fn.Name())
}

func TestRegistry(t *testing.T) {
	r := NewDefaultRegistry()
	assert.Equal(t, []string{"avg", "count", "max", "min", "sum"}, r.Names())

	create, err := r.Get("sum")
	require.NoError(t, err)
	fn, err := create([]common.LType{common.IntegerType()})
	require.NoError(t, err)
	assert.Equal(t, "sum", fn.Name())
	assert.Equal(t, common.BigintType(), fn.ResultType())

	_, err = r.Get("median")
	require.Error(t, err)

	err = r.Register("count", func([]common.LType) (Function, error) {
		return NewCount(), nil
	})
	require.Error(t, err)
	assert.Equal(t, common.BadArguments, common.CodeOf(err))

	// decimals have no sum kernel yet
	_, err = create([]common.LType{common.Decimal64Type(18, 2)})
	require.Error(t, err)
	assert.Equal(t, common.IllegalType, common.CodeOf(err))
}
