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

package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/vexec/pkg/column"
	"github.com/daviszhen/vexec/pkg/common"
)

func int32Col(vals ...int32) *column.ColumnVector[int32] {
	vec := column.NewInt32Vector()
	vec.Append(vals...)
	return vec
}

func nullableCol(t *testing.T, vals []int32, nulls []uint8) *column.ColumnNullable {
	t.Helper()
	nm := column.NewUint8Vector()
	nm.Append(nulls...)
	nc, err := column.NewNullable(int32Col(vals...), nm)
	require.NoError(t, err)
	return nc
}

func constCol(t *testing.T, val int32, size int) *column.ColumnConst {
	t.Helper()
	cst, err := column.NewConst(int32Col(val), size)
	require.NoError(t, err)
	return cst
}

func TestBinaryOpVectorVector(t *testing.T) {
	res, err := Plus[int32](int32Col(1, 2, 3), int32Col(10, 20, 30))
	require.NoError(t, err)
	assert.Equal(t, []int32{11, 22, 33}, res.(*column.ColumnVector[int32]).Data())

	res, err = Minus[int32](int32Col(5, 5), int32Col(2, 7))
	require.NoError(t, err)
	assert.Equal(t, []int32{3, -2}, res.(*column.ColumnVector[int32]).Data())
}

func TestBinaryOpConstVector(t *testing.T) {
	res, err := Multiply[int32](constCol(t, 10, 3), int32Col(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, []int32{10, 20, 30}, res.(*column.ColumnVector[int32]).Data())

	// argument order does not matter
	res, err = Multiply[int32](int32Col(1, 2, 3), constCol(t, 10, 3))
	require.NoError(t, err)
	assert.Equal(t, []int32{10, 20, 30}, res.(*column.ColumnVector[int32]).Data())
}

func TestBinaryOpConstConst(t *testing.T) {
	res, err := Plus[int32](constCol(t, 2, 4), constCol(t, 3, 4))
	require.NoError(t, err)
	require.True(t, column.IsConst(res))
	assert.Equal(t, 4, res.Size())
	assert.Equal(t, int64(5), res.GetField(0).I64)
}

func TestBinaryOpNullPropagation(t *testing.T) {
	a := nullableCol(t, []int32{1, 2, 3}, []uint8{0, 1, 0})
	b := int32Col(10, 20, 30)

	res, err := Plus[int32](a, b)
	require.NoError(t, err)
	nc := res.(*column.ColumnNullable)
	require.NoError(t, nc.CheckConsistency())
	assert.Equal(t, int64(11), nc.GetField(0).I64)
	assert.True(t, nc.IsNullAt(1))
	assert.Equal(t, int64(33), nc.GetField(2).I64)

	// nulls on both sides union up
	c := nullableCol(t, []int32{10, 20, 30}, []uint8{1, 0, 0})
	res, err = Plus[int32](a, c)
	require.NoError(t, err)
	nc = res.(*column.ColumnNullable)
	assert.True(t, nc.IsNullAt(0))
	assert.True(t, nc.IsNullAt(1))
	assert.False(t, nc.IsNullAt(2))
}

func TestBinaryOpConstNullPoisons(t *testing.T) {
	// const NULL times a plain vector nulls every row
	one := nullableCol(t, []int32{0}, []uint8{1})
	cst, err := column.NewConst(one, 3)
	require.NoError(t, err)

	res, err := Multiply[int32](cst, int32Col(1, 2, 3))
	require.NoError(t, err)
	nc := res.(*column.ColumnNullable)
	for i := 0; i < 3; i++ {
		assert.True(t, nc.IsNullAt(i))
	}

	// const null times const stays a single const null
	res, err = Multiply[int32](cst, constCol(t, 7, 3))
	require.NoError(t, err)
	require.True(t, column.IsConst(res))
	assert.Equal(t, 3, res.Size())
	assert.True(t, res.GetField(0).IsNull())
}

func TestBinaryOpSizeMismatch(t *testing.T) {
	_, err := Plus[int32](int32Col(1), int32Col(1, 2))
	require.Error(t, err)
	assert.Equal(t, common.SizesOfColumnsDontMatch, common.CodeOf(err))
}

func TestBinaryOpIllegalColumn(t *testing.T) {
	wide := column.NewInt64Vector()
	wide.Append(1, 2)
	_, err := Plus[int32](int32Col(1, 2), wide)
	require.Error(t, err)
	assert.Equal(t, common.IllegalColumn, common.CodeOf(err))
}

func TestCompareColumns(t *testing.T) {
	a := int32Col(1, 2, 3, 4)
	b := int32Col(1, 5, 2, 4)

	mask, err := CompareColumns(a, b, CmpEq, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 1}, mask)

	mask, err = CompareColumns(a, b, CmpLt, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 0, 0}, mask)

	mask, err = CompareColumns(a, b, CmpGe, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 1, 1}, mask)
}

func TestCompareColumnsNulls(t *testing.T) {
	a := nullableCol(t, []int32{1, 2, 3}, []uint8{0, 1, 0})
	b := int32Col(1, 2, 9)

	// a null fails every operator, Ne included
	mask, err := CompareColumns(a, b, CmpNe, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 1}, mask)

	mask, err = CompareColumns(a, b, CmpEq, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0}, mask)

	// both nullable
	c := nullableCol(t, []int32{1, 2, 3}, []uint8{0, 0, 1})
	mask, err = CompareColumns(a, c, CmpEq, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0}, mask)
}
