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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/vexec/pkg/util"
)

func TestDecimalCrossScaleCompare(t *testing.T) {
	// 1.50 stored at scale 2, 1.500 stored at scale 3: equal values,
	// different raw representations
	a := NewDecimal64Column(18, 2)
	a.Append(150)
	b := NewDecimal64Column(18, 3)
	b.Append(1500)

	assert.Equal(t, 0, a.CompareAt(0, 0, b, 0))
	assert.Equal(t, 0, b.CompareAt(0, 0, a, 0))

	// 1.51 > 1.500
	c := NewDecimal64Column(18, 2)
	c.Append(151)
	assert.Equal(t, 1, c.CompareAt(0, 0, b, 0))
	assert.Equal(t, -1, b.CompareAt(0, 0, c, 0))
}

func TestDecimalSameScaleCompare(t *testing.T) {
	a := NewDecimal32Column(9, 2)
	a.Append(100, 200)
	assert.Equal(t, -1, a.CompareAt(0, 1, a, 0))
	assert.Equal(t, 1, a.CompareAt(1, 0, a, 0))
	assert.Equal(t, 0, a.CompareAt(0, 0, a, 0))
}

func TestDecimalGetPermutation(t *testing.T) {
	col := NewDecimal64Column(18, 2)
	col.Append(300, 100, 200)

	assert.Equal(t, []int{1, 2, 0}, col.GetPermutation(false, 0, 0))
	assert.Equal(t, []int{0, 2, 1}, col.GetPermutation(true, 0, 0))
	assert.Equal(t, []int{1, 2}, col.GetPermutation(false, 2, 0))
}

func TestDecimalSerializeRoundTrip(t *testing.T) {
	col := NewDecimal32Column(9, 2)
	col.Append(150, -25)

	arena := util.NewArena()
	fresh := NewDecimal32Column(9, 2)
	for n := 0; n < col.Size(); n++ {
		var begin []byte
		span := col.SerializeValueIntoArena(n, arena, &begin)
		require.Equal(t, 4, len(span))
		rest := fresh.DeserializeAndInsertFromArena(span)
		assert.Empty(t, rest)
	}
	assert.Equal(t, col.Data(), fresh.Data())
}

func TestDecimalInsertField(t *testing.T) {
	col := NewDecimal64Column(18, 2)
	require.NoError(t, col.InsertField(NewDecimalField(150, 2)))
	// integers upscale into the column's scale
	require.NoError(t, col.InsertField(NewIntField(3)))
	assert.Equal(t, []int64{150, 300}, col.Data())

	require.Error(t, col.InsertField(NewDecimalField(1500, 3)))
	require.Error(t, col.InsertField(Null()))
}

func TestDecimalStructureEquals(t *testing.T) {
	a := NewDecimal64Column(18, 2)
	b := NewDecimal64Column(18, 2)
	c := NewDecimal64Column(18, 3)
	assert.True(t, a.StructureEquals(b))
	assert.False(t, a.StructureEquals(c))
	assert.False(t, a.StructureEquals(NewInt64Vector()))
}

func TestDecimalFilterAndExtremes(t *testing.T) {
	col := NewDecimal64Column(18, 2)
	col.Append(300, 100, 200)

	res, err := col.Filter([]byte{1, 0, 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{300, 200}, res.(*ColumnDecimal[int64]).Data())

	minV, maxV := col.GetExtremes()
	assert.Equal(t, int64(100), minV.I64)
	assert.Equal(t, 2, minV.Scale)
	assert.Equal(t, int64(300), maxV.I64)
}
