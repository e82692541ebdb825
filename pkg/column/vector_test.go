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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/util"
)

func TestVectorFilter(t *testing.T) {
	vec := NewInt32Vector()
	vec.Append(10, 20, 30, 40, 50)

	res, err := vec.Filter([]byte{1, 0, 1, 0, 1}, -1)
	require.NoError(t, err)
	require.Equal(t, 3, res.Size())
	assert.Equal(t, []int32{10, 30, 50}, res.(*ColumnVector[int32]).Data())

	// mask size mismatch
	_, err = vec.Filter([]byte{1, 0}, 0)
	require.Error(t, err)
	assert.Equal(t, common.SizesOfColumnsDontMatch, common.CodeOf(err))
}

func TestVectorReplicate(t *testing.T) {
	vec := NewInt32Vector()
	vec.Append(7, 8, 9)

	res, err := vec.Replicate([]int{2, 2, 5})
	require.NoError(t, err)
	assert.Equal(t, []int32{7, 7, 9, 9, 9}, res.(*ColumnVector[int32]).Data())

	_, err = vec.Replicate([]int{1})
	require.Error(t, err)

	empty := NewInt32Vector()
	res, err = empty.Replicate(nil)
	require.NoError(t, err)
	assert.Zero(t, res.Size())
}

func TestVectorPermute(t *testing.T) {
	vec := NewInt64Vector()
	vec.Append(1, 2, 3, 4)

	res, err := vec.Permute([]int{3, 2, 1, 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 2, 1}, res.(*ColumnVector[int64]).Data())

	res, err = vec.Permute([]int{3, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 1}, res.(*ColumnVector[int64]).Data())

	_, err = vec.Permute([]int{0}, 3)
	require.Error(t, err)
}

func TestVectorScatter(t *testing.T) {
	vec := NewInt32Vector()
	vec.Append(0, 1, 2, 3, 4, 5)
	parts, err := vec.Scatter(2, []int{0, 1, 0, 1, 0, 1})
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, []int32{0, 2, 4}, parts[0].(*ColumnVector[int32]).Data())
	assert.Equal(t, []int32{1, 3, 5}, parts[1].(*ColumnVector[int32]).Data())
}

func TestVectorSerializeRoundTrip(t *testing.T) {
	vec := NewFloat64Vector()
	vec.Append(3.5, -7.25, 0)

	arena := util.NewArena()
	fresh := NewFloat64Vector()
	for n := 0; n < vec.Size(); n++ {
		var begin []byte
		span := vec.SerializeValueIntoArena(n, arena, &begin)
		require.Equal(t, 8, len(span))
		rest := fresh.DeserializeAndInsertFromArena(span)
		assert.Empty(t, rest)
	}
	assert.Equal(t, vec.Data(), fresh.Data())
}

func TestVectorGetPermutationNaN(t *testing.T) {
	vec := NewFloat64Vector()
	vec.Append(3.0, math.NaN(), 1.0)

	perm := vec.GetPermutation(false, 0, 1)
	assert.Equal(t, []int{2, 0, 1}, perm)

	perm = vec.GetPermutation(false, 0, -1)
	assert.Equal(t, []int{1, 2, 0}, perm)
}

func TestVectorCompareAt(t *testing.T) {
	a := NewFloat64Vector()
	a.Append(1.0, math.NaN())
	b := NewFloat64Vector()
	b.Append(2.0, math.NaN())

	assert.Equal(t, -1, a.CompareAt(0, 0, b, 1))
	assert.Equal(t, 1, b.CompareAt(0, 0, a, 1))
	// NaN vs NaN is equal under any hint
	assert.Equal(t, 0, a.CompareAt(1, 1, b, 1))
	assert.Equal(t, 0, a.CompareAt(1, 1, b, -1))
	// NaN vs value follows the hint
	assert.Equal(t, 1, a.CompareAt(1, 0, b, 1))
	assert.Equal(t, -1, a.CompareAt(1, 0, b, -1))

	// integers ignore the hint
	x := NewInt32Vector()
	x.Append(5)
	y := NewInt32Vector()
	y.Append(5)
	assert.Equal(t, 0, x.CompareAt(0, 0, y, 1))
	assert.Equal(t, 0, x.CompareAt(0, 0, y, -1))
}

func TestVectorCloneResized(t *testing.T) {
	vec := NewInt32Vector()
	vec.Append(1, 2, 3)

	grown := vec.CloneResized(5).(*ColumnVector[int32])
	assert.Equal(t, []int32{1, 2, 3, 0, 0}, grown.Data())

	cut := vec.CloneResized(2).(*ColumnVector[int32])
	assert.Equal(t, []int32{1, 2}, cut.Data())

	grown.Data()[0] = 99
	assert.Equal(t, int32(1), vec.Data()[0])
}

func TestVectorInsertOps(t *testing.T) {
	vec := NewInt32Vector()
	require.NoError(t, vec.InsertField(NewIntField(11)))
	vec.InsertDefault()
	vec.InsertManyDefaults(2)
	assert.Equal(t, []int32{11, 0, 0, 0}, vec.Data())

	src := NewInt32Vector()
	src.Append(7, 8, 9)
	require.NoError(t, vec.InsertFrom(src, 2))
	require.NoError(t, vec.InsertRangeFrom(src, 0, 2))
	assert.Equal(t, []int32{11, 0, 0, 0, 9, 7, 8}, vec.Data())

	err := vec.InsertRangeFrom(src, 2, 2)
	require.Error(t, err)
	assert.Equal(t, common.ParameterOutOfBound, common.CodeOf(err))

	err = vec.InsertField(Null())
	require.Error(t, err)

	vec.PopBack(3)
	assert.Equal(t, []int32{11, 0, 0, 0}, vec.Data())
}

func TestVectorGetExtremes(t *testing.T) {
	vec := NewFloat64Vector()
	minV, maxV := vec.GetExtremes()
	assert.True(t, minV.IsNull())
	assert.True(t, maxV.IsNull())

	vec.Append(5, math.NaN(), -3, 9)
	minV, maxV = vec.GetExtremes()
	assert.Equal(t, -3.0, minV.F64)
	assert.Equal(t, 9.0, maxV.F64)
}

func TestVectorInsertData(t *testing.T) {
	vec := NewInt32Vector()
	require.NoError(t, vec.InsertData(util.ToBytes([]int32{42})))
	require.NoError(t, vec.InsertData(util.ToBytes([]int32{-7})))
	assert.Equal(t, []int32{42, -7}, vec.Data())

	err := vec.InsertData([]byte{1, 2})
	require.Error(t, err)
	assert.Equal(t, common.BadArguments, common.CodeOf(err))
}

func TestVectorStructureEquals(t *testing.T) {
	a := NewInt32Vector()
	b := NewInt32Vector()
	c := NewInt64Vector()
	assert.True(t, a.StructureEquals(b))
	assert.False(t, a.StructureEquals(c))

	// same value width, different logical type
	d := NewUint8Vector()
	e := NewVector[uint8](common.BooleanType())
	assert.False(t, d.StructureEquals(e))
	assert.True(t, e.StructureEquals(NewVector[uint8](common.BooleanType())))
}

func TestVectorUpdateHash(t *testing.T) {
	vec := NewInt64Vector()
	vec.Append(1, 2, 1)

	sum := func(n int) uint64 {
		h := util.NewHasher()
		vec.UpdateHashWithValue(n, h)
		return h.Sum64()
	}
	assert.Equal(t, sum(0), sum(2))
	assert.NotEqual(t, sum(0), sum(1))
}
