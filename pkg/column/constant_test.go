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

	"github.com/daviszhen/vexec/pkg/common"
)

func newConstInt32(t *testing.T, val int32, s int) *ColumnConst {
	one := NewInt32Vector()
	one.Append(val)
	cst, err := NewConst(one, s)
	require.NoError(t, err)
	return cst
}

func TestConstConstruction(t *testing.T) {
	// data of size != 1 is rejected
	bad := NewInt32Vector()
	bad.Append(1, 2)
	_, err := NewConst(bad, 5)
	require.Error(t, err)
	assert.Equal(t, common.SizesOfColumnsDontMatch, common.CodeOf(err))

	// const of const squashes to the innermost data column
	inner := newConstInt32(t, 42, 3)
	outer, err := NewConst(inner, 7)
	require.NoError(t, err)
	assert.False(t, IsConst(outer.DataColumn()))
	assert.Equal(t, 7, outer.Size())
	assert.Equal(t, int64(42), outer.GetField(0).I64)
}

func TestConstReads(t *testing.T) {
	cst := newConstInt32(t, 42, 5)
	assert.Equal(t, 5, cst.Size())
	for k := 0; k < 5; k++ {
		assert.Equal(t, int64(42), cst.GetField(k).I64)
	}
}

func TestConstInsertIsMetadataOnly(t *testing.T) {
	cst := newConstInt32(t, 1, 5)
	sizeBefore := cst.ByteSize()
	require.NoError(t, cst.InsertField(NewIntField(999)))
	cst.InsertDefault()
	cst.InsertManyDefaults(3)
	require.NoError(t, cst.InsertData(nil))
	assert.Equal(t, 11, cst.Size())
	assert.Equal(t, sizeBefore, cst.ByteSize())
	// the value never changes
	assert.Equal(t, int64(1), cst.GetField(10).I64)
}

func TestConstFilterReplicatePermute(t *testing.T) {
	cst := newConstInt32(t, 9, 4)

	res, err := cst.Filter([]byte{1, 0, 0, 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Size())

	res, err = cst.Replicate([]int{1, 3, 3, 6})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Size())

	res, err = cst.Permute([]int{3, 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Size())

	_, err = cst.Filter([]byte{1}, 0)
	require.Error(t, err)
}

func TestConstConvertToFull(t *testing.T) {
	cst := newConstInt32(t, 3, 4)
	full := ConvertToFullColumn(cst)
	require.False(t, IsConst(full))
	assert.Equal(t, []int32{3, 3, 3, 3}, full.(*ColumnVector[int32]).Data())
}

func TestConstSerializeRefused(t *testing.T) {
	cst := newConstInt32(t, 3, 4)
	assert.Panics(t, func() {
		var begin []byte
		cst.SerializeValueIntoArena(0, nil, &begin)
	})
}

func TestConstStructureEquals(t *testing.T) {
	a := newConstInt32(t, 1, 2)
	b := newConstInt32(t, 9, 5)
	assert.True(t, a.StructureEquals(b))
	assert.False(t, a.StructureEquals(NewInt32Vector()))
}
