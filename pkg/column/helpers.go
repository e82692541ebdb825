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

	"github.com/daviszhen/vexec/pkg/common"
)

type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// compareValue three-way compares two values of one numeric type. Floats
// follow the NaN hint: NaN sorts above everything when nanHint > 0, below
// everything when nanHint < 0, and NaN vs NaN is equal. Integers never
// consult the hint.
func compareValue[T Numeric](a, b T, nanHint int) int {
	switch av := any(a).(type) {
	case float32:
		return compareFloat(float64(av), float64(any(b).(float32)), nanHint)
	case float64:
		return compareFloat(av, any(b).(float64), nanHint)
	}
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func compareFloat(a, b float64, nanHint int) int {
	aNan := math.IsNaN(a)
	bNan := math.IsNaN(b)
	if aNan {
		if bNan {
			return 0
		}
		return nanHint
	}
	if bNan {
		return -nanHint
	}
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

// CountBytesInFilter is the result size of Filter for a given mask.
func CountBytesInFilter(mask []byte) int {
	cnt := 0
	for _, b := range mask {
		if b != 0 {
			cnt++
		}
	}
	return cnt
}

func filterLoop[T Numeric](data []T, mask []byte, sizeHint int) []T {
	var res []T
	if sizeHint > 0 {
		res = make([]T, 0, sizeHint)
	} else {
		res = make([]T, 0, CountBytesInFilter(mask))
	}
	for i, b := range mask {
		if b != 0 {
			res = append(res, data[i])
		}
	}
	return res
}

func replicateLoop[T Numeric](data []T, offsets []int) []T {
	total := 0
	if len(offsets) != 0 {
		total = offsets[len(offsets)-1]
	}
	res := make([]T, 0, total)
	prev := 0
	for i, off := range offsets {
		for j := prev; j < off; j++ {
			res = append(res, data[i])
		}
		prev = off
	}
	return res
}

func permuteLoop[T Numeric](data []T, perm []int, limit int) []T {
	res := make([]T, limit)
	for i := 0; i < limit; i++ {
		res[i] = data[perm[i]]
	}
	return res
}

func scatterLoop[T Numeric](data []T, numBuckets int, selector []int) [][]T {
	counts := make([]int, numBuckets)
	for _, s := range selector {
		counts[s]++
	}
	res := make([][]T, numBuckets)
	for b := 0; b < numBuckets; b++ {
		res[b] = make([]T, 0, counts[b])
	}
	for i, s := range selector {
		res[s] = append(res[s], data[i])
	}
	return res
}

// effectiveLimit clamps a permutation limit per the Permute contract.
func effectiveLimit(limit, size int) int {
	if limit == 0 || limit > size {
		return size
	}
	return limit
}

func checkFilterMask(maskLen, size int) error {
	if maskLen != size {
		return common.NewError(common.SizesOfColumnsDontMatch,
			"size of filter %d doesn't match size of column %d", maskLen, size)
	}
	return nil
}

func checkOffsets(offsetsLen, size int) error {
	if offsetsLen != size {
		return common.NewError(common.SizesOfColumnsDontMatch,
			"size of offsets %d doesn't match size of column %d", offsetsLen, size)
	}
	return nil
}

func checkSelector(selLen, size int) error {
	if selLen != size {
		return common.NewError(common.SizesOfColumnsDontMatch,
			"size of selector %d doesn't match size of column %d", selLen, size)
	}
	return nil
}

func checkPermutation(permLen, limit int) error {
	if permLen < limit {
		return common.NewError(common.SizesOfColumnsDontMatch,
			"size of permutation %d is less than required %d", permLen, limit)
	}
	return nil
}

func checkRange(start, length, size int) error {
	if start+length > size {
		return common.NewError(common.ParameterOutOfBound,
			"parameters start = %d, length = %d are out of bound in "+
				"InsertRangeFrom method (size = %d)", start, length, size)
	}
	return nil
}

func identityPerm(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}
