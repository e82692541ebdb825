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
	"github.com/daviszhen/vexec/pkg/column"
	"github.com/daviszhen/vexec/pkg/common"
)

type CompareOp int

const (
	CmpEq CompareOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

func (op CompareOp) holds(cmp int) bool {
	switch op {
	case CmpEq:
		return cmp == 0
	case CmpNe:
		return cmp != 0
	case CmpLt:
		return cmp < 0
	case CmpLe:
		return cmp <= 0
	case CmpGt:
		return cmp > 0
	case CmpGe:
		return cmp >= 0
	default:
		panic("usp")
	}
}

// CompareColumns builds a filter mask: mask[i] is 1 when a[i] op b[i]. A
// null on either side fails every operator, Ne included.
func CompareColumns(a, b column.Column, op CompareOp, nanHint int) ([]byte, error) {
	if a.Size() != b.Size() {
		return nil, common.NewError(common.SizesOfColumnsDontMatch,
			"sizes of arguments %d and %d don't match in comparison",
			a.Size(), b.Size())
	}
	mask := make([]byte, a.Size())
	an, aNullable := a.(*column.ColumnNullable)
	bn, bNullable := b.(*column.ColumnNullable)
	for i := range mask {
		if aNullable && an.IsNullAt(i) {
			continue
		}
		if bNullable && bn.IsNullAt(i) {
			continue
		}
		lhs, rhs := a, b
		if aNullable != bNullable {
			// CompareAt requires matching variants
			if aNullable {
				lhs = an.Nested()
			} else {
				rhs = bn.Nested()
			}
		}
		if op.holds(lhs.CompareAt(i, i, rhs, nanHint)) {
			mask[i] = 1
		}
	}
	return mask, nil
}
