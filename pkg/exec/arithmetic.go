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

// argView flattens the const/nullable shell of one argument so the binary
// loops below only see values.
type argView[T column.Numeric] struct {
	isConst  bool
	constVal T
	data     []T
	nulls    []uint8
}

func (v *argView[T]) at(i int) T {
	if v.isConst {
		return v.constVal
	}
	return v.data[i]
}

func (v *argView[T]) nullAt(i int) bool {
	return v.nulls != nil && v.nulls[i] != 0
}

func viewOf[T column.Numeric](col column.Column) (argView[T], error) {
	var view argView[T]
	inner := col
	if nc, ok := inner.(*column.ColumnNullable); ok {
		view.nulls = nc.NullMap().Data()
		inner = nc.Nested()
	}
	if cst, ok := inner.(*column.ColumnConst); ok {
		view.isConst = true
		inner = cst.DataColumn()
		if nc, ok := inner.(*column.ColumnNullable); ok {
			if nc.IsNullAt(0) {
				// a const NULL poisons every row
				view.nulls = []uint8{1}
			}
			inner = nc.Nested()
		}
		vec, ok := inner.(*column.ColumnVector[T])
		if !ok {
			return view, common.NewError(common.IllegalColumn,
				"illegal column %s in arithmetic function", col.Name())
		}
		view.constVal = vec.Data()[0]
		return view, nil
	}
	vec, ok := inner.(*column.ColumnVector[T])
	if !ok {
		return view, common.NewError(common.IllegalColumn,
			"illegal column %s in arithmetic function", col.Name())
	}
	view.data = vec.Data()
	return view, nil
}

// BinaryOp applies op row-wise across the four const/vector shape
// combinations. A null on either side nulls the row; the result is nullable
// only when an argument was.
func BinaryOp[T column.Numeric](a, b column.Column, op func(x, y T) T) (column.Column, error) {
	if a.Size() != b.Size() {
		return nil, common.NewError(common.SizesOfColumnsDontMatch,
			"sizes of arguments %d and %d don't match in arithmetic function",
			a.Size(), b.Size())
	}
	av, err := viewOf[T](a)
	if err != nil {
		return nil, err
	}
	bv, err := viewOf[T](b)
	if err != nil {
		return nil, err
	}
	size := a.Size()
	nullable := av.nulls != nil || bv.nulls != nil

	constNull := func(v *argView[T]) bool {
		return v.isConst && v.nulls != nil && v.nulls[0] != 0
	}

	if av.isConst && bv.isConst {
		one := column.NewVector[T](a.Type())
		var out column.Column
		if constNull(&av) || constNull(&bv) {
			one.Append(*new(T))
			nm := column.NewUint8Vector()
			nm.Append(1)
			nc, err := column.NewNullable(one, nm)
			if err != nil {
				return nil, err
			}
			out = nc
		} else {
			one.Append(op(av.constVal, bv.constVal))
			out = one
			if nullable {
				out = column.MakeNullable(out)
			}
		}
		return column.NewConst(out, size)
	}

	res := column.NewVector[T](a.Type())
	res.Reserve(size)
	var nullMap *column.ColumnVector[uint8]
	if nullable {
		nullMap = column.NewUint8Vector()
		nullMap.Reserve(size)
	}
	for i := 0; i < size; i++ {
		null := false
		if av.isConst {
			null = constNull(&av)
		} else {
			null = av.nullAt(i)
		}
		if !null {
			if bv.isConst {
				null = constNull(&bv)
			} else {
				null = bv.nullAt(i)
			}
		}
		if null {
			res.Append(*new(T))
			nullMap.Append(1)
			continue
		}
		res.Append(op(av.at(i), bv.at(i)))
		if nullMap != nil {
			nullMap.Append(0)
		}
	}
	if nullMap != nil {
		return column.NewNullable(res, nullMap)
	}
	return res, nil
}

func Multiply[T column.Numeric](a, b column.Column) (column.Column, error) {
	return BinaryOp(a, b, func(x, y T) T { return x * y })
}

func Plus[T column.Numeric](a, b column.Column) (column.Column, error) {
	return BinaryOp(a, b, func(x, y T) T { return x + y })
}

func Minus[T column.Numeric](a, b column.Column) (column.Column, error) {
	return BinaryOp(a, b, func(x, y T) T { return x - y })
}
