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

// Three-valued logic encoded so AND is bitwise-and and OR is bitwise-or:
// False = 0b00000000, Null = 0b00000001, True = 0b11111111.
// True&Null = Null, False&anything = False, True|anything = True,
// False|Null = Null.
const (
	TernaryFalse uint8 = 0
	TernaryNull  uint8 = 1
	TernaryTrue  uint8 = 0xFF
)

func TernaryMake(value, isNull bool) uint8 {
	if isNull {
		return TernaryNull
	}
	if value {
		return TernaryTrue
	}
	return TernaryFalse
}

func TernaryAnd(a, b uint8) uint8 {
	return a & b
}

func TernaryOr(a, b uint8) uint8 {
	return a | b
}

func TernaryNot(a uint8) uint8 {
	if a == TernaryNull {
		return TernaryNull
	}
	return ^a
}

func TernaryIsTrue(a uint8) bool {
	return a == TernaryTrue
}

func TernaryIsNull(a uint8) bool {
	return a != TernaryFalse && a != TernaryTrue
}

// ternaryOf encodes row n of a boolean-ish column, reading nullability from
// the variant.
func ternaryOf(col column.Column, n int) (uint8, error) {
	f := col.GetField(n)
	if f.IsNull() {
		return TernaryNull, nil
	}
	switch f.Kind {
	case column.UintField:
		return TernaryMake(f.U64 != 0, false), nil
	case column.IntField:
		return TernaryMake(f.I64 != 0, false), nil
	case column.BoolField:
		return TernaryMake(f.Bool, false), nil
	default:
		return TernaryFalse, common.NewError(common.IllegalType,
			"illegal column %s for boolean function", col.Name())
	}
}

// LogicalAnd evaluates SQL AND over two boolean columns into a nullable
// UInt8 column.
func LogicalAnd(a, b column.Column) (column.Column, error) {
	return logicalBinary(a, b, TernaryAnd)
}

// LogicalOr evaluates SQL OR over two boolean columns into a nullable
// UInt8 column.
func LogicalOr(a, b column.Column) (column.Column, error) {
	return logicalBinary(a, b, TernaryOr)
}

func logicalBinary(a, b column.Column, op func(x, y uint8) uint8) (column.Column, error) {
	if a.Size() != b.Size() {
		return nil, common.NewError(common.SizesOfColumnsDontMatch,
			"sizes of arguments %d and %d don't match in logical function",
			a.Size(), b.Size())
	}
	res := column.NewVector[uint8](common.BooleanType())
	nullMap := column.NewUint8Vector()
	res.Reserve(a.Size())
	nullMap.Reserve(a.Size())
	for i := 0; i < a.Size(); i++ {
		x, err := ternaryOf(a, i)
		if err != nil {
			return nil, err
		}
		y, err := ternaryOf(b, i)
		if err != nil {
			return nil, err
		}
		t := op(x, y)
		if TernaryIsNull(t) {
			res.Append(0)
			nullMap.Append(1)
		} else if TernaryIsTrue(t) {
			res.Append(1)
			nullMap.Append(0)
		} else {
			res.Append(0)
			nullMap.Append(0)
		}
	}
	return column.NewNullable(res, nullMap)
}

// LogicalNot evaluates SQL NOT into a nullable UInt8 column.
func LogicalNot(a column.Column) (column.Column, error) {
	res := column.NewVector[uint8](common.BooleanType())
	nullMap := column.NewUint8Vector()
	res.Reserve(a.Size())
	nullMap.Reserve(a.Size())
	for i := 0; i < a.Size(); i++ {
		v, err := ternaryOf(a, i)
		if err != nil {
			return nil, err
		}
		t := TernaryNot(v)
		if TernaryIsNull(t) {
			res.Append(0)
			nullMap.Append(1)
		} else if TernaryIsTrue(t) {
			res.Append(1)
			nullMap.Append(0)
		} else {
			res.Append(0)
			nullMap.Append(0)
		}
	}
	return column.NewNullable(res, nullMap)
}
