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

package common

import "fmt"

type LTypeId int

const (
	INVALID LTypeId = iota
	BOOLEAN
	INT8
	INT16
	INT32
	INT64
	UINT8
	UINT16
	UINT32
	UINT64
	FLOAT32
	FLOAT64
	DECIMAL32
	DECIMAL64
)

func (id LTypeId) String() string {
	switch id {
	case BOOLEAN:
		return "BOOLEAN"
	case INT8:
		return "INT8"
	case INT16:
		return "INT16"
	case INT32:
		return "INT32"
	case INT64:
		return "INT64"
	case UINT8:
		return "UINT8"
	case UINT16:
		return "UINT16"
	case UINT32:
		return "UINT32"
	case UINT64:
		return "UINT64"
	case FLOAT32:
		return "FLOAT32"
	case FLOAT64:
		return "FLOAT64"
	case DECIMAL32:
		return "DECIMAL32"
	case DECIMAL64:
		return "DECIMAL64"
	default:
		return "INVALID"
	}
}

// LType describes the logical type of a column. Width and Scale only matter
// for decimals.
type LType struct {
	Id    LTypeId
	Width int
	Scale int
}

func BooleanType() LType   { return LType{Id: BOOLEAN} }
func TinyintType() LType   { return LType{Id: INT8} }
func SmallintType() LType  { return LType{Id: INT16} }
func IntegerType() LType   { return LType{Id: INT32} }
func BigintType() LType    { return LType{Id: INT64} }
func UtinyintType() LType  { return LType{Id: UINT8} }
func UsmallintType() LType { return LType{Id: UINT16} }
func UintegerType() LType  { return LType{Id: UINT32} }
func UbigintType() LType   { return LType{Id: UINT64} }
func FloatType() LType     { return LType{Id: FLOAT32} }
func DoubleType() LType    { return LType{Id: FLOAT64} }

func Decimal32Type(width, scale int) LType {
	return LType{Id: DECIMAL32, Width: width, Scale: scale}
}

func Decimal64Type(width, scale int) LType {
	return LType{Id: DECIMAL64, Width: width, Scale: scale}
}

func (lt LType) IsDecimal() bool {
	return lt.Id == DECIMAL32 || lt.Id == DECIMAL64
}

func (lt LType) IsNumeric() bool {
	switch lt.Id {
	case INT8, INT16, INT32, INT64,
		UINT8, UINT16, UINT32, UINT64,
		FLOAT32, FLOAT64, DECIMAL32, DECIMAL64:
		return true
	default:
		return false
	}
}

func (lt LType) Equal(o LType) bool {
	return lt.Id == o.Id && lt.Width == o.Width && lt.Scale == o.Scale
}

func (lt LType) String() string {
	if lt.IsDecimal() {
		return fmt.Sprintf("%s(%d,%d)", lt.Id, lt.Width, lt.Scale)
	}
	return lt.Id.String()
}

// ValueSize is the fixed byte width of a single value of this type.
func (lt LType) ValueSize() int {
	switch lt.Id {
	case BOOLEAN, INT8, UINT8:
		return 1
	case INT16, UINT16:
		return 2
	case INT32, UINT32, FLOAT32, DECIMAL32:
		return 4
	case INT64, UINT64, FLOAT64, DECIMAL64:
		return 8
	default:
		return 0
	}
}
