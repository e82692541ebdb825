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
	"fmt"

	dec "github.com/govalues/decimal"
)

type FieldKind int

const (
	NullField FieldKind = iota
	IntField
	UintField
	FloatField
	DecimalField
	BoolField
)

// Field is a boxed scalar for the single-row get/insert APIs. Null is a
// distinguished value, not a missing one.
type Field struct {
	Kind  FieldKind
	I64   int64
	U64   uint64
	F64   float64
	Bool  bool
	Scale int
}

func Null() Field {
	return Field{Kind: NullField}
}

func NewIntField(v int64) Field {
	return Field{Kind: IntField, I64: v}
}

func NewUintField(v uint64) Field {
	return Field{Kind: UintField, U64: v}
}

func NewFloatField(v float64) Field {
	return Field{Kind: FloatField, F64: v}
}

func NewBoolField(v bool) Field {
	return Field{Kind: BoolField, Bool: v}
}

func NewDecimalField(raw int64, scale int) Field {
	return Field{Kind: DecimalField, I64: raw, Scale: scale}
}

func (f Field) IsNull() bool {
	return f.Kind == NullField
}

func (f Field) String() string {
	switch f.Kind {
	case NullField:
		return "NULL"
	case IntField:
		return fmt.Sprintf("%d", f.I64)
	case UintField:
		return fmt.Sprintf("%d", f.U64)
	case FloatField:
		return fmt.Sprintf("%g", f.F64)
	case BoolField:
		return fmt.Sprintf("%v", f.Bool)
	case DecimalField:
		d, err := dec.New(f.I64, f.Scale)
		if err != nil {
			return fmt.Sprintf("%d@%d", f.I64, f.Scale)
		}
		return d.String()
	default:
		panic("usp")
	}
}
