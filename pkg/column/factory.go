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
	"github.com/daviszhen/vexec/pkg/common"
)

// NewColumnFromType builds an empty column for a logical type.
func NewColumnFromType(typ common.LType) (Column, error) {
	switch typ.Id {
	case common.BOOLEAN, common.UINT8:
		return NewUint8Vector(), nil
	case common.INT8:
		return NewInt8Vector(), nil
	case common.INT16:
		return NewInt16Vector(), nil
	case common.INT32:
		return NewInt32Vector(), nil
	case common.INT64:
		return NewInt64Vector(), nil
	case common.UINT16:
		return NewUint16Vector(), nil
	case common.UINT32:
		return NewUint32Vector(), nil
	case common.UINT64:
		return NewUint64Vector(), nil
	case common.FLOAT32:
		return NewFloat32Vector(), nil
	case common.FLOAT64:
		return NewFloat64Vector(), nil
	case common.DECIMAL32:
		return NewDecimal32Column(typ.Width, typ.Scale), nil
	case common.DECIMAL64:
		return NewDecimal64Column(typ.Width, typ.Scale), nil
	default:
		return nil, common.NewError(common.IllegalType,
			"cannot create column of type %s", typ)
	}
}

// NewNullableColumnFromType builds an empty nullable column for a logical
// type.
func NewNullableColumnFromType(typ common.LType) (Column, error) {
	nested, err := NewColumnFromType(typ)
	if err != nil {
		return nil, err
	}
	return NewNullable(nested, NewUint8Vector())
}
