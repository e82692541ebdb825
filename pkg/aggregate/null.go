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

package aggregate

import (
	"github.com/daviszhen/vexec/pkg/column"
	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/util"
)

// maxNullAdapterArgs bounds the variadic adapter.
const maxNullAdapterArgs = 8

// nullBase adds null skipping around a nested aggregate. When the result is
// nullable the state carries a leading "seen a non-null row" flag, padded to
// the nested state's alignment so the nested state stays aligned behind it.
type nullBase struct {
	nested           Function
	resultIsNullable bool
	prefixSize       int
}

func makeNullBase(nested Function, resultIsNullable bool) nullBase {
	prefix := 0
	if resultIsNullable {
		prefix = nested.AlignOfData()
	}
	return nullBase{
		nested:           nested,
		resultIsNullable: resultIsNullable,
		prefixSize:       prefix,
	}
}

// Name stays the nested function's name; the adapter is transparent to
// callers resolving results by function name.
func (b *nullBase) Name() string {
	return b.nested.Name()
}

func (b *nullBase) ResultType() common.LType { return b.nested.ResultType() }

func (b *nullBase) SizeOfData() int  { return b.prefixSize + b.nested.SizeOfData() }
func (b *nullBase) AlignOfData() int { return b.nested.AlignOfData() }

func (b *nullBase) nestedPlace(place Place) Place {
	return place[b.prefixSize:]
}

func (b *nullBase) setFlag(place Place) {
	if b.resultIsNullable {
		place[0] = 1
	}
}

func (b *nullBase) getFlag(place Place) bool {
	return !b.resultIsNullable || place[0] != 0
}

func (b *nullBase) Create(place Place) {
	if b.resultIsNullable {
		place[0] = 0
	}
	b.nested.Create(b.nestedPlace(place))
}

func (b *nullBase) Destroy(place Place) {
	b.nested.Destroy(b.nestedPlace(place))
}

func (b *nullBase) HasTrivialDestructor() bool   { return b.nested.HasTrivialDestructor() }
func (b *nullBase) AllocatesMemoryInArena() bool { return b.nested.AllocatesMemoryInArena() }

func (b *nullBase) Merge(place Place, rhs Place, arena *util.Arena) error {
	if b.resultIsNullable && b.getFlag(rhs) {
		b.setFlag(place)
	}
	return b.nested.Merge(b.nestedPlace(place), b.nestedPlace(rhs), arena)
}

func (b *nullBase) InsertResultInto(place Place, to column.Column) error {
	if !b.resultIsNullable {
		return b.nested.InsertResultInto(b.nestedPlace(place), to)
	}
	nc, ok := to.(*column.ColumnNullable)
	if !ok {
		return common.NewError(common.IllegalColumn,
			"illegal result column %s for aggregate function %s, expected nullable",
			to.Name(), b.Name())
	}
	if !b.getFlag(place) {
		nc.InsertDefault()
		return nil
	}
	if err := b.nested.InsertResultInto(b.nestedPlace(place), nc.Nested()); err != nil {
		return err
	}
	nc.NullMap().Append(0)
	return nil
}

// NullUnary skips rows where its single argument is null.
type NullUnary struct {
	nullBase
}

func NewNullUnary(nested Function, resultIsNullable bool) *NullUnary {
	return &NullUnary{nullBase: makeNullBase(nested, resultIsNullable)}
}

func (f *NullUnary) Add(place Place, cols []column.Column, row int, arena *util.Arena) error {
	if len(cols) != 1 {
		return common.NewError(common.NumberOfArgumentsDoesntMatch,
			"aggregate function %s expects 1 argument, got %d", f.Name(), len(cols))
	}
	nc, ok := cols[0].(*column.ColumnNullable)
	if !ok {
		f.setFlag(place)
		return f.nested.Add(f.nestedPlace(place), cols, row, arena)
	}
	if nc.IsNullAt(row) {
		return nil
	}
	f.setFlag(place)
	return f.nested.Add(f.nestedPlace(place), []column.Column{nc.Nested()}, row, arena)
}

func (f *NullUnary) AddBatch(places []Place, cols []column.Column, arena *util.Arena) error {
	return addBatchLoop(f, places, cols, arena)
}

func (f *NullUnary) AddBatchSinglePlace(place Place, cols []column.Column, arena *util.Arena) error {
	return addBatchSinglePlaceLoop(f, place, cols, arena)
}

// NullVariadic skips a row when any of its arguments is null there.
type NullVariadic struct {
	nullBase
	argIsNullable []bool
}

func NewNullVariadic(nested Function, argIsNullable []bool, resultIsNullable bool) (*NullVariadic, error) {
	if len(argIsNullable) == 1 {
		return nil, common.NewError(common.Logical,
			"single argument is passed to %s adapter, use the unary adapter", nested.Name())
	}
	if len(argIsNullable) > maxNullAdapterArgs {
		return nil, common.NewError(common.BadArguments,
			"maximum number of arguments for aggregate function with nullable types is %d",
			maxNullAdapterArgs)
	}
	return &NullVariadic{
		nullBase:      makeNullBase(nested, resultIsNullable),
		argIsNullable: argIsNullable,
	}, nil
}

func (f *NullVariadic) Add(place Place, cols []column.Column, row int, arena *util.Arena) error {
	if len(cols) != len(f.argIsNullable) {
		return common.NewError(common.NumberOfArgumentsDoesntMatch,
			"aggregate function %s expects %d arguments, got %d",
			f.Name(), len(f.argIsNullable), len(cols))
	}
	nestedCols := make([]column.Column, len(cols))
	for k, col := range cols {
		if !f.argIsNullable[k] {
			nestedCols[k] = col
			continue
		}
		nc, ok := col.(*column.ColumnNullable)
		if !ok {
			return common.NewError(common.IllegalColumn,
				"argument %d of aggregate function %s must be nullable, got %s",
				k, f.Name(), col.Name())
		}
		if nc.IsNullAt(row) {
			return nil
		}
		nestedCols[k] = nc.Nested()
	}
	f.setFlag(place)
	return f.nested.Add(f.nestedPlace(place), nestedCols, row, arena)
}

func (f *NullVariadic) AddBatch(places []Place, cols []column.Column, arena *util.Arena) error {
	return addBatchLoop(f, places, cols, arena)
}

func (f *NullVariadic) AddBatchSinglePlace(place Place, cols []column.Column, arena *util.Arena) error {
	return addBatchSinglePlaceLoop(f, place, cols, arena)
}

// WrapNullIfNeeded adapts nested for nullable arguments. With no nullable
// argument the nested function is returned untouched.
func WrapNullIfNeeded(nested Function, argIsNullable []bool, resultIsNullable bool) (Function, error) {
	hasNullable := false
	for _, n := range argIsNullable {
		if n {
			hasNullable = true
			break
		}
	}
	if !hasNullable {
		return nested, nil
	}
	if len(argIsNullable) == 1 {
		return NewNullUnary(nested, resultIsNullable), nil
	}
	return NewNullVariadic(nested, argIsNullable, resultIsNullable)
}
