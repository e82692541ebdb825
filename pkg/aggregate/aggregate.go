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
	"unsafe"

	"github.com/daviszhen/vexec/pkg/column"
	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/util"
)

// Place is one aggregate state: a fixed-size, fixed-alignment byte region
// whose layout is private to the owning Function. Lifecycle is explicit:
// Create before any Add, Destroy when done (unless trivial).
type Place = []byte

// Function folds rows into externally managed state. Implementations hold
// no per-group data themselves, so one Function instance serves any number
// of places. Merge must be commutative and associative: parallel partial
// aggregation merges worker states in arbitrary order.
type Function interface {
	Name() string
	ResultType() common.LType

	SizeOfData() int
	AlignOfData() int
	Create(place Place)
	Destroy(place Place)
	HasTrivialDestructor() bool
	AllocatesMemoryInArena() bool

	// Add folds row of cols into place.
	Add(place Place, cols []column.Column, row int, arena *util.Arena) error
	// AddBatch folds row i into places[i] for every row.
	AddBatch(places []Place, cols []column.Column, arena *util.Arena) error
	// AddBatchSinglePlace folds every row into one state.
	AddBatchSinglePlace(place Place, cols []column.Column, arena *util.Arena) error

	Merge(place Place, rhs Place, arena *util.Arena) error
	// InsertResultInto appends exactly one row derived from place to "to".
	InsertResultInto(place Place, to column.Column) error
}

// CreatePlace carves an aligned state out of the arena and constructs it.
func CreatePlace(fn Function, arena *util.Arena) Place {
	place := arena.AllocAligned(fn.SizeOfData(), fn.AlignOfData())
	fn.Create(place)
	return place
}

func stateOf[S any](place Place) *S {
	util.AssertFunc(len(place) >= int(unsafe.Sizeof(*new(S))))
	return (*S)(util.BytesSliceToPointer(place))
}

func sizeOfState[S any]() int {
	var s S
	return int(unsafe.Sizeof(s))
}

func alignOfState[S any]() int {
	var s S
	return int(unsafe.Alignof(s))
}

func addBatchLoop(fn Function, places []Place, cols []column.Column, arena *util.Arena) error {
	for i, place := range places {
		if err := fn.Add(place, cols, i, arena); err != nil {
			return err
		}
	}
	return nil
}

func addBatchSinglePlaceLoop(fn Function, place Place, cols []column.Column, arena *util.Arena) error {
	rows := 0
	if len(cols) > 0 {
		rows = cols[0].Size()
	}
	for i := 0; i < rows; i++ {
		if err := fn.Add(place, cols, i, arena); err != nil {
			return err
		}
	}
	return nil
}

func checkArgColumn[T column.Numeric](fn Function, cols []column.Column, idx int) (*column.ColumnVector[T], error) {
	if idx >= len(cols) {
		return nil, common.NewError(common.NumberOfArgumentsDoesntMatch,
			"aggregate function %s expects argument %d, got %d columns",
			fn.Name(), idx, len(cols))
	}
	vec, ok := cols[idx].(*column.ColumnVector[T])
	if !ok {
		return nil, common.NewError(common.IllegalColumn,
			"illegal column %s for argument %d of aggregate function %s",
			cols[idx].Name(), idx, fn.Name())
	}
	return vec, nil
}
