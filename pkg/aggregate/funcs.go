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

type countState struct {
	count uint64
}

// Count counts rows. It ignores argument values entirely; null skipping is
// the adapter's job.
type Count struct{}

func NewCount() *Count {
	return &Count{}
}

func (f *Count) Name() string             { return "count" }
func (f *Count) ResultType() common.LType { return common.UbigintType() }
func (f *Count) SizeOfData() int          { return sizeOfState[countState]() }
func (f *Count) AlignOfData() int         { return alignOfState[countState]() }

func (f *Count) Create(place Place) {
	*stateOf[countState](place) = countState{}
}

func (f *Count) Destroy(Place)                {}
func (f *Count) HasTrivialDestructor() bool   { return true }
func (f *Count) AllocatesMemoryInArena() bool { return false }

func (f *Count) Add(place Place, _ []column.Column, _ int, _ *util.Arena) error {
	stateOf[countState](place).count++
	return nil
}

func (f *Count) AddBatch(places []Place, cols []column.Column, arena *util.Arena) error {
	return addBatchLoop(f, places, cols, arena)
}

func (f *Count) AddBatchSinglePlace(place Place, cols []column.Column, _ *util.Arena) error {
	rows := 0
	if len(cols) > 0 {
		rows = cols[0].Size()
	}
	stateOf[countState](place).count += uint64(rows)
	return nil
}

func (f *Count) Merge(place Place, rhs Place, _ *util.Arena) error {
	stateOf[countState](place).count += stateOf[countState](rhs).count
	return nil
}

func (f *Count) InsertResultInto(place Place, to column.Column) error {
	return to.InsertField(column.NewUintField(stateOf[countState](place).count))
}

type sumState[R column.Numeric] struct {
	sum R
}

// Sum accumulates values of T into a wider result type R.
type Sum[T, R column.Numeric] struct {
	resultType common.LType
}

func NewSum[T, R column.Numeric](resultType common.LType) *Sum[T, R] {
	return &Sum[T, R]{resultType: resultType}
}

func (f *Sum[T, R]) Name() string             { return "sum" }
func (f *Sum[T, R]) ResultType() common.LType { return f.resultType }
func (f *Sum[T, R]) SizeOfData() int          { return sizeOfState[sumState[R]]() }
func (f *Sum[T, R]) AlignOfData() int         { return alignOfState[sumState[R]]() }

func (f *Sum[T, R]) Create(place Place) {
	*stateOf[sumState[R]](place) = sumState[R]{}
}

func (f *Sum[T, R]) Destroy(Place)                {}
func (f *Sum[T, R]) HasTrivialDestructor() bool   { return true }
func (f *Sum[T, R]) AllocatesMemoryInArena() bool { return false }

func (f *Sum[T, R]) Add(place Place, cols []column.Column, row int, _ *util.Arena) error {
	vec, err := checkArgColumn[T](f, cols, 0)
	if err != nil {
		return err
	}
	stateOf[sumState[R]](place).sum += R(vec.Data()[row])
	return nil
}

func (f *Sum[T, R]) AddBatch(places []Place, cols []column.Column, arena *util.Arena) error {
	return addBatchLoop(f, places, cols, arena)
}

func (f *Sum[T, R]) AddBatchSinglePlace(place Place, cols []column.Column, _ *util.Arena) error {
	vec, err := checkArgColumn[T](f, cols, 0)
	if err != nil {
		return err
	}
	state := stateOf[sumState[R]](place)
	for _, v := range vec.Data() {
		state.sum += R(v)
	}
	return nil
}

func (f *Sum[T, R]) Merge(place Place, rhs Place, _ *util.Arena) error {
	stateOf[sumState[R]](place).sum += stateOf[sumState[R]](rhs).sum
	return nil
}

func (f *Sum[T, R]) InsertResultInto(place Place, to column.Column) error {
	vec, ok := to.(*column.ColumnVector[R])
	if !ok {
		return common.NewError(common.IllegalColumn,
			"illegal result column %s for aggregate function %s", to.Name(), f.Name())
	}
	vec.Append(stateOf[sumState[R]](place).sum)
	return nil
}

type minMaxState[T column.Numeric] struct {
	value T
	has   bool
}

// MinMax keeps the extreme value seen so far. isMin selects the direction.
type MinMax[T column.Numeric] struct {
	resultType common.LType
	isMin      bool
}

func NewMin[T column.Numeric](resultType common.LType) *MinMax[T] {
	return &MinMax[T]{resultType: resultType, isMin: true}
}

func NewMax[T column.Numeric](resultType common.LType) *MinMax[T] {
	return &MinMax[T]{resultType: resultType, isMin: false}
}

func (f *MinMax[T]) Name() string {
	if f.isMin {
		return "min"
	}
	return "max"
}

func (f *MinMax[T]) ResultType() common.LType { return f.resultType }
func (f *MinMax[T]) SizeOfData() int          { return sizeOfState[minMaxState[T]]() }
func (f *MinMax[T]) AlignOfData() int         { return alignOfState[minMaxState[T]]() }

func (f *MinMax[T]) Create(place Place) {
	*stateOf[minMaxState[T]](place) = minMaxState[T]{}
}

func (f *MinMax[T]) Destroy(Place)                {}
func (f *MinMax[T]) HasTrivialDestructor() bool   { return true }
func (f *MinMax[T]) AllocatesMemoryInArena() bool { return false }

func (f *MinMax[T]) better(a, b T) bool {
	if f.isMin {
		return a < b
	}
	return a > b
}

func (f *MinMax[T]) Add(place Place, cols []column.Column, row int, _ *util.Arena) error {
	vec, err := checkArgColumn[T](f, cols, 0)
	if err != nil {
		return err
	}
	state := stateOf[minMaxState[T]](place)
	v := vec.Data()[row]
	if !state.has || f.better(v, state.value) {
		state.value = v
		state.has = true
	}
	return nil
}

func (f *MinMax[T]) AddBatch(places []Place, cols []column.Column, arena *util.Arena) error {
	return addBatchLoop(f, places, cols, arena)
}

func (f *MinMax[T]) AddBatchSinglePlace(place Place, cols []column.Column, arena *util.Arena) error {
	return addBatchSinglePlaceLoop(f, place, cols, arena)
}

func (f *MinMax[T]) Merge(place Place, rhs Place, _ *util.Arena) error {
	state := stateOf[minMaxState[T]](place)
	other := stateOf[minMaxState[T]](rhs)
	if other.has && (!state.has || f.better(other.value, state.value)) {
		state.value = other.value
		state.has = true
	}
	return nil
}

func (f *MinMax[T]) InsertResultInto(place Place, to column.Column) error {
	vec, ok := to.(*column.ColumnVector[T])
	if !ok {
		return common.NewError(common.IllegalColumn,
			"illegal result column %s for aggregate function %s", to.Name(), f.Name())
	}
	// empty state degrades to the type's default
	vec.Append(stateOf[minMaxState[T]](place).value)
	return nil
}

type avgState struct {
	sum   float64
	count uint64
}

// Avg divides the running sum by the row count at finalization; an empty
// state yields zero, not an error.
type Avg[T column.Numeric] struct{}

func NewAvg[T column.Numeric]() *Avg[T] {
	return &Avg[T]{}
}

func (f *Avg[T]) Name() string             { return "avg" }
func (f *Avg[T]) ResultType() common.LType { return common.DoubleType() }
func (f *Avg[T]) SizeOfData() int          { return sizeOfState[avgState]() }
func (f *Avg[T]) AlignOfData() int         { return alignOfState[avgState]() }

func (f *Avg[T]) Create(place Place) {
	*stateOf[avgState](place) = avgState{}
}

func (f *Avg[T]) Destroy(Place)                {}
func (f *Avg[T]) HasTrivialDestructor() bool   { return true }
func (f *Avg[T]) AllocatesMemoryInArena() bool { return false }

func (f *Avg[T]) Add(place Place, cols []column.Column, row int, _ *util.Arena) error {
	vec, err := checkArgColumn[T](f, cols, 0)
	if err != nil {
		return err
	}
	state := stateOf[avgState](place)
	state.sum += float64(vec.Data()[row])
	state.count++
	return nil
}

func (f *Avg[T]) AddBatch(places []Place, cols []column.Column, arena *util.Arena) error {
	return addBatchLoop(f, places, cols, arena)
}

func (f *Avg[T]) AddBatchSinglePlace(place Place, cols []column.Column, arena *util.Arena) error {
	return addBatchSinglePlaceLoop(f, place, cols, arena)
}

func (f *Avg[T]) Merge(place Place, rhs Place, _ *util.Arena) error {
	state := stateOf[avgState](place)
	other := stateOf[avgState](rhs)
	state.sum += other.sum
	state.count += other.count
	return nil
}

func (f *Avg[T]) InsertResultInto(place Place, to column.Column) error {
	vec, ok := to.(*column.ColumnVector[float64])
	if !ok {
		return common.NewError(common.IllegalColumn,
			"illegal result column %s for aggregate function %s", to.Name(), f.Name())
	}
	state := stateOf[avgState](place)
	if state.count == 0 {
		vec.Append(0)
		return nil
	}
	vec.Append(state.sum / float64(state.count))
	return nil
}
