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
	"github.com/tidwall/btree"

	"github.com/daviszhen/vexec/pkg/common"
)

// Creator builds a Function instance for concrete argument types.
type Creator func(argTypes []common.LType) (Function, error)

type registryEntry struct {
	name   string
	create Creator
}

// Registry maps function names to creators.
type Registry struct {
	tree *btree.BTreeG[registryEntry]
}

func NewRegistry() *Registry {
	return &Registry{
		tree: btree.NewBTreeG[registryEntry](func(a, b registryEntry) bool {
			return a.name < b.name
		}),
	}
}

func (r *Registry) Register(name string, create Creator) error {
	if _, ok := r.tree.Get(registryEntry{name: name}); ok {
		return common.NewError(common.BadArguments,
			"aggregate function %s is already registered", name)
	}
	r.tree.Set(registryEntry{name: name, create: create})
	return nil
}

func (r *Registry) Get(name string) (Creator, error) {
	entry, ok := r.tree.Get(registryEntry{name: name})
	if !ok {
		return nil, common.NewError(common.BadArguments,
			"unknown aggregate function %s", name)
	}
	return entry.create, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, r.tree.Len())
	r.tree.Scan(func(entry registryEntry) bool {
		names = append(names, entry.name)
		return true
	})
	return names
}

// NewDefaultRegistry registers the built-in functions.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(r.Register("count", func([]common.LType) (Function, error) {
		return NewCount(), nil
	}))
	must(r.Register("sum", func(argTypes []common.LType) (Function, error) {
		if len(argTypes) != 1 {
			return nil, common.NewError(common.NumberOfArgumentsDoesntMatch,
				"aggregate function sum expects 1 argument, got %d", len(argTypes))
		}
		return makeSum(argTypes[0])
	}))
	must(r.Register("min", func(argTypes []common.LType) (Function, error) {
		if len(argTypes) != 1 {
			return nil, common.NewError(common.NumberOfArgumentsDoesntMatch,
				"aggregate function min expects 1 argument, got %d", len(argTypes))
		}
		return makeMinMax(argTypes[0], true)
	}))
	must(r.Register("max", func(argTypes []common.LType) (Function, error) {
		if len(argTypes) != 1 {
			return nil, common.NewError(common.NumberOfArgumentsDoesntMatch,
				"aggregate function max expects 1 argument, got %d", len(argTypes))
		}
		return makeMinMax(argTypes[0], false)
	}))
	must(r.Register("avg", func(argTypes []common.LType) (Function, error) {
		if len(argTypes) != 1 {
			return nil, common.NewError(common.NumberOfArgumentsDoesntMatch,
				"aggregate function avg expects 1 argument, got %d", len(argTypes))
		}
		return makeAvg(argTypes[0])
	}))
	return r
}

func makeSum(argType common.LType) (Function, error) {
	switch argType.Id {
	case common.INT8:
		return NewSum[int8, int64](common.BigintType()), nil
	case common.INT16:
		return NewSum[int16, int64](common.BigintType()), nil
	case common.INT32:
		return NewSum[int32, int64](common.BigintType()), nil
	case common.INT64:
		return NewSum[int64, int64](common.BigintType()), nil
	case common.UINT8:
		return NewSum[uint8, uint64](common.UbigintType()), nil
	case common.UINT16:
		return NewSum[uint16, uint64](common.UbigintType()), nil
	case common.UINT32:
		return NewSum[uint32, uint64](common.UbigintType()), nil
	case common.UINT64:
		return NewSum[uint64, uint64](common.UbigintType()), nil
	case common.FLOAT32:
		return NewSum[float32, float64](common.DoubleType()), nil
	case common.FLOAT64:
		return NewSum[float64, float64](common.DoubleType()), nil
	default:
		return nil, common.NewError(common.IllegalType,
			"illegal type %s of argument for aggregate function sum", argType)
	}
}

func makeMinMax(argType common.LType, isMin bool) (Function, error) {
	pick := func(min, max Function) Function {
		if isMin {
			return min
		}
		return max
	}
	switch argType.Id {
	case common.INT8:
		return pick(NewMin[int8](argType), NewMax[int8](argType)), nil
	case common.INT16:
		return pick(NewMin[int16](argType), NewMax[int16](argType)), nil
	case common.INT32:
		return pick(NewMin[int32](argType), NewMax[int32](argType)), nil
	case common.INT64:
		return pick(NewMin[int64](argType), NewMax[int64](argType)), nil
	case common.UINT8:
		return pick(NewMin[uint8](argType), NewMax[uint8](argType)), nil
	case common.UINT16:
		return pick(NewMin[uint16](argType), NewMax[uint16](argType)), nil
	case common.UINT32:
		return pick(NewMin[uint32](argType), NewMax[uint32](argType)), nil
	case common.UINT64:
		return pick(NewMin[uint64](argType), NewMax[uint64](argType)), nil
	case common.FLOAT32:
		return pick(NewMin[float32](argType), NewMax[float32](argType)), nil
	case common.FLOAT64:
		return pick(NewMin[float64](argType), NewMax[float64](argType)), nil
	default:
		name := "max"
		if isMin {
			name = "min"
		}
		return nil, common.NewError(common.IllegalType,
			"illegal type %s of argument for aggregate function %s", argType, name)
	}
}

func makeAvg(argType common.LType) (Function, error) {
	switch argType.Id {
	case common.INT8:
		return NewAvg[int8](), nil
	case common.INT16:
		return NewAvg[int16](), nil
	case common.INT32:
		return NewAvg[int32](), nil
	case common.INT64:
		return NewAvg[int64](), nil
	case common.UINT8:
		return NewAvg[uint8](), nil
	case common.UINT16:
		return NewAvg[uint16](), nil
	case common.UINT32:
		return NewAvg[uint32](), nil
	case common.UINT64:
		return NewAvg[uint64](), nil
	case common.FLOAT32:
		return NewAvg[float32](), nil
	case common.FLOAT64:
		return NewAvg[float64](), nil
	default:
		return nil, common.NewError(common.IllegalType,
			"illegal type %s of argument for aggregate function avg", argType)
	}
}
