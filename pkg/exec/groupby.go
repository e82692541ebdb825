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
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/daviszhen/vexec/pkg/aggregate"
	"github.com/daviszhen/vexec/pkg/block"
	"github.com/daviszhen/vexec/pkg/column"
	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/hashtable"
	"github.com/daviszhen/vexec/pkg/util"
)

// AggSpec names one aggregate to evaluate: Func is the registry name, Arg
// the argument column (empty for count over all rows), As the output
// column name.
type AggSpec struct {
	Func string
	Arg  string
	As   string
}

// HashGroupBy groups a block by an int64 key column and evaluates
// aggregates per group. Workers build private tables over row partitions,
// then the partials merge; Merge commutativity makes the split order
// irrelevant.
type HashGroupBy struct {
	registry *aggregate.Registry
	workers  int
}

func NewHashGroupBy(registry *aggregate.Registry, workers int) *HashGroupBy {
	if workers < 1 {
		workers = 1
	}
	return &HashGroupBy{registry: registry, workers: workers}
}

type boundAgg struct {
	fn       aggregate.Function
	arg      string
	nullable bool
}

// partial is one worker's table plus the arena its states live in. The
// arena must outlive the merged result.
type partial struct {
	ht    *hashtable.HashMap[int64, []aggregate.Place]
	arena *util.Arena
}

func (g *HashGroupBy) bind(b *block.Block, specs []AggSpec) ([]boundAgg, error) {
	bound := make([]boundAgg, 0, len(specs))
	for _, spec := range specs {
		create, err := g.registry.Get(spec.Func)
		if err != nil {
			return nil, err
		}
		var argTypes []common.LType
		argNullable := false
		if spec.Arg != "" {
			item, err := b.GetByName(spec.Arg)
			if err != nil {
				return nil, err
			}
			typ := item.Col.Type()
			if !typ.IsNumeric() {
				return nil, common.NewError(common.IllegalType,
					"illegal type %s of argument %s for aggregate function %s",
					typ, spec.Arg, spec.Func)
			}
			argTypes = []common.LType{typ}
			argNullable = column.IsNullable(item.Col)
		}
		fn, err := create(argTypes)
		if err != nil {
			return nil, err
		}
		if argNullable {
			resultIsNullable := spec.Func != "count"
			fn, err = aggregate.WrapNullIfNeeded(fn, []bool{true}, resultIsNullable)
			if err != nil {
				return nil, err
			}
		}
		bound = append(bound, boundAgg{fn: fn, arg: spec.Arg, nullable: argNullable && spec.Func != "count"})
	}
	return bound, nil
}

func (g *HashGroupBy) Execute(ctx context.Context, b *block.Block, keyName string, specs []AggSpec) (*block.Block, error) {
	if err := b.CheckNumberOfRows(); err != nil {
		return nil, err
	}
	keyItem, err := b.GetByName(keyName)
	if err != nil {
		return nil, err
	}
	if _, ok := keyItem.Col.(*column.ColumnVector[int64]); !ok {
		return nil, common.NewError(common.IllegalType,
			"group by key column %s must be Int64, got %s", keyName, keyItem.Col.Name())
	}
	bound, err := g.bind(b, specs)
	if err != nil {
		return nil, err
	}

	rows := b.RowCount()
	workers := g.workers
	if workers > rows && rows > 0 {
		workers = rows
	}
	if workers == 0 {
		workers = 1
	}
	util.Debug("hash group by",
		zap.Int("rows", rows),
		zap.Int("workers", workers),
		zap.Int("aggregates", len(bound)))

	parts := []*block.Block{b}
	if workers > 1 {
		selector := make([]int, rows)
		for i := range selector {
			selector[i] = i % workers
		}
		parts, err = b.ScatterRows(workers, selector)
		if err != nil {
			return nil, err
		}
	}

	partials := make([]*partial, len(parts))
	eg, _ := errgroup.WithContext(ctx)
	for w := range parts {
		w := w
		eg.Go(func() error {
			p, err := g.aggregatePartial(parts[w], keyName, bound)
			if err != nil {
				return err
			}
			partials[w] = p
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged := partials[0]
	for _, p := range partials[1:] {
		if err := g.mergePartial(merged, p, bound); err != nil {
			return nil, err
		}
	}
	return g.finalize(merged, keyName, specs, bound)
}

func (g *HashGroupBy) aggregatePartial(b *block.Block, keyName string, bound []boundAgg) (*partial, error) {
	keyItem, err := b.GetByName(keyName)
	if err != nil {
		return nil, err
	}
	keys := keyItem.Col.(*column.ColumnVector[int64]).Data()

	argCols := make([][]column.Column, len(bound))
	for k, ba := range bound {
		if ba.arg == "" {
			continue
		}
		item, err := b.GetByName(ba.arg)
		if err != nil {
			return nil, err
		}
		argCols[k] = []column.Column{item.Col}
	}

	arena := util.NewArena()
	ht := hashtable.NewHashMap[int64, []aggregate.Place]()
	if err := ht.Reserve(len(keys) / 2); err != nil {
		return nil, err
	}
	for row, key := range keys {
		cell, inserted, err := ht.Emplace(key)
		if err != nil {
			return nil, err
		}
		if inserted {
			places := make([]aggregate.Place, len(bound))
			for k, ba := range bound {
				places[k] = aggregate.CreatePlace(ba.fn, arena)
			}
			cell.Val = places
		}
		for k, ba := range bound {
			if err := ba.fn.Add(cell.Val[k], argCols[k], row, arena); err != nil {
				return nil, err
			}
		}
	}
	return &partial{ht: ht, arena: arena}, nil
}

func (g *HashGroupBy) mergePartial(dst, src *partial, bound []boundAgg) error {
	var mergeErr error
	err := src.ht.MergeToViaEmplace(dst.ht, func(dstVal, srcVal *[]aggregate.Place, inserted bool) {
		if mergeErr != nil {
			return
		}
		if inserted {
			*dstVal = *srcVal
			return
		}
		for k, ba := range bound {
			if err := ba.fn.Merge((*dstVal)[k], (*srcVal)[k], dst.arena); err != nil {
				mergeErr = err
				return
			}
		}
	})
	if err != nil {
		return err
	}
	return mergeErr
}

func (g *HashGroupBy) finalize(p *partial, keyName string, specs []AggSpec, bound []boundAgg) (*block.Block, error) {
	keyOut := column.NewInt64Vector()
	outCols := make([]column.Column, len(bound))
	for k, ba := range bound {
		var col column.Column
		var err error
		if ba.nullable {
			col, err = column.NewNullableColumnFromType(ba.fn.ResultType())
		} else {
			col, err = column.NewColumnFromType(ba.fn.ResultType())
		}
		if err != nil {
			return nil, err
		}
		outCols[k] = col
	}

	var insertErr error
	p.ht.ForEach(func(key int64, places *[]aggregate.Place) {
		if insertErr != nil {
			return
		}
		keyOut.Append(key)
		for k, ba := range bound {
			if err := ba.fn.InsertResultInto((*places)[k], outCols[k]); err != nil {
				insertErr = err
				return
			}
		}
	})
	if insertErr != nil {
		return nil, insertErr
	}
	for k, ba := range bound {
		if !ba.fn.HasTrivialDestructor() {
			p.ht.ForEach(func(_ int64, places *[]aggregate.Place) {
				ba.fn.Destroy((*places)[k])
			})
		}
	}

	items := []block.ColumnWithTypeAndName{
		{Col: keyOut, Type: common.BigintType(), Name: keyName},
	}
	for k, spec := range specs {
		name := spec.As
		if name == "" {
			name = spec.Func
		}
		items = append(items, block.ColumnWithTypeAndName{
			Col:  outCols[k],
			Type: bound[k].fn.ResultType(),
			Name: name,
		})
	}
	out, err := block.NewBlock(items...)
	if err != nil {
		return nil, err
	}

	// bucket order is arbitrary; emit rows ordered by key
	perm := keyOut.GetPermutation(false, 0, 1)
	return out.PermuteRows(perm, 0)
}
