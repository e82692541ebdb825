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

package block

import (
	"fmt"
	"strings"

	treemap "github.com/liyue201/gostl/ds/map"
	"github.com/xlab/treeprint"

	"github.com/daviszhen/vexec/pkg/column"
	"github.com/daviszhen/vexec/pkg/common"
)

// ColumnWithTypeAndName is one block slot.
type ColumnWithTypeAndName struct {
	Col  column.Column
	Type common.LType
	Name string
}

// Block is an ordered set of named, equal-length columns representing a row
// batch. Positions are stable; the name index follows every mutation.
type Block struct {
	data  []ColumnWithTypeAndName
	index *treemap.Map[string, int]
}

func NewBlock(items ...ColumnWithTypeAndName) (*Block, error) {
	b := &Block{
		data:  nil,
		index: treemap.New[string, int](strings.Compare),
	}
	for _, item := range items {
		if err := b.Append(item); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Block) Append(item ColumnWithTypeAndName) error {
	if _, err := b.index.Get(item.Name); err == nil {
		return common.NewError(common.BadArguments,
			"duplicate column name %s in block", item.Name)
	}
	b.data = append(b.data, item)
	b.index.Insert(item.Name, len(b.data)-1)
	return nil
}

// Insert places item at pos, shifting later columns right.
func (b *Block) Insert(pos int, item ColumnWithTypeAndName) error {
	if pos < 0 || pos > len(b.data) {
		return common.NewError(common.ParameterOutOfBound,
			"position %d out of bound in block of %d columns", pos, len(b.data))
	}
	if _, err := b.index.Get(item.Name); err == nil {
		return common.NewError(common.BadArguments,
			"duplicate column name %s in block", item.Name)
	}
	b.data = append(b.data, ColumnWithTypeAndName{})
	copy(b.data[pos+1:], b.data[pos:])
	b.data[pos] = item
	b.rebuildIndex()
	return nil
}

// Erase removes the column at pos.
func (b *Block) Erase(pos int) error {
	if pos < 0 || pos >= len(b.data) {
		return common.NewError(common.ParameterOutOfBound,
			"position %d out of bound in block of %d columns", pos, len(b.data))
	}
	b.data = append(b.data[:pos], b.data[pos+1:]...)
	b.rebuildIndex()
	return nil
}

func (b *Block) rebuildIndex() {
	b.index.Clear()
	for i, item := range b.data {
		b.index.Insert(item.Name, i)
	}
}

func (b *Block) ColumnCount() int {
	return len(b.data)
}

func (b *Block) GetByPosition(pos int) *ColumnWithTypeAndName {
	return &b.data[pos]
}

func (b *Block) GetByName(name string) (*ColumnWithTypeAndName, error) {
	pos, err := b.index.Get(name)
	if err != nil {
		return nil, common.NewError(common.BadArguments,
			"column %s not found in block, there are columns: %s", name, b.columnNames())
	}
	return &b.data[pos], nil
}

func (b *Block) HasColumn(name string) bool {
	_, err := b.index.Get(name)
	return err == nil
}

func (b *Block) columnNames() string {
	names := make([]string, 0, len(b.data))
	for _, item := range b.data {
		names = append(names, item.Name)
	}
	return strings.Join(names, ", ")
}

// RowCount returns the size of the first materialized column; zero-column
// blocks have zero rows.
func (b *Block) RowCount() int {
	for _, item := range b.data {
		if item.Col != nil {
			return item.Col.Size()
		}
	}
	return 0
}

// CheckNumberOfRows fails when any two columns disagree on length.
func (b *Block) CheckNumberOfRows() error {
	rows := -1
	first := ""
	for _, item := range b.data {
		if item.Col == nil {
			continue
		}
		if rows == -1 {
			rows = item.Col.Size()
			first = item.Name
		} else if item.Col.Size() != rows {
			return common.NewError(common.SizesOfColumnsDontMatch,
				"sizes of columns doesn't match: %s: %d, %s: %d",
				first, rows, item.Name, item.Col.Size())
		}
	}
	return nil
}

// StructureEquals reports whether other has the same column names, order
// and structurally compatible columns.
func (b *Block) StructureEquals(other *Block) bool {
	if len(b.data) != len(other.data) {
		return false
	}
	for i := range b.data {
		if b.data[i].Name != other.data[i].Name {
			return false
		}
		if b.data[i].Col == nil || other.data[i].Col == nil {
			if b.data[i].Col != other.data[i].Col {
				return false
			}
			continue
		}
		if !b.data[i].Col.StructureEquals(other.data[i].Col) {
			return false
		}
	}
	return true
}

func (b *Block) CloneEmpty() *Block {
	res := &Block{index: treemap.New[string, int](strings.Compare)}
	for _, item := range b.data {
		clone := ColumnWithTypeAndName{Type: item.Type, Name: item.Name}
		if item.Col != nil {
			clone.Col = item.Col.CloneEmpty()
		}
		res.data = append(res.data, clone)
		res.index.Insert(item.Name, len(res.data)-1)
	}
	return res
}

// FilterRows applies one mask to every column.
func (b *Block) FilterRows(mask []byte) (*Block, error) {
	res := b.CloneEmpty()
	hint := column.CountBytesInFilter(mask)
	for i, item := range b.data {
		if item.Col == nil {
			continue
		}
		col, err := item.Col.Filter(mask, hint)
		if err != nil {
			return nil, err
		}
		res.data[i].Col = col
	}
	return res, nil
}

// PermuteRows applies one permutation to every column.
func (b *Block) PermuteRows(perm []int, limit int) (*Block, error) {
	res := b.CloneEmpty()
	for i, item := range b.data {
		if item.Col == nil {
			continue
		}
		col, err := item.Col.Permute(perm, limit)
		if err != nil {
			return nil, err
		}
		res.data[i].Col = col
	}
	return res, nil
}

// ScatterRows splits the block into numBuckets blocks by selector.
func (b *Block) ScatterRows(numBuckets int, selector []int) ([]*Block, error) {
	res := make([]*Block, numBuckets)
	for i := range res {
		res[i] = b.CloneEmpty()
	}
	for i, item := range b.data {
		if item.Col == nil {
			continue
		}
		parts, err := item.Col.Scatter(numBuckets, selector)
		if err != nil {
			return nil, err
		}
		for bkt := 0; bkt < numBuckets; bkt++ {
			res[bkt].data[i].Col = parts[bkt]
		}
	}
	return res, nil
}

func (b *Block) String() string {
	return b.Dump()
}

func (b *Block) Dump() string {
	tree := treeprint.NewWithRoot(fmt.Sprintf("Block(%d rows)", b.RowCount()))
	for _, item := range b.data {
		branch := tree.AddBranch(fmt.Sprintf("%s %s", item.Name, item.Type))
		if item.Col == nil {
			branch.AddNode("<nil>")
			continue
		}
		limit := item.Col.Size()
		if limit > 8 {
			limit = 8
		}
		for i := 0; i < limit; i++ {
			branch.AddNode(item.Col.GetField(i).String())
		}
		if item.Col.Size() > limit {
			branch.AddNode(fmt.Sprintf("... %d more", item.Col.Size()-limit))
		}
	}
	return tree.String()
}
