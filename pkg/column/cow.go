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
	"sync/atomic"

	"github.com/daviszhen/vexec/pkg/util"
)

// Ptr is a shared handle on a column. Holders read through Get; mutation
// goes through Mutable, which clones the column when any other holder still
// references it. Two independent holders never observe each other's writes.
type Ptr struct {
	col  Column
	refs *atomic.Int32
}

func NewPtr(col Column) Ptr {
	refs := &atomic.Int32{}
	refs.Store(1)
	return Ptr{col: col, refs: refs}
}

func (p Ptr) Get() Column {
	return p.col
}

func (p Ptr) IsValid() bool {
	return p.col != nil
}

// Share hands out another handle on the same column.
func (p Ptr) Share() Ptr {
	util.AssertFunc(p.refs != nil)
	p.refs.Add(1)
	return p
}

func (p *Ptr) Release() {
	if p.refs == nil {
		return
	}
	cnt := p.refs.Add(-1)
	util.AssertFunc(cnt >= 0)
	p.col = nil
	p.refs = nil
}

// RefCount is exposed for tests and diagnostics only.
func (p Ptr) RefCount() int {
	if p.refs == nil {
		return 0
	}
	return int(p.refs.Load())
}

// Mutable returns a column this handle owns exclusively. If the handle is
// shared it detaches onto a full clone first, leaving other holders on the
// original.
func (p *Ptr) Mutable() Column {
	util.AssertFunc(p.refs != nil)
	if p.refs.Load() == 1 {
		return p.col
	}
	clone := p.col.CloneResized(p.col.Size())
	p.refs.Add(-1)
	refs := &atomic.Int32{}
	refs.Store(1)
	p.col = clone
	p.refs = refs
	return p.col
}
