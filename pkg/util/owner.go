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

package util

import (
	"sync/atomic"

	"github.com/petermattis/goid"
)

// Owner detects concurrent use of structures whose callers must serialize
// access. Enter/Leave pairs wrap each operation; a second goroutine entering
// while another is inside trips the assertion.
type Owner struct {
	holder atomic.Int64
}

func (o *Owner) Enter() {
	rid := goid.Get()
	if !o.holder.CompareAndSwap(0, rid) && o.holder.Load() != rid {
		panic("concurrent access to a single-owner structure")
	}
}

func (o *Owner) Leave() {
	o.holder.Store(0)
}
