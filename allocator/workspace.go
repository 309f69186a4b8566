// Copyright 2025-2026
// SPDX-License-Identifier: Apache-2.0
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

package allocator

import "gonum.org/v1/gonum/mat"

type varStatus uint8

const (
	statusFree varStatus = iota
	statusAtLower
	statusAtUpper
)

// Workspace holds the pre-allocated matrices and vectors used by Optimize.
// Allocations are sized to the universe count so the solver can run once per
// rebalance date without per-call allocation. A Workspace is plain data owned
// by a single goroutine; independent runs use independent workspaces.
type Workspace struct {
	n       int
	kkt     *mat.Dense    // (n+1)x(n+1); the leading (m+1)x(m+1) block is used
	rhs     *mat.VecDense // n+1
	sol     *mat.VecDense // n+1
	weights []float64
	status  []varStatus
	free    []int
}

// NewWorkspace creates a workspace for optimizing over n assets.
func NewWorkspace(n int) *Workspace {
	return &Workspace{
		n:       n,
		kkt:     mat.NewDense(n+1, n+1, nil),
		rhs:     mat.NewVecDense(n+1, nil),
		sol:     mat.NewVecDense(n+1, nil),
		weights: make([]float64, n),
		status:  make([]varStatus, n),
		free:    make([]int, 0, n),
	}
}

func (ws *Workspace) reset() {
	ws.free = ws.free[:0]
	for ii := 0; ii < ws.n; ii++ {
		ws.status[ii] = statusFree
		ws.weights[ii] = 0
		ws.free = append(ws.free, ii)
	}
}
