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

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// errNeedsRegularization signals that the KKT system could not be solved with
// the current perturbation; the caller retries with a larger epsilon.
var errNeedsRegularization = errors.New("kkt system is singular")

// solveActiveSet minimizes (lambda/2)w'Σw - mu'w subject to sum(w) = 1 and
// lower <= w_i <= 1 using active-set iteration: all variables start free, the
// equality-constrained KKT system is solved over the free set, and the worst
// bound violator is pinned to its bound until the free solution is feasible.
// Each iteration pins at least one variable so the loop runs at most n times.
//
// eps is added to the diagonal of the quadratic term. Lower-bound violations
// are pinned before upper-bound violations: when the floor is active the free
// budget shrinks, which is what caps the best asset at 1-(n-1)*lower.
func (ws *Workspace) solveActiveSet(mu []float64, sigma *mat.SymDense, lambda, lower, eps float64) ([]float64, error) {
	n := len(mu)
	ws.reset()

	hElem := func(ii, jj int) float64 {
		v := lambda * sigma.At(ii, jj)
		if ii == jj {
			v += eps
		}
		return v
	}

	for iter := 0; iter < n; iter++ {
		m := len(ws.free)
		if m == 0 {
			return nil, ErrDidNotConverge
		}

		// equality-constrained KKT system over the free variables:
		//   [ H_FF  1 ] [w_F]   [ mu_F - H_FP*w_P ]
		//   [ 1'    0 ] [tht] = [ 1 - sum(w_P)    ]
		kkt := ws.kkt.Slice(0, m+1, 0, m+1).(*mat.Dense)
		rhs := ws.rhs.SliceVec(0, m+1).(*mat.VecDense)
		sol := ws.sol.SliceVec(0, m+1).(*mat.VecDense)

		budget := 1.0
		for ii := 0; ii < n; ii++ {
			if ws.status[ii] != statusFree {
				budget -= ws.weights[ii]
			}
		}

		for fi, ii := range ws.free {
			b := mu[ii]
			for jj := 0; jj < n; jj++ {
				if ws.status[jj] != statusFree {
					b -= hElem(ii, jj) * ws.weights[jj]
				}
			}
			rhs.SetVec(fi, b)

			for fj, jj := range ws.free {
				kkt.Set(fi, fj, hElem(ii, jj))
			}
			kkt.Set(fi, m, 1)
			kkt.Set(m, fi, 1)
		}
		kkt.Set(m, m, 0)
		rhs.SetVec(m, budget)

		var lu mat.LU
		lu.Factorize(kkt)
		if err := lu.SolveVecTo(sol, false, rhs); err != nil {
			return nil, errNeedsRegularization
		}

		for fi, ii := range ws.free {
			ws.weights[ii] = sol.AtVec(fi)
		}

		// pin the worst lower-bound violator; ties resolve to the lowest index
		pin := -1
		worst := BoundTolerance
		for _, ii := range ws.free {
			if gap := lower - ws.weights[ii]; gap > worst {
				worst = gap
				pin = ii
			}
		}
		if pin >= 0 {
			ws.status[pin] = statusAtLower
			ws.weights[pin] = lower
			ws.removeFree(pin)
			continue
		}

		// upper bound; only reachable when the floor leaves no slack
		worst = BoundTolerance
		for _, ii := range ws.free {
			if gap := ws.weights[ii] - 1; gap > worst {
				worst = gap
				pin = ii
			}
		}
		if pin >= 0 {
			ws.status[pin] = statusAtUpper
			ws.weights[pin] = 1
			ws.removeFree(pin)
			continue
		}

		return ws.checkedWeights(lower)
	}

	return nil, ErrDidNotConverge
}

func (ws *Workspace) removeFree(idx int) {
	for fi, ii := range ws.free {
		if ii == idx {
			ws.free = append(ws.free[:fi], ws.free[fi+1:]...)
			return
		}
	}
}

// checkedWeights verifies the constraint invariants before handing the result
// back. A violation here is a solver bug, reported as ErrDidNotConverge
// rather than silently returning an infeasible allocation.
func (ws *Workspace) checkedWeights(lower float64) ([]float64, error) {
	sum := 0.0
	for _, w := range ws.weights {
		if w < lower-BoundTolerance || w > 1+BoundTolerance {
			return nil, ErrDidNotConverge
		}
		sum += w
	}
	if math.Abs(sum-1) > SumTolerance {
		return nil, ErrDidNotConverge
	}

	weights := make([]float64, len(ws.weights))
	copy(weights, ws.weights)
	return weights, nil
}
