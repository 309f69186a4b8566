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

// Package allocator computes mean-variance portfolio weights. It estimates a
// covariance matrix from historical return series and solves the constrained
// quadratic program
//
//	maximize   mu'w - (lambda/2) w'Σw
//	subject to sum(w) = 1, lower <= w_i <= 1
//
// with an active-set iteration over the KKT system. All functions are pure;
// each call is a self-contained solve.
package allocator

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

const (
	// SumTolerance is the maximum deviation of sum(weights) from 1.
	SumTolerance = 1e-6

	// BoundTolerance is the maximum violation of the box constraints.
	BoundTolerance = 1e-9

	epsInitial = 1e-10
	epsLimit   = 1e-4
)

// Optimize solves for the weight vector maximizing expected return minus the
// risk penalty. expectedReturns and covariance must share the same asset
// order. ws may be nil, in which case a workspace is allocated for the call;
// passing a reused workspace avoids allocation across rebalance dates.
//
// A KKT system that cannot be solved triggers a bounded regularization
// fallback: epsilon*I is added to the quadratic term with epsilon doubling
// from 1e-10; past 1e-4 the covariance is reported as singular.
func Optimize(ws *Workspace, expectedReturns []float64, covariance *mat.SymDense, riskAversion, minimumAllocation float64) ([]float64, error) {
	n := len(expectedReturns)
	if n == 0 {
		return nil, ErrEmptyUniverse
	}
	if covariance.SymmetricDim() != n {
		return nil, fmt.Errorf("%w: %d returns vs %dx%d covariance", ErrDimensionMismatch, n, covariance.SymmetricDim(), covariance.SymmetricDim())
	}
	if riskAversion < 0 || math.IsNaN(riskAversion) || math.IsInf(riskAversion, 0) {
		return nil, fmt.Errorf("%w: %f", ErrInvalidRiskAversion, riskAversion)
	}
	if minimumAllocation < 0 || minimumAllocation > 1 || math.IsNaN(minimumAllocation) {
		return nil, fmt.Errorf("%w: %f", ErrInvalidAllocation, minimumAllocation)
	}
	for ii, v := range expectedReturns {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: expected return at index %d", ErrNonFiniteValue, ii)
		}
		for jj := ii; jj < n; jj++ {
			if c := covariance.At(ii, jj); math.IsNaN(c) || math.IsInf(c, 0) {
				return nil, fmt.Errorf("%w: covariance at (%d, %d)", ErrNonFiniteValue, ii, jj)
			}
		}
	}

	floor := minimumAllocation * float64(n)
	if floor > 1+SumTolerance {
		return nil, fmt.Errorf("%w: minimumAllocation %f with %d assets requires %f", ErrInfeasibleConstraints, minimumAllocation, n, floor)
	}
	if math.Abs(floor-1) <= SumTolerance {
		// the floor consumes the whole budget; equal weight is the only
		// feasible point
		weights := make([]float64, n)
		for ii := range weights {
			weights[ii] = 1 / float64(n)
		}
		return weights, nil
	}

	if ws == nil || ws.n != n {
		ws = NewWorkspace(n)
	}

	eps := 0.0
	for {
		weights, err := ws.solveActiveSet(expectedReturns, covariance, riskAversion, minimumAllocation, eps)
		if err == nil {
			return weights, nil
		}
		if err != errNeedsRegularization {
			return nil, err
		}

		if eps == 0 {
			eps = epsInitial
		} else {
			eps *= 2
		}
		if eps > epsLimit {
			return nil, ErrSingularCovariance
		}
		log.Warn().Float64("Epsilon", eps).Msg("kkt system singular; regularizing covariance")
	}
}

// OptimizeUniverse runs Optimize over ticker-keyed inputs and returns weights
// keyed by ticker. Every universe ticker must have an expected return.
func OptimizeUniverse(universe []string, expectedReturns map[string]float64, covariance *mat.SymDense, riskAversion, minimumAllocation float64) (map[string]float64, error) {
	mu := make([]float64, len(universe))
	for idx, ticker := range universe {
		ret, ok := expectedReturns[ticker]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingAsset, ticker)
		}
		mu[idx] = ret
	}

	raw, err := Optimize(nil, mu, covariance, riskAversion, minimumAllocation)
	if err != nil {
		return nil, err
	}

	weights := make(map[string]float64, len(universe))
	for idx, ticker := range universe {
		weights[ticker] = raw[idx]
	}
	return weights, nil
}

// PortfolioReturn computes mu'w.
func PortfolioReturn(expectedReturns, weights []float64) float64 {
	ret := 0.0
	for ii := range weights {
		ret += expectedReturns[ii] * weights[ii]
	}
	return ret
}

// PortfolioVariance computes w'Σw.
func PortfolioVariance(weights []float64, covariance *mat.SymDense) float64 {
	n := len(weights)
	variance := 0.0
	for ii := 0; ii < n; ii++ {
		for jj := 0; jj < n; jj++ {
			variance += weights[ii] * weights[jj] * covariance.At(ii, jj)
		}
	}
	return variance
}

// Utility computes the mean-variance objective mu'w - (lambda/2) w'Σw.
func Utility(expectedReturns, weights []float64, covariance *mat.SymDense, riskAversion float64) float64 {
	return PortfolioReturn(expectedReturns, weights) - riskAversion/2*PortfolioVariance(weights, covariance)
}
