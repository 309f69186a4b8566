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
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// EstimateCovariance computes the unbiased sample covariance matrix of the
// return series in returnsByAsset, ordered by universe. Series of unequal
// length are aligned by truncating to the common overlapping window: all
// series share the latest period, so each series keeps its most recent
// min-length observations.
//
// Each pair is computed once and mirrored so the result is exactly symmetric.
// Fewer than 2 aligned periods make covariance undefined and return
// ErrInsufficientData rather than a silent zero.
func EstimateCovariance(universe []string, returnsByAsset map[string][]float64) (*mat.SymDense, error) {
	n := len(universe)
	if n == 0 {
		return nil, ErrEmptyUniverse
	}

	series := make([][]float64, n)
	minLen := math.MaxInt
	for idx, ticker := range universe {
		rets, ok := returnsByAsset[ticker]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingAsset, ticker)
		}
		series[idx] = rets
		if len(rets) < minLen {
			minLen = len(rets)
		}
	}

	if minLen < 2 {
		return nil, fmt.Errorf("%w: have %d", ErrInsufficientData, minLen)
	}

	// align to the common overlapping window
	for idx := range series {
		series[idx] = series[idx][len(series[idx])-minLen:]
		for _, v := range series[idx] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: return series for %s", ErrNonFiniteValue, universe[idx])
			}
		}
	}

	sigma := mat.NewSymDense(n, nil)
	for ii := 0; ii < n; ii++ {
		for jj := ii; jj < n; jj++ {
			sigma.SetSym(ii, jj, stat.Covariance(series[ii], series[jj], nil))
		}
	}

	return sigma, nil
}
