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

package dataframe

import (
	"gonum.org/v1/gonum/floats"
)

// AddScalar adds the scalar value to all columns in dataframe df and returns
// a new dataframe
func (df *DataFrame) AddScalar(scalar float64) *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		for rowIdx := range df.Vals[colIdx] {
			df.Vals[colIdx][rowIdx] += scalar
		}
	}
	return df
}

// MulScalar multiplies all columns in dataframe df by the scalar and returns
// a new dataframe
func (df *DataFrame) MulScalar(scalar float64) *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		floats.Scale(scalar, df.Vals[colIdx])
	}
	return df
}

// Returns computes period-over-period fractional returns for every column:
// r_t = p_t / p_{t-1} - 1. The result has one fewer row than the input;
// ErrTooFewRows when the input has fewer than 2 rows.
func (df *DataFrame) Returns() (*DataFrame, error) {
	if df.Len() < 2 {
		return nil, ErrTooFewRows
	}

	rets := &DataFrame{
		Dates:    df.Dates[1:],
		ColNames: df.ColNames,
		Vals:     make([][]float64, len(df.Vals)),
	}

	for colIdx, col := range df.Vals {
		r := make([]float64, len(col)-1)
		floats.DivTo(r, col[1:], col[:len(col)-1])
		floats.AddConst(-1, r)
		rets.Vals[colIdx] = r
	}

	return rets, nil
}
