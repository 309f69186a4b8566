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

package forecast

import (
	"fmt"
	"math"

	"github.com/quantfolio/allocator/dataframe"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

// Drift is the reference Forecaster: an ordinary least squares fit of log
// price against time, projected one period ahead. Lookback limits the fit to
// the most recent observations; 0 uses the full history.
type Drift struct {
	Lookback int
}

// Predict fits each column independently and returns the projected price and
// the implied fractional return.
func (d *Drift) Predict(prices *dataframe.DataFrame) (map[string]Prediction, error) {
	if prices.Len() < 2 {
		return nil, ErrInsufficientHistory
	}

	predictions := make(map[string]Prediction, prices.ColCount())
	for colIdx, ticker := range prices.ColNames {
		col := prices.Vals[colIdx]
		if d.Lookback > 0 && len(col) > d.Lookback {
			col = col[len(col)-d.Lookback:]
		}

		xs := make([]float64, len(col))
		ys := make([]float64, len(col))
		for idx, price := range col {
			if price <= 0 {
				return nil, fmt.Errorf("%w: non-positive price for %s", ErrInsufficientHistory, ticker)
			}
			xs[idx] = float64(idx)
			ys[idx] = math.Log(price)
		}

		alpha, beta := stat.LinearRegression(xs, ys, nil, false)
		predicted := math.Exp(alpha + beta*float64(len(col)))
		last := col[len(col)-1]

		predictions[ticker] = Prediction{
			Price:  predicted,
			Return: predicted/last - 1,
		}

		log.Debug().Str("Ticker", ticker).Float64("Predicted", predicted).Float64("Last", last).Msg("drift forecast")
	}

	return predictions, nil
}
