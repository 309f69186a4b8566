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

package portfolio

import (
	"context"
	"fmt"

	"github.com/quantfolio/allocator/allocator"
	"github.com/quantfolio/allocator/data"
	"github.com/quantfolio/allocator/forecast"
	"github.com/rs/zerolog/log"
)

// tradingDaysPerMonth is how many trailing closes are kept per ticker for
// the actual_prices_last_month record.
const tradingDaysPerMonth = 21

// RunOptimization executes one full allocation pass: load aligned price
// history for the universe, derive return series, estimate covariance,
// forecast expected returns, and solve for weights.
func RunOptimization(ctx context.Context, manager *data.Manager, forecaster forecast.Forecaster, universe []string, riskAversion, minimumAllocation float64) (*Report, error) {
	log.Info().Strs("Universe", universe).Time("Begin", manager.Begin).Time("End", manager.End).Msg("starting portfolio optimization")

	prices, err := manager.GetDataFrame(ctx, universe...)
	if err != nil {
		return nil, err
	}

	returns, err := prices.Returns()
	if err != nil {
		return nil, fmt.Errorf("%w: %d price rows", allocator.ErrInsufficientData, prices.Len())
	}

	sigma, err := allocator.EstimateCovariance(universe, returns.AsColumns())
	if err != nil {
		return nil, err
	}

	predictions, err := forecaster.Predict(prices)
	if err != nil {
		return nil, err
	}

	mu := make([]float64, len(universe))
	expectedReturns := make(map[string]float64, len(universe))
	predictedPrices := make(map[string]float64, len(universe))
	for idx, ticker := range universe {
		pred, ok := predictions[ticker]
		if !ok {
			return nil, fmt.Errorf("%w: no forecast for %s", allocator.ErrMissingAsset, ticker)
		}
		mu[idx] = pred.Return
		expectedReturns[ticker] = pred.Return
		predictedPrices[ticker] = pred.Price
	}

	raw, err := allocator.Optimize(nil, mu, sigma, riskAversion, minimumAllocation)
	if err != nil {
		return nil, err
	}

	weights := make(map[string]float64, len(universe))
	for idx, ticker := range universe {
		weights[ticker] = raw[idx]
	}

	actualPrices := make(map[string][]float64, len(universe))
	for ticker, col := range prices.AsColumns() {
		start := 0
		if len(col) > tradingDaysPerMonth {
			start = len(col) - tradingDaysPerMonth
		}
		month := make([]float64, len(col)-start)
		copy(month, col[start:])
		actualPrices[ticker] = month
	}

	report := &Report{
		Date:              prices.Dates[prices.Len()-1],
		PredictedPrices:   predictedPrices,
		CurrentPrices:     prices.LastRow(),
		ActualPrices:      actualPrices,
		ExpectedReturns:   expectedReturns,
		Weights:           weights,
		PortfolioReturn:   allocator.PortfolioReturn(mu, raw),
		PortfolioVariance: allocator.PortfolioVariance(raw, sigma),
	}

	log.Info().Float64("ExpectedReturn", report.PortfolioReturn).Float64("Variance", report.PortfolioVariance).Msg("optimization complete")
	return report, nil
}
