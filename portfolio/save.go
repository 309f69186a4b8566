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
	"time"

	"github.com/google/uuid"
	"github.com/quantfolio/allocator/database"
	"github.com/rs/zerolog/log"
)

const saveSQL = `INSERT INTO portfolio_optimisations (
	id, created_at, as_of_date, ticker, predicted_price, predicted_return, actual_prices_last_month, portfolio_weight
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Save writes one row per ticker to the portfolio_optimisations table.
func (r *Report) Save(ctx context.Context) error {
	pool, err := database.Pool()
	if err != nil {
		return err
	}

	trx, err := pool.Begin(ctx)
	if err != nil {
		log.Error().Err(err).Msg("could not begin transaction")
		return err
	}

	now := time.Now()
	for _, ticker := range r.Tickers() {
		_, err = trx.Exec(ctx, saveSQL,
			uuid.New().String(),
			now,
			r.Date,
			ticker,
			r.PredictedPrices[ticker],
			r.ExpectedReturns[ticker],
			r.ActualPrices[ticker],
			r.Weights[ticker],
		)
		if err != nil {
			log.Error().Err(err).Str("Ticker", ticker).Msg("could not insert optimisation row")
			if rollbackErr := trx.Rollback(ctx); rollbackErr != nil {
				log.Error().Err(rollbackErr).Msg("rollback failed")
			}
			return err
		}
	}

	if err := trx.Commit(ctx); err != nil {
		log.Error().Err(err).Msg("could not commit optimisation rows")
		return err
	}

	log.Info().Int("NumRows", len(r.Weights)).Time("AsOf", r.Date).Msg("saved optimisation results")
	return nil
}
