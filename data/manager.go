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

package data

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/quantfolio/allocator/dataframe"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const defaultCacheSize = 256

var (
	cacheOnce   sync.Once
	sharedCache *eodCache
)

// Manager retrieves price history through a Provider and assembles it into
// date-aligned dataframes. Provider responses are cached per symbol and
// window.
type Manager struct {
	Begin time.Time
	End   time.Time

	provider Provider
	cache    *eodCache
}

// NewManager creates a manager backed by provider. All managers share one
// process-wide cache so short-lived managers (one per API request) still get
// cache hits; keys include the symbol and window. Cache size comes from the
// cache.local_size setting, read on first use.
func NewManager(provider Provider) *Manager {
	cacheOnce.Do(func() {
		size := viper.GetInt("cache.local_size")
		if size <= 0 {
			size = defaultCacheSize
		}

		cache, err := newEodCache(size)
		if err != nil {
			log.Panic().Err(err).Msg("could not create LRU cache")
		}
		sharedCache = cache
	})

	return &Manager{
		provider: provider,
		cache:    sharedCache,
	}
}

// GetEOD returns price history for a single symbol over the manager's window,
// consulting the cache first.
func (m *Manager) GetEOD(ctx context.Context, symbol string) ([]*Eod, error) {
	if m.End.Before(m.Begin) {
		return nil, ErrInvalidTimeRange
	}

	key := fmt.Sprintf("%s:%s:%s", symbol, m.Begin.Format("2006-01-02"), m.End.Format("2006-01-02"))
	if data, ok := m.cache.get(key); ok {
		var eod []*Eod
		if err := json.Unmarshal(data, &eod); err == nil {
			return eod, nil
		}
		log.Warn().Str("Key", key).Msg("discarding undecodable cache entry")
	}

	eod, err := m.provider.GetEOD(ctx, symbol, m.Begin, m.End)
	if err != nil {
		return nil, err
	}
	if len(eod) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCoverage, symbol)
	}

	if data, err := json.Marshal(eod); err == nil {
		if err := m.cache.set(key, data); err != nil {
			log.Warn().Err(err).Str("Key", key).Msg("could not cache eod data")
		}
	}

	return eod, nil
}

// GetDataFrame retrieves history for every ticker and aligns the series on
// their common dates; one column per ticker. A ticker with no data in the
// window is an error, never silently dropped.
func (m *Manager) GetDataFrame(ctx context.Context, tickers ...string) (*dataframe.DataFrame, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no tickers requested", ErrNoCoverage)
	}

	frames := make([]*dataframe.DataFrame, 0, len(tickers))
	for _, ticker := range tickers {
		eod, err := m.GetEOD(ctx, ticker)
		if err != nil {
			return nil, fmt.Errorf("could not load %s: %w", ticker, err)
		}

		dates := make([]time.Time, len(eod))
		closes := make([]float64, len(eod))
		for idx, quote := range eod {
			dates[idx] = quote.Date
			closes[idx] = quote.Close
		}

		frames = append(frames, &dataframe.DataFrame{
			Dates:    dates,
			ColNames: []string{ticker},
			Vals:     [][]float64{closes},
		})
	}

	aligned, err := dataframe.Align(frames...)
	if err != nil {
		return nil, err
	}

	log.Debug().Strs("Tickers", tickers).Int("NumRows", aligned.Len()).Msg("loaded aligned price history")
	return aligned, nil
}
