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
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/quantfolio/allocator/common"
	"github.com/rs/zerolog/log"
)

type tiingo struct {
	apikey string
}

type tiingoJSONResponse struct {
	Date        string  `json:"date"`
	Close       float64 `json:"close"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Open        float64 `json:"open"`
	Volume      int64   `json:"volume"`
	AdjClose    float64 `json:"adjClose"`
	AdjHigh     float64 `json:"adjHigh"`
	AdjLow      float64 `json:"adjLow"`
	AdjOpen     float64 `json:"adjOpen"`
	AdjVolume   int64   `json:"adjVolume"`
	DivCash     float64 `json:"divCash"`
	SplitFactor float64 `json:"splitFactor"`
}

var tiingoAPI = "https://api.tiingo.com"

// NewTiingo Create a new Tiingo data provider
func NewTiingo(key string) Provider {
	return &tiingo{
		apikey: key,
	}
}

// GetEOD retrieves daily adjusted closes for symbol over [begin, end].
func (t *tiingo) GetEOD(ctx context.Context, symbol string, begin, end time.Time) ([]*Eod, error) {
	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	subLog := log.With().Str("Symbol", symbol).Time("Begin", begin).Time("End", end).Logger()

	url := fmt.Sprintf("%s/tiingo/daily/%s/prices?startDate=%s&endDate=%s&resampleFreq=daily&token=%s",
		tiingoAPI, symbol, begin.Format("2006-01-02"), end.Format("2006-01-02"), t.apikey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		subLog.Error().Err(err).Msg("tiingo http request failed")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}

	if resp.StatusCode >= 400 {
		subLog.Error().Int("HTTPResponseStatusCode", resp.StatusCode).Msg("tiingo returned invalid response code")
		return nil, fmt.Errorf("%w: status code %d", ErrProviderResponse, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		subLog.Error().Err(err).Msg("could not read tiingo body")
		return nil, err
	}

	jsonResp := []tiingoJSONResponse{}
	if err := json.Unmarshal(body, &jsonResp); err != nil {
		subLog.Error().Err(err).Bytes("Body", body).Msg("could not unmarshal json")
		return nil, fmt.Errorf("%w: %s", ErrProviderResponse, err)
	}

	tz := common.GetTimezone()
	eod := make([]*Eod, 0, len(jsonResp))
	for _, quote := range jsonResp {
		date, err := time.Parse(time.RFC3339, quote.Date)
		if err != nil {
			subLog.Warn().Err(err).Str("Date", quote.Date).Msg("skipping quote with unparseable date")
			continue
		}
		year, month, day := date.Date()
		eod = append(eod, &Eod{
			Date:  time.Date(year, month, day, 16, 0, 0, 0, tz),
			Close: quote.AdjClose,
		})
	}

	return eod, nil
}
