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

// Package forecast defines the return forecasting collaborator consumed by
// the allocator pipeline. The allocator treats forecasts as opaque: any
// model producing one expected return per asset satisfies Forecaster.
package forecast

import (
	"errors"

	"github.com/quantfolio/allocator/dataframe"
)

var ErrInsufficientHistory = errors.New("not enough history to forecast")

// Prediction holds the one-step-ahead forecast for a single asset.
type Prediction struct {
	Price  float64 `json:"price"`
	Return float64 `json:"return"`
}

// Forecaster produces a one-step-ahead prediction per column of a price
// dataframe.
type Forecaster interface {
	Predict(prices *dataframe.DataFrame) (map[string]Prediction, error)
}
