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

// Package portfolio turns the allocator's outputs into reports and persists
// them for downstream consumers.
package portfolio

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
)

// Report is the result of one optimization run. It is created once per run
// and never mutated afterwards.
type Report struct {
	Date              time.Time
	PredictedPrices   map[string]float64
	CurrentPrices     map[string]float64
	ActualPrices      map[string][]float64 // trailing month of closes per ticker
	ExpectedReturns   map[string]float64
	Weights           map[string]float64
	PortfolioReturn   float64
	PortfolioVariance float64
}

type reportJSON struct {
	Date              string             `json:"date"`
	Predictions       map[string]float64 `json:"predictions"`
	CurrentPrices     map[string]float64 `json:"current_prices"`
	PredictedReturns  map[string]float64 `json:"predicted_returns"`
	Weights           map[string]float64 `json:"weights"`
	PortfolioReturn   float64            `json:"portfolio_return"`
	PortfolioVariance float64            `json:"portfolio_variance"`
}

func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(reportJSON{
		Date:              r.Date.Format("2006-01-02"),
		Predictions:       r.PredictedPrices,
		CurrentPrices:     r.CurrentPrices,
		PredictedReturns:  r.ExpectedReturns,
		Weights:           r.Weights,
		PortfolioReturn:   r.PortfolioReturn,
		PortfolioVariance: r.PortfolioVariance,
	})
}

// Tickers returns the report's asset identifiers in sorted order.
func (r *Report) Tickers() []string {
	tickers := make([]string, 0, len(r.Weights))
	for ticker := range r.Weights {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// Table renders the per-asset results as an ASCII table.
func (r *Report) Table() string {
	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader([]string{"Ticker", "Current", "Predicted", "Expected Return", "Weight"})
	table.SetBorder(false)

	for _, ticker := range r.Tickers() {
		table.Append([]string{
			ticker,
			fmt.Sprintf("%.2f", r.CurrentPrices[ticker]),
			fmt.Sprintf("%.2f", r.PredictedPrices[ticker]),
			fmt.Sprintf("%.2f%%", r.ExpectedReturns[ticker]*100),
			fmt.Sprintf("%.2f%%", r.Weights[ticker]*100),
		})
	}

	table.Render()
	return s.String()
}

// WriteFiles saves the report as a text summary and a JSON payload under dir,
// named optimisation-<date>. Returns the two paths written.
func (r *Report) WriteFiles(dir string) (string, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}

	stem := fmt.Sprintf("optimisation-%s", r.Date.Format("2006-01-02"))

	txt := &strings.Builder{}
	fmt.Fprintf(txt, "%s\n", strings.Repeat("=", 70))
	fmt.Fprintf(txt, "Portfolio Optimisation Complete\n")
	fmt.Fprintf(txt, "%s\n", strings.Repeat("=", 70))
	fmt.Fprintf(txt, "Date: %s\n", r.Date.Format("2006-01-02"))
	for _, ticker := range r.Tickers() {
		fmt.Fprintf(txt, "  %s: %.2f%%\n", ticker, r.Weights[ticker]*100)
	}

	txtPath := filepath.Join(dir, stem+".txt")
	if err := os.WriteFile(txtPath, []byte(txt.String()), 0o644); err != nil {
		return "", "", err
	}

	payload, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", "", err
	}

	jsonPath := filepath.Join(dir, stem+".json")
	if err := os.WriteFile(jsonPath, payload, 0o644); err != nil {
		return "", "", err
	}

	return txtPath, jsonPath, nil
}
