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

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/quantfolio/allocator/common"
	"github.com/quantfolio/allocator/data"
	"github.com/quantfolio/allocator/database"
	"github.com/quantfolio/allocator/forecast"
	"github.com/quantfolio/allocator/portfolio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	saveToFiles bool
	saveDb      bool
	resultsDir  string
)

func init() {
	optimizeCmd.Flags().StringSlice("tickers", nil, "Universe of tickers to allocate over")
	viper.BindPFlag("portfolio.tickers", optimizeCmd.Flags().Lookup("tickers"))

	optimizeCmd.Flags().String("start-date", "", "Start of historical window (YYYY-MM-DD)")
	viper.BindPFlag("portfolio.start_date", optimizeCmd.Flags().Lookup("start-date"))

	optimizeCmd.Flags().String("end-date", "", "End of historical window (YYYY-MM-DD); defaults to today")

	optimizeCmd.Flags().Float64("risk-aversion", 3.0, "Risk aversion coefficient")
	viper.BindPFlag("portfolio.risk_aversion", optimizeCmd.Flags().Lookup("risk-aversion"))

	optimizeCmd.Flags().Float64("minimum-allocation", 0.05, "Minimum allocation per asset")
	viper.BindPFlag("portfolio.minimum_allocation", optimizeCmd.Flags().Lookup("minimum-allocation"))

	optimizeCmd.Flags().BoolVar(&saveToFiles, "save-to-files", false, "Save results to text and JSON files in the results directory")
	optimizeCmd.Flags().StringVar(&resultsDir, "results-dir", "results", "Directory to save results files")
	optimizeCmd.Flags().BoolVar(&saveDb, "save-db", false, "Save results to the database")

	rootCmd.AddCommand(optimizeCmd)
}

// runOptimization executes an allocation pass with the configured settings;
// shared by the optimize and schedule commands.
func runOptimization(ctx context.Context) (*portfolio.Report, error) {
	tickers := viper.GetStringSlice("portfolio.tickers")
	common.ArrToUpper(tickers)

	startDate, err := time.Parse("2006-01-02", viper.GetString("portfolio.start_date"))
	if err != nil {
		return nil, fmt.Errorf("could not parse start date: %w", err)
	}

	endDate := time.Now()
	if endDateStr := viper.GetString("portfolio.end_date"); endDateStr != "" {
		if endDate, err = time.Parse("2006-01-02", endDateStr); err != nil {
			return nil, fmt.Errorf("could not parse end date: %w", err)
		}
	}

	manager := data.NewManager(data.NewTiingo(viper.GetString("tiingo.token")))
	manager.Begin = startDate
	manager.End = endDate

	return portfolio.RunOptimization(ctx, manager, &forecast.Drift{},
		tickers,
		viper.GetFloat64("portfolio.risk_aversion"),
		viper.GetFloat64("portfolio.minimum_allocation"))
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run a portfolio optimization and print the resulting weights",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		if endDate, err := cmd.Flags().GetString("end-date"); err == nil && endDate != "" {
			viper.Set("portfolio.end_date", endDate)
		}

		report, err := runOptimization(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("optimization failed")
		}

		fmt.Println(report.Table())
		fmt.Printf("Date: %s\n", report.Date.Format("2006-01-02"))
		fmt.Printf("Expected Portfolio Return: %.2f%%\n", report.PortfolioReturn*100)
		fmt.Printf("Portfolio Variance: %.6f\n", report.PortfolioVariance)

		if saveToFiles {
			txtFile, jsonFile, err := report.WriteFiles(resultsDir)
			if err != nil {
				log.Fatal().Err(err).Msg("could not write results files")
			}
			fmt.Printf("Results saved to %s and %s\n", txtFile, jsonFile)
		}

		if saveDb {
			if err := database.Connect(ctx); err != nil {
				log.Fatal().Err(err).Msg("could not connect to database")
			}
			defer database.Close()

			if err := report.Save(ctx); err != nil {
				log.Fatal().Err(err).Msg("could not save results to database")
			}
		}
	},
}
