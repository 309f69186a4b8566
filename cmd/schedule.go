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

	"github.com/go-co-op/gocron"
	"github.com/quantfolio/allocator/common"
	"github.com/quantfolio/allocator/database"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the optimization daily at the configured time and save results",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		if err := database.Connect(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}
		defer database.Close()

		at := viper.GetString("schedule.at")
		log.Info().Str("At", at).Msg("scheduling daily optimization")

		scheduler := gocron.NewScheduler(common.GetTimezone())
		_, err := scheduler.Every(1).Day().At(at).Do(func() {
			report, err := runOptimization(ctx)
			if err != nil {
				log.Error().Stack().Err(err).Msg("scheduled optimization failed")
				return
			}
			if err := report.Save(ctx); err != nil {
				log.Error().Stack().Err(err).Msg("could not save scheduled optimization")
			}
		})
		if err != nil {
			log.Fatal().Err(err).Msg("could not schedule optimization job")
		}

		scheduler.StartBlocking()
	},
}
