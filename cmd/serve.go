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
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/quantfolio/allocator/router"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	serveCmd.Flags().Int("port", 3000, "Port to run HTTP server on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the allocation HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		app := fiber.New()
		router.SetupRoutes(app)

		port := viper.GetInt("server.port")
		log.Info().Int("Port", port).Msg("starting HTTP server")
		if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
			log.Fatal().Err(err).Msg("server exited")
		}
	},
}
