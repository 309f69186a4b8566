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

package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/quantfolio/allocator/allocator"
	"github.com/quantfolio/allocator/common"
	"github.com/quantfolio/allocator/data"
	"github.com/quantfolio/allocator/forecast"
	"github.com/quantfolio/allocator/portfolio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AllocateRequest struct {
	Tickers           []string `json:"tickers"`
	StartDate         string   `json:"startDate"`
	EndDate           string   `json:"endDate"`
	RiskAversion      *float64 `json:"riskAversion"`
	MinimumAllocation *float64 `json:"minimumAllocation"`
}

// Allocate runs an optimization pass for the requested universe and returns
// the report.
func Allocate(c *fiber.Ctx) error {
	var req AllocateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn().Err(err).Msg("could not parse allocate request")
		return fiber.ErrBadRequest
	}

	if len(req.Tickers) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "tickers must not be empty")
	}
	common.ArrToUpper(req.Tickers)

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "startDate must be YYYY-MM-DD")
	}

	endDate := time.Now()
	if req.EndDate != "" {
		if endDate, err = time.Parse("2006-01-02", req.EndDate); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "endDate must be YYYY-MM-DD")
		}
	}

	riskAversion := viper.GetFloat64("portfolio.risk_aversion")
	if req.RiskAversion != nil {
		riskAversion = *req.RiskAversion
	}

	minimumAllocation := viper.GetFloat64("portfolio.minimum_allocation")
	if req.MinimumAllocation != nil {
		minimumAllocation = *req.MinimumAllocation
	}

	manager := data.NewManager(data.NewTiingo(viper.GetString("tiingo.token")))
	manager.Begin = startDate
	manager.End = endDate

	report, err := portfolio.RunOptimization(c.Context(), manager, &forecast.Drift{}, req.Tickers, riskAversion, minimumAllocation)
	if err != nil {
		switch {
		case errors.Is(err, allocator.ErrInfeasibleConstraints),
			errors.Is(err, allocator.ErrInvalidRiskAversion),
			errors.Is(err, allocator.ErrInvalidAllocation),
			errors.Is(err, allocator.ErrInsufficientData),
			errors.Is(err, data.ErrNotFound),
			errors.Is(err, data.ErrNoCoverage):
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		default:
			log.Error().Stack().Err(err).Msg("allocation failed")
			return fiber.ErrInternalServerError
		}
	}

	return c.JSON(report)
}
