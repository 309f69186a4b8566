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

package data_test

import (
	"context"
	"time"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/quantfolio/allocator/data"
)

var _ = Describe("When downloading eod quotes from tiingo", func() {
	var (
		provider data.Provider
		begin    time.Time
		end      time.Time
	)

	BeforeEach(func() {
		httpmock.Activate()
		provider = data.NewTiingo("TEST")
		begin = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	})

	AfterEach(func() {
		httpmock.DeactivateAndReset()
	})

	Context("with a valid response", func() {
		BeforeEach(func() {
			httpmock.RegisterResponder("GET", `=~^https://api\.tiingo\.com/tiingo/daily/VFINX/prices`,
				httpmock.NewStringResponder(200, `[
					{"date":"2024-01-02T00:00:00.000Z","close":100.0,"adjClose":99.5,"high":101,"low":99,"open":100,"volume":1000,"adjHigh":100.5,"adjLow":98.5,"adjOpen":99.5,"adjVolume":1000,"divCash":0,"splitFactor":1},
					{"date":"2024-01-03T00:00:00.000Z","close":101.0,"adjClose":100.5,"high":102,"low":100,"open":101,"volume":1000,"adjHigh":101.5,"adjLow":99.5,"adjOpen":100.5,"adjVolume":1000,"divCash":0,"splitFactor":1}
				]`))
		})

		It("parses dates and dividend adjusted closes", func() {
			eod, err := provider.GetEOD(context.Background(), "VFINX", begin, end)
			Expect(err).To(BeNil())

			Expect(eod).To(HaveLen(2))
			Expect(eod[0].Close).To(Equal(99.5))
			Expect(eod[1].Close).To(Equal(100.5))
			Expect(eod[0].Date.Year()).To(Equal(2024))
			Expect(eod[0].Date.Day()).To(Equal(2))
			Expect(eod[0].Date.Hour()).To(Equal(16))
		})
	})

	Context("with error responses", func() {
		It("maps 404 to ErrNotFound", func() {
			httpmock.RegisterResponder("GET", `=~^https://api\.tiingo\.com/tiingo/daily/NOSUCH/prices`,
				httpmock.NewStringResponder(404, "not found"))

			_, err := provider.GetEOD(context.Background(), "NOSUCH", begin, end)
			Expect(err).To(MatchError(data.ErrNotFound))
		})

		It("maps other http errors to ErrProviderResponse", func() {
			httpmock.RegisterResponder("GET", `=~^https://api\.tiingo\.com/tiingo/daily/VFINX/prices`,
				httpmock.NewStringResponder(500, "server error"))

			_, err := provider.GetEOD(context.Background(), "VFINX", begin, end)
			Expect(err).To(MatchError(data.ErrProviderResponse))
		})

		It("maps malformed json to ErrProviderResponse", func() {
			httpmock.RegisterResponder("GET", `=~^https://api\.tiingo\.com/tiingo/daily/VFINX/prices`,
				httpmock.NewStringResponder(200, `{"not":"an array"}`))

			_, err := provider.GetEOD(context.Background(), "VFINX", begin, end)
			Expect(err).To(MatchError(data.ErrProviderResponse))
		})
	})

	Context("with an inverted time range", func() {
		It("errors without making a request", func() {
			_, err := provider.GetEOD(context.Background(), "VFINX", end, begin)
			Expect(err).To(MatchError(data.ErrInvalidTimeRange))
			Expect(httpmock.GetTotalCallCount()).To(Equal(0))
		})
	})
})
