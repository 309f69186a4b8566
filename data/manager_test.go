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

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/quantfolio/allocator/data"
)

// stubProvider serves canned quotes and counts upstream calls so cache
// behavior can be observed.
type stubProvider struct {
	quotes map[string][]*data.Eod
	calls  int
}

func (s *stubProvider) GetEOD(_ context.Context, symbol string, _, _ time.Time) ([]*data.Eod, error) {
	s.calls++
	return s.quotes[symbol], nil
}

func tradingDay(d int) time.Time {
	return time.Date(2024, 1, d, 16, 0, 0, 0, time.UTC)
}

func quotes(closes map[int]float64) []*data.Eod {
	eod := make([]*data.Eod, 0, len(closes))
	for d := 1; d <= 31; d++ {
		if c, ok := closes[d]; ok {
			eod = append(eod, &data.Eod{Date: tradingDay(d), Close: c})
		}
	}
	return eod
}

var _ = Describe("When loading price history through the manager", func() {
	var (
		provider *stubProvider
		manager  *data.Manager
	)

	BeforeEach(func() {
		provider = &stubProvider{
			quotes: map[string][]*data.Eod{
				"VFINX": quotes(map[int]float64{2: 100, 3: 101, 4: 102}),
				"PRIDX": quotes(map[int]float64{3: 50, 4: 51, 5: 52}),
			},
		}

		manager = data.NewManager(provider)
		manager.Begin = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		manager.End = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	})

	Context("with GetEOD", func() {
		It("serves repeated requests from the cache", func() {
			first, err := manager.GetEOD(context.Background(), "VFINX")
			Expect(err).To(BeNil())
			Expect(provider.calls).To(Equal(1))

			second, err := manager.GetEOD(context.Background(), "VFINX")
			Expect(err).To(BeNil())
			Expect(provider.calls).To(Equal(1))

			Expect(second).To(HaveLen(len(first)))
			Expect(second[0].Close).To(Equal(first[0].Close))
			Expect(second[0].Date.Equal(first[0].Date)).To(BeTrue())
		})

		It("errors when the provider has no data in the window", func() {
			_, err := manager.GetEOD(context.Background(), "NOSUCH")
			Expect(err).To(MatchError(data.ErrNoCoverage))
		})

		It("errors on an inverted window", func() {
			manager.End = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
			_, err := manager.GetEOD(context.Background(), "VFINX")
			Expect(err).To(MatchError(data.ErrInvalidTimeRange))
		})
	})

	Context("with a second manager over the same window", func() {
		It("shares cached responses between manager instances", func() {
			manager.Begin = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
			manager.End = time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)

			_, err := manager.GetEOD(context.Background(), "VFINX")
			Expect(err).To(BeNil())
			Expect(provider.calls).To(Equal(1))

			// one manager per API request must not defeat the cache
			other := &stubProvider{quotes: provider.quotes}
			second := data.NewManager(other)
			second.Begin = manager.Begin
			second.End = manager.End

			eod, err := second.GetEOD(context.Background(), "VFINX")
			Expect(err).To(BeNil())
			Expect(other.calls).To(Equal(0))
			Expect(eod).ToNot(BeEmpty())
		})
	})

	Context("with GetDataFrame", func() {
		It("aligns tickers on their common dates", func() {
			df, err := manager.GetDataFrame(context.Background(), "VFINX", "PRIDX")
			Expect(err).To(BeNil())

			Expect(df.ColNames).To(Equal([]string{"VFINX", "PRIDX"}))
			Expect(df.Len()).To(Equal(2))
			Expect(df.Dates).To(Equal([]time.Time{tradingDay(3), tradingDay(4)}))
			Expect(df.Vals[0]).To(Equal([]float64{101, 102}))
			Expect(df.Vals[1]).To(Equal([]float64{50, 51}))
		})

		It("errors when any ticker has no coverage", func() {
			_, err := manager.GetDataFrame(context.Background(), "VFINX", "NOSUCH")
			Expect(err).To(MatchError(data.ErrNoCoverage))
		})
	})
})
