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

package common_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/quantfolio/allocator/common"
)

var _ = Describe("When using common utilities", func() {
	It("uppercases tickers in place", func() {
		tickers := []string{"vfinx", "Pridx", "VUSTX"}
		common.ArrToUpper(tickers)
		Expect(tickers).To(Equal([]string{"VFINX", "PRIDX", "VUSTX"}))
	})

	It("resolves the reference timezone", func() {
		tz := common.GetTimezone()
		Expect(tz.String()).To(Equal("America/New_York"))
	})

	It("builds a version string naming the program", func() {
		Expect(common.BuildVersionString()).To(ContainSubstring("allocator v"))
	})
})
