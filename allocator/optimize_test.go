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

package allocator_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/quantfolio/allocator/allocator"
	"gonum.org/v1/gonum/mat"
)

func diagSym(vars ...float64) *mat.SymDense {
	sigma := mat.NewSymDense(len(vars), nil)
	for i, v := range vars {
		sigma.SetSym(i, i, v)
	}
	return sigma
}

func sum(ws []float64) float64 {
	var s float64
	for _, w := range ws {
		s += w
	}
	return s
}

var _ = Describe("When optimizing a portfolio", func() {
	Context("with three assets and uncorrelated risk", func() {
		var (
			mu    []float64
			sigma *mat.SymDense
		)

		BeforeEach(func() {
			mu = []float64{0.10, 0.02, 0.02}
			sigma = diagSym(0.04, 0.04, 0.04)
		})

		It("favors the asset with the highest expected return", func() {
			weights, err := allocator.Optimize(nil, mu, sigma, 3, 0.05)
			Expect(err).To(BeNil())

			Expect(weights[0]).Should(BeNumerically(">", weights[1]))
			Expect(weights[0]).Should(BeNumerically(">", weights[2]))
		})

		It("produces weights that sum to one within tolerance", func() {
			weights, err := allocator.Optimize(nil, mu, sigma, 3, 0.05)
			Expect(err).To(BeNil())
			Expect(sum(weights)).Should(BeNumerically("~", 1.0, allocator.SumTolerance))
		})

		It("respects the minimum allocation on every asset", func() {
			weights, err := allocator.Optimize(nil, mu, sigma, 3, 0.05)
			Expect(err).To(BeNil())
			for _, w := range weights {
				Expect(w).Should(BeNumerically(">=", 0.05-allocator.BoundTolerance))
				Expect(w).Should(BeNumerically("<=", 1.0+allocator.BoundTolerance))
			}
		})

		It("matches the closed-form interior solution", func() {
			// all variables stay free: w_i = (mu_i - theta) / (lambda * var)
			// with theta chosen so the weights sum to one
			weights, err := allocator.Optimize(nil, mu, sigma, 3, 0.05)
			Expect(err).To(BeNil())

			Expect(weights[0]).Should(BeNumerically("~", 7.0/9.0, 1e-9))
			Expect(weights[1]).Should(BeNumerically("~", 1.0/9.0, 1e-9))
			Expect(weights[2]).Should(BeNumerically("~", 1.0/9.0, 1e-9))
		})

		It("assigns identical weights to assets with identical moments", func() {
			weights, err := allocator.Optimize(nil, mu, sigma, 3, 0.05)
			Expect(err).To(BeNil())
			Expect(weights[1]).Should(BeNumerically("~", weights[2], 1e-12))
		})

		It("is deterministic across repeated runs", func() {
			first, err := allocator.Optimize(nil, mu, sigma, 3, 0.05)
			Expect(err).To(BeNil())
			second, err := allocator.Optimize(nil, mu, sigma, 3, 0.05)
			Expect(err).To(BeNil())
			Expect(second).To(Equal(first))
		})

		It("pins laggards to the floor when risk aversion is low", func() {
			weights, err := allocator.Optimize(nil, mu, sigma, 0.5, 0.05)
			Expect(err).To(BeNil())

			Expect(weights[0]).Should(BeNumerically("~", 0.90, 1e-9))
			Expect(weights[1]).Should(BeNumerically("~", 0.05, 1e-9))
			Expect(weights[2]).Should(BeNumerically("~", 0.05, 1e-9))
		})

		It("does not reduce variance when risk aversion falls", func() {
			lambdas := []float64{10, 3, 1, 0.5}
			prev := -1.0
			for _, lambda := range lambdas {
				weights, err := allocator.Optimize(nil, mu, sigma, lambda, 0.05)
				Expect(err).To(BeNil())
				variance := allocator.PortfolioVariance(weights, sigma)
				Expect(variance).Should(BeNumerically(">=", prev-1e-12))
				prev = variance
			}
		})

		It("does no worse than equal weighting on risk-adjusted utility", func() {
			weights, err := allocator.Optimize(nil, mu, sigma, 3, 0.05)
			Expect(err).To(BeNil())

			equal := []float64{1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0}
			Expect(allocator.Utility(mu, weights, sigma, 3)).Should(
				BeNumerically(">=", allocator.Utility(mu, equal, sigma, 3)-1e-9))
		})
	})

	Context("with a reusable workspace", func() {
		It("returns the same weights as one-shot allocation", func() {
			mu := []float64{0.10, 0.02, 0.02}
			sigma := diagSym(0.04, 0.04, 0.04)

			ws := allocator.NewWorkspace(3)
			first, err := allocator.Optimize(ws, mu, sigma, 3, 0.05)
			Expect(err).To(BeNil())

			// a second, different problem must not leak state into the third
			_, err = allocator.Optimize(ws, []float64{0.01, 0.08, 0.03}, sigma, 0.5, 0.05)
			Expect(err).To(BeNil())

			third, err := allocator.Optimize(ws, mu, sigma, 3, 0.05)
			Expect(err).To(BeNil())
			Expect(third).To(Equal(first))
		})
	})

	Context("when the floor constraint binds the whole budget", func() {
		It("returns exact equal weights when n times the floor equals one", func() {
			mu := []float64{0.10, 0.02, 0.02}
			sigma := diagSym(0.04, 0.04, 0.04)

			weights, err := allocator.Optimize(nil, mu, sigma, 3, 1.0/3.0)
			Expect(err).To(BeNil())
			for _, w := range weights {
				Expect(w).To(Equal(1.0 / 3.0))
			}
		})

		It("rejects a floor that exceeds the budget", func() {
			mu := []float64{0.10, 0.02, 0.02}
			sigma := diagSym(0.04, 0.04, 0.04)

			_, err := allocator.Optimize(nil, mu, sigma, 3, 0.4)
			Expect(err).To(MatchError(allocator.ErrInfeasibleConstraints))
		})
	})

	Context("with a singular covariance matrix", func() {
		It("regularizes and still honors all constraints", func() {
			// perfectly correlated assets with identical variance make the
			// quadratic block rank deficient
			sigma := mat.NewSymDense(2, []float64{0.04, 0.04, 0.04, 0.04})
			mu := []float64{0.05, 0.05}

			weights, err := allocator.Optimize(nil, mu, sigma, 3, 0.05)
			Expect(err).To(BeNil())
			Expect(sum(weights)).Should(BeNumerically("~", 1.0, allocator.SumTolerance))
			Expect(weights[0]).Should(BeNumerically("~", weights[1], 1e-9))
		})
	})

	Context("with zero risk aversion", func() {
		It("concentrates in the best asset up to the floor of the rest", func() {
			mu := []float64{0.10, 0.02, 0.03}
			sigma := diagSym(0.04, 0.04, 0.04)

			weights, err := allocator.Optimize(nil, mu, sigma, 0, 0.05)
			Expect(err).To(BeNil())
			Expect(weights[0]).Should(BeNumerically("~", 0.90, 1e-6))
			Expect(weights[1]).Should(BeNumerically("~", 0.05, 1e-6))
			Expect(weights[2]).Should(BeNumerically("~", 0.05, 1e-6))
		})
	})

	Context("with a single asset", func() {
		It("allocates the full budget", func() {
			weights, err := allocator.Optimize(nil, []float64{0.05}, diagSym(0.04), 3, 0)
			Expect(err).To(BeNil())
			Expect(weights).To(HaveLen(1))
			Expect(weights[0]).Should(BeNumerically("~", 1.0, allocator.SumTolerance))
		})
	})

	Context("with invalid inputs", func() {
		It("rejects mismatched dimensions", func() {
			_, err := allocator.Optimize(nil, []float64{0.10, 0.02}, diagSym(0.04, 0.04, 0.04), 3, 0.05)
			Expect(err).To(MatchError(allocator.ErrDimensionMismatch))
		})

		It("rejects negative risk aversion", func() {
			_, err := allocator.Optimize(nil, []float64{0.10, 0.02}, diagSym(0.04, 0.04), -1, 0.05)
			Expect(err).To(MatchError(allocator.ErrInvalidRiskAversion))
		})

		It("rejects a minimum allocation outside [0, 1]", func() {
			_, err := allocator.Optimize(nil, []float64{0.10, 0.02}, diagSym(0.04, 0.04), 3, -0.1)
			Expect(err).To(MatchError(allocator.ErrInvalidAllocation))

			_, err = allocator.Optimize(nil, []float64{0.10, 0.02}, diagSym(0.04, 0.04), 3, 1.5)
			Expect(err).To(MatchError(allocator.ErrInvalidAllocation))
		})

		It("rejects an empty universe", func() {
			_, err := allocator.Optimize(nil, []float64{}, nil, 3, 0.05)
			Expect(err).To(MatchError(allocator.ErrEmptyUniverse))
		})
	})
})

var _ = Describe("When optimizing over a named universe", func() {
	It("returns weights keyed by ticker", func() {
		weights, err := allocator.OptimizeUniverse(
			[]string{"VFINX", "PRIDX", "VUSTX"},
			map[string]float64{"VFINX": 0.10, "PRIDX": 0.02, "VUSTX": 0.02},
			diagSym(0.04, 0.04, 0.04), 3, 0.05)
		Expect(err).To(BeNil())

		Expect(weights).To(HaveLen(3))
		Expect(weights["VFINX"]).Should(BeNumerically(">", weights["PRIDX"]))
		Expect(weights["PRIDX"]).Should(BeNumerically("~", weights["VUSTX"], 1e-12))
	})

	It("errors when a ticker has no expected return", func() {
		_, err := allocator.OptimizeUniverse(
			[]string{"VFINX", "PRIDX"},
			map[string]float64{"VFINX": 0.10},
			diagSym(0.04, 0.04), 3, 0.05)
		Expect(err).To(MatchError(allocator.ErrMissingAsset))
	})
})
