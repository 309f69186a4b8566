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

package allocator

import "errors"

var (
	ErrEmptyUniverse         = errors.New("universe must contain at least one asset")
	ErrMissingAsset          = errors.New("no return series for asset")
	ErrInsufficientData      = errors.New("fewer than 2 aligned return periods")
	ErrNonFiniteValue        = errors.New("input contains NaN or Inf")
	ErrDimensionMismatch     = errors.New("expected returns and covariance dimensions do not match")
	ErrInvalidRiskAversion   = errors.New("risk aversion must be non-negative")
	ErrInvalidAllocation     = errors.New("minimum allocation must be in [0, 1]")
	ErrInfeasibleConstraints = errors.New("minimum allocation floor exceeds total budget")
	ErrSingularCovariance    = errors.New("covariance matrix is singular beyond regularization limit")
	ErrDidNotConverge        = errors.New("active-set iteration did not converge")
)
