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

package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/viper"
)

var pool *pgxpool.Pool

var ErrNotConnected = errors.New("database not connected")

// Connect opens the connection pool configured by database.url and verifies
// it with a ping.
func Connect(ctx context.Context) error {
	var err error
	pool, err = pgxpool.Connect(ctx, viper.GetString("database.url"))
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// Pool returns the shared connection pool; ErrNotConnected before Connect.
func Pool() (*pgxpool.Pool, error) {
	if pool == nil {
		return nil, ErrNotConnected
	}
	return pool, nil
}

// Close releases the connection pool.
func Close() {
	if pool != nil {
		pool.Close()
		pool = nil
	}
}
