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

package data

import (
	"bytes"
	"io"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pierrec/lz4/v4"
)

// eodCache keeps provider responses in an in-process LRU; payloads are lz4
// compressed since daily history for a long window is large and repetitive.
type eodCache struct {
	lru *lru.Cache
}

func newEodCache(size int) (*eodCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &eodCache{lru: cache}, nil
}

func (c *eodCache) set(key string, data []byte) error {
	compressed, err := compress(data)
	if err != nil {
		return err
	}
	c.lru.Add(key, compressed)
	return nil
}

func (c *eodCache) get(key string) ([]byte, bool) {
	val, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}

	data, err := decompress(val.([]byte))
	if err != nil {
		c.lru.Remove(key)
		return nil, false
	}
	return data, true
}

func compress(in []byte) ([]byte, error) {
	r := bytes.NewReader(in)
	w := &bytes.Buffer{}
	zw := lz4.NewWriter(w)
	if _, err := io.Copy(zw, r); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func decompress(in []byte) ([]byte, error) {
	r := bytes.NewReader(in)
	w := &bytes.Buffer{}
	zr := lz4.NewReader(r)
	if _, err := io.Copy(w, zr); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}
