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

package dataframe

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Get index of specified column; returns -1 if column doesn't exist
func (df *DataFrame) ColIndex(colName string) int {
	for idx, val := range df.ColNames {
		if colName == val {
			return idx
		}
	}

	return -1
}

// ColCount returns the number of columns in the dataframe
func (df *DataFrame) ColCount() int {
	return len(df.ColNames)
}

// Copy creates a copy of the dataframe
func (df *DataFrame) Copy() *DataFrame {
	df2 := &DataFrame{
		Dates:    make([]time.Time, len(df.Dates)),
		ColNames: make([]string, len(df.ColNames)),
		Vals:     make([][]float64, len(df.Vals)),
	}

	copy(df2.Dates, df.Dates)
	copy(df2.ColNames, df.ColNames)

	for idx := range df2.Vals {
		df2.Vals[idx] = make([]float64, len(df.Vals[idx]))
		copy(df2.Vals[idx], df.Vals[idx])
	}

	return df2
}

// Drop removes rows that contain the value `val` from the dataframe
func (df *DataFrame) Drop(val float64) *DataFrame {
	isNA := math.IsNaN(val)
	newVals := make([][]float64, len(df.Vals))
	newDates := make([]time.Time, 0, len(df.Dates))

	for idx, date := range df.Dates {
		keep := true
		for _, col := range df.Vals {
			rowVal := col[idx]
			keep = keep && !(rowVal == val || (isNA && math.IsNaN(rowVal)))
			if !keep {
				break
			}
		}

		if keep {
			newDates = append(newDates, date)
			for colIdx, col := range df.Vals {
				newVals[colIdx] = append(newVals[colIdx], col[idx])
			}
		}
	}

	df.Vals = newVals
	df.Dates = newDates
	return df
}

// Insert a new column to the end of the dataframe
func (df *DataFrame) Insert(name string, col []float64) *DataFrame {
	df.ColNames = append(df.ColNames, name)
	df.Vals = append(df.Vals, col)
	return df
}

// Last returns a new dataframe with only the last row of the current
// dataframe
func (df *DataFrame) Last() *DataFrame {
	if df.Len() == 0 {
		return df
	}

	lastVals := make([][]float64, len(df.ColNames))
	lastRow := len(df.Dates) - 1
	for idx, col := range df.Vals {
		lastVals[idx] = []float64{col[lastRow]}
	}

	return &DataFrame{
		ColNames: df.ColNames,
		Dates:    []time.Time{df.Dates[lastRow]},
		Vals:     lastVals,
	}
}

// Len returns the number of rows in the dataframe
func (df *DataFrame) Len() int {
	return len(df.Dates)
}

// AsColumns returns the dataframe values as a map from column name to value
// slice; slices are shared with the dataframe, not copied
func (df *DataFrame) AsColumns() map[string][]float64 {
	res := make(map[string][]float64, len(df.ColNames))
	for idx, colName := range df.ColNames {
		res[colName] = df.Vals[idx]
	}
	return res
}

// LastRow returns a map of column name to the value in the final row
func (df *DataFrame) LastRow() map[string]float64 {
	res := make(map[string]float64, len(df.ColNames))
	if df.Len() == 0 {
		return res
	}

	lastRow := len(df.Dates) - 1
	for idx, colName := range df.ColNames {
		res[colName] = df.Vals[idx][lastRow]
	}
	return res
}

// Trim the dataframe to the specified date range (inclusive)
func (df *DataFrame) Trim(begin, end time.Time) *DataFrame {
	df2 := &DataFrame{
		ColNames: df.ColNames,
		Dates:    df.Dates,
		Vals:     df.Vals,
	}

	if df.Len() == 0 {
		return df2
	}

	if end.Before(begin) || end.Before(df.Dates[0]) || begin.After(df.Dates[len(df.Dates)-1]) {
		df2.Dates = []time.Time{}
		df2.Vals = make([][]float64, len(df.ColNames))
		return df2
	}

	beginIdx := sort.Search(len(df.Dates), func(i int) bool {
		return !df.Dates[i].Before(begin)
	})
	endIdx := sort.Search(len(df.Dates), func(i int) bool {
		return df.Dates[i].After(end)
	})

	df2.Dates = df.Dates[beginIdx:endIdx]
	df2.Vals = make([][]float64, len(df.Vals))
	for colIdx, col := range df.Vals {
		df2.Vals[colIdx] = col[beginIdx:endIdx]
	}

	return df2
}

// Align intersects the dataframes on their common dates and merges their
// columns into a single dataframe. This is the explicit alignment contract
// for multi-asset history: rows that are not present in every input are
// dropped, never zero-filled. Returns ErrNoCommonDates when the intersection
// is empty.
func Align(dfs ...*DataFrame) (*DataFrame, error) {
	if len(dfs) == 0 {
		return nil, ErrNoCommonDates
	}

	// key by instant so equal times in different locations still match;
	// the first frame's representation is kept for the output dates
	common := make(map[int64]int, len(dfs[0].Dates))
	canonical := make(map[int64]time.Time, len(dfs[0].Dates))
	for _, date := range dfs[0].Dates {
		common[date.UnixNano()] = 1
		canonical[date.UnixNano()] = date
	}
	for _, df := range dfs[1:] {
		for _, date := range df.Dates {
			if cnt, ok := common[date.UnixNano()]; ok && cnt == 1 {
				common[date.UnixNano()] = 2
			}
		}
		for key, cnt := range common {
			if cnt == 1 {
				delete(common, key)
			} else {
				common[key] = 1
			}
		}
	}

	if len(common) == 0 {
		return nil, ErrNoCommonDates
	}

	dates := make([]time.Time, 0, len(common))
	for key := range common {
		dates = append(dates, canonical[key])
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rowIdx := make(map[int64]int, len(dates))
	for idx, date := range dates {
		rowIdx[date.UnixNano()] = idx
	}

	aligned := &DataFrame{Dates: dates}
	for _, df := range dfs {
		cols := make([][]float64, len(df.ColNames))
		for colIdx := range cols {
			cols[colIdx] = make([]float64, len(dates))
		}
		for idx, date := range df.Dates {
			if row, ok := rowIdx[date.UnixNano()]; ok {
				for colIdx := range df.ColNames {
					cols[colIdx][row] = df.Vals[colIdx][idx]
				}
			}
		}
		aligned.ColNames = append(aligned.ColNames, df.ColNames...)
		aligned.Vals = append(aligned.Vals, cols...)
	}

	return aligned, nil
}

// Table prints an ASCII formatted table to stdout
func (df *DataFrame) Table() string {
	if len(df.Dates) == 0 {
		return "<NO DATA>"
	}

	tableCols := append([]string{"Date"}, df.ColNames...)

	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader(tableCols)
	footer := make([]string, len(tableCols))
	footer[0] = "Num Rows"
	footer[1] = fmt.Sprintf("%d", df.Len())
	table.SetFooter(footer)
	table.SetBorder(false)

	for idx, date := range df.Dates {
		row := make([]string, 0, len(df.Vals)+1)
		row = append(row, date.Format("2006-01-02"))
		for _, col := range df.Vals {
			row = append(row, fmt.Sprintf("%.4f", col[idx]))
		}
		table.Append(row)
	}

	table.Render()
	return s.String()
}
