// Copyright 2025 The sheetclip Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sheetclip

import "sort"

// ObjectMatrix is a sparse two-dimensional store keyed by (row, column).
// Only set cells take memory. Rows is exported so that snapshots can be deep
// copied and compared structurally.
type ObjectMatrix[T any] struct {
	Rows map[int]map[int]T
}

// NewObjectMatrix creates an empty matrix.
func NewObjectMatrix[T any]() *ObjectMatrix[T] {
	return &ObjectMatrix[T]{Rows: make(map[int]map[int]T)}
}

// SetValue stores v at (row, col), replacing any previous value.
func (m *ObjectMatrix[T]) SetValue(row, col int, v T) {
	if m.Rows == nil {
		m.Rows = make(map[int]map[int]T)
	}
	cols, ok := m.Rows[row]
	if !ok {
		cols = make(map[int]T)
		m.Rows[row] = cols
	}
	cols[col] = v
}

// GetValue returns the value at (row, col).
func (m *ObjectMatrix[T]) GetValue(row, col int) (T, bool) {
	if m == nil {
		var zero T
		return zero, false
	}
	v, ok := m.Rows[row][col]
	return v, ok
}

// RealDelete removes the value at (row, col) and drops the row once empty.
func (m *ObjectMatrix[T]) RealDelete(row, col int) {
	if m == nil {
		return
	}
	cols, ok := m.Rows[row]
	if !ok {
		return
	}
	delete(cols, col)
	if len(cols) == 0 {
		delete(m.Rows, row)
	}
}

// Len returns the number of stored cells.
func (m *ObjectMatrix[T]) Len() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, cols := range m.Rows {
		n += len(cols)
	}
	return n
}

// ForEach calls fn for every stored cell in row-major order. If fn returns
// false, iteration stops.
func (m *ObjectMatrix[T]) ForEach(fn func(row, col int, v T) bool) {
	if m == nil {
		return
	}
	rows := make([]int, 0, len(m.Rows))
	for r := range m.Rows {
		rows = append(rows, r)
	}
	sort.Ints(rows)
	for _, r := range rows {
		cols := make([]int, 0, len(m.Rows[r]))
		for c := range m.Rows[r] {
			cols = append(cols, c)
		}
		sort.Ints(cols)
		for _, c := range cols {
			if !fn(r, c, m.Rows[r][c]) {
				return
			}
		}
	}
}

// GetDataRange returns the bounding box of the stored cells using the
// matrix's own coordinates. The second result is false for an empty matrix.
func (m *ObjectMatrix[T]) GetDataRange() (Range, bool) {
	var (
		rng   Range
		found bool
	)
	m.ForEach(func(row, col int, _ T) bool {
		if !found {
			rng = Range{StartRow: row, StartColumn: col, EndRow: row, EndColumn: col}
			found = true
			return true
		}
		rng.StartRow = min(rng.StartRow, row)
		rng.EndRow = max(rng.EndRow, row)
		rng.StartColumn = min(rng.StartColumn, col)
		rng.EndColumn = max(rng.EndColumn, col)
		return true
	})
	return rng, found
}
