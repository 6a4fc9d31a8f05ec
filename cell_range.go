// Copyright 2025 The sheetclip Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sheetclip

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Range is a rectangular span of cells. Rows and columns are 1-based and
// inclusive, following the excelize coordinate convention.
type Range struct {
	StartRow    int
	StartColumn int
	EndRow      int
	EndColumn   int
}

// Rows returns the number of rows covered by the range.
func (r Range) Rows() int { return r.EndRow - r.StartRow + 1 }

// Columns returns the number of columns covered by the range.
func (r Range) Columns() int { return r.EndColumn - r.StartColumn + 1 }

// Valid reports whether the range has positive coordinates and its start is
// not after its end.
func (r Range) Valid() bool {
	return r.StartRow >= 1 && r.StartColumn >= 1 &&
		r.StartRow <= r.EndRow && r.StartColumn <= r.EndColumn &&
		r.EndRow <= excelize.TotalRows && r.EndColumn <= excelize.MaxColumns
}

// Contains reports whether the cell at (row, col) lies inside the range.
func (r Range) Contains(row, col int) bool {
	return row >= r.StartRow && row <= r.EndRow && col >= r.StartColumn && col <= r.EndColumn
}

// Offset returns the range moved by the given number of rows and columns.
func (r Range) Offset(rows, cols int) Range {
	return Range{
		StartRow:    r.StartRow + rows,
		StartColumn: r.StartColumn + cols,
		EndRow:      r.EndRow + rows,
		EndColumn:   r.EndColumn + cols,
	}
}

// TopLeft returns the A1 name of the first cell of the range.
func (r Range) TopLeft() string {
	cell, _ := excelize.CoordinatesToCellName(r.StartColumn, r.StartRow)
	return cell
}

// BottomRight returns the A1 name of the last cell of the range.
func (r Range) BottomRight() string {
	cell, _ := excelize.CoordinatesToCellName(r.EndColumn, r.EndRow)
	return cell
}

// String renders the range in A1 notation, e.g. "A1:C3". A single cell
// range renders as one cell name.
func (r Range) String() string {
	if r.StartRow == r.EndRow && r.StartColumn == r.EndColumn {
		return r.TopLeft()
	}
	return r.TopLeft() + ":" + r.BottomRight()
}

// ParseRange parses a range address like "A1:Z1000", a single cell "B2",
// whole columns "A:C" or whole rows "3:5". Reversed corners are normalized.
func ParseRange(rangeAddr string) (Range, error) {
	startCell, endCell, found := strings.Cut(strings.ReplaceAll(strings.TrimSpace(rangeAddr), "$", ""), ":")
	if !found {
		endCell = startCell
	}
	if startCell == "" || endCell == "" {
		return Range{}, newInvalidRangeError(rangeAddr)
	}
	if found {
		if rng, ok := parseLineRange(startCell, endCell); ok {
			return rng, nil
		}
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(startCell)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %w", newInvalidRangeError(rangeAddr), err)
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(endCell)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %w", newInvalidRangeError(rangeAddr), err)
	}

	if startCol > endCol {
		startCol, endCol = endCol, startCol
	}
	if startRow > endRow {
		startRow, endRow = endRow, startRow
	}
	return Range{StartRow: startRow, StartColumn: startCol, EndRow: endRow, EndColumn: endCol}, nil
}

// parseLineRange handles whole-column and whole-row ranges.
func parseLineRange(start, end string) (Range, bool) {
	if startCol, err := excelize.ColumnNameToNumber(start); err == nil {
		endCol, err := excelize.ColumnNameToNumber(end)
		if err != nil {
			return Range{}, false
		}
		return Range{
			StartRow: 1, StartColumn: min(startCol, endCol),
			EndRow: excelize.TotalRows, EndColumn: max(startCol, endCol),
		}, true
	}
	startRow, err1 := strconv.Atoi(start)
	endRow, err2 := strconv.Atoi(end)
	if err1 != nil || err2 != nil || startRow < 1 || endRow < 1 ||
		startRow > excelize.TotalRows || endRow > excelize.TotalRows {
		return Range{}, false
	}
	return Range{
		StartRow: min(startRow, endRow), StartColumn: 1,
		EndRow: max(startRow, endRow), EndColumn: excelize.MaxColumns,
	}, true
}

// ParseRef splits a sheet qualified reference such as "Sheet1!A1:C3" or
// "'My Sheet'!B2" into the sheet name and range.
func ParseRef(ref string) (string, Range, error) {
	idx := strings.LastIndex(ref, "!")
	if idx <= 0 {
		return "", Range{}, newInvalidRangeError(ref)
	}
	sheet := ref[:idx]
	if len(sheet) >= 2 && sheet[0] == '\'' && sheet[len(sheet)-1] == '\'' {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}
	rng, err := ParseRange(ref[idx+1:])
	if err != nil {
		return "", Range{}, err
	}
	return sheet, rng, nil
}
