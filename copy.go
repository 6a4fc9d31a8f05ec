// Copyright 2025 The sheetclip Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sheetclip

import (
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Copy captures a range of a worksheet into the copy content cache and
// returns the clipboard payload for it. The snapshot holds raw and formatted
// values, formulas, styles and merged areas whose top-left cell lies inside
// the range. Whole-column and whole-row ranges are trimmed to the used area
// of the sheet.
//
// Example:
//
//	cb := sheetclip.NewClipboard()
//	wb := cb.Attach(f)
//	payload, err := cb.Copy(wb, "Sheet1", sheetclip.Range{
//	    StartRow: 1, StartColumn: 1, EndRow: 10, EndColumn: 3,
//	}, sheetclip.CopyTypeCopy)
//	if err != nil {
//	    return err
//	}
//	clipboard.WriteHTML(payload.HTML)
func (c *Clipboard) Copy(wb *Workbook, sheet string, rng Range, copyType CopyType) (*Payload, error) {
	if err := c.checkAttached(wb); err != nil {
		return nil, err
	}
	if !rng.Valid() {
		return nil, newInvalidRangeError(rng.String())
	}
	if idx, err := wb.File.GetSheetIndex(sheet); err != nil {
		return nil, err
	} else if idx == -1 {
		return nil, excelize.ErrSheetNotExist{SheetName: sheet}
	}
	rng = trimToUsedArea(wb.File, sheet, rng)

	matrix, err := c.snapshotRange(wb.File, sheet, rng)
	if err != nil {
		return nil, err
	}

	id := GenIDN(c.options.IDLength)
	c.cache.Set(id, &CopyContentCacheData{
		UnitID:    wb.UnitID,
		SubUnitID: sheet,
		Range:     rng,
		CopyType:  copyType,
		Matrix:    matrix,
	})

	markup, err := renderHTML(id, rng.Rows(), rng.Columns(), matrix)
	if err != nil {
		c.cache.Del(id)
		return nil, err
	}
	c.logger.Info("range copied",
		zap.String("id", id),
		zap.String("unit", wb.UnitID),
		zap.String("sheet", sheet),
		zap.Stringer("range", rng),
		zap.Stringer("type", copyType),
		zap.Int("cells", matrix.Len()))
	return &Payload{ID: id, HTML: markup, Text: renderText(rng.Rows(), rng.Columns(), matrix)}, nil
}

// trimToUsedArea cuts whole-column and whole-row ranges back to the last row
// and column holding a value or a merged area. Other ranges are returned as
// they are. The range always keeps at least its first cell.
func trimToUsedArea(f *excelize.File, sheet string, rng Range) Range {
	if rng.EndRow < excelize.TotalRows && rng.EndColumn < excelize.MaxColumns {
		return rng
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return rng
	}
	usedRows, usedCols := len(rows), 0
	for _, row := range rows {
		usedCols = max(usedCols, len(row))
	}
	if mergeCells, err := f.GetMergeCells(sheet); err == nil {
		for _, mc := range mergeCells {
			if area, err := ParseRange(mc.GetStartAxis() + ":" + mc.GetEndAxis()); err == nil {
				usedRows = max(usedRows, area.EndRow)
				usedCols = max(usedCols, area.EndColumn)
			}
		}
	}
	if rng.EndRow == excelize.TotalRows {
		rng.EndRow = max(rng.StartRow, usedRows)
	}
	if rng.EndColumn == excelize.MaxColumns {
		rng.EndColumn = max(rng.StartColumn, usedCols)
	}
	return rng
}

// snapshotRange reads every non-empty cell of rng. Cells hidden under a
// merged area are left out; the area's top-left cell carries the span.
func (c *Clipboard) snapshotRange(f *excelize.File, sheet string, rng Range) (*ObjectMatrix[CellDataWithSpanInfo], error) {
	mergeCells, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, err
	}
	spans := make(map[cellKey]cellKey)
	covered := make(map[cellKey]bool)
	for _, mc := range mergeCells {
		area, err := ParseRange(mc.GetStartAxis() + ":" + mc.GetEndAxis())
		if err != nil || !rng.Contains(area.StartRow, area.StartColumn) {
			continue
		}
		area.EndRow = min(area.EndRow, rng.EndRow)
		area.EndColumn = min(area.EndColumn, rng.EndColumn)
		origin := cellKey{area.StartRow - rng.StartRow, area.StartColumn - rng.StartColumn}
		spans[origin] = cellKey{area.Rows(), area.Columns()}
		for r := 0; r < area.Rows(); r++ {
			for cc := 0; cc < area.Columns(); cc++ {
				if r != 0 || cc != 0 {
					covered[cellKey{origin.row + r, origin.col + cc}] = true
				}
			}
		}
	}

	styles := make(map[int]*excelize.Style)
	matrix := NewObjectMatrix[CellDataWithSpanInfo]()
	for row := rng.StartRow; row <= rng.EndRow; row++ {
		for col := rng.StartColumn; col <= rng.EndColumn; col++ {
			key := cellKey{row - rng.StartRow, col - rng.StartColumn}
			if covered[key] {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col, row)
			data, err := c.readCell(f, sheet, cell, styles)
			if err != nil {
				return nil, err
			}
			if span, ok := spans[key]; ok {
				data.RowSpan, data.ColSpan = span.row, span.col
			}
			if data.Value == "" && data.Formula == "" && data.Style == nil && data.RowSpan == 0 {
				continue
			}
			matrix.SetValue(key.row, key.col, data)
		}
	}
	return matrix, nil
}

// readCell reads one cell. Styles are looked up once per style index.
func (c *Clipboard) readCell(f *excelize.File, sheet, cell string, styles map[int]*excelize.Style) (CellDataWithSpanInfo, error) {
	var data CellDataWithSpanInfo
	var err error
	if data.Value, err = f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true}); err != nil {
		return data, err
	}
	if data.Text, err = f.GetCellValue(sheet, cell); err != nil {
		return data, err
	}
	if data.Type, err = f.GetCellType(sheet, cell); err != nil {
		return data, err
	}
	if data.Formula, err = f.GetCellFormula(sheet, cell); err != nil {
		return data, err
	}
	if c.options.SkipStyles {
		return data, nil
	}
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return data, err
	}
	style, ok := styles[styleID]
	if !ok {
		if style, err = f.GetStyle(styleID); err != nil {
			return data, err
		}
		styles[styleID] = style
	}
	data.Style = style
	return data, nil
}
