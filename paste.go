// Copyright 2025 The sheetclip Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sheetclip

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// PasteMode selects which parts of the copied cells a paste writes.
type PasteMode int

const (
	// PasteAll writes values, formulas, styles and merged areas.
	PasteAll PasteMode = iota
	// PasteValues writes values only; formulas are replaced by their
	// results.
	PasteValues
	// PasteFormats writes styles and merged areas only.
	PasteFormats
)

var pasteModeNames = map[PasteMode]string{
	PasteAll:     "all",
	PasteValues:  "values",
	PasteFormats: "formats",
}

func (m PasteMode) String() string {
	if name, ok := pasteModeNames[m]; ok {
		return name
	}
	return "PasteMode(" + strconv.Itoa(int(m)) + ")"
}

// ParsePasteMode returns the paste mode with the given name.
func ParsePasteMode(name string) (PasteMode, error) {
	for mode, modeName := range pasteModeNames {
		if strings.EqualFold(name, modeName) {
			return mode, nil
		}
	}
	return PasteAll, newUnknownPasteModeError(name)
}

func (m PasteMode) writesValues() bool  { return m != PasteFormats }
func (m PasteMode) writesFormats() bool { return m != PasteValues }

// PasteSource tells which part of a clipboard payload a paste used.
type PasteSource int

const (
	// PasteSourceCache is a paste resolved through the copy content cache.
	PasteSourceCache PasteSource = iota
	// PasteSourceHTML is a paste read from the payload's HTML table.
	PasteSourceHTML
	// PasteSourceText is a paste read from the payload's plain text.
	PasteSourceText
)

func (s PasteSource) String() string {
	switch s {
	case PasteSourceCache:
		return "cache"
	case PasteSourceHTML:
		return "html"
	default:
		return "text"
	}
}

// PasteResult describes a completed paste.
type PasteResult struct {
	Source PasteSource
	// ID is the copy id found in the payload, empty when there was none.
	ID string
	// Range is the area written on the target sheet.
	Range Range
	// CopyType is the copy type of the cached snapshot; fallbacks are
	// always copies.
	CopyType CopyType
}

// Paste writes a clipboard payload to sheet with its top-left cell at cell.
// A payload whose copy id is still cached is pasted from the snapshot, which
// keeps formulas, styles and merged areas. Otherwise the HTML table in the
// payload is used, then its plain text. A cache miss is not an error.
//
// Formulas pasted from a copy have their relative references moved with the
// paste. A cut pasted with PasteAll is pasted once: the source cells are
// cleared and the snapshot is dropped from the cache. PasteValues and
// PasteFormats leave a cut's source and snapshot untouched.
func (c *Clipboard) Paste(wb *Workbook, sheet, cell string, payload Payload, mode PasteMode) (*PasteResult, error) {
	if err := c.checkAttached(wb); err != nil {
		return nil, err
	}
	if idx, err := wb.File.GetSheetIndex(sheet); err != nil {
		return nil, err
	} else if idx == -1 {
		return nil, excelize.ErrSheetNotExist{SheetName: sheet}
	}
	col, row, err := excelize.CellNameToCoordinates(cell)
	if err != nil {
		return nil, err
	}

	id, hasID := ExtractID(payload.HTML)
	if hasID {
		if data, ok := c.cache.Get(id); ok {
			return c.pasteSnapshot(wb, sheet, row, col, id, data, mode)
		}
		c.logger.Debug("copy snapshot not cached", zap.String("id", id))
	}

	result := &PasteResult{ID: id, CopyType: CopyTypeCopy}
	matrix, rows, cols, ok := parseHTMLTable(payload.HTML)
	if ok {
		result.Source = PasteSourceHTML
	} else if records := parseTSV(payload.Text); len(records) > 0 {
		matrix, rows, cols = tsvMatrix(records)
		result.Source = PasteSourceText
	} else {
		return nil, ErrEmptyClipboard
	}
	result.Range = Range{StartRow: row, StartColumn: col, EndRow: row + rows - 1, EndColumn: col + cols - 1}
	if err := writeMatrix(wb.File, sheet, result.Range, matrix, mode, nil); err != nil {
		return nil, err
	}
	c.logger.Info("clipboard pasted",
		zap.Stringer("source", result.Source),
		zap.String("unit", wb.UnitID),
		zap.String("sheet", sheet),
		zap.Stringer("range", result.Range))
	return result, nil
}

func (c *Clipboard) pasteSnapshot(wb *Workbook, sheet string, row, col int, id string, data *CopyContentCacheData, mode PasteMode) (*PasteResult, error) {
	rows, cols := row-data.Range.StartRow, col-data.Range.StartColumn
	target := data.Range.Offset(rows, cols)

	// Only a full paste moves a cut. A partial paste leaves the source and
	// the snapshot in place so nothing it does not write is lost.
	move := data.CopyType == CopyTypeCut && mode == PasteAll
	var shift func(string) string
	if data.CopyType == CopyTypeCopy {
		shift = func(formula string) string { return OffsetFormula(formula, rows, cols) }
	}
	if move {
		// Validate before clearing the source so a failing paste loses nothing.
		if !target.Valid() {
			return nil, ErrRangeOutOfBounds
		}
		if src, ok := c.workbook(data.UnitID); ok {
			if err := clearRange(src.File, data.SubUnitID, data.Range, !c.options.SkipStyles); err != nil {
				return nil, err
			}
		} else {
			c.logger.Warn("cut source workbook detached, pasting without clearing",
				zap.String("id", id), zap.String("unit", data.UnitID))
		}
	}
	if err := writeMatrix(wb.File, sheet, target, data.Matrix, mode, shift); err != nil {
		return nil, err
	}
	if move {
		c.cache.Del(id)
	}
	c.logger.Info("clipboard pasted",
		zap.Stringer("source", PasteSourceCache),
		zap.String("id", id),
		zap.Stringer("type", data.CopyType),
		zap.Stringer("mode", mode),
		zap.String("unit", wb.UnitID),
		zap.String("sheet", sheet),
		zap.Stringer("range", target))
	return &PasteResult{Source: PasteSourceCache, ID: id, Range: target, CopyType: data.CopyType}, nil
}

// writeMatrix writes the cells of m to target. Every cell of target is
// written, so empty source cells clear what was there. shift rewrites
// formulas; nil keeps them as they are.
func writeMatrix(f *excelize.File, sheet string, target Range, m *ObjectMatrix[CellDataWithSpanInfo], mode PasteMode, shift func(string) string) error {
	if !target.Valid() {
		return ErrRangeOutOfBounds
	}
	if mode.writesFormats() {
		if err := unmergeArea(f, sheet, target); err != nil {
			return err
		}
	}
	styleIDs := make(map[*excelize.Style]int)
	merged := mergedAreas(m)
	for r := 0; r < target.Rows(); r++ {
		for c := 0; c < target.Columns(); c++ {
			cell, _ := excelize.CoordinatesToCellName(target.StartColumn+c, target.StartRow+r)
			data, ok := m.GetValue(r, c)
			if !ok || merged.hides(r, c) {
				data = CellDataWithSpanInfo{}
			}
			if mode.writesValues() {
				if err := writeCellValue(f, sheet, cell, data.CellData, mode, shift); err != nil {
					return err
				}
			}
			if !mode.writesFormats() {
				continue
			}
			styleID := 0
			if data.Style != nil {
				id, ok := styleIDs[data.Style]
				if !ok {
					var err error
					if id, err = f.NewStyle(data.Style); err != nil {
						return err
					}
					styleIDs[data.Style] = id
				}
				styleID = id
			}
			if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
				return err
			}
			if data.RowSpan > 1 || data.ColSpan > 1 {
				end, _ := excelize.CoordinatesToCellName(
					target.StartColumn+c+max(data.ColSpan, 1)-1,
					target.StartRow+r+max(data.RowSpan, 1)-1)
				if err := f.MergeCell(sheet, cell, end); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// writeCellValue writes the value or formula of one cell, clearing whatever
// it held before.
func writeCellValue(f *excelize.File, sheet, cell string, data CellData, mode PasteMode, shift func(string) string) error {
	if err := f.SetCellFormula(sheet, cell, ""); err != nil {
		return err
	}
	if mode == PasteAll && data.Formula != "" {
		formula := data.Formula
		if shift != nil {
			formula = shift(formula)
		}
		if err := f.SetCellDefault(sheet, cell, ""); err != nil {
			return err
		}
		return f.SetCellFormula(sheet, cell, formula)
	}
	value := data.Value
	switch data.Type {
	case excelize.CellTypeBool:
		return f.SetCellBool(sheet, cell, value == "1" || strings.EqualFold(value, "TRUE"))
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return f.SetCellStr(sheet, cell, value)
	}
	if value == "" {
		return f.SetCellDefault(sheet, cell, "")
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return f.SetCellDefault(sheet, cell, value)
	}
	if strings.EqualFold(value, "TRUE") || strings.EqualFold(value, "FALSE") {
		return f.SetCellBool(sheet, cell, strings.EqualFold(value, "TRUE"))
	}
	return f.SetCellStr(sheet, cell, value)
}

// unmergeArea removes every merged area overlapping rng.
func unmergeArea(f *excelize.File, sheet string, rng Range) error {
	mergeCells, err := f.GetMergeCells(sheet)
	if err != nil {
		return err
	}
	for _, mc := range mergeCells {
		area, err := ParseRange(mc.GetStartAxis() + ":" + mc.GetEndAxis())
		if err != nil || !overlaps(area, rng) {
			continue
		}
		if err := f.UnmergeCell(sheet, mc.GetStartAxis(), mc.GetEndAxis()); err != nil {
			return err
		}
	}
	return nil
}

func overlaps(a, b Range) bool {
	return a.StartRow <= b.EndRow && b.StartRow <= a.EndRow &&
		a.StartColumn <= b.EndColumn && b.StartColumn <= a.EndColumn
}

// clearRange empties the cells of rng for a cut: values, formulas, merged
// areas and, when withStyles is set, styles.
func clearRange(f *excelize.File, sheet string, rng Range, withStyles bool) error {
	if err := unmergeArea(f, sheet, rng); err != nil {
		return err
	}
	for row := rng.StartRow; row <= rng.EndRow; row++ {
		for col := rng.StartColumn; col <= rng.EndColumn; col++ {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			if err := writeCellValue(f, sheet, cell, CellData{}, PasteValues, nil); err != nil {
				return err
			}
		}
	}
	if withStyles {
		return f.SetCellStyle(sheet, rng.TopLeft(), rng.BottomRight(), 0)
	}
	return nil
}
