package sheetclip

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// newTestWorkbook builds Sheet1 as:
//
//	A1: 1      B1: "text" (bold)  C1:D2 merged "merged"
//	A2: =A1*2  B2: TRUE
func newTestWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	require.NoError(t, f.SetCellValue("Sheet1", "A1", 1))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "text"))
	require.NoError(t, f.SetCellFormula("Sheet1", "A2", "A1*2"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", true))
	require.NoError(t, f.SetCellValue("Sheet1", "C1", "merged"))
	require.NoError(t, f.MergeCell("Sheet1", "C1", "D2"))
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "B1", "B1", style))
	return f
}

func mustRange(t *testing.T, ref string) Range {
	t.Helper()
	rng, err := ParseRange(ref)
	require.NoError(t, err)
	return rng
}

func cellValue(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()
	value, err := f.GetCellValue("Sheet1", cell)
	require.NoError(t, err)
	return value
}

func cellFormula(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()
	formula, err := f.GetCellFormula("Sheet1", cell)
	require.NoError(t, err)
	return formula
}

func isBold(t *testing.T, f *excelize.File, cell string) bool {
	t.Helper()
	styleID, err := f.GetCellStyle("Sheet1", cell)
	require.NoError(t, err)
	if styleID == 0 {
		return false
	}
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	return style.Font != nil && style.Font.Bold
}

func hasMerge(t *testing.T, f *excelize.File, start, end string) bool {
	t.Helper()
	mergeCells, err := f.GetMergeCells("Sheet1")
	require.NoError(t, err)
	for _, mc := range mergeCells {
		if mc.GetStartAxis() == start && mc.GetEndAxis() == end {
			return true
		}
	}
	return false
}

func TestClipboardAttach(t *testing.T) {
	cb := NewClipboard()
	wb1 := cb.Attach(excelize.NewFile())
	wb2 := cb.Attach(excelize.NewFile())
	assert.NotEqual(t, wb1.UnitID, wb2.UnitID)
	_, err := uuid.Parse(wb1.UnitID)
	assert.NoError(t, err)
	assert.NotNil(t, cb.Cache())
}

func TestClipboardCopy(t *testing.T) {
	cb := NewClipboard()
	wb := cb.Attach(newTestWorkbook(t))

	payload, err := cb.Copy(wb, "Sheet1", mustRange(t, "A1:D2"), CopyTypeCopy)
	require.NoError(t, err)
	assert.Len(t, payload.ID, DefaultIDLength)

	id, ok := ExtractID(payload.HTML)
	require.True(t, ok)
	assert.Equal(t, payload.ID, id)
	assert.Equal(t, "1\ttext\tmerged\t", strings.Split(payload.Text, "\n")[0])

	data, ok := cb.Cache().Get(payload.ID)
	require.True(t, ok)
	assert.Equal(t, wb.UnitID, data.UnitID)
	assert.Equal(t, "Sheet1", data.SubUnitID)
	assert.Equal(t, "A1:D2", data.Range.String())
	assert.Equal(t, CopyTypeCopy, data.CopyType)

	formula, ok := data.Matrix.GetValue(1, 0)
	require.True(t, ok)
	assert.Equal(t, "A1*2", formula.Formula)

	bold, ok := data.Matrix.GetValue(0, 1)
	require.True(t, ok)
	require.NotNil(t, bold.Style)
	assert.True(t, bold.Style.Font.Bold)

	merged, ok := data.Matrix.GetValue(0, 2)
	require.True(t, ok)
	assert.Equal(t, "merged", merged.Value)
	assert.Equal(t, 2, merged.RowSpan)
	assert.Equal(t, 2, merged.ColSpan)
	_, ok = data.Matrix.GetValue(1, 3)
	assert.False(t, ok, "cells covered by a merge are not captured")

	assert.Contains(t, payload.HTML, `rowspan="2"`)
	assert.Contains(t, payload.HTML, `font-weight:bold`)
}

func TestClipboardCopySkipStyles(t *testing.T) {
	cb := NewClipboard(Options{SkipStyles: true})
	wb := cb.Attach(newTestWorkbook(t))

	payload, err := cb.Copy(wb, "Sheet1", mustRange(t, "B1"), CopyTypeCopy)
	require.NoError(t, err)
	data, ok := cb.Cache().Get(payload.ID)
	require.True(t, ok)
	cell, ok := data.Matrix.GetValue(0, 0)
	require.True(t, ok)
	assert.Nil(t, cell.Style)
}

func TestClipboardCopyWholeColumns(t *testing.T) {
	cb := NewClipboard()
	wb := cb.Attach(newTestWorkbook(t))

	payload, err := cb.Copy(wb, "Sheet1", mustRange(t, "A:B"), CopyTypeCopy)
	require.NoError(t, err)
	data, ok := cb.Cache().Get(payload.ID)
	require.True(t, ok)
	assert.Equal(t, "A1:B2", data.Range.String())
}

func TestClipboardCopyErrors(t *testing.T) {
	cb := NewClipboard()
	wb := cb.Attach(newTestWorkbook(t))

	_, err := cb.Copy(wb, "Missing", mustRange(t, "A1"), CopyTypeCopy)
	assert.IsType(t, excelize.ErrSheetNotExist{}, err)

	_, err = cb.Copy(wb, "Sheet1", Range{}, CopyTypeCopy)
	assert.Error(t, err)

	_, err = cb.Copy(nil, "Sheet1", mustRange(t, "A1"), CopyTypeCopy)
	assert.ErrorIs(t, err, ErrWorkbookNil)

	_, err = cb.Copy(&Workbook{UnitID: "stranger", File: wb.File}, "Sheet1", mustRange(t, "A1"), CopyTypeCopy)
	assert.ErrorIs(t, err, ErrWorkbookNotAttached)
	assert.Equal(t, 0, cb.Cache().Len())
}

func TestClipboardPasteAll(t *testing.T) {
	cb := NewClipboard()
	f := newTestWorkbook(t)
	wb := cb.Attach(f)

	payload, err := cb.Copy(wb, "Sheet1", mustRange(t, "A1:D2"), CopyTypeCopy)
	require.NoError(t, err)
	result, err := cb.Paste(wb, "Sheet1", "F5", *payload, PasteAll)
	require.NoError(t, err)

	assert.Equal(t, PasteSourceCache, result.Source)
	assert.Equal(t, payload.ID, result.ID)
	assert.Equal(t, "F5:I6", result.Range.String())
	assert.Equal(t, CopyTypeCopy, result.CopyType)

	assert.Equal(t, "1", cellValue(t, f, "F5"))
	assert.Equal(t, "text", cellValue(t, f, "G5"))
	assert.Equal(t, "merged", cellValue(t, f, "H5"))
	assert.Equal(t, "TRUE", cellValue(t, f, "G6"))
	assert.Equal(t, "F5*2", cellFormula(t, f, "F6"))
	assert.True(t, isBold(t, f, "G5"))
	assert.False(t, isBold(t, f, "F5"))
	assert.True(t, hasMerge(t, f, "H5", "I6"))

	// A copy stays cached and can be pasted again.
	assert.Equal(t, 1, cb.Cache().Len())
	result, err = cb.Paste(wb, "Sheet1", "A10", *payload, PasteAll)
	require.NoError(t, err)
	assert.Equal(t, PasteSourceCache, result.Source)
	assert.Equal(t, "A10*2", cellFormula(t, f, "A11"))
}

func TestClipboardPasteValues(t *testing.T) {
	cb := NewClipboard()
	f := newTestWorkbook(t)
	wb := cb.Attach(f)

	payload, err := cb.Copy(wb, "Sheet1", mustRange(t, "A1:D2"), CopyTypeCopy)
	require.NoError(t, err)
	_, err = cb.Paste(wb, "Sheet1", "A10", *payload, PasteValues)
	require.NoError(t, err)

	assert.Equal(t, "1", cellValue(t, f, "A10"))
	assert.Equal(t, "text", cellValue(t, f, "B10"))
	assert.Empty(t, cellFormula(t, f, "A11"))
	assert.False(t, isBold(t, f, "B10"))
	assert.False(t, hasMerge(t, f, "C10", "D11"))
}

func TestClipboardPasteFormats(t *testing.T) {
	cb := NewClipboard()
	f := newTestWorkbook(t)
	wb := cb.Attach(f)

	payload, err := cb.Copy(wb, "Sheet1", mustRange(t, "A1:D2"), CopyTypeCopy)
	require.NoError(t, err)
	_, err = cb.Paste(wb, "Sheet1", "A20", *payload, PasteFormats)
	require.NoError(t, err)

	assert.Empty(t, cellValue(t, f, "A20"))
	assert.Empty(t, cellValue(t, f, "B20"))
	assert.True(t, isBold(t, f, "B20"))
	assert.True(t, hasMerge(t, f, "C20", "D21"))
}

func TestClipboardPasteReplacesTargetMerges(t *testing.T) {
	cb := NewClipboard()
	f := newTestWorkbook(t)
	wb := cb.Attach(f)
	require.NoError(t, f.MergeCell("Sheet1", "A10", "B11"))

	payload, err := cb.Copy(wb, "Sheet1", mustRange(t, "A1:B1"), CopyTypeCopy)
	require.NoError(t, err)
	_, err = cb.Paste(wb, "Sheet1", "A10", *payload, PasteAll)
	require.NoError(t, err)

	assert.False(t, hasMerge(t, f, "A10", "B11"))
	assert.Equal(t, "text", cellValue(t, f, "B10"))
}

func TestClipboardCut(t *testing.T) {
	cb := NewClipboard()
	f := newTestWorkbook(t)
	wb := cb.Attach(f)

	payload, err := cb.Copy(wb, "Sheet1", mustRange(t, "A1:B2"), CopyTypeCut)
	require.NoError(t, err)
	result, err := cb.Paste(wb, "Sheet1", "C10", *payload, PasteAll)
	require.NoError(t, err)
	assert.Equal(t, PasteSourceCache, result.Source)
	assert.Equal(t, CopyTypeCut, result.CopyType)

	assert.Empty(t, cellValue(t, f, "A1"))
	assert.Empty(t, cellValue(t, f, "B1"))
	assert.Empty(t, cellFormula(t, f, "A2"))
	assert.False(t, isBold(t, f, "B1"))

	assert.Equal(t, "1", cellValue(t, f, "C10"))
	assert.Equal(t, "text", cellValue(t, f, "D10"))
	assert.True(t, isBold(t, f, "D10"))
	assert.Equal(t, "A1*2", cellFormula(t, f, "C11"), "cut formulas keep their references")

	// The snapshot is gone; pasting the same payload again reads the HTML.
	assert.Equal(t, 0, cb.Cache().Len())
	result, err = cb.Paste(wb, "Sheet1", "A20", *payload, PasteAll)
	require.NoError(t, err)
	assert.Equal(t, PasteSourceHTML, result.Source)
	assert.Equal(t, payload.ID, result.ID)
	assert.Equal(t, "1", cellValue(t, f, "A20"))
	assert.Equal(t, "text", cellValue(t, f, "B20"))
}

func TestClipboardCutBetweenWorkbooks(t *testing.T) {
	cb := NewClipboard()
	src := newTestWorkbook(t)
	dst := excelize.NewFile()
	defer dst.Close()
	srcWb, dstWb := cb.Attach(src), cb.Attach(dst)

	payload, err := cb.Copy(srcWb, "Sheet1", mustRange(t, "A1:B1"), CopyTypeCut)
	require.NoError(t, err)
	_, err = cb.Paste(dstWb, "Sheet1", "A1", *payload, PasteAll)
	require.NoError(t, err)

	assert.Empty(t, cellValue(t, src, "A1"))
	assert.Equal(t, "1", cellValue(t, dst, "A1"))
	assert.Equal(t, "text", cellValue(t, dst, "B1"))
}

func TestClipboardPasteFallbacks(t *testing.T) {
	cb := NewClipboard()
	f := excelize.NewFile()
	defer f.Close()
	wb := cb.Attach(f)

	result, err := cb.Paste(wb, "Sheet1", "A1", Payload{
		HTML: `<table data-copy-id="zzzzzz"><tr><td>x</td><td>2</td></tr></table>`,
	}, PasteAll)
	require.NoError(t, err)
	assert.Equal(t, PasteSourceHTML, result.Source)
	assert.Equal(t, "zzzzzz", result.ID)
	assert.Equal(t, "A1:B1", result.Range.String())
	assert.Equal(t, "x", cellValue(t, f, "A1"))
	assert.Equal(t, "2", cellValue(t, f, "B1"))

	result, err = cb.Paste(wb, "Sheet1", "C3", Payload{
		HTML: "<p>not a table</p>",
		Text: "a\tb\n1\tTRUE\n",
	}, PasteAll)
	require.NoError(t, err)
	assert.Equal(t, PasteSourceText, result.Source)
	assert.Empty(t, result.ID)
	assert.Equal(t, "C3:D4", result.Range.String())
	assert.Equal(t, "a", cellValue(t, f, "C3"))
	assert.Equal(t, "1", cellValue(t, f, "C4"))
	assert.Equal(t, "TRUE", cellValue(t, f, "D4"))

	result, err = cb.Paste(wb, "Sheet1", "A1", Payload{
		HTML: `<table><tr><td rowspan="2" colspan="2">big</td></tr></table>`,
	}, PasteAll)
	require.NoError(t, err)
	assert.Equal(t, "A1:B2", result.Range.String())
	assert.True(t, hasMerge(t, f, "A1", "B2"))

	_, err = cb.Paste(wb, "Sheet1", "A1", Payload{}, PasteAll)
	assert.ErrorIs(t, err, ErrEmptyClipboard)
	_, err = cb.Paste(wb, "Sheet1", "A1", Payload{HTML: "<p>hello</p>"}, PasteAll)
	assert.ErrorIs(t, err, ErrEmptyClipboard)
}

func TestClipboardPasteErrors(t *testing.T) {
	cb := NewClipboard()
	wb := cb.Attach(newTestWorkbook(t))
	payload, err := cb.Copy(wb, "Sheet1", mustRange(t, "A1:B2"), CopyTypeCut)
	require.NoError(t, err)

	_, err = cb.Paste(wb, "Missing", "A1", *payload, PasteAll)
	assert.IsType(t, excelize.ErrSheetNotExist{}, err)
	_, err = cb.Paste(wb, "Sheet1", "1A", *payload, PasteAll)
	assert.Error(t, err)

	_, err = cb.Paste(wb, "Sheet1", "XFD1048576", *payload, PasteAll)
	assert.ErrorIs(t, err, ErrRangeOutOfBounds)
	// A cut that cannot be pasted leaves the source alone.
	assert.Equal(t, "1", cellValue(t, wb.File, "A1"))
	assert.Equal(t, 1, cb.Cache().Len())
}

func TestClipboardDetachAndClose(t *testing.T) {
	cb := NewClipboard()
	f := newTestWorkbook(t)
	wb := cb.Attach(f)
	other := cb.Attach(excelize.NewFile())

	payload, err := cb.Copy(wb, "Sheet1", mustRange(t, "A1:B1"), CopyTypeCopy)
	require.NoError(t, err)
	_, err = cb.Copy(other, "Sheet1", mustRange(t, "A1"), CopyTypeCopy)
	require.NoError(t, err)
	require.Equal(t, 2, cb.Cache().Len())

	cb.Detach(wb)
	cb.Detach(nil)
	assert.Equal(t, 1, cb.Cache().Len())
	_, ok := cb.Cache().Get(payload.ID)
	assert.False(t, ok)

	_, err = cb.Paste(wb, "Sheet1", "A1", *payload, PasteAll)
	assert.ErrorIs(t, err, ErrWorkbookNotAttached)

	// Pasting a detached workbook's copy elsewhere falls back to the HTML.
	result, err := cb.Paste(other, "Sheet1", "A5", *payload, PasteAll)
	require.NoError(t, err)
	assert.Equal(t, PasteSourceHTML, result.Source)

	cb.Close()
	assert.Equal(t, 0, cb.Cache().Len())
	_, err = cb.Copy(other, "Sheet1", mustRange(t, "A1"), CopyTypeCopy)
	assert.ErrorIs(t, err, ErrWorkbookNotAttached)
}

func TestClipboardPasteQuotedSheetReference(t *testing.T) {
	cb := NewClipboard()
	f := excelize.NewFile()
	defer f.Close()
	for _, name := range []string{"My Sheet", "It's"} {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}
	require.NoError(t, f.SetCellValue("My Sheet", "B3", 21))
	require.NoError(t, f.SetCellValue("It's", "A2", 5))
	require.NoError(t, f.SetCellFormula("Sheet1", "A1", "'My Sheet'!B2*2"))
	require.NoError(t, f.SetCellFormula("Sheet1", "B1", "'It''s'!A1+1"))
	wb := cb.Attach(f)

	payload, err := cb.Copy(wb, "Sheet1", mustRange(t, "A1:B1"), CopyTypeCopy)
	require.NoError(t, err)
	_, err = cb.Paste(wb, "Sheet1", "A2", *payload, PasteAll)
	require.NoError(t, err)

	assert.Equal(t, "'My Sheet'!B3*2", cellFormula(t, f, "A2"))
	assert.Equal(t, "'It''s'!A2+1", cellFormula(t, f, "B2"))
	value, err := f.CalcCellValue("Sheet1", "A2")
	require.NoError(t, err)
	assert.Equal(t, "42", value)
}

func TestClipboardPartialPasteOfCut(t *testing.T) {
	for _, mode := range []PasteMode{PasteFormats, PasteValues} {
		t.Run(mode.String(), func(t *testing.T) {
			cb := NewClipboard()
			f := newTestWorkbook(t)
			wb := cb.Attach(f)

			payload, err := cb.Copy(wb, "Sheet1", mustRange(t, "A1:D2"), CopyTypeCut)
			require.NoError(t, err)
			result, err := cb.Paste(wb, "Sheet1", "A10", *payload, mode)
			require.NoError(t, err)
			assert.Equal(t, PasteSourceCache, result.Source)

			// The source keeps everything and the cut can still be pasted.
			assert.Equal(t, "1", cellValue(t, f, "A1"))
			assert.Equal(t, "text", cellValue(t, f, "B1"))
			assert.Equal(t, "A1*2", cellFormula(t, f, "A2"))
			assert.True(t, isBold(t, f, "B1"))
			assert.True(t, hasMerge(t, f, "C1", "D2"))
			assert.Equal(t, 1, cb.Cache().Len())

			result, err = cb.Paste(wb, "Sheet1", "A20", *payload, PasteAll)
			require.NoError(t, err)
			assert.Equal(t, PasteSourceCache, result.Source)
			assert.Empty(t, cellValue(t, f, "A1"))
			assert.Equal(t, "1", cellValue(t, f, "A20"))
			assert.True(t, isBold(t, f, "B20"))
			assert.Equal(t, 0, cb.Cache().Len())
		})
	}
}
