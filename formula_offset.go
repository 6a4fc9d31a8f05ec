// Copyright 2025 The sheetclip Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sheetclip

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/efp"
	"github.com/xuri/excelize/v2"
)

// refError is what a relative reference becomes when shifting pushes it off
// the worksheet.
const refError = "#REF!"

// OffsetFormula moves every relative cell reference in formula by rows and
// cols, the way pasting a copied formula does. Absolute parts ($A$1) stay put
// and references shifted off the worksheet become #REF!. Formulas with array
// constants or structured references are returned unchanged. The formula is
// given and returned without the leading "=".
func OffsetFormula(formula string, rows, cols int) string {
	if formula == "" || (rows == 0 && cols == 0) || strings.ContainsAny(formula, "{[") {
		return formula
	}
	ps := efp.ExcelParser()
	tokens := ps.Parse(formula)
	if len(tokens) == 0 {
		return formula
	}
	var sb strings.Builder
	for _, token := range tokens {
		switch token.TType {
		case efp.TokenTypeFunction:
			if token.TSubType == efp.TokenSubTypeStart {
				sb.WriteString(token.TValue + "(")
			} else {
				sb.WriteString(")")
			}
		case efp.TokenTypeSubexpression:
			if token.TSubType == efp.TokenSubTypeStart {
				sb.WriteString("(")
			} else {
				sb.WriteString(")")
			}
		case efp.TokenTypeOperand:
			switch token.TSubType {
			case efp.TokenSubTypeText:
				sb.WriteString(`"` + strings.ReplaceAll(token.TValue, `"`, `""`) + `"`)
			case efp.TokenSubTypeRange:
				sb.WriteString(offsetRef(token.TValue, rows, cols))
			default:
				sb.WriteString(token.TValue)
			}
		case efp.TokenTypeOperatorInfix:
			if token.TSubType == efp.TokenSubTypeIntersection {
				sb.WriteString(" ")
			} else {
				sb.WriteString(token.TValue)
			}
		default:
			sb.WriteString(token.TValue)
		}
	}
	return sb.String()
}

// offsetRef shifts a range operand such as "A1", "Sheet1!$A1:B$2", "C:D" or
// "3:3". Operands that are not cell references, e.g. defined names, are
// returned unchanged.
func offsetRef(ref string, rows, cols int) string {
	prefix, body := "", ref
	if idx := strings.LastIndex(ref, "!"); idx >= 0 {
		prefix, body = quoteSheetName(ref[:idx])+"!", ref[idx+1:]
	}
	parts := strings.Split(body, ":")
	if len(parts) == 1 && !strings.ContainsAny(body, "0123456789") {
		// A lone column name is a defined name, not a reference.
		return prefix + body
	}
	shifted := make([]string, len(parts))
	for i, part := range parts {
		s, ok, inBounds := offsetRefPart(part, rows, cols)
		if !ok {
			return prefix + body
		}
		if !inBounds {
			return prefix + refError
		}
		shifted[i] = s
	}
	return prefix + strings.Join(shifted, ":")
}

// offsetRefPart shifts one side of a reference. ok is false when part is not
// a cell, column or row reference.
func offsetRefPart(part string, rows, cols int) (shifted string, ok, inBounds bool) {
	i := 0
	colAbs := i < len(part) && part[i] == '$'
	if colAbs {
		i++
	}
	colStart := i
	for i < len(part) && isASCIILetter(part[i]) {
		i++
	}
	colName := part[colStart:i]
	rowAbs := i < len(part) && part[i] == '$'
	if rowAbs {
		i++
	}
	rowStart := i
	for i < len(part) && part[i] >= '0' && part[i] <= '9' {
		i++
	}
	rowText := part[rowStart:i]
	if i != len(part) || (colName == "" && rowText == "") {
		return "", false, false
	}
	if colName == "" {
		// "$3" is an absolute row, "$$3" is nothing.
		if colAbs && rowAbs {
			return "", false, false
		}
		rowAbs, colAbs = rowAbs || colAbs, false
	}

	var sb strings.Builder
	if colName != "" {
		if len(colName) > 3 {
			return "", false, false
		}
		col, err := excelize.ColumnNameToNumber(colName)
		if err != nil {
			return "", false, false
		}
		if !colAbs {
			col += cols
		}
		if col < 1 || col > excelize.MaxColumns {
			return "", true, false
		}
		name, _ := excelize.ColumnNumberToName(col)
		if colAbs {
			sb.WriteByte('$')
		}
		sb.WriteString(name)
	}
	if rowText != "" {
		row, err := strconv.Atoi(rowText)
		if err != nil || row < 1 {
			return "", false, false
		}
		if !rowAbs {
			row += rows
		}
		if row < 1 || row > excelize.TotalRows {
			return "", true, false
		}
		if rowAbs {
			sb.WriteByte('$')
		}
		sb.WriteString(strconv.Itoa(row))
	} else if rowAbs {
		return "", false, false
	}
	return sb.String(), true, true
}

// quoteSheetName puts back the quotes the tokenizer strips from sheet names
// such as 'My Sheet' or 'It''s'. Names that are already quoted, plain names
// and sheet spans like Sheet1:Sheet3 are returned as they are.
func quoteSheetName(name string) string {
	if name == "" || strings.HasPrefix(name, "'") {
		return name
	}
	plain := true
	for _, part := range strings.Split(name, ":") {
		plain = plain && isPlainSheetName(part)
	}
	if plain {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// isPlainSheetName reports whether a sheet name can appear in a formula
// without quotes.
func isPlainSheetName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case (unicode.IsDigit(r) || r == '.') && i > 0:
		default:
			return false
		}
	}
	// Names that read as a cell or column reference need quotes too.
	if _, _, err := excelize.CellNameToCoordinates(name); err == nil {
		return false
	}
	return !isColumnName(name)
}

func isColumnName(name string) bool {
	if len(name) > 3 {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isASCIILetter(name[i]) {
			return false
		}
	}
	col, err := excelize.ColumnNameToNumber(name)
	return err == nil && col <= excelize.MaxColumns
}

func isASCIILetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
