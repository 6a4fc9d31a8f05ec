// Copyright 2025 The sheetclip Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sheetclip

import (
	"bytes"
	"fmt"
	"mime"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
)

// cellKey addresses a cell of a matrix by 0-based offsets.
type cellKey struct{ row, col int }

// Browser limits on table cell spans, and the largest table area a paste
// accepts from clipboard HTML.
const (
	maxRowSpan    = 65534
	maxColSpan    = 1000
	maxTableCells = 1 << 20
)

// spanArea is a merged block of a matrix: its top-left cell and size.
type spanArea struct{ row, col, rows, cols int }

func (a spanArea) contains(row, col int) bool {
	return row >= a.row && row < a.row+a.rows && col >= a.col && col < a.col+a.cols
}

// spanAreas lists merged blocks. Lookups are linear, which suits the handful
// of merges a clipboard table carries and keeps memory independent of the
// size of a span.
type spanAreas []spanArea

// occupied reports whether any block contains the cell.
func (s spanAreas) occupied(row, col int) bool {
	for _, a := range s {
		if a.contains(row, col) {
			return true
		}
	}
	return false
}

// hides reports whether the cell lies under a block without being its
// top-left cell.
func (s spanAreas) hides(row, col int) bool {
	for _, a := range s {
		if a.contains(row, col) && (row != a.row || col != a.col) {
			return true
		}
	}
	return false
}

// mergedAreas returns the merged blocks of a snapshot.
func mergedAreas(m *ObjectMatrix[CellDataWithSpanInfo]) spanAreas {
	var areas spanAreas
	m.ForEach(func(row, col int, cell CellDataWithSpanInfo) bool {
		if cell.RowSpan > 1 || cell.ColSpan > 1 {
			areas = append(areas, spanArea{row, col, max(cell.RowSpan, 1), max(cell.ColSpan, 1)})
		}
		return true
	})
	return areas
}

func newElement(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

// renderHTML renders a snapshot as a table carrying the copy id, the way it
// is put on the system clipboard.
func renderHTML(id string, rows, cols int, m *ObjectMatrix[CellDataWithSpanInfo]) (string, error) {
	table := newElement(atom.Table, html.Attribute{Key: CopyIDAttr, Val: id})
	tbody := newElement(atom.Tbody)
	table.AppendChild(tbody)
	merged := mergedAreas(m)
	for r := 0; r < rows; r++ {
		tr := newElement(atom.Tr)
		for c := 0; c < cols; c++ {
			if merged.hides(r, c) {
				continue
			}
			td := newElement(atom.Td)
			if cell, ok := m.GetValue(r, c); ok {
				if cell.RowSpan > 1 {
					td.Attr = append(td.Attr, html.Attribute{Key: "rowspan", Val: strconv.Itoa(cell.RowSpan)})
				}
				if cell.ColSpan > 1 {
					td.Attr = append(td.Attr, html.Attribute{Key: "colspan", Val: strconv.Itoa(cell.ColSpan)})
				}
				if css := styleCSS(cell.Style); css != "" {
					td.Attr = append(td.Attr, html.Attribute{Key: "style", Val: css})
				}
				for i, line := range strings.Split(cell.Text, "\n") {
					if i > 0 {
						td.AppendChild(newElement(atom.Br))
					}
					if line != "" {
						td.AppendChild(&html.Node{Type: html.TextNode, Data: line})
					}
				}
			}
			tr.AppendChild(td)
		}
		tbody.AppendChild(tr)
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, table); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// styleCSS maps the parts of a cell style that survive an HTML round trip to
// inline CSS.
func styleCSS(s *excelize.Style) string {
	if s == nil {
		return ""
	}
	var decls []string
	if font := s.Font; font != nil {
		if font.Bold {
			decls = append(decls, "font-weight:bold")
		}
		if font.Italic {
			decls = append(decls, "font-style:italic")
		}
		if font.Underline != "" && font.Underline != "none" {
			decls = append(decls, "text-decoration:underline")
		}
		if font.Family != "" {
			decls = append(decls, "font-family:"+font.Family)
		}
		if font.Size > 0 {
			decls = append(decls, fmt.Sprintf("font-size:%gpt", font.Size))
		}
		if color := cssColor(font.Color); color != "" {
			decls = append(decls, "color:"+color)
		}
	}
	if s.Fill.Type == "pattern" && s.Fill.Pattern == 1 && len(s.Fill.Color) > 0 {
		if color := cssColor(s.Fill.Color[0]); color != "" {
			decls = append(decls, "background-color:"+color)
		}
	}
	if s.Alignment != nil {
		switch s.Alignment.Horizontal {
		case "left", "center", "right", "justify":
			decls = append(decls, "text-align:"+s.Alignment.Horizontal)
		}
	}
	return strings.Join(decls, ";")
}

// cssColor converts an excelize RGB or ARGB color to #RRGGBB.
func cssColor(color string) string {
	color = strings.TrimPrefix(color, "#")
	if len(color) == 8 {
		color = color[2:]
	}
	if len(color) != 6 {
		return ""
	}
	return "#" + strings.ToUpper(color)
}

// renderText renders a snapshot as tab separated text. Values holding tabs,
// line breaks or quotes are quoted with doubled inner quotes.
func renderText(rows, cols int, m *ObjectMatrix[CellDataWithSpanInfo]) string {
	var sb strings.Builder
	for r := 0; r < rows; r++ {
		if r > 0 {
			sb.WriteString("\n")
		}
		for c := 0; c < cols; c++ {
			if c > 0 {
				sb.WriteString("\t")
			}
			cell, ok := m.GetValue(r, c)
			if !ok {
				continue
			}
			if strings.ContainsAny(cell.Text, "\t\n\r\"") {
				sb.WriteString(`"` + strings.ReplaceAll(cell.Text, `"`, `""`) + `"`)
				continue
			}
			sb.WriteString(cell.Text)
		}
	}
	return sb.String()
}

// parseHTMLTable reads the first table in markup into a matrix of values and
// spans. Spans are capped at the browser limits. It reports false when markup
// holds no table or the table is too large to paste.
func parseHTMLTable(markup string) (m *ObjectMatrix[CellDataWithSpanInfo], rows, cols int, ok bool) {
	if !strings.Contains(strings.ToLower(markup), "<table") {
		return nil, 0, 0, false
	}
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, 0, 0, false
	}
	table := findElement(doc, atom.Table)
	if table == nil {
		return nil, 0, 0, false
	}

	m = NewObjectMatrix[CellDataWithSpanInfo]()
	var spans spanAreas
	for _, tr := range tableRows(table) {
		c := 0
		for td := tr.FirstChild; td != nil; td = td.NextSibling {
			if td.Type != html.ElementNode || (td.DataAtom != atom.Td && td.DataAtom != atom.Th) {
				continue
			}
			for spans.occupied(rows, c) {
				c++
			}
			rowSpan := min(spanAttr(td, "rowspan"), maxRowSpan)
			colSpan := min(spanAttr(td, "colspan"), maxColSpan)
			if rows+rowSpan > excelize.TotalRows || c+colSpan > excelize.MaxColumns {
				return nil, 0, 0, false
			}
			cell := CellDataWithSpanInfo{}
			if text := nodeText(td); text != "" {
				cell.Value, cell.Text = text, text
			}
			if rowSpan > 1 || colSpan > 1 {
				cell.RowSpan, cell.ColSpan = rowSpan, colSpan
				spans = append(spans, spanArea{rows, c, rowSpan, colSpan})
			}
			if cell.Text != "" || cell.RowSpan > 0 {
				m.SetValue(rows, c, cell)
			}
			c += colSpan
			cols = max(cols, c)
		}
		rows++
		if rows > excelize.TotalRows {
			return nil, 0, 0, false
		}
	}
	for _, a := range spans {
		rows = max(rows, a.row+a.rows)
	}
	if rows == 0 || cols == 0 || rows*cols > maxTableCells {
		return nil, 0, 0, false
	}
	return m, rows, cols, true
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, a); found != nil {
			return found
		}
	}
	return nil
}

// tableRows returns the rows of a table in document order, looking through
// thead, tbody and tfoot but not into nested tables.
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	for child := table.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}
		switch child.DataAtom {
		case atom.Tr:
			rows = append(rows, child)
		case atom.Thead, atom.Tbody, atom.Tfoot:
			for tr := child.FirstChild; tr != nil; tr = tr.NextSibling {
				if tr.Type == html.ElementNode && tr.DataAtom == atom.Tr {
					rows = append(rows, tr)
				}
			}
		}
	}
	return rows
}

func spanAttr(n *html.Node, key string) int {
	for _, attr := range n.Attr {
		if attr.Key == key {
			if v, err := strconv.Atoi(strings.TrimSpace(attr.Val)); err == nil && v > 1 {
				return v
			}
		}
	}
	return 1
}

// nodeText collects the text of a cell. Runs of whitespace collapse to one
// space and <br> becomes a line break.
func nodeText(n *html.Node) string {
	var lines []string
	var current []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			current = append(current, strings.Fields(n.Data)...)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			lines = append(lines, strings.Join(current, " "))
			current = nil
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	lines = append(lines, strings.Join(current, " "))
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// parseTSV reads tab separated clipboard text. Quoted fields may hold tabs,
// line breaks and doubled quotes. A single trailing line break is ignored.
func parseTSV(text string) [][]string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	var (
		records [][]string
		record  []string
		field   strings.Builder
		quoted  bool
	)
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case quoted && ch == '"':
			if i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				quoted = false
			}
		case quoted:
			field.WriteByte(ch)
		case ch == '"' && field.Len() == 0:
			quoted = true
		case ch == '\t':
			record = append(record, field.String())
			field.Reset()
		case ch == '\n':
			records = append(records, append(record, field.String()))
			record = nil
			field.Reset()
		default:
			field.WriteByte(ch)
		}
	}
	return append(records, append(record, field.String()))
}

// tsvMatrix converts parsed text records to a value matrix.
func tsvMatrix(records [][]string) (m *ObjectMatrix[CellDataWithSpanInfo], rows, cols int) {
	m = NewObjectMatrix[CellDataWithSpanInfo]()
	for r, record := range records {
		for c, value := range record {
			if value != "" {
				m.SetValue(r, c, CellDataWithSpanInfo{CellData: CellData{Value: value, Text: value}})
			}
		}
		cols = max(cols, len(record))
	}
	return m, len(records), cols
}

// DecodePayload converts raw clipboard HTML to a string. The charset comes
// from contentType when it names one, otherwise from a <meta> declaration or
// content sniffing; UTF-8 is assumed when nothing else applies.
func DecodePayload(raw []byte, contentType string) (string, error) {
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			if label := params["charset"]; label != "" {
				if _, err := htmlindex.Get(label); err != nil {
					return "", newUnsupportedCharsetError(label, err)
				}
			}
		}
	}
	enc, _, _ := charset.DetermineEncoding(raw, contentType)
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimPrefix(decoded, []byte("\xef\xbb\xbf"))), nil
}
