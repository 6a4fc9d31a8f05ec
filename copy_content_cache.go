// Copyright 2025 The sheetclip Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sheetclip

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/tiendc/go-deepcopy"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// CopyIDAttr is the HTML attribute that carries the copy id in clipboard
// markup.
const CopyIDAttr = "data-copy-id"

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// CopyType records whether a snapshot came from a copy or a cut. What a cut
// means at paste time is decided by the consumer.
type CopyType int

const (
	CopyTypeCopy CopyType = iota
	CopyTypeCut
)

func (t CopyType) String() string {
	if t == CopyTypeCut {
		return "CUT"
	}
	return "COPY"
}

// CellData contains value, style and formula for a cell.
type CellData struct {
	// Value is the raw cell value as stored in the workbook.
	Value string
	// Text is the formatted value shown to the user.
	Text    string
	Type    excelize.CellType
	Formula string
	Style   *excelize.Style
}

// CellDataWithSpanInfo is a cell snapshot. RowSpan and ColSpan are set on
// the top-left cell of a merged area only; the cells it covers are absent
// from the matrix.
type CellDataWithSpanInfo struct {
	CellData
	RowSpan int
	ColSpan int
}

// CopyContentCacheData is the snapshot taken by one copy or cut. Matrix
// coordinates are 0-based offsets from the top-left cell of Range.
type CopyContentCacheData struct {
	UnitID    string
	SubUnitID string
	Range     Range
	CopyType  CopyType
	Matrix    *ObjectMatrix[CellDataWithSpanInfo]
}

// CopyContentCache keeps the most recent copy snapshots so that a paste
// inside the application can recover formulas, styles and merges that the
// system clipboard's HTML loses. It is safe for concurrent use.
type CopyContentCache struct {
	cache  *lruCache[string, *CopyContentCacheData]
	logger *zap.Logger
}

// NewCopyContentCache creates a cache holding at most Options.CacheLimit
// snapshots (10 by default).
func NewCopyContentCache(opts ...Options) *CopyContentCache {
	o := getOptions(opts...)
	c := &CopyContentCache{
		cache:  newLRUCache[string, *CopyContentCacheData](o.CacheLimit),
		logger: o.Logger,
	}
	c.cache.onEvict = func(id string, data *CopyContentCacheData) {
		c.logger.Debug("copy snapshot evicted",
			zap.String("id", id),
			zap.String("unit", data.UnitID),
			zap.String("sheet", data.SubUnitID))
	}
	return c
}

// Set stores a snapshot under id, replacing any entry with the same id. The
// data is deep copied, so later changes by the caller do not reach the cache.
func (c *CopyContentCache) Set(id string, data *CopyContentCacheData) {
	if data == nil {
		return
	}
	var snapshot *CopyContentCacheData
	if err := deepcopy.Copy(&snapshot, data); err != nil {
		// Only reachable for types deepcopy cannot handle; keep the original.
		c.logger.Warn("copy snapshot not cloned", zap.String("id", id), zap.Error(err))
		snapshot = data
	}
	c.cache.Store(id, snapshot)
}

// Get returns the snapshot stored under id and marks it most recently used.
// The returned snapshot is shared and must not be modified.
func (c *CopyContentCache) Get(id string) (*CopyContentCacheData, bool) {
	return c.cache.Load(id)
}

// Del removes the snapshot stored under id. It is a no-op for unknown ids.
func (c *CopyContentCache) Del(id string) {
	c.cache.Delete(id)
}

// DelUnit removes every snapshot taken from the given workbook and returns
// how many were dropped.
func (c *CopyContentCache) DelUnit(unitID string) int {
	return c.cache.DeleteFunc(func(_ string, data *CopyContentCacheData) bool {
		return data.UnitID == unitID
	})
}

// Clear removes all snapshots.
func (c *CopyContentCache) Clear() {
	c.cache.Clear()
}

// Len returns the number of cached snapshots.
func (c *CopyContentCache) Len() int {
	return c.cache.Len()
}

// GenID returns a random 6 character alphanumeric copy id.
func GenID() string {
	return GenIDN(DefaultIDLength)
}

// GenIDN returns a random alphanumeric id of length n.
func GenIDN(n int) string {
	if n <= 0 {
		n = DefaultIDLength
	}
	limit := big.NewInt(int64(len(idAlphabet)))
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms.
			panic(err)
		}
		sb.WriteByte(idAlphabet[idx.Int64()])
	}
	return sb.String()
}

// ExtractID returns the token of the first data-copy-id="<token>" attribute
// in markup whose token contains no whitespace. The attribute must be written
// literally with double quotes; single-quoted, unquoted and entity-encoded
// values are not copy ids. Malformed markup is not an error; the second
// result is false when no usable attribute exists.
func ExtractID(markup string) (string, bool) {
	if !strings.Contains(markup, CopyIDAttr) {
		return "", false
	}
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// A tag cut off at the end is never emitted; look at its raw text.
			if idx := strings.LastIndexByte(markup, '<'); idx >= 0 {
				return scanCopyIDAttr(markup[idx:])
			}
			return "", false
		case html.StartTagToken, html.SelfClosingTagToken:
			if id, ok := scanCopyIDAttr(string(z.Raw())); ok {
				return id, true
			}
		}
	}
}

func validCopyID(id string) bool {
	return id != "" && !strings.ContainsAny(id, " \t\n\r\f\v\"'&<>")
}

// scanCopyIDAttr finds a literal data-copy-id="<token>" attribute in raw
// text.
func scanCopyIDAttr(markup string) (string, bool) {
	prefix := CopyIDAttr + `="`
	for rest := markup; ; {
		idx := strings.Index(rest, prefix)
		if idx < 0 {
			return "", false
		}
		attrBoundary := idx == 0 || strings.IndexByte(" \t\n\r\f", rest[idx-1]) >= 0
		rest = rest[idx+len(prefix):]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			return "", false
		}
		if id := rest[:end]; validCopyID(id) && attrBoundary {
			return id, true
		}
	}
}
