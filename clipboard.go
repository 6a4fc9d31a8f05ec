// Copyright 2025 The sheetclip Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package sheetclip implements in-application copy and paste for excelize
// workbooks. A copy stores a snapshot of the range in a small LRU cache and
// yields clipboard HTML tagged with a data-copy-id attribute; a paste that
// finds a cached id restores formulas, styles and merged cells from the
// snapshot, and falls back to the HTML table or plain text otherwise.
package sheetclip

import (
	"sync"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Workbook is an excelize file attached to a clipboard. UnitID identifies
// the document in copy snapshots.
type Workbook struct {
	UnitID string
	File   *excelize.File
}

// Payload is what a copy puts on the system clipboard: an HTML fragment
// tagged with the copy id and a tab separated plain text rendition.
type Payload struct {
	ID   string
	HTML string
	Text string
}

// Clipboard owns the copy content cache of one editing session and the
// workbooks taking part in it. It is safe for concurrent use.
type Clipboard struct {
	mu        sync.RWMutex
	cache     *CopyContentCache
	options   Options
	logger    *zap.Logger
	workbooks map[string]*Workbook
}

// NewClipboard creates a clipboard session with its own copy content cache.
func NewClipboard(opts ...Options) *Clipboard {
	o := getOptions(opts...)
	return &Clipboard{
		cache:     NewCopyContentCache(o),
		options:   o,
		logger:    o.Logger,
		workbooks: make(map[string]*Workbook),
	}
}

// Cache returns the session's copy content cache.
func (c *Clipboard) Cache() *CopyContentCache {
	return c.cache
}

// Attach registers a workbook with the clipboard and assigns it a unit id.
func (c *Clipboard) Attach(f *excelize.File) *Workbook {
	wb := &Workbook{UnitID: uuid.New().String(), File: f}
	c.mu.Lock()
	c.workbooks[wb.UnitID] = wb
	c.mu.Unlock()
	c.logger.Debug("workbook attached", zap.String("unit", wb.UnitID))
	return wb
}

// Detach unregisters a workbook and drops every snapshot copied from it.
// Detaching an unknown workbook is a no-op.
func (c *Clipboard) Detach(wb *Workbook) {
	if wb == nil {
		return
	}
	c.mu.Lock()
	delete(c.workbooks, wb.UnitID)
	c.mu.Unlock()
	dropped := c.cache.DelUnit(wb.UnitID)
	c.logger.Debug("workbook detached",
		zap.String("unit", wb.UnitID), zap.Int("snapshots", dropped))
}

// Close ends the session and clears the copy content cache.
func (c *Clipboard) Close() {
	c.mu.Lock()
	c.workbooks = make(map[string]*Workbook)
	c.mu.Unlock()
	c.cache.Clear()
}

func (c *Clipboard) workbook(unitID string) (*Workbook, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	wb, ok := c.workbooks[unitID]
	return wb, ok
}

func (c *Clipboard) checkAttached(wb *Workbook) error {
	if wb == nil || wb.File == nil {
		return ErrWorkbookNil
	}
	if registered, ok := c.workbook(wb.UnitID); !ok || registered != wb {
		return ErrWorkbookNotAttached
	}
	return nil
}
