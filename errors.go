// Copyright 2025 The sheetclip Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sheetclip

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkbookNil defined the error message on receiving a nil workbook.
	ErrWorkbookNil = errors.New("workbook is nil")
	// ErrWorkbookNotAttached defined the error message on using a workbook
	// that was never attached to the clipboard or has been detached.
	ErrWorkbookNotAttached = errors.New("workbook is not attached to the clipboard")
	// ErrEmptyClipboard defined the error message on pasting a payload that
	// carries neither a cached snapshot, an HTML table nor plain text.
	ErrEmptyClipboard = errors.New("clipboard payload is empty")
	// ErrRangeOutOfBounds defined the error message on a paste that would
	// extend past the last row or column of a worksheet.
	ErrRangeOutOfBounds = errors.New("paste area exceeds worksheet bounds")
)

// newInvalidRangeError defined the error message on receiving an invalid
// range reference.
func newInvalidRangeError(ref string) error {
	return fmt.Errorf("invalid range reference %q", ref)
}

// newUnknownPasteModeError defined the error message on receiving an
// unsupported paste mode name.
func newUnknownPasteModeError(name string) error {
	return fmt.Errorf("unknown paste mode %q", name)
}

// newUnsupportedCharsetError defined the error message on a clipboard
// payload declaring a charset that cannot be decoded.
func newUnsupportedCharsetError(label string, err error) error {
	return fmt.Errorf("unsupported clipboard charset %q: %w", label, err)
}
