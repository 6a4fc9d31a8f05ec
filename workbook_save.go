// Copyright 2025 The sheetclip Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sheetclip

import (
	"fmt"
	"os"
	"path/filepath"
)

// SaveAs writes the workbook to name without leaving a truncated file behind
// if the write fails: the spreadsheet goes to a temporary file in the same
// directory which then replaces name. An empty name saves to the path the
// workbook was opened from.
func (wb *Workbook) SaveAs(name string) error {
	if wb == nil || wb.File == nil {
		return ErrWorkbookNil
	}
	if name == "" {
		name = wb.File.Path
	}
	if name == "" {
		return fmt.Errorf("workbook %s has no path to save to", wb.UnitID)
	}
	name = filepath.Clean(name)
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := wb.File.WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		return err
	}
	wb.File.Path = name
	return nil
}
