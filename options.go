// Copyright 2025 The sheetclip Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sheetclip

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Default values for the clipboard options.
const (
	DefaultCacheLimit = 10
	DefaultIDLength   = 6
)

// Options define the options for the copy content cache and the clipboard
// built on it. The zero value is usable: unset limits fall back to the
// defaults.
type Options struct {
	// CacheLimit is the number of copy snapshots kept before the least
	// recently used one is evicted (default 10).
	CacheLimit int `yaml:"cache_limit"`

	// IDLength is the length of generated copy ids (default 6).
	IDLength int `yaml:"id_length"`

	// SkipStyles disables capturing cell styles on copy.
	SkipStyles bool `yaml:"skip_styles"`

	// DefaultPasteMode is used by the command line when no mode is given.
	// One of: all | values | formats.
	DefaultPasteMode string `yaml:"default_paste_mode"`

	// Logger receives debug and info events. Nil disables logging.
	Logger *zap.Logger `yaml:"-"`
}

// withDefaults returns a copy of the options with unset fields filled in.
func (o Options) withDefaults() Options {
	if o.CacheLimit <= 0 {
		o.CacheLimit = DefaultCacheLimit
	}
	if o.IDLength <= 0 {
		o.IDLength = DefaultIDLength
	}
	if o.DefaultPasteMode == "" {
		o.DefaultPasteMode = PasteAll.String()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// getOptions merges a variadic options list the way excelize does: the last
// one wins.
func getOptions(opts ...Options) Options {
	var o Options
	for i := range opts {
		o = opts[i]
	}
	return o.withDefaults()
}

// LoadOptions reads clipboard options from a YAML file and applies defaults.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read options %s: %w", path, err)
	}
	return ParseOptions(data)
}

// ParseOptions decodes YAML options and applies defaults.
func ParseOptions(data []byte) (Options, error) {
	var o Options
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Options{}, fmt.Errorf("parse options: %w", err)
	}
	if _, err := ParsePasteMode(o.DefaultPasteMode); o.DefaultPasteMode != "" && err != nil {
		return Options{}, err
	}
	return o.withDefaults(), nil
}
