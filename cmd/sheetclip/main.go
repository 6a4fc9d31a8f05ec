// Copyright 2025 The sheetclip Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Command sheetclip copies ranges between workbooks through the same
// clipboard payload an editor would put on the system clipboard.
package main

import (
	"fmt"
	"os"

	"github.com/omnimcp-ai/sheetclip"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose    bool
	configPath string
	cut        bool
	pasteMode  string
	outputPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sheetclip",
	Short: "Copy and paste spreadsheet ranges with formulas, styles and merges",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy SRC REF DST CELL",
	Short: "Copy a range from one workbook to another",
	Long: `Copies REF (for example "Sheet1!A1:C10") from workbook SRC and pastes it
into workbook DST at CELL (for example "Sheet2!B2"). SRC and DST may be the
same file. The paste goes through the clipboard HTML, so it exercises the
same path an in-app copy and paste does.

Example:
  sheetclip copy book.xlsx 'Sheet1!A1:C10' book.xlsx 'Sheet2!B2' --cut`,
	Args: cobra.ExactArgs(4),
	RunE: runCopy,
}

var renderCmd = &cobra.Command{
	Use:   "render SRC REF",
	Short: "Print the clipboard HTML and text for a range",
	Args:  cobra.ExactArgs(2),
	RunE:  runRender,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML options file")

	copyCmd.Flags().BoolVar(&cut, "cut", false, "move the range instead of copying it")
	copyCmd.Flags().StringVarP(&pasteMode, "mode", "m", "", "paste mode: all, values or formats")
	copyCmd.Flags().StringVarP(&outputPath, "output", "o", "", "save the target workbook to this path instead of DST")

	rootCmd.AddCommand(copyCmd, renderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadOptions() (sheetclip.Options, error) {
	opts := sheetclip.Options{}
	if configPath != "" {
		var err error
		if opts, err = sheetclip.LoadOptions(configPath); err != nil {
			return opts, err
		}
	}
	opts.Logger = logger
	return opts, nil
}

func runCopy(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}
	modeName := pasteMode
	if modeName == "" {
		modeName = opts.DefaultPasteMode
	}
	mode := sheetclip.PasteAll
	if modeName != "" {
		if mode, err = sheetclip.ParsePasteMode(modeName); err != nil {
			return err
		}
	}
	srcSheet, srcRange, err := sheetclip.ParseRef(args[1])
	if err != nil {
		return err
	}
	dstSheet, dstRange, err := sheetclip.ParseRef(args[3])
	if err != nil {
		return err
	}

	cb := sheetclip.NewClipboard(opts)
	defer cb.Close()

	src, err := excelize.OpenFile(args[0])
	if err != nil {
		return err
	}
	defer src.Close()
	srcWb := cb.Attach(src)

	dstWb := srcWb
	if args[2] != args[0] {
		dst, err := excelize.OpenFile(args[2])
		if err != nil {
			return err
		}
		defer dst.Close()
		dstWb = cb.Attach(dst)
	}

	copyType := sheetclip.CopyTypeCopy
	if cut {
		copyType = sheetclip.CopyTypeCut
	}
	payload, err := cb.Copy(srcWb, srcSheet, srcRange, copyType)
	if err != nil {
		return err
	}
	result, err := cb.Paste(dstWb, dstSheet, dstRange.TopLeft(), *payload, mode)
	if err != nil {
		return err
	}

	if cut && dstWb != srcWb {
		if err := srcWb.SaveAs(""); err != nil {
			return err
		}
	}
	if err := dstWb.SaveAs(outputPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pasted %s!%s from %s (%s)\n",
		dstSheet, result.Range, result.Source, result.CopyType)
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}
	sheet, rng, err := sheetclip.ParseRef(args[1])
	if err != nil {
		return err
	}
	f, err := excelize.OpenFile(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	cb := sheetclip.NewClipboard(opts)
	defer cb.Close()
	payload, err := cb.Copy(cb.Attach(f), sheet, rng, sheetclip.CopyTypeCopy)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, payload.HTML)
	fmt.Fprintln(out)
	fmt.Fprintln(out, payload.Text)
	return nil
}
