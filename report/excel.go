// Package report writes test run results to files for people who were not watching the console.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/restcontract/users-contract-tests/framework"
)

const (
	sheetName          = "Results"
	defaultColumnWidth = 18
	errorColumnWidth   = 100

	patternType    = "pattern"
	patternValue   = 1
	failedBgColor  = "FF5900"
	skippedBgColor = "FFEB9C"

	StatusPassed  = "PASSED"
	StatusFailed  = "FAILED"
	StatusSkipped = "SKIPPED"
)

var headers = []interface{}{"Test", "Status", "Duration (ms)", "Errors"}

// Status returns the label used for a result in reports.
func Status(r framework.TestResult) string {
	switch {
	case r.Skipped:
		return StatusSkipped
	case r.Failed():
		return StatusFailed
	default:
		return StatusPassed
	}
}

// WriteExcel saves the results as a workbook at path, one row per test followed by a summary.
// Failed rows are red and skipped rows yellow.
func WriteExcel(path string, results framework.Results, totalDuration time.Duration) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("cannot create worksheet: %w", err)
	}

	if err := f.SetColWidth(sheetName, "A", "C", defaultColumnWidth); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "D", "D", errorColumnWidth); err != nil {
		return err
	}
	if err := writeRow(f, 1, headers...); err != nil {
		return err
	}

	failedStyle, err := fillStyle(f, failedBgColor)
	if err != nil {
		return err
	}
	skippedStyle, err := fillStyle(f, skippedBgColor)
	if err != nil {
		return err
	}

	for i, r := range results.Tests {
		row := i + 2
		var errs []string
		for _, e := range r.Errors {
			errs = append(errs, e.Error())
		}
		status := Status(r)
		if err := writeRow(f, row,
			r.TestID.String(),
			status,
			r.Duration.Milliseconds(),
			strings.Join(errs, "\n"),
		); err != nil {
			return err
		}
		var style int
		switch status {
		case StatusFailed:
			style = failedStyle
		case StatusSkipped:
			style = skippedStyle
		default:
			continue
		}
		if err := styleRow(f, row, len(headers), style); err != nil {
			return err
		}
	}

	summaryRow := len(results.Tests) + 3
	summary := [][]interface{}{
		{"Total time (ms)", totalDuration.Milliseconds()},
		{"Tests", len(results.Tests)},
		{"Failures", len(results.Failures)},
	}
	for i, line := range summary {
		if err := writeRow(f, summaryRow+i, line...); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("cannot save report to %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, values ...interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func styleRow(f *excelize.File, row, columns, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(columns, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheetName, first, last, style)
}

func fillStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    patternType,
			Pattern: patternValue,
			Color:   []string{color},
		},
	})
}
