package ioformats

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"irps-content-analyzer/internal/analyzer"
)

const reportSheet = "Analysis"

var reportHeaders = []string{
	"url", "status", "risk_level", "confidence", "language", "category",
	"site_type", "threats", "title", "content_length", "degraded", "processing_ms", "error",
}

func readXLSX(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty xlsx")
	}
	return urlColumn(rows, "xlsx")
}

// WriteXLSXReport writes one row per batch item to a single-sheet workbook.
func WriteXLSXReport(w io.Writer, items []analyzer.BatchItem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return err
	}
	if err := setRow(f, 1, toAny(reportHeaders)); err != nil {
		return err
	}
	for i, it := range items {
		if err := setRow(f, i+2, reportRow(it)); err != nil {
			return err
		}
	}
	if err := f.AutoFilter(reportSheet, fmt.Sprintf("A1:M%d", len(items)+1), nil); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

func reportRow(it analyzer.BatchItem) []any {
	if it.Result == nil {
		return []any{it.URL, "", "", "", "", "", "", "", "", "", "", "", it.Error}
	}
	r := it.Result
	return []any{
		r.URL,
		string(r.Status),
		string(r.RiskLevel),
		r.Confidence,
		string(r.DetectedLanguage),
		r.ContentCategory,
		string(r.SiteType),
		strings.Join(r.DetectedContent, ", "),
		r.ScrapedData.Title,
		r.ScrapedData.ContentLength,
		r.Details.Degraded,
		r.ProcessingTimeMs,
		it.Error,
	}
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(reportSheet, cell, &values)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
