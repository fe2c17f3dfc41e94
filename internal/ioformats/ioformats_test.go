package ioformats

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"irps-content-analyzer/internal/analyzer"
	"irps-content-analyzer/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadURLsCSV(t *testing.T) {
	path := writeFile(t, "in.csv", "id,URL\n1,https://a.example\n2,\n3, https://b.example \n4\n")
	urls, err := ReadURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, urls)
}

func TestReadURLsCSVWithoutURLColumn(t *testing.T) {
	path := writeFile(t, "in.csv", "id,link\n1,https://a.example\n")
	_, err := ReadURLs(path)
	assert.Error(t, err)
}

func TestReadURLsNDJSON(t *testing.T) {
	path := writeFile(t, "in.ndjson", `{"url":"https://a.example"}

{"url":" https://b.example ","note":"x"}
`)
	urls, err := ReadURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, urls)
}

func TestReadURLsNDJSONRejectsBadLines(t *testing.T) {
	tests := map[string]string{
		"raw url":     "{\"url\":\"https://a.example\"}\nhttps://b.example\n",
		"missing url": "{\"url\":\"https://a.example\"}\n{\"other\":\"x\"}\n",
		"empty url":   "{\"url\":\"  \"}\n",
		"wrong type":  "{\"url\":42}\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadURLs(writeFile(t, "in.ndjson", content))
			assert.Error(t, err)
		})
	}

	_, err := ReadURLs(writeFile(t, "in.ndjson", "{\"url\":\"https://a.example\"}\nhttps://b.example\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestReadURLsUnknownExtensionFallsBackToNDJSON(t *testing.T) {
	path := writeFile(t, "in.txt", "https://a.example\nhttps://b.example\n")
	urls, err := ReadURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, urls)
}

func TestReadURLsXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "name"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "url"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "first"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "https://a.example"))
	require.NoError(t, f.SetCellValue("Sheet1", "B3", "https://b.example"))
	path := filepath.Join(t.TempDir(), "in.xlsx")
	require.NoError(t, f.SaveAs(path))

	urls, err := ReadURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, urls)
}

func TestWriteNDJSON(t *testing.T) {
	var buf bytes.Buffer
	items := []analyzer.BatchItem{
		{URL: "https://a.example", Result: &models.Result{Success: true, Status: models.Safe}},
		{URL: "bad", Error: "valid url is required"},
	}
	require.NoError(t, WriteNDJSON(&buf, items))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"status":"safe"`)
	assert.Contains(t, lines[1], `"error":"valid url is required"`)
	assert.NotContains(t, lines[1], `"result"`)
}

func TestWriteXLSXReport(t *testing.T) {
	items := []analyzer.BatchItem{
		{URL: "https://a.example", Result: &models.Result{
			URL:             "https://a.example",
			Status:          models.Waiting,
			RiskLevel:       models.RiskHigh,
			Confidence:      73,
			DetectedContent: []string{models.CategoryExplicit, models.CategoryScam},
			ScrapedData:     models.ScrapedSummary{Title: "Gallery"},
		}},
		{URL: "bad", Error: "valid url is required"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteXLSXReport(&buf, items))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, reportHeaders, rows[0])
	assert.Equal(t, "https://a.example", rows[1][0])
	assert.Equal(t, "waiting", rows[1][1])
	assert.Equal(t, "73", rows[1][3])
	assert.Equal(t, "explicit, scam", rows[1][7])
	assert.Equal(t, "Gallery", rows[1][8])
	assert.Equal(t, "bad", rows[2][0])
	assert.Equal(t, "valid url is required", rows[2][len(rows[2])-1])
}
