package ioformats

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadURLs reads the batch input at path:
//
//   - .csv and .xlsx need a header row with a "url" column
//   - .ndjson and .jsonl need a {"url": "..."} object on every non-blank line
//   - anything else is read as CSV, or as one URL per line without a header
func ReadURLs(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	case ".ndjson", ".jsonl":
		return readNDJSON(path)
	default:
		if urls, err := readCSV(path); err == nil && len(urls) > 0 {
			return urls, nil
		}
		return readLines(path)
	}
}

func readCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv")
	}
	return urlColumn(rows, "csv")
}

// urlColumn pulls the non-empty cells under the "url" header.
func urlColumn(rows [][]string, kind string) ([]string, error) {
	col := -1
	for i, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(h), "url") {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, fmt.Errorf("%s must contain a 'url' header column", kind)
	}
	var out []string
	for _, row := range rows[1:] {
		if col < len(row) {
			u := strings.TrimSpace(row[col])
			if u != "" {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

type urlRecord struct {
	URL string `json:"url"`
}

func readNDJSON(path string) ([]string, error) {
	var out []string
	err := scanLines(path, func(n int, line string) error {
		var rec urlRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return fmt.Errorf("ndjson line %d: %w", n, err)
		}
		u := strings.TrimSpace(rec.URL)
		if u == "" {
			return fmt.Errorf("ndjson line %d: missing \"url\"", n)
		}
		out = append(out, u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no urls found in ndjson")
	}
	return out, nil
}

// readLines treats every non-blank line as a URL.
func readLines(path string) ([]string, error) {
	var out []string
	err := scanLines(path, func(_ int, line string) error {
		out = append(out, line)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no urls found")
	}
	return out, nil
}

// scanLines calls fn with the 1-based number and trimmed text of every
// non-blank line.
func scanLines(path string, fn func(n int, line string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	return sc.Err()
}

// WriteNDJSON writes one JSON document per line.
func WriteNDJSON[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}
