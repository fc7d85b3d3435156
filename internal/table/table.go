// Package table reads the input URL list and writes the URL,Information
// output table.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/JakeFAU/xpath-scraper/internal/scrape"
)

// Output column headers.
const (
	HeaderURL         = "URL"
	HeaderInformation = "Information"
)

const bom = "\ufeff"

// ErrMissingColumn reports an input header without the URL column.
var ErrMissingColumn = errors.New("url column not found in header")

// ReadURLs loads the non-blank values of column from the CSV file at path, in
// file order. Blank cells are skipped and logged.
func ReadURLs(path, column string, logger *zap.Logger) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	urls, err := DecodeURLs(f, column, logger)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return urls, nil
}

// DecodeURLs is ReadURLs over an arbitrary reader.
func DecodeURLs(r io.Reader, column string, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}
	_, idx, ok := lo.FindIndexOf(header, func(name string) bool {
		return strings.TrimSpace(name) == column
	})
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
	}

	var urls []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if idx >= len(record) {
			logger.Warn("skipping row without url cell", zap.Int("line", line))
			continue
		}
		value := strings.TrimSpace(record[idx])
		if value == "" {
			logger.Warn("skipping blank url cell", zap.Int("line", line))
			continue
		}
		urls = append(urls, value)
	}
	return urls, nil
}

// WriteOutcomes writes one row per outcome, in slice order, after the header.
func WriteOutcomes(path string, outcomes []scrape.Outcome) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()
	return EncodeOutcomes(f, outcomes)
}

// EncodeOutcomes is WriteOutcomes over an arbitrary writer.
func EncodeOutcomes(w io.Writer, outcomes []scrape.Outcome) error {
	writer := csv.NewWriter(w)
	rows := append([][]string{{HeaderURL, HeaderInformation}},
		lo.Map(outcomes, func(o scrape.Outcome, _ int) []string {
			return []string{o.URL, o.Text}
		})...)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
