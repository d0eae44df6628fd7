// Package export renders records to their serialized forms: CSV rows for
// listing searches, JSON documents for property details. It is the only
// place besides logging that touches the filesystem.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"zillow-scraper/models"
)

// WriteCSV streams listing summaries in the fixed column order, header
// first. Unknown fields come out as empty cells.
func WriteCSV(w io.Writer, listings []models.ListingSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.CSVColumns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, l := range listings {
		if err := cw.Write(l.CSVRow()); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes listings to a file, creating intermediate directories.
func SaveCSV(path string, listings []models.ListingSummary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()
	return WriteCSV(f, listings)
}
