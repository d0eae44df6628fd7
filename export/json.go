package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"zillow-scraper/models"
)

// WriteJSON renders one property detail as an indented JSON document.
// Unknown scalars serialize as null, nearby_schools always as an array.
func WriteJSON(w io.Writer, detail *models.PropertyDetail) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(detail); err != nil {
		return fmt.Errorf("json: encode detail: %w", err)
	}
	return nil
}

// SaveJSON writes a property detail document to a file, creating
// intermediate directories.
func SaveJSON(path string, detail *models.PropertyDetail) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("json: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("json: create file %q: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(f, detail)
}
