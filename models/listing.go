package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Address holds the parsed components of a listing address. When the raw
// address text cannot be split into components, FreeText keeps the original
// string so the record is never lost.
type Address struct {
	Street   string `json:"street"`
	Unit     string `json:"unit"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	FreeText string `json:"free_text,omitempty"`
}

func (a Address) IsZero() bool {
	return a.Street == "" && a.Unit == "" && a.City == "" && a.State == "" && a.Zip == "" && a.FreeText == ""
}

// String reassembles the address for display and CSV output.
func (a Address) String() string {
	if a.Street == "" && a.FreeText != "" {
		return a.FreeText
	}
	var b strings.Builder
	b.WriteString(a.Street)
	// The street may already carry the unit verbatim.
	if a.Unit != "" && !strings.Contains(a.Street, a.Unit) {
		b.WriteString(" ")
		b.WriteString(a.Unit)
	}
	if a.City != "" {
		b.WriteString(", ")
		b.WriteString(a.City)
	}
	if a.State != "" {
		b.WriteString(", ")
		b.WriteString(a.State)
	}
	if a.Zip != "" {
		b.WriteString(" ")
		b.WriteString(a.Zip)
	}
	return b.String()
}

// ListingSummary is one property as shown on a search results page. Fields
// the page did not expose (or that failed to parse) stay nil rather than
// failing the record. Instances are built once by the parser and not
// mutated afterwards; merging produces a new value.
type ListingSummary struct {
	URL          string    `json:"url"`
	Address      Address   `json:"address"`
	Price        *float64  `json:"price"`
	PriceIsRange bool      `json:"price_is_range,omitempty"`
	Beds         *int      `json:"beds"`
	Baths        *float64  `json:"baths"`
	Sqft         *int      `json:"sqft"`
	PropertyType *string   `json:"property_type"`
	YearBuilt    *int      `json:"year_built"`
	LotSize      *string   `json:"lot_size"`
	HOAFee       *string   `json:"hoa_fee"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

// CSVColumns is the fixed header row for listing exports.
var CSVColumns = []string{
	"Scraped_At", "Price", "Beds", "Baths", "Sqft", "Address",
	"Link", "Property_Type", "Year_Built", "Lot_Size", "HOA",
}

// CSVRow renders the summary in CSVColumns order. Unknown fields render as
// empty cells.
func (l ListingSummary) CSVRow() []string {
	return []string{
		l.ScrapedAt.Format(time.RFC3339),
		formatFloat(l.Price),
		formatInt(l.Beds),
		formatFloat(l.Baths),
		formatInt(l.Sqft),
		l.Address.String(),
		l.URL,
		formatString(l.PropertyType),
		formatInt(l.YearBuilt),
		formatString(l.LotSize),
		formatString(l.HOAFee),
	}
}

// Merge combines two records for the same URL by completeness: any field
// known in other overrides the receiver's value, fields known only in the
// receiver are kept. The receiver's ScrapedAt (first sighting) is retained.
func (l ListingSummary) Merge(other ListingSummary) ListingSummary {
	out := l
	if other.Price != nil {
		out.Price = other.Price
		out.PriceIsRange = other.PriceIsRange
	}
	if other.Beds != nil {
		out.Beds = other.Beds
	}
	if other.Baths != nil {
		out.Baths = other.Baths
	}
	if other.Sqft != nil {
		out.Sqft = other.Sqft
	}
	if other.PropertyType != nil {
		out.PropertyType = other.PropertyType
	}
	if other.YearBuilt != nil {
		out.YearBuilt = other.YearBuilt
	}
	if other.LotSize != nil {
		out.LotSize = other.LotSize
	}
	if other.HOAFee != nil {
		out.HOAFee = other.HOAFee
	}
	if l.Address.IsZero() && !other.Address.IsZero() {
		out.Address = other.Address
	}
	return out
}

// DedupeSummaries collapses records sharing a URL, merging duplicates by
// completeness. First-seen order is preserved, records without a URL are
// dropped. The operation is idempotent.
func DedupeSummaries(in []ListingSummary) []ListingSummary {
	var order []string
	byURL := make(map[string]ListingSummary, len(in))
	for _, l := range in {
		if l.URL == "" {
			continue
		}
		if seen, ok := byURL[l.URL]; ok {
			byURL[l.URL] = seen.Merge(l)
			continue
		}
		byURL[l.URL] = l
		order = append(order, l.URL)
	}
	out := make([]ListingSummary, 0, len(order))
	for _, u := range order {
		out = append(out, byURL[u])
	}
	return out
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// FormatLine renders a summary as a single console line, matching the
// search-result output of the CLI.
func (l ListingSummary) FormatLine() string {
	return fmt.Sprintf("%-12s | %2s bd | %3s ba | %6s sqft | %s",
		formatFloat(l.Price), formatInt(l.Beds), formatFloat(l.Baths),
		formatInt(l.Sqft), l.Address.String())
}
