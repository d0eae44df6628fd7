package parser

import (
	"os"
	"path/filepath"
	"testing"

	"zillow-scraper/models"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return string(data)
}

func TestParseListingSummaries(t *testing.T) {
	p := New()
	listings := p.ParseListingSummaries(loadFixture(t, "zillow_search.html"))

	// Four cards in the fixture; the one without a detail link is skipped.
	if len(listings) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(listings))
	}

	first := listings[0]
	if first.URL != "https://www.zillow.com/homedetails/748-Cottage-Ct-Mountain-View-CA-94043/12345_zpid/" {
		t.Fatalf("unexpected first URL %s", first.URL)
	}
	if first.Price == nil || *first.Price != 1188000 {
		t.Fatalf("expected price 1188000, got %v", first.Price)
	}
	if first.PriceIsRange {
		t.Fatalf("expected fixed price, got range")
	}
	if first.Beds == nil || *first.Beds != 2 {
		t.Fatalf("expected 2 beds, got %v", first.Beds)
	}
	if first.Baths == nil || *first.Baths != 1 {
		t.Fatalf("expected 1 bath, got %v", first.Baths)
	}
	if first.Sqft == nil || *first.Sqft != 1150 {
		t.Fatalf("expected 1150 sqft, got %v", first.Sqft)
	}
	if first.Address.Street != "748 Cottage Ct" || first.Address.City != "Mountain View" ||
		first.Address.State != "CA" || first.Address.Zip != "94043" {
		t.Fatalf("unexpected first address %+v", first.Address)
	}
	if first.ScrapedAt.IsZero() {
		t.Fatalf("expected scraped timestamp to be set")
	}

	second := listings[1]
	if second.Price == nil || *second.Price != 1100000 {
		t.Fatalf("expected range lower bound 1100000, got %v", second.Price)
	}
	if !second.PriceIsRange {
		t.Fatalf("expected range flag on priced range")
	}
	if second.Address.Street != "1033 Crestview Dr APT 216" {
		t.Fatalf("expected unit kept in street, got %q", second.Address.Street)
	}
	if second.Address.Unit != "APT 216" {
		t.Fatalf("expected unit extracted separately, got %q", second.Address.Unit)
	}
	if second.Baths == nil || *second.Baths != 2.5 {
		t.Fatalf("expected 2.5 baths, got %v", second.Baths)
	}

	// The card with only a link degrades to unknowns, never to a drop.
	third := listings[2]
	if third.URL == "" {
		t.Fatalf("expected link-only card to keep its URL")
	}
	if third.Price != nil || third.Beds != nil || third.Sqft != nil {
		t.Fatalf("expected unknown fields to stay nil, got %+v", third)
	}
	if !third.Address.IsZero() {
		t.Fatalf("expected empty address, got %+v", third.Address)
	}
}

func TestParseListingSummariesEmptyPage(t *testing.T) {
	p := New()
	if listings := p.ParseListingSummaries("<html><body></body></html>"); len(listings) != 0 {
		t.Fatalf("expected no listings on an empty page, got %d", len(listings))
	}
}

func TestParseAddressText(t *testing.T) {
	cases := []struct {
		in   string
		want models.Address
	}{
		{
			in: "748 Cottage Ct, Mountain View, CA 94043",
			want: models.Address{
				Street: "748 Cottage Ct", City: "Mountain View", State: "CA", Zip: "94043",
			},
		},
		{
			in: "1033 Crestview Dr APT 216, Mountain View, CA 94040",
			want: models.Address{
				Street: "1033 Crestview Dr APT 216", Unit: "APT 216",
				City: "Mountain View", State: "CA", Zip: "94040",
			},
		},
		{
			in: "748 Cottage Ct #216, Mountain View, CA 94043",
			want: models.Address{
				Street: "748 Cottage Ct #216", Unit: "#216",
				City: "Mountain View", State: "CA", Zip: "94043",
			},
		},
		{
			in:   "Mountain View, CA",
			want: models.Address{FreeText: "Mountain View, CA"},
		},
		{
			in:   "",
			want: models.Address{},
		},
	}
	for _, c := range cases {
		if got := ParseAddressText(c.in); got != c.want {
			t.Fatalf("ParseAddressText(%q)\n got: %+v\nwant: %+v", c.in, got, c.want)
		}
	}
}
