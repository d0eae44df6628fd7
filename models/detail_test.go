package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestSchoolListMarshalsNilAsArray(t *testing.T) {
	d := PropertyDetail{URL: "u", ScrapedAt: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"nearby_schools":[]`) {
		t.Fatalf("expected nearby_schools to serialize as [], got %s", data)
	}
}

func TestPropertyDetailJSONRoundTrip(t *testing.T) {
	in := PropertyDetail{
		URL:       "https://www.zillow.com/homedetails/1_zpid/",
		ScrapedAt: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		Address:   &Address{Street: "1033 Crestview Dr APT 216", City: "Mountain View", State: "CA", Zip: "94040"},
		PriceDetails: &PriceDetails{
			ListPrice: fptr(1650000),
			Zestimate: fptr(1612300),
			TaxHistory: []TaxRecord{
				{Year: "2024", TaxPaid: fptr(8542), Assessment: fptr(680000)},
			},
		},
		PropertyBasics: &PropertyBasics{Beds: iptr(2), Baths: fptr(2), Sqft: iptr(1200), YearBuilt: iptr(1985)},
		LocationScores: &LocationScores{WalkScore: iptr(89)},
		NearbySchools: SchoolList{
			{Name: "Bubb Elementary School", Rating: iptr(8), Grades: "K-5"},
		},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out PropertyDetail
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out.URL != in.URL || !out.ScrapedAt.Equal(in.ScrapedAt) {
		t.Fatalf("identity fields did not survive: %+v", out)
	}
	if out.Address == nil || out.Address.Street != "1033 Crestview Dr APT 216" {
		t.Fatalf("address did not survive: %+v", out.Address)
	}
	if out.PriceDetails == nil || *out.PriceDetails.ListPrice != 1650000 {
		t.Fatalf("price details did not survive: %+v", out.PriceDetails)
	}
	if len(out.PriceDetails.TaxHistory) != 1 || *out.PriceDetails.TaxHistory[0].TaxPaid != 8542 {
		t.Fatalf("tax history did not survive: %+v", out.PriceDetails.TaxHistory)
	}
	if out.PropertyBasics == nil || *out.PropertyBasics.Sqft != 1200 {
		t.Fatalf("basics did not survive: %+v", out.PropertyBasics)
	}
	if out.InteriorFeatures != nil || out.CommunityAmenities != nil || out.ListingInfo != nil {
		t.Fatalf("expected absent sections to stay nil")
	}
	if len(out.NearbySchools) != 1 || out.NearbySchools[0].Name != "Bubb Elementary School" {
		t.Fatalf("schools did not survive: %+v", out.NearbySchools)
	}
}

func TestDetailSummaryProjection(t *testing.T) {
	d := PropertyDetail{
		URL:       "https://www.zillow.com/homedetails/1_zpid/",
		ScrapedAt: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		Address:   &Address{Street: "748 Cottage Ct", City: "Mountain View", State: "CA"},
		PriceDetails: &PriceDetails{
			ListPrice: fptr(1188000),
		},
		PropertyBasics:     &PropertyBasics{HomeType: sptr("Condo"), Beds: iptr(2), Baths: fptr(1), Sqft: iptr(1150), YearBuilt: iptr(1985)},
		CommunityAmenities: &CommunityAmenities{HOAFee: sptr("$425/month")},
	}

	s := d.Summary()
	if s.URL != d.URL {
		t.Fatalf("expected URL carried over, got %q", s.URL)
	}
	if s.Price == nil || *s.Price != 1188000 {
		t.Fatalf("expected price 1188000, got %v", s.Price)
	}
	if s.Beds == nil || *s.Beds != 2 || s.Sqft == nil || *s.Sqft != 1150 {
		t.Fatalf("expected basics projected, got %+v", s)
	}
	if s.PropertyType == nil || *s.PropertyType != "Condo" {
		t.Fatalf("expected home type projected, got %v", s.PropertyType)
	}
	if s.YearBuilt == nil || *s.YearBuilt != 1985 {
		t.Fatalf("expected year built projected, got %v", s.YearBuilt)
	}
	if s.HOAFee == nil || *s.HOAFee != "$425/month" {
		t.Fatalf("expected HOA fee projected, got %v", s.HOAFee)
	}
	if s.Address.Street != "748 Cottage Ct" {
		t.Fatalf("expected address projected, got %+v", s.Address)
	}
}
