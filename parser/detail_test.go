package parser

import (
	"testing"
)

func TestParsePropertyDetail(t *testing.T) {
	p := New()
	d := p.ParsePropertyDetail(loadFixture(t, "property_detail.html"))
	if d == nil {
		t.Fatalf("expected a detail record")
	}

	if d.URL != "https://www.zillow.com/homedetails/1033-Crestview-Dr-APT-216-Mountain-View-CA-94040/12345678_zpid/" {
		t.Fatalf("unexpected canonical URL %s", d.URL)
	}
	if d.Address == nil || d.Address.Street != "1033 Crestview Dr APT 216" {
		t.Fatalf("unexpected address %+v", d.Address)
	}
	if d.Address.City != "Mountain View" || d.Address.State != "CA" || d.Address.Zip != "94040" {
		t.Fatalf("unexpected address components %+v", d.Address)
	}

	pd := d.PriceDetails
	if pd == nil {
		t.Fatalf("expected price details")
	}
	if pd.ListPrice == nil || *pd.ListPrice != 1650000 {
		t.Fatalf("expected list price 1650000, got %v", pd.ListPrice)
	}
	if pd.Zestimate == nil || *pd.Zestimate != 1612300 {
		t.Fatalf("expected zestimate 1612300, got %v", pd.Zestimate)
	}
	if pd.MonthlyEstimate == nil || *pd.MonthlyEstimate != 8413 {
		t.Fatalf("expected monthly estimate 8413, got %v", pd.MonthlyEstimate)
	}
	if pd.PricePerSqft == nil || *pd.PricePerSqft != 1375 {
		t.Fatalf("expected price/sqft 1375, got %v", pd.PricePerSqft)
	}
	if len(pd.TaxHistory) != 2 {
		t.Fatalf("expected 2 tax records, got %d", len(pd.TaxHistory))
	}
	if pd.TaxHistory[0].Year != "2024" || *pd.TaxHistory[0].TaxPaid != 8542 || *pd.TaxHistory[0].Assessment != 680000 {
		t.Fatalf("unexpected first tax record %+v", pd.TaxHistory[0])
	}

	b := d.PropertyBasics
	if b == nil {
		t.Fatalf("expected property basics")
	}
	if b.Beds == nil || *b.Beds != 2 || b.Baths == nil || *b.Baths != 2 || b.Sqft == nil || *b.Sqft != 1200 {
		t.Fatalf("unexpected headline facts %+v", b)
	}
	if b.HomeType == nil || *b.HomeType != "Condo" {
		t.Fatalf("expected home type Condo, got %v", b.HomeType)
	}
	if b.YearBuilt == nil || *b.YearBuilt != 1985 || b.Stories == nil || *b.Stories != 1 {
		t.Fatalf("unexpected year/stories %+v", b)
	}
	if b.Zoning == nil || *b.Zoning != "R3" || b.ParcelNumber == nil || *b.ParcelNumber != "15834012" {
		t.Fatalf("unexpected zoning/parcel %+v", b)
	}

	in := d.InteriorFeatures
	if in == nil {
		t.Fatalf("expected interior features")
	}
	if in.Flooring == nil || *in.Flooring != "Wood, Tile" {
		t.Fatalf("unexpected flooring %v", in.Flooring)
	}
	if in.Cooling == nil || *in.Cooling != "Central AC" || in.Heating == nil || *in.Heating != "Forced air" {
		t.Fatalf("unexpected cooling/heating %+v", in)
	}
	if len(in.Highlights) != 2 || in.Highlights[0] != "Mountain views" {
		t.Fatalf("unexpected highlights %v", in.Highlights)
	}

	am := d.CommunityAmenities
	if am == nil {
		t.Fatalf("expected community amenities")
	}
	if am.HOAFee == nil || *am.HOAFee != "$425/month" {
		t.Fatalf("unexpected HOA fee %v", am.HOAFee)
	}
	if am.Parking == nil || *am.Parking != "1 Carport space" || am.Pool == nil || *am.Pool != "Community" {
		t.Fatalf("unexpected parking/pool %+v", am)
	}
	if am.Accessibility == nil || *am.Accessibility != "Elevator" || am.Storage == nil || *am.Storage != "Extra storage room" {
		t.Fatalf("unexpected accessibility/storage %+v", am)
	}

	sc := d.LocationScores
	if sc == nil {
		t.Fatalf("expected location scores")
	}
	if sc.WalkScore == nil || *sc.WalkScore != 89 || sc.TransitScore == nil || *sc.TransitScore != 45 || sc.BikeScore == nil || *sc.BikeScore != 96 {
		t.Fatalf("unexpected scores %+v", sc)
	}

	if len(d.NearbySchools) != 2 {
		t.Fatalf("expected 2 schools, got %d", len(d.NearbySchools))
	}
	s0 := d.NearbySchools[0]
	if s0.Name != "Bubb Elementary School" || s0.Rating == nil || *s0.Rating != 8 || s0.Grades != "K-5" {
		t.Fatalf("unexpected first school %+v", s0)
	}

	li := d.ListingInfo
	if li == nil {
		t.Fatalf("expected listing info")
	}
	if li.Status == nil || *li.Status != "For sale" {
		t.Fatalf("unexpected status %v", li.Status)
	}
	if li.DaysOnMarket == nil || *li.DaysOnMarket != 12 {
		t.Fatalf("unexpected days on market %v", li.DaysOnMarket)
	}
	if li.MLSNumber == nil || *li.MLSNumber != "ML81234567" {
		t.Fatalf("unexpected MLS number %v", li.MLSNumber)
	}
	if li.AgentName == nil || *li.AgentName != "Jane Realtor" {
		t.Fatalf("unexpected agent %v", li.AgentName)
	}
	if li.LastUpdated == nil || *li.LastUpdated != "2026-08-20" {
		t.Fatalf("unexpected last updated %v", li.LastUpdated)
	}
}

func TestParsePropertyDetailRemovedListing(t *testing.T) {
	p := New()
	if d := p.ParsePropertyDetail(loadFixture(t, "listing_removed.html")); d != nil {
		t.Fatalf("expected nil for removed listing, got %+v", d)
	}
}

func TestParsePropertyDetailNoAddress(t *testing.T) {
	p := New()
	if d := p.ParsePropertyDetail("<html><body><p>loading</p></body></html>"); d != nil {
		t.Fatalf("expected nil without an address, got %+v", d)
	}
}

func TestParsePropertyDetailSparsePage(t *testing.T) {
	html := `<html><body>
		<h1 data-test="property-address">500 Oak Ave, Palo Alto, CA 94301</h1>
		<span data-testid="price">$750,000</span>
	</body></html>`

	p := New()
	d := p.ParsePropertyDetail(html)
	if d == nil {
		t.Fatalf("expected a detail record")
	}
	if d.PriceDetails == nil || *d.PriceDetails.ListPrice != 750000 {
		t.Fatalf("expected list price 750000, got %+v", d.PriceDetails)
	}
	if d.PropertyBasics != nil || d.InteriorFeatures != nil || d.CommunityAmenities != nil ||
		d.LocationScores != nil || d.ListingInfo != nil {
		t.Fatalf("expected absent sections to be nil, got %+v", d)
	}
	if d.NearbySchools == nil || len(d.NearbySchools) != 0 {
		t.Fatalf("expected empty school list, got %v", d.NearbySchools)
	}
	if d.URL != "" {
		t.Fatalf("expected no canonical URL, got %q", d.URL)
	}
}
