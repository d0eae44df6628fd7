package models

import (
	"encoding/json"
	"time"
)

// PropertyDetail is the full aggregate for one property page. Every
// sub-object is optional: a section the page did not render parses to nil,
// never to an error. A nil *PropertyDetail means the lookup itself found
// nothing.
type PropertyDetail struct {
	URL                string              `json:"url"`
	ScrapedAt          time.Time           `json:"scraped_at"`
	Address            *Address            `json:"address"`
	PriceDetails       *PriceDetails       `json:"price_details"`
	PropertyBasics     *PropertyBasics     `json:"property_basics"`
	InteriorFeatures   *InteriorFeatures   `json:"interior_features"`
	CommunityAmenities *CommunityAmenities `json:"community_amenities"`
	LocationScores     *LocationScores     `json:"location_scores"`
	NearbySchools      SchoolList          `json:"nearby_schools"`
	ListingInfo        *ListingInfo        `json:"listing_info"`
}

type PriceDetails struct {
	ListPrice       *float64    `json:"list_price"`
	PriceIsRange    bool        `json:"price_is_range,omitempty"`
	PricePerSqft    *float64    `json:"price_per_sqft"`
	Zestimate       *float64    `json:"zestimate"`
	MonthlyEstimate *float64    `json:"est_monthly_payment"`
	TaxHistory      []TaxRecord `json:"tax_history,omitempty"`
}

type TaxRecord struct {
	Year       string   `json:"year"`
	TaxPaid    *float64 `json:"tax_paid"`
	Assessment *float64 `json:"assessment"`
}

type PropertyBasics struct {
	HomeType     *string  `json:"home_type"`
	Beds         *int     `json:"beds"`
	Baths        *float64 `json:"baths"`
	Sqft         *int     `json:"sqft"`
	YearBuilt    *int     `json:"year_built"`
	Stories      *int     `json:"stories"`
	Zoning       *string  `json:"zoning"`
	ParcelNumber *string  `json:"parcel_number"`
}

type InteriorFeatures struct {
	Flooring   *string  `json:"flooring"`
	Kitchen    *string  `json:"kitchen"`
	Laundry    *string  `json:"laundry"`
	Cooling    *string  `json:"cooling"`
	Heating    *string  `json:"heating"`
	Highlights []string `json:"highlights,omitempty"`
}

type CommunityAmenities struct {
	HOAFee        *string `json:"hoa_fee"`
	Parking       *string `json:"parking"`
	Pool          *string `json:"pool"`
	Accessibility *string `json:"accessibility"`
	Storage       *string `json:"storage"`
}

// LocationScores holds walkability metrics, each 0-100 or nil when the
// score widget was absent.
type LocationScores struct {
	WalkScore    *int `json:"walk_score"`
	TransitScore *int `json:"transit_score"`
	BikeScore    *int `json:"bike_score"`
}

type School struct {
	Name   string `json:"name"`
	Rating *int   `json:"rating"`
	Grades string `json:"grades"`
}

// SchoolList always serializes as a JSON array, even when empty.
type SchoolList []School

func (s SchoolList) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]School(s))
}

type ListingInfo struct {
	Status       *string `json:"status"`
	DaysOnMarket *int    `json:"days_on_market"`
	MLSNumber    *string `json:"mls_number"`
	AgentName    *string `json:"agent_name"`
	LastUpdated  *string `json:"last_updated"`
}

// Summary projects the detail aggregate down to a ListingSummary, used when
// a detail record flows into listing-oriented sinks.
func (d *PropertyDetail) Summary() ListingSummary {
	s := ListingSummary{URL: d.URL, ScrapedAt: d.ScrapedAt}
	if d.Address != nil {
		s.Address = *d.Address
	}
	if d.PriceDetails != nil {
		s.Price = d.PriceDetails.ListPrice
		s.PriceIsRange = d.PriceDetails.PriceIsRange
	}
	if d.PropertyBasics != nil {
		s.Beds = d.PropertyBasics.Beds
		s.Baths = d.PropertyBasics.Baths
		s.Sqft = d.PropertyBasics.Sqft
		s.PropertyType = d.PropertyBasics.HomeType
		s.YearBuilt = d.PropertyBasics.YearBuilt
	}
	if d.CommunityAmenities != nil {
		s.HOAFee = d.CommunityAmenities.HOAFee
	}
	return s
}
