package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extractor is one attempt at pulling a value out of a selection: a CSS
// selector plus an optional attribute name and an optional regexp applied
// to the matched text. Attribute-based selectors (data-test and friends)
// belong first in a chain, visual class names churn too often to lead.
type Extractor struct {
	Selector string `yaml:"selector"`
	Attr     string `yaml:"attr,omitempty"`
	Pattern  string `yaml:"pattern,omitempty"`
}

// Chain is an ordered list of extractors. Extract tries each in declared
// order and returns the first non-empty result.
type Chain []Extractor

func (c Chain) Extract(s *goquery.Selection) string {
	for _, e := range c {
		sel := s
		if e.Selector != "" {
			sel = s.Find(e.Selector).First()
			if sel.Length() == 0 {
				continue
			}
		}
		var text string
		if e.Attr != "" {
			text, _ = sel.Attr(e.Attr)
		} else {
			text = sel.Text()
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if e.Pattern != "" {
			re, err := regexp.Compile(e.Pattern)
			if err != nil {
				continue
			}
			m := re.FindString(text)
			if m == "" {
				continue
			}
			text = m
		}
		return text
	}
	return ""
}

// SelectorSet holds every selector chain the parser uses. The zero value is
// unusable; start from DefaultSelectors and override individual chains from
// config when the site's markup drifts.
type SelectorSet struct {
	ListingCard    string `yaml:"listing_card"`
	CardPrice      Chain  `yaml:"card_price"`
	CardAddress    Chain  `yaml:"card_address"`
	CardLink       Chain  `yaml:"card_link"`
	CardDetailList string `yaml:"card_detail_list"`

	NotFoundMarker   Chain  `yaml:"not_found_marker"`
	DetailAddress    Chain  `yaml:"detail_address"`
	DetailPrice      Chain  `yaml:"detail_price"`
	DetailZestimate  Chain  `yaml:"detail_zestimate"`
	DetailMonthlyEst Chain  `yaml:"detail_monthly_est"`
	DetailStatus     Chain  `yaml:"detail_status"`
	HighlightItem    string `yaml:"highlight_item"`
	SchoolItem       string `yaml:"school_item"`
	SchoolName       Chain  `yaml:"school_name"`
	SchoolRating     Chain  `yaml:"school_rating"`
	SchoolGrades     Chain  `yaml:"school_grades"`
	TaxRow           string `yaml:"tax_row"`
}

// DefaultSelectors targets Zillow's current markup, attribute selectors
// first with class and text-pattern fallbacks behind them.
func DefaultSelectors() SelectorSet {
	return SelectorSet{
		ListingCard: `article[data-test="property-card"]`,
		CardPrice: Chain{
			{Selector: `span[data-test="property-card-price"]`},
			{Selector: `span[class*="price"]`},
			{Pattern: `\$[\d,.]+[KM]?(\s*-\s*\$[\d,.]+[KM]?)?`},
		},
		CardAddress: Chain{
			{Selector: `address`},
			{Selector: `[data-test="property-card-addr"]`},
		},
		CardLink: Chain{
			{Selector: `a[data-test="property-card-link"]`, Attr: "href"},
			{Selector: `a[href*="/homedetails/"]`, Attr: "href"},
		},
		CardDetailList: `ul[data-testid="property-card-details"] li, ul[class*="StyledPropertyCardHomeDetailsList"] li`,

		NotFoundMarker: Chain{
			{Selector: `[data-testid="listing-removed"]`},
			{Pattern: `(?i)(this listing has been removed|page not found|no longer available)`},
		},
		DetailAddress: Chain{
			{Selector: `[data-test="property-address"]`},
			{Selector: `h1[class*="Text-"]`},
			{Selector: `h1`},
		},
		DetailPrice: Chain{
			{Selector: `span[data-testid="price"]`},
			{Selector: `[data-test="property-price"]`},
			{Selector: `span[class*="Price"]`, Pattern: `\$[\d,.]+[KM]?`},
		},
		DetailZestimate: Chain{
			{Selector: `[data-testid="zestimate-value"]`},
			{Selector: `span[class*="zestimate"]`, Pattern: `\$[\d,.]+[KM]?`},
		},
		DetailMonthlyEst: Chain{
			{Selector: `[data-testid="est-payment"]`},
			{Pattern: `(?i)est\.?\s*payment:?\s*\$[\d,]+`},
		},
		DetailStatus: Chain{
			{Selector: `[data-testid="home-status"]`},
			{Selector: `span[class*="status"]`},
		},
		HighlightItem: `[data-testid="home-highlight"], ul[class*="highlights"] li`,
		SchoolItem:    `[data-testid="school-listing"], li[class*="school"]`,
		SchoolName: Chain{
			{Selector: `[data-testid="school-name"]`},
			{Selector: `a`},
			{Selector: `h5`},
		},
		SchoolRating: Chain{
			{Selector: `[data-testid="school-rating"]`},
			{Selector: `span[class*="rating"]`, Pattern: `\d+`},
		},
		SchoolGrades: Chain{
			{Selector: `[data-testid="school-grades"]`},
			{Selector: `span[class*="grades"]`},
		},
		TaxRow: `[data-testid="tax-history"] tbody tr, table[class*="tax"] tbody tr`,
	}
}
