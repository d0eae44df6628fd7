package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"zillow-scraper/models"
)

var (
	walkScoreRegex    = regexp.MustCompile(`(?i)walk score\D{0,10}(\d{1,3})`)
	transitScoreRegex = regexp.MustCompile(`(?i)transit score\D{0,10}(\d{1,3})`)
	bikeScoreRegex    = regexp.MustCompile(`(?i)bike score\D{0,10}(\d{1,3})`)
)

// ParsePropertyDetail converts a property page snapshot into a detail
// aggregate. Each semantic section is located independently, so a missing
// section yields a nil sub-object rather than failing the parse. The result
// is nil only when the page carries a listing-removed marker or no address
// can be located at all.
func (p *Parser) ParsePropertyDetail(html string) *models.PropertyDetail {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	if p.sel.NotFoundMarker.Extract(doc.Selection) != "" {
		return nil
	}

	addr := ParseAddressText(p.sel.DetailAddress.Extract(doc.Selection))
	if addr.IsZero() {
		return nil
	}

	facts := collectFacts(doc)
	pageText := doc.Text()

	d := &models.PropertyDetail{
		URL:           canonicalURL(doc),
		ScrapedAt:     time.Now(),
		Address:       &addr,
		NearbySchools: p.parseSchools(doc),
	}
	d.PriceDetails = p.parsePriceDetails(doc, facts)
	d.PropertyBasics = p.parseBasics(doc, facts)
	d.InteriorFeatures = p.parseInterior(doc, facts)
	d.CommunityAmenities = parseAmenities(facts)
	d.LocationScores = parseScores(pageText)
	d.ListingInfo = p.parseListingInfo(doc, facts)
	return d
}

func canonicalURL(doc *goquery.Document) string {
	if href, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok {
		return href
	}
	if href, ok := doc.Find(`meta[property="og:url"]`).Attr("content"); ok {
		return href
	}
	return ""
}

// collectFacts flattens "Label: value" list items and dt/dd pairs into a
// lowercase-keyed map. This is the fallback layer behind the attribute
// selectors: fact labels survive markup redesigns far better than class
// names do.
func collectFacts(doc *goquery.Document) map[string]string {
	facts := make(map[string]string)
	doc.Find("li, span[data-testid='fact-item']").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Is("ul, li") {
			return
		}
		text := strings.TrimSpace(s.Text())
		idx := strings.Index(text, ":")
		if idx <= 0 || idx == len(text)-1 {
			return
		}
		key := strings.ToLower(strings.TrimSpace(text[:idx]))
		val := strings.TrimSpace(text[idx+1:])
		if key == "" || val == "" || strings.Contains(key, "\n") {
			return
		}
		if _, exists := facts[key]; !exists {
			facts[key] = val
		}
	})
	doc.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		dd := dt.NextFiltered("dd")
		if dd.Length() == 0 {
			return
		}
		key := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(dt.Text()), ":"))
		val := strings.TrimSpace(dd.Text())
		if key != "" && val != "" {
			if _, exists := facts[key]; !exists {
				facts[key] = val
			}
		}
	})
	return facts
}

func fact(facts map[string]string, labels ...string) *string {
	for _, l := range labels {
		if v, ok := facts[l]; ok {
			v := v
			return &v
		}
	}
	return nil
}

func (p *Parser) parsePriceDetails(doc *goquery.Document, facts map[string]string) *models.PriceDetails {
	pd := &models.PriceDetails{}
	pd.ListPrice, pd.PriceIsRange = ParsePrice(p.sel.DetailPrice.Extract(doc.Selection))
	pd.Zestimate, _ = ParsePrice(p.sel.DetailZestimate.Extract(doc.Selection))
	pd.MonthlyEstimate, _ = ParsePrice(p.sel.DetailMonthlyEst.Extract(doc.Selection))
	if v := fact(facts, "price/sqft", "price per square foot"); v != nil {
		pd.PricePerSqft, _ = ParsePrice(*v)
	}

	doc.Find(p.sel.TaxRow).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		rec := models.TaxRecord{Year: strings.TrimSpace(cells.Eq(0).Text())}
		rec.TaxPaid, _ = ParsePrice(cells.Eq(1).Text())
		if cells.Length() > 2 {
			rec.Assessment, _ = ParsePrice(cells.Eq(2).Text())
		}
		if rec.Year != "" {
			pd.TaxHistory = append(pd.TaxHistory, rec)
		}
	})

	if pd.ListPrice == nil && pd.Zestimate == nil && pd.MonthlyEstimate == nil &&
		pd.PricePerSqft == nil && len(pd.TaxHistory) == 0 {
		return nil
	}
	return pd
}

func (p *Parser) parseBasics(doc *goquery.Document, facts map[string]string) *models.PropertyBasics {
	b := &models.PropertyBasics{
		HomeType:     fact(facts, "home type", "type"),
		Zoning:       fact(facts, "zoning"),
		ParcelNumber: fact(facts, "parcel number", "apn"),
	}

	// Headline bed/bath/sqft strip first, labeled facts as fallback.
	doc.Find(`[data-testid="bed-bath-sqft-fact-container"]`).Each(func(_ int, s *goquery.Selection) {
		text := strings.ToLower(s.Text())
		switch {
		case strings.Contains(text, "bed"):
			b.Beds = ParseIntField(text)
		case strings.Contains(text, "bath"):
			b.Baths = ParseFloatField(text)
		case strings.Contains(text, "sqft") || strings.Contains(text, "sq ft"):
			b.Sqft = ParseIntField(text)
		}
	})
	if b.Beds == nil {
		if v := fact(facts, "bedrooms", "beds"); v != nil {
			b.Beds = ParseIntField(*v)
		}
	}
	if b.Baths == nil {
		if v := fact(facts, "bathrooms", "baths"); v != nil {
			b.Baths = ParseFloatField(*v)
		}
	}
	if b.Sqft == nil {
		if v := fact(facts, "square footage", "sqft", "living area"); v != nil {
			b.Sqft = ParseIntField(*v)
		}
	}
	if v := fact(facts, "year built"); v != nil {
		b.YearBuilt = ParseIntField(*v)
	}
	if v := fact(facts, "stories"); v != nil {
		b.Stories = ParseIntField(*v)
	}

	if b.HomeType == nil && b.Beds == nil && b.Baths == nil && b.Sqft == nil &&
		b.YearBuilt == nil && b.Stories == nil && b.Zoning == nil && b.ParcelNumber == nil {
		return nil
	}
	return b
}

func (p *Parser) parseInterior(doc *goquery.Document, facts map[string]string) *models.InteriorFeatures {
	f := &models.InteriorFeatures{
		Flooring: fact(facts, "flooring"),
		Kitchen:  fact(facts, "kitchen features", "kitchen"),
		Laundry:  fact(facts, "laundry features", "laundry"),
		Cooling:  fact(facts, "cooling features", "cooling"),
		Heating:  fact(facts, "heating features", "heating"),
	}
	doc.Find(p.sel.HighlightItem).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			f.Highlights = append(f.Highlights, text)
		}
	})
	if f.Flooring == nil && f.Kitchen == nil && f.Laundry == nil &&
		f.Cooling == nil && f.Heating == nil && len(f.Highlights) == 0 {
		return nil
	}
	return f
}

func parseAmenities(facts map[string]string) *models.CommunityAmenities {
	a := &models.CommunityAmenities{
		HOAFee:        fact(facts, "hoa fee", "hoa"),
		Parking:       fact(facts, "parking features", "parking"),
		Pool:          fact(facts, "pool features", "pool"),
		Accessibility: fact(facts, "accessibility features", "accessibility"),
		Storage:       fact(facts, "storage"),
	}
	if a.HOAFee == nil && a.Parking == nil && a.Pool == nil &&
		a.Accessibility == nil && a.Storage == nil {
		return nil
	}
	return a
}

func parseScores(pageText string) *models.LocationScores {
	s := &models.LocationScores{
		WalkScore:    matchScore(walkScoreRegex, pageText),
		TransitScore: matchScore(transitScoreRegex, pageText),
		BikeScore:    matchScore(bikeScoreRegex, pageText),
	}
	if s.WalkScore == nil && s.TransitScore == nil && s.BikeScore == nil {
		return nil
	}
	return s
}

func matchScore(re *regexp.Regexp, text string) *int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n := ParseIntField(m[1])
	if n == nil || *n < 0 || *n > 100 {
		return nil
	}
	return n
}

func (p *Parser) parseSchools(doc *goquery.Document) models.SchoolList {
	schools := models.SchoolList{}
	doc.Find(p.sel.SchoolItem).Each(func(_ int, item *goquery.Selection) {
		name := p.sel.SchoolName.Extract(item)
		if name == "" {
			return
		}
		s := models.School{
			Name:   name,
			Grades: p.sel.SchoolGrades.Extract(item),
		}
		s.Rating = ParseIntField(p.sel.SchoolRating.Extract(item))
		schools = append(schools, s)
	})
	return schools
}

func (p *Parser) parseListingInfo(doc *goquery.Document, facts map[string]string) *models.ListingInfo {
	info := &models.ListingInfo{
		MLSNumber:   fact(facts, "mls#", "mls number", "mls id"),
		AgentName:   fact(facts, "listed by", "listing agent", "agent"),
		LastUpdated: fact(facts, "last updated", "last checked"),
	}
	if status := p.sel.DetailStatus.Extract(doc.Selection); status != "" {
		info.Status = &status
	}
	if v := fact(facts, "days on market", "on zillow", "time on zillow"); v != nil {
		info.DaysOnMarket = ParseIntField(*v)
	}
	if info.Status == nil && info.DaysOnMarket == nil && info.MLSNumber == nil &&
		info.AgentName == nil && info.LastUpdated == nil {
		return nil
	}
	return info
}
