// Package parser turns raw page snapshots into typed records. It is
// stateless: every function is a pure mapping from markup to models, with
// no I/O, so the whole package tests against static fixtures.
package parser

import (
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"zillow-scraper/models"
)

const baseURL = "https://www.zillow.com"

// Parser extracts records using a configurable selector set. The zero-arg
// constructor uses the built-in Zillow selectors.
type Parser struct {
	sel SelectorSet
}

func New() *Parser {
	return NewWithSelectors(DefaultSelectors())
}

func NewWithSelectors(sel SelectorSet) *Parser {
	return &Parser{sel: sel}
}

// ParseListingSummaries extracts every property card from a search results
// snapshot. A card missing individual fields degrades those fields to
// unknown; only cards with no detail-page link at all are skipped, since
// the URL is the record's identity.
func (p *Parser) ParseListingSummaries(html string) []models.ListingSummary {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("parser: unreadable snapshot: %v", err)
		return nil
	}

	now := time.Now()
	var results []models.ListingSummary

	doc.Find(p.sel.ListingCard).Each(func(_ int, card *goquery.Selection) {
		link := p.sel.CardLink.Extract(card)
		if link == "" {
			return
		}
		if !strings.HasPrefix(link, "http") {
			link = baseURL + link
		}

		l := models.ListingSummary{
			URL:       link,
			Address:   ParseAddressText(p.sel.CardAddress.Extract(card)),
			ScrapedAt: now,
		}
		l.Price, l.PriceIsRange = ParsePrice(p.sel.CardPrice.Extract(card))

		card.Find(p.sel.CardDetailList).Each(func(_ int, li *goquery.Selection) {
			text := strings.ToLower(strings.TrimSpace(li.Text()))
			switch {
			case strings.Contains(text, "bd"):
				l.Beds = ParseIntField(text)
			case strings.Contains(text, "ba"):
				l.Baths = ParseFloatField(text)
			case strings.Contains(text, "sqft") || strings.Contains(text, "sq ft"):
				l.Sqft = ParseIntField(text)
			}
		})

		results = append(results, l)
	})

	return results
}

// ParseAddressText splits a displayed address such as
// "1033 Crestview Dr APT 216, Mountain View, CA 94040" into components.
// The street keeps its unit suffix verbatim and the suffix is also exposed
// separately as Unit. Text that does not split into street/city/state falls
// back to FreeText untouched.
func ParseAddressText(raw string) models.Address {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Address{}
	}

	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 3 {
		return models.Address{FreeText: raw}
	}

	addr := models.Address{
		Street: parts[0],
		City:   parts[1],
	}
	if unit := unitSuffixRegex.FindString(parts[0]); unit != "" {
		addr.Unit = unit
	}

	stateZip := strings.Fields(parts[len(parts)-1])
	if len(stateZip) >= 1 {
		addr.State = stateZip[0]
	}
	if len(stateZip) >= 2 {
		addr.Zip = stateZip[1]
	}
	return addr
}
