package scraper

import "strings"

// ChallengeDetector inspects a snapshot for anti-automation interstitials.
// Kept as a swappable predicate: the markers below track defenses that
// change more often than anything else in this package.
type ChallengeDetector func(html string) bool

// contentMarkers short-circuit detection: when real listing or property
// content is present, challenge text elsewhere on the page (footers, help
// links) must not trigger a false positive.
var contentMarkers = []string{
	`data-test="property-card"`,
	"search-page-list-container",
	"bed-bath-sqft-fact-container",
	`data-testid="price"`,
}

// notFoundMarkers identify removed or nonexistent listing pages. Such a
// page is a terminal state like real content: the parser turns it into a
// not-found result, so navigation must not keep waiting on it.
var notFoundMarkers = []string{
	`data-testid="listing-removed"`,
	"listing has been removed",
	"page not found",
	"no longer available",
}

var challengeMarkers = []string{
	"Press & Hold",
	"press and hold to confirm",
	"px-captcha",
	"PerimeterX",
	"Access to this page has been denied",
	"Before you continue",
	"verify you are a human",
	"cf-challenge",
}

// DetectChallenge is the default ChallengeDetector.
func DetectChallenge(html string) bool {
	for _, m := range contentMarkers {
		if strings.Contains(html, m) {
			return false
		}
	}
	for _, m := range challengeMarkers {
		if containsFold(html, m) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// hasContent reports whether a snapshot shows markup the parser can act
// on: real listing content or an explicit not-found page.
func hasContent(html string) bool {
	for _, m := range contentMarkers {
		if strings.Contains(html, m) {
			return true
		}
	}
	for _, m := range notFoundMarkers {
		if containsFold(html, m) {
			return true
		}
	}
	return false
}
