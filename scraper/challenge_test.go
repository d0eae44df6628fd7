package scraper

import (
	"os"
	"path/filepath"
	"testing"
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

func TestDetectChallenge(t *testing.T) {
	if !DetectChallenge(loadFixture(t, "challenge.html")) {
		t.Fatalf("expected challenge page to be detected")
	}
}

func TestDetectChallengeContentShortCircuit(t *testing.T) {
	// The results page mentions captcha in a footer help link; real content
	// must win over incidental challenge vocabulary.
	html := loadFixture(t, "search_ready.html")
	if DetectChallenge(html) {
		t.Fatalf("expected results page not to be flagged as a challenge")
	}
	if !hasContent(html) {
		t.Fatalf("expected results page to count as content")
	}
}

func TestRemovedListingIsRecognizedPageState(t *testing.T) {
	// A removed listing shows neither cards nor a challenge. It still has
	// to count as a settled page so navigation hands it to the parser
	// instead of timing out.
	html := loadFixture(t, "listing_removed.html")
	if DetectChallenge(html) {
		t.Fatalf("expected removed-listing page not to be flagged as a challenge")
	}
	if !hasContent(html) {
		t.Fatalf("expected removed-listing page to be a recognized page state")
	}
}

func TestDetectChallengeEmptyPage(t *testing.T) {
	if DetectChallenge("<html><body></body></html>") {
		t.Fatalf("expected empty page not to be flagged")
	}
	if hasContent("<html><body></body></html>") {
		t.Fatalf("expected empty page not to count as content")
	}
}
