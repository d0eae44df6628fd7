package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"zillow-scraper/models"
)

var (
	streetReplacements = map[string]string{
		"street":    "st",
		"avenue":    "ave",
		"drive":     "dr",
		"road":      "rd",
		"boulevard": "blvd",
		"lane":      "ln",
		"court":     "ct",
		"place":     "pl",
		"circle":    "cir",
		"crescent":  "cres",
		"terrace":   "ter",
		"highway":   "hwy",
		"parkway":   "pkwy",
		"square":    "sq",
		"north":     "n",
		"south":     "s",
		"east":      "e",
		"west":      "w",
		"apartment": "apt",
		"suite":     "ste",
		"unit":      "unit",
		"floor":     "fl",
		"building":  "bldg",
	}
	multiSpaceRegex = regexp.MustCompile(`\s+`)
	nonAlnumRegex   = regexp.MustCompile(`[^a-z0-9\s]`)
)

// NormalizeAddress lowercases, strips punctuation and collapses common
// street-suffix and directional words to their abbreviations so that
// "1033 Crestview Drive, Apartment 216" and "1033 Crestview Dr APT 216"
// compare equal.
func NormalizeAddress(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	addr = nonAlnumRegex.ReplaceAllString(addr, " ")
	fields := strings.Fields(addr)
	for i, f := range fields {
		if abbrev, ok := streetReplacements[f]; ok {
			fields[i] = abbrev
		}
	}
	addr = strings.Join(fields, " ")
	return strings.TrimSpace(multiSpaceRegex.ReplaceAllString(addr, " "))
}

// Fingerprint derives a stable identity hash for a listing from its
// normalized address and headline facts, used as the upsert key in the
// Postgres sink.
func Fingerprint(l *models.ListingSummary) string {
	var beds, sqft int
	var baths float64
	if l.Beds != nil {
		beds = *l.Beds
	}
	if l.Baths != nil {
		baths = *l.Baths
	}
	if l.Sqft != nil {
		sqft = *l.Sqft
	}
	input := fmt.Sprintf("%s|%d|%.1f|%d", NormalizeAddress(l.Address.String()), beds, baths, sqft)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16])
}

// MatchScore rates how well a candidate address matches a query address on
// a 0..1 scale. Both sides are normalized first. An exact normalized match
// scores 1. Otherwise the score is the Jaccard overlap of address tokens,
// weighted so that a mismatched leading street number zeroes the score:
// "123 Main St" must never match "456 Main St".
func MatchScore(query, candidate string) float64 {
	q := NormalizeAddress(query)
	c := NormalizeAddress(candidate)
	if q == "" || c == "" {
		return 0
	}
	if q == c {
		return 1
	}

	qTokens := strings.Fields(q)
	cTokens := strings.Fields(c)
	if leadingNumber(qTokens) != "" && leadingNumber(cTokens) != "" &&
		leadingNumber(qTokens) != leadingNumber(cTokens) {
		return 0
	}

	qSet := make(map[string]bool, len(qTokens))
	for _, t := range qTokens {
		qSet[t] = true
	}
	var inter, union int
	cSet := make(map[string]bool, len(cTokens))
	for _, t := range cTokens {
		cSet[t] = true
	}
	for t := range qSet {
		if cSet[t] {
			inter++
		}
		union++
	}
	for t := range cSet {
		if !qSet[t] {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func leadingNumber(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	for _, r := range tokens[0] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return tokens[0]
}

// BestMatch picks the summary whose address best matches the query. Exact
// normalized equality wins immediately; otherwise the highest MatchScore at
// or above threshold wins. Returns nil when nothing qualifies.
func BestMatch(query string, candidates []models.ListingSummary, threshold float64) *models.ListingSummary {
	var best *models.ListingSummary
	bestScore := 0.0
	for i := range candidates {
		score := MatchScore(query, candidates[i].Address.String())
		if score == 1 {
			return &candidates[i]
		}
		if score >= threshold && score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}
	return best
}
