package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	rangeSplitRegex = regexp.MustCompile(`\s*(?:-|–|—|\bto\b)\s*\$`)
	numberRegex     = regexp.MustCompile(`[\d][\d,.]*`)
	amountRegex     = regexp.MustCompile(`(?i)([\d][\d,.]*)\s*([km])?`)
	// "#" starts a unit without a preceding word boundary, so it sits
	// outside the \b group.
	unitSuffixRegex = regexp.MustCompile(`(?i)(?:\b(?:apt|unit|ste|suite|lot|fl)\.?|#)\s*\S+$`)
)

// ParsePrice converts a displayed price like "$1,188,000", "$550K" or
// "$1.1M - $1.3M" into a numeric amount. Ranges resolve to the
// lower bound and report isRange true. A value that yields no digits
// returns nil.
func ParsePrice(text string) (value *float64, isRange bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	if strings.HasSuffix(text, "+") {
		isRange = true
	}
	if loc := rangeSplitRegex.FindStringIndex(text); loc != nil {
		isRange = true
		text = text[:loc[0]]
	}

	m := amountRegex.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	f, err := strconv.ParseFloat(normalizeSeparators(m[1]), 64)
	if err != nil {
		return nil, false
	}
	// A magnitude suffix only counts when it directly follows the number:
	// "$1.1M" scales, "$8,413/mo" does not.
	switch strings.ToLower(m[2]) {
	case "m":
		f *= 1_000_000
	case "k":
		f *= 1_000
	}
	return &f, isRange
}

// ParseIntField pulls the first integer out of text like "1,150 sqft" or
// "3 bds". Returns nil when no digits are present.
func ParseIntField(text string) *int {
	raw := numberRegex.FindString(text)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(normalizeSeparators(raw), 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}

// ParseFloatField pulls the first decimal out of text like "2.5 ba".
func ParseFloatField(text string) *float64 {
	raw := numberRegex.FindString(text)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(normalizeSeparators(raw), 64)
	if err != nil {
		return nil
	}
	return &f
}

// normalizeSeparators strips thousands separators while keeping a trailing
// decimal part: "1,150" -> "1150", "1.150.000" -> "1150000", "2.5" -> "2.5".
func normalizeSeparators(raw string) string {
	commas := strings.Count(raw, ",")
	dots := strings.Count(raw, ".")

	switch {
	case commas > 0 && dots > 0:
		// Whichever comes last is the decimal mark.
		if strings.LastIndex(raw, ",") > strings.LastIndex(raw, ".") {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.Replace(raw, ",", ".", 1)
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case commas > 1:
		raw = strings.ReplaceAll(raw, ",", "")
	case commas == 1:
		// "1,150" is a thousands group, "2,5" is a decimal.
		idx := strings.Index(raw, ",")
		if len(raw)-idx-1 == 3 {
			raw = strings.ReplaceAll(raw, ",", "")
		} else {
			raw = strings.Replace(raw, ",", ".", 1)
		}
	case dots > 1:
		raw = strings.ReplaceAll(raw, ".", "")
	case dots == 1:
		idx := strings.Index(raw, ".")
		if len(raw)-idx-1 == 3 && idx >= 1 {
			raw = strings.ReplaceAll(raw, ".", "")
		}
	}
	return raw
}
