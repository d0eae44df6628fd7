package parser

import "testing"

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		isRange bool
		nilOut  bool
	}{
		{in: "$1,188,000", want: 1188000},
		{in: "$550K", want: 550000},
		{in: "$1.1M", want: 1100000},
		{in: "$1,100,000 - $1,300,000", want: 1100000, isRange: true},
		{in: "$1.1M - $1.3M", want: 1100000, isRange: true},
		{in: "From $550,000+", want: 550000, isRange: true},
		{in: "$8,413/mo", want: 8413},
		{in: "$1,375", want: 1375},
		{in: "Contact agent", nilOut: true},
		{in: "", nilOut: true},
	}

	for _, c := range cases {
		got, isRange := ParsePrice(c.in)
		if c.nilOut {
			if got != nil {
				t.Fatalf("ParsePrice(%q) = %v, want nil", c.in, *got)
			}
			continue
		}
		if got == nil {
			t.Fatalf("ParsePrice(%q) = nil, want %v", c.in, c.want)
		}
		if *got != c.want {
			t.Fatalf("ParsePrice(%q) = %v, want %v", c.in, *got, c.want)
		}
		if isRange != c.isRange {
			t.Fatalf("ParsePrice(%q) isRange = %v, want %v", c.in, isRange, c.isRange)
		}
	}
}

func TestParseIntField(t *testing.T) {
	cases := []struct {
		in     string
		want   int
		nilOut bool
	}{
		{in: "1,150 sqft", want: 1150},
		{in: "3 bds", want: 3},
		{in: "Year built: 1985", want: 1985},
		{in: "no digits here", nilOut: true},
	}
	for _, c := range cases {
		got := ParseIntField(c.in)
		if c.nilOut {
			if got != nil {
				t.Fatalf("ParseIntField(%q) = %v, want nil", c.in, *got)
			}
			continue
		}
		if got == nil || *got != c.want {
			t.Fatalf("ParseIntField(%q) = %v, want %d", c.in, got, c.want)
		}
	}
}

func TestParseFloatField(t *testing.T) {
	if got := ParseFloatField("2.5 ba"); got == nil || *got != 2.5 {
		t.Fatalf("ParseFloatField(2.5 ba) = %v, want 2.5", got)
	}
	if got := ParseFloatField("1 ba"); got == nil || *got != 1 {
		t.Fatalf("ParseFloatField(1 ba) = %v, want 1", got)
	}
	if got := ParseFloatField("studio"); got != nil {
		t.Fatalf("ParseFloatField(studio) = %v, want nil", *got)
	}
}
