// Copyright (c) 2024 Netskope, Inc. All rights reserved.

package bucket

import (
	"strconv"
	"testing"
	"time"
)

var testNow = time.Unix(1700000000, 0).UTC()

// epochDaysAgo returns the epoch-seconds string for a start time exactly
// days*86400 seconds before testNow.
func epochDaysAgo(days int64) string {
	return strconv.FormatInt(testNow.Unix()-days*secondsPerDay, 10)
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		name string
		days int64
		want Bucket
	}{
		{"day 0", 0, ZeroToThreeMonths},
		{"day 89 upper edge", 89, ZeroToThreeMonths},
		{"day 90 lower edge", 90, ThreeToSixMonths},
		{"day 179 upper edge", 179, ThreeToSixMonths},
		{"day 180 lower edge", 180, SixToTwelveMonths},
		{"day 364 upper edge", 364, SixToTwelveMonths},
		{"day 365 lower edge", 365, OneToTwoYears},
		{"day 730 upper edge", 730, OneToTwoYears},
		{"day 731 lower edge", 731, OverTwoYears},
		{"day 4000", 4000, OverTwoYears},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(epochDaysAgo(tt.days), testNow); got != tt.want {
				t.Errorf("Classify(%d days ago) = %q, want %q", tt.days, got, tt.want)
			}
		})
	}
}

func TestClassify_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"non-numeric", "not-a-timestamp"},
		{"float", "1700000000.5"},
		{"negative epoch", "-100"},
		{"future", strconv.FormatInt(testNow.Unix()+1, 10)},
		{"far future", strconv.FormatInt(testNow.Unix()+secondsPerDay*365, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.raw, testNow); got != Invalid {
				t.Errorf("Classify(%q) = %q, want %q", tt.raw, got, Invalid)
			}
		})
	}
}

func TestClassify_SubDayAge(t *testing.T) {
	// A start time earlier the same day classifies as the youngest bucket.
	raw := strconv.FormatInt(testNow.Unix()-3600, 10)
	if got := Classify(raw, testNow); got != ZeroToThreeMonths {
		t.Errorf("Classify(1h ago) = %q, want %q", got, ZeroToThreeMonths)
	}
}

func TestDaysSince(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"zero days", epochDaysAgo(0), "0"},
		{"five days", epochDaysAgo(5), "5"},
		{"partial day floors", strconv.FormatInt(testNow.Unix()-secondsPerDay-3600, 10), "1"},
		{"unparseable", "bogus", "invalid"},
		{"future", strconv.FormatInt(testNow.Unix()+60, 10), "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysSince(tt.raw, testNow); got != tt.want {
				t.Errorf("DaysSince(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestRank(t *testing.T) {
	for i, b := range Order {
		if got := Rank(string(b)); got != i {
			t.Errorf("Rank(%q) = %d, want %d", b, got, i)
		}
	}
	if got := Rank("unknown-label"); got != len(Order) {
		t.Errorf("Rank(unknown) = %d, want %d", got, len(Order))
	}
	if Rank(string(Invalid)) <= Rank(string(OverTwoYears)) {
		t.Error("Invalid should rank after all age buckets")
	}
}
