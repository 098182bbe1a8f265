// Copyright (c) 2024 Netskope, Inc. All rights reserved.

package bucket

import (
	"strconv"
	"strings"
	"time"
)

// Bucket is an age classification label derived from a pod start timestamp.
type Bucket string

const (
	ZeroToThreeMonths Bucket = "0-3 months"
	ThreeToSixMonths  Bucket = "3-6 months"
	SixToTwelveMonths Bucket = "6-12 months"
	OneToTwoYears     Bucket = "1-2 years"
	OverTwoYears      Bucket = ">2 years"
	Invalid           Bucket = "invalid"
)

// Order is the fixed bucket order by increasing age, with Invalid last.
// Report column ordering relies on this instead of first-seen input order.
var Order = []Bucket{
	ZeroToThreeMonths,
	ThreeToSixMonths,
	SixToTwelveMonths,
	OneToTwoYears,
	OverTwoYears,
	Invalid,
}

const secondsPerDay = 86400

// Classify maps a raw epoch-seconds string to an age bucket, measured against
// now. Unparseable, negative, or future timestamps classify as Invalid.
// All records of one run must be classified against the same now instant.
func Classify(raw string, now time.Time) Bucket {
	days, ok := ageDays(raw, now)
	if !ok {
		return Invalid
	}

	switch {
	case days <= 89:
		return ZeroToThreeMonths
	case days <= 179:
		return ThreeToSixMonths
	case days <= 364:
		return SixToTwelveMonths
	case days <= 730:
		return OneToTwoYears
	default:
		return OverTwoYears
	}
}

// DaysSince returns the whole number of days since the raw epoch timestamp as
// a decimal string, or "invalid" under the same conditions as Classify.
func DaysSince(raw string, now time.Time) string {
	days, ok := ageDays(raw, now)
	if !ok {
		return string(Invalid)
	}
	return strconv.FormatInt(days, 10)
}

// Rank returns the position of a bucket label in Order. Labels outside the
// fixed set sort after Invalid.
func Rank(label string) int {
	for i, b := range Order {
		if string(b) == label {
			return i
		}
	}
	return len(Order)
}

func ageDays(raw string, now time.Time) (int64, bool) {
	epoch, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || epoch < 0 {
		return 0, false
	}

	age := now.Unix() - epoch
	if age < 0 {
		return 0, false
	}

	return age / secondsPerDay, true
}
