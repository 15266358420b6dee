// Package timeconv implements the UTC string and Julian date conversions
// used throughout the visibility pipeline (spec C1). All times downstream of
// this package are real-valued Unix seconds.
package timeconv

import (
	"fmt"
	"strings"
	"time"
)

// UTCLayout is the wire format accepted by UTCToUnix: YYYYMMDDTHH:MM:SS.sss.
const UTCLayout = "20060102T15:04:05.000"

// UTCToUnix parses a YYYYMMDDTHH:MM:SS.sss string to Unix seconds (fractional
// seconds retained). Rejects malformed strings and dates before the Unix
// epoch.
func UTCToUnix(s string) (float64, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(UTCLayout, s)
	if err != nil {
		// Allow a shorter fractional-second field than the fixed layout.
		if t2, err2 := time.Parse("20060102T15:04:05", s); err2 == nil {
			t, err = t2, nil
		} else {
			return 0, fmt.Errorf("timeconv: malformed UTC string %q: %w", s, err)
		}
	}
	t = t.UTC()
	epoch := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	if t.Before(epoch) {
		return 0, fmt.Errorf("timeconv: %q is before the Unix epoch", s)
	}
	return float64(t.UnixNano()) / 1e9, nil
}

// UnixToUTC formats Unix seconds back to the YYYYMMDDTHH:MM:SS.sss layout.
func UnixToUTC(unixSec float64) string {
	sec := int64(unixSec)
	nsec := int64((unixSec - float64(sec)) * 1e9)
	t := time.Unix(sec, nsec).UTC()
	return t.Format(UTCLayout)
}

// JDateToUnix converts a Julian date (days since -4712-01-01 noon) to Unix
// seconds.
func JDateToUnix(jd float64) float64 {
	return (jd - 2440587.5) * 86400.0
}

// UnixToJDate converts Unix seconds to a Julian date.
func UnixToJDate(unixSec float64) float64 {
	return unixSec/86400.0 + 2440587.5
}
