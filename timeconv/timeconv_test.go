package timeconv

import (
	"math"
	"testing"
)

func TestUTCToUnix_RoundTrip(t *testing.T) {
	cases := []string{
		"20180101T00:00:00.000",
		"20200229T12:30:45.500",
	}
	for _, s := range cases {
		u, err := UTCToUnix(s)
		if err != nil {
			t.Fatalf("UTCToUnix(%q) error: %v", s, err)
		}
		back := UnixToUTC(u)
		if back != s {
			t.Errorf("round trip %q -> %v -> %q, want %q", s, u, back, s)
		}
	}
}

func TestUTCToUnix_Malformed(t *testing.T) {
	if _, err := UTCToUnix("not-a-date"); err == nil {
		t.Errorf("expected error for malformed UTC string")
	}
}

func TestUTCToUnix_BeforeEpoch(t *testing.T) {
	if _, err := UTCToUnix("19600101T00:00:00.000"); err == nil {
		t.Errorf("expected error for date before Unix epoch")
	}
}

func TestJDateUnixRoundTrip(t *testing.T) {
	u := 1514764800.0
	jd := UnixToJDate(u)
	back := JDateToUnix(jd)
	if math.Abs(back-u) > 1e-6 {
		t.Errorf("JDate round trip: got %v want %v", back, u)
	}
}
