package coord

import (
	"math"
	"testing"
)

func TestLLAToECEF_Origin(t *testing.T) {
	x, y, z := LLAToECEF(0, 0, 0)
	if math.Abs(x-WGS84A) > 1e-6 || math.Abs(y) > 1e-6 || math.Abs(z) > 1e-6 {
		t.Errorf("LLAToECEF(0,0,0) = (%v,%v,%v), want (%v,0,0)", x, y, z, WGS84A)
	}
}

func TestLLAToECEF_Vancouver(t *testing.T) {
	x, y, z := LLAToECEF(49.2827, -123.1207, 0)
	wantX, wantY, wantZ := -2277772.9, -3491338.7, 4811126.5
	if math.Abs(x-wantX) > 0.1 || math.Abs(y-wantY) > 0.1 || math.Abs(z-wantZ) > 0.1 {
		t.Errorf("LLAToECEF(49.2827,-123.1207,0) = (%v,%v,%v), want approx (%v,%v,%v)",
			x, y, z, wantX, wantY, wantZ)
	}
}

func TestGeodeticToGeocentricLat_45Deg(t *testing.T) {
	got := GeodeticToGeocentricLat(45.0)
	want := 44.8076
	if math.Abs(got-want) > 1e-4 {
		t.Errorf("GeodeticToGeocentricLat(45) = %v, want approx %v", got, want)
	}
}

func TestLLAECEFRoundTrip(t *testing.T) {
	cases := []struct{ lat, lon, h float64 }{
		{49.2827, -123.1207, 0},
		{0, 0, 0},
		{-33.8688, 151.2093, 100},
		{60.0, 10.0, 5000},
	}
	for _, c := range cases {
		x, y, z := LLAToECEF(c.lat, c.lon, c.h)
		lat, lon, h := ECEFToLLA(x, y, z)
		if math.Abs(lat-c.lat) > 1e-9 || math.Abs(lon-c.lon) > 1e-9 || math.Abs(h-c.h) > 1e-3 {
			t.Errorf("round trip (%v,%v,%v) -> (%v,%v,%v), want within 1mm",
				c.lat, c.lon, c.h, lat, lon, h)
		}
	}
}

func TestECEFToLLA_NorthPole(t *testing.T) {
	lat, _, h := ECEFToLLA(0, 0, WGS84B)
	if math.Abs(lat-90.0) > 1e-9 {
		t.Errorf("north pole latitude = %v, want 90", lat)
	}
	if math.Abs(h) > 1e-6 {
		t.Errorf("north pole height = %v, want 0", h)
	}
}

func TestEarthRadiusAt_Equator(t *testing.T) {
	if got := EarthRadiusAt(0); math.Abs(got-WGS84A) > 1e-6 {
		t.Errorf("EarthRadiusAt(0) = %v, want %v", got, WGS84A)
	}
}

func TestEarthRadiusAt_Pole(t *testing.T) {
	if got := EarthRadiusAt(90); math.Abs(got-WGS84B) > 1e-6 {
		t.Errorf("EarthRadiusAt(90) = %v, want %v", got, WGS84B)
	}
}
