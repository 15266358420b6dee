package coord

import (
	"math"
	"testing"
)

func TestECEFToECI_PreservesNorm(t *testing.T) {
	pos := [3]float64{WGS84A, 0, 0}
	vel := [3]float64{0, 1000, 0}
	tUnix := float64(J2000)

	posECI, velECI := ECEFToECI(pos, vel, tUnix)

	if length3(posECI) == 0 {
		t.Fatalf("ECEFToECI produced zero-length position")
	}

	// ECEFToECI is one directional rotation chain (no inverse is
	// implemented), so this checks norm preservation, which any pure
	// rotation must satisfy, within the documented ~200m error budget.
	if math.Abs(length3(posECI)-length3(pos)) > 200 {
		t.Errorf("ECEFToECI changed vector norm by more than 200m: got %v want %v",
			length3(posECI), length3(pos))
	}
	_ = velECI
}

func TestGMST_IsBounded(t *testing.T) {
	g := GMST(unixToJD(float64(J2000)))
	if g < 0 || g >= 360 {
		t.Errorf("GMST out of range: %v", g)
	}
}

func TestSiteLongitudeInECI_AtJ2000(t *testing.T) {
	lon := SiteLongitudeInECI(0, float64(J2000))
	want := 280.46062
	if math.Abs(lon-want) > 1e-6 {
		t.Errorf("SiteLongitudeInECI(0, J2000) = %v, want %v", lon, want)
	}
}

func TestSiteLongitudeInECI_Wraps(t *testing.T) {
	lon := SiteLongitudeInECI(350, float64(J2000))
	if lon < 0 || lon >= 360 {
		t.Errorf("SiteLongitudeInECI did not wrap into [0,360): %v", lon)
	}
}

func TestECEFToECIBatch_MatchesPerElement(t *testing.T) {
	positions := [][3]float64{{WGS84A, 0, 0}, {0, WGS84A, 0}}
	velocities := [][3]float64{{0, 100, 0}, {-100, 0, 0}}
	times := []float64{float64(J2000), float64(J2000) + 3600}

	posECI, velECI := ECEFToECIBatch(positions, velocities, times)
	for i := range times {
		wantPos, wantVel := ECEFToECI(positions[i], velocities[i], times[i])
		if posECI[i] != wantPos || velECI[i] != wantVel {
			t.Errorf("batch result[%d] = %v,%v want %v,%v", i, posECI[i], velECI[i], wantPos, wantVel)
		}
	}
}
