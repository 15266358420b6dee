package viewcone

import (
	"testing"

	"github.com/kaosnet/visibility/coord"
	"github.com/kaosnet/visibility/errs"
	"github.com/kaosnet/visibility/interval"
)

func sampleOrbit(tStart, tEnd float64) []Sample {
	// A roughly circular low-earth orbit, inclined, sampled at the day
	// boundaries; representative enough to exercise the geometry without
	// asserting exact literal times.
	posStart, velStart := coord.ECEFToECI([3]float64{6878140 * 0.8, 6878140 * 0.3, 6878140 * 0.5}, [3]float64{-1000, 6000, 3000}, tStart)
	posEnd, velEnd := coord.ECEFToECI([3]float64{6878140 * 0.2, 6878140 * 0.9, -6878140 * 0.3}, [3]float64{3000, -2000, 6500}, tEnd)
	return []Sample{
		{Time: tStart, Position: posStart, Velocity: velStart},
		{Time: tEnd, Position: posEnd, Velocity: velEnd},
	}
}

func TestReduce_ProducesIntervalsWithinPOI(t *testing.T) {
	poi := interval.TimeInterval{Start: float64(coord.J2000), End: float64(coord.J2000) + 86400}
	samples := sampleOrbit(poi.Start, poi.End)

	out, err := Reduce(40.0, 80.0, samples, 6878140*(1+1.8e-9), poi)
	if err != nil {
		// Geometrically inconsistent configurations are a valid, documented
		// outcome (ViewConeError); the orchestrator recovers by treating the
		// whole day as possibly visible.
		var vce *errs.ViewConeError
		if !errorsAs(err, &vce) {
			t.Fatalf("unexpected error type: %v", err)
		}
		return
	}

	for _, iv := range out {
		if iv.Start < poi.Start || iv.End > poi.End {
			t.Errorf("interval %v outside POI %v", iv, poi)
		}
		if iv.Start >= iv.End {
			t.Errorf("non-positive-duration interval emitted: %v", iv)
		}
	}
}

func TestReduce_QMaxTooSmall(t *testing.T) {
	poi := interval.TimeInterval{Start: float64(coord.J2000), End: float64(coord.J2000) + 86400}
	samples := sampleOrbit(poi.Start, poi.End)

	// q_max smaller than the site's own geocentric radius makes the first
	// asin argument fall outside [-1,1].
	_, err := Reduce(40.0, 80.0, samples, 1000.0, poi)
	if err == nil {
		t.Fatalf("expected ViewConeError for unreasonably small q_max")
	}
}

func errorsAs(err error, target **errs.ViewConeError) bool {
	if e, ok := err.(*errs.ViewConeError); ok {
		*target = e
		return true
	}
	return false
}
