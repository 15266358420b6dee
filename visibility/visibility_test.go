package visibility

import (
	"context"
	"math"
	"testing"

	"github.com/kaosnet/visibility/coord"
	"github.com/kaosnet/visibility/ephemeris"
	"github.com/kaosnet/visibility/interval"
)

// fakeStore serves a single segment whose samples trace a satellite passing
// overhead a site at 500 km altitude: V(t) peaks near the middle of the
// window and stays positive (about 5 degrees of elevation) at both ends.
type fakeStore struct {
	seg *ephemeris.OrbitSegment
	sat *ephemeris.Satellite
}

func (f *fakeStore) SegmentContaining(_ context.Context, _ int64, t float64) (*ephemeris.OrbitSegment, error) {
	if t < f.seg.StartTime || t > f.seg.EndTime {
		return nil, nil
	}
	return f.seg, nil
}

func (f *fakeStore) SamplesOf(_ context.Context, _ int64) ([]ephemeris.OrbitSample, error) {
	return f.seg.Samples, nil
}

func (f *fakeStore) Satellite(_ context.Context, _ int64) (*ephemeris.Satellite, error) {
	return f.sat, nil
}

// overheadPassStore builds a store whose samples move a satellite from low
// elevation, up over a site at siteLat/siteLon, and back down to low
// elevation, over the interval [t0, t0+period].
func overheadPassStore(t0, period float64, siteLat, siteLon float64) *fakeStore {
	x, y, z := coord.LLAToECEF(siteLat, siteLon, 0)
	siteNorm := math.Sqrt(x*x + y*y + z*z)
	zHat := [3]float64{x / siteNorm, y / siteNorm, z / siteNorm}

	// An "east" unit vector perpendicular to zHat, used to build a simple
	// great-circle arc passing overhead.
	east := [3]float64{-y, x, 0}
	eastNorm := math.Sqrt(east[0]*east[0] + east[1]*east[1] + east[2]*east[2])
	east = [3]float64{east[0] / eastNorm, east[1] / eastNorm, east[2] / eastNorm}

	const altitude = 500000.0
	radius := siteNorm + altitude

	n := 9
	samples := make([]ephemeris.OrbitSample, n)
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)
		t := t0 + frac*period
		theta := (frac - 0.5) * 0.6 // radians swept across the pass, overhead at frac=0.5

		pos := [3]float64{
			radius * (zHat[0]*math.Cos(theta) + east[0]*math.Sin(theta)),
			radius * (zHat[1]*math.Cos(theta) + east[1]*math.Sin(theta)),
			radius * (zHat[2]*math.Cos(theta) + east[2]*math.Sin(theta)),
		}

		dtheta := 0.6 / period
		vel := [3]float64{
			radius * dtheta * (-zHat[0]*math.Sin(theta) + east[0]*math.Cos(theta)),
			radius * dtheta * (-zHat[1]*math.Sin(theta) + east[1]*math.Cos(theta)),
			radius * dtheta * (-zHat[2]*math.Sin(theta) + east[2]*math.Cos(theta)),
		}

		samples[i] = ephemeris.OrbitSample{Time: t, Position: ephemeris.Vector3(pos), Velocity: ephemeris.Vector3(vel)}
	}

	seg := &ephemeris.OrbitSegment{SegmentID: 1, PlatformID: 1, StartTime: t0, EndTime: t0 + period, Samples: samples}
	sat := &ephemeris.Satellite{PlatformID: 1, PlatformName: "test-sat", MaximumAltitude: radius}
	return &fakeStore{seg: seg, sat: sat}
}

func TestDetermine_FindsOverheadPass(t *testing.T) {
	ctx := context.Background()
	t0 := float64(coord.J2000)
	period := 900.0

	store := overheadPassStore(t0, period, 40.0, -105.0)
	ip, err := ephemeris.NewInterpolator(ctx, store, 1)
	if err != nil {
		t.Fatalf("NewInterpolator: %v", err)
	}

	ev := NewEvaluator(ip, 40.0, -105.0, ephemeris.Cubic, 60)
	poi := interval.TimeInterval{Start: t0, End: t0 + period}

	windows, err := ev.Determine(ctx, poi, DefaultParams())
	if err != nil {
		t.Fatalf("Determine: %v", err)
	}
	if len(windows) == 0 {
		t.Fatalf("expected at least one access window for an overhead pass, got none")
	}
	for _, w := range windows {
		if w.Start < poi.Start || w.End > poi.End {
			t.Errorf("window %v outside POI %v", w, poi)
		}
		if w.Start >= w.End {
			t.Errorf("non-positive-duration window: %v", w)
		}
	}
}

func TestEval_ContinuousAtMidpoint(t *testing.T) {
	ctx := context.Background()
	t0 := float64(coord.J2000)
	period := 900.0

	store := overheadPassStore(t0, period, 40.0, -105.0)
	ip, err := ephemeris.NewInterpolator(ctx, store, 1)
	if err != nil {
		t.Fatalf("NewInterpolator: %v", err)
	}
	ev := NewEvaluator(ip, 40.0, -105.0, ephemeris.Cubic, 60)

	tm := t0 + period/2
	v1, vp1, err := ev.Eval(ctx, tm)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	v2, vp2, err := ev.Eval(ctx, tm+1e-3)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if math.Abs(v1-v2) > 1e3 {
		t.Errorf("V(t) not continuous near midpoint: %v vs %v", v1, v2)
	}
	if math.Abs(vp1-vp2) > 1e3 {
		t.Errorf("V'(t) not continuous near midpoint: %v vs %v", vp1, vp2)
	}
}

func TestAdaptStep_StepWithinRemaining(t *testing.T) {
	ctx := context.Background()
	t0 := float64(coord.J2000)
	period := 900.0

	store := overheadPassStore(t0, period, 40.0, -105.0)
	ip, err := ephemeris.NewInterpolator(ctx, store, 1)
	if err != nil {
		t.Fatalf("NewInterpolator: %v", err)
	}
	ev := NewEvaluator(ip, 40.0, -105.0, ephemeris.Cubic, 60)

	params := DefaultParams()
	h, err := ev.adaptStep(ctx, t0, period, params, params.InitialStepSec)
	if err != nil {
		t.Fatalf("adaptStep: %v", err)
	}
	if h <= 0 || h > period {
		t.Errorf("adaptStep returned out-of-range step: %v", h)
	}
}

func TestRealCubicRoots_KnownRoots(t *testing.T) {
	// (x-1)(x-2)(x-3) = x^3 - 6x^2 + 11x - 6
	roots := realCubicRoots(1, -6, 11, -6)
	if len(roots) != 3 {
		t.Fatalf("expected 3 real roots, got %d: %v", len(roots), roots)
	}
	want := map[int]bool{1: false, 2: false, 3: false}
	for _, r := range roots {
		for k := range want {
			if math.Abs(r-float64(k)) < 1e-6 {
				want[k] = true
			}
		}
	}
	for k, found := range want {
		if !found {
			t.Errorf("root %d not found among %v", k, roots)
		}
	}
}
