package ephemeris

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/kaosnet/visibility/errs"
)

// Kind is the closed set of interpolation orders the interpolator supports,
// represented as a tagged variant rather than string dispatch (spec §9).
type Kind int

const (
	Linear Kind = iota
	Quadratic
	Cubic
)

func (k Kind) points() int {
	switch k {
	case Linear:
		return 2
	case Quadratic:
		return 3
	case Cubic:
		return 4
	default:
		return 2
	}
}

// Interpolator is bound to one platform and maintains a per-segment
// memoized table of (times, positions, velocities). It is pure and
// thread-compatible: no hidden global state beyond the immutable segment
// memo, and the memo never extends a segment's lifetime beyond the request
// (spec §3 ownership).
type Interpolator struct {
	platformID int64
	store      Store

	memo    map[int64]*OrbitSegment
	current *OrbitSegment
}

// NewInterpolator binds an interpolator to platformID, failing with
// UnknownSatellite if the store has no such platform.
func NewInterpolator(ctx context.Context, store Store, platformID int64) (*Interpolator, error) {
	sat, err := store.Satellite(ctx, platformID)
	if err != nil {
		return nil, err
	}
	if sat == nil {
		return nil, errs.NewInterpolationError(errs.UnknownSatellite, platformID, "no such satellite")
	}
	return &Interpolator{
		platformID: platformID,
		store:      store,
		memo:       make(map[int64]*OrbitSegment),
	}, nil
}

// Interpolate locates the segment containing t (later segment wins on
// boundary ties), loads its samples (memoized), and piecewise-polynomial
// interpolates each of the six component time series at t.
func (ip *Interpolator) Interpolate(ctx context.Context, t float64, kind Kind) (pos, vel Vector3, err error) {
	seg, err := ip.segmentFor(ctx, t)
	if err != nil {
		return Vector3{}, Vector3{}, err
	}
	if len(seg.Samples) < 2 {
		return Vector3{}, Vector3{}, errs.NewInterpolationError(errs.InsufficientData, ip.platformID, "segment has fewer than 2 samples")
	}

	window := selectWindow(seg.Samples, t, kind.points())
	times := make([]float64, len(window))
	for i, s := range window {
		times[i] = s.Time
	}

	for dim := 0; dim < 3; dim++ {
		values := make([]float64, len(window))
		for i, s := range window {
			values[i] = s.Position[dim]
		}
		v, ferr := fitAndEval(times, values, t)
		if ferr != nil {
			return Vector3{}, Vector3{}, errs.NewInterpolationError(errs.InsufficientData, ip.platformID, ferr.Error())
		}
		pos[dim] = v
	}
	for dim := 0; dim < 3; dim++ {
		values := make([]float64, len(window))
		for i, s := range window {
			values[i] = s.Velocity[dim]
		}
		v, ferr := fitAndEval(times, values, t)
		if ferr != nil {
			return Vector3{}, Vector3{}, errs.NewInterpolationError(errs.InsufficientData, ip.platformID, ferr.Error())
		}
		vel[dim] = v
	}
	return pos, vel, nil
}

func (ip *Interpolator) segmentFor(ctx context.Context, t float64) (*OrbitSegment, error) {
	// Strict upper bound: t == ip.current.EndTime may also be a later
	// segment's start, which wins the tie (spec §4.3). Only the interior of
	// a segment is safe to serve from cache without asking the store again.
	if ip.current != nil && ip.current.StartTime <= t && t < ip.current.EndTime {
		return ip.current, nil
	}

	seg, err := ip.store.SegmentContaining(ctx, ip.platformID, t)
	if err != nil {
		return nil, err
	}
	if seg == nil {
		return nil, errs.NewInterpolationError(errs.NoSegment, ip.platformID, "no segment contains the requested time")
	}

	if cached, ok := ip.memo[seg.SegmentID]; ok {
		ip.current = cached
		return cached, nil
	}

	if len(seg.Samples) == 0 {
		samples, err := ip.store.SamplesOf(ctx, seg.SegmentID)
		if err != nil {
			return nil, err
		}
		seg.Samples = samples
	}

	ip.memo[seg.SegmentID] = seg
	ip.current = seg
	return seg, nil
}

// selectWindow returns up to npoints samples from segment centered as
// closely as possible around t, clamped to the segment's bounds.
func selectWindow(samples []OrbitSample, t float64, npoints int) []OrbitSample {
	if npoints > len(samples) {
		npoints = len(samples)
	}
	// index of the last sample with Time <= t (or 0 if t precedes all samples)
	idx := sort.Search(len(samples), func(i int) bool { return samples[i].Time > t })
	if idx > 0 {
		idx--
	}

	start := idx - (npoints-1)/2
	if start < 0 {
		start = 0
	}
	end := start + npoints
	if end > len(samples) {
		end = len(samples)
		start = end - npoints
		if start < 0 {
			start = 0
		}
	}
	return samples[start:end]
}

// fitAndEval fits the unique degree-(n-1) polynomial through (times[i],
// values[i]) via a Vandermonde system and evaluates it at t.
func fitAndEval(times, values []float64, t float64) (float64, error) {
	n := len(times)
	if n == 1 {
		return values[0], nil
	}

	A := mat.NewDense(n, n, nil)
	for i, ti := range times {
		pow := 1.0
		for j := 0; j < n; j++ {
			A.Set(i, j, pow)
			pow *= ti
		}
	}
	b := mat.NewVecDense(n, values)

	var coeffs mat.VecDense
	if err := coeffs.SolveVec(A, b); err != nil {
		return 0, err
	}

	result := coeffs.AtVec(n - 1)
	for j := n - 2; j >= 0; j-- {
		result = result*t + coeffs.AtVec(j)
	}
	return result, nil
}
