// Package ephemeris holds the satellite/segment/sample data model and the
// piecewise interpolator (spec C3) that reconstructs position and velocity
// at arbitrary times from per-segment ephemeris samples.
package ephemeris

import "context"

// Vector3 is an ordered triple of position (meters) or velocity (m/s)
// components in a named frame (ECEF or ECI/GCRS). Immutable value.
type Vector3 [3]float64

// OrbitSample is one ephemeris point in ECEF, the frame the ephemeris file
// format stores natively (spec §6). Time is strictly increasing within a
// segment; callers convert to ECI at the sample's own time before comparing
// against site vectors.
type OrbitSample struct {
	Time     float64
	Position Vector3
	Velocity Vector3
}

// OrbitSegment is a time-sorted, non-empty run of samples that interpolation
// must not cross. StartTime/EndTime equal the first/last sample times.
type OrbitSegment struct {
	SegmentID  int64
	PlatformID int64
	StartTime  float64
	EndTime    float64
	Samples    []OrbitSample
}

// Satellite is the top-level platform record. MaximumAltitude is q_max, the
// supremum of ||position|| across all of the platform's samples, consumed by
// the viewing-cone reducer as an upper bound.
type Satellite struct {
	PlatformID      int64
	PlatformName    string
	MaximumAltitude float64
}

// Store is the ephemeris store contract the interpolator consumes (spec §6,
// external collaborator). Implementations must honor "later segment wins" on
// boundary ties in SegmentContaining.
type Store interface {
	SegmentContaining(ctx context.Context, platformID int64, t float64) (*OrbitSegment, error)
	SamplesOf(ctx context.Context, segmentID int64) ([]OrbitSample, error)
	Satellite(ctx context.Context, platformID int64) (*Satellite, error)
}
