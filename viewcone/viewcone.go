// Package viewcone implements the viewing-cone pre-filter (spec C4): a
// purely geometric necessary condition that excludes, via closed-form work,
// the sub-periods of a day during which visibility is impossible given only
// the satellite's bounded geocentric distance. It typically removes 80-95%
// of a day's POI before the expensive root-finding in package visibility
// runs.
package viewcone

import (
	"math"

	"github.com/kaosnet/visibility/coord"
	"github.com/kaosnet/visibility/errs"
	"github.com/kaosnet/visibility/interval"
)

const thetaNaught = 0.0 // visibility threshold, radians

// Sample is a position/velocity pair at a known ECI time, as produced by a
// batch ECEF->ECI conversion at day boundaries.
type Sample struct {
	Time     float64
	Position [3]float64
	Velocity [3]float64
}

// Reduce returns the sub-intervals of poi (a single day) where visibility is
// geometrically possible, given the site's geodetic lat/lon, the bracketing
// ECI samples (typically the day's start and end), and qMax (the
// satellite's maximum geocentric distance). Returns ViewConeError if the
// geometry can't be resolved (an out-of-domain inverse-trig argument, or
// inconsistent wrap-around on both boundary pairs).
func Reduce(siteLatDeg, siteLonDeg float64, samples []Sample, qMax float64, poi interval.TimeInterval) ([]interval.TimeInterval, error) {
	if len(samples) < 2 {
		return nil, errs.NewViewConeError("viewcone: need at least 2 bracketing samples, got %d", len(samples))
	}

	phiGCDeg := coord.GeodeticToGeocentricLat(siteLatDeg)
	phiGC := phiGCDeg * math.Pi / 180.0
	R := coord.EarthRadiusAt(phiGCDeg)

	arg := R * math.Sin(math.Pi/2+thetaNaught) / qMax
	if arg < -1 || arg > 1 {
		return nil, errs.NewViewConeError("viewcone: q_max too small for site radius (asin argument %v out of domain)", arg)
	}
	gamma1 := thetaNaught + math.Asin(arg)
	gamma2 := math.Pi - gamma1

	var out []interval.TimeInterval

	numDays := int(math.Ceil((poi.End - poi.Start) / 86400.0))
	if numDays < 1 {
		numDays = 1
	}

	for m := 0; m < numDays; m++ {
		dayStart := poi.Start + float64(m)*86400.0
		dayEnd := dayStart + 86400.0
		if dayEnd > poi.End {
			dayEnd = poi.End
		}

		lambdaDeg := coord.SiteLongitudeInECI(siteLonDeg, dayStart)
		lambda := lambdaDeg * math.Pi / 180.0

		t1, t2, err := candidatePair(samples, phiGC, lambda, gamma1, dayStart, true)
		if err != nil {
			return nil, err
		}
		t3, t4, err := candidatePair(samples, phiGC, lambda, gamma2, dayStart, false)
		if err != nil {
			return nil, err
		}

		dayIntervals, err := assembleDay(t1, t2, t3, t4, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
		out = append(out, dayIntervals...)
	}

	out = interval.Trim(out, poi)
	out = interval.Fuse(out)
	return out, nil
}

// candidatePair evaluates the two asin branches for one gamma across all
// bracketing samples, aggregating the "entry" branch with max and the "exit"
// branch with min (the tightening described in spec step 7), returning
// absolute Unix times within the day starting at dayStart.
func candidatePair(samples []Sample, phiGC, lambda, gamma, dayStart float64, firstCone bool) (tEnter, tExit float64, err error) {
	sinPhi, cosPhi := math.Sincos(phiGC)
	cosGamma := math.Cos(gamma)

	haveEnter, haveExit := false, false
	for _, s := range samples {
		pHat, norm := orbitNormal(s.Position, s.Velocity)
		if norm == 0 {
			return 0, 0, errs.NewViewConeError("viewcone: degenerate position/velocity sample at t=%v", s.Time)
		}

		denom := math.Sqrt(pHat[0]*pHat[0]+pHat[1]*pHat[1]) * cosPhi
		if denom == 0 {
			return 0, 0, errs.NewViewConeError("viewcone: singular orbital-plane geometry at t=%v", s.Time)
		}
		arg := (cosGamma - pHat[2]*sinPhi) / denom
		if arg < -1 || arg > 1 {
			return 0, 0, errs.NewViewConeError("viewcone: asin argument %v out of domain at t=%v", arg, s.Time)
		}
		alpha := math.Asin(arg)
		beta := math.Atan2(pHat[0], pHat[1])

		enterAngle := wrap2Pi(alpha - beta - lambda)
		exitAngle := wrap2Pi((math.Pi - alpha) - beta - lambda)

		enterT := dayStart + enterAngle/coord.AngularVelocityEarth
		exitT := dayStart + exitAngle/coord.AngularVelocityEarth

		if !haveEnter || enterT > tEnter {
			tEnter = enterT
			haveEnter = true
		}
		if !haveExit || exitT < tExit {
			tExit = exitT
			haveExit = true
		}
	}
	return tEnter, tExit, nil
}

func orbitNormal(pos, vel [3]float64) (pHat [3]float64, norm float64) {
	cross := [3]float64{
		pos[1]*vel[2] - pos[2]*vel[1],
		pos[2]*vel[0] - pos[0]*vel[2],
		pos[0]*vel[1] - pos[1]*vel[0],
	}
	posNorm := math.Sqrt(pos[0]*pos[0] + pos[1]*pos[1] + pos[2]*pos[2])
	velNorm := math.Sqrt(vel[0]*vel[0] + vel[1]*vel[1] + vel[2]*vel[2])
	norm = posNorm * velNorm
	if norm == 0 {
		return [3]float64{}, 0
	}
	return [3]float64{cross[0] / norm, cross[1] / norm, cross[2] / norm}, norm
}

func wrap2Pi(a float64) float64 {
	const twoPi = 2 * math.Pi
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	return a
}

// assembleDay emits the in/out intervals inside [dayStart,dayEnd] for the two
// (t1,t2) and (t3,t4) pairs, splitting at the day boundary on wrap-around
// (spec step 7). Both pairs wrapping simultaneously is an inconsistent
// geometry.
func assembleDay(t1, t2, t3, t4, dayStart, dayEnd float64) ([]interval.TimeInterval, error) {
	var out []interval.TimeInterval

	wrap1 := t3 >= t1
	wrap2 := t4 <= t2

	if !wrap1 {
		out = append(out, interval.TimeInterval{Start: clamp(t3, dayStart, dayEnd), End: clamp(t1, dayStart, dayEnd)})
	} else {
		out = append(out,
			interval.TimeInterval{Start: dayStart, End: clamp(t1, dayStart, dayEnd)},
			interval.TimeInterval{Start: clamp(t3, dayStart, dayEnd), End: dayEnd},
		)
	}

	if !wrap2 {
		out = append(out, interval.TimeInterval{Start: clamp(t2, dayStart, dayEnd), End: clamp(t4, dayStart, dayEnd)})
	} else {
		out = append(out,
			interval.TimeInterval{Start: dayStart, End: clamp(t4, dayStart, dayEnd)},
			interval.TimeInterval{Start: clamp(t2, dayStart, dayEnd), End: dayEnd},
		)
	}

	if wrap1 && wrap2 {
		return nil, errs.NewViewConeError("viewcone: both boundary pairs wrap, inconsistent geometry for day starting %v", dayStart)
	}

	filtered := make([]interval.TimeInterval, 0, len(out))
	for _, iv := range out {
		if iv.Start < iv.End {
			filtered = append(filtered, iv)
		}
	}
	return filtered, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
