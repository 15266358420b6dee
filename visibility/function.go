// Package visibility implements the visibility function and its derivative
// (spec C5) and the adaptive Hermite access-window finder (spec C6), both in
// arbitrary-precision arithmetic.
package visibility

import (
	"context"
	"math"
	"math/big"

	"github.com/kaosnet/visibility/coord"
	"github.com/kaosnet/visibility/ephemeris"
)

// DefaultPrecisionDigits matches CALCULATION_PRECISION's documented default.
const DefaultPrecisionDigits = 100

// precisionBits converts a decimal-digit precision target to the bit
// precision big.Float needs, with headroom for the chain of products and
// divisions in V/V'.
func precisionBits(decimalDigits int) uint {
	if decimalDigits <= 0 {
		decimalDigits = DefaultPrecisionDigits
	}
	return uint(float64(decimalDigits)*3.3219280948873623) + 64
}

// Evaluator computes V(t) and V'(t) for one (satellite, site) pair. The site
// is treated as ECEF-fixed: its zenith unit vector's time-derivative is
// taken as zero, per the source's site_normal_vel = [0,0,0] (spec §9, open
// question resolved).
type Evaluator struct {
	ip       *ephemeris.Interpolator
	kind     ephemeris.Kind
	siteECEF [3]float64
	prec     uint
}

// NewEvaluator builds an Evaluator for a site at (latDeg, lonDeg), height 0,
// interpolating the satellite's ephemeris with the given Kind and
// CALCULATION_PRECISION decimal digits.
func NewEvaluator(ip *ephemeris.Interpolator, latDeg, lonDeg float64, kind ephemeris.Kind, precisionDigits int) *Evaluator {
	x, y, z := coord.LLAToECEF(latDeg, lonDeg, 0)
	return &Evaluator{
		ip:       ip,
		kind:     kind,
		siteECEF: [3]float64{x, y, z},
		prec:     precisionBits(precisionDigits),
	}
}

// state holds the high-precision satellite and site position/velocity at one
// instant, from which V and V' are both derived.
type state struct {
	rSat, vSat   vec3
	rSite, vSite vec3
}

func (e *Evaluator) stateAt(ctx context.Context, t float64) (state, error) {
	satPosECEF, satVelECEF, err := e.ip.Interpolate(ctx, t, e.kind)
	if err != nil {
		return state{}, err
	}
	satPosF, satVelF := coord.ECEFToECI([3]float64(satPosECEF), [3]float64(satVelECEF), t)
	sitePosF, siteVelF := coord.ECEFToECI(e.siteECEF, [3]float64{0, 0, 0}, t)

	return state{
		rSat:  newVec3(e.prec, satPosF),
		vSat:  newVec3(e.prec, satVelF),
		rSite: newVec3(e.prec, sitePosF),
		vSite: newVec3(e.prec, siteVelF),
	}, nil
}

// Eval returns V(t) and V'(t) together, since both are needed at every
// sample point the Hermite finder (C6) uses.
func (e *Evaluator) Eval(ctx context.Context, t float64) (v, vPrime float64, err error) {
	s, err := e.stateAt(ctx, t)
	if err != nil {
		return 0, 0, err
	}

	d := vsub(s.rSat, s.rSite)
	dNorm := vnorm(d)
	zHat := vscale(bfQuo(bf(e.prec, 1), vnorm(s.rSite)), s.rSite)

	vBig := bfQuo(vdot(d, zHat), dNorm)

	// d-dot = v_sat - v_site; z-hat-dot = 0 (ECEF-fixed site), so the
	// <d, zhatdot> term in V' vanishes.
	dDot := vsub(s.vSat, s.vSite)
	dNorm3 := bfMul(bfMul(dNorm, dNorm), dNorm)

	term1 := bfQuo(vdot(dDot, zHat), dNorm)
	term2 := bfQuo(bfMul(vdot(d, dDot), vdot(d, zHat)), dNorm3)
	vpBig := bfSub(term1, term2)

	vf, _ := vBig.Float64()
	vpf, _ := vpBig.Float64()
	return vf, vpf, nil
}

// fourthDerivativeBound returns the spec's approximation to max|V''''| on
// [ts,te], sampling V and V' at ts, the midpoint, and te.
func (e *Evaluator) fourthDerivativeBound(ctx context.Context, ts, te float64) (float64, error) {
	tm := (ts + te) / 2
	vs, vps, err := e.Eval(ctx, ts)
	if err != nil {
		return 0, err
	}
	vm, vpm, err := e.Eval(ctx, tm)
	if err != nil {
		return 0, err
	}
	ve, vpe, err := e.Eval(ctx, te)
	if err != nil {
		return 0, err
	}

	h := te - ts
	h4 := h * h * h * h
	h5 := h4 * h

	a5 := (24/h5)*(vs-ve) + (4/h4)*(vps+4*vpm+vpe)
	a4 := (4/h4)*(vs+4*vm+ve) -
		(4/h4)*(vps*(2*ts+3*te)+10*vpm*(ts+te)+vpe*(3*ts+2*te)) -
		(24/h5)*(vs*(2*ts+3*te)-ve*(3*ts+2*te))

	b1 := math.Abs(120*a5*ts + 24*a4)
	b2 := math.Abs(120*a5*te + 24*a4)
	if b2 > b1 {
		return b2, nil
	}
	return b1, nil
}
