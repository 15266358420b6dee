package visibility

import (
	"context"
	"math"
	"math/big"
	"sort"

	"github.com/kaosnet/visibility/errs"
	"github.com/kaosnet/visibility/interval"
)

// Params holds the adaptive Hermite finder's tunables (spec §4.6 defaults).
type Params struct {
	Epsilon        float64 // target interpolation error per step
	TolRatio       float64 // step-size convergence tolerance
	MaxIter        int     // step-size adaptation iteration cap
	InitialStepSec float64 // initial step, seconds
}

// DefaultParams returns the spec-mandated defaults: eps=0.1, tol_ratio=0.1,
// max_iter=100, initial h=1000s.
func DefaultParams() Params {
	return Params{Epsilon: 0.1, TolRatio: 0.1, MaxIter: 100, InitialStepSec: 1000}
}

// adaptStep chooses a step size whose bounded fourth derivative implies
// interpolation error <= params.Epsilon on [t, t+h], iterating the spec's
// h2 = (16*eps/(M/24))^(1/4) update until it settles or max_iter is reached.
func (e *Evaluator) adaptStep(ctx context.Context, t, remaining float64, params Params, h1 float64) (float64, error) {
	if h1 <= 0 {
		h1 = params.InitialStepSec
	}

	for iter := 0; iter < params.MaxIter; iter++ {
		h := h1
		if h > remaining {
			h = remaining
		}
		if h <= 0 {
			return 0, nil
		}

		M, err := e.fourthDerivativeBound(ctx, t, t+h)
		if err != nil {
			return 0, err
		}
		if M <= 0 {
			return h, nil
		}

		h2 := math.Pow((16*params.Epsilon)/(M/24), 0.25)
		if h2 <= 0 || math.IsNaN(h2) || math.IsInf(h2, 0) {
			return h, nil
		}

		if math.Abs(h2-h1)/h1 <= params.TolRatio {
			h1 = h2
			break
		}
		h1 = h2
	}

	if h1 > remaining {
		h1 = remaining
	}
	if h1 <= 0 {
		h1 = remaining
	}
	return h1, nil
}

// hermiteCoeffs returns the cubic Hermite approximant's coefficients in the
// local parameter s = (t-ts)/h, As^3+Bs^2+Cs+D, matching V(ts)=D, V(te)=A+B+C+D,
// and the given derivatives scaled by h.
func hermiteCoeffs(vs, vps, ve, vpe, h float64) (a, b, c, d float64) {
	a = 2*vs + h*vps - 2*ve + h*vpe
	b = -3*vs - 2*h*vps + 3*ve - h*vpe
	c = h * vps
	d = vs
	return
}

// realCubicRoots returns the real roots of a*x^3+b*x^2+c*x+d=0 via the
// standard trigonometric/Cardano solution, used only to seed refineRoot's
// big.Float Newton iteration.
func realCubicRoots(a, b, c, d float64) []float64 {
	if math.Abs(a) < 1e-300 {
		// Degenerates to a quadratic (or lower).
		return realQuadraticRoots(b, c, d)
	}
	b /= a
	c /= a
	d /= a

	p := c - b*b/3
	q := 2*b*b*b/27 - b*c/3 + d

	var roots []float64
	disc := q*q/4 + p*p*p/27

	shift := -b / 3
	if disc > 1e-15 {
		sqrtDisc := math.Sqrt(disc)
		u := math.Cbrt(-q/2 + sqrtDisc)
		v := math.Cbrt(-q/2 - sqrtDisc)
		roots = append(roots, u+v+shift)
	} else if disc > -1e-15 {
		u := math.Cbrt(-q / 2)
		roots = append(roots, 2*u+shift, -u+shift)
	} else {
		r := math.Sqrt(-p * p * p / 27)
		phi := math.Acos(clampUnit(-q / (2 * r)))
		m := 2 * math.Sqrt(-p/3)
		roots = append(roots,
			m*math.Cos(phi/3)+shift,
			m*math.Cos((phi+2*math.Pi)/3)+shift,
			m*math.Cos((phi+4*math.Pi)/3)+shift,
		)
	}
	return roots
}

func realQuadraticRoots(a, b, c float64) []float64 {
	if math.Abs(a) < 1e-300 {
		if math.Abs(b) < 1e-300 {
			return nil
		}
		return []float64{-c / b}
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	return []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}
}

func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// refineRoot polishes a float64 seed root of As^3+Bs^2+Cs+D=0 with Newton
// iterations carried out in big.Float at prec bits. The coefficients are the
// float64 Hermite coefficients, so the result is a root of that float64
// polynomial; precision lost when V and V' were rounded to float64 is not
// recovered.
func refineRoot(a, b, c, d float64, seed float64, prec uint) *big.Float {
	A, B, C, D := bf(prec, a), bf(prec, b), bf(prec, c), bf(prec, d)
	s := bf(prec, seed)

	for i := 0; i < 20; i++ {
		s2 := bfMul(s, s)
		s3 := bfMul(s2, s)
		fVal := bfAdd(bfAdd(bfMul(A, s3), bfMul(B, s2)), bfAdd(bfMul(C, s), D))

		two := bf(prec, 2)
		three := bf(prec, 3)
		fPrime := bfAdd(bfMul(bfMul(three, A), s2), bfAdd(bfMul(bfMul(two, B), s), C))

		if fPrime.Sign() == 0 {
			break
		}
		delta := bfQuo(fVal, fPrime)
		s = bfSub(s, delta)

		if deltaF, _ := delta.Float64(); math.Abs(deltaF) < 1e-30 {
			break
		}
	}
	return s
}

// solveStep finds the real roots of the cubic Hermite approximant on
// [ts,te] that fall (with a small tolerance) inside [0,1] in the local
// parameter, returning absolute times in ascending order.
func (e *Evaluator) solveStep(ts, te, vs, vps, ve, vpe float64) []float64 {
	h := te - ts
	a, b, c, d := hermiteCoeffs(vs, vps, ve, vpe, h)
	seeds := realCubicRoots(a, b, c, d)

	const tol = 1e-9
	var roots []float64
	for _, seed := range seeds {
		refined := refineRoot(a, b, c, d, seed, e.prec)
		s, _ := refined.Float64()
		if s < -tol || s > 1+tol {
			continue
		}
		if s < 0 {
			s = 0
		}
		if s > 1 {
			s = 1
		}
		roots = append(roots, ts+s*h)
	}
	sort.Float64s(roots)
	return dedupRoots(roots)
}

func dedupRoots(roots []float64) []float64 {
	if len(roots) == 0 {
		return roots
	}
	out := roots[:1]
	for _, r := range roots[1:] {
		if r-out[len(out)-1] > 1e-6 {
			out = append(out, r)
		}
	}
	return out
}

// Determine runs the adaptive Hermite finder over the whole poi, emitting
// the maximal sub-intervals where V(t) >= 0 (spec §4.6). poi is expected to
// already be a reduced sub-interval from the viewing-cone reducer (or the
// fallback whole day, on ViewConeError recovery).
func (e *Evaluator) Determine(ctx context.Context, poi interval.TimeInterval, params Params) ([]interval.TimeInterval, error) {
	vStart, _, err := e.Eval(ctx, poi.Start)
	if err != nil {
		return nil, err
	}

	var accessStart *float64
	if vStart > 0 {
		start := poi.Start
		accessStart = &start
	}

	var windows []interval.TimeInterval
	t := poi.Start
	h := params.InitialStepSec

	for t < poi.End {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		remaining := poi.End - t
		h, err = e.adaptStep(ctx, t, remaining, params, h)
		if err != nil {
			return nil, err
		}
		te := t + h
		if te > poi.End {
			te = poi.End
		}
		if te <= t {
			break
		}

		vs, vps, err := e.Eval(ctx, t)
		if err != nil {
			return nil, err
		}
		ve, vpe, err := e.Eval(ctx, te)
		if err != nil {
			return nil, err
		}

		for _, r := range e.solveStep(t, te, vs, vps, ve, vpe) {
			if accessStart == nil {
				root := r
				accessStart = &root
			} else {
				windows = append(windows, interval.TimeInterval{Start: *accessStart, End: r})
				accessStart = nil
			}
		}

		t = te
	}

	if accessStart != nil {
		vEnd, _, err := e.Eval(ctx, poi.End)
		if err != nil {
			return nil, err
		}
		if vEnd <= 0 {
			return nil, errs.NewVisibilityFinderError(
				"unclosed access window at POI end: access_start=%v but V(poi.end)=%v <= 0", *accessStart, vEnd)
		}
		windows = append(windows, interval.TimeInterval{Start: *accessStart, End: poi.End})
	}

	return windows, nil
}
