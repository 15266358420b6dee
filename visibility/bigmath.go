package visibility

import "math/big"

// vec3 is a 3-component vector of arbitrary-precision floats. V and V' are
// computed in this type, and Eval returns both as float64: the step
// adaptation, the fourth-derivative bound and the Hermite fit work on those
// float64 values, and only refineRoot's Newton polish runs in big.Float again.
type vec3 struct{ x, y, z *big.Float }

func newVec3(prec uint, v [3]float64) vec3 {
	return vec3{
		x: new(big.Float).SetPrec(prec).SetFloat64(v[0]),
		y: new(big.Float).SetPrec(prec).SetFloat64(v[1]),
		z: new(big.Float).SetPrec(prec).SetFloat64(v[2]),
	}
}

func bf(prec uint, v float64) *big.Float {
	return new(big.Float).SetPrec(prec).SetFloat64(v)
}

func vsub(a, b vec3) vec3 {
	return vec3{
		x: new(big.Float).Sub(a.x, b.x),
		y: new(big.Float).Sub(a.y, b.y),
		z: new(big.Float).Sub(a.z, b.z),
	}
}

func vdot(a, b vec3) *big.Float {
	prec := a.x.Prec()
	sum := new(big.Float).SetPrec(prec)
	t := new(big.Float).SetPrec(prec)
	sum.Add(sum, t.Mul(a.x, b.x))
	t = new(big.Float).SetPrec(prec)
	sum.Add(sum, t.Mul(a.y, b.y))
	t = new(big.Float).SetPrec(prec)
	sum.Add(sum, t.Mul(a.z, b.z))
	return sum
}

func vnorm(a vec3) *big.Float {
	return new(big.Float).Sqrt(vdot(a, a))
}

func vscale(s *big.Float, a vec3) vec3 {
	return vec3{
		x: new(big.Float).Mul(s, a.x),
		y: new(big.Float).Mul(s, a.y),
		z: new(big.Float).Mul(s, a.z),
	}
}

func bfQuo(a, b *big.Float) *big.Float {
	return new(big.Float).Quo(a, b)
}

func bfMul(a, b *big.Float) *big.Float {
	return new(big.Float).Mul(a, b)
}

func bfSub(a, b *big.Float) *big.Float {
	return new(big.Float).Sub(a, b)
}

func bfAdd(a, b *big.Float) *big.Float {
	return new(big.Float).Add(a, b)
}
