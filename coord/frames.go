package coord

// ICRSToJ2000Matrix is the frame bias matrix from ICRS to the dynamical
// mean equator and equinox of J2000. The bias is a few milliarcseconds.
// Source: IERS Conventions 2003, Chapter 5.
var ICRSToJ2000Matrix [3][3]float64

func init() {
	const asec2rad = deg2rad / 3600.0

	xi0 := -0.0166170 * asec2rad
	eta0 := -0.0068192 * asec2rad
	da0 := -0.01460 * asec2rad

	yx := -da0
	zx := xi0
	xy := da0
	zy := eta0
	xz := -xi0
	yz := -eta0

	xx := 1.0 - 0.5*(yx*yx+zx*zx)
	yy := 1.0 - 0.5*(yx*yx+zy*zy)
	zz := 1.0 - 0.5*(zy*zy+zx*zx)

	ICRSToJ2000Matrix = [3][3]float64{
		{xx, xy, xz},
		{yx, yy, yz},
		{zx, zy, zz},
	}
}
