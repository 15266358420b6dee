// Package coord implements the time and coordinate primitives shared across
// the visibility pipeline: geodetic/ECEF/ECI conversions, GMST/GAST, and the
// IAU bias/precession/nutation chain used to rotate between the two frames.
package coord

import "math"

const (
	deg2rad    = math.Pi / 180.0
	rad2deg    = 180.0 / math.Pi
	arcsec2rad = deg2rad / 3600.0

	// J2000 mean obliquity: 84381.448 arcseconds (Lieske 1979)
	obliquitySin = 0.3977771559319137062
	obliquityCos = 0.9174820620691818140

	// WGS84 ellipsoid, meters.
	WGS84A = 6378137.0            // semi-major axis
	WGS84E = 8.1819190842622e-2   // first eccentricity
	WGS84B = 6356752.3142         // semi-minor axis (Earth polar radius)
	wgs84E2 = WGS84E * WGS84E

	// AngularVelocityEarth is Earth's mean rotation rate, rad/s.
	AngularVelocityEarth = 7.2921159e-5

	// SecondsPerSiderealDay, S_day = 23h56m04.0989s.
	SecondsPerSiderealDay = 23*3600 + 56*60 + 4.0989

	// J2000 is the reference epoch, 2000-01-01 12:00:00 UTC, Unix seconds.
	// The source carries both the noon (946728000) and midnight (946684800)
	// variants; GMST requires the noon epoch, used consistently here.
	J2000 = 946728000

	j2000JD   = 2451545.0
	secPerDay = 86400.0

	tenthUas2Rad = arcsec2rad / 1e7
)

// unixToJD converts Unix seconds to a Julian date.
func unixToJD(unixSec float64) float64 {
	return unixSec/secPerDay + 2440587.5
}

// EarthRotationAngle returns the Earth Rotation Angle in degrees for a given
// UT1 Julian date (IAU Resolution B1.8, 2000).
func EarthRotationAngle(jdUT1 float64) float64 {
	th := 0.7790572732640 + 0.00273781191135448*(jdUT1-j2000JD)
	era := math.Mod(th, 1.0) + math.Mod(jdUT1, 1.0)
	era = math.Mod(era, 1.0)
	if era < 0 {
		era += 1.0
	}
	return era * 360.0
}

// GMST returns Greenwich Mean Sidereal Time in degrees for a UT1 Julian date,
// via the IAU 1982 (Meeus) formula.
func GMST(jdUT1 float64) float64 {
	du := jdUT1 - j2000JD
	T := du / 36525.0

	gmst := 280.46061837 + 360.98564736629*du +
		0.000387933*T*T - T*T*T/38710000.0

	g := math.Mod(gmst, 360.0)
	if g < 0 {
		g += 360.0
	}
	return g
}

// SiteLongitudeInECI returns the site's geodetic longitude (degrees) rotated
// into the ECI frame at Unix time t, using the simplified linear GMST model
// required by the viewing-cone reducer: theta = (t-J2000)*(360/S_day) +
// 280.46062 degrees. This is deliberately not coord.GMST's IAU 1982 series —
// the reducer's geometry only needs a linear-in-time Earth rotation angle.
func SiteLongitudeInECI(lonDeg, t float64) float64 {
	theta := (t-J2000)*(360.0/SecondsPerSiderealDay) + 280.46062
	lon := math.Mod(lonDeg+theta, 360.0)
	if lon < 0 {
		lon += 360.0
	}
	return lon
}

func fundamentalArgs(T float64) (l, lp, F, D, om float64) {
	l = (485868.249036 + T*(1717915923.2178+T*(31.8792+T*(0.051635-T*0.00024470)))) * arcsec2rad
	lp = (1287104.79305 + T*(129596581.0481+T*(-0.5532+T*(0.000136+T*0.00001149)))) * arcsec2rad
	F = (335779.526232 + T*(1739527262.8478+T*(-12.7512+T*(-0.001037+T*0.00000417)))) * arcsec2rad
	D = (1072260.70369 + T*(1602961601.2090+T*(-6.3706+T*(0.006593-T*0.00003169)))) * arcsec2rad
	om = (450160.398036 + T*(-6962890.5431+T*(7.4722+T*(0.007702-T*0.00005939)))) * arcsec2rad
	return
}

func meanObliquity(T float64) float64 {
	return (84381.448 + T*(-46.8150+T*(-0.00059+T*0.001813))) * arcsec2rad
}

// nutationTerm holds one row of the IAU 2000A luni-solar nutation series.
type nutationTerm struct {
	nl, nlp, nf, nd, nom int
	s, sdot, cp          float64
	c, cdot, sp          float64
}

// Top 30 IAU 2000A luni-solar nutation terms by amplitude (IERS 2003 Table 5.3a).
var nutationTerms = []nutationTerm{
	{0, 0, 0, 0, 1, -172064161, -174666, 33386, 92052331, 9086, 15377},
	{0, 0, 2, -2, 2, -13170906, -1675, -13696, 5730336, -3015, -4587},
	{0, 0, 2, 0, 2, -2276413, -234, 2796, 978459, -485, 1374},
	{0, 0, 0, 0, 2, 2074554, 207, -698, -897492, 470, -291},
	{0, 1, 0, 0, 0, 1475877, -3633, 11817, 73871, -184, -1924},
	{1, 0, 0, 0, 0, 711159, 73, -872, -6750, 0, 358},
	{0, 1, 2, -2, 2, -516821, 1226, -524, 224386, -677, -174},
	{0, 0, 2, 0, 1, -387298, -367, 380, 200728, 18, 318},
	{1, 0, 2, 0, 2, -301461, -36, 816, 129025, -63, 367},
	{0, -1, 2, -2, 2, 215829, -494, 111, -95929, 299, 132},
	{-1, 0, 0, 2, 0, 156994, 10, -168, -1235, 0, 82},
	{0, 0, 2, -2, 1, 128227, 137, 181, -68982, -9, 39},
	{-1, 0, 2, 0, 2, 123457, 11, 19, -53311, 32, -4},
	{0, 0, 0, 2, 0, 63384, 11, -150, -1220, 0, 29},
	{1, 0, 0, 0, 1, 63110, 63, 27, -33228, 0, -9},
	{-1, 0, 2, 2, 2, -59641, -11, 149, 25543, -11, 66},
	{-1, 0, 0, 0, 1, -57976, -63, -189, 31429, 0, -75},
	{1, 0, 2, 0, 1, -51613, -42, 129, 26366, 0, 78},
	{-2, 0, 0, 2, 0, -47722, 0, -18, 477, 0, -25},
	{-2, 0, 2, 0, 1, 45893, 50, 31, -24236, -10, 20},
	{0, 0, 2, 2, 2, -38571, -1, 158, 16452, -11, 68},
	{0, -2, 2, -2, 2, 32481, 0, 0, -13870, 0, 0},
	{2, 0, 2, 0, 2, -31046, -1, 131, 13238, -11, 59},
	{2, 0, 0, 0, 0, 29243, 0, -74, -609, 0, 13},
	{1, 0, 2, -2, 2, 28593, 0, -1, -12338, 10, -3},
	{0, 0, 2, 0, 0, 25887, 0, -66, -550, 0, 11},
	{0, 0, -2, 2, 0, 21783, 0, 13, -167, 0, 13},
	{-1, 0, 2, 0, 1, 20441, 21, 10, -10758, 0, -3},
	{0, 2, 0, 0, 0, 16707, -85, -10, 168, -1, 10},
	{0, 2, 2, -2, 2, -15794, 72, -16, 6850, -42, -5},
}

// nutationAngles computes nutation in longitude (dpsi) and obliquity (deps),
// in radians, using the 30 largest IAU 2000A luni-solar terms. T is Julian
// centuries from J2000 TDB. This truncated series (~1 arcsec precision) is
// all the retrieved nutation tables support; the full 1365-term series needs
// data this codebase never received, so it isn't offered as an option.
func nutationAngles(T float64) (dpsiRad, depsRad float64) {
	l, lp, F, D, om := fundamentalArgs(T)

	var dpsi, deps float64
	for i := range nutationTerms {
		t := &nutationTerms[i]
		arg := float64(t.nl)*l + float64(t.nlp)*lp + float64(t.nf)*F +
			float64(t.nd)*D + float64(t.nom)*om
		sinArg, cosArg := math.Sincos(arg)
		dpsi += (t.s + t.sdot*T) * sinArg
		dpsi += t.cp * cosArg
		deps += (t.c + t.cdot*T) * cosArg
		deps += t.sp * sinArg
	}

	dpsiRad = dpsi * tenthUas2Rad
	depsRad = deps * tenthUas2Rad
	return
}

// nutationMatrixTranspose returns N^T, rotating true equinox of date to mean
// equinox of date (the inverse of mean->true).
func nutationMatrixTranspose(dpsiRad, depsRad, epsMRad float64) [3][3]float64 {
	epsTRad := epsMRad + depsRad

	sinDpsi, cosDpsi := math.Sincos(dpsiRad)
	sinEpsM, cosEpsM := math.Sincos(epsMRad)
	sinEpsT, cosEpsT := math.Sincos(epsTRad)

	return [3][3]float64{
		{cosDpsi, sinDpsi * cosEpsT, sinDpsi * sinEpsT},
		{-sinDpsi * cosEpsM, cosDpsi*cosEpsM*cosEpsT + sinEpsM*sinEpsT, cosDpsi*cosEpsM*sinEpsT - sinEpsM*cosEpsT},
		{-sinDpsi * sinEpsM, cosDpsi*sinEpsM*cosEpsT - cosEpsM*sinEpsT, cosDpsi*sinEpsM*sinEpsT + cosEpsM*cosEpsT},
	}
}

// GAST returns Greenwich Apparent Sidereal Time in degrees (GMST plus the
// equation of the equinoxes nutation correction).
func GAST(jdUT1 float64) float64 {
	gmst := GMST(jdUT1)
	T := (jdUT1 - j2000JD) / 36525.0

	dpsiRad, _ := nutationAngles(T)
	epsM := meanObliquity(T)

	eqeqDeg := (dpsiRad * math.Cos(epsM)) * rad2deg

	g := math.Mod(gmst+eqeqDeg, 360.0)
	if g < 0 {
		g += 360.0
	}
	return g
}

// precessionMatrixInverse returns P^T (IAU 2006), rotating mean equinox of
// date to J2000. T is Julian centuries from J2000 TDB.
func precessionMatrixInverse(T float64) [3][3]float64 {
	zetaA := (2.650545 + 2306.083227*T + 0.2988499*T*T +
		0.01801828*T*T*T - 0.000005971*T*T*T*T) * arcsec2rad
	zA := (-2.650545 + 2306.077181*T + 1.0927348*T*T +
		0.01826837*T*T*T - 0.000028596*T*T*T*T) * arcsec2rad
	thetaA := (2004.191903*T - 0.4294934*T*T -
		0.04182264*T*T*T - 0.000007089*T*T*T*T) * arcsec2rad

	cosZetaA, sinZetaA := math.Cos(zetaA), math.Sin(zetaA)
	cosZA, sinZA := math.Cos(zA), math.Sin(zA)
	cosThetaA, sinThetaA := math.Cos(thetaA), math.Sin(thetaA)

	p11 := cosZA*cosThetaA*cosZetaA - sinZA*sinZetaA
	p12 := -cosZA*cosThetaA*sinZetaA - sinZA*cosZetaA
	p13 := -cosZA * sinThetaA
	p21 := sinZA*cosThetaA*cosZetaA + cosZA*sinZetaA
	p22 := -sinZA*cosThetaA*sinZetaA + cosZA*cosZetaA
	p23 := -sinZA * sinThetaA
	p31 := sinThetaA * cosZetaA
	p32 := -sinThetaA * sinZetaA
	p33 := cosThetaA

	return [3][3]float64{
		{p11, p21, p31},
		{p12, p22, p32},
		{p13, p23, p33},
	}
}

// ECEFToECI rotates a position/velocity pair from ECEF (meters, m/s) to
// ECI/GCRS at Unix time t, applying GAST rotation followed by the nutation
// and precession inverses and the ICRS frame-bias inverse. Velocity gets the
// Earth-rotation (omega x r) correction before the same rotation chain is
// applied, per the IAU-style transform spec.md names; the ~200m residual
// against a full consistent dynamical frame is the documented error budget.
func ECEFToECI(pos, vel [3]float64, t float64) (posECI, velECI [3]float64) {
	jd := unixToJD(t)
	T := (jd - j2000JD) / 36525.0

	dpsiRad, depsRad := nutationAngles(T)
	epsM := meanObliquity(T)
	gastDeg := GAST(jd)
	eqeqDeg := (dpsiRad * math.Cos(epsM)) * rad2deg
	_ = eqeqDeg // already folded into GAST

	gastRad := gastDeg * deg2rad
	sinG, cosG := math.Sincos(gastRad)

	// Earth-rotation velocity correction: v_inertial_ecef = v_ecef + omega x r
	omega := [3]float64{0, 0, AngularVelocityEarth}
	corrVel := add3(vel, cross3(omega, pos))

	rotate := func(v [3]float64) [3]float64 {
		xTrue := cosG*v[0] - sinG*v[1]
		yTrue := sinG*v[0] + cosG*v[1]
		zTrue := v[2]

		NT := nutationMatrixTranspose(dpsiRad, depsRad, epsM)
		xMean := NT[0][0]*xTrue + NT[0][1]*yTrue + NT[0][2]*zTrue
		yMean := NT[1][0]*xTrue + NT[1][1]*yTrue + NT[1][2]*zTrue
		zMean := NT[2][0]*xTrue + NT[2][1]*yTrue + NT[2][2]*zTrue

		PT := precessionMatrixInverse(T)
		xJ2000 := PT[0][0]*xMean + PT[0][1]*yMean + PT[0][2]*zMean
		yJ2000 := PT[1][0]*xMean + PT[1][1]*yMean + PT[1][2]*zMean
		zJ2000 := PT[2][0]*xMean + PT[2][1]*yMean + PT[2][2]*zMean

		B := &ICRSToJ2000Matrix
		return [3]float64{
			B[0][0]*xJ2000 + B[1][0]*yJ2000 + B[2][0]*zJ2000,
			B[0][1]*xJ2000 + B[1][1]*yJ2000 + B[2][1]*zJ2000,
			B[0][2]*xJ2000 + B[1][2]*yJ2000 + B[2][2]*zJ2000,
		}
	}

	posECI = rotate(pos)
	velECI = rotate(corrVel)
	return
}

// ECEFToECIBatch applies ECEFToECI across aligned slices of positions,
// velocities, and times in a single call, as required by the orchestrator's
// "single vectorized call" contract (spec.md 4.7 step 3).
func ECEFToECIBatch(positions, velocities [][3]float64, times []float64) (posECI, velECI [][3]float64) {
	n := len(times)
	posECI = make([][3]float64, n)
	velECI = make([][3]float64, n)
	for i := 0; i < n; i++ {
		posECI[i], velECI[i] = ECEFToECI(positions[i], velocities[i], times[i])
	}
	return
}
