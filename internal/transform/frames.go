// Package transform converts SGP4 output into map coordinates.
//
// SGP4 produces positions in TEME (True Equator Mean Equinox). They are
// rotated into ECEF by GMST alone, ignoring polar motion and the equation of
// the equinoxes (tens of meters at most), and then reduced to WGS-84
// latitude, longitude and altitude.
package transform

import "math"

// PositionTEME is a position in the TEME frame, in km.
type PositionTEME struct {
	X, Y, Z float64
}

// PositionECEF is a position in the ECEF frame, in meters.
type PositionECEF struct {
	X, Y, Z float64
}

// TEMEToECEF rotates a TEME position about the Z axis by gmst radians and
// converts km to meters.
func TEMEToECEF(teme PositionTEME, gmst float64) PositionECEF {
	cosG, sinG := math.Cos(gmst), math.Sin(gmst)
	return PositionECEF{
		X: (teme.X*cosG + teme.Y*sinG) * 1000.0,
		Y: (-teme.X*sinG + teme.Y*cosG) * 1000.0,
		Z: teme.Z * 1000.0,
	}
}

// ValidateECEF reports whether pos is finite and between 6200 km and
// 1.5 million km (about Earth's Hill sphere) from Earth's center. Highly
// elliptical orbits reach well past geostationary altitude at apogee.
func ValidateECEF(pos PositionECEF) bool {
	for _, v := range [...]float64{pos.X, pos.Y, pos.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	const (
		minRadius = 6200.0 * 1000.0
		maxRadius = 1.5e6 * 1000.0
	)
	mag := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	return mag >= minRadius && mag <= maxRadius
}
