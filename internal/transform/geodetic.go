package transform

import "math"

// WGS-84 ellipsoid.
const (
	wgs84A  = 6378137.0             // semi-major axis, meters
	wgs84F  = 1.0 / 298.257223563   // flattening
	wgs84E2 = wgs84F * (2 - wgs84F) // first eccentricity squared
)

// Geodetic is a WGS-84 position. Longitude is in [-180, 180].
type Geodetic struct {
	LatDeg, LonDeg float64
	AltKm          float64
}

// ECEFToGeodetic converts an ECEF position using Bowring's iteration, which
// settles within a few rounds for orbital altitudes.
func ECEFToGeodetic(pos PositionECEF) Geodetic {
	x, y, z := pos.X, pos.Y, pos.Z
	lon := math.Atan2(y, x)
	p := math.Hypot(x, y)

	lat := math.Atan2(z, p*(1-wgs84E2))
	for i := 0; i < 5; i++ {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
		lat = math.Atan2(z+wgs84E2*n*sinLat, p)
	}

	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	var alt float64
	if math.Abs(cosLat) > 1e-10 {
		alt = p/cosLat - n
	} else {
		alt = math.Abs(z)/math.Abs(sinLat) - n*(1-wgs84E2)
	}

	return Geodetic{
		LatDeg: lat * 180.0 / math.Pi,
		LonDeg: lon * 180.0 / math.Pi,
		AltKm:  alt / 1000.0,
	}
}

// GeodeticToECEF converts a WGS-84 position to ECEF meters.
func GeodeticToECEF(g Geodetic) PositionECEF {
	lat := g.LatDeg * math.Pi / 180.0
	lon := g.LonDeg * math.Pi / 180.0
	alt := g.AltKm * 1000.0

	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	return PositionECEF{
		X: (n + alt) * cosLat * math.Cos(lon),
		Y: (n + alt) * cosLat * math.Sin(lon),
		Z: (n*(1-wgs84E2) + alt) * sinLat,
	}
}
