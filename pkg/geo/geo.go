package geo

import "math"

const earthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance in meters between two
// coordinates. Accurate to within rounding error for the distances this
// service operates on (under 100 km).
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// IsFiniteCoordinate reports whether the pair is a usable WGS84 coordinate.
func IsFiniteCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Log-distance path-loss parameters for RSSI distance estimation. TxPower is
// the assumed received power at one meter; the exponent models a mixed
// indoor/outdoor environment.
const (
	rssiTxPower          = -59.0
	rssiPathLossExponent = 2.7
)

// EstimateDistanceFromRSSI converts a received signal strength into a rough
// physical distance in meters using the log-distance path-loss model. The
// estimate is advisory; callers treat its absence as a normal case.
func EstimateDistanceFromRSSI(rssi int) float64 {
	return math.Pow(10, (rssiTxPower-float64(rssi))/(10*rssiPathLossExponent))
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
