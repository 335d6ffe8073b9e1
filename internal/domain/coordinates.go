package domain

import "math"

// Immutable geographic coordinates in degrees (WGS84).
type Coordinates struct {
	Lat float64
	Lon float64
}

// Report whether both components are finite and inside their degree ranges.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}
