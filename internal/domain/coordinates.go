package domain

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Immutable geographic coordinates (longitude, latitude) in WGS-84 degrees.
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

func (c Coordinates) Point() orb.Point { return orb.Point{c.Lon, c.Lat} }

// Offset returns a copy shifted by the given degree deltas.
func (c Coordinates) Offset(dLon, dLat float64) Coordinates {
	return Coordinates{Lon: c.Lon + dLon, Lat: c.Lat + dLat}
}

func (c Coordinates) Validate() error {
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %f out of range", c.Lon)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range", c.Lat)
	}
	return nil
}

func FromPoint(p orb.Point) Coordinates { return Coordinates{Lon: p.Lon(), Lat: p.Lat()} }
