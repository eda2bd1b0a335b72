package filter

import (
	"math"
	"strings"

	"github.com/charliewiggs/den/internal/event"
)

const earthRadiusMiles = 3958.8

// Geofence accepts events near a configured center point. Events with
// coordinates are judged by great-circle distance; events without fall back
// to a permissive text heuristic on venue and address.
type Geofence struct {
	Lat         float64
	Lon         float64
	RadiusMiles float64

	// Neighborhood and City drive the text fallback for events without
	// coordinates. The fallback deliberately favors false positives: an
	// event that mentions the city anywhere in its venue or address text is
	// kept, leaving stricter pruning to review stages outside this pipeline.
	Neighborhood string
	City         string
}

// Accept reports whether the event passes the geofence.
func (g *Geofence) Accept(evt *event.Event) bool {
	if evt.HasCoordinates() {
		d := haversineMiles(g.Lat, g.Lon, *evt.Lat, *evt.Lon)
		if math.IsNaN(d) || math.IsInf(d, 0) {
			// Malformed coordinates must not drop an otherwise-valid event.
			return true
		}
		return d <= g.RadiusMiles
	}

	where := strings.ToLower(evt.Venue + " " + evt.Address)
	if g.Neighborhood != "" && strings.Contains(where, strings.ToLower(g.Neighborhood)) {
		return true
	}
	if g.City != "" && strings.Contains(where, strings.ToLower(g.City)) {
		return true
	}
	return false
}

// haversineMiles computes the great-circle distance between two points.
func haversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}
