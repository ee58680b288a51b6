package geo

// DefaultAlertRadius is the distance in meters under which a hotspot center raises
// the proximity alert.
const DefaultAlertRadius = 500.0

// NearestDistance returns the distance in meters to the closest center.
// ok is false when centers is empty.
func NearestDistance(pos LatLon, centers []LatLon) (meters float64, ok bool) {
	for i, c := range centers {
		d := Distance(pos, c)
		if i == 0 || d < meters {
			meters = d
		}
	}
	return meters, len(centers) > 0
}

// NearDanger reports whether any center lies strictly closer than radius meters.
func NearDanger(pos LatLon, centers []LatLon, radius float64) bool {
	d, ok := NearestDistance(pos, centers)
	return ok && d < radius
}
