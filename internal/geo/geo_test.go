package geo

import (
	"math"
	"testing"
)

var downtownLA = LatLon{Lat: 34.0522, Lon: -118.2437}

func TestLatLonValid(t *testing.T) {
	tests := []struct {
		p    LatLon
		want bool
	}{
		{LatLon{0, 0}, true},
		{LatLon{90, 180}, true},
		{LatLon{-90, -180}, true},
		{LatLon{90.0001, 0}, false},
		{LatLon{0, -180.5}, false},
	}

	for _, tt := range tests {
		if got := tt.p.Valid(); got != tt.want {
			t.Errorf("Valid(%v): expected %v, got %v", tt.p, tt.want, got)
		}
	}
}

func TestDistanceLAtoSF(t *testing.T) {
	sf := LatLon{Lat: 37.7749, Lon: -122.4194}
	d := Distance(downtownLA, sf)
	if math.Abs(d-559000) > 5000 {
		t.Errorf("Expected about 559 km, got %.0f m", d)
	}
	if Distance(downtownLA, downtownLA) != 0 {
		t.Error("Expected zero distance to self")
	}
}

func TestPathLength(t *testing.T) {
	if PathLength(nil) != 0 || PathLength([]LatLon{downtownLA}) != 0 {
		t.Error("Expected zero length for fewer than two points")
	}

	a := LatLon{Lat: 34.00, Lon: -118.24}
	b := LatLon{Lat: 34.01, Lon: -118.24}
	c := LatLon{Lat: 34.02, Lon: -118.24}
	got := PathLength([]LatLon{a, b, c})
	want := Distance(a, c)
	if math.Abs(got-want) > want*0.01 {
		t.Errorf("Expected path length near %.1f m, got %.1f m", want, got)
	}
}

func TestNearDangerThreshold(t *testing.T) {
	near := LatLon{Lat: downtownLA.Lat + 0.001, Lon: downtownLA.Lon} // ~111 m
	far := LatLon{Lat: downtownLA.Lat + 0.01, Lon: downtownLA.Lon}   // ~1.1 km

	if !NearDanger(downtownLA, []LatLon{far, near}, DefaultAlertRadius) {
		t.Error("Expected alert with a center ~111 m away")
	}
	if NearDanger(downtownLA, []LatLon{far}, DefaultAlertRadius) {
		t.Error("Expected no alert with the only center ~1.1 km away")
	}
	if NearDanger(downtownLA, nil, DefaultAlertRadius) {
		t.Error("Expected no alert without centers")
	}
}

func TestNearDangerIsStrict(t *testing.T) {
	center := LatLon{Lat: downtownLA.Lat + 0.0045, Lon: downtownLA.Lon}
	exact := Distance(downtownLA, center)

	if NearDanger(downtownLA, []LatLon{center}, exact) {
		t.Error("Expected no alert when the distance equals the radius")
	}
	if !NearDanger(downtownLA, []LatLon{center}, exact+0.001) {
		t.Error("Expected alert just inside the radius")
	}
}

func TestNearestDistance(t *testing.T) {
	if _, ok := NearestDistance(downtownLA, nil); ok {
		t.Error("Expected ok=false without centers")
	}

	a := LatLon{Lat: downtownLA.Lat + 0.02, Lon: downtownLA.Lon}
	b := LatLon{Lat: downtownLA.Lat + 0.01, Lon: downtownLA.Lon}
	d, ok := NearestDistance(downtownLA, []LatLon{a, b})
	if !ok || d != Distance(downtownLA, b) {
		t.Errorf("Expected nearest distance %.1f, got %.1f (ok=%v)", Distance(downtownLA, b), d, ok)
	}
}

func TestProjectionRoundTrip(t *testing.T) {
	p := NewProjection(downtownLA, 10, 120, 40, 2.0)

	center := p.Project(downtownLA)
	if center.X != 60 || center.Y != 20 {
		t.Errorf("Expected center at (60,20), got (%d,%d)", center.X, center.Y)
	}

	back := p.Unproject(center.X, center.Y)
	if math.Abs(back.Lat-downtownLA.Lat) > 1e-9 || math.Abs(back.Lon-downtownLA.Lon) > 1e-9 {
		t.Errorf("Expected %v, got %v", downtownLA, back)
	}

	north := p.Project(LatLon{Lat: downtownLA.Lat + 0.05, Lon: downtownLA.Lon})
	if north.Y >= center.Y {
		t.Errorf("Expected north to render above center, got y=%d", north.Y)
	}
	if !p.IsInBounds(downtownLA) {
		t.Error("Expected center to be in bounds")
	}
}

func TestProjectionPan(t *testing.T) {
	p := NewProjection(downtownLA, 10, 120, 40, 2.0)
	p.Pan(10, 0)
	if p.Center().Lon <= downtownLA.Lon {
		t.Errorf("Expected center to move east, got %v", p.Center())
	}
}

func TestCentroidAndBounds(t *testing.T) {
	if got := Centroid(nil, downtownLA); got != downtownLA {
		t.Errorf("Expected fallback %v, got %v", downtownLA, got)
	}

	pts := []LatLon{{Lat: 34, Lon: -118}, {Lat: 36, Lon: -120}}
	c := Centroid(pts, downtownLA)
	if c.Lat != 35 || c.Lon != -119 {
		t.Errorf("Expected (35,-119), got %v", c)
	}

	b := BoundsOf(pts)
	if b == nil || b.MinLat != 34 || b.MaxLat != 36 || b.MinLon != -120 || b.MaxLon != -118 {
		t.Errorf("Unexpected bounds %+v", b)
	}
	if !b.Contains(c) {
		t.Error("Expected bounds to contain the centroid")
	}
	if BoundsOf(nil) != nil {
		t.Error("Expected nil bounds for no points")
	}
}

func TestFilterByBounds(t *testing.T) {
	b := NewBounds(downtownLA, 5)
	inside := NewPointFeature(FeaturePlace, downtownLA, "Los Angeles")
	outside := NewPointFeature(FeaturePlace, LatLon{Lat: 40, Lon: -100}, "Elsewhere")
	crossing := NewLineFeature(FeatureRoad, []LatLon{{Lat: 40, Lon: -100}, downtownLA})

	got := FilterByBounds([]*Feature{inside, outside, crossing}, b)
	if len(got) != 2 || got[0] != inside || got[1] != crossing {
		t.Errorf("Expected inside point and crossing road, got %d features", len(got))
	}
}
