package geo

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
)

// Basemap holds every loaded feature organized by type
type Basemap map[FeatureType][]*Feature

// Count returns the total number of features
func (b Basemap) Count() int {
	n := 0
	for _, features := range b {
		n += len(features)
	}
	return n
}

// BasemapLoader loads Natural Earth shapefiles from a data directory
type BasemapLoader struct {
	dataDir string
}

// NewBasemapLoader creates a new loader reading from dataDir
func NewBasemapLoader(dataDir string) *BasemapLoader {
	return &BasemapLoader{
		dataDir: dataDir,
	}
}

// LoadAll loads every basemap layer. Missing files are skipped with a warning since
// overlays are usable without a basemap. roadDetail is the scalerank threshold for roads.
func (l *BasemapLoader) LoadAll(roadDetail int) Basemap {
	basemap := make(Basemap)

	load := func(ftype FeatureType, base string, fn func(string) ([]*Feature, error)) {
		features, err := fn(filepath.Join(l.dataDir, base+".shp"))
		if err != nil {
			fmt.Printf("Warning: failed to load %s: %v\n", strings.ToLower(ftype.String()), err)
			features = []*Feature{}
		}
		basemap[ftype] = features
	}

	load(FeatureBoundary, "ne_50m_admin_1_states_provinces", func(path string) ([]*Feature, error) {
		return l.LoadLines(path, FeatureBoundary, nil)
	})
	load(FeatureCoastline, "ne_50m_coastline", func(path string) ([]*Feature, error) {
		return l.LoadLines(path, FeatureCoastline, nil)
	})
	load(FeatureRoad, "ne_10m_roads", func(path string) ([]*Feature, error) {
		return l.LoadLines(path, FeatureRoad, scalerankFilter(roadDetail))
	})
	load(FeaturePlace, "ne_10m_populated_places", l.LoadPlaces)

	fmt.Printf("Loaded basemap: %d boundaries, %d coastlines, %d roads, %d places\n",
		len(basemap[FeatureBoundary]),
		len(basemap[FeatureCoastline]),
		len(basemap[FeatureRoad]),
		len(basemap[FeaturePlace]))

	return basemap
}

// rowFilter decides whether a shapefile row is kept
type rowFilter func(reader *shp.Reader, row int) bool

// scalerankFilter keeps rows whose scalerank attribute is at most maxRank
func scalerankFilter(maxRank int) rowFilter {
	idx := -2
	return func(reader *shp.Reader, row int) bool {
		if idx == -2 {
			idx = fieldIndex(reader, "scalerank")
		}
		if idx < 0 {
			return true
		}

		var rank int
		if _, err := fmt.Sscanf(reader.ReadAttribute(row, idx), "%d", &rank); err != nil {
			return true
		}
		return rank <= maxRank
	}
}

// LoadLines loads polyline and polygon outlines, one feature per part
func (l *BasemapLoader) LoadLines(path string, ftype FeatureType, keep rowFilter) ([]*Feature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	features := make([]*Feature, 0)

	for reader.Next() {
		n, shape := reader.Shape()
		if keep != nil && !keep(reader, n) {
			continue
		}

		var parts []int32
		var points []shp.Point
		switch geom := shape.(type) {
		case *shp.PolyLine:
			parts, points = geom.Parts, geom.Points
		case *shp.Polygon:
			parts, points = geom.Parts, geom.Points
		default:
			continue
		}

		for i := range parts {
			start := int(parts[i])
			end := len(points)
			if i+1 < len(parts) {
				end = int(parts[i+1])
			}
			if end-start < 2 || start < 0 || end > len(points) {
				continue
			}

			line := make([]LatLon, 0, end-start)
			for _, pt := range points[start:end] {
				line = append(line, LatLon{Lat: pt.Y, Lon: pt.X})
			}
			features = append(features, NewLineFeature(ftype, line))
		}
	}

	return features, nil
}

// LoadPlaces loads populated places with their names
func (l *BasemapLoader) LoadPlaces(path string) ([]*Feature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	nameIdx := fieldIndex(reader, "NAME", "NAMEASCII", "NAME_EN")
	features := make([]*Feature, 0)

	for reader.Next() {
		n, shape := reader.Shape()

		point, ok := shape.(*shp.Point)
		if !ok {
			continue
		}

		name := ""
		if nameIdx >= 0 {
			name = strings.TrimSpace(reader.ReadAttribute(n, nameIdx))
		}

		features = append(features, NewPointFeature(FeaturePlace, LatLon{Lat: point.Y, Lon: point.X}, name))
	}

	return features, nil
}

// fieldIndex returns the index of the first attribute field matching one of names, or -1.
// Field names are fixed-size byte arrays padded with NULs.
func fieldIndex(reader *shp.Reader, names ...string) int {
	fields := reader.Fields()
	for _, want := range names {
		for i, field := range fields {
			if strings.TrimRight(string(field.Name[:]), "\x00 ") == want {
				return i
			}
		}
	}
	return -1
}
