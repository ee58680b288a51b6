package mockapi

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"safemap/internal/geo"
)

// Sample is one synthetic historical crime record
type Sample struct {
	Location geo.LatLon
	Area     string
	Crime    string
	Severity string
	cluster  int
}

// ReportedIncident is a user report held by the store
type ReportedIncident struct {
	ID          int64
	Location    geo.LatLon
	Category    string
	Description string
	Timestamp   time.Time
}

// Store is the in-memory dataset and incident list behind the mock endpoints
type Store struct {
	mu        sync.RWMutex
	samples   []Sample
	centers   []geo.LatLon
	incidents []ReportedIncident
	now       func() time.Time
}

var (
	sampleAreas      = []string{"Central", "Hollywood", "Southwest", "Rampart", "Newton"}
	sampleCrimes     = []string{"THEFT", "BURGLARY", "ASSAULT", "VANDALISM", "ROBBERY"}
	sampleSeverities = []string{"Low", "Medium", "High"}
)

// NewStore generates a deterministic dataset of clusters around center
func NewStore(center geo.LatLon, clusters, perCluster int, seed int64) *Store {
	rng := rand.New(rand.NewSource(seed))
	s := &Store{now: time.Now}

	kmLon := 111.32 * math.Cos(center.Lat*math.Pi/180)
	for c := 0; c < clusters; c++ {
		// Cluster centers spread over ~8 km
		cc := geo.LatLon{
			Lat: center.Lat + rng.NormFloat64()*4/111.32,
			Lon: center.Lon + rng.NormFloat64()*4/kmLon,
		}
		s.centers = append(s.centers, cc)

		for i := 0; i < perCluster; i++ {
			s.samples = append(s.samples, Sample{
				Location: geo.LatLon{
					Lat: cc.Lat + rng.NormFloat64()*0.4/111.32,
					Lon: cc.Lon + rng.NormFloat64()*0.4/kmLon,
				},
				Area:     sampleAreas[c%len(sampleAreas)],
				Crime:    sampleCrimes[rng.Intn(len(sampleCrimes))],
				Severity: sampleSeverities[rng.Intn(len(sampleSeverities))],
				cluster:  c,
			})
		}
	}

	return s
}

// Hotspots returns the samples matching the filters and up to n cluster centers
// ranked by sample count
func (s *Store) Hotspots(areas, crimes, severities []string, n int) ([]Sample, []geo.LatLon) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Sample, 0)
	counts := make(map[int]int)
	sums := make(map[int]geo.LatLon)
	for _, smp := range s.samples {
		if !matches(areas, smp.Area) || !matches(crimes, smp.Crime) || !matches(severities, smp.Severity) {
			continue
		}
		matched = append(matched, smp)
		counts[smp.cluster]++
		sum := sums[smp.cluster]
		sum.Lat += smp.Location.Lat
		sum.Lon += smp.Location.Lon
		sums[smp.cluster] = sum
	}

	clusters := make([]int, 0, len(counts))
	for c := range counts {
		clusters = append(clusters, c)
	}
	sort.Slice(clusters, func(i, j int) bool {
		if counts[clusters[i]] != counts[clusters[j]] {
			return counts[clusters[i]] > counts[clusters[j]]
		}
		return clusters[i] < clusters[j]
	})
	if n > 0 && len(clusters) > n {
		clusters = clusters[:n]
	}

	centers := make([]geo.LatLon, 0, len(clusters))
	for _, c := range clusters {
		k := float64(counts[c])
		centers = append(centers, geo.LatLon{Lat: sums[c].Lat / k, Lon: sums[c].Lon / k})
	}

	return matched, centers
}

// Centers returns every generated cluster center
func (s *Store) Centers() []geo.LatLon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]geo.LatLon(nil), s.centers...)
}

// AddIncident appends a report and returns the stored record
func (s *Store) AddIncident(loc geo.LatLon, category, description string) ReportedIncident {
	s.mu.Lock()
	defer s.mu.Unlock()

	inc := ReportedIncident{
		ID:          int64(len(s.incidents) + 1),
		Location:    loc,
		Category:    category,
		Description: description,
		Timestamp:   s.now(),
	}
	s.incidents = append(s.incidents, inc)
	return inc
}

// Incidents returns a copy of every stored report
func (s *Store) Incidents() []ReportedIncident {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ReportedIncident(nil), s.incidents...)
}

func matches(filter []string, value string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if f == value {
			return true
		}
	}
	return false
}
